package pricing

import (
	"testing"

	"github.com/fjod/swordshop/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: 1, Title: "Hand-Forged Damascus Steel Katana", Price: 125000, Quantity: 1, StockCeiling: 5},
		{ProductID: 2, Title: "Viking Battle Axe", Price: 89999, Quantity: 2, StockCeiling: 3},
	}
}

func TestComputeSummary_CardStandard(t *testing.T) {
	s := ComputeSummary(sampleItems(), domain.ShippingStandard, domain.PaymentCard)

	assert.Equal(t, int64(304998), s.Subtotal)
	assert.Equal(t, int64(15250), s.Tax)
	assert.Equal(t, int64(2000), s.Shipping)
	assert.Equal(t, int64(0), s.Surcharge)
	assert.Equal(t, int64(304998+2000+15250), s.Total)
}

func TestComputeSummary_CashOnDeliveryAddsSurcharge(t *testing.T) {
	s := ComputeSummary(sampleItems(), domain.ShippingExpress, domain.PaymentCashOnDelivery)

	assert.Equal(t, CashOnDeliveryFee, s.Surcharge)
	assert.Equal(t, int64(5000), s.Shipping)
	assert.Equal(t, s.Subtotal+s.Shipping+s.Tax+s.Surcharge, s.Total)
}

func TestComputeSummary_ShippingNotWaivedForLargeOrders(t *testing.T) {
	items := []domain.LineItem{{ProductID: 1, Price: 1_000_000, Quantity: 3}}
	s := ComputeSummary(items, domain.ShippingOvernight, domain.PaymentJazzCash)

	assert.Equal(t, int64(10000), s.Shipping)
	assert.Equal(t, int64(0), s.Surcharge)
}

func TestComputeSummary_IsDeterministic(t *testing.T) {
	items := sampleItems()
	first := ComputeSummary(items, domain.ShippingOvernight, domain.PaymentCashOnDelivery)
	second := ComputeSummary(items, domain.ShippingOvernight, domain.PaymentCashOnDelivery)
	assert.Equal(t, first, second)
	assert.Len(t, items, 2, "input must not be modified")
}

func TestComputeSummary_EmptyCart(t *testing.T) {
	s := ComputeSummary(nil, domain.ShippingStandard, domain.PaymentCard)
	assert.Equal(t, domain.OrderSummary{Shipping: 2000, Total: 2000}, s)
}

func TestTax_Rounding(t *testing.T) {
	tests := []struct {
		subtotal int64
		want     int64
	}{
		{0, 0},
		{9, 0},  // 0.45
		{10, 1}, // 0.5 rounds up
		{29, 1}, // 1.45
		{30, 2}, // 1.5
		{304998, 15250},
		{125000, 6250},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tax(tt.subtotal), "subtotal %d", tt.subtotal)
	}
}

func TestSubtotalAndItemCount(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, int64(304998), Subtotal(items))
	assert.Equal(t, 3, ItemCount(items))
	assert.Equal(t, 0, ItemCount(nil))
}

func TestFormatPKR(t *testing.T) {
	assert.Equal(t, "PKR 0", FormatPKR(0))
	assert.Equal(t, "PKR 500", FormatPKR(500))
	assert.Equal(t, "PKR 2,000", FormatPKR(2000))
	assert.Equal(t, "PKR 125,000", FormatPKR(125000))
	assert.Equal(t, "PKR 1,234,567", FormatPKR(1234567))
	assert.Equal(t, "-PKR 89,999", FormatPKR(-89999))
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		subtotal int64
		want     int64
	}{
		{0, 0},
		{125000, 62500},
		{89999, 45000},
		{1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Advance(tt.subtotal), "subtotal %d", tt.subtotal)
	}
}
