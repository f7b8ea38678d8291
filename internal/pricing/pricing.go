package pricing

import (
	"github.com/fjod/swordshop/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// CashOnDeliveryFee is added to the total when paying on delivery.
	CashOnDeliveryFee int64 = 500
)

// TaxRate is 5% of the subtotal.
var TaxRate = decimal.New(5, -2)

// AdvanceRate is the share of the subtotal paid up front for an advance checkout.
var AdvanceRate = decimal.New(5, -1)

// ComputeSummary prices the items for the chosen shipping and payment methods.
// Shipping is a flat fee per method and is never waived.
func ComputeSummary(items []domain.LineItem, shipping domain.ShippingMethod, payment domain.PaymentMethod) domain.OrderSummary {
	subtotal := Subtotal(items)
	s := domain.OrderSummary{
		Subtotal: subtotal,
		Tax:      Tax(subtotal),
	}
	if shipping.Valid() {
		s.Shipping = shipping.Option().Fee
	}
	if payment == domain.PaymentCashOnDelivery {
		s.Surcharge = CashOnDeliveryFee
	}
	s.Total = s.Subtotal + s.Shipping + s.Tax + s.Surcharge
	return s
}

// Tax rounds half away from zero to whole currency units.
func Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(TaxRate).Round(0).IntPart()
}

// Advance is the up-front part of subtotal, rounded like Tax.
func Advance(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(AdvanceRate).Round(0).IntPart()
}

func Subtotal(items []domain.LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

func ItemCount(items []domain.LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
