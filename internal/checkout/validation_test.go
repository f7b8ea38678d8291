package checkout

import (
	"errors"
	"testing"

	"github.com/fjod/swordshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShipping(t *testing.T) {
	d := domain.NewDraft()
	d.Contact = validContact()
	d.Address = validAddress()
	require.NoError(t, validateShipping(d))

	d.Contact.FirstName = "  "
	d.Address.City = ""
	d.ShippingMethod = "drone"

	var verr *ValidationError
	require.True(t, errors.As(validateShipping(d), &verr))
	assert.Equal(t, StepShipping, verr.Step)
	assert.True(t, verr.Has("first_name"))
	assert.True(t, verr.Has("city"))
	assert.True(t, verr.Has("shipping_method"))
	assert.False(t, verr.Has("email"))
}

func TestValidatePayment_NonCardNeedsNoDetails(t *testing.T) {
	for _, m := range []domain.PaymentMethod{domain.PaymentJazzCash, domain.PaymentEasyPaisa, domain.PaymentCashOnDelivery} {
		d := domain.NewDraft()
		d.PaymentMethod = m
		assert.NoError(t, validatePayment(d), m)
	}
}

func TestValidatePayment_Card(t *testing.T) {
	tests := []struct {
		name  string
		card  *domain.CardDetails
		field string
	}{
		{"missing card", nil, "card_number"},
		{"short number", &domain.CardDetails{Number: "4242", HolderName: "A", Expiry: "01/30", CVV: "123"}, "card_number"},
		{"letters in number", &domain.CardDetails{Number: "4242-4242-4242-abcd", HolderName: "A", Expiry: "01/30", CVV: "123"}, "card_number"},
		{"no holder", &domain.CardDetails{Number: "4242424242424242", Expiry: "01/30", CVV: "123"}, "card_holder_name"},
		{"month 13", &domain.CardDetails{Number: "4242424242424242", HolderName: "A", Expiry: "13/30", CVV: "123"}, "card_expiry"},
		{"long year", &domain.CardDetails{Number: "4242424242424242", HolderName: "A", Expiry: "01/2030", CVV: "123"}, "card_expiry"},
		{"short cvv", &domain.CardDetails{Number: "4242424242424242", HolderName: "A", Expiry: "01/30", CVV: "12"}, "card_cvv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.NewDraft()
			d.Card = tt.card

			var verr *ValidationError
			require.True(t, errors.As(validatePayment(d), &verr))
			assert.True(t, verr.Has(tt.field), verr.Error())
		})
	}

	d := domain.NewDraft()
	d.Card = &domain.CardDetails{Number: "4242-4242-4242-4242", HolderName: "A", Expiry: "01/30", CVV: "1234"}
	assert.NoError(t, validatePayment(d))
}

func TestValidatePayment_UnknownMethod(t *testing.T) {
	d := domain.NewDraft()
	d.PaymentMethod = "bitcoin"

	var verr *ValidationError
	require.True(t, errors.As(validatePayment(d), &verr))
	assert.Equal(t, []FieldError{{Field: "payment_method", Message: "must be one of card, jazzcash, easypaisa, cod"}}, verr.Fields)
}

func TestValidationError_Message(t *testing.T) {
	verr := &ValidationError{Step: StepShipping}
	assert.NoError(t, verr.orNil())

	verr.add("first_name", requiredMessage)
	verr.add("city", requiredMessage)
	assert.Equal(t, "validation failed at SHIPPING: first_name: is required; city: is required", verr.Error())
}
