package checkout

import (
	"regexp"
	"strings"

	"github.com/fjod/swordshop/internal/domain"
)

const requiredMessage = "is required"

var (
	cardSeparators = strings.NewReplacer(" ", "", "-", "")
	cardNumberRe   = regexp.MustCompile(`^[0-9]{13,19}$`)
	cardExpiryRe   = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cardCVVRe      = regexp.MustCompile(`^[0-9]{3,4}$`)
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateShipping(d domain.Draft) error {
	verr := &ValidationError{Step: StepShipping}
	required := []struct {
		field string
		value string
	}{
		{"first_name", d.Contact.FirstName},
		{"last_name", d.Contact.LastName},
		{"email", d.Contact.Email},
		{"phone", d.Contact.Phone},
		{"street", d.Address.Street},
		{"city", d.Address.City},
		{"state", d.Address.State},
		{"postal_code", d.Address.PostalCode},
		{"country", d.Address.Country},
	}
	for _, r := range required {
		if blank(r.value) {
			verr.add(r.field, requiredMessage)
		}
	}
	if !d.ShippingMethod.Valid() {
		verr.add("shipping_method", "must be one of standard, express, overnight")
	}
	return verr.orNil()
}

// validatePayment checks presence and format only; nothing is sent anywhere.
func validatePayment(d domain.Draft) error {
	verr := &ValidationError{Step: StepPayment}
	if !d.PaymentMethod.Valid() {
		verr.add("payment_method", "must be one of card, jazzcash, easypaisa, cod")
		return verr
	}
	if d.PaymentMethod != domain.PaymentCard {
		return nil
	}

	card := domain.CardDetails{}
	if d.Card != nil {
		card = *d.Card
	}
	switch number := cardSeparators.Replace(card.Number); {
	case number == "":
		verr.add("card_number", requiredMessage)
	case !cardNumberRe.MatchString(number):
		verr.add("card_number", "must be 13 to 19 digits")
	}
	if blank(card.HolderName) {
		verr.add("card_holder_name", requiredMessage)
	}
	switch expiry := strings.TrimSpace(card.Expiry); {
	case expiry == "":
		verr.add("card_expiry", requiredMessage)
	case !cardExpiryRe.MatchString(expiry):
		verr.add("card_expiry", "must be MM/YY")
	}
	switch cvv := strings.TrimSpace(card.CVV); {
	case cvv == "":
		verr.add("card_cvv", requiredMessage)
	case !cardCVVRe.MatchString(cvv):
		verr.add("card_cvv", "must be 3 or 4 digits")
	}
	return verr.orNil()
}

func validateReview(d domain.Draft) error {
	if d.Consent {
		return nil
	}
	verr := &ValidationError{Step: StepReview}
	verr.add("consent", "terms must be accepted")
	return verr
}
