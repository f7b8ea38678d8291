package domain

import (
	"fmt"
	"time"
)

type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

// ShippingOption describes the fixed fee and delivery estimate of a method.
type ShippingOption struct {
	Method   ShippingMethod `json:"method"`
	Title    string         `json:"title"`
	Fee      int64          `json:"fee"`
	Estimate string         `json:"estimate"`
}

var shippingOptions = map[ShippingMethod]ShippingOption{
	ShippingStandard:  {ShippingStandard, "Standard Shipping", 2000, "3-5 business days"},
	ShippingExpress:   {ShippingExpress, "Express Shipping", 5000, "1-2 business days"},
	ShippingOvernight: {ShippingOvernight, "Overnight Shipping", 10000, "Next business day"},
}

func ShippingOptions() []ShippingOption {
	return []ShippingOption{
		shippingOptions[ShippingStandard],
		shippingOptions[ShippingExpress],
		shippingOptions[ShippingOvernight],
	}
}

func (m ShippingMethod) Valid() bool {
	_, ok := shippingOptions[m]
	return ok
}

// Option panics on an unknown method; callers validate first.
func (m ShippingMethod) Option() ShippingOption {
	opt, ok := shippingOptions[m]
	if !ok {
		panic(fmt.Sprintf("unknown shipping method %q", string(m)))
	}
	return opt
}

func ParseShippingMethod(s string) (ShippingMethod, error) {
	m := ShippingMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown shipping method %q", s)
	}
	return m, nil
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentJazzCash       PaymentMethod = "jazzcash"
	PaymentEasyPaisa      PaymentMethod = "easypaisa"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentJazzCash, PaymentEasyPaisa, PaymentCashOnDelivery:
		return true
	}
	return false
}

func (m PaymentMethod) IsMobileWallet() bool {
	return m == PaymentJazzCash || m == PaymentEasyPaisa
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

type CardDetails struct {
	Number     string `json:"number"`
	HolderName string `json:"holder_name"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// Masked keeps the last four digits of the number and drops the CVV.
func (c CardDetails) Masked() CardDetails {
	digits := make([]byte, 0, len(c.Number))
	for i := 0; i < len(c.Number); i++ {
		if c.Number[i] >= '0' && c.Number[i] <= '9' {
			digits = append(digits, c.Number[i])
		}
	}
	masked := ""
	if len(digits) >= 4 {
		masked = "**** " + string(digits[len(digits)-4:])
	}
	return CardDetails{Number: masked, HolderName: c.HolderName, Expiry: c.Expiry}
}

type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

const DefaultCountry = "Pakistan"

// Draft is the in-progress checkout form.
type Draft struct {
	Contact        Contact        `json:"contact"`
	Address        Address        `json:"address"`
	ShippingMethod ShippingMethod `json:"shipping_method"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	Card           *CardDetails   `json:"card,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	SaveInfo       bool           `json:"save_info"`
	Consent        bool           `json:"consent"`
}

func NewDraft() Draft {
	return Draft{
		Address:        Address{Country: DefaultCountry},
		ShippingMethod: ShippingStandard,
		PaymentMethod:  PaymentCard,
	}
}

type OrderSummary struct {
	Subtotal  int64 `json:"subtotal"`
	Shipping  int64 `json:"shipping"`
	Tax       int64 `json:"tax"`
	Surcharge int64 `json:"surcharge"`
	Total     int64 `json:"total"`
}

// CompletedOrder is emitted once per completed checkout.
type CompletedOrder struct {
	OrderReference string         `json:"order_reference"`
	Summary        OrderSummary   `json:"summary"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	ShippingMethod ShippingMethod `json:"shipping_method"`
	Items          []LineItem     `json:"items"`
	Timestamp      time.Time      `json:"timestamp"`
}
