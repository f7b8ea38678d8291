package domain

import "errors"

var (
	ErrNegativePrice      = errors.New("product price cannot be negative")
	ErrNegativeStock      = errors.New("product stock cannot be negative")
	ErrOriginalBelowPrice = errors.New("original price must not be lower than price")
	ErrProductIDRequired  = errors.New("product id is required")
)

// Product is a catalog record. The cart and checkout never mutate it.
type Product struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Price         int64  `json:"price"`
	OriginalPrice *int64 `json:"original_price,omitempty"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url"`
	Stock         int    `json:"stock"`
	IsNew         bool   `json:"is_new"`
	OnSale        bool   `json:"on_sale"`
}

func (p *Product) Validate() error {
	if p.ID <= 0 {
		return ErrProductIDRequired
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < p.Price {
		return ErrOriginalBelowPrice
	}
	return nil
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}
