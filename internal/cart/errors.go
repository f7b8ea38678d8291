package cart

import "errors"

var (
	// ErrOutOfStock is a warning: the add was ignored and the cart is unchanged.
	ErrOutOfStock     = errors.New("product is out of stock")
	ErrInvalidProduct = errors.New("invalid product")
)
