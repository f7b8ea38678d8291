package catalog

import (
	"fmt"
	"strings"
)

type PriceRange string

const (
	PriceAll      PriceRange = "all"
	PriceUnder10k PriceRange = "under-10k"
	Price10kTo50k PriceRange = "10k-50k"
	Price50kTo100 PriceRange = "50k-100k"
	PriceOver100k PriceRange = "over-100k"
)

// [lo, hi) in PKR; hi < 0 means no upper bound.
var priceBounds = map[PriceRange][2]int64{
	PriceAll:      {0, -1},
	PriceUnder10k: {0, 10000},
	Price10kTo50k: {10000, 50000},
	Price50kTo100: {50000, 100000},
	PriceOver100k: {100000, -1},
}

// ParsePriceRange accepts the bucket ids used by the storefront. An empty string
// means all prices.
func ParsePriceRange(s string) (PriceRange, error) {
	if s == "" {
		return PriceAll, nil
	}
	r := PriceRange(strings.ToLower(s))
	if _, ok := priceBounds[r]; !ok {
		return "", fmt.Errorf("unknown price range %q", s)
	}
	return r, nil
}

func (r PriceRange) Bounds() (lo, hi int64) {
	b, ok := priceBounds[r]
	if !ok {
		b = priceBounds[PriceAll]
	}
	return b[0], b[1]
}

func (r PriceRange) Contains(price int64) bool {
	lo, hi := r.Bounds()
	return price >= lo && (hi < 0 || price < hi)
}

type Filter struct {
	PriceRange  PriceRange
	InStockOnly bool
	OnSaleOnly  bool
	// Category matches case-insensitively; dashes stand for spaces as in URL slugs.
	Category string
}

func (f Filter) category() string {
	return strings.TrimSpace(strings.ReplaceAll(f.Category, "-", " "))
}
