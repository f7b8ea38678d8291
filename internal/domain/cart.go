package domain

// LineItem is one product entry in the cart. Display fields are copied from the
// product when it is added so the cart survives catalog changes.
type LineItem struct {
	ProductID    int64  `json:"id"`
	Title        string `json:"title"`
	Price        int64  `json:"price"`
	ImageURL     string `json:"imageUrl"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	StockCeiling int    `json:"stock"`
}

func (i LineItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// NewLineItem snapshots the product fields into a line item.
func NewLineItem(p *Product, quantity int) LineItem {
	return LineItem{
		ProductID:    p.ID,
		Title:        p.Title,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		Quantity:     quantity,
		StockCeiling: p.Stock,
	}
}
