package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PhotoURL    string          `json:"photo_url"`
	CategoryID  int64           `json:"category_id"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LineItem converts the product into a cart line with quantity 1.
func (p Product) LineItem() LineItem {
	return LineItem{
		ProductID:   p.ID,
		Title:       p.Title,
		UnitPrice:   p.Price,
		Quantity:    1,
		PhotoURL:    p.PhotoURL,
		Description: p.Description,
	}
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
