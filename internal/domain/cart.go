package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a cart with its quantity.
type LineItem struct {
	ProductID   int64           `json:"product_id" bson:"product_id"`
	Title       string          `json:"title" bson:"title"`
	UnitPrice   decimal.Decimal `json:"unit_price" bson:"unit_price"`
	Quantity    int             `json:"quantity" bson:"quantity"`
	PhotoURL    string          `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
}

// Subtotal is the line's unit price times its quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds a user's line items in insertion order. Items are mutated only
// through the methods below; a quantity never persists at zero.
type Cart struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Items     []LineItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// Add merges the item into the cart: an existing line for the same product
// gains one unit, otherwise the item is appended with quantity 1.
func (c *Cart) Add(item LineItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// Increase adds one unit to the line for productID. Returns false when the
// product is not in the cart.
func (c *Cart) Increase(productID int64) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity++
			return true
		}
	}
	return false
}

// Decrease removes one unit from the line for productID. A line reaching
// zero is filtered out of the cart entirely.
func (c *Cart) Decrease(productID int64) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity--
			if c.Items[i].Quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			}
			return true
		}
	}
	return false
}

// Remove deletes the line for productID unconditionally.
func (c *Cart) Remove(productID int64) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Subtotal recomputes the sum of line subtotals on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
