package domain

import "time"

// ShippingAddress is owned by the user record and round-tripped on save.
type ShippingAddress struct {
	Line1      string `json:"line1" bson:"line1"`
	Line2      string `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postal_code" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
}

type User struct {
	ID        string          `json:"id" bson:"_id,omitempty"`
	Name      string          `json:"name" bson:"name"`
	Email     string          `json:"email" bson:"email"`
	Password  string          `json:"-" bson:"password"`
	Address   ShippingAddress `json:"address" bson:"address"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}
