package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart statuses. A cart is never hard-deleted; the borrowing workflow is
// modeled as status transitions driven by an administrator.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusBorrowing = "borrowing"
	StatusReturned  = "returned"
)

// ValidCartStatus reports whether s is a member of the closed status set.
func ValidCartStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusBorrowing, StatusReturned:
		return true
	}
	return false
}

// CartLine is one rented product within a cart. Lines are unique by
// product: adding a product already present merges quantities.
type CartLine struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	StartDate time.Time          `bson:"start_date" json:"start_date"`
	EndDate   time.Time          `bson:"end_date" json:"end_date"`
}

// ContactInfo is the renter's contact snapshot taken when the cart is
// created or explicitly updated. Later edits to the user profile do not
// change it.
type ContactInfo struct {
	FullName string `bson:"full_name" json:"full_name"`
	Phone    string `bson:"phone" json:"phone"`
	Address  string `bson:"address" json:"address"`
}

// Cart is a user's rental request. At most one active cart exists per
// owner; the store enforces that with a unique index on owner_id.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID    primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Lines      []CartLine         `bson:"lines" json:"lines"`
	TotalPrice float64            `bson:"total_price" json:"total_price"`
	Status     string             `bson:"status" json:"status"`
	Contact    ContactInfo        `bson:"contact" json:"contact"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// FindLine returns the index of the line holding productID, or -1.
func (c *Cart) FindLine(productID primitive.ObjectID) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// CartLineView is the denormalized read model returned when a user views
// their cart: the line joined with the product's current name, image and
// price. Unavailable products keep their line visible with a zero price.
type CartLineView struct {
	ProductID   primitive.ObjectID `json:"product_id"`
	ProductName string             `json:"product_name"`
	Image       string             `json:"image,omitempty"`
	UnitPrice   float64            `json:"unit_price"`
	Quantity    int                `json:"quantity"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	LineTotal   float64            `json:"line_total"`
	Available   bool               `json:"available"`
}
