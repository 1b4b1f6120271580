package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"book-rental/models"
)

// CartStore persists carts, keyed uniquely by owner so at most one active
// cart exists per user. Absence is reported through the bool, not an error.
type CartStore interface {
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (models.Cart, bool, error)
	Create(ctx context.Context, cart models.Cart) (models.Cart, error)
	Save(ctx context.Context, cart models.Cart) error
	FindAll(ctx context.Context) ([]models.Cart, error)
}

// ProductCatalog is the read-only view of the product collection consumed
// by the cart service. FindMany returns only the products that still
// exist; callers treat missing entries as unavailable.
type ProductCatalog interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, bool, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}
