package stores

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"book-rental/models"
)

// MongoCartStore implements services.CartStore on the carts collection.
type MongoCartStore struct {
	Collection *mongo.Collection
}

// NewMongoCartStore creates a MongoCartStore
func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{
		Collection: db.Collection("carts"),
	}
}

// EnsureIndexes creates the unique owner_id index that enforces the
// one-active-cart-per-owner invariant at the store level.
func (s *MongoCartStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrap(err, "creating carts owner_id index")
}

// FindByOwner looks up the owner's cart; absence is not an error.
func (s *MongoCartStore) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (models.Cart, bool, error) {
	var cart models.Cart
	err := s.Collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return models.Cart{}, false, nil
	}
	if err != nil {
		return models.Cart{}, false, errors.Wrap(err, "finding cart by owner")
	}
	return cart, true, nil
}

// Create inserts a new cart and returns it with its generated id.
func (s *MongoCartStore) Create(ctx context.Context, cart models.Cart) (models.Cart, error) {
	result, err := s.Collection.InsertOne(ctx, cart)
	if err != nil {
		return models.Cart{}, errors.Wrap(err, "creating cart")
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = id
	}
	return cart, nil
}

// Save replaces the stored cart document with the given state.
func (s *MongoCartStore) Save(ctx context.Context, cart models.Cart) error {
	_, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	return errors.Wrap(err, "saving cart")
}

// FindAll returns every cart, for administrative listing.
func (s *MongoCartStore) FindAll(ctx context.Context) ([]models.Cart, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "listing carts")
	}
	defer cursor.Close(ctx)

	carts := []models.Cart{}
	if err := cursor.All(ctx, &carts); err != nil {
		return nil, errors.Wrap(err, "reading carts")
	}
	return carts, nil
}
