package stores

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"book-rental/models"
)

// MongoUserStore resolves authenticated identities (JWT claims carry the
// email) to user documents for the cart controllers.
type MongoUserStore struct {
	Collection *mongo.Collection
}

// NewMongoUserStore creates a MongoUserStore
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{
		Collection: db.Collection("users"),
	}
}

// FindByEmail looks up a user by email; absence is not an error.
func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	var user models.User
	err := s.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, errors.Wrap(err, "finding user by email")
	}
	return user, true, nil
}

// FindByID looks up a user by id; absence is not an error.
func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, bool, error) {
	var user models.User
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, errors.Wrap(err, "finding user by id")
	}
	return user, true, nil
}
