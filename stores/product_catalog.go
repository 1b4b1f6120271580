package stores

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"book-rental/models"
)

// MongoProductCatalog implements services.ProductCatalog as a read-only
// view over the products collection.
type MongoProductCatalog struct {
	Collection *mongo.Collection
}

// NewMongoProductCatalog creates a MongoProductCatalog
func NewMongoProductCatalog(db *mongo.Database) *MongoProductCatalog {
	return &MongoProductCatalog{
		Collection: db.Collection("products"),
	}
}

// FindByID looks up a single product; absence is not an error.
func (c *MongoProductCatalog) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, bool, error) {
	var product models.Product
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, errors.Wrap(err, "finding product")
	}
	return product, true, nil
}

// FindMany batch-fetches products by id. Ids that no longer resolve are
// simply absent from the result.
func (c *MongoProductCatalog) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	cursor, err := c.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "finding products")
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "reading products")
	}
	return products, nil
}
