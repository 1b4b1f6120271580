package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a book title in the catalog
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	Author          string             `bson:"author" json:"author"`
	Price           float64            `bson:"price" json:"price"`
	Description     string             `bson:"description" json:"description"`
	Category        string             `bson:"category" json:"category"`
	Stock           int                `bson:"stock" json:"stock"`
	Images          []string           `bson:"images" json:"images"`
	Publisher       string             `bson:"publisher" json:"publisher"`
	PublishingHouse string             `bson:"publishing_house" json:"publishing_house"`
	CoverType       string             `bson:"cover_type" json:"cover_type"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
