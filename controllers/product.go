package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"book-rental/models"
	"book-rental/utils"
)

const searchResultLimit = 20

// ProductController handles book catalog requests
type ProductController struct {
	Collection *mongo.Collection
	Log        zerolog.Logger
}

// NewProductController creates a new ProductController
func NewProductController(db *mongo.Database, log zerolog.Logger) *ProductController {
	return &ProductController{
		Collection: db.Collection("products"),
		Log:        log,
	}
}

// CreateProduct handles adding a new book title (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(product.Name) == "" || product.Price <= 0 || product.Stock < 0 {
		respondError(w, http.StatusBadRequest, "Name, a positive price and a non-negative stock are required")
		return
	}

	now := time.Now()
	product.ID = primitive.NilObjectID
	product.CreatedAt = now
	product.UpdatedAt = now

	result, err := pc.Collection.InsertOne(r.Context(), product)
	if err != nil {
		pc.Log.Error().Err(err).Msg("creating product")
		respondError(w, http.StatusInternalServerError, "Error creating product")
		return
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}

	respondJSON(w, http.StatusCreated, product)
}

// GetProducts retrieves the whole catalog
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	cursor, err := pc.Collection.Find(r.Context(), bson.M{})
	if err != nil {
		pc.Log.Error().Err(err).Msg("fetching products")
		respondError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	defer cursor.Close(r.Context())

	products := []models.Product{}
	if err := cursor.All(r.Context(), &products); err != nil {
		pc.Log.Error().Err(err).Msg("reading products")
		respondError(w, http.StatusInternalServerError, "Error reading products")
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single book title by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product
	err = pc.Collection.FindOne(r.Context(), bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		pc.Log.Error().Err(err).Msg("finding product")
		respondError(w, http.StatusInternalServerError, "Error fetching product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// SearchProducts finds book titles by name or author, ignoring Vietnamese
// diacritics in the query.
func (pc *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	pattern := utils.AccentInsensitivePattern(r.URL.Query().Get("q"))
	if pattern == "" {
		respondJSON(w, http.StatusOK, []models.Product{})
		return
	}

	rx := primitive.Regex{Pattern: pattern, Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"name": rx},
		{"author": rx},
	}}

	cursor, err := pc.Collection.Find(r.Context(), filter, options.Find().SetLimit(searchResultLimit))
	if err != nil {
		pc.Log.Error().Err(err).Msg("searching products")
		respondError(w, http.StatusInternalServerError, "Error searching products")
		return
	}
	defer cursor.Close(r.Context())

	products := []models.Product{}
	if err := cursor.All(r.Context(), &products); err != nil {
		pc.Log.Error().Err(err).Msg("reading search results")
		respondError(w, http.StatusInternalServerError, "Error reading search results")
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// UpdateProduct handles updating a book title (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	product.ID = id
	product.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"name":             product.Name,
		"author":           product.Author,
		"price":            product.Price,
		"description":      product.Description,
		"category":         product.Category,
		"stock":            product.Stock,
		"images":           product.Images,
		"publisher":        product.Publisher,
		"publishing_house": product.PublishingHouse,
		"cover_type":       product.CoverType,
		"updated_at":       product.UpdatedAt,
	}}

	result, err := pc.Collection.UpdateOne(r.Context(), bson.M{"_id": id}, update)
	if err != nil {
		pc.Log.Error().Err(err).Msg("updating product")
		respondError(w, http.StatusInternalServerError, "Error updating product")
		return
	}
	if result.MatchedCount == 0 {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles deleting a book title (Admin only). Carts keep
// their lines; readers see those lines as unavailable.
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	result, err := pc.Collection.DeleteOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		pc.Log.Error().Err(err).Msg("deleting product")
		respondError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	if result.DeletedCount == 0 {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id.Hex()})
}
