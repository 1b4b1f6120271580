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

	"book-rental/models"
	"book-rental/utils"
)

// CategoryController handles category requests
type CategoryController struct {
	Collection *mongo.Collection
	Log        zerolog.Logger
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(db *mongo.Database, log zerolog.Logger) *CategoryController {
	return &CategoryController{
		Collection: db.Collection("categories"),
		Log:        log,
	}
}

// CreateCategory adds a category; the slug is derived from the name
// (Admin only).
func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(category.Name) == "" {
		respondError(w, http.StatusBadRequest, "Category name is required")
		return
	}
	category.Slug = utils.Slugify(category.Name)

	count, err := cc.Collection.CountDocuments(r.Context(), bson.M{"slug": category.Slug})
	if err != nil {
		cc.Log.Error().Err(err).Msg("checking category slug")
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "Category already exists")
		return
	}

	now := time.Now()
	category.ID = primitive.NilObjectID
	category.CreatedAt = now
	category.UpdatedAt = now

	result, err := cc.Collection.InsertOne(r.Context(), category)
	if err != nil {
		cc.Log.Error().Err(err).Msg("creating category")
		respondError(w, http.StatusInternalServerError, "Error creating category")
		return
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		category.ID = id
	}

	respondJSON(w, http.StatusCreated, category)
}

// GetCategories lists all categories
func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	cursor, err := cc.Collection.Find(r.Context(), bson.M{})
	if err != nil {
		cc.Log.Error().Err(err).Msg("fetching categories")
		respondError(w, http.StatusInternalServerError, "Error fetching categories")
		return
	}
	defer cursor.Close(r.Context())

	categories := []models.Category{}
	if err := cursor.All(r.Context(), &categories); err != nil {
		cc.Log.Error().Err(err).Msg("reading categories")
		respondError(w, http.StatusInternalServerError, "Error reading categories")
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// UpdateCategory renames a category, regenerating its slug (Admin only)
func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	update := bson.M{"$set": bson.M{
		"name":       req.Name,
		"slug":       utils.Slugify(req.Name),
		"updated_at": time.Now(),
	}}
	result, err := cc.Collection.UpdateOne(r.Context(), bson.M{"_id": id}, update)
	if err != nil {
		cc.Log.Error().Err(err).Msg("updating category")
		respondError(w, http.StatusInternalServerError, "Error updating category")
		return
	}
	if result.MatchedCount == 0 {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"updated": id.Hex()})
}

// DeleteCategory removes a category (Admin only)
func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	result, err := cc.Collection.DeleteOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		cc.Log.Error().Err(err).Msg("deleting category")
		respondError(w, http.StatusInternalServerError, "Error deleting category")
		return
	}
	if result.DeletedCount == 0 {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id.Hex()})
}
