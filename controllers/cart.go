package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"book-rental/middleware"
	"book-rental/models"
	"book-rental/services"
	"book-rental/utils"
)

// UserFinder resolves authenticated identities to user documents.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (models.User, bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, bool, error)
}

// CartController handles rental cart requests
type CartController struct {
	Service *services.CartService
	Users   UserFinder
	Email   *utils.EmailService
	Log     zerolog.Logger
}

// NewCartController creates a new CartController
func NewCartController(service *services.CartService, users UserFinder, email *utils.EmailService, log zerolog.Logger) *CartController {
	return &CartController{
		Service: service,
		Users:   users,
		Email:   email,
		Log:     log,
	}
}

// currentUser resolves the request's JWT claims to the user document. On
// failure it writes the response and returns false.
func (cc *CartController) currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return models.User{}, false
	}
	user, found, err := cc.Users.FindByEmail(r.Context(), claims.Email)
	if err != nil {
		cc.Log.Error().Err(err).Msg("resolving user")
		respondError(w, http.StatusInternalServerError, "internal error")
		return models.User{}, false
	}
	if !found {
		respondError(w, http.StatusNotFound, "User not found")
		return models.User{}, false
	}
	return user, true
}

// AddToCart adds a rental line to the user's cart, creating the cart on
// first use and merging quantities for repeated products.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := cc.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid end date")
		return
	}

	cart, err := cc.Service.AddOrMergeLine(r.Context(), user.ID, user.Contact(), productID, req.Quantity, startDate, endDate)
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// GetCart returns the enriched line views of the user's cart.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := cc.currentUser(w, r)
	if !ok {
		return
	}

	views, err := cc.Service.ViewCart(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// UpdateQuantity overwrites the quantity of one line in the user's cart.
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	user, ok := cc.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	cart, err := cc.Service.SetLineQuantity(r.Context(), user.ID, productID, req.Quantity)
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// RemoveItem deletes one line from the user's cart.
func (cc *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := cc.currentUser(w, r)
	if !ok {
		return
	}

	params := mux.Vars(r)
	productID, err := primitive.ObjectIDFromHex(params["product_id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	cart, err := cc.Service.RemoveLine(r.Context(), user.ID, productID)
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// ExtendRental moves the rental end date of one line.
func (cc *CartController) ExtendRental(w http.ResponseWriter, r *http.Request) {
	user, ok := cc.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil || endDate.IsZero() {
		respondError(w, http.StatusBadRequest, "Invalid end date")
		return
	}

	cart, err := cc.Service.ExtendLine(r.Context(), user.ID, productID, endDate)
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// UpdateContact overwrites the cart's contact snapshot.
func (cc *CartController) UpdateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := cc.currentUser(w, r)
	if !ok {
		return
	}

	var contact models.ContactInfo
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	cart, err := cc.Service.UpdateContactInfo(r.Context(), user.ID, contact)
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// ListCarts returns every cart (Admin only)
func (cc *CartController) ListCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := cc.Service.ListCarts(r.Context())
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, carts)
}

// UpdateStatus moves a cart through the borrowing workflow (Admin only)
// and notifies the owner by email.
func (cc *CartController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	ownerID, err := primitive.ObjectIDFromHex(params["owner_id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid owner ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	cart, err := cc.Service.SetStatus(r.Context(), ownerID, req.Status)
	if err != nil {
		respondServiceError(w, cc.Log, err)
		return
	}

	if cc.Email != nil {
		go func(cart models.Cart) {
			user, found, err := cc.Users.FindByID(context.Background(), cart.OwnerID)
			if err != nil || !found {
				cc.Log.Warn().Err(err).Msg("status email: owner lookup failed")
				return
			}
			if err := cc.Email.SendStatusUpdateEmail(user.Email, cart); err != nil {
				cc.Log.Warn().Err(err).Msg("status email: send failed")
			}
		}(cart)
	}

	respondJSON(w, http.StatusOK, cart)
}
