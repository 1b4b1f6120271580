package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"book-rental/middleware"
	"book-rental/models"
	"book-rental/utils"
)

const defaultAvatar = "https://cdn-icons-png.flaticon.com/512/6596/6596121.png"

// UserController handles user-related requests
type UserController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
	Log          zerolog.Logger
}

// NewUserController creates a new UserController with EmailService
func NewUserController(db *mongo.Database, emailService *utils.EmailService, log zerolog.Logger) *UserController {
	return &UserController{
		Collection:   db.Collection("users"),
		EmailService: emailService,
		Log:          log,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(user.Email) == "" || user.Password == "" || strings.TrimSpace(user.FullName) == "" {
		respondError(w, http.StatusBadRequest, "Full name, email and password are required")
		return
	}

	// Check if user already exists
	count, err := uc.Collection.CountDocuments(r.Context(), bson.M{"email": user.Email})
	if err != nil {
		uc.Log.Error().Err(err).Msg("checking user email")
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.Log.Error().Err(err).Msg("hashing password")
		respondError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}
	user.Password = string(hashedPassword)
	user.Role = models.RoleStudent // Default role
	user.IsVerified = false
	if user.Avatar == "" {
		user.Avatar = defaultAvatar
	}

	verificationToken, err := utils.GenerateJWT(user.Email, user.Role)
	if err != nil {
		uc.Log.Error().Err(err).Msg("generating verification token")
		respondError(w, http.StatusInternalServerError, "Error generating verification token")
		return
	}
	user.VerificationToken = verificationToken

	if _, err := uc.Collection.InsertOne(r.Context(), user); err != nil {
		uc.Log.Error().Err(err).Msg("creating user")
		respondError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	if err := uc.EmailService.SendVerificationEmail(user.Email, verificationToken); err != nil {
		uc.Log.Error().Err(err).Msg("sending verification email")
		respondError(w, http.StatusInternalServerError, "Error sending verification email")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// VerifyEmail handles email verification
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "Verification token missing")
		return
	}

	claims := &utils.Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return utils.JwtKey, nil
	}); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid token")
		return
	}

	var user models.User
	err := uc.Collection.FindOne(r.Context(), bson.M{"verification_token": token}).Decode(&user)
	if err != nil {
		respondError(w, http.StatusBadRequest, "User not found or already verified")
		return
	}

	_, err = uc.Collection.UpdateOne(r.Context(), bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
		},
	})
	if err != nil {
		uc.Log.Error().Err(err).Msg("updating verification status")
		respondError(w, http.StatusInternalServerError, "Error updating user verification status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Email verified successfully. You can now log in.",
	})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	err := uc.Collection.FindOne(r.Context(), bson.M{"email": creds.Email}).Decode(&user)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.IsVerified {
		respondError(w, http.StatusUnauthorized, "Email not verified")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.Email, user.Role)
	if err != nil {
		uc.Log.Error().Err(err).Msg("generating token")
		respondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile returns the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User
	err := uc.Collection.FindOne(r.Context(), bson.M{"email": claims.Email}).Decode(&user)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's contact details. Existing
// cart contact snapshots are not touched; users update those separately.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		Class    string `json:"class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	fields := bson.M{}
	if strings.TrimSpace(req.FullName) != "" {
		fields["full_name"] = req.FullName
	}
	if strings.TrimSpace(req.Phone) != "" {
		fields["phone"] = req.Phone
	}
	if strings.TrimSpace(req.Address) != "" {
		fields["address"] = req.Address
	}
	if strings.TrimSpace(req.Class) != "" {
		fields["class"] = req.Class
	}
	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	result, err := uc.Collection.UpdateOne(r.Context(), bson.M{"email": claims.Email}, bson.M{"$set": fields})
	if err != nil {
		uc.Log.Error().Err(err).Msg("updating profile")
		respondError(w, http.StatusInternalServerError, "Error updating profile")
		return
	}
	if result.MatchedCount == 0 {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}
