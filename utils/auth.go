package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JwtKey signs and verifies tokens; loaded from JWT_SECRET at startup.
var JwtKey []byte

// Tokens are valid for a full library day.
const tokenTTL = 24 * time.Hour

// Claims represents the JWT claims attached to each request
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// GenerateJWT issues a signed token carrying the user's email and role
func GenerateJWT(email, role string) (string, error) {
	claims := &Claims{
		Email: email,
		Role:  role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}
