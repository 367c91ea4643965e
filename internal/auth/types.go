package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims; UserID falls back to the standard sub claim
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
