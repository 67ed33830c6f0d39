package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// context keys set by the middlewares
const (
	ContextUserID = "user_id"
	ContextEmail  = "user_email"
)

// default token lifetime
const tokenTTL = 7 * 24 * time.Hour

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
