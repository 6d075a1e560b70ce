package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the access token payload binding a client to the portal session.
type SessionClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int64     `json:"expiresIn"`
	IssuedAt    time.Time `json:"issuedAt"`
	User        User      `json:"user"`
}
