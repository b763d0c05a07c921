package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the claims carried by locally minted session tokens after a
// successful reconciliation.
type SessionClaims struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Login      string    `json:"login"`
	Email      string    `json:"email"`
	Aud        string    `json:"aud_type"`
	Issuer     string    `json:"iss_name"`
	jwt.RegisteredClaims
}

type SessionClaimKey struct{}

// StartSessionBody is the payload the widget layer posts after a successful
// login, registration or social login. Response holds the provider's raw
// callback payload, serialized.
type StartSessionBody struct {
	Response string `json:"response" validate:"required"`
}

// ProviderCallback is the subset of the provider's widget callback payload the
// server cares about.
type ProviderCallback struct {
	AccessToken string `json:"access_token"`
	RememberMe  bool   `json:"remember_me"`
}

type SessionResponse struct {
	Status       string `json:"status"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type StatusErrorResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
