package provider

import (
	"errors"
	"fmt"

	"bridge/internal/models"
)

// ErrMissingCredentials is returned before any network call when the API key
// or shared secret is absent from the configuration.
var ErrMissingCredentials = errors.New("provider credentials are not configured")

// ErrUnexpected is the terminal, user-safe failure for provider interactions
// whose detail is log-only (transport failures, refresh failures, unknown
// error codes).
var ErrUnexpected = errors.New("unexpected identity provider error")

// TransportError is an HTTP-layer failure, distinct from a provider-level
// ErrorCode carried in a response payload.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError is a structured failure reported inside a provider response
// body. Descriptions are customer-facing text authored by the provider.
type ProviderError struct {
	Code        int
	Description string
	Message     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Description)
}

// Envelope is the error envelope every provider payload may carry. A zero
// ErrorCode means the call succeeded.
type Envelope struct {
	ErrorCode   int    `json:"ErrorCode,omitempty"`
	Message     string `json:"Message,omitempty"`
	Description string `json:"Description,omitempty"`
}

// AsError returns the structured provider error, or nil on success.
func (e Envelope) AsError() *ProviderError {
	if e.ErrorCode == 0 {
		return nil
	}
	return &ProviderError{
		Code:        e.ErrorCode,
		Description: e.Description,
		Message:     e.Message,
	}
}

// Request describes one call against the provider REST API. Two token-passing
// conventions exist: AccessTokenHeader sends a bearer header, AccessTokenParam
// appends a query parameter. Endpoints use one or the other, never both.
type Request struct {
	Path              string
	Method            string
	RequiresSecret    bool
	UID               string
	AccessTokenHeader string
	AccessTokenParam  string
	RefreshToken      string
	NullSupport       *bool
	VerificationToken string
	Body              any
}

// AccountResult is a profile payload sharing the error envelope.
type AccountResult struct {
	Envelope
	models.RemoteProfile
}

// MintRefreshResult is the payload of the refresh-token mint endpoint.
type MintRefreshResult struct {
	Envelope
	RefreshToken string `json:"refresh_token"`
}

// ExchangeResult is the payload of the refresh-token exchange endpoint.
type ExchangeResult struct {
	Envelope
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// TokenPair is a freshly issued access token and, when the provider rotated
// it, the refresh token that produced it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
