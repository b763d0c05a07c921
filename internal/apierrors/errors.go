package apierrors

import "fmt"

// APIError is a user-visible failure with an HTTP status and a stable code.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Code)
}

func NewAPIError(status int, code string) *APIError {
	return &APIError{Status: status, Code: code}
}

// Stable error codes surfaced by the identity endpoints.
const (
	ErrUnexpected       = "UNEXPECTED_ERROR"
	ErrCustomerNotFound = "CUSTOMER_NOT_FOUND"
	ErrProviderDisabled = "PROVIDER_DISABLED"
	ErrMissingToken     = "MISSING_ACCESS_TOKEN"
	ErrProfileNoEmail   = "PROFILE_HAS_NO_EMAIL"
)

var (
	ErrGenerateAccessTokenFailed  = NewAPIError(500, "GENERATE_ACCESS_TOKEN_FAILED")
	ErrGenerateRefreshTokenFailed = NewAPIError(500, "GENERATE_REFRESH_TOKEN_FAILED")
)
