package services

import (
	"context"
	"encoding/json"
	"net/http"

	"bridge/internal/apierrors"
	"bridge/internal/helpers"
	"bridge/internal/models"
	"bridge/internal/provider"
	"bridge/internal/reconcile"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnexpectedErrorMessage is the one generic, user-safe message for failures
// whose detail stays in the diagnostic log.
const UnexpectedErrorMessage = "An unexpected error occurred. Please try again later."

type profileResolver interface {
	ResolveProfile(ctx context.Context, accessToken string) (*models.RemoteProfile, string, error)
}

type tokenRefresher interface {
	Refresh(ctx context.Context, accessToken string, refreshToken string) (provider.TokenPair, error)
}

type managementAPI interface {
	GenerateSOTT(ctx context.Context) ([]byte, error)
	UnverifyAccount(ctx context.Context, uid string, accessToken string) (*provider.AccountResult, error)
}

// IdentityService is the server boundary the storefront's widget layer talks
// to: session start after widget login, profile write-through, SOTT minting
// and the token refresh relay.
type IdentityService struct {
	DB             *gorm.DB
	AuthConfig     models.AuthConfig
	ProviderConfig models.ProviderConfiguration
	Resolver       profileResolver
	Refresher      tokenRefresher
	Management     managementAPI
	Reconciler     *reconcile.Reconciler
}

func (s IdentityService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/session", s.StartSession)
	r.Post("/profile", s.UpdateProfile)
	r.Get("/sott", s.GenerateSOTT)
	r.Get("/token/refresh", s.RefreshToken)
	r.Get("/password-reset/complete", s.CompletePasswordReset)
	return r
}

func statusError(message string) models.StatusErrorResponse {
	return models.StatusErrorResponse{Success: false, Status: "ERROR", Message: message}
}

// callbackFromRequest extracts and decodes the serialized provider payload the
// widget layer posts as the "response" form field.
func callbackFromRequest(r *http.Request) (models.ProviderCallback, bool) {
	raw := r.FormValue("response")
	if raw == "" {
		return models.ProviderCallback{}, false
	}

	var callback models.ProviderCallback
	if err := json.Unmarshal([]byte(raw), &callback); err != nil {
		zap.L().Error("Failed to decode provider callback payload", zap.Error(err))
		return models.ProviderCallback{}, false
	}
	if callback.AccessToken == "" {
		return models.ProviderCallback{}, false
	}
	return callback, true
}

// StartSession resolves the access token from a widget login/registration
// callback into a remote profile, links or creates the local customer and
// returns the local session tokens.
func (s IdentityService) StartSession(w http.ResponseWriter, r *http.Request) {
	if !s.ProviderConfig.Enabled {
		helpers.RespondWithJSON(w, http.StatusForbidden, statusError(UnexpectedErrorMessage))
		return
	}

	callback, ok := callbackFromRequest(r)
	if !ok {
		helpers.RespondWithJSON(w, http.StatusBadRequest, statusError(UnexpectedErrorMessage))
		return
	}

	profile, _, err := s.Resolver.ResolveProfile(r.Context(), callback.AccessToken)
	if err != nil {
		helpers.RespondWithJSON(w, http.StatusOK, statusError(UnexpectedErrorMessage))
		return
	}

	_, session, err := s.Reconciler.LinkOrCreate(zap.L(), profile, callback.RememberMe)
	if err != nil {
		helpers.RespondWithJSON(w, http.StatusOK, statusError(UnexpectedErrorMessage))
		return
	}

	helpers.RespondWithJSON(w, http.StatusOK, models.SessionResponse{
		Status:       "OK",
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// UpdateProfile writes remote profile edits through to an existing customer.
// Unknown customers are not created here; only the session path creates.
func (s IdentityService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !s.ProviderConfig.Enabled {
		helpers.RespondWithJSON(w, http.StatusForbidden, statusError(UnexpectedErrorMessage))
		return
	}

	callback, ok := callbackFromRequest(r)
	if !ok {
		helpers.RespondWithJSON(w, http.StatusBadRequest, statusError(UnexpectedErrorMessage))
		return
	}

	profile, _, err := s.Resolver.ResolveProfile(r.Context(), callback.AccessToken)
	if err != nil {
		helpers.RespondWithJSON(w, http.StatusOK, statusError(UnexpectedErrorMessage))
		return
	}

	if _, err := s.Reconciler.UpdateExisting(zap.L(), profile); err != nil {
		helpers.RespondWithJSON(w, http.StatusOK, statusError(UnexpectedErrorMessage))
		return
	}

	helpers.RespondWithJSON(w, http.StatusOK, models.SessionResponse{Status: "OK"})
}

// GenerateSOTT relays the provider's secure one-time token payload verbatim.
// Registration widgets cannot be constructed without it.
func (s IdentityService) GenerateSOTT(w http.ResponseWriter, r *http.Request) {
	payload, err := s.Management.GenerateSOTT(r.Context())
	if err != nil {
		helpers.RespondWithJSON(w, http.StatusOK, statusError(UnexpectedErrorMessage))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// RefreshToken relays the two-step refresh exchange for the browser, which
// cannot hold the shared secret the exchange requires.
func (s IdentityService) RefreshToken(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("access_token")
	refreshToken := r.URL.Query().Get("refresh_token")

	if accessToken == "" {
		zap.L().Error("Token refresh request without access token",
			zap.String("code", apierrors.ErrMissingToken))
		helpers.RespondWithJSON(w, http.StatusBadRequest, statusError(UnexpectedErrorMessage))
		return
	}

	pair, err := s.Refresher.Refresh(r.Context(), accessToken, refreshToken)
	if err != nil {
		helpers.RespondWithJSON(w, http.StatusOK, statusError(UnexpectedErrorMessage))
		return
	}

	helpers.RespondWithJSON(w, http.StatusOK, models.RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// CompletePasswordReset reverses the provider's email-verified flag after a
// password reset: a verified address can no longer be edited by its owner.
// Failures are tolerated; the reset itself already happened and the user must
// still be told their password changed.
func (s IdentityService) CompletePasswordReset(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("access_token")

	if accessToken != "" {
		profile, token, err := s.Resolver.ResolveProfile(r.Context(), accessToken)
		if err == nil {
			if _, err := s.Management.UnverifyAccount(r.Context(), profile.UID, token); err != nil {
				zap.L().Error("Failed to unverify account after password reset",
					zap.String("uid", profile.UID), zap.Error(err))
			}
		}
	}

	helpers.RespondWithJSON(w, http.StatusOK, models.SessionResponse{Status: "OK"})
}
