package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bridge/internal/models"
	"bridge/internal/provider"
	"bridge/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubResolver struct {
	profile *models.RemoteProfile
	token   string
	err     error
	calls   int
}

func (s *stubResolver) ResolveProfile(_ context.Context, _ string) (*models.RemoteProfile, string, error) {
	s.calls++
	return s.profile, s.token, s.err
}

type stubRefresher struct {
	pair provider.TokenPair
	err  error
}

func (s *stubRefresher) Refresh(_ context.Context, _ string, _ string) (provider.TokenPair, error) {
	return s.pair, s.err
}

type stubManagement struct {
	sott          []byte
	sottErr       error
	unverifyErr   error
	unverifiedUID string
}

func (s *stubManagement) GenerateSOTT(_ context.Context) ([]byte, error) {
	return s.sott, s.sottErr
}

func (s *stubManagement) UnverifyAccount(_ context.Context, uid string, _ string) (*provider.AccountResult, error) {
	s.unverifiedUID = uid
	if s.unverifyErr != nil {
		return nil, s.unverifyErr
	}
	return &provider.AccountResult{}, nil
}

func testService(t *testing.T, resolver *stubResolver) (IdentityService, *stubManagement) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}))

	authConfig := models.AuthConfig{
		JWTSecret:          "test-secret-key-for-jwt-signing",
		AccessTokenExpiry:  60,
		RefreshTokenExpiry: 600,
	}
	management := &stubManagement{sott: []byte(`{"Sott":"opaque"}`)}

	return IdentityService{
		DB:             db,
		AuthConfig:     authConfig,
		ProviderConfig: models.ProviderConfiguration{Enabled: true},
		Resolver:       resolver,
		Refresher:      &stubRefresher{pair: provider.TokenPair{AccessToken: "rotated"}},
		Management:     management,
		Reconciler:     &reconcile.Reconciler{DB: db, AuthConfig: authConfig},
	}, management
}

func resolvedProfile(uid string) *models.RemoteProfile {
	return &models.RemoteProfile{
		UID:       uid,
		FirstName: "Ada",
		Email:     []models.EmailEntry{{Type: models.EmailTypePrimary, Value: "ada@example.com"}},
	}
}

func postCallback(t *testing.T, handler http.Handler, path string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	serialized, err := json.Marshal(payload)
	require.NoError(t, err)

	form := url.Values{"response": {string(serialized)}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

// TestStartSession tests the session endpoint behind a widget login callback.
func TestStartSession(t *testing.T) {
	t.Run("should link the profile and issue session tokens", func(t *testing.T) {
		resolver := &stubResolver{profile: resolvedProfile("uid-1"), token: "prov-tok"}
		service, _ := testService(t, resolver)

		recorder := postCallback(t, service.Routes(), "/session",
			map[string]any{"access_token": "prov-tok", "remember_me": true})

		require.Equal(t, http.StatusOK, recorder.Code)

		var response models.SessionResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "OK", response.Status)
		assert.NotEmpty(t, response.AccessToken)
		assert.NotEmpty(t, response.RefreshToken)

		var customer models.Customer
		require.NoError(t, service.DB.Where("login = ?", "uid-1").First(&customer).Error)
		assert.Equal(t, "ada@example.com", customer.Email)
	})

	t.Run("should reject when the provider integration is disabled", func(t *testing.T) {
		resolver := &stubResolver{profile: resolvedProfile("uid-1")}
		service, _ := testService(t, resolver)
		service.ProviderConfig.Enabled = false

		recorder := postCallback(t, service.Routes(), "/session",
			map[string]any{"access_token": "prov-tok"})

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, 0, resolver.calls)
	})

	t.Run("should reject a callback without an access token", func(t *testing.T) {
		resolver := &stubResolver{profile: resolvedProfile("uid-1")}
		service, _ := testService(t, resolver)

		recorder := postCallback(t, service.Routes(), "/session", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, 0, resolver.calls)
	})

	t.Run("should answer with the generic message when resolution fails", func(t *testing.T) {
		resolver := &stubResolver{err: provider.ErrUnexpected}
		service, _ := testService(t, resolver)

		recorder := postCallback(t, service.Routes(), "/session",
			map[string]any{"access_token": "prov-tok"})

		require.Equal(t, http.StatusOK, recorder.Code)

		var response models.StatusErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "ERROR", response.Status)
		assert.Equal(t, UnexpectedErrorMessage, response.Message,
			"failure detail must never leak to the storefront")
	})
}

// TestUpdateProfile tests the profile write-through endpoint.
func TestUpdateProfile(t *testing.T) {
	t.Run("should write through edits for a linked customer", func(t *testing.T) {
		resolver := &stubResolver{profile: resolvedProfile("uid-1"), token: "prov-tok"}
		service, _ := testService(t, resolver)

		recorder := postCallback(t, service.Routes(), "/session",
			map[string]any{"access_token": "prov-tok"})
		require.Equal(t, http.StatusOK, recorder.Code)

		resolver.profile = resolvedProfile("uid-1")
		resolver.profile.FirstName = "Augusta"

		recorder = postCallback(t, service.Routes(), "/profile",
			map[string]any{"access_token": "prov-tok"})
		require.Equal(t, http.StatusOK, recorder.Code)

		var customer models.Customer
		require.NoError(t, service.DB.Where("login = ?", "uid-1").First(&customer).Error)
		assert.Equal(t, "Augusta", customer.FirstName)
	})

	t.Run("should not create a customer for an unlinked profile", func(t *testing.T) {
		resolver := &stubResolver{profile: resolvedProfile("uid-unknown"), token: "prov-tok"}
		service, _ := testService(t, resolver)

		recorder := postCallback(t, service.Routes(), "/profile",
			map[string]any{"access_token": "prov-tok"})

		require.Equal(t, http.StatusOK, recorder.Code)

		var response models.StatusErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "ERROR", response.Status)

		var count int64
		require.NoError(t, service.DB.Model(&models.Customer{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})
}

// TestGenerateSOTT tests the verbatim relay of the one-time token payload.
func TestGenerateSOTT(t *testing.T) {
	t.Run("should relay the provider payload untouched", func(t *testing.T) {
		service, management := testService(t, &stubResolver{})

		req := httptest.NewRequest(http.MethodGet, "/sott", nil)
		recorder := httptest.NewRecorder()
		service.Routes().ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, string(management.sott), recorder.Body.String())
	})

	t.Run("should answer with the generic message on mint failure", func(t *testing.T) {
		service, management := testService(t, &stubResolver{})
		management.sottErr = errors.New("provider unreachable")

		req := httptest.NewRequest(http.MethodGet, "/sott", nil)
		recorder := httptest.NewRecorder()
		service.Routes().ServeHTTP(recorder, req)

		var response models.StatusErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, UnexpectedErrorMessage, response.Message)
	})
}

// TestRefreshTokenEndpoint tests the server half of the refresh relay.
func TestRefreshTokenEndpoint(t *testing.T) {
	t.Run("should return the rotated pair", func(t *testing.T) {
		service, _ := testService(t, &stubResolver{})

		req := httptest.NewRequest(http.MethodGet, "/token/refresh?access_token=old-tok", nil)
		recorder := httptest.NewRecorder()
		service.Routes().ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var response models.RefreshTokenResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "rotated", response.AccessToken)
	})

	t.Run("should reject a request without an access token", func(t *testing.T) {
		service, _ := testService(t, &stubResolver{})

		req := httptest.NewRequest(http.MethodGet, "/token/refresh", nil)
		recorder := httptest.NewRecorder()
		service.Routes().ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

// TestCompletePasswordReset tests the post-reset unverify step.
func TestCompletePasswordReset(t *testing.T) {
	t.Run("should unverify the resolved account", func(t *testing.T) {
		resolver := &stubResolver{profile: resolvedProfile("uid-7"), token: "prov-tok"}
		service, management := testService(t, resolver)

		req := httptest.NewRequest(http.MethodGet, "/password-reset/complete?access_token=prov-tok", nil)
		recorder := httptest.NewRecorder()
		service.Routes().ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "uid-7", management.unverifiedUID)
	})

	t.Run("should still answer ok when the unverify call fails", func(t *testing.T) {
		resolver := &stubResolver{profile: resolvedProfile("uid-7"), token: "prov-tok"}
		service, management := testService(t, resolver)
		management.unverifyErr = errors.New("provider unreachable")

		req := httptest.NewRequest(http.MethodGet, "/password-reset/complete?access_token=prov-tok", nil)
		recorder := httptest.NewRecorder()
		service.Routes().ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var response models.SessionResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "OK", response.Status)
	})
}
