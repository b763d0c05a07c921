package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHandleError tests the shaping of provider validation errors for display.
func TestHandleError(t *testing.T) {
	friendly := map[string]string{"936": "That email is already registered. Try signing in instead."}

	t.Run("should use the configured wording for the email-in-use code", func(t *testing.T) {
		s := NewSubmitter("http://localhost", NewMemoryTokenStore(), friendly)

		outcome := s.HandleError([]CallbackError{
			{ErrorCode: 936, Message: "Email is already in use"},
		})

		assert.Equal(t, "That email is already registered. Try signing in instead.", outcome.Message)
	})

	t.Run("should fall back to the provider message without an override", func(t *testing.T) {
		s := NewSubmitter("http://localhost", NewMemoryTokenStore(), nil)

		outcome := s.HandleError([]CallbackError{
			{ErrorCode: 936, Message: "Email is already in use"},
		})

		assert.Equal(t, "Email is already in use", outcome.Message)
	})

	t.Run("should show the provider message for other codes", func(t *testing.T) {
		s := NewSubmitter("http://localhost", NewMemoryTokenStore(), friendly)

		outcome := s.HandleError([]CallbackError{
			{ErrorCode: 1007, Message: "Password too weak"},
		})

		assert.Equal(t, "Password too weak", outcome.Message)
	})

	t.Run("should read the lowercase message spelling from the captcha layer", func(t *testing.T) {
		s := NewSubmitter("http://localhost", NewMemoryTokenStore(), nil)

		outcome := s.HandleError([]CallbackError{
			{ErrorCode: 1302, LowerMessage: "Captcha verification failed"},
		})

		assert.Equal(t, "Captcha verification failed", outcome.Message)
	})

	t.Run("should show the generic message when the error list is empty", func(t *testing.T) {
		s := NewSubmitter("http://localhost", NewMemoryTokenStore(), nil)

		outcome := s.HandleError(nil)

		assert.Equal(t, GenericFailureMessage, outcome.Message)
	})
}

// TestHandleSuccess tests dispatch of successful widget callbacks by form kind.
func TestHandleSuccess(t *testing.T) {
	callback := []byte(`{"access_token":"prov-tok-1"}`)

	t.Run("should relay a login callback to the session endpoint", func(t *testing.T) {
		var gotPath string
		var gotResponse map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, r.ParseForm())
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("response")), &gotResponse))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"OK","access_token":"local-at"}`))
		}))
		defer server.Close()

		store := NewMemoryTokenStore()
		store.SetRememberMe(true)
		s := NewSubmitter(server.URL, store, nil)

		outcome, err := s.HandleSuccess(context.Background(), FormLogin, callback)

		require.NoError(t, err)
		assert.True(t, outcome.OK)
		assert.Equal(t, "/api/v1/identity/session", gotPath)
		assert.Equal(t, "prov-tok-1", gotResponse["access_token"])
		assert.Equal(t, true, gotResponse["remember_me"])

		stored, ok := store.Token()
		require.True(t, ok)
		assert.Equal(t, "prov-tok-1", stored, "the provider token must be stashed before the relay")
	})

	t.Run("should relay a profile edit to the profile endpoint", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"OK"}`))
		}))
		defer server.Close()

		store := NewMemoryTokenStore()
		store.SetToken("stored-tok")
		s := NewSubmitter(server.URL, store, nil)

		outcome, err := s.HandleSuccess(context.Background(), FormUpdateProfile, callback)

		require.NoError(t, err)
		assert.True(t, outcome.OK)
		assert.Equal(t, "/api/v1/identity/profile", gotPath)
	})

	t.Run("should report the generic message when the relay rejects", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":false,"status":"ERROR","message":"` + GenericFailureMessage + `"}`))
		}))
		defer server.Close()

		s := NewSubmitter(server.URL, NewMemoryTokenStore(), nil)

		outcome, err := s.HandleSuccess(context.Background(), FormRegistration, callback)

		require.NoError(t, err)
		assert.False(t, outcome.OK)
		assert.Equal(t, GenericFailureMessage, outcome.Message)
	})

	t.Run("should settle non-relaying forms locally", func(t *testing.T) {
		s := NewSubmitter("http://localhost:1", NewMemoryTokenStore(), nil)

		outcome, err := s.HandleSuccess(context.Background(), FormResetPassword, nil)

		require.NoError(t, err)
		assert.True(t, outcome.OK)
		assert.NotEmpty(t, outcome.Redirect)
	})

	t.Run("should fail a session relay without an access token", func(t *testing.T) {
		s := NewSubmitter("http://localhost:1", NewMemoryTokenStore(), nil)

		outcome, err := s.HandleSuccess(context.Background(), FormLogin, []byte(`{}`))

		assert.Error(t, err)
		assert.Equal(t, GenericFailureMessage, outcome.Message)
	})
}

// TestRefreshToken tests the client half of the token refresh relay.
func TestRefreshToken(t *testing.T) {
	t.Run("should store and return the rotated token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/identity/token/refresh", r.URL.Path)
			assert.Equal(t, "old-tok", r.URL.Query().Get("access_token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"rotated-tok"}`))
		}))
		defer server.Close()

		store := NewMemoryTokenStore()
		s := NewSubmitter(server.URL, store, nil)

		rotated, err := s.RefreshToken(context.Background(), "old-tok")

		require.NoError(t, err)
		assert.Equal(t, "rotated-tok", rotated)

		stored, ok := store.Token()
		require.True(t, ok)
		assert.Equal(t, "rotated-tok", stored)
	})

	t.Run("should fail when the relay returns no token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":false,"status":"ERROR","message":"nope"}`))
		}))
		defer server.Close()

		s := NewSubmitter(server.URL, NewMemoryTokenStore(), nil)

		_, err := s.RefreshToken(context.Background(), "old-tok")

		assert.Error(t, err)
	})
}
