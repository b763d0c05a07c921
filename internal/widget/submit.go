package widget

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"bridge/internal/configuration"
	"bridge/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GenericFailureMessage is shown whenever the server relay fails in a way the
// user cannot act on.
const GenericFailureMessage = "An unexpected error occurred. Please try again later."

// Outcome is the result of handling one form callback: what to tell the user
// and whether the page should move on.
type Outcome struct {
	OK       bool
	Redirect string
	Message  string
}

// Submitter relays successful widget callbacks to the server boundary and
// shapes validation errors into user-facing messages. It owns the client-side
// half of the session protocol: stash the provider token, post the callback,
// act on the server verdict.
type Submitter struct {
	http             *resty.Client
	store            TokenStore
	friendlyMessages map[string]string
	accountHomePath  string
}

func NewSubmitter(serverURL string, store TokenStore, friendlyMessages map[string]string) *Submitter {
	client := resty.New().
		SetBaseURL(serverURL).
		SetHeader("Accept", "application/json")

	return &Submitter{
		http:             client,
		store:            store,
		friendlyMessages: friendlyMessages,
		accountHomePath:  "/account",
	}
}

// HandleSuccess dispatches a successful provider callback by form kind. Login,
// registration and social login resolve a session; profile updates write
// through; the remaining kinds settle locally without a server round trip.
func (s *Submitter) HandleSuccess(ctx context.Context, kind FormKind, rawResponse []byte) (Outcome, error) {
	switch kind {
	case FormLogin, FormRegistration, FormSocialLogin:
		return s.startSession(ctx, kind, rawResponse)
	case FormUpdateProfile:
		return s.updateProfile(ctx, rawResponse)
	case FormForgotPassword:
		return Outcome{OK: true, Message: "If the address exists, a reset link is on its way."}, nil
	case FormResetPassword:
		return Outcome{OK: true, Redirect: s.accountHomePath}, nil
	case FormChangePassword:
		return Outcome{OK: true, Redirect: s.accountHomePath}, nil
	}
	return Outcome{}, errors.New("widget: unknown form kind " + kind.String())
}

// HandleError shapes provider validation failures for display. The email-in-use
// code gets the configured friendly wording when one exists; everything else
// shows the provider's own message.
func (s *Submitter) HandleError(errs []CallbackError) Outcome {
	if len(errs) == 0 {
		return Outcome{Message: GenericFailureMessage}
	}

	first := errs[0]
	if first.ErrorCode == configuration.ProviderErrEmailInUse {
		if friendly, ok := s.friendlyMessages[strconv.Itoa(first.ErrorCode)]; ok && friendly != "" {
			return Outcome{Message: friendly}
		}
	}

	if message := first.DisplayMessage(); message != "" {
		return Outcome{Message: message}
	}
	return Outcome{Message: GenericFailureMessage}
}

func (s *Submitter) startSession(ctx context.Context, kind FormKind, rawResponse []byte) (Outcome, error) {
	token := tokenFromCallback(rawResponse)
	if token == "" {
		return Outcome{Message: GenericFailureMessage}, errors.New("widget: callback without access token")
	}
	s.store.SetToken(token)

	payload := map[string]any{
		"access_token": token,
		"remember_me":  s.store.RememberMe(),
	}
	serialized, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Message: GenericFailureMessage}, err
	}

	var session models.SessionResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"response": string(serialized)}).
		SetResult(&session).
		Post("/api/v1/identity/session")
	if err != nil {
		zap.L().Error("Session relay failed", zap.String("form", kind.String()), zap.Error(err))
		return Outcome{Message: GenericFailureMessage}, err
	}

	if !resp.IsSuccess() || session.Status != "OK" {
		return Outcome{Message: GenericFailureMessage}, nil
	}
	return Outcome{OK: true, Redirect: s.accountHomePath}, nil
}

func (s *Submitter) updateProfile(ctx context.Context, rawResponse []byte) (Outcome, error) {
	token, ok := s.store.Token()
	if !ok {
		token = tokenFromCallback(rawResponse)
	}
	if token == "" {
		return Outcome{Message: GenericFailureMessage}, errors.New("widget: profile update without access token")
	}

	serialized, err := json.Marshal(map[string]any{"access_token": token})
	if err != nil {
		return Outcome{Message: GenericFailureMessage}, err
	}

	var result models.SessionResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"response": string(serialized)}).
		SetResult(&result).
		Post("/api/v1/identity/profile")
	if err != nil {
		zap.L().Error("Profile relay failed", zap.Error(err))
		return Outcome{Message: GenericFailureMessage}, err
	}

	if !resp.IsSuccess() || result.Status != "OK" {
		return Outcome{Message: GenericFailureMessage}, nil
	}
	return Outcome{OK: true, Message: "Profile updated."}, nil
}

// RefreshToken asks the server relay for a fresh token pair and stores the
// rotated access token before returning it.
func (s *Submitter) RefreshToken(ctx context.Context, accessToken string) (string, error) {
	var refreshed models.RefreshTokenResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("access_token", accessToken).
		SetResult(&refreshed).
		Get("/api/v1/identity/token/refresh")
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() || refreshed.AccessToken == "" {
		return "", errors.New("widget: token refresh relay returned no token")
	}

	s.store.SetToken(refreshed.AccessToken)
	return refreshed.AccessToken, nil
}

func tokenFromCallback(rawResponse []byte) string {
	var callback struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rawResponse, &callback); err != nil {
		return ""
	}
	return callback.AccessToken
}
