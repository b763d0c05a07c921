package provider

import (
	"context"

	"bridge/internal/configuration"
	"bridge/internal/models"

	"go.uber.org/zap"
)

type accountAPI interface {
	GetProfileByToken(ctx context.Context, accessToken string) (*AccountResult, error)
}

type tokenRefresher interface {
	Refresh(ctx context.Context, accessToken string, refreshToken string) (TokenPair, error)
}

// Resolver turns an access token into a remote profile, transparently
// refreshing an expired token and retrying exactly once.
type Resolver struct {
	api       accountAPI
	refresher tokenRefresher
}

func NewResolver(api accountAPI, refresher tokenRefresher) *Resolver {
	return &Resolver{api: api, refresher: refresher}
}

// ResolveProfile returns the profile and the access token it was resolved
// with, which differs from the input when a refresh happened; the caller must
// persist the rotated token. The retry bound is 1: a second token-expired
// error after a successful refresh is terminal.
func (r *Resolver) ResolveProfile(ctx context.Context, accessToken string) (*models.RemoteProfile, string, error) {
	token := accessToken

	for attempt := 0; attempt <= 1; attempt++ {
		result, err := r.api.GetProfileByToken(ctx, token)
		if err != nil {
			return nil, "", err
		}

		perr := result.AsError()
		if perr == nil {
			profile := result.RemoteProfile
			return &profile, token, nil
		}

		if perr.Code == configuration.ProviderErrTokenExpired && attempt == 0 {
			pair, refreshErr := r.refresher.Refresh(ctx, token, "")
			if refreshErr != nil {
				zap.L().Error("Token refresh during profile resolution failed", zap.Error(refreshErr))
				return nil, "", ErrUnexpected
			}
			token = pair.AccessToken
			continue
		}

		zap.L().Error("Profile resolution failed",
			zap.Int("error_code", perr.Code),
			zap.String("description", perr.Description))
		return nil, "", ErrUnexpected
	}

	return nil, "", ErrUnexpected
}
