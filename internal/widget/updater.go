package widget

import (
	"context"
	"errors"

	"bridge/internal/configuration"
)

var ErrNoStoredToken = errors.New("widget: no stored access token")

// ProviderCall performs one provider-facing operation with the given access
// token and reports the provider error code, zero meaning success.
type ProviderCall func(ctx context.Context, accessToken string) (errorCode int, err error)

// tokenRefresher is the refresh relay a retry needs, satisfied by Submitter.
type tokenRefresher interface {
	RefreshToken(ctx context.Context, accessToken string) (string, error)
}

// CallWithRefresh runs a provider call and, when the token has expired,
// refreshes it through the relay and retries exactly once. A second expiry
// after a successful refresh is surfaced as-is.
func CallWithRefresh(ctx context.Context, store TokenStore, refresher tokenRefresher, call ProviderCall) (int, error) {
	token, ok := store.Token()
	if !ok {
		return 0, ErrNoStoredToken
	}

	for attempt := 0; attempt <= 1; attempt++ {
		code, err := call(ctx, token)
		if err != nil {
			return 0, err
		}

		if code == configuration.ProviderErrTokenExpired && attempt == 0 {
			refreshed, refreshErr := refresher.RefreshToken(ctx, token)
			if refreshErr != nil {
				return code, refreshErr
			}
			token = refreshed
			continue
		}

		return code, nil
	}

	return configuration.ProviderErrTokenExpired, nil
}
