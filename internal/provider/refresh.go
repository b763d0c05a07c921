package provider

import (
	"context"

	"go.uber.org/zap"
)

// refreshAPI is the slice of the transport client the coordinator needs.
type refreshAPI interface {
	MintRefreshToken(ctx context.Context, accessToken string) (*MintRefreshResult, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*ExchangeResult, error)
}

// Coordinator performs the two-step refresh exchange: mint a refresh token
// from the expired access token when none is supplied, then trade it for a
// new access token. Refresh is always reactive, triggered by an observed
// token-expired error; nothing here runs on a timer. Concurrent refreshes are
// not deduplicated; the caller's last successful token write stands.
type Coordinator struct {
	api refreshAPI
}

func NewCoordinator(api refreshAPI) *Coordinator {
	return &Coordinator{api: api}
}

// Refresh returns a new token pair, or ErrUnexpected on any provider error.
// An invalid refresh token (code 905) is terminal like every other code here;
// there is nothing further to retry once the refresh path itself fails.
func (c *Coordinator) Refresh(ctx context.Context, accessToken string, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		minted, err := c.api.MintRefreshToken(ctx, accessToken)
		if err != nil {
			return TokenPair{}, err
		}
		if perr := minted.AsError(); perr != nil {
			zap.L().Error("Refresh token mint failed",
				zap.Int("error_code", perr.Code),
				zap.String("description", perr.Description))
			return TokenPair{}, ErrUnexpected
		}
		refreshToken = minted.RefreshToken
	}

	exchanged, err := c.api.ExchangeRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if perr := exchanged.AsError(); perr != nil {
		zap.L().Error("Access token exchange failed",
			zap.Int("error_code", perr.Code),
			zap.String("description", perr.Description))
		return TokenPair{}, ErrUnexpected
	}

	return TokenPair{
		AccessToken:  exchanged.AccessToken,
		RefreshToken: exchanged.RefreshToken,
	}, nil
}
