package provider

import (
	"context"
	"encoding/json"
	"net/http"

	"bridge/internal/configuration"
)

// GetProfileByToken fetches the account behind an access token. This endpoint
// uses the header-token convention.
func (c *Client) GetProfileByToken(ctx context.Context, accessToken string) (*AccountResult, error) {
	body, err := c.Call(ctx, Request{
		Path:              configuration.ProviderPathAccountByToken,
		Method:            http.MethodGet,
		AccessTokenHeader: accessToken,
	})
	if err != nil {
		return nil, err
	}

	var result AccountResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: err}
	}
	return &result, nil
}

// GetProfileByUID fetches an account through the management surface, which
// authenticates with the shared secret instead of a user token.
func (c *Client) GetProfileByUID(ctx context.Context, uid string) (*AccountResult, error) {
	body, err := c.Call(ctx, Request{
		Path:           configuration.ProviderPathManageAccount,
		Method:         http.MethodGet,
		RequiresSecret: true,
		UID:            uid,
	})
	if err != nil {
		return nil, err
	}

	var result AccountResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: err}
	}
	return &result, nil
}

// MintRefreshToken obtains a refresh token for an access token. First step of
// the refresh sub-protocol.
func (c *Client) MintRefreshToken(ctx context.Context, accessToken string) (*MintRefreshResult, error) {
	body, err := c.Call(ctx, Request{
		Path:             configuration.ProviderPathMintRefreshToken,
		Method:           http.MethodGet,
		RequiresSecret:   true,
		AccessTokenParam: accessToken,
	})
	if err != nil {
		return nil, err
	}

	var result MintRefreshResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: err}
	}
	return &result, nil
}

// ExchangeRefreshToken trades a refresh token for a new access token. Second
// step of the refresh sub-protocol.
func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*ExchangeResult, error) {
	body, err := c.Call(ctx, Request{
		Path:           configuration.ProviderPathExchangeToken,
		Method:         http.MethodGet,
		RequiresSecret: true,
		RefreshToken:   refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var result ExchangeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: err}
	}
	return &result, nil
}

// GenerateSOTT mints the secure one-time token new-account registration
// requires. The payload is handed to the widget layer verbatim.
func (c *Client) GenerateSOTT(ctx context.Context) ([]byte, error) {
	return c.Call(ctx, Request{
		Path:           configuration.ProviderPathSOTT,
		Method:         http.MethodGet,
		RequiresSecret: true,
	})
}

// UnverifyAccount clears the EmailVerified flag on the provider side. A
// verified email cannot be changed by the account owner, so the flag is
// reversed after every password reset.
func (c *Client) UnverifyAccount(ctx context.Context, uid string, accessToken string) (*AccountResult, error) {
	nullSupport := false
	body, err := c.Call(ctx, Request{
		Path:             configuration.ProviderPathManageAccount,
		Method:           http.MethodPut,
		RequiresSecret:   true,
		UID:              uid,
		AccessTokenParam: accessToken,
		NullSupport:      &nullSupport,
		Body:             map[string]bool{"EmailVerified": false},
	})
	if err != nil {
		return nil, err
	}

	var result AccountResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: err}
	}
	return &result, nil
}
