package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bridge/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client issues outbound calls to the identity provider's REST API with
// credential injection and query composition. Provider-level errors are
// signaled via the ErrorCode envelope in the returned body, never as Go
// errors; only configuration and transport failures surface as errors.
type Client struct {
	http   *resty.Client
	config models.ProviderConfiguration
}

func NewClient(config models.ProviderConfiguration) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(config.APIURL, "/")).
		SetTimeout(time.Duration(config.TimeoutSeconds) * time.Second).
		SetHeader("charset", "utf-8").
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient, config: config}
}

// Call executes the request and returns the raw response body. HTTP error
// statuses still return the body: the provider reports failures in-band with
// an ErrorCode payload, and callers interpret those codes.
func (c *Client) Call(ctx context.Context, req Request) ([]byte, error) {
	target, err := c.buildTarget(req)
	if err != nil {
		zap.L().Error("Provider call rejected", zap.String("path", req.Path), zap.Error(err))
		return nil, err
	}

	if c.config.DebugLogging {
		zap.L().Info("Provider call",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("uid", req.UID))
	}

	r := c.http.R().SetContext(ctx)
	if req.AccessTokenHeader != "" {
		r.SetHeader("Authorization", "Bearer "+req.AccessTokenHeader)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	resp, err := r.Execute(method, target)
	if err != nil {
		zap.L().Error("Provider transport failure",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Error(err))
		return nil, &TransportError{Err: err}
	}

	if c.config.DebugLogging {
		zap.L().Info("Provider response",
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
	}

	return resp.Body(), nil
}

// buildTarget composes the request path and query string. Composition order
// is part of the provider contract: path, UID segment, apikey, secret,
// access_token, refresh_token, nullsupport, verificationtoken.
func (c *Client) buildTarget(req Request) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrMissingCredentials
	}
	if req.RequiresSecret && c.config.APISecret == "" {
		return "", ErrMissingCredentials
	}

	var b strings.Builder
	b.WriteString("/")
	b.WriteString(req.Path)
	if req.UID != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(req.UID))
	}
	b.WriteString("?apikey=")
	b.WriteString(url.QueryEscape(c.config.APIKey))

	if req.RequiresSecret {
		// Legacy endpoints under api/ use a different parameter name for the
		// shared secret than the identity/v2 surface.
		if strings.HasPrefix(req.Path, "api/") {
			b.WriteString("&secret=")
		} else {
			b.WriteString("&apisecret=")
		}
		b.WriteString(url.QueryEscape(c.config.APISecret))
	}

	if req.AccessTokenParam != "" {
		b.WriteString("&access_token=")
		b.WriteString(url.QueryEscape(req.AccessTokenParam))
	}

	if req.RefreshToken != "" {
		b.WriteString("&refresh_token=")
		b.WriteString(url.QueryEscape(req.RefreshToken))
	}

	if req.NullSupport != nil {
		b.WriteString("&nullsupport=")
		b.WriteString(strconv.FormatBool(*req.NullSupport))
	}

	if req.VerificationToken != "" {
		b.WriteString("&verificationtoken=")
		b.WriteString(url.QueryEscape(req.VerificationToken))
	}

	return b.String(), nil
}
