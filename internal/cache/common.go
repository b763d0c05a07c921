package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"bridge/internal/configuration"
	"bridge/internal/models"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

type RueidisCache struct {
	client rueidis.Client
}

// NewCache builds the configured cache backend. Returns nil when no cache is
// configured; callers treat a nil cache as "rate limiting disabled".
func NewCache(config models.CacheConfiguration) ICache {
	if config.Type != "redis" {
		return nil
	}

	cache, err := newRueidisCache(
		config.Redis.Hosts,
		config.Redis.Password,
		config.Redis.TLSEnabled,
		config.Redis.TLSServerName,
	)
	if err != nil {
		zap.L().Fatal("Failed to initialize cache", zap.Error(err))
	}
	return cache
}

func newRueidisCache(
	hosts []string,
	password string,
	tlsEnabled bool,
	tlsServerName string,
) (*RueidisCache, error) {
	clientOption := rueidis.ClientOption{
		InitAddress: hosts,
		Password:    password,
	}

	if tlsEnabled {
		clientOption.TLSConfig = &tls.Config{
			ServerName: tlsServerName,
			MinVersion: tls.VersionTLS12,
		}
	}

	client, err := rueidis.NewClient(clientOption)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}
	return &RueidisCache{client: client}, nil
}

func (r *RueidisCache) GetRateLimit(userIdentifier string, requestsPerMinute int) (int, error) {
	ctx := context.Background()

	key := fmt.Sprintf(configuration.CacheAppRateLimitKey, userIdentifier)
	count, err := r.client.Do(ctx, r.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		expireErr := r.client.Do(ctx, r.client.B().Expire().Key(key).Seconds(int64(1*time.Minute.Seconds())).Build()).
			Error()
		if expireErr != nil {
			return 0, expireErr
		}
	}

	if int(count) > requestsPerMinute {
		retryAfter, ttlErr := r.client.Do(ctx, r.client.B().Ttl().Key(key).Build()).AsInt64()
		if ttlErr != nil {
			return 0, ttlErr
		}

		return int(retryAfter), nil
	}

	return 0, nil
}

func (r *RueidisCache) Close() error {
	r.client.Close()
	return nil
}
