package cache

type ICache interface {
	// GetRateLimit counts a request for the identifier and returns the number
	// of seconds to wait before retrying, or 0 when the request is allowed.
	GetRateLimit(userIdentifier string, requestsPerMinute int) (int, error)

	Close() error
}
