package widget

import (
	"strconv"
	"sync"

	"bridge/internal/configuration"
)

// TokenStore is the persisted client-side state: one access token string and
// one remember-me flag, nothing else. Injected so the resolver-facing flows
// can be exercised against an in-memory store.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string)
	RememberMe() bool
	SetRememberMe(remember bool)
}

// MemoryTokenStore is a map-backed store keyed with the same keys the browser
// local storage uses. Writes are last-write-wins: a stale in-flight refresh
// losing the race simply gets overwritten.
type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]string)}
}

func (s *MemoryTokenStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.values[configuration.TokenStorageKey]
	return token, ok && token != ""
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[configuration.TokenStorageKey] = token
}

func (s *MemoryTokenStore) RememberMe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[configuration.RememberMeStorageKey] == "true"
}

func (s *MemoryTokenStore) SetRememberMe(remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[configuration.RememberMeStorageKey] = strconv.FormatBool(remember)
}
