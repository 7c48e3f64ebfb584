package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// InMemoryTokenStore caches remote access tokens in process memory.
// Tokens are not shared across instances, so each instance exchanges its own.
type InMemoryTokenStore struct {
	cache *gocache.Cache
}

// NewInMemoryTokenStore creates a new in-memory token store
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{
		cache: gocache.New(55*time.Minute, 10*time.Minute),
	}
}

// Get returns a cached token
func (s *InMemoryTokenStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	token, ok := v.(string)
	return token, ok, nil
}

// Set stores a token until ttl elapses
func (s *InMemoryTokenStore) Set(_ context.Context, key, token string, ttl time.Duration) error {
	s.cache.Set(key, token, ttl)
	return nil
}

// Delete drops a cached token
func (s *InMemoryTokenStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Len returns the number of cached tokens, including expired ones not yet evicted
func (s *InMemoryTokenStore) Len() int {
	return s.cache.ItemCount()
}
