package ecommerce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// createMockShoprenterServer creates a mock HTTP server for testing
func createMockShoprenterServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// rewriteTransport sends every request to a test server while keeping the
// path, so production host patterns stay untouched.
type rewriteTransport struct {
	target *url.URL
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func rewritingClient(t *testing.T, server *httptest.Server) *http.Client {
	t.Helper()
	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	return &http.Client{Transport: &rewriteTransport{target: target}}
}

func testConfig() *ShoprenterConfig {
	cfg := NewShoprenterConfig()
	cfg.LookupTimeout = 2 * time.Second
	cfg.WriteTimeout = 2 * time.Second
	return cfg
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *ShoprenterClient {
	t.Helper()
	server := createMockShoprenterServer(t, handler)
	auth := &ResolvedAuth{
		ShopName:   "woodshop",
		AuthHeader: "Basic dGVzdDp0ZXN0",
		APIBaseURL: server.URL,
	}
	limiter := NewRateLimiter(RateLimitConfig{CallsPerSecond: 1000, Burst: 100, MaxConcurrent: 10})
	return NewShoprenterClient(testConfig(), auth, limiter, server.Client(), nil)
}

// memoryTokenStore is a map backed TokenStore
type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]string)}
}

func (s *memoryTokenStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.tokens[key]
	return v, ok, nil
}

func (s *memoryTokenStore) Set(_ context.Context, key, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *memoryTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}
