package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/cache"
	"github.com/stockx-tools/stockroom/pkg/client"
)

// newTestClient spins up an httptest server serving the given mux plus a
// token endpoint, and returns an initialized client pointed at it.
func newTestClient(t *testing.T, mux *http.ServeMux) *client.Client {
	t.Helper()

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := client.New(&client.Config{
		BaseURL:           server.URL,
		APIKey:            "test-api-key",
		TokenURL:          server.URL + "/oauth/token",
		RequestInterval:   time.Millisecond,
		RetryMaxAttempts:  2,
		RetryInitialDelay: time.Millisecond,
		RetryTimeout:      time.Second,
		Logger:            zap.NewNop(),
	})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize client: %v", err)
	}
	t.Cleanup(c.Close)

	return c
}

// mapCache backs catalog tests; ristretto's buffered writes would make
// single-upstream-call assertions racy.
type mapCache struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string]interface{})}
}

func (m *mapCache) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok
}

func (m *mapCache) Set(key string, value interface{}, _ time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return true
}

func (m *mapCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *mapCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]interface{})
}

func (m *mapCache) Close() {}

var _ cache.Cache = (*mapCache)(nil)

func newTestCatalog(t *testing.T, mux *http.ServeMux) *Catalog {
	t.Helper()
	return newCatalog(newTestClient(t, mux), newMapCache(), zap.NewNop())
}
