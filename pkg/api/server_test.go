package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/store"
	"github.com/ovokpus/PostAssist/pkg/version"
)

func TestHealthAllConfigured(t *testing.T) {
	router := newTestServer(newStubService(), &stubVerifier{}).Router()

	for _, path := range []string{"/health", "/"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[HealthResponse](t, rec)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, version.Version, resp.Version)
		assert.Equal(t, serviceConfigured, resp.Services["llm"])
		assert.Equal(t, serviceConfigured, resp.Services["search"])
		assert.Equal(t, store.HealthConnected, resp.Services["store"])
	}
}

func TestHealthDegradedStore(t *testing.T) {
	server := NewServer(testConfig(), newStubService(), &stubVerifier{},
		stubHealth(store.HealthDegraded), nil)

	rec := doJSON(t, server.Router(), http.MethodGet, "/health", nil)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, store.HealthDegraded, resp.Services["store"])
}

func TestHealthMissingCredentials(t *testing.T) {
	cfg := &config.Config{HTTPPort: "8000"}
	server := NewServer(cfg, newStubService(), &stubVerifier{}, nil, nil)

	rec := doJSON(t, server.Router(), http.MethodGet, "/health", nil)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, serviceNotConfigured, resp.Services["llm"])
	assert.Equal(t, serviceNotConfigured, resp.Services["search"])
	assert.Equal(t, store.HealthNotAvailable, resp.Services["store"])
}

func TestHealthMissingSearchKeyDegrades(t *testing.T) {
	cfg := testConfig()
	cfg.Search.APIKey = ""
	server := NewServer(cfg, newStubService(), &stubVerifier{},
		stubHealth(store.HealthConnected), nil)

	rec := doJSON(t, server.Router(), http.MethodGet, "/health", nil)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, serviceNotConfigured, resp.Services["search"])
}

// Running without a remote store is a deliberate deployment choice, not a
// degradation.
func TestHealthStoreNotAvailableStaysHealthy(t *testing.T) {
	server := NewServer(testConfig(), newStubService(), &stubVerifier{},
		stubHealth(store.HealthNotAvailable), nil)

	rec := doJSON(t, server.Router(), http.MethodGet, "/health", nil)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, store.HealthNotAvailable, resp.Services["store"])
}

func TestHTTPServerAddr(t *testing.T) {
	server := newTestServer(newStubService(), &stubVerifier{})
	assert.Equal(t, ":8000", server.HTTPServer().Addr)
}

func TestCORSHeaders(t *testing.T) {
	router := newTestServer(newStubService(), &stubVerifier{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
