package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/middleware"
	"github.com/conneroisu/contactform/internal/testutils"
)

func newChain(t *testing.T, environment string) (*middleware.MiddlewareChain, *testutils.RecordingLogger) {
	t.Helper()
	cfg := testutils.CreateTestConfig()
	cfg.Server.Environment = environment
	cfg.Server.AllowedOrigins = []string{"http://app.test"}
	logger := testutils.NewRecordingLogger()
	return middleware.NewMiddlewareChain(middleware.MiddlewareDependencies{Config: cfg, Logger: logger}), logger
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("ok"))
})

func TestNewMiddlewareChainPanicsWithoutDeps(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewMiddlewareChain(middleware.MiddlewareDependencies{Logger: testutils.NewRecordingLogger()})
	})
	assert.Panics(t, func() {
		middleware.NewMiddlewareChain(middleware.MiddlewareDependencies{Config: testutils.CreateTestConfig()})
	})
}

func TestApplyRejectsNilHandler(t *testing.T) {
	chain, _ := newChain(t, "development")
	assert.Panics(t, func() { chain.Apply(nil) })
}

func TestOrderIsFirstAddedOutermost(t *testing.T) {
	chain, _ := newChain(t, "development")
	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	chain.AddMiddleware(mark("a"))
	chain.AddMiddleware(mark("b"))

	chain.Apply(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		origin      string
		wantAllow   string
	}{
		{"configured origin", "production", "http://app.test", "http://app.test"},
		{"own host", "production", "http://localhost:8080", "http://localhost:8080"},
		{"unknown origin in production", "production", "http://evil.test", ""},
		{"unknown origin in development", "development", "http://evil.test", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, _ := newChain(t, tt.environment)
			req := httptest.NewRequest(http.MethodGet, "/contacts/new", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			chain.Apply(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusTeapot, rec.Code)
		})
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	chain, _ := newChain(t, "development")
	called := false
	handler := chain.Apply(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/contacts/new", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}

func TestSecurityHeaders(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		chain, _ := newChain(t, env)
		rec := httptest.NewRecorder()
		chain.Apply(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
		if env == "production" {
			assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
		} else {
			assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
		}
	}
}

func TestRequestLogging(t *testing.T) {
	chain, logger := newChain(t, "development")
	chain.Apply(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/contacts/new", nil))

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, logging.LevelDebug, entries[0].Level)
	assert.Equal(t, "http", entries[0].Component)
	assert.Equal(t, "/contacts/new", entries[0].Fields["path"])
	assert.Equal(t, http.StatusTeapot, entries[0].Fields["status"])

	failing := chain.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	entries = logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, logging.LevelWarn, entries[1].Level)
}
