package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa911/portfolio/internal/logging"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.Any("/contact", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func do(router *gin.Engine, method, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/contact", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClientIP(t *testing.T) {
	router := newRouter(RateLimitMiddleware(RateLimitConfig{RPS: 0.5, Burst: 2}))

	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "198.51.100.1:1000", nil).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "198.51.100.1:1001", nil).Code)

	w := do(router, http.MethodPost, "198.51.100.1:1002", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error": "Rate limit exceeded. Please try again later."}`, w.Body.String())
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	// Another client has its own bucket
	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "198.51.100.2:1000", nil).Code)
}

func TestIPRateLimiterDropsIdleClients(t *testing.T) {
	limiters := newIPRateLimiter(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiters.now = func() time.Time { return now }

	limiters.get("a")
	limiters.get("b")
	require.Len(t, limiters.clients, 2)

	now = now.Add(2 * time.Minute)
	limiters.get("b")
	assert.Len(t, limiters.clients, 1)
	assert.Contains(t, limiters.clients, "b")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{"any origin by default", nil, http.MethodPost, "https://site.example", http.StatusOK, "https://site.example"},
		{"no origin header", nil, http.MethodGet, "", http.StatusOK, "*"},
		{"listed origin", []string{"https://site.example"}, http.MethodPost, "https://site.example", http.StatusOK, "https://site.example"},
		{"unlisted origin", []string{"https://site.example"}, http.MethodPost, "https://evil.example", http.StatusForbidden, ""},
		{"wildcard", []string{"*"}, http.MethodPost, "https://other.example", http.StatusOK, "https://other.example"},
		{"preflight", nil, http.MethodOptions, "https://site.example", http.StatusNoContent, "https://site.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(CORS(CORSConfig{AllowedOrigins: tt.allowed}))
			headers := map[string]string{}
			if tt.origin != "" {
				headers["Origin"] = tt.origin
			}

			w := do(router, tt.method, "198.51.100.1:1000", headers)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowed, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestID(t *testing.T) {
	router := newRouter(RequestID())

	w := do(router, http.MethodGet, "198.51.100.1:1000", nil)
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	w = do(router, http.MethodGet, "198.51.100.1:1000", map[string]string{"X-Request-ID": id})
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	w = do(router, http.MethodGet, "198.51.100.1:1000", map[string]string{"X-Request-ID": "<script>"})
	assert.NotEqual(t, "<script>", w.Header().Get("X-Request-ID"))
}

func TestSecurityHeaders(t *testing.T) {
	w := do(newRouter(SecurityHeaders(true)), http.MethodGet, "198.51.100.1:1000", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))

	w = do(newRouter(SecurityHeaders(false)), http.MethodGet, "198.51.100.1:1000", nil)
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.LevelInfo)

	do(newRouter(RequestLogger(logger, false)), http.MethodPost, "198.51.100.1:1000", nil)
	assert.Empty(t, buf.String())

	do(newRouter(RequestID(), RequestLogger(logger, true)), http.MethodPost, "198.51.100.1:1000", nil)
	assert.Contains(t, buf.String(), "[HTTP]")
	assert.Contains(t, buf.String(), "/contact")
}
