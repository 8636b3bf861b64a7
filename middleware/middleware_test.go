package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeadersAllowSameOriginFraming(t *testing.T) {
	w := serve(newRouter(SecurityHeaders()), httptest.NewRequest(http.MethodGet, "/ping", nil))

	if got := w.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Fatalf("expected SAMEORIGIN, got %q", got)
	}
	csp := w.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "frame-src 'self'") || !strings.Contains(csp, "default-src 'self'") {
		t.Fatalf("unexpected CSP: %q", csp)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected nosniff header")
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"https://studio.example.org/", ""}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://studio.example.org")
	w := serve(r, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://studio.example.org" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://studio.example.org")
	if w := serve(r, req); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected no CORS headers for unknown origin, got %v", w.Header())
	}

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	if w := serve(r, req); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 preflight for unknown origin, got %d", w.Code)
	}
}

func TestCORSMiddlewareWildcard(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"*"}))
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Origin", "https://anyone.example.net")
	if got := serve(r, req).Header().Get("Access-Control-Allow-Origin"); got != "https://anyone.example.net" {
		t.Fatalf("expected wildcard to allow origin, got %q", got)
	}
}

func TestRequireMonitorToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("watch-token"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	r := newRouter(RequireMonitorToken(string(hash)))

	cases := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{name: "missing", target: "/ping", want: http.StatusUnauthorized},
		{name: "wrong query", target: "/ping?token=nope", want: http.StatusUnauthorized},
		{name: "query", target: "/ping?token=watch-token", want: http.StatusOK},
		{name: "header", target: "/ping", header: "watch-token", want: http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.header != "" {
			req.Header.Set("X-Monitor-Token", tc.header)
		}
		if w := serve(r, req); w.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}

	disabled := newRouter(RequireMonitorToken(""))
	if w := serve(disabled, httptest.NewRequest(http.MethodGet, "/ping?token=watch-token", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no hash is configured, got %d", w.Code)
	}
}

func TestRequestMetricsPassesThrough(t *testing.T) {
	r := newRouter(RequestMetrics())
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil)); w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("expected handler response, got %d %q", w.Code, w.Body.String())
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unmatched route, got %d", w.Code)
	}
}
