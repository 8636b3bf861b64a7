package monitor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMonitorRouter(logPath string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterMonitorPage(r)
	RegisterLogsRoute(r, logPath)
	RegisterMetricsRoute(r)
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestLogsRouteReturnsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proofok-api.log")
	content := strings.Repeat("a", maxLogTail) + "last line\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w := get(newMonitorRouter(path), "/logs")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.Len() != maxLogTail || !strings.HasSuffix(w.Body.String(), "last line\n") {
		t.Fatalf("expected the last %d bytes, got %d", maxLogTail, w.Body.Len())
	}
}

func TestLogsRouteMissingFile(t *testing.T) {
	w := get(newMonitorRouter(filepath.Join(t.TempDir(), "missing.log")), "/logs")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestMonitorPageAndMetrics(t *testing.T) {
	r := newMonitorRouter("")

	w := get(r, "/monitor")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ProofOK Monitor") {
		t.Fatalf("expected monitor page, got %d", w.Code)
	}

	w = get(r, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition, got %d", w.Code)
	}
}
