package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"paper-review/internal/shared/config"
)

func TestBuildWiresRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Env = ""

	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.Config.Env != "dev" {
		t.Fatalf("expected env to default to dev, got %q", app.Config.Env)
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from upload page, got %d", w.Code)
	}
	if app.Sessions.Len() != 1 {
		t.Fatalf("expected one session after first page view, got %d", app.Sessions.Len())
	}
}

func TestBuildRejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://example.com/upload", "http://"} {
		cfg := config.Default()
		cfg.AnalysisEndpoint = endpoint
		if _, err := Build(cfg); err == nil {
			t.Fatalf("expected error for endpoint %q", endpoint)
		}
	}
}
