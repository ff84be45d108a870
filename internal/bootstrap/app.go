package bootstrap

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"paper-review/internal/services/health"
	"paper-review/internal/shared/config"
	"paper-review/internal/shared/server"
	"paper-review/internal/shared/telemetry"
	"paper-review/internal/uploads"
	"paper-review/internal/web"
)

// App holds shared dependencies of the web frontend.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	Client   *uploads.Client
	Sessions *web.Sessions
	Pages    *web.Handler
	Health   *health.Service
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := validateEndpoint(cfg.AnalysisEndpoint); err != nil {
		return nil, err
	}

	client := uploads.NewClient(cfg.AnalysisEndpoint, &http.Client{})
	// One breaker for every session: they share the upstream.
	sender := uploads.NewBreakerSender(client, cfg.BreakerFailures, cfg.BreakerOpen)
	timeout := cfg.UploadTimeout
	sessions := web.NewSessions(func() *uploads.Controller {
		return uploads.NewController(sender, timeout)
	})
	pages := web.NewHandler(sessions, cfg.MaxUploadBytes())

	app := &App{
		Config:   cfg,
		Client:   client,
		Sessions: sessions,
		Pages:    pages,
		Health:   health.NewService(sessions, cfg.AnalysisEndpoint),
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Pages:  pages,
		Health: app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":            cfg.Env,
		"endpoint":       cfg.AnalysisEndpoint,
		"upload_timeout": cfg.UploadTimeout.String(),
		"max_upload_mb":  cfg.MaxUploadMB,
	})
	return app, nil
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse analysis endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("analysis endpoint %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("analysis endpoint %q: missing host", raw)
	}
	return nil
}
