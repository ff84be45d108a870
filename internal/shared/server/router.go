package server

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-review/internal/services/health"
	"paper-review/internal/shared/config"
	"paper-review/internal/shared/metrics"
	"paper-review/internal/shared/server/middleware"
	"paper-review/internal/shared/server/respond"
	"paper-review/internal/web"
)

// RouterDeps carries what the router needs to register routes.
type RouterDeps struct {
	Config config.Config
	Pages  *web.Handler
	Health *health.Service
	// Limiter is shared by the upload route; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Session(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	r.SetHTMLTemplate(web.Templates())

	static, err := fs.Sub(web.StaticFS, "static")
	if err == nil {
		r.StaticFS("/static", http.FS(static))
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	r.GET("/metrics", metrics.Handler())

	uploadLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": middleware.PerMinute(cfg.UploadRatePerMin),
		},
		Limiter: deps.Limiter,
	})
	if deps.Pages != nil {
		deps.Pages.RegisterRoutes(r, uploadLimit)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
