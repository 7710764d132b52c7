package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lending-backend/internal/applications"
	"lending-backend/internal/assessments"
	googleauth "lending-backend/internal/auth"
	"lending-backend/internal/clients"
	"lending-backend/internal/documents"
	"lending-backend/internal/shared/config"
	"lending-backend/internal/shared/metrics"
	"lending-backend/internal/shared/server/middleware"
	"lending-backend/internal/shared/server/respond"
	"lending-backend/internal/uploads"
	"lending-backend/internal/usage"
	"lending-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts. Handlers left nil are
// skipped so partial wiring stays usable in tests.
type RouterDeps struct {
	Config              config.Config
	ClientsHandler      *clients.Handler
	ApplicationsHandler *applications.Handler
	AssessmentsHandler  *assessments.Handler
	DocumentsHandler    *documents.Handler
	UsageHandler        *usage.Handler
	UsersHandler        *users.Handler
	GoogleAuth          *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"ASSESS": {Rate: 0.5, Burst: 5},
			"UPLOAD": {Rate: 1, Burst: 10},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method != http.MethodPost {
				return ""
			}
			path := c.FullPath()
			switch {
			case strings.HasSuffix(path, "/assessments"), strings.HasSuffix(path, "/risk"), strings.HasSuffix(path, "/analyze"):
				return "ASSESS"
			case strings.HasSuffix(path, "/documents"), strings.HasSuffix(path, "/presign"), strings.HasSuffix(path, "/from-s3"):
				return "UPLOAD"
			}
			return ""
		},
	}))
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ClientsHandler != nil {
		deps.ClientsHandler.RegisterRoutes(api)
	}
	if deps.ApplicationsHandler != nil {
		deps.ApplicationsHandler.RegisterRoutes(api)
	}
	if deps.AssessmentsHandler != nil {
		deps.AssessmentsHandler.RegisterRoutes(api)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	if isDev(cfg.Env) {
		dev := api.Group("/dev")
		if deps.UsageHandler != nil {
			deps.UsageHandler.RegisterDevRoutes(dev)
		}
	}

	return r
}

func isDev(env string) bool {
	return env == "dev" || env == "local"
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
