// Package api wires the HTTP surface: handlers, middleware, and routes.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"timeclock/internal/attendance"
	"timeclock/internal/auth"
	"timeclock/internal/config"
	"timeclock/internal/httpmiddleware"
	"timeclock/internal/queue"
	"timeclock/internal/store"
	"timeclock/internal/users"
)

// Handlers bundles the dependencies the HTTP layer needs.
type Handlers struct {
	cfg   config.App
	loc   *time.Location
	log   *zap.Logger
	auth  *auth.Service
	users *users.Repository
	att   *attendance.Service
	queue queue.Queue
}

// NewHandlers creates the handler set.
func NewHandlers(cfg config.App, log *zap.Logger, authSvc *auth.Service,
	userRepo *users.Repository, attSvc *attendance.Service, q queue.Queue) *Handlers {
	return &Handlers{
		cfg:   cfg,
		loc:   cfg.Location(),
		log:   log,
		auth:  authSvc,
		users: userRepo,
		att:   attSvc,
		queue: q,
	}
}

// NewRouter wires routes and middleware.
func NewRouter(h *Handlers, db *store.DB, rdb *store.Redis) *gin.Engine {
	if h.cfg.Env == "production" || h.cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(h.cfg.RateLimitPerMin, h.cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := rdb.Healthy(c.Request.Context())
		dbHealthy := db != nil && db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	protected := v1.Group("", auth.RequireAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	protected.GET("/clock/status", h.ClockStatus)
	protected.POST("/clock/in", h.ClockIn)
	protected.POST("/clock/out", h.ClockOut)
	protected.POST("/clock/backfill", h.Backfill)
	protected.GET("/attendance", h.History)
	protected.GET("/attendance/stats", h.HistoryStats)
	protected.GET("/attendance/export", h.ExportHistory)

	admin := protected.Group("/admin", auth.RequireAdmin(h.users))
	admin.GET("/users", h.ListUsers)
	admin.PUT("/users/:id/schedule", h.UpdateSchedule)
	admin.GET("/logs", h.AllLogs)
	admin.GET("/logs/export", h.ExportAllLogs)

	return r
}

// corsMiddleware allows browser requests from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
