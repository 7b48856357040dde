package main

import (
	"log/slog"
	"time"

	"call-dashboard/internal/config"
	"call-dashboard/internal/httpapi"
	"call-dashboard/internal/session"
	"call-dashboard/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// standardViewPath is where non-elevated sessions land when they hit an
// elevated-only route.
const standardViewPath = "/v1/records"

// newRouter wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func newRouter(cfg config.Config, log *slog.Logger, gate *session.Gate, h httpapi.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(httpapi.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsCfg := cors.DefaultConfig()
	if len(cfg.App.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.App.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsCfg))

	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)

	// protected API group: any logged-in session
	v1 := r.Group("/v1")
	v1.Use(session.Require(gate))
	{
		v1.POST("/auth/logout", h.Logout)
		v1.GET("/me", h.Me)
		v1.PUT("/me/preferences", h.SetPreferences)

		recordsGroup := v1.Group("/records")
		{
			recordsGroup.GET("", h.ListRecords)
			recordsGroup.POST("", h.CreateRecord)
			recordsGroup.PUT("/:id", h.UpdateRecord)
			recordsGroup.DELETE("/:id", h.DeleteRecord)
			recordsGroup.GET("/export", h.ExportCSV)
		}

		v1.GET("/summary", h.Summary)
		v1.GET("/charts", h.Charts)

		// elevated-only: standard sessions get redirected to the records view
		admin := v1.Group("/admin")
		admin.Use(session.RequireElevated(standardViewPath))
		{
			admin.GET("/active-users", h.ActiveUsers)
			admin.GET("/notifications", h.Notifications)
		}
	}

	return r
}
