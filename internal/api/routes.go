// Package api wires the newsdesk handlers to routes and builds the server.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/auth"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/handlers"
)

// Handlers groups the route handlers.
type Handlers struct {
	Reports    *handlers.ReportHandler
	Moderation *handlers.ModerationHandler
	Categories *handlers.CategoryHandler
}

// SetupRoutes registers the service routes. Health routes are registered
// by the server builder.
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string, metricsHandler http.Handler) {
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")

	v1.POST("/reports", h.Reports.Submit)
	v1.POST("/reports/:id/actions", h.Reports.RecordAction)
	v1.GET("/categories", h.Categories.List)

	mod := v1.Group("/moderation")
	mod.Use(auth.Middleware(jwtSecret))
	mod.GET("/reports", h.Moderation.List)
	mod.GET("/reports/:id", h.Moderation.Get)
	mod.PATCH("/reports", h.Moderation.Decide)
	mod.POST("/reports", h.Moderation.Decide)
}
