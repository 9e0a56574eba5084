package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	webhookHandler *Webhook
	meetingHandler *Meeting
	auth           *middleware.AuthMiddleware
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, webhookHandler *Webhook, meetingHandler *Meeting, auth *middleware.AuthMiddleware) *Router {
	return &Router{
		cfg:            cfg,
		webhookHandler: webhookHandler,
		meetingHandler: meetingHandler,
		auth:           auth,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupWebhookRoutes(v1)
	rt.setupMeetingRoutes(v1)
}

func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhooks := g.Group("/webhooks")
	if rt.auth != nil {
		webhooks.Use(rt.auth.Authenticate, rt.auth.VerifySignature)
	}
	webhooks.POST("/meeting-summary", rt.webhookHandler.HandleMeetingSummary)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")
	if rt.auth != nil {
		meetings.Use(rt.auth.Authenticate)
	}
	meetings.PUT("/:id/metadata", rt.meetingHandler.UpdateMetadata)
	meetings.GET("/:id/runs", rt.meetingHandler.ListRuns)
	meetings.GET("/:id/runs/latest", rt.meetingHandler.LatestRun)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
