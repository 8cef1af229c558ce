// Package v1 provides HTTP handlers for the dialogue orchestrator.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/roundtable-hq/orchestrator/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Session lifecycle
	e.POST("/v1/sessions", h.CreateSession)
	e.POST("/v1/sessions/:session_id/start", h.StartSession)
	e.POST("/v1/sessions/:session_id/stop", h.StopSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)

	// Transcript and audit
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)
	e.GET("/v1/sessions/:session_id/audit", h.GetSessionAudit)

	// Catalog
	e.GET("/v1/providers", h.ListProviders)
	e.GET("/v1/personalities", h.ListPersonalities)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
