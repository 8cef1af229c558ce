package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// CreateSession creates a new discussion session in pending state.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	var req domain.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	session, err := h.service.CreateSession(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, domain.CreateSessionResponse{
		SessionID: session.SessionID,
		Status:    session.Status,
	})
}

// StartSession starts a pending session's turn loop.
// POST /v1/sessions/:session_id/start
func (h *Handler) StartSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	ctx := c.Request().Context()
	session, err := h.service.StartSession(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, domain.CreateSessionResponse{
		SessionID: session.SessionID,
		Status:    session.Status,
	})
}

// StopSession requests a cooperative stop of a running session.
// POST /v1/sessions/:session_id/stop
func (h *Handler) StopSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	ctx := c.Request().Context()
	if err := h.service.StopSession(ctx, sessionID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"session_id": sessionID, "status": "stop_requested"})
}

// GetSession returns a session with its participants.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	ctx := c.Request().Context()
	state, err := h.service.GetSessionState(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, state)
}
