package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/roundtable-hq/orchestrator/internal/service"
)

// writeError maps service errors to HTTP responses.
func writeError(c echo.Context, err error) error {
	var validationErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
