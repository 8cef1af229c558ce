package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListProviders lists the provider catalog.
// GET /v1/providers
func (h *Handler) ListProviders(c echo.Context) error {
	ctx := c.Request().Context()
	providers, err := h.service.ListProviders(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"providers": providers,
	})
}

// ListPersonalities lists the personality catalog.
// GET /v1/personalities
func (h *Handler) ListPersonalities(c echo.Context) error {
	ctx := c.Request().Context()
	personalities, err := h.service.ListPersonalities(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"personalities": personalities,
	})
}
