// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleHealth returns server health status. The dataset is reported as
// ready once it has loaded.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "ok"
	if !h.service.Ready() {
		status = "loading"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  status,
		"ready":   h.service.Ready(),
		"version": h.version,
	})
}
