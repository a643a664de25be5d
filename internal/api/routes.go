// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API routes with the Echo instance. ws may be
// nil to disable the live query socket.
func RegisterRoutes(e *echo.Echo, h *Handler, ws *WebSocketHandler) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.HandleHealth)
	apiGroup.GET("/options", h.HandleOptions)

	apiGroup.GET("/dashboard", h.HandleDashboard)
	apiGroup.GET("/dashboard/msgpack", h.HandleDashboardMsgpack)
	apiGroup.GET("/views/:view", h.HandleView)
	apiGroup.GET("/charts/:view", h.HandleChart)

	if ws != nil {
		apiGroup.GET("/ws/dashboard", ws.HandleWebSocket)
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// SetupMiddleware configures the error handler shared by every route
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
