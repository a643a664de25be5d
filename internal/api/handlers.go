package api

import (
	"net/http"

	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// View names used in routes and metrics.
const (
	ViewDashboard = "dashboard"
	ViewYearly    = "yearly"
	ViewTrend     = "trend"
	ViewMap       = "map"
	ViewPoe       = "poe"
	ViewMonthly   = "monthly"
)

// MIMEApplicationMsgpack is the content type of msgpack responses.
const MIMEApplicationMsgpack = "application/msgpack"

// Handler handles API requests.
type Handler struct {
	service DashboardService
	metrics MetricsRecorder
	version string
}

// NewHandler creates a new API handler. metrics may be nil.
func NewHandler(service DashboardService, metrics MetricsRecorder, version string) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
		version: version,
	}
}

// HandleOptions returns the year bounds, countries and POEs of the full dataset.
func (h *Handler) HandleOptions(c echo.Context) error {
	opts, err := h.service.Options(c.Request().Context())
	if err != nil {
		return RespondWithError(c, FromError(err))
	}
	return c.JSON(http.StatusOK, opts)
}

// HandleDashboard returns every view for the selection in the query string.
func (h *Handler) HandleDashboard(c echo.Context) error {
	d, apiErr := h.query(c, ViewDashboard)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}
	return c.JSON(http.StatusOK, d)
}

// HandleDashboardMsgpack is HandleDashboard encoded as msgpack.
func (h *Handler) HandleDashboardMsgpack(c echo.Context) error {
	d, apiErr := h.query(c, ViewDashboard)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}
	data, err := msgpack.Marshal(d)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to encode msgpack", err))
	}
	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
}

// HandleView returns a single view.
func (h *Handler) HandleView(c echo.Context) error {
	view := c.Param("view")
	switch view {
	case ViewYearly, ViewTrend, ViewMap, ViewPoe, ViewMonthly:
	default:
		return RespondWithError(c, NewNotFoundError("view", view))
	}

	d, apiErr := h.query(c, view)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}

	switch view {
	case ViewYearly:
		return c.JSON(http.StatusOK, d.YearlyTotals)
	case ViewTrend:
		return c.JSON(http.StatusOK, d.Trend)
	case ViewMap:
		return c.JSON(http.StatusOK, d.Map)
	case ViewPoe:
		return c.JSON(http.StatusOK, d.ByPoe)
	default:
		return c.JSON(http.StatusOK, d.Monthly)
	}
}

func (h *Handler) query(c echo.Context, view string) (*models.Dashboard, *APIError) {
	in, apiErr := ParseSelection(c.QueryParams())
	if apiErr != nil {
		h.observe(view, "error")
		return nil, apiErr
	}
	in.Views = viewSet(view)

	d, err := h.service.Query(c.Request().Context(), in)
	if err != nil {
		h.observe(view, errorOutcome(err))
		return nil, FromError(err)
	}

	outcome := "ok"
	if viewEmpty(d, view) {
		outcome = "empty"
	}
	h.observe(view, outcome)
	return d, nil
}

func (h *Handler) observe(view, outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveQuery(view, outcome)
	}
}

// viewSet limits a single-view request to the view it returns.
func viewSet(view string) models.ViewSet {
	switch view {
	case ViewYearly:
		return models.ViewYearly
	case ViewTrend:
		return models.ViewTrend
	case ViewMap:
		return models.ViewMap
	case ViewPoe:
		return models.ViewByPoe
	case ViewMonthly:
		return models.ViewMonthly
	default:
		return models.AllViews
	}
}

func viewEmpty(d *models.Dashboard, view string) bool {
	switch view {
	case ViewYearly:
		return d.YearlyTotals.Empty()
	case ViewTrend:
		return d.Trend.Empty()
	case ViewMap:
		return d.Map.Empty()
	case ViewPoe:
		return d.ByPoe.Empty()
	case ViewMonthly:
		return d.Monthly.Empty()
	default:
		return d.Trend.Empty()
	}
}
