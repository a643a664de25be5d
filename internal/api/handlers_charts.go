package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/foreign-arrivals/dashboard/internal/charts"
	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/labstack/echo/v4"
	"gonum.org/v1/plot/vg"
)

// MIMEImagePNG is the content type of chart responses.
const MIMEImagePNG = "image/png"

const maxChartInches = 40

// HandleChart renders the trend, monthly or poe view as a PNG image.
// An empty view answers 204 so the page can show its own message.
func (h *Handler) HandleChart(c echo.Context) error {
	view := c.Param("view")
	var render func(d *models.Dashboard, opts charts.Options) ([]byte, error)
	switch view {
	case ViewTrend:
		render = func(d *models.Dashboard, opts charts.Options) ([]byte, error) {
			return charts.Trend(d.Trend, opts)
		}
	case ViewMonthly:
		render = func(d *models.Dashboard, opts charts.Options) ([]byte, error) {
			return charts.Monthly(d.Monthly, opts)
		}
	case ViewPoe:
		render = func(d *models.Dashboard, opts charts.Options) ([]byte, error) {
			return charts.ByPoe(d.ByPoe, opts)
		}
	default:
		return RespondWithError(c, NewNotFoundError("chart", view))
	}

	opts, apiErr := parseChartOptions(c, view)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}

	d, apiErr := h.query(c, view)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}

	data, err := render(d, opts)
	if errors.Is(err, charts.ErrNoData) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to render chart", err))
	}
	return c.Blob(http.StatusOK, MIMEImagePNG, data)
}

// parseChartOptions reads optional width and height in inches.
func parseChartOptions(c echo.Context, view string) (charts.Options, *APIError) {
	opts := charts.Options{Title: chartTitle(view)}
	for _, f := range []struct {
		name string
		dst  *vg.Length
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		raw := c.QueryParam(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > maxChartInches {
			return opts, NewValidationError(f.name, errors.New("must be a number of inches between 0 and 40"))
		}
		*f.dst = vg.Length(v) * vg.Inch
	}
	return opts, nil
}

func chartTitle(view string) string {
	switch view {
	case ViewTrend:
		return "Arrivals by year"
	case ViewMonthly:
		return "Arrivals by month"
	default:
		return "Arrivals by point of entry"
	}
}
