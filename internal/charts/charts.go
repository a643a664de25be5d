// Package charts renders dashboard pivots to PNG images with gonum/plot.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"time"

	"github.com/foreign-arrivals/dashboard/internal/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when the pivot has no rows to draw.
var ErrNoData = errors.New("no data to chart")

// Default image size.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Trend draws one line per country across years. A country only gets
// points for the years it actually has data.
func Trend(p models.Pivot[int], opts Options) ([]byte, error) {
	return lines(p, opts, "Year", strconv.Itoa)
}

// Monthly draws one line per country across months, with the same
// absent-cell handling as Trend.
func Monthly(p models.Pivot[int], opts Options) ([]byte, error) {
	return lines(p, opts, "Month", monthLabel)
}

func lines(p models.Pivot[int], opts Options, xLabel string, tickLabel func(int) string) ([]byte, error) {
	if p.Empty() {
		return nil, ErrNoData
	}

	plt := newPlot(opts.Title, xLabel, "Arrivals")
	for i, country := range p.Columns {
		var pts plotter.XYs
		for _, row := range p.Rows {
			if v, ok := row.Values[country]; ok {
				pts = append(pts, plotter.XY{X: float64(row.Key), Y: float64(v)})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("line for %s: %w", country, err)
		}
		c := plotutil.Color(i)
		line.Color = c
		line.Width = vg.Points(2)
		points.Color = c
		plt.Add(line, points)
		plt.Legend.Add(country, line)
	}

	ticks := make([]plot.Tick, 0, len(p.Rows))
	for _, row := range p.Rows {
		ticks = append(ticks, plot.Tick{Value: float64(row.Key), Label: tickLabel(row.Key)})
	}
	plt.X.Tick.Marker = plot.ConstantTicks(ticks)

	return encode(plt, opts)
}

// ByPoe draws grouped bars, one group per point of entry.
func ByPoe(p models.Pivot[string], opts Options) ([]byte, error) {
	if p.Empty() {
		return nil, ErrNoData
	}

	labels := make([]string, len(p.Rows))
	for i, row := range p.Rows {
		labels[i] = row.Key
	}
	return groupedBars(opts, "Point of entry", labels, p.Columns, func(i int, country string) float64 {
		return float64(p.Rows[i].Values[country])
	})
}

func groupedBars(opts Options, xLabel string, groups, series []string, value func(row int, country string) float64) ([]byte, error) {
	plt := newPlot(opts.Title, xLabel, "Arrivals")

	w := vg.Points(48 / float64(max(len(series), 1)))
	if w < vg.Points(3) {
		w = vg.Points(3)
	}

	for i, country := range series {
		values := make(plotter.Values, len(groups))
		for r := range groups {
			values[r] = value(r, country)
		}
		bars, err := plotter.NewBarChart(values, w)
		if err != nil {
			return nil, fmt.Errorf("bars for %s: %w", country, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(len(series)-1)/2) * w
		plt.Add(bars)
		plt.Legend.Add(country, bars)
	}
	plt.NominalX(groups...)

	return encode(plt, opts)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	plt := plot.New()
	plt.Title.Text = title
	plt.Title.TextStyle.Font.Size = vg.Points(14)
	plt.X.Label.Text = xLabel
	plt.Y.Label.Text = yLabel
	plt.Legend.Top = true
	plt.BackgroundColor = color.White
	plt.Add(plotter.NewGrid())
	return plt
}

func encode(plt *plot.Plot, opts Options) ([]byte, error) {
	w, h := opts.size()
	wt, err := plt.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("creating png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func monthLabel(m int) string {
	if m >= 1 && m <= 12 {
		return time.Month(m).String()[:3]
	}
	return strconv.Itoa(m)
}
