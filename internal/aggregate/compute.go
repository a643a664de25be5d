package aggregate

import (
	"context"

	"github.com/foreign-arrivals/dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

// EmptyDashboard returns a dashboard whose views are all present but empty.
func EmptyDashboard(targetYear int) *models.Dashboard {
	return &models.Dashboard{
		YearlyTotals: models.YearlyTotals{Year: targetYear, Totals: []models.CountryTotal{}},
		Trend:        NewPivotBuilder[int]("year").Build(),
		Map:          NewMapView(nil),
		ByPoe:        NewPivotBuilder[string]("poe").Build(),
		Monthly:      NewPivotBuilder[int]("month").Build(),
	}
}

// Compute builds every view from the same filtered view. The views share no
// state, so they run concurrently; the result does not depend on that.
// targetYear selects the yearly-totals year.
func Compute(ctx context.Context, view []models.JoinedRecord, targetYear int) (*models.Dashboard, error) {
	return ComputeViews(ctx, view, targetYear, models.AllViews)
}

// ComputeViews is Compute restricted to views. Views left out stay empty.
func ComputeViews(ctx context.Context, view []models.JoinedRecord, targetYear int, views models.ViewSet) (*models.Dashboard, error) {
	d := EmptyDashboard(targetYear)
	g, ctx := errgroup.WithContext(ctx)

	if views.Has(models.ViewYearly) {
		g.Go(func() error {
			d.YearlyTotals = YearlyTotals(view, targetYear)
			return ctx.Err()
		})
	}
	if views.Has(models.ViewTrend) {
		g.Go(func() error {
			d.Trend = ArrivalTrend(view)
			return ctx.Err()
		})
	}
	if views.Has(models.ViewMap) {
		g.Go(func() error {
			d.Map = MapPoints(view)
			return ctx.Err()
		})
	}
	if views.Has(models.ViewByPoe) {
		g.Go(func() error {
			d.ByPoe = ByPoe(view)
			return ctx.Err()
		})
	}
	if views.Has(models.ViewMonthly) {
		g.Go(func() error {
			d.Monthly = Monthly(view)
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
