// interfaces.go - Handler interface definitions
package api

import (
	"context"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// DashboardService is what the handlers need from the dashboard pipeline.
// It allows mocking in tests.
type DashboardService interface {
	Options(ctx context.Context) (models.Options, error)
	Query(ctx context.Context, in models.SelectionInput) (*models.Dashboard, error)
	Ready() bool
}

// MetricsRecorder counts queries by view and outcome.
type MetricsRecorder interface {
	ObserveQuery(view, outcome string)
}
