package dashboard

import (
	"context"
	"log/slog"

	"github.com/foreign-arrivals/dashboard/internal/aggregate"
	"github.com/foreign-arrivals/dashboard/internal/dataset"
	"github.com/foreign-arrivals/dashboard/internal/filter"
	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/foreign-arrivals/dashboard/internal/storage"
)

// Engine names.
const (
	EngineMemory = "memory"
	EngineDuckDB = "duckdb"
)

// Engine computes the views sel.Views names for a resolved selection. Views
// left out come back empty.
type Engine interface {
	Name() string
	Aggregate(ctx context.Context, sel models.FilterSelection, targetYear int) (*models.Dashboard, error)
	Close() error
}

// EngineFactory builds an Engine over a loaded dataset.
type EngineFactory func(ctx context.Context, ds *dataset.Dataset) (Engine, error)

// MemoryEngine filters and aggregates the dataset's records in process.
type MemoryEngine struct {
	records []models.JoinedRecord
}

// NewMemoryEngine is an EngineFactory for the in-process engine.
func NewMemoryEngine(_ context.Context, ds *dataset.Dataset) (Engine, error) {
	return &MemoryEngine{records: ds.Records()}, nil
}

func (e *MemoryEngine) Name() string {
	return EngineMemory
}

func (e *MemoryEngine) Aggregate(ctx context.Context, sel models.FilterSelection, targetYear int) (*models.Dashboard, error) {
	view, err := filter.Filter(e.records, sel)
	if err != nil {
		return nil, err
	}
	return aggregate.ComputeViews(ctx, view, targetYear, sel.Views)
}

func (e *MemoryEngine) Close() error {
	return nil
}

// NewDuckDBEngine returns an EngineFactory that copies the dataset into a
// DuckDB store and answers views with SQL.
func NewDuckDBEngine(opts storage.DuckOptions, logger *slog.Logger) EngineFactory {
	return func(ctx context.Context, ds *dataset.Dataset) (Engine, error) {
		store, err := storage.NewDuckStore(opts, logger)
		if err != nil {
			return nil, err
		}
		if err := store.Load(ctx, ds.Records()); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}
}
