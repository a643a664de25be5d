// Package dashboard runs the load → filter → aggregate pipeline for one
// user selection.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foreign-arrivals/dashboard/internal/dataset"
	"github.com/foreign-arrivals/dashboard/internal/filter"
	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/foreign-arrivals/dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrDatasetUnavailable wraps every failure to load the dataset.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// Service answers dashboard queries. Each query is a fresh computation from
// the full dataset and the given selection.
type Service struct {
	provider  *dataset.Provider
	newEngine EngineFactory
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger

	engineOnce sync.Once
	engine     Engine
	engineErr  error
}

// Config holds the Service's collaborators. Clock, Metrics and Logger are
// optional.
type Config struct {
	Provider *dataset.Provider
	Engine   EngineFactory
	Clock    clockwork.Clock
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	s := &Service{
		provider:  cfg.Provider,
		newEngine: cfg.Engine,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
	if s.newEngine == nil {
		s.newEngine = NewMemoryEngine
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Dataset returns the loaded dataset.
func (s *Service) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.provider.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return ds, nil
}

// Options returns the selectable values of the full dataset.
func (s *Service) Options(ctx context.Context) (models.Options, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return models.Options{}, err
	}
	return ds.Options(), nil
}

// Resolve clamps and expands in against the dataset.
func (s *Service) Resolve(ctx context.Context, in models.SelectionInput) (models.FilterSelection, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return models.FilterSelection{}, err
	}
	return filter.Resolve(in, ds), nil
}

// Query computes every view for in. The yearly totals are for the last year
// of the (clamped) range.
func (s *Service) Query(ctx context.Context, in models.SelectionInput) (*models.Dashboard, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	sel := filter.Resolve(in, ds)
	if sel.YearFrom > sel.YearTo {
		return nil, &filter.InvalidRangeError{From: sel.YearFrom, To: sel.YearTo}
	}

	engine, err := s.getEngine(ctx, ds)
	if err != nil {
		return nil, err
	}

	start := s.clock.Now()
	d, err := engine.Aggregate(ctx, sel, sel.YearTo)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveAggregation(engine.Name(), s.clock.Since(start).Seconds())
	}

	d.YearRange = models.YearRange{From: sel.YearFrom, To: sel.YearTo}
	d.Engine = engine.Name()
	s.logger.Debug("dashboard computed",
		"engine", engine.Name(),
		"from", sel.YearFrom,
		"to", sel.YearTo,
		"countries", len(sel.Countries),
		"poes", len(sel.Poes),
		"trend_rows", len(d.Trend.Rows),
	)
	return d, nil
}

func (s *Service) getEngine(ctx context.Context, ds *dataset.Dataset) (Engine, error) {
	s.engineOnce.Do(func() {
		s.engine, s.engineErr = s.newEngine(context.WithoutCancel(ctx), ds)
		if s.engineErr != nil {
			s.logger.Error("engine init failed", "error", s.engineErr)
			s.engineErr = fmt.Errorf("%w: %w", ErrDatasetUnavailable, s.engineErr)
			return
		}
		s.logger.Info("aggregation engine ready", "engine", s.engine.Name())
	})
	return s.engine, s.engineErr
}

// Warm loads the dataset and builds the engine ahead of the first query.
func (s *Service) Warm(ctx context.Context) error {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return err
	}
	_, err = s.getEngine(ctx, ds)
	return err
}

// Ready reports whether the dataset has loaded.
func (s *Service) Ready() bool {
	return s.provider.Ready()
}

// Close releases the engine.
func (s *Service) Close() error {
	if s.engine != nil {
		return s.engine.Close()
	}
	return nil
}
