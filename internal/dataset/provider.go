package dataset

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/jonboulle/clockwork"
)

// LoadFunc produces the joined records.
type LoadFunc func(ctx context.Context) ([]models.JoinedRecord, error)

// LoadObserver is notified once after the load attempt.
type LoadObserver interface {
	ObserveLoad(records int, seconds float64, err error)
}

// Provider is the single construction point of the Dataset. The first Get
// runs the load; every later Get returns the same handle or the same error.
// There is no invalidation: the source files are static for the process.
type Provider struct {
	load     LoadFunc
	clock    clockwork.Clock
	logger   *slog.Logger
	observer LoadObserver

	once sync.Once
	done atomic.Bool
	ds   *Dataset
	err  error
}

// NewProvider creates a provider. clock may be nil for the real clock.
func NewProvider(load LoadFunc, clock clockwork.Clock, logger *slog.Logger, observer LoadObserver) *Provider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		load:     load,
		clock:    clock,
		logger:   logger,
		observer: observer,
	}
}

// Get returns the dataset, loading it on first use.
func (p *Provider) Get(ctx context.Context) (*Dataset, error) {
	p.once.Do(func() {
		// The result is shared by every caller, so the first caller's
		// cancellation must not end the load.
		start := p.clock.Now()
		records, err := p.load(context.WithoutCancel(ctx))
		elapsed := p.clock.Since(start)
		if err != nil {
			p.err = err
			p.logger.Error("dataset load failed", "error", err)
		} else {
			p.ds = New(records, p.clock.Now())
			minYear, maxYear := p.ds.YearBounds()
			p.logger.Info("dataset ready",
				"records", p.ds.Len(),
				"countries", len(p.ds.countries),
				"poes", len(p.ds.poes),
				"min_year", minYear,
				"max_year", maxYear,
			)
		}
		if p.observer != nil {
			p.observer.ObserveLoad(len(records), elapsed.Seconds(), err)
		}
		p.done.Store(true)
	})
	return p.ds, p.err
}

// Ready reports whether a dataset has been loaded successfully. It never
// triggers a load.
func (p *Provider) Ready() bool {
	return p.done.Load() && p.err == nil
}
