package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// Loader reads the arrivals and POE tables and produces the joined dataset.
// Load has no side effects beyond reading the two files.
type Loader struct {
	arrivalsPath string
	poePath      string
	layouts      []string
	registry     *Registry
	logger       *slog.Logger
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithDateLayouts adds layouts tried after the defaults.
func WithDateLayouts(layouts ...string) LoaderOption {
	return func(l *Loader) {
		l.layouts = append(l.layouts, layouts...)
	}
}

// WithRegistry replaces the table reader registry.
func WithRegistry(r *Registry) LoaderOption {
	return func(l *Loader) {
		l.registry = r
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader for the two source files.
func NewLoader(arrivalsPath, poePath string, opts ...LoaderOption) *Loader {
	l := &Loader{
		arrivalsPath: arrivalsPath,
		poePath:      poePath,
		layouts:      append([]string(nil), DefaultDateLayouts...),
		registry:     NewRegistry(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads both sources and returns one joined record per arrival row.
func (l *Loader) Load(ctx context.Context) ([]models.JoinedRecord, error) {
	start := time.Now()

	for _, p := range []string{l.arrivalsPath, l.poePath} {
		if err := checkSource(p); err != nil {
			return nil, err
		}
	}

	intern := NewStringIntern()

	arrivalsTable, err := l.readTable(l.arrivalsPath)
	if err != nil {
		return nil, err
	}
	arrivals, err := ParseArrivals(arrivalsTable, l.layouts, intern)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	poeTable, err := l.readTable(l.poePath)
	if err != nil {
		return nil, err
	}
	poes, err := ParsePoeMetadata(poeTable, intern)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	joined := Join(arrivals, poes)

	l.logger.Info("dataset loaded",
		"arrivals_file", l.arrivalsPath,
		"poe_file", l.poePath,
		"records", len(joined),
		"poes", len(poes),
		"interned", intern.Len(),
		"duration", time.Since(start),
	)
	return joined, nil
}

func (l *Loader) readTable(path string) (*Table, error) {
	reader, err := l.registry.FindReader(path)
	if err != nil {
		return nil, err
	}
	t, err := reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s reader: %w", reader.Name(), err)
	}
	return t, nil
}

func checkSource(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &SourceNotFoundError{Path: path}
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return &SourceNotFoundError{Path: path}
	}
	return nil
}
