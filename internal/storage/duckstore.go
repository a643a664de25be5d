// Package storage holds the DuckDB-backed aggregation engine.
package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/foreign-arrivals/dashboard/internal/aggregate"
	"github.com/foreign-arrivals/dashboard/internal/filter"
	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
)

// DuckOptions configures a DuckStore.
type DuckOptions struct {
	// Dir holds the database file. Empty means an in-memory database.
	Dir         string
	Threads     int
	MemoryLimit string
}

// DuckStore answers the dashboard views with SQL over a DuckDB copy of the
// joined records. Results match the in-memory engine.
type DuckStore struct {
	db      *sql.DB
	dbPath  string
	records int
	logger  *slog.Logger

	// Limits concurrent queries.
	querySem chan struct{}
}

// NewDuckStore opens a DuckDB database and creates the arrivals table.
func NewDuckStore(opts DuckOptions, logger *slog.Logger) (*DuckStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = "1GB"
	}

	dbPath := ""
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("creating duckdb directory: %w", err)
		}
		dbPath = filepath.Join(opts.Dir, fmt.Sprintf("arrivals_%s.duckdb", uuid.New().String()))
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE arrivals (
			id       INTEGER PRIMARY KEY,
			date     DATE NOT NULL,
			year     INTEGER NOT NULL,
			month    INTEGER NOT NULL,
			poe      VARCHAR NOT NULL,
			country  VARCHAR NOT NULL,
			arrivals BIGINT NOT NULL,
			lat      DOUBLE,
			lon      DOUBLE
		)
	`)
	if err != nil {
		db.Close()
		if dbPath != "" {
			os.Remove(dbPath)
		}
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Debug("duckdb store created", "path", dbPath, "threads", opts.Threads, "memory_limit", opts.MemoryLimit)

	return &DuckStore{
		db:       db,
		dbPath:   dbPath,
		logger:   logger,
		querySem: make(chan struct{}, 3),
	}, nil
}

// Load appends the joined records using the native Appender API. Record ids
// follow slice order, which keeps map point order identical to the memory
// engine.
func (ds *DuckStore) Load(ctx context.Context, records []models.JoinedRecord) error {
	conn, err := ds.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn any) error {
		dConn, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		appender, err := duckdb.NewAppenderFromConn(dConn, "", "arrivals")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		base := ds.records
		for i, r := range records {
			err := appender.AppendRow(
				int32(base+i),
				r.Date,
				int32(r.Year),
				int32(r.Month),
				r.Poe,
				r.Country,
				r.Arrivals,
				nullableFloat(r.Lat),
				nullableFloat(r.Long),
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	ds.records += len(records)
	ds.logger.Info("duckdb store loaded", "records", ds.records)
	return nil
}

// Len returns the number of loaded records.
func (ds *DuckStore) Len() int {
	return ds.records
}

// Aggregate computes the views sel.Views names. targetYear selects the
// yearly-totals year.
func (ds *DuckStore) Aggregate(ctx context.Context, sel models.FilterSelection, targetYear int) (*models.Dashboard, error) {
	if sel.YearFrom > sel.YearTo {
		return nil, &filter.InvalidRangeError{From: sel.YearFrom, To: sel.YearTo}
	}

	select {
	case ds.querySem <- struct{}{}:
		defer func() { <-ds.querySem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	d := aggregate.EmptyDashboard(targetYear)
	if sel.Empty() {
		return d, nil
	}

	where, args := buildWhereClause(sel)

	var err error
	if sel.Views.Has(models.ViewYearly) {
		if d.YearlyTotals, err = ds.yearlyTotals(ctx, where, args, targetYear); err != nil {
			return nil, err
		}
	}
	if sel.Views.Has(models.ViewTrend) {
		if d.Trend, err = queryPivot[int](ctx, ds.db, "year", where, args); err != nil {
			return nil, err
		}
	}
	if sel.Views.Has(models.ViewByPoe) {
		if d.ByPoe, err = queryPivot[string](ctx, ds.db, "poe", where, args); err != nil {
			return nil, err
		}
	}
	if sel.Views.Has(models.ViewMonthly) {
		if d.Monthly, err = queryPivot[int](ctx, ds.db, "month", where, args); err != nil {
			return nil, err
		}
	}
	if sel.Views.Has(models.ViewMap) {
		if d.Map, err = ds.mapPoints(ctx, where, args); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (ds *DuckStore) yearlyTotals(ctx context.Context, where string, args []any, year int) (models.YearlyTotals, error) {
	out := models.YearlyTotals{Year: year, Totals: []models.CountryTotal{}}
	query := `
		SELECT country, CAST(SUM(arrivals) AS BIGINT)
		FROM arrivals
		WHERE ` + where + ` AND year = ?
		GROUP BY country
		ORDER BY country
	`
	rows, err := ds.db.QueryContext(ctx, query, append(append([]any{}, args...), year)...)
	if err != nil {
		return out, fmt.Errorf("yearly totals query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.CountryTotal
		if err := rows.Scan(&t.Country, &t.Arrivals); err != nil {
			return out, err
		}
		out.Totals = append(out.Totals, t)
	}
	return out, rows.Err()
}

func (ds *DuckStore) mapPoints(ctx context.Context, where string, args []any) (models.MapView, error) {
	query := `
		SELECT lat, lon
		FROM arrivals
		WHERE ` + where + ` AND lat IS NOT NULL AND lon IS NOT NULL
		GROUP BY lat, lon
		ORDER BY MIN(id)
	`
	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.MapView{}, fmt.Errorf("map points query failed: %w", err)
	}
	defer rows.Close()

	points := make([]models.MapPoint, 0)
	for rows.Next() {
		var p models.MapPoint
		if err := rows.Scan(&p.Lat, &p.Long); err != nil {
			return models.MapView{}, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return models.MapView{}, err
	}
	return aggregate.NewMapView(points), nil
}

// queryPivot sums arrivals grouped by (column, country). column is one of
// the fixed table columns, never user input.
func queryPivot[K int | string](ctx context.Context, db *sql.DB, column, where string, args []any) (models.Pivot[K], error) {
	b := aggregate.NewPivotBuilder[K](column)
	query := fmt.Sprintf(`
		SELECT %[1]s, country, CAST(SUM(arrivals) AS BIGINT)
		FROM arrivals
		WHERE %[2]s
		GROUP BY %[1]s, country
	`, column, where)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return b.Build(), fmt.Errorf("%s pivot query failed: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key K
		var country string
		var sum int64
		if err := rows.Scan(&key, &country, &sum); err != nil {
			return b.Build(), err
		}
		b.Add(key, country, sum)
	}
	return b.Build(), rows.Err()
}

func buildWhereClause(sel models.FilterSelection) (string, []any) {
	args := []any{sel.YearFrom, sel.YearTo}
	clauses := []string{"year BETWEEN ? AND ?"}

	clauses = append(clauses, "country IN ("+placeholders(len(sel.Countries))+")")
	for c := range sel.Countries {
		args = append(args, c)
	}
	clauses = append(clauses, "poe IN ("+placeholders(len(sel.Poes))+")")
	for p := range sel.Poes {
		args = append(args, p)
	}
	return strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Close closes the database and removes its file.
func (ds *DuckStore) Close() error {
	var err error
	if ds.db != nil {
		err = ds.db.Close()
	}
	if ds.dbPath != "" {
		os.Remove(ds.dbPath)
		os.Remove(ds.dbPath + ".wal")
	}
	return err
}

// Name identifies the engine.
func (ds *DuckStore) Name() string {
	return "duckdb"
}
