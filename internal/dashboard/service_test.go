package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/foreign-arrivals/dashboard/internal/dataset"
	"github.com/foreign-arrivals/dashboard/internal/filter"
	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/foreign-arrivals/dashboard/internal/observability"
	"github.com/foreign-arrivals/dashboard/internal/parser"
	"github.com/foreign-arrivals/dashboard/internal/storage"
	"github.com/foreign-arrivals/dashboard/internal/testutil"
	"github.com/jonboulle/clockwork"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, records []models.JoinedRecord, engine EngineFactory) *Service {
	t.Helper()
	provider := dataset.NewProvider(func(ctx context.Context) ([]models.JoinedRecord, error) {
		return records, nil
	}, clockwork.NewFakeClock(), nil, nil)

	svc := NewService(Config{Provider: provider, Engine: engine})
	t.Cleanup(func() { svc.Close() })
	return svc
}

func all() models.SelectionInput {
	return models.SelectionInput{Countries: models.AllOf(), Poes: models.AllOf()}
}

func TestService_KLIAExample(t *testing.T) {
	dir := t.TempDir()
	arrivals, poe := testutil.WriteSources(t, dir, testutil.KLIAJapanArrivalsCSV, testutil.KLIAJapanPoeCSV)
	loader := parser.NewLoader(arrivals, poe)
	svc := NewService(Config{Provider: dataset.NewProvider(loader.Load, nil, nil, nil)})
	defer svc.Close()

	d, err := svc.Query(context.Background(), models.SelectionInput{
		YearFrom:  2020,
		YearTo:    2021,
		Countries: models.Only("Japan"),
		Poes:      models.Only("KLIA"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.YearRange{From: 2020, To: 2021}, d.YearRange)
	assert.Equal(t, EngineMemory, d.Engine)
	assert.Equal(t, 2021, d.YearlyTotals.Year)
	assert.Equal(t, []models.CountryTotal{{Country: "Japan", Arrivals: 50}}, d.YearlyTotals.Totals)

	v, ok := d.Trend.Get(2020, "Japan")
	assert.True(t, ok)
	assert.Equal(t, int64(100), v)
	v, ok = d.Trend.Get(2021, "Japan")
	assert.True(t, ok)
	assert.Equal(t, int64(50), v)
	assert.Len(t, d.Trend.Rows, 2)

	assert.Equal(t, []models.MapPoint{{Lat: 2.75, Long: 101.7}}, d.Map.Points)
}

func TestService_InvalidRange(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), nil)

	in := all()
	in.YearFrom, in.YearTo = 2022, 2020
	_, err := svc.Query(context.Background(), in)

	var rangeErr *filter.InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 2022, rangeErr.From)
	assert.Equal(t, 2020, rangeErr.To)
}

func TestService_DefaultsToDatasetBounds(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), nil)

	d, err := svc.Query(context.Background(), all())
	require.NoError(t, err)

	assert.Equal(t, models.YearRange{From: 2019, To: 2022}, d.YearRange)
	assert.Equal(t, 2022, d.YearlyTotals.Year, "yearly totals use the end of the range")
	assert.Equal(t, []models.CountryTotal{{Country: "China", Arrivals: 80}}, d.YearlyTotals.Totals)
	assert.Len(t, d.Trend.Rows, 4)
}

func TestService_EmptyChoiceGivesEmptyViews(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), nil)

	in := all()
	in.Countries = models.Only()
	d, err := svc.Query(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, d.YearlyTotals.Empty())
	assert.True(t, d.Trend.Empty())
	assert.True(t, d.Map.Empty())
	assert.True(t, d.ByPoe.Empty())
	assert.True(t, d.Monthly.Empty())
}

func TestService_SelectAllEqualsExplicitSet(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), nil)
	ctx := context.Background()

	opts, err := svc.Options(ctx)
	require.NoError(t, err)

	viaAll, err := svc.Query(ctx, all())
	require.NoError(t, err)
	viaExplicit, err := svc.Query(ctx, models.SelectionInput{
		Countries: models.Only(opts.Countries...),
		Poes:      models.Only(opts.Poes...),
	})
	require.NoError(t, err)

	assert.Equal(t, viaAll, viaExplicit)
}

func TestService_EnginesAgree(t *testing.T) {
	records := testutil.SampleRecords()
	memory := newService(t, records, NewMemoryEngine)
	duck := newService(t, records, NewDuckDBEngine(storage.DuckOptions{}, nil))

	selections := []models.SelectionInput{
		all(),
		{YearFrom: 2020, YearTo: 2021, Countries: models.Only("Japan", "China"), Poes: models.AllOf()},
		{Countries: models.AllOf(), Poes: models.Only("Johor Bahru CIQ")},
		{YearFrom: 2021, YearTo: 2021, Countries: models.AllOf(), Poes: models.Only()},
	}
	for _, in := range selections {
		want, err := memory.Query(context.Background(), in)
		require.NoError(t, err)
		got, err := duck.Query(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, EngineDuckDB, got.Engine)
		got.Engine = want.Engine
		assert.Equal(t, want, got, "%+v", in)
	}
}

func TestService_DatasetUnavailable(t *testing.T) {
	loadErr := &parser.SourceNotFoundError{Path: "missing.csv"}
	provider := dataset.NewProvider(func(ctx context.Context) ([]models.JoinedRecord, error) {
		return nil, loadErr
	}, nil, nil, nil)
	svc := NewService(Config{Provider: provider})

	_, err := svc.Query(context.Background(), all())
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
	var notFound *parser.SourceNotFoundError
	assert.True(t, errors.As(err, &notFound), "the load error stays inspectable")

	_, err = svc.Options(context.Background())
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
	assert.False(t, svc.Ready())
	assert.ErrorIs(t, svc.Warm(context.Background()), ErrDatasetUnavailable)
}

func TestService_EngineBuiltOnce(t *testing.T) {
	var builds atomic.Int32
	factory := func(ctx context.Context, ds *dataset.Dataset) (Engine, error) {
		builds.Add(1)
		return NewMemoryEngine(ctx, ds)
	}
	svc := newService(t, testutil.SampleRecords(), factory)

	assert.False(t, svc.Ready())
	require.NoError(t, svc.Warm(context.Background()))
	assert.True(t, svc.Ready())

	for i := 0; i < 3; i++ {
		_, err := svc.Query(context.Background(), all())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), builds.Load())
}

func TestService_CancelledFirstQueryDoesNotPoisonEngine(t *testing.T) {
	var builds atomic.Int32
	factory := func(ctx context.Context, ds *dataset.Dataset) (Engine, error) {
		builds.Add(1)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewMemoryEngine(ctx, ds)
	}
	svc := newService(t, testutil.SampleRecords(), factory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Query(ctx, all())
	assert.ErrorIs(t, err, context.Canceled, "the cancelled query itself still fails")
	assert.NotErrorIs(t, err, ErrDatasetUnavailable)

	d, err := svc.Query(context.Background(), all())
	require.NoError(t, err)
	assert.False(t, d.Trend.Empty())
	assert.Equal(t, int32(1), builds.Load())
}

func TestService_ClampsOutOfRangeYears(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), nil)

	in := all()
	in.YearFrom = 2025
	d, err := svc.Query(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.YearRange{From: 2022, To: 2022}, d.YearRange)

	in = all()
	in.YearTo = 1990
	d, err = svc.Query(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.YearRange{From: 2019, To: 2019}, d.YearRange)
	assert.Equal(t, 2019, d.YearlyTotals.Year)
}

func TestService_OnlyRequestedViews(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), nil)

	in := all()
	in.Views = models.ViewMap
	d, err := svc.Query(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, d.Map.Empty())
	assert.True(t, d.Trend.Empty())
	assert.True(t, d.YearlyTotals.Empty())
}

func TestService_EngineFailure(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), func(ctx context.Context, ds *dataset.Dataset) (Engine, error) {
		return nil, errors.New("no space left")
	})

	_, err := svc.Query(context.Background(), all())
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestService_RecordsAggregationMetrics(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	provider := dataset.NewProvider(func(ctx context.Context) ([]models.JoinedRecord, error) {
		return testutil.SampleRecords(), nil
	}, nil, nil, metrics)
	svc := NewService(Config{Provider: provider, Metrics: metrics})

	_, err := svc.Query(context.Background(), all())
	require.NoError(t, err)

	assert.Equal(t, float64(len(testutil.SampleRecords())), promtest.ToFloat64(metrics.DatasetRecords))
	assert.Equal(t, 1, promtest.CollectAndCount(metrics.AggregationDuration))
}

func TestService_Resolve(t *testing.T) {
	svc := newService(t, testutil.SampleRecords(), nil)

	sel, err := svc.Resolve(context.Background(), models.SelectionInput{
		YearFrom:  2000,
		Countries: models.AllOf(),
		Poes:      models.Only("KLIA"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2019, sel.YearFrom)
	assert.Equal(t, 2022, sel.YearTo)
	assert.Len(t, sel.Countries, 4)
	assert.Len(t, sel.Poes, 1)
}
