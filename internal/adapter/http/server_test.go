package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	httpadapter "github.com/couchcryptid/footfall-etl/internal/adapter/http"
	"github.com/couchcryptid/footfall-etl/internal/domain"
	"github.com/couchcryptid/footfall-etl/internal/pipeline"
)

type mockPipeline struct {
	snap   *pipeline.Snapshot
	runErr error
	runs   int
}

func (m *mockPipeline) CheckReadiness(_ context.Context) error {
	if m.snap == nil {
		return errors.New("not ready yet")
	}
	return nil
}

func (m *mockPipeline) Latest() *pipeline.Snapshot { return m.snap }

func (m *mockPipeline) Run(_ context.Context) (*pipeline.Snapshot, error) {
	m.runs++
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.snap, nil
}

func date(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

// Mondays 3, 10 and 17 June plus Tuesday 4 June.
func testSnapshot() *pipeline.Snapshot {
	return &pipeline.Snapshot{
		RunID:         "run-42",
		GeneratedAt:   time.Date(2024, time.June, 18, 6, 0, 0, 0, time.UTC),
		WeatherMerged: true,
		SkippedRows:   2,
		BusinessHours: domain.DefaultBusinessHours(),
		Hours: []domain.HourRecord{
			{Timestamp: date(3).Add(9 * time.Hour), VisitorsEntering: 60},
			{Timestamp: date(3).Add(10 * time.Hour), VisitorsEntering: 40},
			{Timestamp: date(4).Add(9 * time.Hour), VisitorsEntering: 50},
		},
		Days: []domain.DayRecord{
			{Date: date(3), VisitorsEntering: 100, MenEntering: 40, WomenEntering: 60, CaptureRate: 10, WeatherSymbol: "☀️"},
			{Date: date(4), VisitorsEntering: 50, CaptureRate: 20},
			{Date: date(10), VisitorsEntering: 200, CaptureRate: 30},
			{Date: date(17), VisitorsEntering: 300, CaptureRate: 40},
		},
	}
}

func newTestServer(p *mockPipeline) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, time.UTC, slog.Default())
}

func do(t *testing.T, srv *httpadapter.Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(&mockPipeline{}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	rec := do(t, newTestServer(&mockPipeline{snap: testSnapshot()}), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestServer(&mockPipeline{}), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&mockPipeline{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPI_NoSnapshotReturns503(t *testing.T) {
	srv := newTestServer(&mockPipeline{})
	for _, target := range []string{
		"/api/v1/hours",
		"/api/v1/days",
		"/api/v1/summary",
		"/api/v1/benchmark?date=2024-06-03",
		"/api/v1/export.xlsx",
	} {
		t.Run(target, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, target)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Body.String(), "no snapshot")
		})
	}
}

func TestAPI_BadRequests(t *testing.T) {
	srv := newTestServer(&mockPipeline{snap: testSnapshot()})
	tests := []struct {
		target  string
		wantMsg string
	}{
		{"/api/v1/hours?date=03-06-2024", "invalid date"},
		{"/api/v1/days?from=yesterday", "invalid from"},
		{"/api/v1/days?from=2024-06-10&to=2024-06-03", "before from"},
		{"/api/v1/summary?to=2024-13-01", "invalid to"},
		{"/api/v1/benchmark", "date is required"},
		{"/api/v1/benchmark?date=2024-06-03&mode=median", "unknown benchmark mode"},
		{"/api/v1/benchmark?date=2024-06-03&mode=explicit", "benchmark is required"},
		{"/api/v1/benchmark?date=2024-06-03&mode=explicit&benchmark=soon", "invalid benchmark"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}

func TestAPI_Hours(t *testing.T) {
	srv := newTestServer(&mockPipeline{snap: testSnapshot()})

	body := decode[struct {
		RunID string              `json:"run_id"`
		Hours []domain.HourRecord `json:"hours"`
	}](t, do(t, srv, http.MethodGet, "/api/v1/hours"))
	assert.Equal(t, "run-42", body.RunID)
	assert.Len(t, body.Hours, 3)

	body = decode[struct {
		RunID string              `json:"run_id"`
		Hours []domain.HourRecord `json:"hours"`
	}](t, do(t, srv, http.MethodGet, "/api/v1/hours?date=2024-06-03"))
	require.Len(t, body.Hours, 2)
	assert.Equal(t, 40, body.Hours[1].VisitorsEntering)
}

func TestAPI_Days(t *testing.T) {
	srv := newTestServer(&mockPipeline{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/days?from=2024-06-04&to=2024-06-10")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		WeatherMerged bool               `json:"weather_merged"`
		Days          []domain.DayRecord `json:"days"`
	}](t, rec)
	assert.True(t, body.WeatherMerged)
	require.Len(t, body.Days, 2)
	assert.Equal(t, 50, body.Days[0].VisitorsEntering)
	assert.Equal(t, 200, body.Days[1].VisitorsEntering)
}

func TestAPI_Summary(t *testing.T) {
	srv := newTestServer(&mockPipeline{snap: testSnapshot()})

	body := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/v1/summary?from=2024-06-03&to=2024-06-04"))
	assert.Equal(t, "run-42", body["run_id"])
	assert.Equal(t, 2.0, body["days"])
	assert.Equal(t, 150.0, body["total_visitors"])
	assert.Equal(t, 15.0, body["avg_capture_rate"])
	assert.Equal(t, 2.0, body["skipped_rows"])
}

func TestAPI_SummaryReportsBusinessHours(t *testing.T) {
	type window struct {
		Weekday string `json:"weekday"`
		Open    int    `json:"open"`
		Close   int    `json:"close"`
	}
	srv := newTestServer(&mockPipeline{snap: testSnapshot()})

	body := decode[struct {
		BusinessHours []window `json:"business_hours"`
	}](t, do(t, srv, http.MethodGet, "/api/v1/summary"))

	require.Len(t, body.BusinessHours, 7)
	assert.Equal(t, window{"Monday", 7, 20}, body.BusinessHours[0])
	assert.Equal(t, window{"Saturday", 8, 20}, body.BusinessHours[5])
	assert.Equal(t, window{"Sunday", 8, 16}, body.BusinessHours[6])
}

type benchmarkBody struct {
	Day       domain.DayRecord    `json:"day"`
	Gender    *domain.Gender      `json:"gender"`
	Hours     []domain.HourRecord `json:"hours"`
	Mode      string              `json:"mode"`
	Benchmark *domain.Benchmark   `json:"benchmark"`
}

func TestAPI_Benchmark(t *testing.T) {
	srv := newTestServer(&mockPipeline{snap: testSnapshot()})

	t.Run("none", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/benchmark?date=2024-06-03")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[benchmarkBody](t, rec)
		assert.Equal(t, "none", body.Mode)
		assert.Nil(t, body.Benchmark)
		assert.Equal(t, 100, body.Day.VisitorsEntering)
		assert.Len(t, body.Hours, 2)
		require.NotNil(t, body.Gender)
		assert.Equal(t, 40, body.Gender.MenPercent)
		assert.Equal(t, 60, body.Gender.WomenPercent)
	})

	t.Run("weekday average", func(t *testing.T) {
		body := decode[benchmarkBody](t, do(t, srv, http.MethodGet, "/api/v1/benchmark?date=2024-06-03&mode=weekday"))
		assert.Equal(t, "weekday", body.Mode)
		require.NotNil(t, body.Benchmark)
		assert.True(t, body.Benchmark.Synthetic)
		assert.Equal(t, "Monday Average", body.Benchmark.Label)
		assert.Equal(t, 200, body.Benchmark.Record.VisitorsEntering)
		assert.Equal(t, 26.67, body.Benchmark.Record.CaptureRate)
		assert.Equal(t, "☀️", body.Benchmark.Record.WeatherSymbol)
	})

	t.Run("explicit", func(t *testing.T) {
		body := decode[benchmarkBody](t, do(t, srv, http.MethodGet, "/api/v1/benchmark?date=2024-06-03&mode=explicit&benchmark=2024-06-17"))
		assert.Equal(t, "explicit", body.Mode)
		require.NotNil(t, body.Benchmark)
		assert.False(t, body.Benchmark.Synthetic)
		assert.Equal(t, 300, body.Benchmark.Record.VisitorsEntering)
	})

	t.Run("explicit date without data", func(t *testing.T) {
		body := decode[benchmarkBody](t, do(t, srv, http.MethodGet, "/api/v1/benchmark?date=2024-06-03&mode=explicit&benchmark=2024-06-24"))
		assert.Nil(t, body.Benchmark)
	})

	t.Run("no gender counts", func(t *testing.T) {
		body := decode[benchmarkBody](t, do(t, srv, http.MethodGet, "/api/v1/benchmark?date=2024-06-04"))
		assert.Nil(t, body.Gender)
	})

	t.Run("unknown day", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/benchmark?date=2024-07-01")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPI_Export(t *testing.T) {
	srv := newTestServer(&mockPipeline{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "footfall-20240618-0600.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Daily Data")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestAPI_Refresh(t *testing.T) {
	p := &mockPipeline{snap: testSnapshot()}
	srv := newTestServer(p)

	rec := do(t, srv, http.MethodPost, "/api/v1/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "run-42", body["run_id"])
	assert.Equal(t, 4.0, body["days"])
	assert.Equal(t, 1, p.runs)

	rec = do(t, srv, http.MethodGet, "/api/v1/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 1, p.runs)
}

func TestAPI_RefreshFailure(t *testing.T) {
	p := &mockPipeline{runErr: errors.New("fetch feed: status 502")}
	srv := newTestServer(p)

	rec := do(t, srv, http.MethodPost, "/api/v1/refresh")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "status 502")
}
