package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/footfall-etl/internal/domain"
	"github.com/couchcryptid/footfall-etl/internal/observability"
)

// FeedSource returns the raw semicolon-separated feed text.
type FeedSource interface {
	FetchFeed(ctx context.Context) (string, error)
}

// WeatherSource returns one observation per day in the inclusive range [from, to].
type WeatherSource interface {
	FetchDaily(ctx context.Context, from, to time.Time) ([]domain.WeatherObservation, error)
}

// Publisher forwards a finished snapshot downstream.
type Publisher interface {
	PublishDays(ctx context.Context, snap Snapshot) error
}

// Snapshot is the immutable result of one pipeline run.
type Snapshot struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Hours         []domain.HourRecord `json:"hours"`
	Days          []domain.DayRecord  `json:"days"`
	WeatherMerged bool                `json:"weather_merged"`
	SkippedRows   int                 `json:"skipped_rows"`

	// BusinessHours is the window table Days were aggregated with.
	BusinessHours domain.BusinessHours `json:"business_hours"`
}

// Options holds the pure-function configuration of a run.
type Options struct {
	Location      *time.Location
	BusinessHours domain.BusinessHours
	Clock         clockwork.Clock
}

// Pipeline runs fetch, parse, aggregate, and weather merge in strict sequence
// and keeps the most recent successful snapshot.
type Pipeline struct {
	feed       FeedSource
	weather    WeatherSource
	publisher  Publisher
	aggregator *domain.Aggregator
	loc        *time.Location
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	runMu  sync.Mutex
	latest atomic.Pointer[Snapshot]
	ready  atomic.Bool
}

// New creates a Pipeline. weather and publisher may be nil to disable
// enrichment and publishing.
func New(feed FeedSource, weather WeatherSource, publisher Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Pipeline{
		feed:       feed,
		weather:    weather,
		publisher:  publisher,
		aggregator: domain.NewAggregator(opts.BusinessHours),
		loc:        opts.Location,
		clock:      opts.Clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once a run has produced a snapshot.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not produced a snapshot yet")
	}
	return nil
}

// Latest returns the most recent snapshot, or nil before the first successful run.
func (p *Pipeline) Latest() *Snapshot {
	return p.latest.Load()
}

// Run executes one complete pass. Concurrent calls are serialized. A failed
// run leaves the previous snapshot in place.
func (p *Pipeline) Run(ctx context.Context) (*Snapshot, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := p.clock.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	logger.Info("pipeline run started")

	text, err := p.feed.FetchFeed(ctx)
	if err != nil {
		p.fail(logger, "fetch_error", err)
		return nil, err
	}

	res, days, err := p.transform(text)
	if err != nil {
		p.fail(logger, "parse_error", err)
		return nil, err
	}

	days, merged, err := p.enrich(ctx, logger, days)
	if err != nil {
		p.fail(logger, "weather_error", err)
		return nil, err
	}

	snap := &Snapshot{
		RunID:         runID,
		GeneratedAt:   p.clock.Now(),
		Hours:         res.Hours,
		Days:          days,
		WeatherMerged: merged,
		SkippedRows:   res.Skipped,
		BusinessHours: p.aggregator.BusinessHours(),
	}
	p.latest.Store(snap)
	p.ready.Store(true)
	p.metrics.PipelineReady.Set(1)
	p.metrics.DaysAggregated.Set(float64(len(days)))

	if p.publisher != nil {
		if err := p.publisher.PublishDays(ctx, *snap); err != nil {
			p.fail(logger, "publish_error", err)
			return snap, err
		}
	}

	elapsed := p.clock.Since(start)
	p.metrics.PipelineRuns.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.metrics.LastSuccess.Set(float64(snap.GeneratedAt.Unix()))

	logger.Info("pipeline run finished",
		"hours", len(res.Hours),
		"days", len(days),
		"skipped_rows", res.Skipped,
		"weather_merged", merged,
		"duration", elapsed,
	)
	return snap, nil
}

func (p *Pipeline) fail(logger *slog.Logger, outcome string, err error) {
	p.metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	logger.Error("pipeline run failed", "outcome", outcome, "error", err)
}
