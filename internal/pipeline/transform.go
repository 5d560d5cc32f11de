package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/footfall-etl/internal/domain"
)

// transform parses the feed and folds the hours into business-hour days.
func (p *Pipeline) transform(text string) (domain.FeedResult, []domain.DayRecord, error) {
	res, err := domain.ParseFeed(text, p.loc)
	if err != nil {
		return domain.FeedResult{}, nil, err
	}
	p.metrics.FeedRows.WithLabelValues("parsed").Add(float64(len(res.Hours)))
	p.metrics.FeedRows.WithLabelValues("skipped").Add(float64(res.Skipped))

	return res, p.aggregator.Aggregate(res.Hours), nil
}

// enrich fetches weather for the days' date range and merges it in. A
// length mismatch is logged and the days are returned without weather.
func (p *Pipeline) enrich(ctx context.Context, logger *slog.Logger, days []domain.DayRecord) ([]domain.DayRecord, bool, error) {
	if p.weather == nil || len(days) == 0 {
		return days, false, nil
	}

	from, to := days[0].Date, days[len(days)-1].Date
	obs, err := p.weather.FetchDaily(ctx, from, to)
	if err != nil {
		return nil, false, fmt.Errorf("fetch weather: %w", err)
	}

	merged, err := domain.MergeWeather(days, obs)
	if err != nil {
		var mergeErr *domain.MergeError
		if !errors.As(err, &mergeErr) {
			return nil, false, err
		}
		p.metrics.WeatherMergeErrors.Inc()
		logger.Warn("weather not merged",
			"days", mergeErr.Days,
			"observations", mergeErr.Observations,
			"from", domain.DateKey(from),
			"to", domain.DateKey(to),
		)
		return days, false, nil
	}
	return merged, true, nil
}
