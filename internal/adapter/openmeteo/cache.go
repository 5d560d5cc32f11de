package openmeteo

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/footfall-etl/internal/domain"
	"github.com/couchcryptid/footfall-etl/internal/observability"
)

// Source is the weather lookup that CachedSource decorates.
type Source interface {
	FetchDaily(ctx context.Context, from, to time.Time) ([]domain.WeatherObservation, error)
}

// CachedSource wraps a Source with an in-memory cache of single days. A range
// whose days are all cached is served without a request; otherwise only the
// span between the first and last missing day is fetched.
type CachedSource struct {
	inner   Source
	cache   *dayCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator holding at most maxDays days.
// metrics may be nil.
func NewCachedSource(inner Source, maxDays int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newDayCache(maxDays),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchDaily(ctx context.Context, from, to time.Time) ([]domain.WeatherObservation, error) {
	dates := daysBetween(from, to)
	if len(dates) == 0 {
		return c.inner.FetchDaily(ctx, from, to)
	}

	cached, have := c.cache.lookup(dates)
	first, last := missingSpan(have)
	if first < 0 {
		c.count("hit")
		return cached, nil
	}
	c.count("miss")

	fetched, err := c.inner.FetchDaily(ctx, dates[first], dates[last])
	if err != nil {
		return nil, err
	}
	c.cache.store(fetched)

	byDate := make(map[string]domain.WeatherObservation, len(fetched))
	for _, o := range fetched {
		byDate[domain.DateKey(o.Date)] = o
	}

	// Days the provider did not return stay absent, so the caller sees a short
	// series exactly as it would without the cache.
	out := make([]domain.WeatherObservation, 0, len(dates))
	for i, d := range dates {
		if o, ok := byDate[domain.DateKey(d)]; ok {
			out = append(out, o)
		} else if have[i] {
			out = append(out, cached[i])
		}
	}
	return out, nil
}

func (c *CachedSource) count(result string) {
	if c.metrics != nil {
		c.metrics.WeatherCache.WithLabelValues(result).Inc()
	}
}

// daysBetween lists the calendar days of the inclusive range in from's location.
func daysBetween(from, to time.Time) []time.Time {
	y, m, d := from.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	last := domain.DateKey(to.In(from.Location()))

	var out []time.Time
	for ; domain.DateKey(day) <= last; day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}

// missingSpan returns the first and last index not covered, or -1, -1.
func missingSpan(have []bool) (first, last int) {
	first, last = -1, -1
	for i, ok := range have {
		if ok {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last
}

// dayCache maps YYYY-MM-DD to an observation. Each access stamps the day with
// a counter; when full, the day with the oldest stamp goes first.
type dayCache struct {
	maxDays int

	mu    sync.Mutex
	days  map[string]cachedDay
	clock uint64
}

type cachedDay struct {
	obs      domain.WeatherObservation
	lastUsed uint64
}

func newDayCache(maxDays int) *dayCache {
	return &dayCache{
		maxDays: maxDays,
		days:    make(map[string]cachedDay),
	}
}

// lookup returns one slot per date; have[i] reports whether slot i is filled.
func (c *dayCache) lookup(dates []time.Time) (obs []domain.WeatherObservation, have []bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	obs = make([]domain.WeatherObservation, len(dates))
	have = make([]bool, len(dates))
	c.clock++
	for i, d := range dates {
		key := domain.DateKey(d)
		day, ok := c.days[key]
		if !ok {
			continue
		}
		day.lastUsed = c.clock
		c.days[key] = day
		obs[i], have[i] = day.obs, true
	}
	return obs, have
}

func (c *dayCache) store(obs []domain.WeatherObservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clock++
	for _, o := range obs {
		c.days[domain.DateKey(o.Date)] = cachedDay{obs: o, lastUsed: c.clock}
	}
	for len(c.days) > c.maxDays {
		c.evictOldest()
	}
}

func (c *dayCache) evictOldest() {
	var (
		oldestKey string
		oldest    uint64
		found     bool
	)
	for key, day := range c.days {
		if !found || day.lastUsed < oldest || (day.lastUsed == oldest && key < oldestKey) {
			oldestKey, oldest, found = key, day.lastUsed, true
		}
	}
	delete(c.days, oldestKey)
}

func (c *dayCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.days)
}
