package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/footfall-etl/internal/domain"
)

const dailyFields = "temperature_2m_mean,precipitation_sum,windspeed_10m_max,weathercode"

// Getter fetches a URL and returns its body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client implements pipeline.WeatherSource using the Open-Meteo forecast API.
type Client struct {
	getter    Getter
	baseURL   string
	latitude  float64
	longitude float64
	loc       *time.Location
	logger    *slog.Logger
}

// NewClient creates an Open-Meteo client for a fixed location. Observation
// dates are interpreted in loc.
func NewClient(getter Getter, baseURL string, latitude, longitude float64, loc *time.Location, logger *slog.Logger) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		getter:    getter,
		baseURL:   baseURL,
		latitude:  latitude,
		longitude: longitude,
		loc:       loc,
		logger:    logger,
	}
}

// FetchDaily returns one observation per day in [from, to], in date order.
func (c *Client) FetchDaily(ctx context.Context, from, to time.Time) ([]domain.WeatherObservation, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(c.latitude, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(c.longitude, 'f', -1, 64)},
		"start_date": {domain.DateKey(from)},
		"end_date":   {domain.DateKey(to)},
		"daily":      {dailyFields},
		"timezone":   {"auto"},
	}

	body, err := c.getter.Get(ctx, c.baseURL+"/forecast?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	obs, err := resp.Daily.observations(c.loc)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("weather fetched",
		"from", domain.DateKey(from),
		"to", domain.DateKey(to),
		"observations", len(obs),
	)
	return obs, nil
}

// Open-Meteo API response types. Missing values arrive as JSON null.

type response struct {
	Daily daily `json:"daily"`
}

type daily struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m_mean"`
	Precipitation []*float64 `json:"precipitation_sum"`
	Windspeed     []*float64 `json:"windspeed_10m_max"`
	WeatherCode   []*int     `json:"weathercode"`
}

func (d daily) observations(loc *time.Location) ([]domain.WeatherObservation, error) {
	n := len(d.Time)
	if len(d.Temperature) != n || len(d.Precipitation) != n || len(d.Windspeed) != n || len(d.WeatherCode) != n {
		return nil, fmt.Errorf("open-meteo daily series have unequal lengths: time=%d temperature=%d precipitation=%d windspeed=%d weathercode=%d",
			n, len(d.Temperature), len(d.Precipitation), len(d.Windspeed), len(d.WeatherCode))
	}

	out := make([]domain.WeatherObservation, n)
	for i, raw := range d.Time {
		date, err := time.ParseInLocation(time.DateOnly, raw, loc)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", raw, err)
		}
		code := 0
		if d.WeatherCode[i] != nil {
			code = *d.WeatherCode[i]
		}
		out[i] = domain.WeatherObservation{
			Date:          date,
			Code:          code,
			Symbol:        domain.WeatherSymbol(code),
			Temperature:   deref(d.Temperature[i]),
			Precipitation: deref(d.Precipitation[i]),
			Windspeed:     deref(d.Windspeed[i]),
		}
	}
	return out, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
