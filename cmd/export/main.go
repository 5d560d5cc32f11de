// Command export runs the pipeline once over a feed and writes the result as
// an Excel workbook with "Daily Data" and "Hourly Data" sheets.
//
// Usage:
//
//	go run ./cmd/export -feed data/mock/venue_week.csv -out footfall.xlsx
//	go run ./cmd/export -url https://example.com/feed.csv -weather -out footfall.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/footfall-etl/internal/adapter/fetch"
	"github.com/couchcryptid/footfall-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/footfall-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/footfall-etl/internal/domain"
	"github.com/couchcryptid/footfall-etl/internal/observability"
	"github.com/couchcryptid/footfall-etl/internal/pipeline"
)

func main() {
	feedPath := flag.String("feed", "", "path to a local feed file")
	feedURL := flag.String("url", "", "feed URL (used when -feed is empty)")
	out := flag.String("out", "footfall.xlsx", "output workbook path")
	tz := flag.String("tz", "Europe/Brussels", "feed time zone")
	withWeather := flag.Bool("weather", false, "merge Open-Meteo daily weather")
	lat := flag.Float64("lat", 50.8503, "weather latitude")
	lon := flag.Float64("lon", 4.3517, "weather longitude")
	timeout := flag.Duration("timeout", 30*time.Second, "overall run timeout")
	flag.Parse()

	if err := run(*feedPath, *feedURL, *out, *tz, *withWeather, *lat, *lon, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
}

func run(feedPath, feedURL, out, tz string, withWeather bool, lat, lon float64, timeout time.Duration) error {
	if feedPath == "" && feedURL == "" {
		flag.Usage()
		return fmt.Errorf("one of -feed or -url is required")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	logger := observability.NewLogger("warn", "text")
	metrics := observability.NewMetrics()
	opts := fetch.Options{Timeout: 10 * time.Second, BreakerTimeout: time.Minute}

	var feed pipeline.FeedSource
	if feedPath != "" {
		feed = fetch.NewFileFeed(feedPath)
	} else {
		feed = fetch.NewFeedClient(fetch.NewClient("feed", opts, logger), feedURL)
	}

	var weather pipeline.WeatherSource
	if withWeather {
		weather = openmeteo.NewClient(fetch.NewClient("open-meteo", opts, logger),
			"https://api.open-meteo.com/v1", lat, lon, loc, logger)
	}

	p := pipeline.New(feed, weather, nil, pipeline.Options{
		Location:      loc,
		BusinessHours: domain.DefaultBusinessHours(),
	}, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := p.Run(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := xlsx.Export(f, *snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Info("workbook written", "path", out, "days", len(snap.Days), "hours", len(snap.Hours), "weather", snap.WeatherMerged)
	return nil
}
