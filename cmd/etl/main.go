package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/footfall-etl/internal/adapter/fetch"
	httpadapter "github.com/couchcryptid/footfall-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/footfall-etl/internal/adapter/kafka"
	"github.com/couchcryptid/footfall-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/footfall-etl/internal/config"
	"github.com/couchcryptid/footfall-etl/internal/observability"
	"github.com/couchcryptid/footfall-etl/internal/pipeline"
	"github.com/couchcryptid/footfall-etl/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	fetchOpts := fetch.Options{
		Timeout:        cfg.FetchTimeout,
		MaxRetries:     cfg.FetchMaxRetries,
		RetryDelay:     cfg.FetchRetryDelay,
		BreakerTimeout: cfg.BreakerTimeout,
	}

	var feed pipeline.FeedSource
	if cfg.FeedPath != "" {
		feed = fetch.NewFileFeed(cfg.FeedPath)
		logger.Info("reading feed from file", "path", cfg.FeedPath)
	} else {
		feed = fetch.NewFeedClient(fetch.NewClient("feed", fetchOpts, logger), cfg.FeedURL)
		logger.Info("fetching feed over http", "url", cfg.FeedURL)
	}

	// Weather enrichment (feature-flagged via WEATHER_ENABLED).
	var weather pipeline.WeatherSource
	if cfg.WeatherEnabled {
		client := openmeteo.NewClient(
			fetch.NewClient("open-meteo", fetchOpts, logger),
			cfg.WeatherBaseURL, cfg.WeatherLatitude, cfg.WeatherLongitude,
			cfg.FeedLocation, logger,
		)
		weather = openmeteo.NewCachedSource(client, cfg.WeatherCacheSize, metrics)
		logger.Info("weather enrichment enabled",
			"latitude", cfg.WeatherLatitude,
			"longitude", cfg.WeatherLongitude,
			"cache_size", cfg.WeatherCacheSize,
		)
	} else {
		logger.Info("weather enrichment disabled")
	}

	// Daily record sink (feature-flagged via KAFKA_ENABLED).
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	p := pipeline.New(feed, weather, publisher, pipeline.Options{
		Location:      cfg.FeedLocation,
		BusinessHours: cfg.BusinessHours,
	}, logger, metrics)

	sched, err := scheduler.New(p, cfg.RefreshSchedule, cfg.RunTimeout, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.FeedLocation, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sched.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
