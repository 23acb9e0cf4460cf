package main

import (
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/hazard-advisory/internal/adapter/feed"
	"github.com/couchcryptid/hazard-advisory/internal/adapter/mapbox"
	"github.com/couchcryptid/hazard-advisory/internal/config"
	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/engine"
	"github.com/couchcryptid/hazard-advisory/internal/observability"
)

// processMetrics registers the service metrics once per process.
var processMetrics = sync.OnceValue(observability.NewMetrics)

// buildEngine wires the feed client, optional facility search, and optional
// geocoder into an Engine.
func buildEngine(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *engine.Engine {
	client := feed.NewClient(cfg, metrics, logger)

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
		engine.WithFacilityKeyword(cfg.FacilityKeyword),
	}

	// A nil source disables facility search; do not pass a typed nil.
	var facilities domain.FacilitySource
	if cfg.FacilitySearchEnabled() {
		facilities = client
	} else {
		logger.Info("facility search disabled", "reason", "PLACES_API_KEY not set")
	}

	// Geocoder is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		mb := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts = append(opts, engine.WithGeocoder(mapbox.NewCachedGeocoder(mb, cfg.MapboxCacheSize, metrics)))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
	}

	return engine.New(client, facilities, opts...)
}

// cliLogger logs to w, which is stderr for the query commands so stdout
// carries only the advisory.
func cliLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
