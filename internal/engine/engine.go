// Package engine is the advisory facade consumed by the HTTP API and the CLI.
// It owns the only cross-call state in the service: the last successful
// snapshot of each feed.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/observability"
)

const (
	// FacilityRadiusMeters is the search radius sent to the facility feed.
	FacilityRadiusMeters = 50000

	// FacilityLimit is the number of nearest facilities returned.
	FacilityLimit = 3

	// DefaultFacilityKeyword is used when neither the caller nor the
	// configuration supplies one.
	DefaultFacilityKeyword = "red cross"
)

// Engine answers proximity and supply queries against the live feeds.
// It is safe for concurrent use.
type Engine struct {
	hazards    domain.HazardSource
	facilities domain.FacilitySource
	geocoder   domain.Geocoder
	keyword    string
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	// mu serialises snapshot writes. Readers go through the atomic pointers.
	mu             sync.Mutex
	lastHazards    atomic.Pointer[domain.Snapshot[domain.HazardRecord]]
	lastFacilities atomic.Pointer[domain.Snapshot[domain.FacilityRecord]]
}

// Option configures an Engine.
type Option func(*Engine)

// WithGeocoder enables place resolution and hazard place names.
func WithGeocoder(g domain.Geocoder) Option {
	return func(e *Engine) { e.geocoder = g }
}

// WithClock sets the clock used to stamp snapshots.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables metric collection. Without it nothing is counted.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithFacilityKeyword overrides the default facility search keyword.
func WithFacilityKeyword(k string) Option {
	return func(e *Engine) {
		if k = strings.TrimSpace(k); k != "" {
			e.keyword = k
		}
	}
}

// New builds an Engine. A nil facilities source means facility search is not
// configured and NearestFacilities always fails with ErrMissingCredential.
func New(hazards domain.HazardSource, facilities domain.FacilitySource, opts ...Option) *Engine {
	e := &Engine{
		hazards:    hazards,
		facilities: facilities,
		keyword:    DefaultFacilityKeyword,
		clock:      clockwork.NewRealClock(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SupplyAdvisory returns the recommended actions and supplies for a hurricane
// of the given category at distanceMiles. It never fails; an invalid category
// yields the single invalid-category message.
func (e *Engine) SupplyAdvisory(distanceMiles float64, category int) []string {
	if err := domain.CheckCategory(category); err != nil {
		e.logger.Warn("supply advisory requested for invalid category",
			"category", category,
			"distance_miles", distanceMiles,
		)
		if e.metrics != nil {
			e.metrics.InvalidCategories.Inc()
		}
	}
	return domain.RecommendFor(domain.SupplyContext{DistanceMiles: distanceMiles, Category: category})
}

// HazardProximity fetches the active storms and ranks all of them by distance
// from origin. Feed failures are returned unchanged inside a Failure result.
func (e *Engine) HazardProximity(ctx context.Context, origin domain.Coordinate) domain.AdvisoryResult[domain.HazardRecord] {
	records, fetchedAt, err := e.fetchHazards(ctx)
	if err != nil {
		return domain.Failed[domain.HazardRecord](err)
	}

	ranked := domain.Rank(records, origin, 0)
	ranked = domain.EnrichWithPlaces(ctx, ranked, e.geocoder, e.logger)
	return domain.Succeeded(ranked, fetchedAt)
}

// RefreshHazards fetches the storm feed and updates the hazard snapshot
// without ranking. It is the unit of work for the background refresher.
func (e *Engine) RefreshHazards(ctx context.Context) error {
	_, _, err := e.fetchHazards(ctx)
	return err
}

func (e *Engine) fetchHazards(ctx context.Context) ([]domain.HazardRecord, time.Time, error) {
	records, err := e.hazards.FetchHazards(ctx)
	if err != nil {
		e.logger.Warn("hazard feed fetch failed", "error", err)
		return nil, time.Time{}, err
	}
	fetchedAt := e.clock.Now()
	if storeSnapshot(ctx, &e.mu, &e.lastHazards, records, fetchedAt) {
		e.countCacheWrite(domain.StormFeed)
	}
	e.logger.Debug("hazard feed fetched", "records", len(records))
	return records, fetchedAt, nil
}

// NearestFacilities returns up to FacilityLimit facilities matching keyword
// within FacilityRadiusMeters of origin. An empty keyword uses the configured
// default.
func (e *Engine) NearestFacilities(ctx context.Context, origin domain.Coordinate, keyword string) domain.AdvisoryResult[domain.FacilityRecord] {
	if e.facilities == nil {
		return domain.Failed[domain.FacilityRecord](domain.ErrMissingCredential)
	}
	if keyword = strings.TrimSpace(keyword); keyword == "" {
		keyword = e.keyword
	}

	records, err := e.facilities.FetchFacilities(ctx, origin, FacilityRadiusMeters, keyword)
	if err != nil {
		e.logger.Warn("facility feed fetch failed", "error", err, "keyword", keyword)
		return domain.Failed[domain.FacilityRecord](err)
	}
	fetchedAt := e.clock.Now()
	if storeSnapshot(ctx, &e.mu, &e.lastFacilities, records, fetchedAt) {
		e.countCacheWrite(domain.FacilityFeed)
	}

	return domain.Succeeded(domain.Rank(records, origin, FacilityLimit), fetchedAt)
}

// ResolvePlace forward geocodes a free-text place into an origin.
func (e *Engine) ResolvePlace(ctx context.Context, query string) (domain.Coordinate, error) {
	if e.geocoder == nil {
		return domain.Coordinate{}, domain.ErrGeocoderDisabled
	}
	place, err := e.geocoder.Locate(ctx, query)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("resolve place %q: %w", query, err)
	}
	if !place.Found() || !place.Location.Valid() {
		return domain.Coordinate{}, fmt.Errorf("resolve place %q: %w", query, domain.ErrPlaceNotFound)
	}
	return place.Location, nil
}

// LastHazards returns the most recent successful hazard fetch.
func (e *Engine) LastHazards() (domain.Snapshot[domain.HazardRecord], bool) {
	return loadSnapshot(&e.lastHazards)
}

// LastFacilities returns the most recent successful facility fetch.
func (e *Engine) LastFacilities() (domain.Snapshot[domain.FacilityRecord], bool) {
	return loadSnapshot(&e.lastFacilities)
}

// CheckReadiness returns nil once a hazard snapshot exists.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.lastHazards.Load() == nil {
		return errors.New("hazard feed has not been fetched successfully yet")
	}
	return nil
}

func (e *Engine) countCacheWrite(feed string) {
	if e.metrics != nil {
		e.metrics.CacheWrites.WithLabelValues(feed).Inc()
	}
}

// storeSnapshot replaces dst unless ctx is already done. It reports whether
// the write happened.
func storeSnapshot[T any](ctx context.Context, mu *sync.Mutex, dst *atomic.Pointer[domain.Snapshot[T]], records []T, at time.Time) bool {
	mu.Lock()
	defer mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	dst.Store(&domain.Snapshot[T]{Records: slices.Clone(records), FetchedAt: at})
	return true
}

func loadSnapshot[T any](src *atomic.Pointer[domain.Snapshot[T]]) (domain.Snapshot[T], bool) {
	s := src.Load()
	if s == nil {
		return domain.Snapshot[T]{}, false
	}
	return domain.Snapshot[T]{Records: slices.Clone(s.Records), FetchedAt: s.FetchedAt}, true
}
