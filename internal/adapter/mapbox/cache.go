package mapbox

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache[string, domain.Place]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder. A
// non-positive maxEntries falls back to a single-entry cache.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	if maxEntries < 1 {
		maxEntries = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, domain.Place](maxEntries)
	return &CachedGeocoder{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Locate(ctx context.Context, query string) (domain.Place, error) {
	key := "loc:" + strings.ToLower(strings.TrimSpace(query))
	return c.cached(key, "locate", func() (domain.Place, error) {
		return c.inner.Locate(ctx, query)
	})
}

// Describe rounds to four decimal places (about 11 m) so a storm that barely
// moves between refreshes reuses its cached place.
func (c *CachedGeocoder) Describe(ctx context.Context, at domain.Coordinate) (domain.Place, error) {
	key := fmt.Sprintf("desc:%.4f,%.4f", at.Lat, at.Lon)
	return c.cached(key, "describe", func() (domain.Place, error) {
		return c.inner.Describe(ctx, at)
	})
}

// size reports the number of cached places.
func (c *CachedGeocoder) size() int {
	return c.cache.Len()
}

func (c *CachedGeocoder) cached(key, method string, fetch func() (domain.Place, error)) (domain.Place, error) {
	if place, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(method, "hit").Inc()
		return place, nil
	}
	c.metrics.GeocodeCache.WithLabelValues(method, "miss").Inc()

	place, err := fetch()
	if err != nil {
		return place, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if place.Found() {
		c.cache.Add(key, place)
	}
	return place, nil
}
