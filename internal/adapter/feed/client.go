package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/hazard-advisory/internal/config"
	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/observability"
)

const (
	StormFeed    = domain.StormFeed
	FacilityFeed = domain.FacilityFeed
)

// maxBodyBytes caps how much of a feed response is read.
const maxBodyBytes = 8 << 20

// Client fetches the storm and facility feeds.
// It implements domain.HazardSource and domain.FacilitySource.
type Client struct {
	httpClient  *http.Client
	stormURL    string
	facilityURL string
	apiKey      string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a feed client from service configuration. Each request is
// bounded by cfg.FeedTimeout and is never retried.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.FeedTimeout,
		},
		stormURL:    cfg.StormFeedURL,
		facilityURL: cfg.FacilityFeedURL,
		apiKey:      cfg.PlacesAPIKey,
		metrics:     metrics,
		logger:      logger,
	}
}

// FetchHazards retrieves and parses the active storm feed.
func (c *Client) FetchHazards(ctx context.Context) ([]domain.HazardRecord, error) {
	start := time.Now()

	body, err := c.get(ctx, StormFeed, c.stormURL)
	if err != nil {
		c.observe(StormFeed, start, err)
		return nil, err
	}

	records, skipped, err := ParseStorms(body)
	if err != nil {
		ferr := domain.NewFeedError(StormFeed, domain.ErrMalformedResponse, err)
		c.observe(StormFeed, start, ferr)
		return nil, ferr
	}

	c.recordParse(StormFeed, len(records), skipped)
	c.observe(StormFeed, start, nil)
	return records, nil
}

// FetchFacilities searches the facility feed around center.
func (c *Client) FetchFacilities(ctx context.Context, center domain.Coordinate, radiusMeters int, keyword string) ([]domain.FacilityRecord, error) {
	start := time.Now()

	params := url.Values{
		"location": {strconv.FormatFloat(center.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(center.Lon, 'f', -1, 64)},
		"radius":   {strconv.Itoa(radiusMeters)},
		"keyword":  {keyword},
		"key":      {c.apiKey},
	}

	body, err := c.get(ctx, FacilityFeed, c.facilityURL+"?"+params.Encode())
	if err != nil {
		c.observe(FacilityFeed, start, err)
		return nil, err
	}

	records, skipped, status, err := ParseFacilities(body)
	if err != nil {
		ferr := domain.NewFeedError(FacilityFeed, domain.ErrMalformedResponse, err)
		c.observe(FacilityFeed, start, ferr)
		return nil, ferr
	}
	if !status.Healthy() {
		c.logger.Warn("facility provider reported a non-OK status",
			"status", status.Code,
			"message", status.Message,
		)
	}

	c.recordParse(FacilityFeed, len(records), skipped)
	c.observe(FacilityFeed, start, nil)
	return records, nil
}

// get issues one GET request and returns the body. All failures are
// expressed as *domain.FeedError.
func (c *Client) get(ctx context.Context, feed, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, domain.NewFeedError(feed, domain.ErrNetwork, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewFeedError(feed, domain.ErrNetwork, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewFeedError(feed, domain.ErrEmptyResponse, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewFeedError(feed, domain.ErrNetwork, fmt.Errorf("read body: %w", err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, domain.NewFeedError(feed, domain.ErrEmptyResponse, nil)
	}
	return body, nil
}

func (c *Client) recordParse(feed string, accepted int, skipped []SkippedRecord) {
	c.metrics.RecordsAccepted.WithLabelValues(feed).Add(float64(accepted))
	if len(skipped) == 0 {
		return
	}
	c.metrics.RecordsDropped.WithLabelValues(feed).Add(float64(len(skipped)))
	for _, s := range skipped {
		c.logger.Debug("dropped feed record", "feed", feed, "index", s.Index, "reason", s.Reason)
	}
}

func (c *Client) observe(feed string, start time.Time, err error) {
	c.metrics.FeedRequests.WithLabelValues(feed, Outcome(err)).Inc()
	c.metrics.FeedDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
}

// Outcome maps a fetch error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNetwork):
		return "network_error"
	case errors.Is(err, domain.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed_response"
	default:
		return "error"
	}
}

// stripURL drops the request URL from transport errors so the Places API key
// never reaches logs or callers.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
