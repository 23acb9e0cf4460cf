//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-advisory/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/hazard-advisory/internal/adapter/http"
	"github.com/couchcryptid/hazard-advisory/internal/config"
	"github.com/couchcryptid/hazard-advisory/internal/engine"
	"github.com/couchcryptid/hazard-advisory/internal/observability"
	"github.com/couchcryptid/hazard-advisory/internal/refresh"
)

// feedServer serves a storm feed whose storm drifts north on every request
// and a fixed facility feed.
type feedServer struct {
	stormHits    atomic.Int64
	facilityHits atomic.Int64
	failStorms   atomic.Bool
}

func (f *feedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/CurrentStorms.json":
		n := f.stormHits.Add(1)
		if f.failStorms.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"activeStorms":[
			{"id":"al092022","name":"Ian","classification":"HU","intensity":"135","latitudeNumeric":%.1f,"longitudeNumeric":-81.0}
		]}`, 24.0+float64(n)*0.1)
	case "/nearbysearch/json":
		f.facilityHits.Add(1)
		if r.URL.Query().Get("key") != "integration-key" {
			_, _ = io.WriteString(w, `{"status":"REQUEST_DENIED","results":[]}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"OK","results":[
			{"name":"Homestead Chapter","vicinity":"Homestead","geometry":{"location":{"lat":25.47,"lng":-80.47}}},
			{"name":"Key Largo Chapter","vicinity":"Key Largo","geometry":{"location":{"lat":25.08,"lng":-80.44}}}
		]}`)
	default:
		http.NotFound(w, r)
	}
}

type stack struct {
	feeds *feedServer
	api   *httptest.Server
	eng   *engine.Engine
}

func startStack(ctx context.Context, t *testing.T) *stack {
	t.Helper()
	feeds := &feedServer{}
	upstream := httptest.NewServer(feeds)
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		StormFeedURL:    upstream.URL + "/CurrentStorms.json",
		FacilityFeedURL: upstream.URL + "/nearbysearch/json",
		PlacesAPIKey:    "integration-key",
		FacilityKeyword: "red cross",
		FeedTimeout:     5 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	client := feed.NewClient(cfg, metrics, logger)
	eng := engine.New(client, client,
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
		engine.WithFacilityKeyword(cfg.FacilityKeyword),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = refresh.New(eng, 50*time.Millisecond, nil, logger, metrics).Run(ctx)
	}()
	t.Cleanup(func() { <-done })

	api := httptest.NewServer(httpadapter.NewServer(":0", eng, logger))
	t.Cleanup(api.Close)

	return &stack{feeds: feeds, api: api, eng: eng}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

// TestRefresherMakesServiceReady verifies the background refresher fills the
// hazard snapshot and keeps it current.
func TestRefresherMakesServiceReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := startStack(ctx, t)

	require.Eventually(t, func() bool {
		resp, err := http.Get(s.api.URL + "/readyz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	first, ok := s.eng.LastHazards()
	require.True(t, ok)
	require.Len(t, first.Records, 1)

	require.Eventually(t, func() bool {
		snap, _ := s.eng.LastHazards()
		return snap.Records[0].Location.Lat > first.Records[0].Location.Lat
	}, 5*time.Second, 20*time.Millisecond, "snapshot follows the moving storm")

	snap, _ := s.eng.LastHazards()
	assert.Equal(t, first.Records[0].ID, snap.Records[0].ID, "ID is stable while the storm moves")
}

// TestOverviewEndToEnd drives a full overview through HTTP, feed client, and
// engine.
func TestOverviewEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := startStack(ctx, t)

	var body struct {
		Status  string `json:"status"`
		Hazards struct {
			Status  string `json:"status"`
			Entries []struct {
				DistanceMiles float64 `json:"distance_miles"`
			} `json:"entries"`
		} `json:"hazards"`
		Facilities struct {
			Entries []struct {
				Record struct {
					Name string `json:"name"`
				} `json:"record"`
			} `json:"entries"`
		} `json:"facilities"`
		Category        int      `json:"category"`
		Recommendations []string `json:"recommendations"`
	}
	status := getJSON(t, s.api.URL+"/v1/overview?lat=25.5&lon=-80.4", &body)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body.Status)
	require.Len(t, body.Hazards.Entries, 1)
	require.Len(t, body.Facilities.Entries, 2)
	assert.Equal(t, "Homestead Chapter", body.Facilities.Entries[0].Record.Name)
	assert.Equal(t, 4, body.Category)
	assert.NotEmpty(t, body.Recommendations)
	assert.Positive(t, s.feeds.facilityHits.Load())
}

// TestStormOutageKeepsLastSnapshot verifies a failing storm feed surfaces as
// 502 on live queries while the last good snapshot stays readable.
func TestStormOutageKeepsLastSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := startStack(ctx, t)

	require.Eventually(t, func() bool {
		_, ok := s.eng.LastHazards()
		return ok
	}, 5*time.Second, 20*time.Millisecond)
	s.feeds.failStorms.Store(true)

	var failure struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	status := getJSON(t, s.api.URL+"/v1/hazards?lat=25&lon=-80", &failure)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "failure", failure.Status)
	assert.Contains(t, failure.Error, "storms")

	var snap struct {
		Count int `json:"count"`
	}
	status = getJSON(t, s.api.URL+"/v1/hazards", &snap)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, snap.Count)
}
