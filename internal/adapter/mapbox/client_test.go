package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeFeatures(t *testing.T, w http.ResponseWriter, features ...feature) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(response{Features: features}))
}

func TestClient_Locate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Key West, FL.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		writeFeatures(t, w, feature{
			Center:    []float64{-81.78, 24.5551},
			PlaceName: "Key West, Florida, United States",
			Text:      "Key West",
			Relevance: 0.97,
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	place, err := c.Locate(context.Background(), "Key West, FL")
	require.NoError(t, err)

	assert.Equal(t, domain.Coordinate{Lat: 24.5551, Lon: -81.78}, place.Location)
	assert.Equal(t, "Key West, Florida, United States", place.FormattedAddress)
	assert.Equal(t, "Key West", place.Name)
	assert.InDelta(t, 0.97, place.Confidence, 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("locate", "success")), 0)
}

func TestClient_Describe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/-81.000000,26.000000.json", r.URL.Path)
		writeFeatures(t, w, feature{
			Center:    []float64{-81.0, 26.0},
			PlaceName: "Collier County, Florida, United States",
			Text:      "Collier County",
			Relevance: 1,
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	place, err := c.Describe(context.Background(), domain.Coordinate{Lat: 26, Lon: -81})
	require.NoError(t, err)

	assert.Equal(t, "Collier County, Florida, United States", place.FormattedAddress)
	assert.True(t, place.Found())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("describe", "success")), 0)
}

func TestClient_Describe_OpenOcean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFeatures(t, w)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	place, err := c.Describe(context.Background(), domain.Coordinate{Lat: 30, Lon: -50})
	require.NoError(t, err)
	assert.False(t, place.Found())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("describe", "empty")), 0)
}

func TestClient_Locate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Locate(context.Background(), "Miami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("locate", "error")), 0)
}

func TestClient_Locate_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Locate(context.Background(), "Miami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Locate_TimeoutHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Locate(context.Background(), "Miami")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testToken)
}
