package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
)

const stormBody = `{"activeStorms":[
	{"id":"al092022","name":"Ian","classification":"HU","intensity":"135","latitudeNumeric":26.0,"longitudeNumeric":-81.0},
	{"id":"al102022","name":"Julia","classification":"TS","intensity":"45","latitudeNumeric":12.5,"longitudeNumeric":-78.2}
]}`

const facilityBody = `{"status":"OK","results":[
	{"name":"Homestead Chapter","vicinity":"Homestead","geometry":{"location":{"lat":25.47,"lng":-80.47}}}
]}`

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// stubFeeds points the feed configuration at a local server.
func stubFeeds(t *testing.T, placesKey string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/storms":
			_, _ = io.WriteString(w, stormBody)
		case "/facilities":
			_, _ = io.WriteString(w, facilityBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("STORM_FEED_URL", srv.URL+"/storms")
	t.Setenv("FACILITY_FEED_URL", srv.URL+"/facilities")
	t.Setenv("PLACES_API_KEY", placesKey)
	t.Setenv("MAPBOX_TOKEN", "")
	t.Setenv("MAPBOX_ENABLED", "false")
}

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSuppliesText(t *testing.T) {
	out, err := execute(t, "supplies", "--category", "3", "--distance", "40")

	require.NoError(t, err)
	assert.Contains(t, out, "Category 3, 40.0 miles away:")
	for _, rec := range domain.Recommend(3, 40) {
		assert.Contains(t, out, rec)
	}
}

func TestSuppliesJSON(t *testing.T) {
	out, err := execute(t, "supplies", "--category", "9", "--distance", "10", "-o", "json")

	require.NoError(t, err)
	var got suppliesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{domain.InvalidCategoryMessage}, got.Recommendations)
}

func TestSuppliesRequiresFlags(t *testing.T) {
	_, err := execute(t, "supplies", "--category", "3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "distance")
}

func TestSuppliesRejectsNegativeDistance(t *testing.T) {
	out, err := execute(t, "supplies", "--category", "3", "--distance=-10")

	require.ErrorIs(t, err, domain.ErrInvalidDistance)
	assert.Empty(t, out)
}

func TestHazardsText(t *testing.T) {
	stubFeeds(t, "")

	out, err := execute(t, "hazards", "--lat", "25", "--lon", "-80")

	require.NoError(t, err)
	assert.Contains(t, out, "Hazards nearest 25.0000, -80.0000")
	ian := strings.Index(out, "Ian")
	julia := strings.Index(out, "Julia")
	require.Positive(t, ian)
	require.Positive(t, julia)
	assert.Less(t, ian, julia, "nearest first")
	assert.Contains(t, out, "Tropical Storm")
}

func TestHazardsJSON(t *testing.T) {
	stubFeeds(t, "")

	out, err := execute(t, "hazards", "--lat", "25", "--lon", "-80", "--format", "json")

	require.NoError(t, err)
	var got rankedOutput[domain.HazardRecord]
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "success", got.Status)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "Ian", got.Entries[0].Record.Name)
	assert.InDelta(t, 149.8, got.Entries[0].DistanceKm, 1)
}

func TestHazardsGeoJSON(t *testing.T) {
	stubFeeds(t, "")

	out, err := execute(t, "hazards", "--lat", "25", "--lon", "-80", "-o", "geojson")

	require.NoError(t, err)
	assert.Contains(t, out, `"FeatureCollection"`)
	assert.Contains(t, out, `"Ian"`)
}

func TestHazardsOriginErrors(t *testing.T) {
	stubFeeds(t, "")

	for name, args := range map[string][]string{
		"no origin":        {"hazards"},
		"lat only":         {"hazards", "--lat", "25"},
		"out of range":     {"hazards", "--lat", "95", "--lon", "-80"},
		"unknown format":   {"hazards", "--lat", "25", "--lon", "-80", "-o", "kml"},
		"place, no mapbox": {"hazards", "--place", "Miami"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestHazardsPlaceWithoutGeocoder(t *testing.T) {
	stubFeeds(t, "")

	_, err := execute(t, "hazards", "--place", "Miami")

	assert.ErrorIs(t, err, domain.ErrGeocoderDisabled)
}

func TestFacilitiesMissingCredential(t *testing.T) {
	stubFeeds(t, "")

	_, err := execute(t, "facilities", "--lat", "25.5", "--lon", "-80.4")

	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestFacilitiesText(t *testing.T) {
	stubFeeds(t, "test-key")

	out, err := execute(t, "facilities", "--lat", "25.5", "--lon", "-80.4")

	require.NoError(t, err)
	assert.Contains(t, out, "Homestead Chapter")
	assert.Contains(t, out, "Homestead")
}

func TestOverviewPartialFailure(t *testing.T) {
	stubFeeds(t, "")

	out, err := execute(t, "overview", "--lat", "25", "--lon", "-80")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: partial_failure")
	assert.Contains(t, out, "Facilities unavailable")
	assert.Contains(t, out, "Ian (Category 4)")
}

func TestOverviewJSON(t *testing.T) {
	stubFeeds(t, "test-key")

	out, err := execute(t, "overview", "--lat", "25", "--lon", "-80", "-o", "json")

	require.NoError(t, err)
	var got overviewOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "success", got.Status)
	assert.Len(t, got.Facilities.Entries, 1)
	assert.Equal(t, 4, got.Category)
	assert.NotEmpty(t, got.Recommendations)
}

func TestCheckFeedStorms(t *testing.T) {
	path := writeTemp(t, `{"activeStorms":[
		{"name":"Ian","classification":"HU","intensity":135,"latitudeNumeric":26,"longitudeNumeric":-81},
		{"classification":"TS","latitudeNumeric":20,"longitudeNumeric":-70}
	]}`)

	out, err := execute(t, "check-feed", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Ian")
	assert.Contains(t, out, "cat 4")
	assert.Contains(t, out, "accepted: 1")
	assert.Contains(t, out, "record 1: missing name")
}

func TestCheckFeedMalformed(t *testing.T) {
	path := writeTemp(t, `<html>Service Unavailable</html>`)

	out, err := execute(t, "check-feed", "--file", path)

	require.ErrorIs(t, err, errFeedInvalid)
	assert.Contains(t, out, "FAIL")
}

func TestCheckFeedFacilitiesFromStdin(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(`{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`))
	root.SetArgs([]string{"check-feed", "--kind", "facilities"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "accepted: 0")
	assert.Contains(t, out.String(), "warning: provider status REQUEST_DENIED bad key")
}

func TestCheckFeedUnknownKind(t *testing.T) {
	path := writeTemp(t, `{}`)

	_, err := execute(t, "check-feed", "--file", path, "--kind", "quakes")

	assert.Error(t, err)
}
