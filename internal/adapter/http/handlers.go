package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-advisory/internal/adapter/features"
	"github.com/couchcryptid/hazard-advisory/internal/domain"
)

var (
	errBadParam = errors.New("bad parameter")
	errNoOrigin = fmt.Errorf("%w: lat and lon, or place, are required", errBadParam)
	errNoData   = errors.New("no hazard data has been fetched yet")
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type suppliesResponse struct {
	Category        int      `json:"category"`
	DistanceMiles   float64  `json:"distance_miles"`
	Recommendations []string `json:"recommendations"`
}

type rankedResponse[T domain.Locatable] struct {
	Status    string                  `json:"status"`
	FetchedAt time.Time               `json:"fetched_at"`
	Origin    domain.Coordinate       `json:"origin"`
	Count     int                     `json:"count"`
	Entries   []domain.RankedEntry[T] `json:"entries"`
}

type snapshotResponse struct {
	Status    string                `json:"status"`
	FetchedAt time.Time             `json:"fetched_at"`
	Count     int                   `json:"count"`
	Hazards   []domain.HazardRecord `json:"hazards"`
}

type section[T domain.Locatable] struct {
	Status    string                  `json:"status"`
	Error     string                  `json:"error,omitempty"`
	FetchedAt *time.Time              `json:"fetched_at,omitempty"`
	Entries   []domain.RankedEntry[T] `json:"entries"`
}

type overviewResponse struct {
	Status          string                         `json:"status"`
	Error           string                         `json:"error,omitempty"`
	Origin          domain.Coordinate              `json:"origin"`
	Hazards         section[domain.HazardRecord]   `json:"hazards"`
	Facilities      section[domain.FacilityRecord] `json:"facilities"`
	Category        int                            `json:"category,omitempty"`
	Recommendations []string                       `json:"recommendations,omitempty"`
}

func (s *Server) handleSupplies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category, err := strconv.Atoi(q.Get("category"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: category must be an integer", errBadParam))
		return
	}
	distance, err := parseFloat("distance_miles", q.Get("distance_miles"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sc := domain.SupplyContext{DistanceMiles: distance, Category: category}
	if err := sc.Validate(); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadParam, err))
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, suppliesResponse{
		Category:        sc.Category,
		DistanceMiles:   sc.DistanceMiles,
		Recommendations: s.advisor.SupplyAdvisory(sc.DistanceMiles, sc.Category),
	})
}

func (s *Server) handleHazards(w http.ResponseWriter, r *http.Request) {
	geo, err := wantsGeoJSON(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	origin, ok, err := s.resolveOrigin(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.serveSnapshot(w, r, geo)
		return
	}

	res := s.advisor.HazardProximity(r.Context(), origin)
	if !res.OK() {
		s.writeError(w, r, res.Err)
		return
	}
	if geo {
		s.writeGeoJSON(w, r, features.Hazards(res.Entries))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, ranked(res, origin))
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request, geo bool) {
	snap, ok := s.advisor.LastHazards()
	if !ok {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Status: domain.ResultFailure.String(), Error: errNoData.Error()})
		return
	}
	if geo {
		s.writeGeoJSON(w, r, features.HazardSnapshot(snap.Records))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snapshotResponse{
		Status:    domain.ResultSuccess.String(),
		FetchedAt: snap.FetchedAt,
		Count:     len(snap.Records),
		Hazards:   snap.Records,
	})
}

func (s *Server) handleFacilities(w http.ResponseWriter, r *http.Request) {
	geo, err := wantsGeoJSON(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	origin, err := s.requireOrigin(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res := s.advisor.NearestFacilities(r.Context(), origin, r.URL.Query().Get("keyword"))
	if !res.OK() {
		s.writeError(w, r, res.Err)
		return
	}
	if geo {
		s.writeGeoJSON(w, r, features.Facilities(res.Entries))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, ranked(res, origin))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	origin, err := s.requireOrigin(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ov := s.advisor.Overview(r.Context(), origin, r.URL.Query().Get("keyword"))
	resp := overviewResponse{
		Status:          ov.Kind.String(),
		Origin:          origin,
		Hazards:         sectionOf(ov.Hazards),
		Facilities:      sectionOf(ov.Facilities),
		Category:        ov.Category,
		Recommendations: ov.Recommendations,
	}
	status := http.StatusOK
	if ov.Err != nil {
		resp.Error = ov.Err.Error()
	}
	if ov.Kind == domain.ResultFailure {
		status = http.StatusBadGateway
		s.logger.Warn("overview failed", "error", ov.Err)
	}
	sharedobs.WriteJSON(w, status, resp)
}

// resolveOrigin reads lat/lon, falling back to place. ok is false when the
// request names no origin at all.
func (s *Server) resolveOrigin(r *http.Request) (domain.Coordinate, bool, error) {
	q := r.URL.Query()
	origin, ok, err := parseCoordinate(q)
	if err != nil || ok {
		return origin, ok, err
	}
	place := q.Get("place")
	if place == "" {
		return domain.Coordinate{}, false, nil
	}
	origin, err = s.advisor.ResolvePlace(r.Context(), place)
	if err != nil {
		return domain.Coordinate{}, false, err
	}
	return origin, true, nil
}

func (s *Server) requireOrigin(r *http.Request) (domain.Coordinate, error) {
	origin, ok, err := s.resolveOrigin(r)
	if err != nil {
		return domain.Coordinate{}, err
	}
	if !ok {
		return domain.Coordinate{}, errNoOrigin
	}
	return origin, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("advisory request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Status: domain.ResultFailure.String(), Error: err.Error()})
}

func (s *Server) writeGeoJSON(w http.ResponseWriter, r *http.Request, fc *geojson.FeatureCollection) {
	body, err := fc.MarshalJSON()
	if err != nil {
		s.logger.Error("encode geojson", "path", r.URL.Path, "error", err)
		http.Error(w, "encode geojson", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadParam):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPlaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingCredential), errors.Is(err, domain.ErrGeocoderDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func ranked[T domain.Locatable](res domain.AdvisoryResult[T], origin domain.Coordinate) rankedResponse[T] {
	return rankedResponse[T]{
		Status:    res.Kind.String(),
		FetchedAt: res.FetchedAt,
		Origin:    origin,
		Count:     len(res.Entries),
		Entries:   res.Entries,
	}
}

func sectionOf[T domain.Locatable](res domain.AdvisoryResult[T]) section[T] {
	sec := section[T]{Status: res.Kind.String(), Entries: res.Entries}
	if res.Err != nil {
		sec.Error = res.Err.Error()
	}
	if res.OK() {
		at := res.FetchedAt
		sec.FetchedAt = &at
	}
	return sec
}

func parseCoordinate(q url.Values) (domain.Coordinate, bool, error) {
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")
	if latRaw == "" && lonRaw == "" {
		return domain.Coordinate{}, false, nil
	}
	if latRaw == "" || lonRaw == "" {
		return domain.Coordinate{}, false, fmt.Errorf("%w: lat and lon must be given together", errBadParam)
	}
	lat, err := parseFloat("lat", latRaw)
	if err != nil {
		return domain.Coordinate{}, false, err
	}
	lon, err := parseFloat("lon", lonRaw)
	if err != nil {
		return domain.Coordinate{}, false, err
	}
	c := domain.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return domain.Coordinate{}, false, fmt.Errorf("%w: lat/lon out of range", errBadParam)
	}
	return c, true, nil
}

func parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", errBadParam, name)
	}
	return v, nil
}

func wantsGeoJSON(q url.Values) (bool, error) {
	switch q.Get("format") {
	case "", "json":
		return false, nil
	case "geojson":
		return true, nil
	default:
		return false, fmt.Errorf("%w: format must be json or geojson", errBadParam)
	}
}
