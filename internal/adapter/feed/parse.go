package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parsed is the outcome of decoding one feed entry: either a record or the
// reason it was skipped.
type parsed[T any] struct {
	record T
	skip   string
}

// SkippedRecord describes a feed entry that was dropped during parsing.
type SkippedRecord struct {
	Index  int
	Reason string
}

// keepValid splits parse outcomes into accepted records and skip reasons.
func keepValid[T any](results []parsed[T]) ([]T, []SkippedRecord) {
	records := make([]T, 0, len(results))
	var skipped []SkippedRecord
	for i, r := range results {
		if r.skip != "" {
			skipped = append(skipped, SkippedRecord{Index: i, Reason: r.skip})
			continue
		}
		records = append(records, r.record)
	}
	return records, skipped
}

// Storm feed wire types.

type stormDocument struct {
	ActiveStorms *[]json.RawMessage `json:"activeStorms"`
}

type stormEntry struct {
	ID             looseID   `json:"id"`
	Name           *string   `json:"name" validate:"required"`
	Classification *string   `json:"classification" validate:"required"`
	Intensity      looseKnot `json:"intensity"`
	Lat            *float64  `json:"latitudeNumeric" validate:"required,gte=-90,lte=90"`
	Lon            *float64  `json:"longitudeNumeric" validate:"required,gte=-180,lte=180"`
}

// looseKnot accepts a wind speed encoded as a JSON number or a numeric
// string. Anything else decodes to zero rather than failing the entry.
type looseKnot float64

func (k *looseKnot) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*k = 0
		return nil
	}
	*k = looseKnot(v)
	return nil
}

// looseID accepts an id encoded as a JSON string or number. Any other value
// decodes to empty so the hazard ID falls back to name and classification.
type looseID string

func (id *looseID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = looseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = looseID(n.String())
		return nil
	}
	*id = ""
	return nil
}

// ParseStorms decodes a storm feed body. It fails only when the top-level
// shape is wrong; individual bad entries are returned as skips.
func ParseStorms(body []byte) ([]domain.HazardRecord, []SkippedRecord, error) {
	var doc stormDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode storm document: %w", err)
	}
	if doc.ActiveStorms == nil {
		return nil, nil, errors.New("storm document has no activeStorms array")
	}

	results := make([]parsed[domain.HazardRecord], 0, len(*doc.ActiveStorms))
	for _, raw := range *doc.ActiveStorms {
		results = append(results, parseStorm(raw))
	}
	records, skipped := keepValid(results)
	return records, skipped, nil
}

func parseStorm(raw json.RawMessage) parsed[domain.HazardRecord] {
	var e stormEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return parsed[domain.HazardRecord]{skip: fmt.Sprintf("decode: %v", err)}
	}
	if err := validate.Struct(e); err != nil {
		return parsed[domain.HazardRecord]{skip: describeValidation(err)}
	}
	return parsed[domain.HazardRecord]{record: domain.HazardRecord{
		ID:             domain.HazardID(string(e.ID), *e.Name, *e.Classification),
		Name:           *e.Name,
		Classification: *e.Classification,
		Status:         domain.ReadableStatus(*e.Classification),
		Location:       domain.Coordinate{Lat: *e.Lat, Lon: *e.Lon},
		IntensityKnots: float64(e.Intensity),
	}}
}

// Facility feed wire types.

type facilityDocument struct {
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	Results      *[]json.RawMessage `json:"results"`
}

type facilityEntry struct {
	Name     *string           `json:"name" validate:"required"`
	Vicinity *string           `json:"vicinity" validate:"required"`
	Geometry *facilityGeometry `json:"geometry" validate:"required"`
}

type facilityGeometry struct {
	Location *facilityLocation `json:"location" validate:"required"`
}

type facilityLocation struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// ParseFacilities decodes a facility feed body. The returned status is the
// provider's status field, which may be empty.
func ParseFacilities(body []byte) ([]domain.FacilityRecord, []SkippedRecord, ProviderStatus, error) {
	var doc facilityDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, ProviderStatus{}, fmt.Errorf("decode facility document: %w", err)
	}
	if doc.Results == nil {
		return nil, nil, ProviderStatus{}, errors.New("facility document has no results array")
	}

	results := make([]parsed[domain.FacilityRecord], 0, len(*doc.Results))
	for _, raw := range *doc.Results {
		results = append(results, parseFacility(raw))
	}
	records, skipped := keepValid(results)
	return records, skipped, ProviderStatus{Code: doc.Status, Message: doc.ErrorMessage}, nil
}

// ProviderStatus is the status block a Places-style API reports alongside results.
type ProviderStatus struct {
	Code    string
	Message string
}

// Healthy reports whether the status indicates a normal response.
// An absent status is treated as healthy.
func (s ProviderStatus) Healthy() bool {
	return s.Code == "" || s.Code == "OK" || s.Code == "ZERO_RESULTS"
}

func parseFacility(raw json.RawMessage) parsed[domain.FacilityRecord] {
	var e facilityEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return parsed[domain.FacilityRecord]{skip: fmt.Sprintf("decode: %v", err)}
	}
	if err := validate.Struct(e); err != nil {
		return parsed[domain.FacilityRecord]{skip: describeValidation(err)}
	}
	loc := e.Geometry.Location
	return parsed[domain.FacilityRecord]{record: domain.FacilityRecord{
		Name:     *e.Name,
		Address:  *e.Vicinity,
		Location: domain.Coordinate{Lat: *loc.Lat, Lon: *loc.Lng},
	}}
}

// describeValidation turns validator output into a short skip reason such as
// "missing name" or "lat fails lte".
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			parts = append(parts, "missing "+field)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s fails %s", field, fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
