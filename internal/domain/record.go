package domain

import (
	"context"

	"github.com/google/uuid"
)

// Feed names used in errors, logs, and metric labels.
const (
	StormFeed    = "storms"
	FacilityFeed = "facilities"
)

// hazardNamespace seeds deterministic hazard IDs.
var hazardNamespace = uuid.MustParse("6f1c3d9e-2b7a-4c55-9a0e-4e8f3b6d2a11")

// HazardRecord is one active storm system parsed from the hazard feed.
type HazardRecord struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Classification string     `json:"classification"`
	Status         string     `json:"status"`
	Location       Coordinate `json:"location"`
	IntensityKnots float64    `json:"intensity_knots,omitempty"`

	// NearestPlace is filled by reverse geocoding when a geocoder is configured.
	NearestPlace string `json:"nearest_place,omitempty"`
}

// Position implements Locatable.
func (h HazardRecord) Position() Coordinate { return h.Location }

// Category returns the Saffir-Simpson category for hurricanes, or 0 when the
// record is not a hurricane or carries no intensity.
func (h HazardRecord) Category() int {
	if h.Classification != "HU" {
		return 0
	}
	return CategoryFromKnots(h.IntensityKnots)
}

// FacilityRecord is one relief facility parsed from the facility feed.
type FacilityRecord struct {
	Name     string     `json:"name"`
	Address  string     `json:"address"`
	Location Coordinate `json:"location"`
}

// Position implements Locatable.
func (f FacilityRecord) Position() Coordinate { return f.Location }

// HazardID derives a session-stable identifier for a storm. The feed's own id
// is preferred; otherwise name and classification are used. Coordinates are
// never part of the key so a moving storm keeps its ID.
func HazardID(feedID, name, classification string) string {
	key := feedID
	if key == "" {
		key = name + "|" + classification
	}
	return uuid.NewSHA1(hazardNamespace, []byte(key)).String()
}

var classificationNames = map[string]string{
	"HU": "Hurricane",
	"TD": "Tropical Depression",
	"TS": "Tropical Storm",
	"EX": "Extratropical Cyclone",
	"LO": "Low Pressure System",
	"DB": "Disturbance",
}

// ReadableStatus maps a raw feed classification code to a display label.
// Unrecognized codes map to "Unknown".
func ReadableStatus(classification string) string {
	if s, ok := classificationNames[classification]; ok {
		return s
	}
	return "Unknown"
}

// HazardSource fetches the current list of active storms.
type HazardSource interface {
	FetchHazards(ctx context.Context) ([]HazardRecord, error)
}

// FacilitySource searches for relief facilities around a center point.
type FacilitySource interface {
	FetchFacilities(ctx context.Context, center Coordinate, radiusMeters int, keyword string) ([]FacilityRecord, error)
}
