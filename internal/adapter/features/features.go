// Package features renders advisory results as GeoJSON feature collections
// for map clients.
package features

import (
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
)

// Hazards renders ranked hazards in ranking order.
func Hazards(entries []domain.RankedEntry[domain.HazardRecord]) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, e := range entries {
		f := hazard(e.Record)
		withDistance(f, i+1, e.DistanceKm, e.DistanceMiles)
		fc.Append(f)
	}
	return fc
}

// HazardSnapshot renders unranked hazard records.
func HazardSnapshot(records []domain.HazardRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		fc.Append(hazard(r))
	}
	return fc
}

// Facilities renders ranked facilities in ranking order.
func Facilities(entries []domain.RankedEntry[domain.FacilityRecord]) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, e := range entries {
		f := geojson.NewFeature(e.Record.Location.Point())
		f.Properties["kind"] = "facility"
		f.Properties["name"] = e.Record.Name
		f.Properties["address"] = e.Record.Address
		withDistance(f, i+1, e.DistanceKm, e.DistanceMiles)
		fc.Append(f)
	}
	return fc
}

func hazard(h domain.HazardRecord) *geojson.Feature {
	f := geojson.NewFeature(h.Location.Point())
	f.ID = h.ID
	f.Properties["kind"] = "hazard"
	f.Properties["name"] = h.Name
	f.Properties["classification"] = h.Classification
	f.Properties["status"] = h.Status
	if h.IntensityKnots > 0 {
		f.Properties["intensity_knots"] = h.IntensityKnots
	}
	if cat := h.Category(); cat > 0 {
		f.Properties["category"] = cat
	}
	if h.NearestPlace != "" {
		f.Properties["nearest_place"] = h.NearestPlace
	}
	return f
}

func withDistance(f *geojson.Feature, rank int, km, miles float64) {
	f.Properties["rank"] = rank
	f.Properties["distance_km"] = km
	f.Properties["distance_miles"] = miles
}
