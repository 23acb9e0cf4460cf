package domain

import "context"

// Place is a location returned by a geocoding provider.
type Place struct {
	Location         Coordinate
	FormattedAddress string
	Name             string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the provider matched anything.
func (p Place) Found() bool {
	return p.FormattedAddress != ""
}

// Geocoder resolves free-text places and describes coordinates.
type Geocoder interface {
	// Locate converts a free-text place query to a location.
	Locate(ctx context.Context, query string) (Place, error)

	// Describe converts a coordinate to place details.
	Describe(ctx context.Context, c Coordinate) (Place, error)
}
