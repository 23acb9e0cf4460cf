package domain

import (
	"cmp"
	"slices"
)

// Locatable is anything with a position on the globe.
type Locatable interface {
	Position() Coordinate
}

// RankedEntry annotates a record with its distance from the query origin.
type RankedEntry[T Locatable] struct {
	Record        T       `json:"record"`
	DistanceKm    float64 `json:"distance_km"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Rank sorts records by ascending distance from origin. Records at exactly the
// same distance keep their input order. A limit of zero or less keeps every
// record. The result is never nil.
func Rank[T Locatable](records []T, origin Coordinate, limit int) []RankedEntry[T] {
	ranked := make([]RankedEntry[T], 0, len(records))
	for _, r := range records {
		km := Distance(origin, r.Position())
		ranked = append(ranked, RankedEntry[T]{
			Record:        r,
			DistanceKm:    km,
			DistanceMiles: KilometersToMiles(km),
		})
	}

	slices.SortStableFunc(ranked, func(a, b RankedEntry[T]) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
