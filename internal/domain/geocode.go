package domain

import (
	"context"
	"log/slog"
)

// EnrichWithPlaces sets NearestPlace on each ranked hazard by reverse
// geocoding its position. A nil geocoder leaves the entries untouched.
// Lookup failures are logged and the entry keeps an empty NearestPlace.
// The input slice is not modified.
func EnrichWithPlaces(ctx context.Context, entries []RankedEntry[HazardRecord], geocoder Geocoder, logger *slog.Logger) []RankedEntry[HazardRecord] {
	if geocoder == nil || len(entries) == 0 {
		return entries
	}

	out := make([]RankedEntry[HazardRecord], len(entries))
	copy(out, entries)

	for i := range out {
		if ctx.Err() != nil {
			break
		}
		h := out[i].Record
		place, err := geocoder.Describe(ctx, h.Location)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"hazard_id", h.ID,
				"lat", h.Location.Lat,
				"lon", h.Location.Lon,
				"error", err,
			)
			continue
		}
		if place.Found() {
			out[i].Record.NearestPlace = place.FormattedAddress
		}
	}
	return out
}
