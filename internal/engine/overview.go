package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
)

// Overview combines hazard proximity, nearby facilities, and, when the
// nearest hazard is a rated hurricane, its supply advisory.
type Overview struct {
	Kind       domain.ResultKind
	Hazards    domain.AdvisoryResult[domain.HazardRecord]
	Facilities domain.AdvisoryResult[domain.FacilityRecord]

	// Category and Recommendations are set only when the nearest hazard has
	// a Saffir-Simpson category.
	Category        int
	Recommendations []string

	Err error
}

// Overview queries both feeds concurrently. The result is PartialFailure when
// exactly one feed fails and Failure when both do.
func (e *Engine) Overview(ctx context.Context, origin domain.Coordinate, keyword string) Overview {
	var (
		g   errgroup.Group
		out Overview
	)
	g.Go(func() error {
		out.Hazards = e.HazardProximity(ctx, origin)
		return nil
	})
	g.Go(func() error {
		out.Facilities = e.NearestFacilities(ctx, origin, keyword)
		return nil
	})
	_ = g.Wait()

	switch {
	case out.Hazards.OK() && out.Facilities.OK():
		out.Kind = domain.ResultSuccess
	case out.Hazards.OK():
		out.Kind, out.Err = domain.ResultPartialFailure, out.Facilities.Err
	case out.Facilities.OK():
		out.Kind, out.Err = domain.ResultPartialFailure, out.Hazards.Err
	default:
		out.Kind, out.Err = domain.ResultFailure, errors.Join(out.Hazards.Err, out.Facilities.Err)
	}

	if len(out.Hazards.Entries) > 0 {
		nearest := out.Hazards.Entries[0]
		if cat := nearest.Record.Category(); cat > 0 {
			out.Category = cat
			out.Recommendations = e.SupplyAdvisory(nearest.DistanceMiles, cat)
		}
	}
	return out
}
