package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-advisory/internal/adapter/features"
	"github.com/couchcryptid/hazard-advisory/internal/config"
	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/engine"
)

const (
	formatText    = "text"
	formatJSON    = "json"
	formatGeoJSON = "geojson"
)

// queryFlags are the flags shared by the feed-backed query commands.
type queryFlags struct {
	lat     float64
	lon     float64
	place   string
	keyword string
	format  string
}

func (f *queryFlags) bindOrigin(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "origin latitude in decimal degrees")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "origin longitude in decimal degrees")
	cmd.Flags().StringVar(&f.place, "place", "", "origin as a place name (requires MAPBOX_TOKEN)")
}

func (f *queryFlags) bindKeyword(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "facility search keyword (default from FACILITY_KEYWORD)")
}

func (f *queryFlags) bindFormat(cmd *cobra.Command, formats ...string) {
	cmd.Flags().StringVarP(&f.format, "format", "o", formatText, fmt.Sprintf("output format %v", formats))
	cmd.PreRunE = func(*cobra.Command, []string) error {
		if !slices.Contains(formats, f.format) {
			return fmt.Errorf("unknown --format %q, want one of %v", f.format, formats)
		}
		return nil
	}
}

// origin resolves --lat/--lon, or --place through the engine's geocoder.
func (f *queryFlags) origin(cmd *cobra.Command, eng *engine.Engine) (domain.Coordinate, error) {
	hasLat, hasLon := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	switch {
	case hasLat && hasLon:
		c := domain.Coordinate{Lat: f.lat, Lon: f.lon}
		if !c.Valid() {
			return domain.Coordinate{}, fmt.Errorf("--lat/--lon out of range: %.4f, %.4f", f.lat, f.lon)
		}
		return c, nil
	case hasLat || hasLon:
		return domain.Coordinate{}, errors.New("--lat and --lon must be given together")
	case f.place != "":
		return eng.ResolvePlace(cmd.Context(), f.place)
	default:
		return domain.Coordinate{}, errors.New("an origin is required: --lat and --lon, or --place")
	}
}

// openEngine builds an engine from the environment, logging to stderr.
func openEngine(cmd *cobra.Command, verbose bool) (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return buildEngine(cfg, processMetrics(), cliLogger(cmd.ErrOrStderr(), verbose)), nil
}

func newHazardsCmd(verbose *bool) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "hazards",
		Short: "Rank active storms by distance from an origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := openEngine(cmd, *verbose)
			if err != nil {
				return err
			}
			origin, err := f.origin(cmd, eng)
			if err != nil {
				return err
			}

			res := eng.HazardProximity(cmd.Context(), origin)
			if !res.OK() {
				return res.Err
			}
			out := cmd.OutOrStdout()
			switch f.format {
			case formatJSON:
				return writeJSON(out, rankedOf(res, origin))
			case formatGeoJSON:
				return writeFeatures(out, features.Hazards(res.Entries))
			default:
				return writeHazardTable(out, origin, res.Entries)
			}
		},
	}
	f.bindOrigin(cmd)
	f.bindFormat(cmd, formatText, formatJSON, formatGeoJSON)
	return cmd
}

func newFacilitiesCmd(verbose *bool) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "List the nearest relief facilities to an origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := openEngine(cmd, *verbose)
			if err != nil {
				return err
			}
			origin, err := f.origin(cmd, eng)
			if err != nil {
				return err
			}

			res := eng.NearestFacilities(cmd.Context(), origin, f.keyword)
			if !res.OK() {
				return res.Err
			}
			out := cmd.OutOrStdout()
			switch f.format {
			case formatJSON:
				return writeJSON(out, rankedOf(res, origin))
			case formatGeoJSON:
				return writeFeatures(out, features.Facilities(res.Entries))
			default:
				return writeFacilityTable(out, origin, res.Entries)
			}
		},
	}
	f.bindOrigin(cmd)
	f.bindKeyword(cmd)
	f.bindFormat(cmd, formatText, formatJSON, formatGeoJSON)
	return cmd
}

func newSuppliesCmd(verbose *bool) *cobra.Command {
	var (
		category int
		distance float64
		format   string
	)
	cmd := &cobra.Command{
		Use:   "supplies",
		Short: "Recommend actions and supplies for a hurricane category and distance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := domain.SupplyContext{DistanceMiles: distance, Category: category}
			if err := sc.Validate(); err != nil {
				return fmt.Errorf("--distance: %w", err)
			}

			// No feeds are involved, so the environment is not consulted.
			eng := engine.New(nil, nil, engine.WithLogger(cliLogger(cmd.ErrOrStderr(), *verbose)))
			recs := eng.SupplyAdvisory(sc.DistanceMiles, sc.Category)

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				return writeJSON(out, suppliesOutput{Category: category, DistanceMiles: distance, Recommendations: recs})
			case formatText:
				return writeList(out, fmt.Sprintf("Category %d, %.1f miles away:", category, distance), recs)
			default:
				return fmt.Errorf("unknown --format %q, want one of %v", format, []string{formatText, formatJSON})
			}
		},
	}
	cmd.Flags().IntVar(&category, "category", 0, "Saffir-Simpson category (1-5)")
	cmd.Flags().Float64Var(&distance, "distance", 0, "distance to the hurricane in miles")
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "output format [text json]")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("distance")
	return cmd
}

func newOverviewCmd(verbose *bool) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show nearby hazards, facilities, and supplies in one report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := openEngine(cmd, *verbose)
			if err != nil {
				return err
			}
			origin, err := f.origin(cmd, eng)
			if err != nil {
				return err
			}

			ov := eng.Overview(cmd.Context(), origin, f.keyword)
			if ov.Kind == domain.ResultFailure {
				return ov.Err
			}
			out := cmd.OutOrStdout()
			if f.format == formatJSON {
				return writeJSON(out, overviewOf(ov, origin))
			}
			return writeOverview(out, origin, ov)
		},
	}
	f.bindOrigin(cmd)
	f.bindKeyword(cmd)
	f.bindFormat(cmd, formatText, formatJSON)
	return cmd
}
