package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/engine"
)

type rankedOutput[T domain.Locatable] struct {
	Status    string                  `json:"status"`
	FetchedAt time.Time               `json:"fetched_at"`
	Origin    domain.Coordinate       `json:"origin"`
	Entries   []domain.RankedEntry[T] `json:"entries"`
}

type suppliesOutput struct {
	Category        int      `json:"category"`
	DistanceMiles   float64  `json:"distance_miles"`
	Recommendations []string `json:"recommendations"`
}

type sectionOutput[T domain.Locatable] struct {
	Status  string                  `json:"status"`
	Error   string                  `json:"error,omitempty"`
	Entries []domain.RankedEntry[T] `json:"entries"`
}

type overviewOutput struct {
	Status          string                               `json:"status"`
	Error           string                               `json:"error,omitempty"`
	Origin          domain.Coordinate                    `json:"origin"`
	Hazards         sectionOutput[domain.HazardRecord]   `json:"hazards"`
	Facilities      sectionOutput[domain.FacilityRecord] `json:"facilities"`
	Category        int                                  `json:"category,omitempty"`
	Recommendations []string                             `json:"recommendations,omitempty"`
}

func rankedOf[T domain.Locatable](res domain.AdvisoryResult[T], origin domain.Coordinate) rankedOutput[T] {
	return rankedOutput[T]{
		Status:    res.Kind.String(),
		FetchedAt: res.FetchedAt,
		Origin:    origin,
		Entries:   res.Entries,
	}
}

func sectionOf[T domain.Locatable](res domain.AdvisoryResult[T]) sectionOutput[T] {
	sec := sectionOutput[T]{Status: res.Kind.String(), Entries: res.Entries}
	if res.Err != nil {
		sec.Error = res.Err.Error()
	}
	return sec
}

func overviewOf(ov engine.Overview, origin domain.Coordinate) overviewOutput {
	out := overviewOutput{
		Status:          ov.Kind.String(),
		Origin:          origin,
		Hazards:         sectionOf(ov.Hazards),
		Facilities:      sectionOf(ov.Facilities),
		Category:        ov.Category,
		Recommendations: ov.Recommendations,
	}
	if ov.Err != nil {
		out.Error = ov.Err.Error()
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFeatures(w io.Writer, fc *geojson.FeatureCollection) error {
	body, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", body)
	return err
}

func writeList(w io.Writer, title string, items []string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for i, item := range items {
		if _, err := fmt.Fprintf(w, "%2d. %s\n", i+1, item); err != nil {
			return err
		}
	}
	return nil
}

func writeHazardTable(w io.Writer, origin domain.Coordinate, entries []domain.RankedEntry[domain.HazardRecord]) error {
	fmt.Fprintf(w, "Hazards nearest %.4f, %.4f\n", origin.Lat, origin.Lon)
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No active hazards.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSTATUS\tCAT\tDISTANCE\tNEAR")
	for i, e := range entries {
		cat := "-"
		if c := e.Record.Category(); c > 0 {
			cat = strconv.Itoa(c)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, e.Record.Name, e.Record.Status, cat, distance(e.DistanceKm, e.DistanceMiles), e.Record.NearestPlace)
	}
	return tw.Flush()
}

func writeFacilityTable(w io.Writer, origin domain.Coordinate, entries []domain.RankedEntry[domain.FacilityRecord]) error {
	fmt.Fprintf(w, "Facilities nearest %.4f, %.4f\n", origin.Lat, origin.Lon)
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No facilities found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tADDRESS\tDISTANCE")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, e.Record.Name, e.Record.Address, distance(e.DistanceKm, e.DistanceMiles))
	}
	return tw.Flush()
}

func writeOverview(w io.Writer, origin domain.Coordinate, ov engine.Overview) error {
	fmt.Fprintf(w, "Status: %s\n\n", ov.Kind)

	if ov.Hazards.OK() {
		if err := writeHazardTable(w, origin, ov.Hazards.Entries); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "Hazards unavailable: %v\n", ov.Hazards.Err)
	}
	fmt.Fprintln(w)

	if ov.Facilities.OK() {
		if err := writeFacilityTable(w, origin, ov.Facilities.Entries); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "Facilities unavailable: %v\n", ov.Facilities.Err)
	}

	if len(ov.Recommendations) == 0 {
		return nil
	}
	nearest := ov.Hazards.Entries[0]
	fmt.Fprintln(w)
	return writeList(w, fmt.Sprintf("%s (Category %d), %.1f miles away:", nearest.Record.Name, ov.Category, nearest.DistanceMiles), ov.Recommendations)
}

func distance(km, miles float64) string {
	return fmt.Sprintf("%.1f km (%.1f mi)", km, miles)
}
