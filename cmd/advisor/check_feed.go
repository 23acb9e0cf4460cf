package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-advisory/internal/adapter/feed"
	"github.com/couchcryptid/hazard-advisory/internal/domain"
)

// errFeedInvalid marks a document that could not be used at all.
var errFeedInvalid = errors.New("feed document is not usable")

func newCheckFeedCmd() *cobra.Command {
	var (
		file string
		kind string
	)
	cmd := &cobra.Command{
		Use:   "check-feed",
		Short: "Parse a saved feed document and report accepted and skipped records",
		Long: `check-feed runs a saved storm or facility feed document through the same
parser the service uses. Each skipped record is listed with its reason. The
command exits non-zero when the document itself is malformed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readFeedFile(cmd, file)
			if err != nil {
				return err
			}
			switch kind {
			case domain.StormFeed:
				return checkStorms(cmd.OutOrStdout(), body)
			case domain.FacilityFeed:
				return checkFacilities(cmd.OutOrStdout(), body)
			default:
				return fmt.Errorf("unknown --kind %q, want %s or %s", kind, domain.StormFeed, domain.FacilityFeed)
			}
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "feed document to check, - for stdin")
	cmd.Flags().StringVar(&kind, "kind", domain.StormFeed, "feed kind: storms or facilities")
	return cmd
}

func readFeedFile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	return body, nil
}

// report tracks the outcome of checking one document.
type report struct {
	accepted int
	skipped  []feed.SkippedRecord
	warnings []string
}

func (r *report) print(w io.Writer, title string) {
	fmt.Fprintf(w, "=== %s ===\n", title)
	fmt.Fprintf(w, "accepted: %d\n", r.accepted)
	fmt.Fprintf(w, "skipped:  %d\n", len(r.skipped))
	for _, s := range r.skipped {
		fmt.Fprintf(w, "  - record %d: %s\n", s.Index, s.Reason)
	}
	for _, msg := range r.warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
	if len(r.skipped) == 0 && len(r.warnings) == 0 {
		fmt.Fprintln(w, "PASS")
	} else {
		fmt.Fprintln(w, "PASS (with skipped records or warnings)")
	}
}

func checkStorms(w io.Writer, body []byte) error {
	records, skipped, err := feed.ParseStorms(body)
	if err != nil {
		fmt.Fprintf(w, "FAIL: %v\n", err)
		return fmt.Errorf("%w: %w", errFeedInvalid, err)
	}

	for _, h := range records {
		cat := ""
		if c := h.Category(); c > 0 {
			cat = fmt.Sprintf(" cat %d", c)
		}
		fmt.Fprintf(w, "%s  %-12s %-22s %8.3f %9.3f  %3.0f kt%s\n",
			h.ID, h.Name, h.Status, h.Location.Lat, h.Location.Lon, h.IntensityKnots, cat)
	}
	r := report{accepted: len(records), skipped: skipped}
	r.print(w, "storm feed")
	return nil
}

func checkFacilities(w io.Writer, body []byte) error {
	records, skipped, status, err := feed.ParseFacilities(body)
	if err != nil {
		fmt.Fprintf(w, "FAIL: %v\n", err)
		return fmt.Errorf("%w: %w", errFeedInvalid, err)
	}

	for _, f := range records {
		fmt.Fprintf(w, "%-30s %8.3f %9.3f  %s\n", f.Name, f.Location.Lat, f.Location.Lon, f.Address)
	}
	r := report{accepted: len(records), skipped: skipped}
	if !status.Healthy() {
		r.warnings = append(r.warnings, fmt.Sprintf("provider status %s %s", status.Code, status.Message))
	}
	r.print(w, "facility feed")
	return nil
}
