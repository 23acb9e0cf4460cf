// Command advisor serves and queries hurricane proximity advisories.
//
// Usage:
//
//	advisor serve
//	advisor hazards --lat 25.76 --lon -80.19
//	advisor facilities --place "Key West, FL" --keyword shelter
//	advisor supplies --category 4 --distance 75
//	advisor overview --lat 25.76 --lon -80.19 --format json
//	advisor check-feed --file CurrentStorms.json
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "advisor",
		Short: "Hurricane proximity and supply advisories",
		Long: `advisor ranks active storms and relief facilities by distance from a
location and recommends actions and supplies for an approaching hurricane.

Feeds, credentials, and geocoding are configured through environment
variables (STORM_FEED_URL, PLACES_API_KEY, MAPBOX_TOKEN, ...).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log feed activity to stderr")

	root.AddCommand(
		newServeCmd(),
		newHazardsCmd(&verbose),
		newFacilitiesCmd(&verbose),
		newSuppliesCmd(&verbose),
		newOverviewCmd(&verbose),
		newCheckFeedCmd(),
	)
	return root
}
