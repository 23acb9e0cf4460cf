package domain

import (
	"fmt"
	"math"
)

// InvalidCategoryMessage is the sole recommendation returned for a category
// outside 1-5.
const InvalidCategoryMessage = "Invalid category, please check the hurricane details."

// SupplyContext is the input to a supply advisory.
type SupplyContext struct {
	DistanceMiles float64 `json:"distance_miles"`
	Category      int     `json:"category"`
}

// advisoryBand applies to distances strictly below maxMiles.
type advisoryBand struct {
	maxMiles float64
	actions  []string
}

// advisoryTable lists bands per category in ascending maxMiles order. The last
// band of each category is open-ended.
var advisoryTable = map[int][]advisoryBand{
	5: {
		{maxMiles: math.Inf(1), actions: []string{
			"Immediate evacuation required", "Emergency contacts", "Important documents",
			"First-aid kit", "Water for 5 days", "Non-perishable food for 5 days",
			"Flashlight", "Batteries", "Weather radio",
		}},
	},
	4: {
		{maxMiles: 50, actions: []string{
			"Evacuation highly recommended", "First-aid kit", "Water for 4 days",
			"Non-perishable food for 4 days", "Important documents", "Flashlight",
			"Batteries", "Weather radio",
		}},
		{maxMiles: 100, actions: []string{
			"Prepare to evacuate", "First-aid kit", "Water for 3 days",
			"Non-perishable food for 3 days", "Flashlight", "Batteries",
		}},
		{maxMiles: math.Inf(1), actions: []string{
			"Monitor the situation closely", "Basic first-aid kit", "Water", "Food",
			"Keep extra batteries",
		}},
	},
	3: {
		{maxMiles: 50, actions: []string{
			"Possible evacuation", "First-aid kit", "Water for 3 days",
			"Non-perishable food for 3 days", "Flashlight", "Batteries",
		}},
		{maxMiles: 100, actions: []string{
			"Prepare for the storm", "Canned food", "Water", "Basic first-aid kit",
			"Portable phone charger",
		}},
		{maxMiles: math.Inf(1), actions: []string{
			"Monitor the storm", "Basic emergency kit", "Extra batteries", "Canned food", "Water",
		}},
	},
	2: {
		{maxMiles: 50, actions: []string{
			"Stay prepared for potential evacuation", "Water", "Food", "First-aid kit", "Flashlight",
		}},
		{maxMiles: math.Inf(1), actions: []string{
			"Monitor the news", "Basic supplies", "Batteries", "Flashlight",
		}},
	},
	1: {
		{maxMiles: 50, actions: []string{
			"Prepare for strong winds", "Flashlight", "First-aid kit", "Water", "Batteries",
		}},
		{maxMiles: math.Inf(1), actions: []string{
			"Stay alert but no immediate action", "Monitor the news", "Basic emergency supplies",
		}},
	},
}

// Recommend returns the ordered actions and supplies for a hurricane of the
// given category at distanceMiles. A category outside 1-5 yields a single
// InvalidCategoryMessage entry. The returned slice is owned by the caller.
func Recommend(category int, distanceMiles float64) []string {
	bands, ok := advisoryTable[category]
	if !ok {
		return []string{InvalidCategoryMessage}
	}
	for _, b := range bands {
		if distanceMiles < b.maxMiles {
			return append([]string(nil), b.actions...)
		}
	}
	// NaN distances compare false against every band; fall back to the
	// open-ended band.
	last := bands[len(bands)-1]
	return append([]string(nil), last.actions...)
}

// Validate rejects a distance that is negative or NaN. A category outside 1-5
// is not rejected here; it yields InvalidCategoryMessage.
func (sc SupplyContext) Validate() error {
	if sc.DistanceMiles < 0 || math.IsNaN(sc.DistanceMiles) {
		return fmt.Errorf("%v miles: %w", sc.DistanceMiles, ErrInvalidDistance)
	}
	return nil
}

// RecommendFor evaluates Recommend for a SupplyContext.
func RecommendFor(sc SupplyContext) []string {
	return Recommend(sc.Category, sc.DistanceMiles)
}

// CheckCategory returns an error wrapping ErrInvalidCategory when category is
// outside 1-5.
func CheckCategory(category int) error {
	if _, ok := advisoryTable[category]; !ok {
		return fmt.Errorf("category %d: %w", category, ErrInvalidCategory)
	}
	return nil
}

// CategoryFromKnots maps sustained wind speed in knots to a Saffir-Simpson
// category. Winds below hurricane strength return 0.
func CategoryFromKnots(kt float64) int {
	switch {
	case kt >= 137:
		return 5
	case kt >= 113:
		return 4
	case kt >= 96:
		return 3
	case kt >= 83:
		return 2
	case kt >= 64:
		return 1
	default:
		return 0
	}
}
