// Package domain models storm hazards, relief facilities, and the advisory
// rules that turn a storm's category and distance into recommended actions.
//
// # Data Sources
//
// Active storms come from the National Hurricane Center "CurrentStorms.json"
// feed. Each entry carries a two-letter classification code, a numeric
// position and, usually, a sustained wind intensity in knots:
//
//	{"activeStorms":[{"id":"al052024","name":"Ernesto","classification":"HU",
//	  "intensity":"75","latitudeNumeric":18.5,"longitudeNumeric":-64.9}]}
//
// Relief facilities come from a Places-style nearby search:
//
//	{"results":[{"name":"American Red Cross","vicinity":"123 Main St",
//	  "geometry":{"location":{"lat":25.77,"lng":-80.19}}}]}
//
// Feed entries missing a required field are dropped individually; a single bad
// entry never fails the batch.
//
// # Classification Codes
//
//	HU Hurricane            TD Tropical Depression   TS Tropical Storm
//	EX Extratropical Cyclone LO Low Pressure System  DB Disturbance
//
// Any other code is reported as "Unknown".
//
// # Distance
//
// Distances are great-circle (haversine) on a sphere of radius 6371.0088 km,
// the IUGG mean Earth radius. Ranked entries carry both kilometers and statute
// miles.
//
// # Supply Advisory Bands
//
// Distance bands are half-open in miles: [0,50), [50,100), [100,∞).
// Category 5 ignores distance. Categories 1 and 2 only distinguish [0,50) and
// [50,∞). Saffir-Simpson categories are derived from intensity in knots:
//
//	Cat 1: 64–82 kt | Cat 2: 83–95 kt | Cat 3: 96–112 kt | Cat 4: 113–136 kt | Cat 5: ≥137 kt
package domain
