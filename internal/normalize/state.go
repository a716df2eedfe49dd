package normalize

import (
	"log/slog"
	"strings"
)

// regionToState maps Ops Hub region names to US state codes for
// background-check work locations. Keys include common misspellings seen
// in live data.
var regionToState = map[string]string{
	// California
	"sf": "CA", "san francisco": "CA", "la": "CA", "oakland": "CA",
	"east bay": "CA", "san jose": "CA", "san mateo": "CA", "sunnyvale": "CA",
	"menlo park": "CA", "menio park": "CA", "menlo park/palo alto": "CA",
	"redwood city": "CA", "mountain view": "CA", "los gatos": "CA",
	"hillsborough": "CA", "pleasant hill": "CA", "berkley": "CA",
	"marin": "CA", "marin county": "CA", "petaluma ca": "CA",
	"napa/santa rosa": "CA", "santa rosa": "CA", "monterey": "CA",
	"sacramento": "CA", "twin rivers": "CA", "sunnyvale/san jose": "CA",
	"sunnyvale/palo alto": "CA", "san mateo/ hillsborough san francisco": "CA",
	"bakersfield": "CA", "mcfarland": "CA", "san joaquin valley": "CA",
	"pasadena": "CA", "inglewood": "CA", "pomona": "CA", "anaheim": "CA",
	"ventura": "CA", "san diego": "CA", "vista": "CA",
	"encinitas/ carlsbad": "CA", "california": "CA",
	"park century school": "CA", // LA-area school
	"orchard":             "CA",
	// New York
	"nyc": "NY", "manhattan": "NY", "brooklyn": "NY",
	"queens": "NY", "quieens": "NY",
	// Texas
	"austin": "TX", "round rock": "TX",
	// Virginia / DC area
	"virginia": "VA", "virgi": "VA", "fairfax": "VA",
	"washington dc": "DC", "maryland": "MD",
	// Colorado
	"colorado": "CO", "denver": "CO",
	// Illinois
	"illinois": "IL", "chicago": "IL", "woodridge": "IL",
	// Florida
	"miami": "FL", "tampa": "FL",
	// Arizona
	"arizona": "AZ", "gilbert az": "AZ",
	// Massachusetts
	"massachusetts": "MA", "brighton and cambridge massachusetts.": "MA",
	"shrewsbury": "MA",
	// Michigan
	"detroit": "MI",
	// Minnesota
	"minnesota/minniapolis": "MN",
	// Washington
	"seattle": "WA", "seat": "WA",
}

// RegionState maps a region name to a US state code. Unknown regions
// default to CA with a logged warning rather than failing.
func RegionState(region string) string {
	key := strings.ToLower(strings.TrimSpace(region))
	if state, ok := regionToState[key]; ok {
		return state
	}
	if key != "" {
		slog.Warn("unknown region, defaulting work location to CA", "region", region)
	}
	return "CA"
}
