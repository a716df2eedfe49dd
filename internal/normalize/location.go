// Package normalize maps free-text, human-entered location and name strings
// to canonical keys so fuzzy real-world input can be indexed and compared.
package normalize

import "strings"

// locationAliases maps candidate-entered location variants to the short
// region names used on the Ops Hub sheet. Lookup is exact-match after
// lowercasing; there is no fuzzy matching. Add mappings here as needed.
var locationAliases = map[string]string{
	"san francisco":            "sf",
	"san francisco ca":         "sf",
	"sf/oakland (califronia)":  "sf",
	"sf/menlo park":            "sf",
	"sf-bayview":               "sf",
	"los angeles":              "la",
	"la/east la":               "la",
	"la/long beach":            "la",
	"la/oc":                    "la",
	"la/westwood/brentwood":    "la",
	"la/inglewood/calabasas":   "la",
	"new york":                 "manhattan",
	"new york city ny":         "manhattan",
	"new york ny":              "manhattan",
	"nyc":                      "manhattan",
	"nyc area":                 "manhattan",
	"minnesota/minneapolis":    "minnesota",
	"minneapolis":              "minnesota",
	"twin cities":              "minnesota",
	"san jose ca":              "san jose",
	"san jose california":      "san jose",
	"san diego":                "san diego",
	"san deigo":                "san diego",
	"denver":                   "colorado",
	"denver co":                "colorado",
	"denver colorado":          "colorado",
	"metro area denver":        "colorado",
	"evanston illinois":        "chicago",
	"rogers park chicago":      "chicago",
	"downtown chicago":         "chicago",
	"naperville":               "chicago",
	"marin":                    "marin county",
}

// Location maps a raw location string to its canonical region key.
// Unknown locations fall back to the lowercased input itself, so two
// spellings missing from the alias table are treated as distinct regions.
func Location(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := locationAliases[key]; ok {
		return canonical
	}
	return key
}
