// Package matching pairs candidates with open workshop gaps by region and,
// for form-sourced candidates, weekday availability. This is a suggestion
// engine, not an allocator: a gap is never consumed by a match and can
// appear for multiple candidates.
package matching

import (
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Index maps normalized region keys to the gaps in that region.
type Index map[string][]types.Gap

// BuildIndex builds the region lookup from the current gap set.
func BuildIndex(gaps []types.Gap) Index {
	idx := make(Index)
	for _, gap := range gaps {
		key := normalize.Location(gap.Region)
		if key != "" {
			idx[key] = append(idx[key], gap)
		}
	}
	return idx
}

// Match is one candidate together with every gap found for them this run.
type Match struct {
	Candidate types.Candidate
	Gaps      []types.Gap
}

// GapsFor returns the gaps matching a candidate's declared locations,
// deduplicated by workshop key. Form candidates are additionally filtered
// to their declared weekdays, falling back to the unfiltered set whenever
// the filter would eliminate every match.
func GapsFor(c types.Candidate, idx Index) []types.Gap {
	var matched []types.Gap
	seen := make(map[string]bool)
	for _, loc := range c.Locations {
		for _, gap := range idx[normalize.Location(loc)] {
			if !seen[gap.WorkshopKey] {
				seen[gap.WorkshopKey] = true
				matched = append(matched, gap)
			}
		}
	}

	if c.Source == types.SourceForm && len(c.AvailableDays) > 0 {
		if filtered := filterByDays(matched, c.AvailableDays); len(filtered) > 0 {
			return filtered
		}
	}
	return matched
}

// FindMatches runs GapsFor over every candidate and keeps those with at
// least one gap.
func FindMatches(candidates []types.Candidate, gaps []types.Gap) []Match {
	idx := BuildIndex(gaps)
	var matches []Match
	for _, c := range candidates {
		if found := GapsFor(c, idx); len(found) > 0 {
			matches = append(matches, Match{Candidate: c, Gaps: found})
		}
	}
	return matches
}

func filterByDays(gaps []types.Gap, days []string) []types.Gap {
	allowed := make(map[string]bool, len(days))
	for _, d := range days {
		allowed[strings.ToLower(strings.TrimSpace(d))] = true
	}
	var out []types.Gap
	for _, gap := range gaps {
		day := strings.ToLower(strings.TrimSpace(gap.Day))
		// Sheet days may be plural ("Tuesdays") or abbreviated.
		if allowed[day] || allowed[strings.TrimSuffix(day, "s")] || dayAbbrevMatch(allowed, day) {
			out = append(out, gap)
		}
	}
	return out
}

func dayAbbrevMatch(allowed map[string]bool, day string) bool {
	for d := range allowed {
		if len(d) >= 3 && len(day) >= 3 && strings.HasPrefix(d, day[:3]) {
			return true
		}
	}
	return false
}
