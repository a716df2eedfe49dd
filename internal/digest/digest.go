// Package digest renders the daily gap match email: per-region gap
// tables with their matched candidates, a full candidate roster, and a
// per-gap action checklist with ready-to-send recruiting templates.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/matching"
	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Season appears in the recruiting templates.
const Season = "Winter/Spring 2026"

// Subject builds the digest subject line for a given day.
func Subject(today time.Time) string {
	return fmt.Sprintf("Kodely Gap Match Digest — %s", today.Format("2006-01-02"))
}

// urgencyRank orders gap types for display: open seats first, then
// backouts, then third-party replacements, then everything else.
func urgencyRank(t types.GapType) int {
	s := string(t)
	switch {
	case strings.Contains(s, "OPEN"):
		return 0
	case strings.Contains(s, "BACKOUT"):
		return 1
	case strings.Contains(s, "3RD PARTY"):
		return 2
	default:
		return 3
	}
}

func gapColor(t types.GapType) string {
	s := string(t)
	switch {
	case strings.Contains(s, "OPEN"):
		return "#c0392b"
	case strings.Contains(s, "BACKOUT"):
		return "#b71c1c"
	case strings.Contains(s, "3RD PARTY"):
		return "#00838f"
	default:
		return "#e67e22"
	}
}

func sortByUrgency(gaps []types.Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		ri, rj := urgencyRank(gaps[i].Type), urgencyRank(gaps[j].Type)
		if ri != rj {
			return ri < rj
		}
		si, iok := normalize.ParseSheetDate(gaps[i].StartDate)
		sj, jok := normalize.ParseSheetDate(gaps[j].StartDate)
		switch {
		case iok && jok:
			return si.Before(sj)
		case iok:
			return true
		default:
			return false
		}
	})
}

func regionKey(g types.Gap) string {
	if r := normalize.Location(g.Region); r != "" {
		return r
	}
	return g.Region
}

// index holds the inverted match data the digest sections share.
type index struct {
	// gapCandidates maps workshop key to the candidates matched to it,
	// in first-seen order without duplicates.
	gapCandidates map[string][]types.Candidate
	// matchedGaps holds one Gap per matched workshop key.
	matchedGaps map[string]types.Gap
	// regions maps region key to its matched gaps.
	regions map[string][]types.Gap
	// sorted lists region keys by matched gap count, descending.
	sorted []string
}

func buildIndex(matches []matching.Match) index {
	idx := index{
		gapCandidates: make(map[string][]types.Candidate),
		matchedGaps:   make(map[string]types.Gap),
		regions:       make(map[string][]types.Gap),
	}
	for _, m := range matches {
		for _, g := range m.Gaps {
			idx.matchedGaps[g.WorkshopKey] = g
			if !candidateListed(idx.gapCandidates[g.WorkshopKey], m.Candidate.ID) {
				idx.gapCandidates[g.WorkshopKey] = append(idx.gapCandidates[g.WorkshopKey], m.Candidate)
			}
		}
	}
	for _, g := range idx.matchedGaps {
		r := regionKey(g)
		idx.regions[r] = append(idx.regions[r], g)
	}
	for r := range idx.regions {
		idx.sorted = append(idx.sorted, r)
	}
	sort.SliceStable(idx.sorted, func(i, j int) bool {
		a, b := idx.sorted[i], idx.sorted[j]
		if len(idx.regions[a]) != len(idx.regions[b]) {
			return len(idx.regions[a]) > len(idx.regions[b])
		}
		return a < b
	})
	return idx
}

func candidateListed(list []types.Candidate, id string) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

// rosterByRegion collects the unique candidates matched into each region,
// form-sourced first, each group alphabetical.
func rosterByRegion(matches []matching.Match) map[string][]types.Candidate {
	seen := make(map[string]bool)
	out := make(map[string][]types.Candidate)
	for _, m := range matches {
		for _, g := range m.Gaps {
			r := regionKey(g)
			key := m.Candidate.ID + "::" + r
			if seen[key] {
				continue
			}
			seen[key] = true
			out[r] = append(out[r], m.Candidate)
		}
	}
	for r, cands := range out {
		sort.SliceStable(cands, func(i, j int) bool {
			fi, fj := cands[i].Source == types.SourceForm, cands[j].Source == types.SourceForm
			if fi != fj {
				return fi
			}
			return strings.ToLower(cands[i].Name) < strings.ToLower(cands[j].Name)
		})
		out[r] = cands
	}
	return out
}

// checklistByRegion groups every current gap by region for the action
// checklist, matched and unmatched alike, most gaps first.
func checklistByRegion(idx index, gaps []types.Gap) (map[string][]types.Gap, []string) {
	byRegion := make(map[string][]types.Gap)
	listed := make(map[string]bool)

	add := func(g types.Gap) {
		if listed[g.WorkshopKey] {
			return
		}
		listed[g.WorkshopKey] = true
		r := regionKey(g)
		byRegion[r] = append(byRegion[r], g)
	}
	for _, g := range idx.matchedGaps {
		add(g)
	}
	for _, g := range gaps {
		add(g)
	}

	var regions []string
	for r := range byRegion {
		regions = append(regions, r)
		sortByUrgency(byRegion[r])
	}
	sort.SliceStable(regions, func(i, j int) bool {
		if len(byRegion[regions[i]]) != len(byRegion[regions[j]]) {
			return len(byRegion[regions[i]]) > len(byRegion[regions[j]])
		}
		return regions[i] < regions[j]
	})
	return byRegion, regions
}
