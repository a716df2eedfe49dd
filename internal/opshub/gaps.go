package opshub

import (
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Column headers on the Ops Hub sheet.
const (
	ColRegion    = "Region"
	ColSite      = "Site"
	ColDay       = "Day"
	ColStartTime = "Start Time"
	ColEndTime   = "End Time"
	ColLesson    = "Lesson"
	ColSetup     = "Setup"
	ColStartDate = "Start Date"
	ColEndDate   = "End Date"
	ColDistrict  = "District"
	ColLeader1   = "Leader 1"
	ColLeader2   = "Leader 2"
	ColLeader3   = "Leader 3"
)

// LeaderCell pairs a leader cell's text with its classified formatting.
type LeaderCell struct {
	Name  string
	Class CellClass
}

// Row is one workshop row with the fields the gap classifier needs.
type Row struct {
	Region    string
	Site      string
	Lesson    string
	Day       string
	StartTime string
	EndTime   string
	Setup     string
	StartDate string
	EndDate   string
	District  string
	Leaders   [3]LeaderCell
}

// TimeRange formats the row's start/end times for display and keying.
func (r Row) TimeRange() string {
	switch {
	case r.StartTime != "" && r.EndTime != "":
		return r.StartTime + "-" + r.EndTime
	case r.StartTime != "":
		return r.StartTime
	default:
		return r.EndTime
	}
}

// ExtractGap decides whether a row is a staffing gap and, if so, builds the
// Gap record. Skipped rows: cancelled setups, rows already ended before
// today (end date equal to today still counts as running), rows with no
// region and no site, and rows whose every leader cell is empty or gray
// (fully backfilled or fully cancelled).
func ExtractGap(row Row, today time.Time) (types.Gap, bool) {
	if strings.Contains(strings.ToUpper(row.Setup), "CANCEL") {
		return types.Gap{}, false
	}
	if end, ok := normalize.ParseSheetDate(row.EndDate); ok && beforeDay(end, today) {
		return types.Gap{}, false
	}

	region := strings.TrimSpace(row.Region)
	site := strings.TrimSpace(row.Site)
	if region == "" && site == "" {
		return types.Gap{}, false
	}

	allEmptyOrGray := true
	allEmpty := true
	var backoutNames, thirdPartyNames []string
	for _, cell := range row.Leaders {
		name := strings.TrimSpace(cell.Name)
		if name == "" {
			continue
		}
		allEmpty = false
		if cell.Class != ClassGray {
			allEmptyOrGray = false
		}
		switch cell.Class {
		case ClassRed, ClassStrikethrough:
			display, _ := normalize.CleanName(name)
			backoutNames = append(backoutNames, display)
		case ClassScoot:
			display, _ := normalize.CleanName(name)
			thirdPartyNames = append(thirdPartyNames, display)
		}
	}

	if !allEmpty && allEmptyOrGray {
		return types.Gap{}, false
	}

	var gapType types.GapType
	var flagged []string
	switch {
	case allEmpty:
		gapType = types.GapOpen
	case len(backoutNames) > 0:
		gapType = types.GapBackout
		flagged = backoutNames
	case len(thirdPartyNames) > 0:
		gapType = types.GapThirdParty
		flagged = thirdPartyNames
	default:
		// Fully staffed with confirmed leaders.
		return types.Gap{}, false
	}

	lesson := strings.TrimSpace(row.Lesson)
	if lesson == "" {
		lesson = "(unnamed)"
	}
	day := strings.TrimSpace(row.Day)
	timeStr := row.TimeRange()

	return types.Gap{
		WorkshopKey:  types.WorkshopKey(region, site, lesson, day, timeStr),
		Region:       region,
		Site:         site,
		Lesson:       lesson,
		Day:          day,
		Time:         timeStr,
		StartDate:    strings.TrimSpace(row.StartDate),
		EndDate:      strings.TrimSpace(row.EndDate),
		District:     strings.TrimSpace(row.District),
		Type:         gapType,
		FlaggedNames: flagged,
	}, true
}

// ExtractGaps runs ExtractGap over every row.
func ExtractGaps(rows []Row, today time.Time) []types.Gap {
	var gaps []types.Gap
	for _, row := range rows {
		if gap, ok := ExtractGap(row, today); ok {
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// beforeDay compares calendar dates only, ignoring time of day and zone.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
