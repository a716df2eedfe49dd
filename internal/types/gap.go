package types

import "fmt"

// GapType classifies why a workshop row counts as a gap.
type GapType string

const (
	GapOpen       GapType = "OPEN (no leaders)"
	GapBackout    GapType = "BACKOUT (leader dropped)"
	GapThirdParty GapType = "3RD PARTY (needs replacement)"
)

// Gap is a scheduled workshop currently lacking a confirmed leader.
// Derived each run from Ops Hub sheet state; never persisted. The
// WorkshopKey is a composite of row fields, not a stable identifier:
// renaming a row creates a new gap.
type Gap struct {
	WorkshopKey  string
	Region       string
	Site         string
	Lesson       string
	Day          string
	Time         string
	StartDate    string
	EndDate      string
	District     string
	Type         GapType
	// FlaggedNames lists the leaders found in backout or third-party
	// cells, for display only.
	FlaggedNames []string
}

// WorkshopKey builds the composite identity for a workshop row.
func WorkshopKey(region, site, lesson, day, timeStr string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", region, site, lesson, day, timeStr)
}
