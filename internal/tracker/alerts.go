package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/normalize"
)

const dateLayout = "Jan 02, 2006"

func formatDates(start, end string) string {
	var parts []string
	if d, ok := normalize.ParseSheetDate(start); ok {
		parts = append(parts, d.Format(dateLayout))
	}
	if d, ok := normalize.ParseSheetDate(end); ok {
		parts = append(parts, d.Format(dateLayout))
	}
	return strings.Join(parts, " – ")
}

func datesLine(e Event) string {
	if dates := formatDates(e.StartDate, e.EndDate); dates != "" {
		return "\n*Dates:* " + dates
	}
	return ""
}

func onboardingAlert(e Event, cardURL string, returning bool) string {
	emailLine := ""
	if e.Email != "" {
		emailLine = "\n*Email:* " + e.Email
	}

	if returning {
		cardLine := ""
		if cardURL != "" {
			cardLine = "\n:arrows_counterclockwise: Notion card updated → " + cardURL
		}
		return fmt.Sprintf(":arrows_counterclockwise: *RETURNING LEADER — NEW SCHOOL ASSIGNMENT*\n\n"+
			"*Leader:* %s%s\n*New School:* %s (%s)\n*Program:* %s — %ss %s%s%s\n\n"+
			"This leader has been assigned to a new school. Please add them to it and onboard.\n"+
			":clipboard: *Next steps:* Verify if Checkr is cleared, add to new school & onboard",
			e.Leader, emailLine, e.Site, e.Region, e.Lesson, e.Day, e.Time, datesLine(e), cardLine)
	}

	cardLine := ""
	if cardURL != "" {
		cardLine = "\n:white_check_mark: Notion ticket created → " + cardURL
	}
	return fmt.Sprintf(":large_green_circle: *NEW ONBOARDING NEEDED*\n\n"+
		"*Leader:* %s%s\n*School:* %s (%s)\n*Program:* %s — %ss %s%s%s\n\n"+
		":clipboard: *Next step:* Kick off Checkr background check",
		e.Leader, emailLine, e.Site, e.Region, e.Lesson, e.Day, e.Time, datesLine(e), cardLine)
}

func offboardingAlert(e Event, cardURL string) string {
	cardLine := ""
	if cardURL != "" {
		cardLine = "\n:white_check_mark: Notion offboarding ticket created → " + cardURL
	}
	return fmt.Sprintf(":red_circle: *LEADER BACKED OUT — RESTAFFING NEEDED*\n\n"+
		"*Leader:* %s\n*School:* %s (%s)\n*Program:* %s — %ss %s%s%s\n\n"+
		":warning: This is now a gap — check the gap match digest for replacement candidates.",
		e.Leader, e.Site, e.Region, e.Lesson, e.Day, e.Time, datesLine(e), cardLine)
}

func complianceAlert(e Event) string {
	return fmt.Sprintf(":purple_circle: *COMPLIANCE STARTED*\n\n"+
		"*Leader:* %s\n*School:* %s (%s)\n*Program:* %s — %ss %s%s",
		e.Leader, e.Site, e.Region, e.Lesson, e.Day, e.Time, datesLine(e))
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
