package pipeline

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// ComplianceAlerts builds the escalation messages for leaders whose
// background check or onboarding tasks are behind their start date.
// Each alert fires once per leader; sent alerts are recorded in state
// so reruns stay quiet.
func ComplianceAlerts(leaders []types.Leader, state statestore.Store, today time.Time, urgentDays, warningDays int) []string {
	var alerts []string

	for _, l := range leaders {
		if l.Name == "" {
			continue
		}
		compliance := l.Task(notion.PropComplianceStatus)
		incomplete := incompleteTasks(l)
		days := daysUntilStart(l.StartDate, today)
		startStr := "TBD"
		if l.StartDate != nil {
			startStr = l.StartDate.Format("Jan 02, 2006")
		}

		if notion.TaskDone(compliance) {
			key := statestore.ApprovedNotified{PageID: l.PageID}
			if !state.Has(key) {
				alerts = append(alerts, approvedAlert(l, startStr))
				recordAlert(state, key, l.Name)
			}
		}

		if days < urgentDays && !notion.TaskDone(compliance) {
			key := statestore.UrgentNotified{PageID: l.PageID}
			if !state.Has(key) {
				alerts = append(alerts, urgentAlert(l, compliance, startStr, days))
				recordAlert(state, key, l.Name)
			}
		}

		if days >= urgentDays && days < warningDays && len(incomplete) > 0 {
			key := statestore.WarningNotified{PageID: l.PageID}
			if !state.Has(key) {
				alerts = append(alerts, warningAlert(l, startStr, days, incomplete))
				recordAlert(state, key, l.Name)
			}
		}
	}
	return alerts
}

func recordAlert(state statestore.Store, key statestore.Key, leader string) {
	if err := state.Put(key, statestore.Timestamp()); err != nil {
		slog.Warn("failed to record alert state", "leader", leader, "error", err)
	}
}

func approvedAlert(l types.Leader, startStr string) string {
	return fmt.Sprintf(
		"\U0001f389 COMPLIANCE APPROVED\n\n"+
			"*Leader:* %s\n"+
			"*Region:* %s\n"+
			"*Starts:* %s\n\n"+
			"Background check is clear — ready for remaining onboarding steps.",
		l.Name, l.Region, startStr)
}

func urgentAlert(l types.Leader, compliance, startStr string, days int) string {
	var timingHeader, timingBody string
	if days < 0 {
		timingHeader = fmt.Sprintf("STARTED %d DAY%s AGO", -days, upperPlural(-days))
		timingBody = fmt.Sprintf("This leader already started %d day%s ago but compliance is not yet approved.", -days, plural(-days))
	} else {
		timingHeader = fmt.Sprintf("STARTING IN %d DAY%s", days, upperPlural(days))
		timingBody = fmt.Sprintf("This leader starts in %d day%s but compliance is not yet approved.", days, plural(days))
	}
	if compliance == "" {
		compliance = "Not Set"
	}
	return fmt.Sprintf(
		"\U0001f6a8 URGENT: COMPLIANCE NOT APPROVED — %s\n\n"+
			"*Leader:* %s\n"+
			"*Region:* %s\n"+
			"*Start Date:* %s\n"+
			"*Compliance Status:* %s\n\n"+
			"%s\n"+
			"Immediate action required.",
		timingHeader, l.Name, l.Region, startStr, compliance, timingBody)
}

func warningAlert(l types.Leader, startStr string, days int, incomplete []string) string {
	items := make([]string, len(incomplete))
	for i, t := range incomplete {
		items[i] = "❌ " + t
	}
	return fmt.Sprintf(
		"⚠️ WARNING: INCOMPLETE ONBOARDING — STARTING IN %d DAY%s\n\n"+
			"*Leader:* %s\n"+
			"*Region:* %s\n"+
			"*Start Date:* %s\n\n"+
			"Incomplete items:\n"+
			"%s\n\n"+
			"Please prioritize completing these before the start date.",
		days, upperPlural(days), l.Name, l.Region, startStr, strings.Join(items, "\n"))
}

func upperPlural(n int) string {
	if n != 1 {
		return "S"
	}
	return ""
}
