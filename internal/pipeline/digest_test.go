package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

var digestToday = time.Date(2026, time.February, 4, 9, 0, 0, 0, time.UTC)

func startOn(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func allTasksDone() map[string]string {
	tasks := make(map[string]string, len(notion.TaskOrder))
	for _, prop := range notion.TaskOrder {
		tasks[prop] = "Done"
	}
	return tasks
}

func digestLeader(name, region string, start *time.Time, tasks map[string]string) types.Leader {
	return types.Leader{
		PageID:     "pg-" + strings.ToLower(strings.Fields(name)[0]),
		Name:       name,
		Region:     region,
		StartDate:  start,
		TaskFields: tasks,
	}
}

func TestGroupForDigest(t *testing.T) {
	leaders := []types.Leader{
		digestLeader("Ana Ruiz", "Brooklyn", startOn(2026, time.February, 5), map[string]string{
			notion.PropComplianceStatus: "Clear",
		}),
		digestLeader("Ben Okafor", "Queens", startOn(2026, time.February, 9), map[string]string{
			notion.PropGusto: "Done",
		}),
		digestLeader("Cam Diaz", "SF", nil, nil),
		digestLeader("Dee Park", "Austin", startOn(2026, time.March, 2), allTasksDone()),
	}

	g := GroupForDigest(leaders, digestToday, 3, 7)

	require.Len(t, g.Urgent, 1)
	assert.Equal(t, "Ana Ruiz", g.Urgent[0].Leader.Name)
	assert.Equal(t, 1, g.Urgent[0].DaysUntil)
	assert.Equal(t, []string{"Compliance"}, g.Urgent[0].Completed)
	assert.NotContains(t, g.Urgent[0].Incomplete, "Compliance")

	require.Len(t, g.Warning, 1)
	assert.Equal(t, "Ben Okafor", g.Warning[0].Leader.Name)

	require.Len(t, g.InProgress, 1)
	assert.Equal(t, "Cam Diaz", g.InProgress[0].Leader.Name)
	assert.Equal(t, farFuture, g.InProgress[0].DaysUntil)

	assert.Equal(t, []string{"Dee Park"}, g.FullyDone)
}

func TestGroupForDigestOverdueIsUrgent(t *testing.T) {
	leaders := []types.Leader{
		digestLeader("Ana Ruiz", "Brooklyn", startOn(2026, time.February, 1), nil),
	}
	g := GroupForDigest(leaders, digestToday, 3, 7)
	require.Len(t, g.Urgent, 1)
	assert.Equal(t, -3, g.Urgent[0].DaysUntil)
}

func TestBuildDigestMessage(t *testing.T) {
	leaders := []types.Leader{
		digestLeader("Ana Ruiz", "Brooklyn", startOn(2026, time.February, 5), map[string]string{
			notion.PropComplianceStatus: "Clear",
		}),
		digestLeader("Ben Okafor", "Queens", startOn(2026, time.February, 9), nil),
		digestLeader("Dee Park", "Austin", startOn(2026, time.March, 2), allTasksDone()),
	}
	workshops := map[string][]opshub.Workshop{
		"Ana Ruiz": {{Site: "PS 11", Lesson: "Game Design", Day: "Tuesday", Time: "3:00 PM-4:00 PM"}},
	}

	msg := BuildDigestMessage(leaders, workshops, digestToday, 3, 7)
	lines := strings.Split(msg, "\n")

	assert.Equal(t, "\U0001f4cb DAILY ONBOARDING STATUS DIGEST", lines[0])
	assert.Equal(t, "Feb 04, 2026 — 3 leaders actively onboarding", lines[1])

	assert.Contains(t, msg, "\U0001f6a8 URGENT — Starting in <3 days with incomplete tasks:")
	assert.Contains(t, msg, "> Ana Ruiz — Brooklyn — Starts Feb 05 (1 day)")
	assert.Contains(t, msg, "> ✅ Compliance")
	assert.Contains(t, msg, ">  \U0001f4cd PS 11 — Game Design — Tuesday 3:00 PM-4:00 PM")

	assert.Contains(t, msg, "⚠️ WARNING — Starting in <7 days:")
	assert.Contains(t, msg, "> Ben Okafor — Queens — Starts Feb 09 (5 days)")
	assert.Contains(t, msg, "> ✅ None")
	assert.Contains(t, msg, ">  \U0001f4cd _No workshop assigned_")

	assert.NotContains(t, msg, "Dee Park —")
	assert.Contains(t, msg, "1 leader fully onboarded (not shown)")
}

func TestBuildDigestMessageOverdueEntry(t *testing.T) {
	leaders := []types.Leader{
		digestLeader("Ana Ruiz", "Brooklyn", startOn(2026, time.February, 2), nil),
	}
	msg := BuildDigestMessage(leaders, nil, digestToday, 3, 7)
	assert.Contains(t, msg, "— Started Feb 02 (2 days ago)")
}

func TestComplianceAlerts(t *testing.T) {
	state := newTestStore(t)
	leaders := []types.Leader{
		// Cleared check: celebration alert.
		digestLeader("Ana Ruiz", "Brooklyn", startOn(2026, time.February, 12), map[string]string{
			notion.PropComplianceStatus: "Clear",
		}),
		// Starts tomorrow, check still pending: urgent escalation.
		digestLeader("Ben Okafor", "Queens", startOn(2026, time.February, 5), map[string]string{
			notion.PropComplianceStatus: "Pending",
		}),
		// Starts in 5 days with open tasks: warning.
		digestLeader("Cam Diaz", "SF", startOn(2026, time.February, 9), map[string]string{
			notion.PropComplianceStatus: "Clear",
		}),
	}

	alerts := ComplianceAlerts(leaders, state, digestToday, 3, 7)
	require.Len(t, alerts, 4)

	assert.Contains(t, alerts[0], "\U0001f389 COMPLIANCE APPROVED")
	assert.Contains(t, alerts[0], "*Leader:* Ana Ruiz")
	assert.Contains(t, alerts[0], "*Starts:* Feb 12, 2026")

	assert.Contains(t, alerts[1], "URGENT: COMPLIANCE NOT APPROVED — STARTING IN 1 DAY")
	assert.Contains(t, alerts[1], "*Compliance Status:* Pending")
	assert.Contains(t, alerts[1], "This leader starts in 1 day but compliance is not yet approved.")

	// Cam gets both a celebration and the incomplete-tasks warning.
	assert.Contains(t, alerts[2], "COMPLIANCE APPROVED")
	assert.Contains(t, alerts[3], "WARNING: INCOMPLETE ONBOARDING — STARTING IN 5 DAYS")
	assert.Contains(t, alerts[3], "❌ Gusto")

	// Every alert fires once.
	assert.Empty(t, ComplianceAlerts(leaders, state, digestToday, 3, 7))
}

func TestComplianceAlertsOverdueStart(t *testing.T) {
	state := newTestStore(t)
	leaders := []types.Leader{
		digestLeader("Ben Okafor", "Queens", startOn(2026, time.February, 1), map[string]string{
			notion.PropComplianceStatus: "Pending",
		}),
	}
	alerts := ComplianceAlerts(leaders, state, digestToday, 3, 7)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "STARTED 3 DAYS AGO")
	assert.Contains(t, alerts[0], "already started 3 days ago")
}

func TestComplianceAlertsNoStartDate(t *testing.T) {
	state := newTestStore(t)
	leaders := []types.Leader{
		digestLeader("Cam Diaz", "SF", nil, map[string]string{
			notion.PropComplianceStatus: "Pending",
		}),
	}
	// No start date means no urgency and no warning window.
	assert.Empty(t, ComplianceAlerts(leaders, state, digestToday, 3, 7))
}

func parseReport(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestBuildDigestEmailHTML(t *testing.T) {
	leaders := []types.Leader{
		digestLeader("Ana Ruiz", "Brooklyn", startOn(2026, time.February, 5), map[string]string{
			notion.PropComplianceStatus: "Clear",
		}),
		digestLeader("Dee Park", "Austin", startOn(2026, time.March, 2), allTasksDone()),
	}
	workshops := map[string][]opshub.Workshop{
		"Ana Ruiz": {{Site: "PS 11", Lesson: "Game Design", Day: "Tuesday", Time: "3:00 PM-4:00 PM"}},
	}

	html, err := BuildDigestEmailHTML(leaders, workshops, digestToday, 3, 7)
	require.NoError(t, err)
	doc := parseReport(t, html)

	assert.Contains(t, doc.Find("h2").Text(), "KODELY DAILY ONBOARDING REPORT")
	assert.Contains(t, doc.Find("h2").Text(), "Feb 04, 2026")
	assert.Contains(t, doc.Find("h3").First().Text(), "URGENT")
	assert.Equal(t, 1, doc.Find("table").Length())

	row := doc.Find("table tr").Eq(1).Text()
	assert.Contains(t, row, "Ana Ruiz")
	assert.Contains(t, row, "Feb 5 (1d)")
	assert.Contains(t, row, "Compliance")
	assert.Contains(t, row, "PS 11")

	assert.Contains(t, html, "style='color:green;'")
	assert.Contains(t, html, "style='color:red;'")
	assert.Contains(t, html, "fully onboarded: Dee Park")
	assert.Contains(t, html, "Generated by Kodely Onboarding Report")
}

func TestBuildDetailedReportHTML(t *testing.T) {
	active := digestLeader("Dee Park", "Austin", startOn(2026, time.January, 5), allTasksDone())
	active.ReadinessStatus = "ACTIVE"
	active.TrainingStatus = "Complete"
	active.TrainingOutcome = "Pass"

	setup := digestLeader("Ana Ruiz", "Brooklyn", startOn(2026, time.February, 5), map[string]string{
		notion.PropComplianceStatus: "Clear",
		notion.PropSlackInvite:      "Invited",
	})
	setup.ReadinessStatus = "Onboarding Setup"

	legacy := digestLeader("Old Card", "SF", nil, nil)
	legacy.ReadinessStatus = "Paused"

	html, err := BuildDetailedReportHTML([]types.Leader{active, setup, legacy}, nil, digestToday, 3, 7)
	require.NoError(t, err)
	doc := parseReport(t, html)

	assert.Contains(t, doc.Find("h2").Text(), "KODELY ONBOARDING DETAILED REPORT")
	assert.Contains(t, html, "<strong>2</strong> leaders in pipeline")
	assert.Contains(t, html, "<strong>1</strong> active")

	headers := doc.Find("h3").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	require.Len(t, headers, 2)
	assert.Contains(t, headers[0], "ONBOARDING SETUP")
	assert.Contains(t, headers[0], "1 leader")
	// Workshop Slack and Gusto are open manual steps; Slack Invite is
	// in progress, which still counts as pending.
	assert.Contains(t, headers[0], "3 manual task(s) pending")
	assert.Contains(t, headers[1], "ACTIVE")

	// The in-progress Slack Invite renders its raw value.
	assert.Contains(t, html, ">Invited</td>")
	assert.Contains(t, html, "background:#d4edda")
	assert.Contains(t, html, "background:#f8d7da")
	assert.Contains(t, html, "1 leader(s) in other stages (not shown)")
	assert.Contains(t, html, "Generated by Kodely Onboarding Automation")
}

func TestStatusCellTruncatesLongValues(t *testing.T) {
	cell := statusCell("Waiting on school district office")
	assert.Equal(t, "Waiting on scho..", string(cell.Text))
	assert.False(t, cell.Bold)
}

func TestDigestSubject(t *testing.T) {
	assert.Equal(t, "Kodely Onboarding Report — Feb 04, 2026", DigestSubject(digestToday))
}
