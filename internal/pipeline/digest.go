package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// farFuture stands in for "no start date" so undated leaders sort and
// group after everyone with a real date.
const farFuture = 999

// digestEntry is one leader with incomplete tasks, annotated for the
// daily digest.
type digestEntry struct {
	Leader     types.Leader
	DaysUntil  int
	Completed  []string
	Incomplete []string
}

// DigestGroups buckets actively onboarding leaders by start-date urgency.
// Leaders with every task complete are counted, not listed.
type DigestGroups struct {
	Urgent     []digestEntry
	Warning    []digestEntry
	InProgress []digestEntry
	FullyDone  []string
}

func daysUntilStart(start *time.Time, today time.Time) int {
	if start == nil {
		return farFuture
	}
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(s.Sub(t).Hours() / 24)
}

// completedTasks lists the display names of the leader's finished
// onboarding tasks, in fixed order.
func completedTasks(l types.Leader) []string {
	var done []string
	for _, prop := range notion.TaskOrder {
		if notion.TaskDone(l.Task(prop)) {
			done = append(done, notion.TaskFields[prop])
		}
	}
	return done
}

// incompleteTasks lists the display names of the leader's unfinished
// onboarding tasks, in fixed order.
func incompleteTasks(l types.Leader) []string {
	var todo []string
	for _, prop := range notion.TaskOrder {
		if !notion.TaskDone(l.Task(prop)) {
			todo = append(todo, notion.TaskFields[prop])
		}
	}
	return todo
}

// GroupForDigest splits leaders into urgency buckets for the daily
// digest. Each bucket is sorted by start date, soonest first, undated
// last.
func GroupForDigest(leaders []types.Leader, today time.Time, urgentDays, warningDays int) DigestGroups {
	var g DigestGroups
	for _, l := range leaders {
		incomplete := incompleteTasks(l)
		if len(incomplete) == 0 {
			g.FullyDone = append(g.FullyDone, l.Name)
			continue
		}
		entry := digestEntry{
			Leader:     l,
			DaysUntil:  daysUntilStart(l.StartDate, today),
			Completed:  completedTasks(l),
			Incomplete: incomplete,
		}
		switch {
		case entry.DaysUntil < urgentDays:
			g.Urgent = append(g.Urgent, entry)
		case entry.DaysUntil < warningDays:
			g.Warning = append(g.Warning, entry)
		default:
			g.InProgress = append(g.InProgress, entry)
		}
	}
	sortEntriesByStart(g.Urgent)
	sortEntriesByStart(g.Warning)
	sortEntriesByStart(g.InProgress)
	return g
}

func sortEntriesByStart(entries []digestEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysUntil < entries[j].DaysUntil
	})
}

func plural(n int) string {
	if n != 1 {
		return "s"
	}
	return ""
}

// BuildDigestMessage renders the daily onboarding status digest posted
// to the operations channel. Workshops come from the Ops Hub assignment
// map keyed by leader name.
func BuildDigestMessage(leaders []types.Leader, workshops map[string][]opshub.Workshop, today time.Time, urgentDays, warningDays int) string {
	g := GroupForDigest(leaders, today, urgentDays, warningDays)
	total := len(leaders)

	lines := []string{
		"\U0001f4cb DAILY ONBOARDING STATUS DIGEST",
		fmt.Sprintf("%s — %d leader%s actively onboarding",
			today.Format("Jan 02, 2006"), total, plural(total)),
	}

	if len(g.Urgent) > 0 {
		lines = append(lines, "",
			fmt.Sprintf("\U0001f6a8 URGENT — Starting in <%d days with incomplete tasks:", urgentDays), "")
		for _, e := range g.Urgent {
			lines = append(lines, formatDigestEntry(e, workshops), "")
		}
	}
	if len(g.Warning) > 0 {
		lines = append(lines, fmt.Sprintf("⚠️ WARNING — Starting in <%d days:", warningDays), "")
		for _, e := range g.Warning {
			lines = append(lines, formatDigestEntry(e, workshops), "")
		}
	}
	if len(g.InProgress) > 0 {
		lines = append(lines, "⏳ IN PROGRESS:", "")
		for _, e := range g.InProgress {
			lines = append(lines, formatDigestEntry(e, workshops), "")
		}
	}
	if n := len(g.FullyDone); n > 0 {
		lines = append(lines, fmt.Sprintf("%d leader%s fully onboarded (not shown)", n, plural(n)))
	}
	return strings.Join(lines, "\n")
}

func formatDigestEntry(e digestEntry, workshops map[string][]opshub.Workshop) string {
	var startStr string
	if e.Leader.StartDate != nil {
		if d := e.DaysUntil; d < 0 {
			startStr = fmt.Sprintf(" — Started %s (%d day%s ago)",
				e.Leader.StartDate.Format("Jan 02"), -d, plural(-d))
		} else {
			startStr = fmt.Sprintf(" — Starts %s (%d day%s)",
				e.Leader.StartDate.Format("Jan 02"), d, plural(d))
		}
	}
	doneStr := "None"
	if len(e.Completed) > 0 {
		doneStr = strings.Join(e.Completed, ", ")
	}
	todoStr := "None"
	if len(e.Incomplete) > 0 {
		todoStr = strings.Join(e.Incomplete, ", ")
	}
	parts := []string{
		fmt.Sprintf("> %s — %s%s", e.Leader.Name, e.Leader.Region, startStr),
		fmt.Sprintf("> ✅ %s", doneStr),
		fmt.Sprintf("> ❌ %s", todoStr),
	}
	if ws := workshops[e.Leader.Name]; len(ws) > 0 {
		for _, w := range ws {
			parts = append(parts, fmt.Sprintf(">  \U0001f4cd %s — %s — %s %s", w.Site, w.Lesson, w.Day, w.Time))
		}
	} else {
		parts = append(parts, ">  \U0001f4cd _No workshop assigned_")
	}
	return strings.Join(parts, "\n")
}
