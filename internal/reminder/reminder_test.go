package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/calendly"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func leader(name, email string, start *time.Time) types.Leader {
	return types.Leader{Name: name, Email: email, StartDate: start}
}

// Wednesday, so the current week runs Feb 2 through Feb 8.
var testToday = time.Date(2026, time.February, 4, 10, 0, 0, 0, time.UTC)

func TestGroupByWeek(t *testing.T) {
	leaders := []types.Leader{
		leader("No Date", "nd@example.com", nil),
		leader("Far Out", "far@example.com", day(2026, time.February, 20)),
		leader("Next Week", "next@example.com", day(2026, time.February, 10)),
		leader("This Week", "this@example.com", day(2026, time.February, 6)),
		leader("Already Started", "late@example.com", day(2026, time.February, 1)),
		leader("", "blank@example.com", day(2026, time.February, 6)),
	}

	b := GroupByWeek(leaders, testToday)

	require.Len(t, b.Overdue, 1)
	assert.Equal(t, "Already Started", b.Overdue[0].Name)
	require.Len(t, b.ThisWeek, 1)
	assert.Equal(t, "This Week", b.ThisWeek[0].Name)
	require.Len(t, b.NextWeek, 1)
	assert.Equal(t, "Next Week", b.NextWeek[0].Name)

	// Dated leaders sort ahead of undated ones.
	require.Len(t, b.Later, 2)
	assert.Equal(t, "Far Out", b.Later[0].Name)
	assert.Equal(t, "No Date", b.Later[1].Name)

	assert.Equal(t, 5, b.Total())
	assert.Len(t, b.Urgent(), 3)
}

func TestGroupByWeekMondayBoundary(t *testing.T) {
	monday := time.Date(2026, time.February, 2, 8, 0, 0, 0, time.UTC)
	b := GroupByWeek([]types.Leader{
		leader("Starts Today", "a@example.com", day(2026, time.February, 2)),
		leader("Sunday", "b@example.com", day(2026, time.February, 8)),
		leader("Next Monday", "c@example.com", day(2026, time.February, 9)),
	}, monday)

	assert.Empty(t, b.Overdue)
	require.Len(t, b.ThisWeek, 2)
	require.Len(t, b.NextWeek, 1)
	assert.Equal(t, "Next Monday", b.NextWeek[0].Name)
}

func TestReportMessage(t *testing.T) {
	b := Buckets{
		Overdue:  []types.Leader{leader("Ana Ruiz", "", day(2026, time.February, 1))},
		ThisWeek: []types.Leader{leader("Ben Cho", "", day(2026, time.February, 6))},
		NextWeek: []types.Leader{leader("Cara Diaz", "", day(2026, time.February, 10))},
		Later:    []types.Leader{leader("Dev Patel", "", nil)},
	}

	msg := ReportMessage(b)
	lines := strings.Split(msg, "\n")
	assert.Equal(t, "<!channel> Leaders need trainings.  Any takers?", lines[0])
	assert.Contains(t, msg, "*No Trainer assigned (Overdue — already started)*")
	assert.Contains(t, msg, "*No Trainer assigned (This week)*")
	assert.Contains(t, msg, "*For next week* (_start dates_)")
	assert.Contains(t, msg, "*Coming up*")
	assert.Contains(t, msg, ">  Ana Ruiz – February 1, 2026")
	assert.Contains(t, msg, ">  Dev Patel – No start date")
}

func TestReportMessageAllClear(t *testing.T) {
	msg := ReportMessage(Buckets{})
	assert.Equal(t, ":white_check_mark: All leaders have a trainer assigned. No action needed.", msg)
}

type fakeLeaderSource struct {
	without []types.Leader
	with    []types.Leader
}

func (f *fakeLeaderSource) LeadersWithoutTrainer(context.Context) ([]types.Leader, error) {
	return f.without, nil
}

func (f *fakeLeaderSource) LeadersWithTrainer(context.Context) ([]types.Leader, error) {
	return f.with, nil
}

type post struct {
	channel string
	text    string
}

type fakeDM struct {
	users map[string]string
	posts []post
}

func (f *fakeDM) UserIDByEmail(_ context.Context, email string) (string, error) {
	id, ok := f.users[email]
	if !ok {
		return "", errors.New("users_not_found")
	}
	return id, nil
}

func (f *fakeDM) Post(_ context.Context, channel, text string) error {
	f.posts = append(f.posts, post{channel, text})
	return nil
}

type capturingNotifier struct {
	posts []post
}

func (c *capturingNotifier) Post(_ context.Context, channel, text string) error {
	c.posts = append(c.posts, post{channel, text})
	return nil
}

func newTestStore(t *testing.T) statestore.Store {
	t.Helper()
	return statestore.OpenFile(filepath.Join(t.TempDir(), "state.json"), nil)
}

func newService(t *testing.T, leaders *fakeLeaderSource, dm *fakeDM, notifier *capturingNotifier) *Service {
	t.Helper()
	return &Service{
		Leaders:          leaders,
		Notifier:         notifier,
		DM:               dm,
		Channel:          "ops-onboarding",
		BookingURL:       "https://calendly.com/kodely/training",
		RemindersEnabled: true,
		State:            newTestStore(t),
		Now:              func() time.Time { return testToday },
	}
}

func TestRunPostsReportAndSendsDMs(t *testing.T) {
	leaders := &fakeLeaderSource{without: []types.Leader{
		leader("Ana Ruiz", "ana@example.com", day(2026, time.February, 1)),
		leader("Ben Cho", "ben@example.com", day(2026, time.February, 6)),
		leader("Dev Patel", "dev@example.com", nil), // later, no DM
	}}
	dm := &fakeDM{users: map[string]string{
		"ana@example.com": "U111",
		"ben@example.com": "U222",
	}}
	notifier := &capturingNotifier{}
	svc := newService(t, leaders, dm, notifier)

	reminded, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, reminded)

	require.Len(t, notifier.posts, 1)
	assert.Equal(t, "ops-onboarding", notifier.posts[0].channel)
	assert.Contains(t, notifier.posts[0].text, "<!channel> Leaders need trainings.")

	require.Len(t, dm.posts, 2)
	assert.Equal(t, "U111", dm.posts[0].channel)
	assert.Contains(t, dm.posts[0].text, "Hi Ana! :wave:")
	assert.Contains(t, dm.posts[0].text, "starts *February 1, 2026*")
	assert.Contains(t, dm.posts[0].text, "https://calendly.com/kodely/training")

	// One DM per leader per week.
	reminded, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Len(t, dm.posts, 2)
	assert.Len(t, notifier.posts, 2)
}

func TestRunKillSwitchSkipsDMs(t *testing.T) {
	leaders := &fakeLeaderSource{without: []types.Leader{
		leader("Ana Ruiz", "ana@example.com", day(2026, time.February, 1)),
	}}
	dm := &fakeDM{users: map[string]string{"ana@example.com": "U111"}}
	notifier := &capturingNotifier{}
	svc := newService(t, leaders, dm, notifier)
	svc.RemindersEnabled = false

	reminded, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Len(t, notifier.posts, 1)
	assert.Empty(t, dm.posts)
}

func TestRunSkipsLeaderWithoutSlackAccount(t *testing.T) {
	leaders := &fakeLeaderSource{without: []types.Leader{
		leader("Ana Ruiz", "ana@example.com", day(2026, time.February, 1)),
	}}
	dm := &fakeDM{users: map[string]string{}}
	svc := newService(t, leaders, dm, &capturingNotifier{})

	reminded, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Empty(t, dm.posts)
	// No lookup means no dedup record; a later run may retry.
	assert.False(t, svc.State.Has(statestore.ReminderDM{Email: "ana@example.com", Week: "2026-W06"}))
}

func TestRunNothingToDo(t *testing.T) {
	notifier := &capturingNotifier{}
	svc := newService(t, &fakeLeaderSource{}, &fakeDM{}, notifier)

	reminded, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Empty(t, notifier.posts)
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestBuildEmailHTML(t *testing.T) {
	b := Buckets{
		Overdue:  []types.Leader{leader("Ana Ruiz", "", day(2026, time.February, 1))},
		ThisWeek: []types.Leader{leader("Ben Cho", "", day(2026, time.February, 6))},
	}
	expedited := []calendly.Session{
		{Invitee: "Cara Diaz", Trainer: "Sam Okafor", Start: time.Date(2026, time.February, 13, 15, 30, 0, 0, time.UTC)},
	}
	upcoming := []calendly.Session{
		{Invitee: "Dev Patel", Trainer: "Sam Okafor", Start: time.Date(2026, time.February, 9, 10, 0, 0, 0, time.UTC)},
	}
	assigned := []types.Leader{
		{Name: "Eve Wong", TrainerAssigned: "Sam Okafor", ReadinessStatus: "Training In Progress"},
	}

	html, err := BuildEmailHTML(b, expedited, upcoming, assigned, testToday)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	assert.Contains(t, doc.Find("h2").Text(), "KODELY DAILY TRAINING REPORT")
	assert.Contains(t, doc.Find("h2").Text(), "Feb 04, 2026")

	headers := doc.Find("h3").Text()
	assert.Contains(t, headers, "NO TRAINER ASSIGNED (2 leaders)")
	assert.Contains(t, headers, "EXPEDITED / FEEDBACK TRAINING")
	assert.Contains(t, headers, "UPCOMING TRAINING (next 7 days)")
	assert.Contains(t, headers, "RECENTLY ASSIGNED TRAINERS")

	tables := doc.Find("table")
	require.Equal(t, 4, tables.Length())

	first := tables.First().Text()
	assert.Contains(t, first, "Ana Ruiz")
	assert.Contains(t, first, "Overdue")
	assert.Contains(t, first, "Ben Cho")
	assert.Contains(t, first, "This week")
	assert.Contains(t, html, "#ffcccc")
	assert.Contains(t, html, "#fff3cd")

	body := doc.Find("body").Text()
	assert.Contains(t, body, "Cara Diaz")
	assert.Contains(t, body, "Feb 13 3:30 PM")
	assert.Contains(t, body, "Dev Patel")
	assert.Contains(t, body, "Eve Wong")
	assert.Contains(t, body, "Training In Progress")
	assert.Contains(t, body, "Generated by Kodely Training Report")
}

func TestBuildEmailHTMLEmptySections(t *testing.T) {
	html, err := BuildEmailHTML(Buckets{}, nil, nil, nil, testToday)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	body := doc.Find("body").Text()
	assert.Contains(t, body, "All leaders have a trainer assigned.")
	assert.Contains(t, body, "No expedited/feedback training sessions found.")
	assert.Contains(t, body, "No upcoming training sessions in the next 7 days.")
	assert.Contains(t, body, "No recently assigned trainers found.")
	assert.Zero(t, doc.Find("table").Length())
}
