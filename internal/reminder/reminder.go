// Package reminder builds the daily training report: leaders with no
// trainer assigned grouped by start week, a channel report, booking
// reminder DMs, and an HTML email with the upcoming Calendly schedule.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/calendly"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Bucket identifies a start-date window on the report.
type Bucket int

const (
	Overdue Bucket = iota
	ThisWeek
	NextWeek
	Later
)

// Buckets groups leaders without a trainer by start-date urgency.
type Buckets struct {
	Overdue  []types.Leader
	ThisWeek []types.Leader
	NextWeek []types.Leader
	Later    []types.Leader
}

// Total counts leaders across every bucket.
func (b Buckets) Total() int {
	return len(b.Overdue) + len(b.ThisWeek) + len(b.NextWeek) + len(b.Later)
}

// Urgent returns the leaders worth a direct reminder: overdue plus the
// next two weeks.
func (b Buckets) Urgent() []types.Leader {
	out := make([]types.Leader, 0, len(b.Overdue)+len(b.ThisWeek)+len(b.NextWeek))
	out = append(out, b.Overdue...)
	out = append(out, b.ThisWeek...)
	return append(out, b.NextWeek...)
}

// GroupByWeek buckets leaders by start date relative to today. Weeks
// start on Monday; a missing start date lands in Later.
func GroupByWeek(leaders []types.Leader, today time.Time) Buckets {
	weekStart := startOfWeek(today)
	nextWeekStart := weekStart.AddDate(0, 0, 7)
	nextWeekEnd := nextWeekStart.AddDate(0, 0, 7)

	var b Buckets
	for _, l := range leaders {
		if strings.TrimSpace(l.Name) == "" {
			continue
		}
		switch {
		case l.StartDate == nil:
			b.Later = append(b.Later, l)
		case beforeDay(*l.StartDate, today):
			b.Overdue = append(b.Overdue, l)
		case beforeDay(*l.StartDate, nextWeekStart):
			b.ThisWeek = append(b.ThisWeek, l)
		case beforeDay(*l.StartDate, nextWeekEnd):
			b.NextWeek = append(b.NextWeek, l)
		default:
			b.Later = append(b.Later, l)
		}
	}

	for _, bucket := range []*[]types.Leader{&b.Overdue, &b.ThisWeek, &b.NextWeek, &b.Later} {
		sort.SliceStable(*bucket, func(i, j int) bool {
			a, c := (*bucket)[i].StartDate, (*bucket)[j].StartDate
			switch {
			case a == nil:
				return false
			case c == nil:
				return true
			default:
				return a.Before(*c)
			}
		})
	}
	return b
}

func startOfWeek(t time.Time) time.Time {
	weekday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -weekday)
}

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

func startDateDisplay(l types.Leader) string {
	if l.StartDate == nil {
		return "No start date"
	}
	return l.StartDate.Format("January 2, 2006")
}

// ReportMessage renders the channel report. A channel-wide mention heads
// the message because unassigned trainings are everyone's problem.
func ReportMessage(b Buckets) string {
	if b.Total() == 0 {
		return ":white_check_mark: All leaders have a trainer assigned. No action needed."
	}

	lines := []string{"<!channel> Leaders need trainings.  Any takers?"}

	section := func(header string, leaders []types.Leader) {
		if len(leaders) == 0 {
			return
		}
		lines = append(lines, "", header)
		for _, l := range leaders {
			lines = append(lines, fmt.Sprintf(">  %s – %s", l.Name, startDateDisplay(l)))
		}
	}

	section("*No Trainer assigned (Overdue — already started)*", b.Overdue)
	section("*No Trainer assigned (This week)*", b.ThisWeek)
	section("*For next week* (_start dates_)", b.NextWeek)
	section("*Coming up*", b.Later)

	return strings.Join(lines, "\n")
}

// LeaderSource is the onboarding database surface the report uses.
type LeaderSource interface {
	LeadersWithoutTrainer(ctx context.Context) ([]types.Leader, error)
	LeadersWithTrainer(ctx context.Context) ([]types.Leader, error)
}

// DMSender posts direct messages by user id.
type DMSender interface {
	UserIDByEmail(ctx context.Context, email string) (string, error)
	Post(ctx context.Context, channel, text string) error
}

// ChannelPoster posts the channel report.
type ChannelPoster interface {
	Post(ctx context.Context, channel, text string) error
}

// SessionSource lists booked Calendly sessions for the email report.
type SessionSource interface {
	CurrentUser(ctx context.Context) (*calendly.User, error)
	UpcomingTrainingSessions(ctx context.Context, orgURI string) ([]calendly.Session, error)
	ExpeditedSessions(ctx context.Context, orgURI string, terms []string) ([]calendly.Session, error)
}

// ReportMailer sends the HTML training report.
type ReportMailer interface {
	SendReport(ctx context.Context, to, cc []string, subject, html string) error
}

// Service runs the daily training reminder.
type Service struct {
	Leaders          LeaderSource
	Notifier         ChannelPoster
	DM               DMSender
	Channel          string
	BookingURL       string
	Sessions         SessionSource
	ExpeditedTerms   []string
	Mailer           ReportMailer
	EmailTo          []string
	EmailCC          []string
	RemindersEnabled bool
	State            statestore.Store
	DryRun           bool
	Logger           *slog.Logger

	// Now is replaceable in tests; zero value means time.Now.
	Now func() time.Time
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run posts the channel report and DMs urgent leaders. Returns the
// number of leaders reminded.
func (s *Service) Run(ctx context.Context) (int, error) {
	leaders, err := s.Leaders.LeadersWithoutTrainer(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query leaders without trainer: %w", err)
	}
	s.logger().Info("leaders with no trainer assigned", slog.Int("count", len(leaders)))

	buckets := GroupByWeek(leaders, s.now())
	if buckets.Total() == 0 {
		s.logger().Info("all leaders have a trainer assigned")
		return 0, nil
	}

	report := ReportMessage(buckets)
	if s.DryRun {
		fmt.Printf("--- DRY RUN: SLACK %s ---\n%s\n\n", s.Channel, report)
	} else if s.Notifier != nil {
		if err := s.Notifier.Post(ctx, s.Channel, report); err != nil {
			s.logger().Error("failed to post training reminder report", "error", err)
		}
	}

	return s.sendLeaderReminders(ctx, buckets)
}

// sendLeaderReminders DMs overdue and next-two-week leaders, at most one
// DM per leader per week.
func (s *Service) sendLeaderReminders(ctx context.Context, b Buckets) (int, error) {
	if !s.RemindersEnabled {
		s.logger().Info("reminders paused (kill switch), skipping leader DMs")
		return 0, nil
	}

	year, week := s.now().ISOWeek()
	weekKey := fmt.Sprintf("%d-W%02d", year, week)

	reminded := 0
	for _, l := range b.Urgent() {
		email := strings.TrimSpace(l.Email)
		if email == "" {
			continue
		}
		key := statestore.ReminderDM{Email: email, Week: weekKey}
		if s.State.Has(key) {
			continue
		}

		text := s.reminderText(l)
		if s.DryRun {
			fmt.Printf("--- DRY RUN: DM to %s (%s) ---\n%s\n\n", l.Name, email, text)
			reminded++
			continue
		}

		userID, err := s.DM.UserIDByEmail(ctx, email)
		if err != nil {
			s.logger().Warn("no slack user for leader, skipping DM",
				slog.String("leader", l.Name), slog.String("email", email))
			continue
		}
		if err := s.DM.Post(ctx, userID, text); err != nil {
			s.logger().Error("failed to DM leader", "leader", l.Name, "error", err)
			continue
		}
		if err := s.State.Put(key, statestore.Timestamp()); err != nil {
			s.logger().Error("failed to record reminder", "leader", l.Name, "error", err)
		}
		reminded++
	}
	return reminded, nil
}

func (s *Service) reminderText(l types.Leader) string {
	start := "soon"
	if l.StartDate != nil {
		start = l.StartDate.Format("January 2, 2006")
	}
	first := l.Name
	if fields := strings.Fields(l.Name); len(fields) > 0 {
		first = fields[0]
	}
	return fmt.Sprintf("Hi %s! :wave:\n\n"+
		"Your Kodely program starts *%s* and you don't have a training session booked yet.\n\n"+
		"Please book your training call here:\n:calendar: %s\n\n"+
		"If you have any questions, reach out in #ops-onboarding. Thanks!",
		first, start, s.BookingURL)
}
