// Package welcome sends the onboarding welcome email to leaders entering
// Onboarding Setup, with a separate welcome-back variant for returning
// leaders. Runs standalone via the CLI and as a pipeline stage hook.
package welcome

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/mailing"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Mailer sends one HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// LeaderSource is the onboarding database surface this workflow needs.
type LeaderSource interface {
	LeadersNeedingWelcome(ctx context.Context) ([]types.Leader, error)
	MarkOnboardingEmailSent(ctx context.Context, pageID string) error
}

// Service sends welcome emails and records each send in the dedup store.
type Service struct {
	Leaders LeaderSource
	Mailer  Mailer
	Links   mailing.Links
	// FormEmails maps lowercase full names to emails scraped from the
	// hiring form sheet, used when the card has no email of its own.
	FormEmails map[string]string
	Notifier   alerting.Notifier
	Channel    string
	State      statestore.Store
	DryRun     bool
	Logger     *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Run sends the welcome email to every eligible leader not already
// recorded in the state store. Returns the number of emails sent.
func (s *Service) Run(ctx context.Context) (int, error) {
	leaders, err := s.Leaders.LeadersNeedingWelcome(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query leaders needing welcome email: %w", err)
	}
	s.logger().Info("leaders needing welcome email", slog.Int("count", len(leaders)))

	sent := 0
	for _, l := range leaders {
		key := statestore.WelcomeSent{PageID: l.PageID}
		if s.State.Has(key) {
			continue
		}
		ok, err := s.SendForLeader(ctx, l)
		if err != nil {
			s.logger().Error("welcome email failed", "leader", l.Name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if err := s.State.Put(key, statestore.Timestamp()); err != nil {
			s.logger().Error("failed to record welcome email send", "leader", l.Name, "error", err)
		}
		sent++
	}
	return sent, nil
}

// SendForLeader sends the welcome email for one leader. Returns false
// without error when the leader has no resolvable email.
func (s *Service) SendForLeader(ctx context.Context, l types.Leader) (bool, error) {
	email := l.Email
	if email == "" && s.FormEmails != nil {
		email = s.FormEmails[strings.ToLower(strings.TrimSpace(l.Name))]
	}
	if email == "" {
		s.logger().Warn("no email on file, cannot send welcome email", "leader", l.Name)
		return false, nil
	}

	startDate := ""
	if l.StartDate != nil {
		startDate = l.StartDate.Format("2006-01-02")
	}

	if s.DryRun {
		label := "NEW LEADER"
		if l.ReturningLeader {
			label = "RETURNING LEADER"
		}
		fmt.Printf("--- DRY RUN: WELCOME EMAIL (%s) ---\n  To: %s <%s>\n  Region: %s, Start: %s\n\n",
			label, l.Name, email, l.Region, startDate)
		return true, nil
	}

	var html, subject string
	var err error
	if l.ReturningLeader {
		html, err = mailing.BuildReturningWelcomeHTML(l.Name, startDate, l.Region, s.Links)
		subject = mailing.ReturningSubject(l.Name)
	} else {
		html, err = mailing.BuildWelcomeHTML(l.Name, startDate, l.Region, s.Links)
		subject = mailing.WelcomeSubject(l.Name)
	}
	if err != nil {
		return false, err
	}

	if err := s.Mailer.Send(ctx, email, subject, html); err != nil {
		return false, err
	}

	if err := s.Leaders.MarkOnboardingEmailSent(ctx, l.PageID); err != nil {
		s.logger().Error("failed to mark onboarding email sent", "leader", l.Name, "error", err)
	}
	s.logger().Info("welcome email sent", "leader", l.Name, "email", email,
		slog.Bool("returning", l.ReturningLeader))

	if s.Notifier != nil {
		kind := "Onboarding welcome"
		label := ""
		if l.ReturningLeader {
			kind = "Welcome back"
			label = "RETURNING LEADER"
		}
		msg := fmt.Sprintf(":email: WELCOME EMAIL SENT %s\n\n*Leader:* %s\n*Email:* %s\n\n"+
			"%s email has been delivered.", label, l.Name, email, kind)
		if err := s.Notifier.Post(ctx, s.Channel, msg); err != nil {
			s.logger().Error("failed to post welcome email alert", "leader", l.Name, "error", err)
		}
	}
	return true, nil
}
