package matching

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Notify posts one Slack message per candidate covering the gaps they
// have not been matched to before. Each (candidate, workshop) pair is
// announced once, tracked in the dedup store.
type Notify struct {
	Notifier alerting.Notifier
	Channel  string
	State    statestore.Store
	DryRun   bool
	Logger   *slog.Logger
}

func (n *Notify) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

// Run filters each match down to unseen gaps, posts the announcement,
// and records the pairs. Returns the number of messages sent. A send
// failure skips recording so the next run retries; a crash between send
// and record duplicates at most one message.
func (n *Notify) Run(ctx context.Context, matches []Match) (int, error) {
	sent := 0
	for _, m := range matches {
		var unseen []types.Gap
		for _, g := range m.Gaps {
			key := statestore.NotifiedPair{CandidateID: m.Candidate.ID, WorkshopKey: g.WorkshopKey}
			if !n.State.Has(key) {
				unseen = append(unseen, g)
			}
		}
		if len(unseen) == 0 {
			continue
		}

		message := MatchMessage(m.Candidate, unseen)
		if n.DryRun {
			fmt.Println("--- DRY RUN ---")
			fmt.Println(message)
			fmt.Println()
		} else {
			if err := n.Notifier.Post(ctx, n.Channel, message); err != nil {
				n.logger().Error("failed to post match", "candidate", m.Candidate.Name, "error", err)
				continue
			}
			n.logger().Info("posted match", slog.String("candidate", m.Candidate.Name))
		}

		for _, g := range unseen {
			key := statestore.NotifiedPair{CandidateID: m.Candidate.ID, WorkshopKey: g.WorkshopKey}
			if err := n.State.Put(key, statestore.Timestamp()); err != nil {
				n.logger().Error("failed to record notification", "candidate", m.Candidate.Name, "error", err)
			}
		}
		sent++
	}
	return sent, nil
}

// MatchMessage renders the Slack announcement for one candidate and
// their open gaps, including a ready-to-send outreach email draft.
func MatchMessage(c types.Candidate, gaps []types.Gap) string {
	locations := "(none)"
	if len(c.Locations) > 0 {
		locations = strings.Join(c.Locations, ", ")
	}
	email := c.Email
	if email == "" {
		email = "(no email on file)"
	}

	var gapLines []string
	for _, g := range gaps {
		tentative := ""
		if len(g.FlaggedNames) > 0 {
			tentative = fmt.Sprintf(" (tentative: %s)", strings.Join(g.FlaggedNames, ", "))
		}
		dates := ""
		if g.StartDate != "" || g.EndDate != "" {
			dates = fmt.Sprintf("  |  %s – %s", g.StartDate, g.EndDate)
		}
		gapLines = append(gapLines, fmt.Sprintf("  • %s @ %s — %ss %s%s  [%s]%s",
			g.Lesson, g.Site, g.Day, g.Time, dates, g.Type, tentative))
	}

	firstName := "there"
	if fields := strings.Fields(c.Name); len(fields) > 0 {
		firstName = fields[0]
	}
	var emailLines []string
	for _, g := range gaps {
		emailLines = append(emailLines, fmt.Sprintf("  - %s at %s — %ss %s (%s to %s)",
			g.Lesson, g.Site, g.Day, g.Time, g.StartDate, g.EndDate))
	}
	emailTemplate := fmt.Sprintf(
		"Subject: Workshop Opportunity at Kodely\n\n"+
			"Hi %s,\n\n"+
			"We have an opening for a workshop leader and think you'd be a great fit! "+
			"Here are the available workshops in your area:\n\n"+
			"%s\n\n"+
			"Would any of these work for your schedule? Let us know and we can get "+
			"the offer process started.\n\n"+
			"Best,\nKodely Ops Team",
		firstName, strings.Join(emailLines, "\n"))

	return fmt.Sprintf(
		"*Gap Match Found*\n\n"+
			"*Candidate:* %s\n"+
			"*Email:* %s\n"+
			"*Pipeline Status:* %s\n"+
			"*Location(s):* %s\n\n"+
			"*Open Workshop Gap(s):*\n%s\n\n"+
			"➡️ *Draft Email:*\n```\n%s\n```",
		c.Name, email, c.Status, locations, strings.Join(gapLines, "\n"), emailTemplate)
}
