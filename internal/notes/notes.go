// Package notes generates AI workshop prep notes for leaders in
// onboarding or training and appends them to the leader's card.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/llm"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// CardStore is the onboarding database surface note generation needs.
type CardStore interface {
	LeadersInSetupOrTraining(ctx context.Context) ([]types.Leader, error)
	// WorkshopAssignment returns the card's workshop assignment text and
	// whether a trainer notes section already exists on the card.
	WorkshopAssignment(ctx context.Context, pageID string) (string, bool, error)
	AppendTrainerNotes(ctx context.Context, pageID, notes string) error
}

// Generator produces the notes text from a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Service generates prep notes for every eligible leader, at most once
// per card.
type Service struct {
	Store     CardStore
	Generator Generator
	State     statestore.Store
	// Limit caps generations per run; zero means no cap.
	Limit  int
	DryRun bool
	Logger *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Run walks the eligible leaders and returns the number of cards that
// received notes.
func (s *Service) Run(ctx context.Context) (int, error) {
	leaders, err := s.Store.LeadersInSetupOrTraining(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query leaders for prep notes: %w", err)
	}
	s.logger().Info("leaders in onboarding or training", slog.Int("count", len(leaders)))

	generated := 0
	for _, l := range leaders {
		if s.Limit > 0 && generated >= s.Limit {
			s.logger().Info("generation limit reached", slog.Int("limit", s.Limit))
			break
		}
		key := statestore.TrainerNotes{PageID: l.PageID}
		if s.State.Has(key) {
			continue
		}
		added, err := s.GenerateForLeader(ctx, l)
		if err != nil {
			s.logger().Error("failed to generate trainer notes", "leader", l.Name, "error", err)
			continue
		}
		if !added {
			continue
		}
		if !s.DryRun {
			if err := s.State.Put(key, statestore.Timestamp()); err != nil {
				s.logger().Error("failed to record trainer notes", "leader", l.Name, "error", err)
			}
		}
		generated++
	}
	return generated, nil
}

// GenerateForLeader produces and appends notes for one card. Returns
// false without error when the card is skipped: notes already present,
// or no workshop assignment to write about.
func (s *Service) GenerateForLeader(ctx context.Context, l types.Leader) (bool, error) {
	assignment, hasNotes, err := s.Store.WorkshopAssignment(ctx, l.PageID)
	if err != nil {
		return false, fmt.Errorf("failed to read card for %s: %w", l.Name, err)
	}
	if hasNotes {
		s.logger().Debug("trainer notes already exist, skipping", slog.String("leader", l.Name))
		return false, nil
	}
	if strings.TrimSpace(assignment) == "" {
		s.logger().Debug("no workshop assignment found, skipping", slog.String("leader", l.Name))
		return false, nil
	}

	if s.DryRun {
		fmt.Printf("--- DRY RUN: TRAINER NOTES ---\n  Leader: %s (%s)\n%s\n\n",
			l.Name, l.Region, indent(assignment))
		return true, nil
	}

	text, err := s.Generator.GenerateContent(ctx, Prompt(l.Name, l.Region, assignment), llm.TierStandard)
	if err != nil {
		return false, fmt.Errorf("failed to generate notes for %s: %w", l.Name, err)
	}
	if strings.TrimSpace(text) == "" {
		s.logger().Warn("empty notes generated", slog.String("leader", l.Name))
		return false, nil
	}

	if err := s.Store.AppendTrainerNotes(ctx, l.PageID, text); err != nil {
		return false, err
	}
	s.logger().Info("trainer notes appended", slog.String("leader", l.Name))
	return true, nil
}

// Prompt builds the generation prompt from the card's workshop
// assignment section.
func Prompt(name, region, assignment string) string {
	return fmt.Sprintf(`You are an experienced education coordinator preparing a new workshop leader.
Generate concise, practical teaching tips and preparation notes for this leader.

Leader: %s
Region: %s

Workshop assignment:
%s

Please provide:
1. Key teaching tips specific to this program/lesson type (2-3 bullet points)
2. Classroom management suggestions for the age group and school setting (2-3 bullet points)
3. Preparation checklist for their first session (3-4 items)

Keep it concise and actionable. No more than 200 words total.`, name, region, assignment)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
