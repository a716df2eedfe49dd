package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sri657/interview-gap-matcher/internal/mailing"
	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// WelcomeSender sends the onboarding welcome email for one leader.
type WelcomeSender interface {
	SendForLeader(ctx context.Context, l types.Leader) (bool, error)
}

// NotesGenerator writes AI prep notes onto one leader card.
type NotesGenerator interface {
	GenerateForLeader(ctx context.Context, l types.Leader) (bool, error)
}

// TaskPatcher flips onboarding task selects on a card.
type TaskPatcher interface {
	PatchSelect(ctx context.Context, pageID, property, value string) error
}

// RebookMailer sends one HTML email.
type RebookMailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// StageHooks is the production Hooks implementation. Each hook keeps its
// own dedup key so a re-fired transition never repeats a side effect,
// and a failure in one automation never blocks the others.
type StageHooks struct {
	Welcome WelcomeSender
	Notes   NotesGenerator
	Tasks   TaskPatcher
	Mailer  RebookMailer
	// BookingURL is the Calendly booking link in the rebook email.
	BookingURL string
	State      statestore.Store
	Logger     *slog.Logger
}

func (h *StageHooks) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// EnterOnboardingSetup fires when a leader clears the background check:
// welcome email, lesson plan marked sent, and trainer notes. Workspace
// access is provisioned separately by the provisioning run.
func (h *StageHooks) EnterOnboardingSetup(ctx context.Context, l types.Leader) error {
	if h.Welcome != nil {
		key := statestore.WelcomeSent{PageID: l.PageID}
		if !h.State.Has(key) {
			sent, err := h.Welcome.SendForLeader(ctx, l)
			if err != nil {
				h.logger().Error("hook: welcome email failed", "leader", l.Name, "error", err)
			} else if sent {
				if err := h.State.Put(key, statestore.Timestamp()); err != nil {
					h.logger().Error("hook: failed to record welcome send", "leader", l.Name, "error", err)
				}
			}
		}
	}

	if h.Tasks != nil {
		if err := h.Tasks.PatchSelect(ctx, l.PageID, notion.PropLessonPlan, "Sent"); err != nil {
			h.logger().Error("hook: failed to mark lesson plan sent", "leader", l.Name, "error", err)
		} else {
			h.logger().Info("hook: lesson plan marked sent", slog.String("leader", l.Name))
		}
	}

	if h.Notes != nil {
		key := statestore.TrainerNotes{PageID: l.PageID}
		if !h.State.Has(key) {
			added, err := h.Notes.GenerateForLeader(ctx, l)
			if err != nil {
				h.logger().Error("hook: trainer notes failed", "leader", l.Name, "error", err)
			} else if added {
				if err := h.State.Put(key, statestore.Timestamp()); err != nil {
					h.logger().Error("hook: failed to record trainer notes", "leader", l.Name, "error", err)
				}
			}
		}
	}
	return nil
}

// EnterActive marks payroll setup done when a leader goes live.
func (h *StageHooks) EnterActive(ctx context.Context, l types.Leader) error {
	if h.Tasks == nil {
		return nil
	}
	if err := h.Tasks.PatchSelect(ctx, l.PageID, notion.PropGusto, "Done"); err != nil {
		return fmt.Errorf("failed to mark Gusto done for %s: %w", l.Name, err)
	}
	h.logger().Info("hook: Gusto marked done", slog.String("leader", l.Name))
	return nil
}

// RebookTraining emails the booking link again after a Fail 1 outcome.
func (h *StageHooks) RebookTraining(ctx context.Context, l types.Leader) error {
	if h.Mailer == nil {
		return nil
	}
	if l.Email == "" {
		h.logger().Warn("hook: no email on file, cannot send rebook email",
			slog.String("leader", l.Name))
		return nil
	}
	html, err := mailing.BuildRebookHTML(l.Name, h.BookingURL)
	if err != nil {
		return err
	}
	if err := h.Mailer.Send(ctx, l.Email, mailing.RebookSubject, html); err != nil {
		return fmt.Errorf("failed to send rebook email to %s: %w", l.Email, err)
	}
	h.logger().Info("hook: rebook email sent", slog.String("leader", l.Name))
	return nil
}
