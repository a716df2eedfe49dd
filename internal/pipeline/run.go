package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// LeaderStore is the onboarding database surface the runner needs.
type LeaderStore interface {
	OnboardingLeaders(ctx context.Context) ([]types.Leader, error)
	PatchReadiness(ctx context.Context, pageID, stage string) error
	ClearTrainingFields(ctx context.Context, pageID string) error
}

// Hooks fire the per-stage automations. Each implementation handles its
// own dedup beyond the (leader, stage) key the runner already enforces.
type Hooks interface {
	// EnterOnboardingSetup sends the welcome email and generates trainer notes.
	EnterOnboardingSetup(ctx context.Context, l types.Leader) error
	// EnterActive handles payroll setup tasks when a leader goes live.
	EnterActive(ctx context.Context, l types.Leader) error
	// RebookTraining re-sends the booking link after a Fail 1 outcome.
	RebookTraining(ctx context.Context, l types.Leader) error
}

// NoopHooks satisfies Hooks with no side effects.
type NoopHooks struct{}

func (NoopHooks) EnterOnboardingSetup(context.Context, types.Leader) error { return nil }
func (NoopHooks) EnterActive(context.Context, types.Leader) error          { return nil }
func (NoopHooks) RebookTraining(context.Context, types.Leader) error       { return nil }

// ColorSyncFunc recolors a leader's Ops Hub cells after a stage change.
type ColorSyncFunc func(ctx context.Context, leaderName string, stage Stage) error

// activeStages are the stages where a missing email blocks advancement.
var activeStages = map[Stage]bool{
	StageBackgroundCheck: true,
	StageOnboardingSetup: true,
	StageTraining:        true,
}

// Runner advances every onboarding leader through the pipeline, at most
// one stage per pass, with a second fast-advance pass over freshly
// queried data so a card whose prerequisites are already met can clear
// two stages in one run.
type Runner struct {
	Leaders   LeaderStore
	Notifier  alerting.Notifier
	Channel   string
	State     statestore.Store
	Hooks     Hooks
	Env       Env
	SheetRows [][]string
	ColorSync ColorSyncFunc
	DryRun    bool
	Logger    *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run evaluates every leader, applies transitions, and fires hooks.
// It returns human-readable transition lines for the digest. A card
// needing three advances finishes on the next scheduled run.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	leaders, err := r.Leaders.OnboardingLeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query onboarding leaders: %w", err)
	}

	var messages []string
	advanced := false
	for i := range leaders {
		moved, err := r.processOne(ctx, &leaders[i], &messages)
		if err != nil {
			r.logger().Error("pipeline evaluation failed", "leader", leaders[i].Name, "error", err)
			continue
		}
		advanced = advanced || moved
	}

	if advanced && !r.DryRun {
		r.logger().Info("fast advance: re-querying for second pass")
		fresh, err := r.Leaders.OnboardingLeaders(ctx)
		if err != nil {
			return messages, fmt.Errorf("failed to re-query leaders for fast advance: %w", err)
		}
		second := 0
		for i := range fresh {
			moved, err := r.processOne(ctx, &fresh[i], &messages)
			if err != nil {
				r.logger().Error("pipeline evaluation failed", "leader", fresh[i].Name, "error", err)
				continue
			}
			if moved {
				second++
			}
		}
		if second > 0 {
			r.logger().Info("fast advance: second pass transitions", slog.Int("count", second))
		}
	}

	return messages, nil
}

// processOne evaluates a single leader. Returns true when a stage
// transition happened. Rebooks return false: they clear fields but leave
// the stage alone, so there is nothing to fast-advance.
func (r *Runner) processOne(ctx context.Context, l *types.Leader, messages *[]string) (bool, error) {
	if l.Name == "" {
		return false, nil
	}

	stage, err := ParseStage(l.ReadinessStatus)
	if err != nil {
		var unknown *UnknownStageError
		if errors.As(err, &unknown) {
			r.logger().Warn("skipping leader with unknown readiness status",
				"leader", l.Name, "status", l.ReadinessStatus)
			return false, nil
		}
		return false, err
	}

	// Leaders in an active stage with no resolvable email get flagged once
	// and skipped until someone adds an email to the card.
	if activeStages[stage] && l.Email == "" {
		r.flagMissingEmail(ctx, l, stage)
		return false, nil
	}

	decision, err := Evaluate(ctx, l, r.Env)
	if err != nil || decision == nil {
		return false, err
	}

	if decision.Rebook {
		return false, r.applyRebook(ctx, l, messages)
	}
	return r.applyAdvance(ctx, l, decision, messages)
}

func (r *Runner) flagMissingEmail(ctx context.Context, l *types.Leader, stage Stage) {
	key := statestore.MissingEmail{PageID: l.PageID}
	if r.State.Has(key) {
		return
	}
	if r.DryRun {
		fmt.Printf("--- DRY RUN: MISSING EMAIL ---\n  %s (%s): no email on file\n\n", l.Name, stage)
	} else {
		msg := fmt.Sprintf(":warning: MISSING EMAIL\n\n*Leader:* %s\n*Stage:* %s\n\n"+
			"No email on file, cannot advance the pipeline. Please add an email to the card.",
			l.Name, stage)
		if err := r.Notifier.Post(ctx, r.Channel, msg); err != nil {
			r.logger().Error("failed to post missing email alert", "leader", l.Name, "error", err)
		}
	}
	if err := r.State.Put(key, statestore.Timestamp()); err != nil {
		r.logger().Error("failed to record missing email flag", "leader", l.Name, "error", err)
	}
}

func (r *Runner) applyRebook(ctx context.Context, l *types.Leader, messages *[]string) error {
	key := statestore.Rebook{PageID: l.PageID}
	if r.State.Has(key) {
		return nil
	}

	if r.DryRun {
		fmt.Printf("--- DRY RUN: TRAINING REBOOK ---\n  %s (%s): Fail 1, would clear trainer and rebook\n\n",
			l.Name, l.Region)
	} else {
		if err := r.Leaders.ClearTrainingFields(ctx, l.PageID); err != nil {
			r.logger().Error("rebook: failed to clear training fields", "leader", l.Name, "error", err)
		} else {
			r.logger().Info("rebook: cleared trainer and training fields", "leader", l.Name)
		}

		if err := r.Hooks.RebookTraining(ctx, *l); err != nil {
			r.logger().Error("rebook hook failed", "leader", l.Name, "error", err)
		}

		msg := fmt.Sprintf(":arrows_counterclockwise: TRAINING REBOOK\n\n*Leader:* %s\n"+
			"*Outcome:* Fail 1, trainer cleared and booking link re-sent.\n"+
			"Leader will rebook training via Calendly.", l.Name)
		if err := r.Notifier.Post(ctx, r.Channel, msg); err != nil {
			r.logger().Error("failed to post rebook alert", "leader", l.Name, "error", err)
		}

		*messages = append(*messages, fmt.Sprintf("%s: Fail 1 → rebook", l.Name))
	}

	return r.State.Put(key, statestore.Timestamp())
}

func (r *Runner) applyAdvance(ctx context.Context, l *types.Leader, d *Decision, messages *[]string) (bool, error) {
	key := statestore.PipelineTransition{PageID: l.PageID, Stage: d.To.String()}
	if r.State.Has(key) {
		return false, nil
	}

	if r.DryRun {
		fmt.Printf("--- DRY RUN: PIPELINE ADVANCE ---\n  %s (%s): %s → %s\n  Reason: %s\n\n",
			l.Name, l.Region, d.From, d.To, d.Reason)
		return true, r.State.Put(key, statestore.Timestamp())
	}

	if err := r.Leaders.PatchReadiness(ctx, l.PageID, d.To.String()); err != nil {
		return false, fmt.Errorf("failed to update readiness for %s: %w", l.Name, err)
	}

	if r.ColorSync != nil {
		if err := r.ColorSync(ctx, l.Name, d.To); err != nil {
			r.logger().Error("failed to sync ops hub cell color", "leader", l.Name, "error", err)
		}
	}

	msg := fmt.Sprintf("\U0001F4CA PIPELINE UPDATE\n\nLeader: %s → %s\nRegion: %s\n%s%s",
		l.Name, d.To, l.Region, d.Reason, r.workshopLines(l.Name))
	if err := r.Notifier.Post(ctx, r.Channel, msg); err != nil {
		r.logger().Error("failed to post pipeline update", "leader", l.Name, "error", err)
	}

	r.fireHooks(ctx, *l, d.To)

	*messages = append(*messages, fmt.Sprintf("%s: %s → %s", l.Name, d.From, d.To))
	r.logger().Info("pipeline advanced", "leader", l.Name, "to", d.To.String())
	return true, r.State.Put(key, statestore.Timestamp())
}

func (r *Runner) fireHooks(ctx context.Context, l types.Leader, to Stage) {
	switch to {
	case StageOnboardingSetup:
		if err := r.Hooks.EnterOnboardingSetup(ctx, l); err != nil {
			r.logger().Error("onboarding setup hooks failed", "leader", l.Name, "error", err)
		}
	case StageActive:
		if err := r.Hooks.EnterActive(ctx, l); err != nil {
			r.logger().Error("active hooks failed", "leader", l.Name, "error", err)
		}
		msg := fmt.Sprintf(":tada: LEADER ACTIVATED\n\n*Leader:* %s\n\n"+
			"All onboarding steps complete — please add to Gusto.", l.Name)
		if err := r.Notifier.Post(ctx, r.Channel, msg); err != nil {
			r.logger().Error("failed to post active celebration", "leader", l.Name, "error", err)
		}
	case StageNeedsReview:
		msg := fmt.Sprintf(":rotating_light: NEEDS REVIEW\n\n*Leader:* %s\n*Training Outcome:* %s\n\n"+
			"Manual review required.", l.Name, l.TrainingOutcome)
		if err := r.Notifier.Post(ctx, r.Channel, msg); err != nil {
			r.logger().Error("failed to post review alert", "leader", l.Name, "error", err)
		}
	}
}

func (r *Runner) workshopLines(leaderName string) string {
	if len(r.SheetRows) == 0 {
		return ""
	}
	workshops := opshub.LeaderWorkshops(r.SheetRows, leaderName)
	if len(workshops) == 0 {
		return "\n\n:warning: No workshop assignment found in Ops Hub yet."
	}
	var b strings.Builder
	b.WriteString("\n\n\U0001F3EB Workshop Assignment(s):\n")
	for _, ws := range workshops {
		parts := make([]string, 0, 5)
		if ws.Site != "" {
			parts = append(parts, ws.Site)
		}
		if ws.Day != "" {
			parts = append(parts, ws.Day)
		}
		if ws.Time != "" {
			parts = append(parts, ws.Time)
		}
		if ws.Lesson != "" {
			parts = append(parts, "Lesson: "+ws.Lesson)
		}
		if ws.District != "" {
			parts = append(parts, "("+ws.District+")")
		}
		fmt.Fprintf(&b, "  • %s\n", strings.Join(parts, " | "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// CatchUpHooks fires the Onboarding Setup hooks for cards someone moved
// there by hand, detected by the onboarding email not being marked sent.
func (r *Runner) CatchUpHooks(ctx context.Context, leaders []types.Leader) []string {
	var messages []string
	for _, l := range leaders {
		if l.Name == "" || l.ReadinessStatus != StageOnboardingSetup.String() {
			continue
		}
		if notion.TaskDone(strings.TrimSpace(l.Task(notion.PropOnboardingEmail))) {
			continue
		}
		key := statestore.PipelineTransition{PageID: l.PageID, Stage: StageOnboardingSetup.String()}
		if r.State.Has(key) {
			continue
		}
		if r.DryRun {
			fmt.Printf("--- DRY RUN: CATCH-UP HOOKS ---\n  %s: manually moved to Onboarding Setup\n\n", l.Name)
		} else {
			if err := r.Hooks.EnterOnboardingSetup(ctx, l); err != nil {
				r.logger().Error("catch-up hooks failed", "leader", l.Name, "error", err)
				continue
			}
			messages = append(messages, fmt.Sprintf("%s: catch-up hooks fired", l.Name))
		}
		if err := r.State.Put(key, statestore.Timestamp()); err != nil {
			r.logger().Error("failed to record catch-up key", "leader", l.Name, "error", err)
		}
	}
	return messages
}
