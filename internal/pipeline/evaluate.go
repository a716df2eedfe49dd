package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Training outcome select values.
const (
	OutcomePass   = "Pass"
	OutcomeFail1  = "Fail 1"
	OutcomeFail2  = "Fail 2"
	OutcomeNoShow = "No-Show"
)

// Decision is the result of evaluating one leader against the transition
// table. Rebook decisions clear the training fields without changing the
// stage.
type Decision struct {
	From   Stage
	To     Stage
	Rebook bool
	Reason string
}

// RecencyChecker reports whether a leader attended a training session
// recently enough to skip retraining. Backed by Calendly in production.
type RecencyChecker interface {
	LastTraining(ctx context.Context, email string) (time.Time, bool, error)
}

// Env carries the run-scoped collaborators guards need. Constructed once
// per run and passed explicitly.
type Env struct {
	Now         time.Time
	Recency     RecencyChecker
	RecencyDays int
}

type guardFunc func(ctx context.Context, l *types.Leader, env Env) (bool, string)

type transition struct {
	from   Stage
	to     Stage
	rebook bool
	guard  guardFunc
}

// transitionTable is evaluated in order; the first transition whose from
// matches the leader's stage and whose guard passes wins.
var transitionTable = []transition{
	{
		from: StageMatched, to: StageOnboardingSetup,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if notion.TaskDone(strings.TrimSpace(l.Task(notion.PropComplianceStatus))) {
				return true, "Background check cleared — ready for access setup."
			}
			return false, ""
		},
	},
	{
		from: StageMatched, to: StageBackgroundCheck,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if complianceStarted(l) {
				return true, "Compliance check has been initiated."
			}
			return false, ""
		},
	},
	{
		from: StageBackgroundCheck, to: StageOnboardingSetup,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if notion.TaskDone(strings.TrimSpace(l.Task(notion.PropComplianceStatus))) {
				return true, "Background check cleared — ready for access setup."
			}
			return false, ""
		},
	},
	{
		from: StageOnboardingSetup, to: StageActive,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if allAccessComplete(l) && notion.TaskDone(strings.TrimSpace(l.TrainingStatus)) {
				return true, "Returning leader — all access + training already complete."
			}
			return false, ""
		},
	},
	{
		from: StageOnboardingSetup, to: StageActive,
		guard: func(ctx context.Context, l *types.Leader, env Env) (bool, string) {
			if !allAccessComplete(l) || !l.ReturningLeader || env.Recency == nil || l.Email == "" {
				return false, ""
			}
			last, ok, err := env.Recency.LastTraining(ctx, l.Email)
			if err != nil || !ok {
				return false, ""
			}
			window := time.Duration(env.RecencyDays) * 24 * time.Hour
			if env.Now.Sub(last) <= window {
				return true, fmt.Sprintf("Returning leader — trained %s (within %d days).",
					last.Format("Jan 02, 2006"), env.RecencyDays)
			}
			return false, ""
		},
	},
	{
		from: StageOnboardingSetup, to: StageTraining,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if allAccessComplete(l) {
				return true, "All onboarding access granted — waiting on training."
			}
			return false, ""
		},
	},
	{
		from: StageTraining, to: StageActive,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if l.TrainingOutcome == OutcomePass {
				return true, "Training outcome: Pass — leader is ready."
			}
			return false, ""
		},
	},
	{
		from: StageTraining, to: StageNeedsReview,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if l.TrainingOutcome == OutcomeFail2 || l.TrainingOutcome == OutcomeNoShow {
				return true, fmt.Sprintf("Training outcome: %s — manual review required.", l.TrainingOutcome)
			}
			return false, ""
		},
	},
	{
		from: StageTraining, to: StageTraining, rebook: true,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if l.TrainingOutcome == OutcomeFail1 {
				return true, "Training outcome: Fail 1 — rebooking training."
			}
			return false, ""
		},
	},
	{
		// Legacy cards: Training Status marked complete before the
		// Training Outcome property existed.
		from: StageTraining, to: StageActive,
		guard: func(_ context.Context, l *types.Leader, _ Env) (bool, string) {
			if l.TrainingOutcome == "" && notion.TaskDone(strings.TrimSpace(l.TrainingStatus)) {
				return true, "Training complete — please set up Gusto for this leader."
			}
			return false, ""
		},
	},
}

// Evaluate runs the transition table for one leader. A nil Decision with a
// nil error means no transition applies; an UnknownStageError flags a
// readiness value outside the known set.
func Evaluate(ctx context.Context, l *types.Leader, env Env) (*Decision, error) {
	stage, err := ParseStage(l.ReadinessStatus)
	if err != nil {
		return nil, err
	}
	for _, tr := range transitionTable {
		if tr.from != stage {
			continue
		}
		if ok, reason := tr.guard(ctx, l, env); ok {
			return &Decision{From: stage, To: tr.to, Rebook: tr.rebook, Reason: reason}, nil
		}
	}
	return nil, nil
}

func complianceStarted(l *types.Leader) bool {
	val := strings.TrimSpace(l.Task(notion.PropComplianceStatus))
	return val != "" && val != "Not Sent"
}

func allAccessComplete(l *types.Leader) bool {
	for _, field := range notion.AccessFields {
		if !notion.TaskDone(strings.TrimSpace(l.Task(field))) {
			return false
		}
	}
	return true
}
