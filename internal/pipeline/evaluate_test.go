package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

func allAccessDone() map[string]string {
	return map[string]string{
		notion.PropComplianceStatus: "Clear",
		notion.PropSlackInvite:      "Done",
		notion.PropWorkshopSlack:    "Done",
		notion.PropLessonPlan:       "Sent",
		notion.PropOnboardingEmail:  "Complete",
	}
}

type fixedRecency struct {
	last  time.Time
	found bool
}

func (f fixedRecency) LastTraining(context.Context, string) (time.Time, bool, error) {
	return f.last, f.found, nil
}

func TestEvaluateTransitions(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		leader     types.Leader
		env        Env
		wantTo     Stage
		wantRebook bool
		wantNoop   bool
	}{
		{
			name: "matched with cleared check skips ahead to setup",
			leader: types.Leader{
				ReadinessStatus: "Matched",
				TaskFields:      map[string]string{notion.PropComplianceStatus: "Clear"},
			},
			wantTo: StageOnboardingSetup,
		},
		{
			name: "matched with check in flight moves to pending",
			leader: types.Leader{
				ReadinessStatus: "Matched",
				TaskFields:      map[string]string{notion.PropComplianceStatus: "Invitation Sent"},
			},
			wantTo: StageBackgroundCheck,
		},
		{
			name: "matched with check not sent stays put",
			leader: types.Leader{
				ReadinessStatus: "Matched",
				TaskFields:      map[string]string{notion.PropComplianceStatus: "Not Sent"},
			},
			wantNoop: true,
		},
		{
			name: "background check cleared moves to setup",
			leader: types.Leader{
				ReadinessStatus: "Background Check Pending",
				TaskFields:      map[string]string{notion.PropComplianceStatus: "Clear"},
			},
			wantTo: StageOnboardingSetup,
		},
		{
			name: "background check still pending stays put",
			leader: types.Leader{
				ReadinessStatus: "Background Check Pending",
				TaskFields:      map[string]string{notion.PropComplianceStatus: "Invitation Sent"},
			},
			wantNoop: true,
		},
		{
			name: "all access done moves setup to training",
			leader: types.Leader{
				ReadinessStatus: "Onboarding Setup",
				TaskFields:      allAccessDone(),
			},
			wantTo: StageTraining,
		},
		{
			name: "one access task open keeps setup in place",
			leader: types.Leader{
				ReadinessStatus: "Onboarding Setup",
				TaskFields: map[string]string{
					notion.PropSlackInvite:     "Done",
					notion.PropWorkshopSlack:   "Done",
					notion.PropLessonPlan:      "Sent",
					notion.PropOnboardingEmail: "Not Done",
				},
			},
			wantNoop: true,
		},
		{
			name: "access plus completed training jumps straight to active",
			leader: types.Leader{
				ReadinessStatus: "Onboarding Setup",
				TaskFields:      allAccessDone(),
				TrainingStatus:  "Complete",
			},
			wantTo: StageActive,
		},
		{
			name: "returning leader with recent training goes active",
			leader: types.Leader{
				ReadinessStatus: "Onboarding Setup",
				Email:           "back@kodely.io",
				TaskFields:      allAccessDone(),
				ReturningLeader: true,
			},
			env: Env{
				Now:         now,
				Recency:     fixedRecency{last: now.AddDate(0, 0, -30), found: true},
				RecencyDays: 90,
			},
			wantTo: StageActive,
		},
		{
			name: "returning leader with stale training still needs training",
			leader: types.Leader{
				ReadinessStatus: "Onboarding Setup",
				Email:           "back@kodely.io",
				TaskFields:      allAccessDone(),
				ReturningLeader: true,
			},
			env: Env{
				Now:         now,
				Recency:     fixedRecency{last: now.AddDate(0, 0, -120), found: true},
				RecencyDays: 90,
			},
			wantTo: StageTraining,
		},
		{
			name: "training pass goes active",
			leader: types.Leader{
				ReadinessStatus: "Training In Progress",
				TrainingOutcome: OutcomePass,
			},
			wantTo: StageActive,
		},
		{
			name: "training fail 2 needs review",
			leader: types.Leader{
				ReadinessStatus: "Training In Progress",
				TrainingOutcome: OutcomeFail2,
			},
			wantTo: StageNeedsReview,
		},
		{
			name: "training no-show needs review",
			leader: types.Leader{
				ReadinessStatus: "Training In Progress",
				TrainingOutcome: OutcomeNoShow,
			},
			wantTo: StageNeedsReview,
		},
		{
			name: "training fail 1 triggers rebook without leaving the stage",
			leader: types.Leader{
				ReadinessStatus: "Training In Progress",
				TrainingOutcome: OutcomeFail1,
			},
			wantTo:     StageTraining,
			wantRebook: true,
		},
		{
			name: "legacy complete status with no outcome goes active",
			leader: types.Leader{
				ReadinessStatus: "Training In Progress",
				TrainingStatus:  "Complete",
			},
			wantTo: StageActive,
		},
		{
			name: "training with no outcome waits",
			leader: types.Leader{
				ReadinessStatus: "Training In Progress",
			},
			wantNoop: true,
		},
		{
			name:     "active leaders never transition",
			leader:   types.Leader{ReadinessStatus: "ACTIVE", TrainingOutcome: OutcomePass},
			wantNoop: true,
		},
		{
			name:     "needs review leaders never transition",
			leader:   types.Leader{ReadinessStatus: "Needs Review"},
			wantNoop: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Evaluate(context.Background(), &tt.leader, tt.env)
			require.NoError(t, err)
			if tt.wantNoop {
				assert.Nil(t, d)
				return
			}
			require.NotNil(t, d)
			assert.Equal(t, tt.wantTo, d.To)
			assert.Equal(t, tt.wantRebook, d.Rebook)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestEvaluateUnknownStage(t *testing.T) {
	l := types.Leader{ReadinessStatus: "Onboarding"}
	_, err := Evaluate(context.Background(), &l, Env{})
	require.Error(t, err)

	var unknown *UnknownStageError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Onboarding", unknown.Value)
}

func TestParseStageRoundTrip(t *testing.T) {
	for _, name := range []string{
		"Matched", "Background Check Pending", "Onboarding Setup",
		"Training In Progress", "ACTIVE", "Needs Review",
	} {
		stage, err := ParseStage(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, stage.String())
	}
}
