// Package pipeline advances leaders through the onboarding stages using an
// explicit transition table, firing side-effect hooks at most once per
// (leader, stage) via dedup keys.
package pipeline

import "fmt"

// Stage is a leader's pipeline position.
type Stage int

const (
	StageMatched Stage = iota
	StageBackgroundCheck
	StageOnboardingSetup
	StageTraining
	StageActive
	StageNeedsReview
)

var stageNames = map[Stage]string{
	StageMatched:         "Matched",
	StageBackgroundCheck: "Background Check Pending",
	StageOnboardingSetup: "Onboarding Setup",
	StageTraining:        "Training In Progress",
	StageActive:          "ACTIVE",
	StageNeedsReview:     "Needs Review",
}

var stagesByName = func() map[string]Stage {
	m := make(map[string]Stage, len(stageNames))
	for stage, name := range stageNames {
		m[name] = stage
	}
	return m
}()

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// UnknownStageError reports a Readiness Status value outside the known
// set. Old cards carry legacy values; callers log and skip rather than
// guessing a transition.
type UnknownStageError struct {
	Value string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown readiness status %q", e.Value)
}

// ParseStage maps a Readiness Status string to its Stage.
func ParseStage(value string) (Stage, error) {
	if stage, ok := stagesByName[value]; ok {
		return stage, nil
	}
	return 0, &UnknownStageError{Value: value}
}
