package types

import "time"

// Leader is an onboarding record owned by the Notion onboarding database.
// This system only reads and patches it; the external DB is the source of
// truth for every field.
type Leader struct {
	PageID  string
	PageURL string
	Name    string
	Email   string
	// EmailOnCard reports whether the Email property itself was set, as
	// opposed to an address recovered from the title or the form sheet.
	// Backfill only fills the property when it was empty.
	EmailOnCard     bool
	Region          string
	ReadinessStatus string
	StartDate       *time.Time
	// TaskFields holds the raw values of the onboarding task properties
	// (Compliance Status, Gusto, Slack Invite, Workshop Slack, Lesson
	// Plan, Onboarding Email Sent?) keyed by property name.
	TaskFields      map[string]string
	TrainerAssigned string
	TrainingStatus  string
	TrainingOutcome string
	ReturningLeader bool
	Birthdate       *time.Time
}

// Task returns the raw value of an onboarding task property, or "" when
// the property is absent.
func (l *Leader) Task(property string) string {
	if l.TaskFields == nil {
		return ""
	}
	return l.TaskFields[property]
}
