// Package statestore persists the dedup keys that make every workflow
// re-entrant: an operation is "already performed" iff its key is present.
// Keys are typed kinds rendered to the legacy flat string formats, so
// existing state files remain readable while key construction stays
// compile-time checked.
package statestore

import "fmt"

// Key is a typed dedup key. Every kind renders to the exact string its
// workflow has always written.
type Key interface {
	String() string
}

// NotifiedPair marks one (candidate, workshop) match notification.
type NotifiedPair struct {
	CandidateID string
	WorkshopKey string
}

func (k NotifiedPair) String() string {
	return fmt.Sprintf("%s::%s", k.CandidateID, k.WorkshopKey)
}

// PipelineTransition marks one (leader, target stage) advance.
type PipelineTransition struct {
	PageID string
	Stage  string
}

func (k PipelineTransition) String() string {
	return fmt.Sprintf("pipeline_%s_%s", k.PageID, k.Stage)
}

// Rebook marks a Fail 1 training rebook for a leader.
type Rebook struct {
	PageID string
}

func (k Rebook) String() string {
	return fmt.Sprintf("rebook_%s", k.PageID)
}

// MissingEmail marks the flag-once alert for a leader with no email.
type MissingEmail struct {
	PageID string
}

func (k MissingEmail) String() string {
	return fmt.Sprintf("missing_email_%s", k.PageID)
}

// WelcomeSent marks a delivered welcome email.
type WelcomeSent struct {
	PageID string
}

func (k WelcomeSent) String() string {
	return fmt.Sprintf("sent_%s", k.PageID)
}

// InvitationSent marks a delivered background-check invitation. The
// stored value carries the invitation and candidate ids for polling.
type InvitationSent struct {
	PageID string
}

func (k InvitationSent) String() string {
	return fmt.Sprintf("sent_%s", k.PageID)
}

// MissingEmailNotified marks the flag-once operations alert for a leader
// whose background check cannot start without an email.
type MissingEmailNotified struct {
	PageID string
}

func (k MissingEmailNotified) String() string {
	return fmt.Sprintf("missing_email_notified_%s", k.PageID)
}

// SterlingNotified marks the flag-once alert for an under-18 leader who
// needs a Sterling check instead.
type SterlingNotified struct {
	PageID string
}

func (k SterlingNotified) String() string {
	return fmt.Sprintf("sterling_notified_%s", k.PageID)
}

// ComplianceCleared marks the auto-clear applied from a recent clean
// background-check report.
type ComplianceCleared struct {
	PageID string
}

func (k ComplianceCleared) String() string {
	return fmt.Sprintf("cleared_%s", k.PageID)
}

// TrainerNotes marks generated trainer notes on a leader page.
type TrainerNotes struct {
	PageID string
}

func (k TrainerNotes) String() string {
	return fmt.Sprintf("notes_%s", k.PageID)
}

// CalendlyInvite marks one processed (invitee, event) pair.
type CalendlyInvite struct {
	Email    string
	EventURI string
}

func (k CalendlyInvite) String() string {
	return fmt.Sprintf("%s::%s", k.Email, k.EventURI)
}

// TrainingCompleted marks a training session marked Complete on a
// leader page.
type TrainingCompleted struct {
	PageID string
}

func (k TrainingCompleted) String() string {
	return fmt.Sprintf("completed_%s", k.PageID)
}

// SlackProvisioned marks completed Slack access setup for a leader.
type SlackProvisioned struct {
	PageID string
}

func (k SlackProvisioned) String() string {
	return fmt.Sprintf("done_%s", k.PageID)
}

// ReminderDM marks one training-booking reminder DM, one per leader per
// ISO week.
type ReminderDM struct {
	Email string
	Week  string
}

func (k ReminderDM) String() string {
	return fmt.Sprintf("dm::%s::%s", k.Email, k.Week)
}

// ApprovedNotified marks the compliance-approved celebration alert.
type ApprovedNotified struct {
	PageID string
}

func (k ApprovedNotified) String() string {
	return fmt.Sprintf("approved_notified_%s", k.PageID)
}

// UrgentNotified marks the compliance-not-approved urgent escalation.
type UrgentNotified struct {
	PageID string
}

func (k UrgentNotified) String() string {
	return fmt.Sprintf("urgent_notified_%s", k.PageID)
}

// WarningNotified marks the incomplete-onboarding warning alert.
type WarningNotified struct {
	PageID string
}

func (k WarningNotified) String() string {
	return fmt.Sprintf("warning_notified_%s", k.PageID)
}

// TrackerEvent marks one detected Ops Hub cell event, keyed by leader,
// workshop, and cell class.
type TrackerEvent struct {
	Leader      string
	WorkshopKey string
	Class       string
}

func (k TrackerEvent) String() string {
	return fmt.Sprintf("%s::%s::%s", k.Leader, k.WorkshopKey, k.Class)
}
