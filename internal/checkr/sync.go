package checkr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// opsEmail receives the action-needed alerts for missing emails and
// under-18 leaders.
const opsEmail = "operations@kodely.io"

// recentClearWindow is how far back a clear report still counts.
const recentClearWindow = 365 * 24 * time.Hour

// API is the Checkr surface the sync uses.
type API interface {
	CandidatesByEmail(ctx context.Context, email string) ([]Candidate, error)
	AllCandidates(ctx context.Context) ([]Candidate, error)
	CreateCandidate(ctx context.Context, email, firstName, lastName string) (string, error)
	CreateInvitation(ctx context.Context, candidateID, pkg, workState string) (string, error)
	GetReport(ctx context.Context, reportID string) (*Report, error)
	ReportStatus(ctx context.Context, invitationID string) (string, error)
}

// ComplianceStore is the onboarding database surface the sync uses.
type ComplianceStore interface {
	LeadersComplianceNotSent(ctx context.Context) ([]types.Leader, error)
	LeadersCompliancePending(ctx context.Context) ([]types.Leader, error)
	PatchCompliance(ctx context.Context, pageID, status string) error
	BackfillEmail(ctx context.Context, pageID, email string) error
}

// OpsMailer sends the plain-text operations alerts.
type OpsMailer interface {
	SendPlain(ctx context.Context, to, subject, body string) error
}

// SentRecord is the state value stored for each invitation, kept for the
// polling phase.
type SentRecord struct {
	InvitationID string `json:"invitation_id"`
	CandidateID  string `json:"candidate_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	SentAt       string `json:"sent_at"`
}

// ClearRecord is the state value stored when an existing clear report
// short-circuits a new check.
type ClearRecord struct {
	Reason string `json:"reason"`
	Email  string `json:"email"`
	At     string `json:"at"`
}

// Sync runs the two background-check phases: new invitations for Not
// Sent leaders, then polling for Sent leaders.
type Sync struct {
	API        API
	Store      ComplianceStore
	Package    string
	FormEmails map[string]string
	FormMinors map[string]bool
	Notifier   alerting.Notifier
	Channel    string
	Mailer     OpsMailer
	State      statestore.Store
	DryRun     bool
	Logger     *slog.Logger

	// Now is replaceable in tests; zero value means time.Now.
	Now func() time.Time

	nameIndex map[string][]Candidate
}

func (s *Sync) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Sync) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SendInvitations handles every leader whose compliance is Not Sent:
// flags missing emails and minors, auto-clears from recent reports, and
// sends new invitations for the rest. Returns the processed count.
func (s *Sync) SendInvitations(ctx context.Context) (int, error) {
	leaders, err := s.Store.LeadersComplianceNotSent(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query leaders needing background checks: %w", err)
	}
	s.logger().Info("leaders with compliance not sent", slog.Int("count", len(leaders)))

	processed := 0
	var missingEmail []types.Leader
	var sterling []types.Leader

	for _, l := range leaders {
		email := ResolveEmail(l, s.FormEmails)
		if email == "" {
			s.logger().Warn("no email, cannot send background check", "leader", l.Name)
			key := statestore.MissingEmailNotified{PageID: l.PageID}
			if l.Name != "" && !s.State.Has(key) {
				missingEmail = append(missingEmail, l)
				if err := s.State.Put(key, statestore.Timestamp()); err != nil {
					s.logger().Error("failed to record missing email flag", "leader", l.Name, "error", err)
				}
			}
			continue
		}

		if isMinor(l.Name, s.FormMinors) {
			if s.flagMinor(ctx, l, email, &sterling) {
				processed++
			}
			continue
		}

		if s.State.Has(statestore.InvitationSent{PageID: l.PageID}) ||
			s.State.Has(statestore.ComplianceCleared{PageID: l.PageID}) {
			continue
		}

		if s.hasRecentClear(ctx, email, l.Name) {
			s.autoClear(ctx, l, email)
			processed++
			continue
		}

		if s.invite(ctx, l, email) {
			processed++
		}
	}

	if !s.DryRun {
		s.sendMissingEmailAlert(ctx, missingEmail)
		s.sendSterlingAlert(ctx, sterling)
	}
	return processed, nil
}

// flagMinor routes an under-18 leader to a Sterling check. Returns true
// when the leader was processed this run.
func (s *Sync) flagMinor(ctx context.Context, l types.Leader, email string, sterling *[]types.Leader) bool {
	key := statestore.SterlingNotified{PageID: l.PageID}
	if s.State.Has(key) {
		return false
	}
	if s.DryRun {
		fmt.Printf("--- DRY RUN: UNDER-18, STERLING NEEDED ---\n  Leader: %s (%s)\n\n", l.Name, email)
		return true
	}
	if err := s.Store.PatchCompliance(ctx, l.PageID, "Sterling Needed"); err != nil {
		s.logger().Error("failed to flag sterling", "leader", l.Name, "error", err)
		return false
	}
	s.logger().Info("under-18 leader flagged for sterling", "leader", l.Name)
	l.Email = email
	*sterling = append(*sterling, l)
	if err := s.State.Put(key, statestore.Timestamp()); err != nil {
		s.logger().Error("failed to record sterling flag", "leader", l.Name, "error", err)
	}
	return true
}

// hasRecentClear looks for a clear report within the last year, first by
// email and then by name across the whole candidate index. Leaders
// sometimes used a different email for their original check.
func (s *Sync) hasRecentClear(ctx context.Context, email, name string) bool {
	candidates, err := s.API.CandidatesByEmail(ctx, email)
	if err != nil {
		s.logger().Warn("checkr candidate lookup failed", "email", email, "error", err)
	} else if s.anyClearReport(ctx, candidates) {
		return true
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return false
	}
	if s.nameIndex == nil {
		s.nameIndex = s.buildNameIndex(ctx)
	}
	if matches := s.nameIndex[lower]; len(matches) > 0 && s.anyClearReport(ctx, matches) {
		s.logger().Info("found clear check via name match", "leader", lower)
		return true
	}
	return false
}

func (s *Sync) buildNameIndex(ctx context.Context) map[string][]Candidate {
	index := make(map[string][]Candidate)
	candidates, err := s.API.AllCandidates(ctx)
	if err != nil {
		s.logger().Warn("failed to build checkr name index", "error", err)
	}
	for _, c := range candidates {
		full := strings.TrimSpace(strings.ToLower(c.FirstName) + " " + strings.ToLower(c.LastName))
		if full != "" {
			index[full] = append(index[full], c)
		}
	}
	s.logger().Info("indexed checkr candidates",
		slog.Int("candidates", len(candidates)), slog.Int("names", len(index)))
	return index
}

func (s *Sync) anyClearReport(ctx context.Context, candidates []Candidate) bool {
	cutoff := s.now().Add(-recentClearWindow)
	for _, c := range candidates {
		for _, rid := range c.ReportIDs {
			rep, err := s.API.GetReport(ctx, rid)
			if err != nil || rep.Result != "clear" || rep.CompletedAt == "" {
				continue
			}
			completed, err := time.Parse(time.RFC3339, rep.CompletedAt)
			if err != nil {
				continue
			}
			if completed.After(cutoff) {
				return true
			}
		}
	}
	return false
}

func (s *Sync) autoClear(ctx context.Context, l types.Leader, email string) {
	if s.DryRun {
		fmt.Printf("--- DRY RUN: CHECKR ALREADY CLEAR ---\n  Leader: %s (%s)\n"+
			"  Existing clear report within 1 year, auto-clearing\n\n", l.Name, email)
		return
	}

	if err := s.Store.PatchCompliance(ctx, l.PageID, "Cleared"); err != nil {
		s.logger().Error("failed to auto-clear compliance", "leader", l.Name, "error", err)
		return
	}
	s.logger().Info("existing clear report, compliance auto-cleared", "leader", l.Name)
	s.backfill(ctx, l, email)

	record := ClearRecord{Reason: "existing_clear_report", Email: email, At: statestore.Timestamp()}
	if err := s.State.Put(statestore.ComplianceCleared{PageID: l.PageID}, record); err != nil {
		s.logger().Error("failed to record auto-clear", "leader", l.Name, "error", err)
	}

	s.post(ctx, fmt.Sprintf(":white_check_mark: CHECKR ALREADY CLEAR\n\n*Leader:* %s\n*Email:* %s\n\n"+
		"Existing clear background check found (within 1 year) — auto-cleared.", l.Name, email))
}

// backfill writes a form-resolved email onto the card. Cards that
// already carry an email are left alone.
func (s *Sync) backfill(ctx context.Context, l types.Leader, email string) {
	if l.EmailOnCard || email == "" {
		return
	}
	if err := s.Store.BackfillEmail(ctx, l.PageID, email); err != nil {
		s.logger().Error("failed to backfill email", "leader", l.Name, "error", err)
		return
	}
	s.logger().Info("backfilled email onto card", "leader", l.Name, "email", email)
}

func (s *Sync) invite(ctx context.Context, l types.Leader, email string) bool {
	workState := normalize.RegionState(l.Region)

	if s.DryRun {
		fmt.Printf("--- DRY RUN: CHECKR INVITATION ---\n  Leader: %s (%s)\n"+
			"  Region: %s → State: %s\n  Package: %s\n  No existing clear report, sending new check\n\n",
			l.Name, email, l.Region, workState, s.Package)
		return true
	}

	first, last := splitName(l.Name)
	candidateID, err := s.API.CreateCandidate(ctx, email, first, last)
	if err != nil {
		s.logger().Error("failed to create checkr candidate", "leader", l.Name, "error", err)
		return false
	}

	s.logger().Info("resolved work state", "leader", l.Name, "state", workState, "region", l.Region)
	invitationID, err := s.API.CreateInvitation(ctx, candidateID, s.Package, workState)
	if err != nil {
		s.logger().Error("failed to create checkr invitation", "leader", l.Name, "error", err)
		return false
	}

	if err := s.Store.PatchCompliance(ctx, l.PageID, "Sent"); err != nil {
		s.logger().Error("failed to mark compliance sent", "leader", l.Name, "error", err)
	} else {
		s.logger().Info("checkr invitation sent", "leader", l.Name, "invitation", invitationID)
	}
	s.backfill(ctx, l, email)

	record := SentRecord{
		InvitationID: invitationID,
		CandidateID:  candidateID,
		Name:         l.Name,
		Email:        email,
		SentAt:       statestore.Timestamp(),
	}
	if err := s.State.Put(statestore.InvitationSent{PageID: l.PageID}, record); err != nil {
		s.logger().Error("failed to record invitation", "leader", l.Name, "error", err)
	}

	s.post(ctx, fmt.Sprintf(":shield: CHECKR BACKGROUND CHECK SENT\n\n*Leader:* %s\n*Email:* %s\n"+
		"*Package:* %s\n\nBackground check invitation has been sent via Checkr.",
		l.Name, email, s.Package))
	return true
}

// PollPending checks every leader whose compliance is Sent against the
// stored invitation id. Returns the number that cleared.
func (s *Sync) PollPending(ctx context.Context) (int, error) {
	leaders, err := s.Store.LeadersCompliancePending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query pending background checks: %w", err)
	}
	s.logger().Info("leaders with pending background checks", slog.Int("count", len(leaders)))

	cleared := 0
	for _, l := range leaders {
		raw, ok := s.State.Get(statestore.InvitationSent{PageID: l.PageID})
		if !ok {
			continue
		}
		var record SentRecord
		if err := json.Unmarshal(raw, &record); err != nil || record.InvitationID == "" {
			continue
		}
		if s.State.Has(statestore.ComplianceCleared{PageID: l.PageID}) {
			continue
		}

		if s.DryRun {
			fmt.Printf("--- DRY RUN: POLL CHECKR ---\n  Leader: %s\n  Invitation: %s\n\n",
				l.Name, record.InvitationID)
			continue
		}

		status, err := s.API.ReportStatus(ctx, record.InvitationID)
		if err != nil {
			s.logger().Error("failed to poll checkr", "leader", l.Name, "error", err)
			continue
		}
		s.logger().Info("checkr status", "leader", l.Name, "status", status)

		switch status {
		case "clear":
			if err := s.Store.PatchCompliance(ctx, l.PageID, "Cleared"); err != nil {
				s.logger().Error("failed to mark compliance cleared", "leader", l.Name, "error", err)
			}
			if err := s.State.Put(statestore.ComplianceCleared{PageID: l.PageID}, statestore.Timestamp()); err != nil {
				s.logger().Error("failed to record clearance", "leader", l.Name, "error", err)
			}
			s.post(ctx, fmt.Sprintf(":white_check_mark: CHECKR BACKGROUND CHECK CLEARED\n\n"+
				"*Leader:* %s\n\nBackground check is clear — ready for onboarding setup.", l.Name))
			cleared++
		case "suspended", "dispute", "consider":
			s.logger().Warn("checkr flagged a report", "leader", l.Name, "status", status)
			label := strings.ToUpper(status[:1]) + status[1:]
			if err := s.Store.PatchCompliance(ctx, l.PageID, label); err != nil {
				s.logger().Error("failed to flag compliance", "leader", l.Name, "error", err)
			}
			s.post(ctx, fmt.Sprintf(":warning: CHECKR BACKGROUND CHECK — %s\n\n*Leader:* %s\n"+
				"*Status:* %s\n\nManual review required.", strings.ToUpper(status), l.Name, status))
		}
	}
	return cleared, nil
}

func (s *Sync) post(ctx context.Context, msg string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Post(ctx, s.Channel, msg); err != nil {
		s.logger().Error("failed to post checkr alert", "error", err)
	}
}

func (s *Sync) sendMissingEmailAlert(ctx context.Context, leaders []types.Leader) {
	if len(leaders) == 0 || s.Mailer == nil {
		return
	}
	var lines []string
	for _, l := range leaders {
		cardURL := "https://www.notion.so/" + strings.ReplaceAll(l.PageID, "-", "")
		lines = append(lines, fmt.Sprintf("  - %s\n    Open their card to add it: %s", l.Name, cardURL))
	}
	body := fmt.Sprintf("Hi team,\n\nThe following leader(s) are missing an email address and cannot be "+
		"processed for background checks or onboarding:\n\n%s\n\n"+
		"Please open each card above and fill in the Email property, "+
		"or ensure the leader has filled out the Leader Confirmation Form.\n\n"+
		"Thanks,\nKodely Automation", strings.Join(lines, "\n"))
	subject := fmt.Sprintf("Action Needed: Missing email for %d leader(s)", len(leaders))
	if err := s.Mailer.SendPlain(ctx, opsEmail, subject, body); err != nil {
		s.logger().Error("failed to send missing-email alert", "error", err)
	}
}

func (s *Sync) sendSterlingAlert(ctx context.Context, leaders []types.Leader) {
	if len(leaders) == 0 || s.Mailer == nil {
		return
	}
	var lines []string
	for _, l := range leaders {
		cardURL := "https://www.notion.so/" + strings.ReplaceAll(l.PageID, "-", "")
		lines = append(lines, fmt.Sprintf("  - %s (%s)\n    Notion card: %s", l.Name, l.Email, cardURL))
	}
	body := fmt.Sprintf("Hi team,\n\nThe following leader(s) are under 18 and need a Sterling background "+
		"check instead of Checkr:\n\n%s\n\n"+
		"Please send a Sterling check for each leader listed above. "+
		"Once cleared, update their Notion card Compliance Status to \"Cleared\".\n\n"+
		"Thanks,\nKodely Automation", strings.Join(lines, "\n"))
	subject := fmt.Sprintf("Action Needed: Sterling background check for %d under-18 leader(s)", len(leaders))
	if err := s.Mailer.SendPlain(ctx, opsEmail, subject, body); err != nil {
		s.logger().Error("failed to send sterling alert", "error", err)
	}
}
