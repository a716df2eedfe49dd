package calendly

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// trainingDateLayout renders event starts for Slack display.
const trainingDateLayout = "Jan 02, 2006 at 3:04 PM"

// EventSource is the Calendly surface the sync consumes.
type EventSource interface {
	CurrentUser(ctx context.Context) (*User, error)
	RecentTrainingEvents(ctx context.Context, orgURI string) ([]Event, error)
	CompletedTrainingEvents(ctx context.Context, orgURI string) ([]Event, error)
	Invitees(ctx context.Context, eventURI string) ([]Invitee, error)
}

// TrainingStore is the onboarding database surface the sync uses.
type TrainingStore interface {
	OnboardingLeaders(ctx context.Context) ([]types.Leader, error)
	LeadersTrainingScheduled(ctx context.Context) ([]types.Leader, error)
	PatchTrainingBooked(ctx context.Context, pageID, trainer string, advance bool) error
	MarkTrainingComplete(ctx context.Context, pageID string) error
}

// Sync runs the two training phases: new bookings assign a trainer and
// may advance the card, ended sessions flip Training Status to Complete.
type Sync struct {
	Events   EventSource
	Store    TrainingStore
	OrgURI   string
	Notifier alerting.Notifier
	Channel  string
	State    statestore.Store
	DryRun   bool
	Logger   *slog.Logger
}

func (s *Sync) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Run executes both phases and returns (bookings processed, trainings
// completed).
func (s *Sync) Run(ctx context.Context) (int, int, error) {
	orgURI := s.OrgURI
	if orgURI == "" {
		user, err := s.Events.CurrentUser(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to resolve calendly organization: %w", err)
		}
		orgURI = user.CurrentOrganization
		s.logger().Info("connected to calendly", slog.String("user", user.Name))
	}

	booked, err := s.syncBookings(ctx, orgURI)
	if err != nil {
		return booked, 0, err
	}
	completed, err := s.syncCompletions(ctx, orgURI)
	return booked, completed, err
}

// leaderIndex matches invitees to onboarding cards by name first, then
// by email. One database scan replaces a per-invitee query.
type leaderIndex struct {
	byName  map[string]*types.Leader
	byEmail map[string]*types.Leader
}

func indexLeaders(leaders []types.Leader) *leaderIndex {
	idx := &leaderIndex{
		byName:  make(map[string]*types.Leader, len(leaders)),
		byEmail: make(map[string]*types.Leader, len(leaders)),
	}
	for i := range leaders {
		l := &leaders[i]
		if name := strings.ToLower(strings.TrimSpace(l.Name)); name != "" {
			idx.byName[name] = l
		}
		if email := strings.ToLower(strings.TrimSpace(l.Email)); email != "" {
			idx.byEmail[email] = l
		}
	}
	return idx
}

func (idx *leaderIndex) match(name, email string) (*types.Leader, string) {
	if l, ok := idx.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, "name"
	}
	if email != "" {
		if l, ok := idx.byEmail[email]; ok {
			return l, "email"
		}
	}
	return nil, ""
}

func (s *Sync) syncBookings(ctx context.Context, orgURI string) (int, error) {
	events, err := s.Events.RecentTrainingEvents(ctx, orgURI)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch recent training events: %w", err)
	}
	s.logger().Info("recent training events", slog.Int("count", len(events)))
	if len(events) == 0 {
		return 0, nil
	}

	leaders, err := s.Store.OnboardingLeaders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query onboarding leaders: %w", err)
	}
	idx := indexLeaders(leaders)

	processed := 0
	for _, event := range events {
		trainer := event.Host()
		invitees, err := s.Events.Invitees(ctx, event.URI)
		if err != nil {
			s.logger().Error("failed to fetch invitees", "event", event.Name, "error", err)
			continue
		}

		for _, inv := range invitees {
			email := strings.ToLower(strings.TrimSpace(inv.Email))
			key := statestore.CalendlyInvite{Email: email, EventURI: event.URI}
			if s.State.Has(key) {
				continue
			}

			s.logger().Info("processing training booking",
				slog.String("invitee", inv.Name), slog.String("trainer", trainer))
			if !s.processBooking(ctx, idx, inv, trainer, event.StartTime) {
				continue
			}
			if s.DryRun {
				continue
			}
			if err := s.State.Put(key, statestore.Timestamp()); err != nil {
				s.logger().Error("failed to record booking", "invitee", inv.Name, "error", err)
			}
			processed++
		}
	}
	return processed, nil
}

func (s *Sync) processBooking(ctx context.Context, idx *leaderIndex, inv Invitee, trainer, eventStart string) bool {
	email := strings.ToLower(strings.TrimSpace(inv.Email))
	leader, how := idx.match(inv.Name, email)
	if leader == nil {
		s.logger().Warn("no onboarding card found for invitee, skipping",
			slog.String("invitee", inv.Name), slog.String("email", email))
		return false
	}
	s.logger().Info("matched invitee to card",
		slog.String("invitee", inv.Name), slog.String("via", how), slog.String("card", leader.PageURL))

	display := eventStart
	if start, err := time.Parse(time.RFC3339, eventStart); err == nil {
		display = start.Format(trainingDateLayout)
	}

	if s.DryRun {
		fmt.Printf("--- DRY RUN: UPDATE ONBOARDING CARD ---\n"+
			"  Leader: %s (%s)\n  Trainer Assigned: %s\n  Training Status: Scheduled\n"+
			"  Card: %s\n  Training date: %s\n\n--- DRY RUN: SLACK %s ---\n%s\n\n",
			inv.Name, email, trainer, leader.PageURL, display,
			s.Channel, bookingMessage(leader.Name, trainer, display))
		return true
	}

	advance := leader.ReadinessStatus == "Onboarding Setup"
	if advance {
		s.logger().Info("advancing card to Training In Progress", slog.String("leader", leader.Name))
	}
	if err := s.Store.PatchTrainingBooked(ctx, leader.PageID, trainer, advance); err != nil {
		s.logger().Error("failed to update onboarding card", "leader", leader.Name, "error", err)
		return false
	}

	s.post(ctx, bookingMessage(leader.Name, trainer, display))
	return true
}

func bookingMessage(leader, trainer, trainingDate string) string {
	return fmt.Sprintf(":clipboard: *TRAINING BOOKED*\n\n"+
		"*Leader:* %s → Training In Progress\n*Trainer:* %s\n*Training:* %s",
		leader, trainer, trainingDate)
}

func (s *Sync) syncCompletions(ctx context.Context, orgURI string) (int, error) {
	events, err := s.Events.CompletedTrainingEvents(ctx, orgURI)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch completed training events: %w", err)
	}
	if len(events) == 0 {
		s.logger().Info("no completed training events")
		return 0, nil
	}
	s.logger().Info("completed training events", slog.Int("count", len(events)))

	attendedEmails := make(map[string]bool)
	attendedNames := make(map[string]bool)
	for _, event := range events {
		invitees, err := s.Events.Invitees(ctx, event.URI)
		if err != nil {
			s.logger().Error("failed to fetch invitees", "event", event.Name, "error", err)
			continue
		}
		for _, inv := range invitees {
			if email := strings.ToLower(strings.TrimSpace(inv.Email)); email != "" {
				attendedEmails[email] = true
			}
			if name := strings.ToLower(strings.TrimSpace(inv.Name)); name != "" {
				attendedNames[name] = true
			}
		}
	}
	if len(attendedEmails) == 0 && len(attendedNames) == 0 {
		return 0, nil
	}

	leaders, err := s.Store.LeadersTrainingScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query leaders awaiting training: %w", err)
	}
	s.logger().Info("leaders with training scheduled", slog.Int("count", len(leaders)))

	marked := 0
	for _, l := range leaders {
		key := statestore.TrainingCompleted{PageID: l.PageID}
		if s.State.Has(key) {
			continue
		}

		email := strings.ToLower(strings.TrimSpace(l.Email))
		if !attendedEmails[email] && !attendedNames[strings.ToLower(strings.TrimSpace(l.Name))] {
			continue
		}

		if s.DryRun {
			fmt.Printf("--- DRY RUN: TRAINING COMPLETE ---\n  Leader: %s\n"+
				"  Training Status: Scheduled → Complete\n\n", l.Name)
			marked++
			continue
		}

		if err := s.Store.MarkTrainingComplete(ctx, l.PageID); err != nil {
			s.logger().Error("failed to mark training complete", "leader", l.Name, "error", err)
			continue
		}
		if err := s.State.Put(key, statestore.Timestamp()); err != nil {
			s.logger().Error("failed to record completion", "leader", l.Name, "error", err)
		}
		s.post(ctx, fmt.Sprintf(":mortar_board: TRAINING COMPLETED\n\n"+
			"*Leader:* %s\n*Training Status:* Complete\n\n"+
			"Training event has ended — ready for pipeline advance to ACTIVE.", l.Name))
		marked++
	}
	return marked, nil
}

func (s *Sync) post(ctx context.Context, msg string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Post(ctx, s.Channel, msg); err != nil {
		s.logger().Error("failed to post slack alert", "error", err)
	}
}
