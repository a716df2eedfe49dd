// Package tracker watches the Ops Hub leader cells for status changes:
// orange cells start onboarding, purple cells mark compliance started,
// red or struck-through cells mean a leader backed out. Each new event
// opens or updates an onboarding card and posts an operator alert.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Kind is the operational meaning of a tracked cell class.
type Kind int

const (
	Onboarding Kind = iota
	Compliance
	Offboarding
)

// kindOf maps a cell class to its tracked kind. The boolean is false
// for classes the tracker ignores.
func kindOf(class opshub.CellClass) (Kind, bool) {
	switch class {
	case opshub.ClassOrange:
		return Onboarding, true
	case opshub.ClassPurple:
		return Compliance, true
	case opshub.ClassRed, opshub.ClassStrikethrough:
		return Offboarding, true
	default:
		return 0, false
	}
}

// Event is one tracked leader cell on the sheet.
type Event struct {
	Leader      string
	Email       string
	WorkshopKey string
	Class       opshub.CellClass
	Kind        Kind
	Region      string
	Site        string
	Lesson      string
	Day         string
	Time        string
	StartDate   string
	EndDate     string
	District    string
}

// ScanRows classifies every leader cell of the active workshop rows and
// returns one event per tracked cell. Cancelled setups and rows already
// ended before today are skipped.
func ScanRows(rows []opshub.Row, today time.Time) []Event {
	var events []Event
	for _, row := range rows {
		if strings.Contains(strings.ToUpper(row.Setup), "CANCEL") {
			continue
		}
		if end, ok := normalize.ParseSheetDate(row.EndDate); ok && beforeDay(end, today) {
			continue
		}
		region := strings.TrimSpace(row.Region)
		site := strings.TrimSpace(row.Site)
		if region == "" && site == "" {
			continue
		}

		lesson := strings.TrimSpace(row.Lesson)
		if lesson == "" {
			lesson = "(unnamed)"
		}
		workshopKey := strings.Join([]string{region, site, strings.TrimSpace(row.Lesson), row.Day, row.TimeRange()}, "|")

		for _, cell := range row.Leaders {
			kind, tracked := kindOf(cell.Class)
			if !tracked || strings.TrimSpace(cell.Name) == "" {
				continue
			}
			name, embeddedEmail := normalize.CleanName(cell.Name)
			events = append(events, Event{
				Leader:      name,
				Email:       embeddedEmail,
				WorkshopKey: workshopKey,
				Class:       cell.Class,
				Kind:        kind,
				Region:      region,
				Site:        site,
				Lesson:      lesson,
				Day:         row.Day,
				Time:        row.TimeRange(),
				StartDate:   strings.TrimSpace(row.StartDate),
				EndDate:     strings.TrimSpace(row.EndDate),
				District:    strings.TrimSpace(row.District),
			})
		}
	}
	return events
}

// TicketStore is the onboarding database surface the tracker writes to.
type TicketStore interface {
	AllLeaders(ctx context.Context) ([]types.Leader, error)
	CreateOnboardingTicket(ctx context.Context, t notion.Ticket) (string, error)
	UpdateReturningLeader(ctx context.Context, pageID string, t notion.Ticket) error
	CreateOffboardingTicket(ctx context.Context, t notion.Ticket) (string, error)
}

// Tracker processes scanned events against the dedup store.
type Tracker struct {
	Store              TicketStore
	Notifier           alerting.Notifier
	OnboardingChannel  string
	OffboardingChannel string
	State              statestore.Store
	DryRun             bool
	Logger             *slog.Logger
}

func (t *Tracker) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// Counts summarizes one tracker run.
type Counts struct {
	Onboarding  int
	Compliance  int
	Offboarding int
}

// Process handles every not-yet-seen event. Events are recorded only
// after their alert posts, so a failed post retries next run.
func (t *Tracker) Process(ctx context.Context, events []Event) (Counts, error) {
	var fresh []Event
	for _, e := range events {
		if !t.State.Has(t.key(e)) {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		t.logger().Info("no new onboarding or offboarding events")
		return Counts{}, nil
	}

	var existing map[string]*types.Leader
	for _, e := range fresh {
		if e.Kind != Compliance {
			leaders, err := t.Store.AllLeaders(ctx)
			if err != nil {
				return Counts{}, fmt.Errorf("failed to load onboarding cards: %w", err)
			}
			existing = indexByName(leaders)
			break
		}
	}

	var counts Counts
	for _, e := range fresh {
		switch e.Kind {
		case Onboarding:
			if t.processOnboarding(ctx, e, existing) {
				counts.Onboarding++
			}
		case Compliance:
			if t.processCompliance(ctx, e) {
				counts.Compliance++
			}
		case Offboarding:
			if t.processOffboarding(ctx, e, existing) {
				counts.Offboarding++
			}
		}
	}
	return counts, nil
}

func (t *Tracker) key(e Event) statestore.TrackerEvent {
	return statestore.TrackerEvent{
		Leader:      e.Leader,
		WorkshopKey: e.WorkshopKey,
		Class:       string(e.Class),
	}
}

func indexByName(leaders []types.Leader) map[string]*types.Leader {
	idx := make(map[string]*types.Leader, len(leaders))
	for i := range leaders {
		l := &leaders[i]
		if name := strings.ToLower(strings.TrimSpace(l.Name)); name != "" {
			idx[name] = l
		}
	}
	return idx
}

func lookup(idx map[string]*types.Leader, name string) *types.Leader {
	if idx == nil {
		return nil
	}
	return idx[strings.ToLower(strings.TrimSpace(name))]
}

func (t *Tracker) ticket(e Event) notion.Ticket {
	return notion.Ticket{Name: e.Leader, Region: e.Region, Site: e.Site, StartDate: e.StartDate}
}

func (t *Tracker) processOnboarding(ctx context.Context, e Event, idx map[string]*types.Leader) bool {
	prior := lookup(idx, e.Leader)
	returning := prior != nil

	if t.DryRun {
		action := "create"
		if returning {
			action = "update returning"
		}
		fmt.Printf("--- DRY RUN: ONBOARDING CARD (%s) ---\n  Leader: %s\n  Region: %s, Site: %s\n"+
			"  Start Date: %s\n\n--- DRY RUN: SLACK %s ---\n%s\n\n",
			action, e.Leader, e.Region, e.Site, e.StartDate,
			t.OnboardingChannel, onboardingAlert(e, "", returning))
		return true
	}

	cardURL := ""
	if returning {
		if err := t.Store.UpdateReturningLeader(ctx, prior.PageID, t.ticket(e)); err != nil {
			t.logger().Error("failed to update returning leader card", "leader", e.Leader, "error", err)
		} else {
			cardURL = prior.PageURL
			t.logger().Info("returning leader, card updated", "leader", e.Leader)
		}
	} else {
		url, err := t.Store.CreateOnboardingTicket(ctx, t.ticket(e))
		if err != nil {
			t.logger().Error("failed to create onboarding ticket", "leader", e.Leader, "error", err)
		} else {
			cardURL = url
			t.logger().Info("onboarding ticket created", "leader", e.Leader, "url", url)
		}
	}

	if !t.post(ctx, t.OnboardingChannel, onboardingAlert(e, cardURL, returning)) {
		return false
	}
	t.record(e)
	return true
}

func (t *Tracker) processCompliance(ctx context.Context, e Event) bool {
	if t.DryRun {
		fmt.Printf("--- DRY RUN: SLACK %s (compliance) ---\n%s\n\n",
			t.OnboardingChannel, complianceAlert(e))
		return true
	}
	if !t.post(ctx, t.OnboardingChannel, complianceAlert(e)) {
		return false
	}
	t.record(e)
	return true
}

func (t *Tracker) processOffboarding(ctx context.Context, e Event, idx map[string]*types.Leader) bool {
	if t.DryRun {
		fmt.Printf("--- DRY RUN: OFFBOARDING CARD ---\n  Leader: %s\n  Region: %s, Site: %s\n\n"+
			"--- DRY RUN: SLACK %s ---\n%s\n\n",
			e.Leader, e.Region, e.Site, t.OffboardingChannel, offboardingAlert(e, ""))
		return true
	}

	cardURL := ""
	if prior := lookup(idx, e.Leader); prior != nil {
		// Card already exists; no new offboarding page.
		cardURL = prior.PageURL
		t.logger().Info("card already exists, skipping offboarding creation", "leader", e.Leader)
	} else {
		url, err := t.Store.CreateOffboardingTicket(ctx, t.ticket(e))
		if err != nil {
			t.logger().Error("failed to create offboarding ticket", "leader", e.Leader, "error", err)
		} else {
			cardURL = url
			t.logger().Info("offboarding ticket created", "leader", e.Leader, "url", url)
		}
	}

	if !t.post(ctx, t.OffboardingChannel, offboardingAlert(e, cardURL)) {
		return false
	}
	t.record(e)
	return true
}

func (t *Tracker) record(e Event) {
	if err := t.State.Put(t.key(e), statestore.Timestamp()); err != nil {
		t.logger().Error("failed to record tracker event", "leader", e.Leader, "error", err)
	}
}

func (t *Tracker) post(ctx context.Context, channel, msg string) bool {
	if t.Notifier == nil {
		return true
	}
	if err := t.Notifier.Post(ctx, channel, msg); err != nil {
		t.logger().Error("failed to post tracker alert", "channel", channel, "error", err)
		return false
	}
	return true
}
