package calendly

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

type fakeEvents struct {
	recent    []Event
	completed []Event
	invitees  map[string][]Invitee
}

func (f *fakeEvents) CurrentUser(ctx context.Context) (*User, error) {
	return &User{Name: "Ops Bot", CurrentOrganization: "org-1"}, nil
}

func (f *fakeEvents) RecentTrainingEvents(ctx context.Context, orgURI string) ([]Event, error) {
	return f.recent, nil
}

func (f *fakeEvents) CompletedTrainingEvents(ctx context.Context, orgURI string) ([]Event, error) {
	return f.completed, nil
}

func (f *fakeEvents) Invitees(ctx context.Context, eventURI string) ([]Invitee, error) {
	return f.invitees[eventURI], nil
}

type bookedCall struct {
	pageID  string
	trainer string
	advance bool
}

type fakeTrainingStore struct {
	leaders   []types.Leader
	scheduled []types.Leader
	booked    []bookedCall
	completed []string
}

func (f *fakeTrainingStore) OnboardingLeaders(ctx context.Context) ([]types.Leader, error) {
	return f.leaders, nil
}

func (f *fakeTrainingStore) LeadersTrainingScheduled(ctx context.Context) ([]types.Leader, error) {
	return f.scheduled, nil
}

func (f *fakeTrainingStore) PatchTrainingBooked(ctx context.Context, pageID, trainer string, advance bool) error {
	f.booked = append(f.booked, bookedCall{pageID, trainer, advance})
	return nil
}

func (f *fakeTrainingStore) MarkTrainingComplete(ctx context.Context, pageID string) error {
	f.completed = append(f.completed, pageID)
	return nil
}

type capturedPost struct {
	channel string
	text    string
}

type capturingNotifier struct {
	posts []capturedPost
}

func (n *capturingNotifier) Post(ctx context.Context, channel, text string) error {
	n.posts = append(n.posts, capturedPost{channel, text})
	return nil
}

func newTestStore(t *testing.T) statestore.Store {
	t.Helper()
	return statestore.OpenFile(t.TempDir()+"/state.json", nil)
}

func TestSyncBookingsAssignsTrainerAndAdvances(t *testing.T) {
	events := &fakeEvents{
		recent: []Event{{
			URI:              "https://api.calendly.com/scheduled_events/ev1",
			Name:             "Kodely Leader Training",
			StartTime:        "2026-03-02T18:30:00Z",
			EventMemberships: []Membership{{UserName: "Dana Trainer"}},
		}},
		invitees: map[string][]Invitee{
			"https://api.calendly.com/scheduled_events/ev1": {
				{Name: "Jordan Lee", Email: "Jordan@Example.com"},
			},
		},
	}
	store := &fakeTrainingStore{leaders: []types.Leader{{
		PageID:          "page-1",
		Name:            "Jordan Lee",
		Email:           "jordan@example.com",
		ReadinessStatus: "Onboarding Setup",
	}}}
	notifier := &capturingNotifier{}

	sync := &Sync{
		Events:   events,
		Store:    store,
		OrgURI:   "org-1",
		Notifier: notifier,
		Channel:  "#ops-onboarding",
		State:    newTestStore(t),
	}

	booked, completed, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
	assert.Equal(t, 0, completed)

	require.Len(t, store.booked, 1)
	assert.Equal(t, "page-1", store.booked[0].pageID)
	assert.Equal(t, "Dana Trainer", store.booked[0].trainer)
	assert.True(t, store.booked[0].advance)

	require.Len(t, notifier.posts, 1)
	assert.Contains(t, notifier.posts[0].text, "TRAINING BOOKED")
	assert.Contains(t, notifier.posts[0].text, "*Trainer:* Dana Trainer")
	assert.Contains(t, notifier.posts[0].text, "Mar 02, 2026 at 6:30 PM")

	// Second run dedupes on the (invitee, event) key.
	booked, _, err = sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, booked)
	assert.Len(t, store.booked, 1)
}

func TestSyncBookingsNoAdvanceFromLaterStage(t *testing.T) {
	events := &fakeEvents{
		recent: []Event{{
			URI:              "ev2",
			Name:             "Dress Rehearsal",
			StartTime:        "2026-03-02T18:30:00Z",
			EventMemberships: []Membership{{UserName: "Dana Trainer"}},
		}},
		invitees: map[string][]Invitee{
			"ev2": {{Name: "Sam Ortiz", Email: "sam@example.com"}},
		},
	}
	store := &fakeTrainingStore{leaders: []types.Leader{{
		PageID:          "page-2",
		Name:            "Sam Ortiz",
		Email:           "sam@example.com",
		ReadinessStatus: "Training In Progress",
	}}}

	sync := &Sync{Events: events, Store: store, OrgURI: "org-1", State: newTestStore(t)}
	_, _, err := sync.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.booked, 1)
	assert.False(t, store.booked[0].advance)
}

func TestSyncBookingsMatchesByEmailWhenNameDiffers(t *testing.T) {
	events := &fakeEvents{
		recent: []Event{{
			URI:       "ev3",
			Name:      "Training Session",
			StartTime: "2026-03-02T18:30:00Z",
		}},
		invitees: map[string][]Invitee{
			"ev3": {{Name: "Jordy L.", Email: "jordan@example.com"}},
		},
	}
	store := &fakeTrainingStore{leaders: []types.Leader{{
		PageID: "page-1",
		Name:   "Jordan Lee",
		Email:  "jordan@example.com",
	}}}

	sync := &Sync{Events: events, Store: store, OrgURI: "org-1", State: newTestStore(t)}
	booked, _, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
	require.Len(t, store.booked, 1)
	// Event with no memberships falls back to an unknown trainer.
	assert.Equal(t, "Unknown", store.booked[0].trainer)
}

func TestSyncBookingsSkipsUnmatchedInvitee(t *testing.T) {
	events := &fakeEvents{
		recent: []Event{{URI: "ev4", Name: "Training", StartTime: "2026-03-02T18:30:00Z"}},
		invitees: map[string][]Invitee{
			"ev4": {{Name: "Nobody Known", Email: "nobody@example.com"}},
		},
	}
	store := &fakeTrainingStore{}

	sync := &Sync{Events: events, Store: store, OrgURI: "org-1", State: newTestStore(t)}
	booked, _, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, booked)
	assert.Empty(t, store.booked)
}

func TestSyncCompletionsMarksAttendees(t *testing.T) {
	events := &fakeEvents{
		completed: []Event{{
			URI:     "ev5",
			Name:    "Leader Training",
			EndTime: "2026-03-01T19:00:00Z",
		}},
		invitees: map[string][]Invitee{
			"ev5": {
				{Name: "Jordan Lee", Email: "jordan@example.com"},
				{Name: "Riley Chen", Email: ""},
			},
		},
	}
	store := &fakeTrainingStore{scheduled: []types.Leader{
		{PageID: "page-1", Name: "Jordan Lee", Email: "jordan@example.com"},
		// Matched by name because the card has no email.
		{PageID: "page-2", Name: "Riley Chen"},
		{PageID: "page-3", Name: "No Show", Email: "noshow@example.com"},
	}}
	notifier := &capturingNotifier{}

	sync := &Sync{
		Events:   events,
		Store:    store,
		OrgURI:   "org-1",
		Notifier: notifier,
		Channel:  "#ops-onboarding",
		State:    newTestStore(t),
	}

	_, completed, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, completed)
	assert.ElementsMatch(t, []string{"page-1", "page-2"}, store.completed)

	require.Len(t, notifier.posts, 2)
	assert.Contains(t, notifier.posts[0].text, "TRAINING COMPLETED")

	// Rerun is a no-op thanks to the completion key.
	_, completed, err = sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, completed)
	assert.Len(t, store.completed, 2)
}

func TestEventHelpers(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	ended := Event{EndTime: "2026-03-01T19:00:00Z"}
	assert.True(t, ended.Ended(now))

	upcoming := Event{EndTime: "2026-03-03T19:00:00Z"}
	assert.False(t, upcoming.Ended(now))

	unparseable := Event{EndTime: "soon"}
	assert.False(t, unparseable.Ended(now))

	hosted := Event{EventMemberships: []Membership{{UserName: "Dana"}}}
	assert.Equal(t, "Dana", hosted.Host())
	assert.Equal(t, "Unknown", (&Event{}).Host())
}

func TestClientTrainingTermMatching(t *testing.T) {
	c := NewClient("tok", []string{"training", "dress rehearsal"}, nil)

	assert.True(t, c.isTraining("Kodely Leader Training"))
	assert.True(t, c.isTraining("DRESS REHEARSAL with Dana"))
	assert.False(t, c.isTraining("Intro Call"))

	filtered := c.filterTraining([]Event{
		{Name: "Leader Training"},
		{Name: "Office Hours"},
	})
	require.Len(t, filtered, 1)
	assert.Equal(t, "Leader Training", filtered[0].Name)
}
