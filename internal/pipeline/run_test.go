package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

type fakeLeaderStore struct {
	leaders   []types.Leader
	patched   map[string]string
	cleared   []string
	queries   int
	advanceOn bool
}

func (f *fakeLeaderStore) OnboardingLeaders(context.Context) ([]types.Leader, error) {
	f.queries++
	if f.advanceOn && f.queries > 1 {
		// Simulate the card having moved: return it at its new stage.
		fresh := make([]types.Leader, len(f.leaders))
		copy(fresh, f.leaders)
		for i := range fresh {
			if next, ok := f.patched[fresh[i].PageID]; ok {
				fresh[i].ReadinessStatus = next
			}
		}
		return fresh, nil
	}
	return f.leaders, nil
}

func (f *fakeLeaderStore) PatchReadiness(_ context.Context, pageID, stage string) error {
	if f.patched == nil {
		f.patched = map[string]string{}
	}
	f.patched[pageID] = stage
	return nil
}

func (f *fakeLeaderStore) ClearTrainingFields(_ context.Context, pageID string) error {
	f.cleared = append(f.cleared, pageID)
	return nil
}

type capturingNotifier struct {
	posts []string
}

func (c *capturingNotifier) Post(_ context.Context, _ string, text string) error {
	c.posts = append(c.posts, text)
	return nil
}

func newTestStore(t *testing.T) statestore.Store {
	t.Helper()
	return statestore.OpenFile(filepath.Join(t.TempDir(), "state.json"), slog.Default())
}

func TestRunnerAdvancesAndDedupes(t *testing.T) {
	store := &fakeLeaderStore{
		leaders: []types.Leader{{
			PageID:          "pg-1",
			Name:            "Jordan Li",
			Email:           "jordan@kodely.io",
			Region:          "SF",
			ReadinessStatus: "Background Check Pending",
			TaskFields:      map[string]string{notion.PropComplianceStatus: "Clear"},
		}},
	}
	notifier := &capturingNotifier{}
	r := &Runner{
		Leaders:  store,
		Notifier: notifier,
		Channel:  "#onboarding",
		State:    newTestStore(t),
		Hooks:    NoopHooks{},
	}

	messages, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Background Check Pending → Onboarding Setup")
	assert.Equal(t, "Onboarding Setup", store.patched["pg-1"])
	require.NotEmpty(t, notifier.posts)
	assert.Contains(t, notifier.posts[0], "PIPELINE UPDATE")

	// Second run against the same stage must be a no-op.
	messages, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRunnerFastAdvanceSecondPass(t *testing.T) {
	// Check already cleared and all access tasks done: the card should
	// clear Background Check Pending and then Onboarding Setup in one run.
	store := &fakeLeaderStore{
		advanceOn: true,
		leaders: []types.Leader{{
			PageID:          "pg-2",
			Name:            "Mia Torres",
			Email:           "mia@kodely.io",
			Region:          "LA",
			ReadinessStatus: "Background Check Pending",
			TaskFields:      allAccessDone(),
		}},
	}
	r := &Runner{
		Leaders:  store,
		Notifier: &capturingNotifier{},
		State:    newTestStore(t),
		Hooks:    NoopHooks{},
	}

	messages, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "→ Onboarding Setup")
	assert.Contains(t, messages[1], "→ Training In Progress")
	assert.Equal(t, 2, store.queries)
}

func TestRunnerRebookFiresOnce(t *testing.T) {
	store := &fakeLeaderStore{
		leaders: []types.Leader{{
			PageID:          "pg-3",
			Name:            "Sam Okafor",
			Email:           "sam@kodely.io",
			ReadinessStatus: "Training In Progress",
			TrainingOutcome: OutcomeFail1,
		}},
	}
	notifier := &capturingNotifier{}
	r := &Runner{
		Leaders:  store,
		Notifier: notifier,
		State:    newTestStore(t),
		Hooks:    NoopHooks{},
	}

	messages, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "rebook")
	assert.Equal(t, []string{"pg-3"}, store.cleared)
	assert.Empty(t, store.patched, "rebook must not change the stage")
	require.Len(t, notifier.posts, 1)
	assert.Contains(t, notifier.posts[0], "TRAINING REBOOK")
	// Rebooks never trigger the fast-advance re-query.
	assert.Equal(t, 1, store.queries)

	messages, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Len(t, store.cleared, 1)
}

func TestRunnerFlagsMissingEmailOnce(t *testing.T) {
	store := &fakeLeaderStore{
		leaders: []types.Leader{{
			PageID:          "pg-4",
			Name:            "No Email",
			ReadinessStatus: "Onboarding Setup",
			TaskFields:      allAccessDone(),
		}},
	}
	notifier := &capturingNotifier{}
	r := &Runner{
		Leaders:  store,
		Notifier: notifier,
		State:    newTestStore(t),
		Hooks:    NoopHooks{},
	}

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.patched, "card without email must not advance")
	require.Len(t, notifier.posts, 1)
	assert.Contains(t, notifier.posts[0], "MISSING EMAIL")

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, notifier.posts, 1, "missing email flagged only once")
}

func TestRunnerSkipsUnknownStage(t *testing.T) {
	store := &fakeLeaderStore{
		leaders: []types.Leader{{
			PageID:          "pg-5",
			Name:            "Legacy Card",
			Email:           "legacy@kodely.io",
			ReadinessStatus: "Onboarding",
		}},
	}
	r := &Runner{
		Leaders:  store,
		Notifier: &capturingNotifier{},
		State:    newTestStore(t),
		Hooks:    NoopHooks{},
	}

	messages, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Empty(t, store.patched)
}

type countingHooks struct {
	NoopHooks
	setup int
}

func (h *countingHooks) EnterOnboardingSetup(context.Context, types.Leader) error {
	h.setup++
	return nil
}

func TestCatchUpHooks(t *testing.T) {
	leaders := []types.Leader{
		{
			PageID:          "pg-6",
			Name:            "Hand Moved",
			Email:           "hand@kodely.io",
			ReadinessStatus: "Onboarding Setup",
			TaskFields:      map[string]string{notion.PropOnboardingEmail: "Not Done"},
		},
		{
			PageID:          "pg-7",
			Name:            "Already Emailed",
			Email:           "done@kodely.io",
			ReadinessStatus: "Onboarding Setup",
			TaskFields:      map[string]string{notion.PropOnboardingEmail: "Done"},
		},
	}
	hooks := &countingHooks{}
	r := &Runner{
		Leaders:  &fakeLeaderStore{},
		Notifier: &capturingNotifier{},
		State:    newTestStore(t),
		Hooks:    hooks,
	}

	messages := r.CatchUpHooks(context.Background(), leaders)

	require.Len(t, messages, 1)
	assert.True(t, strings.HasPrefix(messages[0], "Hand Moved"))
	assert.Equal(t, 1, hooks.setup)

	// Replaying is idempotent.
	messages = r.CatchUpHooks(context.Background(), leaders)
	assert.Empty(t, messages)
	assert.Equal(t, 1, hooks.setup)
}
