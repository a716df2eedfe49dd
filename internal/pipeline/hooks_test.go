package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

type fakeWelcome struct {
	sent []string
	err  error
}

func (f *fakeWelcome) SendForLeader(_ context.Context, l types.Leader) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.sent = append(f.sent, l.Name)
	return true, nil
}

type fakeNotes struct {
	generated []string
}

func (f *fakeNotes) GenerateForLeader(_ context.Context, l types.Leader) (bool, error) {
	f.generated = append(f.generated, l.Name)
	return true, nil
}

type patch struct {
	pageID, property, value string
}

type fakeTaskPatcher struct {
	patches []patch
	err     error
}

func (f *fakeTaskPatcher) PatchSelect(_ context.Context, pageID, property, value string) error {
	if f.err != nil {
		return f.err
	}
	f.patches = append(f.patches, patch{pageID, property, value})
	return nil
}

type sentMail struct {
	to, subject, html string
}

type fakeRebookMailer struct {
	mail []sentMail
}

func (f *fakeRebookMailer) Send(_ context.Context, to, subject, html string) error {
	f.mail = append(f.mail, sentMail{to, subject, html})
	return nil
}

func newHookStore(t *testing.T) statestore.Store {
	t.Helper()
	return statestore.OpenFile(filepath.Join(t.TempDir(), "state.json"), nil)
}

func hookLeader() types.Leader {
	return types.Leader{
		PageID: "page-1",
		Name:   "Dana Cole",
		Email:  "dana@example.com",
		Region: "Brooklyn",
	}
}

func TestEnterOnboardingSetupRunsAllAutomations(t *testing.T) {
	welcome := &fakeWelcome{}
	notes := &fakeNotes{}
	tasks := &fakeTaskPatcher{}
	h := &StageHooks{Welcome: welcome, Notes: notes, Tasks: tasks, State: newHookStore(t)}

	require.NoError(t, h.EnterOnboardingSetup(context.Background(), hookLeader()))

	assert.Equal(t, []string{"Dana Cole"}, welcome.sent)
	assert.Equal(t, []string{"Dana Cole"}, notes.generated)
	require.Len(t, tasks.patches, 1)
	assert.Equal(t, patch{"page-1", notion.PropLessonPlan, "Sent"}, tasks.patches[0])

	assert.True(t, h.State.Has(statestore.WelcomeSent{PageID: "page-1"}))
	assert.True(t, h.State.Has(statestore.TrainerNotes{PageID: "page-1"}))
}

func TestEnterOnboardingSetupIsIdempotent(t *testing.T) {
	welcome := &fakeWelcome{}
	notes := &fakeNotes{}
	h := &StageHooks{Welcome: welcome, Notes: notes, State: newHookStore(t)}

	require.NoError(t, h.EnterOnboardingSetup(context.Background(), hookLeader()))
	require.NoError(t, h.EnterOnboardingSetup(context.Background(), hookLeader()))

	assert.Len(t, welcome.sent, 1)
	assert.Len(t, notes.generated, 1)
}

func TestEnterOnboardingSetupWelcomeFailureDoesNotRecord(t *testing.T) {
	welcome := &fakeWelcome{err: errors.New("smtp down")}
	h := &StageHooks{Welcome: welcome, State: newHookStore(t)}

	require.NoError(t, h.EnterOnboardingSetup(context.Background(), hookLeader()))
	assert.False(t, h.State.Has(statestore.WelcomeSent{PageID: "page-1"}))

	// Next run retries now that the mailer is back.
	welcome.err = nil
	require.NoError(t, h.EnterOnboardingSetup(context.Background(), hookLeader()))
	assert.Equal(t, []string{"Dana Cole"}, welcome.sent)
	assert.True(t, h.State.Has(statestore.WelcomeSent{PageID: "page-1"}))
}

func TestEnterOnboardingSetupTaskFailureDoesNotBlockNotes(t *testing.T) {
	notes := &fakeNotes{}
	tasks := &fakeTaskPatcher{err: errors.New("notion 502")}
	h := &StageHooks{Notes: notes, Tasks: tasks, State: newHookStore(t)}

	require.NoError(t, h.EnterOnboardingSetup(context.Background(), hookLeader()))
	assert.Equal(t, []string{"Dana Cole"}, notes.generated)
}

func TestEnterActiveMarksGustoDone(t *testing.T) {
	tasks := &fakeTaskPatcher{}
	h := &StageHooks{Tasks: tasks, State: newHookStore(t)}

	require.NoError(t, h.EnterActive(context.Background(), hookLeader()))
	require.Len(t, tasks.patches, 1)
	assert.Equal(t, patch{"page-1", notion.PropGusto, "Done"}, tasks.patches[0])
}

func TestEnterActivePatchFailureIsReturned(t *testing.T) {
	tasks := &fakeTaskPatcher{err: errors.New("notion 502")}
	h := &StageHooks{Tasks: tasks, State: newHookStore(t)}

	err := h.EnterActive(context.Background(), hookLeader())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Dana Cole")
}

func TestRebookTrainingSendsBookingLink(t *testing.T) {
	mailer := &fakeRebookMailer{}
	h := &StageHooks{
		Mailer:     mailer,
		BookingURL: "https://calendly.com/kodely/training",
		State:      newHookStore(t),
	}

	require.NoError(t, h.RebookTraining(context.Background(), hookLeader()))
	require.Len(t, mailer.mail, 1)
	assert.Equal(t, "dana@example.com", mailer.mail[0].to)
	assert.Equal(t, "Let's Schedule Another Training Session", mailer.mail[0].subject)
	assert.True(t, strings.Contains(mailer.mail[0].html, "https://calendly.com/kodely/training"))
	assert.True(t, strings.Contains(mailer.mail[0].html, "Dana"))
}

func TestRebookTrainingSkipsLeaderWithoutEmail(t *testing.T) {
	mailer := &fakeRebookMailer{}
	h := &StageHooks{Mailer: mailer, State: newHookStore(t)}

	l := hookLeader()
	l.Email = ""
	require.NoError(t, h.RebookTraining(context.Background(), l))
	assert.Empty(t, mailer.mail)
}
