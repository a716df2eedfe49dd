package notes

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/llm"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

type card struct {
	assignment string
	hasNotes   bool
}

type fakeCardStore struct {
	leaders  []types.Leader
	cards    map[string]card
	appended map[string]string
}

func (f *fakeCardStore) LeadersInSetupOrTraining(context.Context) ([]types.Leader, error) {
	return f.leaders, nil
}

func (f *fakeCardStore) WorkshopAssignment(_ context.Context, pageID string) (string, bool, error) {
	c, ok := f.cards[pageID]
	if !ok {
		return "", false, errors.New("page not found")
	}
	return c.assignment, c.hasNotes, nil
}

func (f *fakeCardStore) AppendTrainerNotes(_ context.Context, pageID, notes string) error {
	if f.appended == nil {
		f.appended = make(map[string]string)
	}
	f.appended[pageID] = notes
	return nil
}

type fakeGenerator struct {
	prompts []string
	text    string
	err     error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func newTestStore(t *testing.T) statestore.Store {
	t.Helper()
	return statestore.OpenFile(filepath.Join(t.TempDir(), "state.json"), nil)
}

func TestRunGeneratesAndDedupes(t *testing.T) {
	store := &fakeCardStore{
		leaders: []types.Leader{
			{PageID: "page-1", Name: "Ana Ruiz", Region: "Brooklyn"},
			{PageID: "page-2", Name: "Ben Cho", Region: "Queens"},
		},
		cards: map[string]card{
			"page-1": {assignment: "School: PS 321\nProgram: Game Design\nDay: Tuesday"},
			"page-2": {assignment: "School: PS 122\nProgram: Robotics"},
		},
	}
	gen := &fakeGenerator{text: "Tip one.\n\nTip two."}
	svc := &Service{Store: store, Generator: gen, State: newTestStore(t)}

	generated, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, generated)
	assert.Equal(t, "Tip one.\n\nTip two.", store.appended["page-1"])
	assert.Equal(t, "Tip one.\n\nTip two.", store.appended["page-2"])

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "Leader: Ana Ruiz")
	assert.Contains(t, gen.prompts[0], "Region: Brooklyn")
	assert.Contains(t, gen.prompts[0], "Program: Game Design")
	assert.Contains(t, gen.prompts[0], "No more than 200 words total.")

	// Second run is a no-op.
	generated, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, generated)
	assert.Len(t, gen.prompts, 2)
}

func TestRunHonorsLimit(t *testing.T) {
	store := &fakeCardStore{
		leaders: []types.Leader{
			{PageID: "page-1", Name: "Ana Ruiz", Region: "Brooklyn"},
			{PageID: "page-2", Name: "Ben Cho", Region: "Queens"},
			{PageID: "page-3", Name: "Cam Diaz", Region: "SF"},
		},
		cards: map[string]card{
			"page-1": {assignment: "School: PS 321"},
			"page-2": {assignment: "School: PS 122"},
			"page-3": {assignment: "School: PS 64"},
		},
	}
	gen := &fakeGenerator{text: "Tips."}
	svc := &Service{Store: store, Generator: gen, State: newTestStore(t), Limit: 2}

	generated, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, generated)
	assert.Len(t, store.appended, 2)

	// The remaining card is picked up next run.
	generated, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	assert.Len(t, store.appended, 3)
}

func TestRunSkipsExistingNotes(t *testing.T) {
	store := &fakeCardStore{
		leaders: []types.Leader{{PageID: "page-1", Name: "Ana Ruiz"}},
		cards: map[string]card{
			"page-1": {assignment: "School: PS 321", hasNotes: true},
		},
	}
	gen := &fakeGenerator{text: "Tips."}
	svc := &Service{Store: store, Generator: gen, State: newTestStore(t)}

	generated, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, generated)
	assert.Empty(t, gen.prompts)
	assert.Empty(t, store.appended)
	// A skipped card is not recorded; notes may be generated once the
	// assignment section appears.
	assert.False(t, svc.State.Has(statestore.TrainerNotes{PageID: "page-1"}))
}

func TestRunSkipsEmptyAssignment(t *testing.T) {
	store := &fakeCardStore{
		leaders: []types.Leader{{PageID: "page-1", Name: "Ana Ruiz"}},
		cards:   map[string]card{"page-1": {}},
	}
	gen := &fakeGenerator{text: "Tips."}
	svc := &Service{Store: store, Generator: gen, State: newTestStore(t)}

	generated, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, generated)
	assert.Empty(t, gen.prompts)
}

func TestRunGeneratorFailureDoesNotRecord(t *testing.T) {
	store := &fakeCardStore{
		leaders: []types.Leader{{PageID: "page-1", Name: "Ana Ruiz"}},
		cards:   map[string]card{"page-1": {assignment: "School: PS 321"}},
	}
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := &Service{Store: store, Generator: gen, State: newTestStore(t)}

	generated, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, generated)
	assert.False(t, svc.State.Has(statestore.TrainerNotes{PageID: "page-1"}))

	// Retried on the next run.
	gen.err = nil
	gen.text = "Tips."
	generated, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
}

func TestDryRunDoesNotTouchCards(t *testing.T) {
	store := &fakeCardStore{
		leaders: []types.Leader{{PageID: "page-1", Name: "Ana Ruiz", Region: "Brooklyn"}},
		cards:   map[string]card{"page-1": {assignment: "School: PS 321"}},
	}
	gen := &fakeGenerator{text: "Tips."}
	svc := &Service{Store: store, Generator: gen, State: newTestStore(t), DryRun: true}

	generated, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	assert.Empty(t, gen.prompts)
	assert.Empty(t, store.appended)
	assert.False(t, svc.State.Has(statestore.TrainerNotes{PageID: "page-1"}))
}
