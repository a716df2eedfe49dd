package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

type patchCall struct {
	pageID   string
	property string
	value    string
}

type fakeLeaderSource struct {
	leaders []types.Leader
	patches []patchCall
}

func (f *fakeLeaderSource) LeadersNeedingSlack(ctx context.Context) ([]types.Leader, error) {
	return f.leaders, nil
}

func (f *fakeLeaderSource) PatchSelect(ctx context.Context, pageID, property, value string) error {
	f.patches = append(f.patches, patchCall{pageID, property, value})
	return nil
}

type fakeAdmin struct {
	invited []string
	err     error
}

func (f *fakeAdmin) InviteToWorkspace(ctx context.Context, email, realName string, channelIDs []string) error {
	if f.err != nil {
		return f.err
	}
	f.invited = append(f.invited, email)
	return nil
}

type fakeBot struct {
	users   map[string]string
	invited []string
}

func (f *fakeBot) UserIDByEmail(ctx context.Context, email string) (string, error) {
	id, ok := f.users[email]
	if !ok {
		return "", errors.New("users_not_found")
	}
	return id, nil
}

func (f *fakeBot) InviteToChannel(ctx context.Context, channelID, userID string) error {
	f.invited = append(f.invited, userID)
	return nil
}

type capturingNotifier struct {
	texts []string
}

func (n *capturingNotifier) Post(ctx context.Context, channel, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

func newService(t *testing.T, leaders *fakeLeaderSource, admin *fakeAdmin, bot *fakeBot) (*Service, *capturingNotifier) {
	t.Helper()
	state := statestore.OpenFile(t.TempDir()+"/state.json", nil)
	notifier := &capturingNotifier{}
	return &Service{
		Leaders:         leaders,
		Admin:           admin,
		Bot:             bot,
		Notifier:        notifier,
		Channel:         "C_ONBOARDING",
		WorkshopChannel: "C_WORKSHOP",
		State:           state,
	}, notifier
}

func TestRunProvisionsAndDedupes(t *testing.T) {
	leaders := &fakeLeaderSource{leaders: []types.Leader{{
		PageID: "page-1",
		Name:   "Jordan Lee",
		Email:  "jordan@example.com",
	}}}
	admin := &fakeAdmin{}
	bot := &fakeBot{users: map[string]string{"jordan@example.com": "U123"}}
	svc, notifier := newService(t, leaders, admin, bot)

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{"jordan@example.com"}, admin.invited)
	assert.Equal(t, []string{"U123"}, bot.invited)
	assert.ElementsMatch(t, []patchCall{
		{"page-1", "Slack Invite", "Done"},
		{"page-1", "Workshop Slack", "Done"},
	}, leaders.patches)

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "SLACK ACCESS PROVISIONED")
	assert.Contains(t, notifier.texts[0], "- Workspace invite sent")
	assert.Contains(t, notifier.texts[0], "- Added to workshop channel")

	n, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, admin.invited, 1)
}

func TestRunChannelOnlyWhenWorkspaceFails(t *testing.T) {
	leaders := &fakeLeaderSource{leaders: []types.Leader{{
		PageID: "page-1",
		Name:   "Jordan Lee",
		Email:  "jordan@example.com",
	}}}
	admin := &fakeAdmin{err: errors.New("invalid_auth")}
	bot := &fakeBot{users: map[string]string{"jordan@example.com": "U123"}}
	svc, notifier := newService(t, leaders, admin, bot)

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Empty(t, admin.invited)
	assert.Equal(t, []string{"U123"}, bot.invited)
	assert.Equal(t, []patchCall{{"page-1", "Workshop Slack", "Done"}}, leaders.patches)

	require.Len(t, notifier.texts, 1)
	assert.NotContains(t, notifier.texts[0], "Workspace invite sent")
}

func TestRunSkipsLeaderWithoutEmail(t *testing.T) {
	leaders := &fakeLeaderSource{leaders: []types.Leader{{PageID: "page-1", Name: "No Email"}}}
	svc, notifier := newService(t, leaders, &fakeAdmin{}, &fakeBot{})

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, leaders.patches)
	assert.Empty(t, notifier.texts)
}

func TestRunResolvesEmailFromForm(t *testing.T) {
	leaders := &fakeLeaderSource{leaders: []types.Leader{{PageID: "page-1", Name: "Jordan Lee"}}}
	admin := &fakeAdmin{}
	bot := &fakeBot{users: map[string]string{"jordan@example.com": "U123"}}
	svc, _ := newService(t, leaders, admin, bot)
	svc.FormEmails = map[string]string{"jordan lee": "jordan@example.com"}

	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"jordan@example.com"}, admin.invited)
}
