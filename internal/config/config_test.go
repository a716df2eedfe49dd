package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "secret_test")
	t.Setenv("NOTION_DATABASE_ID", "db-123")
	t.Setenv("GOOGLE_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_ID", "sheet-abc")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret_test", cfg.NotionAPIKey)
	assert.Equal(t, int64(102025870), cfg.OpsHubSheetGID)
	assert.Equal(t, "Gap Matches", cfg.MatchesTabName)
	assert.Equal(t, "ops-matching", cfg.SlackMatchChannel)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "talent@kodely.io", cfg.EmailTo)
	assert.True(t, cfg.EmailsEnabled)
	assert.Equal(t, []string{"training", "dress rehearsal"}, cfg.TrainingEventTerms)
	assert.Equal(t, 3, cfg.UrgentDays)
	assert.Equal(t, 7, cfg.WarningDays)
	assert.Equal(t, 90, cfg.TrainingRecencyDays)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHEET_GID", "42")
	t.Setenv("EMAILS_ENABLED", "false")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("CALENDLY_TRAINING_EVENT_NAMES", "Bootcamp, Dress Rehearsal")
	t.Setenv("OB_URGENT_DAYS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.OpsHubSheetGID)
	assert.False(t, cfg.EmailsEnabled)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, []string{"bootcamp", "dress rehearsal"}, cfg.TrainingEventTerms)
	assert.Equal(t, 2, cfg.UrgentDays)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SLACK_BOT_TOKEN", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "SlackBotToken")
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHEET_GID", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(102025870), cfg.OpsHubSheetGID)
}
