// Package config provides environment-driven configuration for the staffing agent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds every credential and operational toggle the workflows need.
// All values come from environment variables at process start; business
// constants (property names, select values, alias tables) live as package
// constants in their owning packages.
type Config struct {
	// Notion
	NotionAPIKey   string `validate:"required"`
	CandidateDBID  string `validate:"required"`
	OnboardingDBID string
	// Google Sheets
	GoogleCredentialsPath string `validate:"required"`
	OpsHubSheetID         string `validate:"required"`
	OpsHubSheetGID        int64
	FormSheetID           string
	FormSheetGID          int64
	MatchesTabName        string
	// Slack
	SlackBotToken           string `validate:"required"`
	SlackAdminToken         string
	SlackTeamID             string
	SlackMatchChannel       string
	SlackOnboardingChannel  string
	SlackOffboardingChannel string
	SlackWorkshopChannel    string
	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	EmailTo      string
	EmailCC      string
	// EmailsEnabled is the global kill switch for all outbound email.
	EmailsEnabled bool
	// Welcome email resource links. Empty links drop their section from
	// the email body.
	WelcomeCalendlyLink          string
	WelcomeReturningCalendlyLink string
	WelcomeChecklistLink         string
	WelcomeQuizLink              string
	WelcomeAppLink               string
	WelcomeAndroidLink           string
	// Checkr
	CheckrAPIKey  string
	CheckrPackage string
	// Calendly
	CalendlyAPIToken   string
	CalendlyBookingURL string
	// TrainingEventTerms are lowercase substrings that mark a Calendly
	// event as a training session. ExpeditedEventTerms mark the shorter
	// expedited/feedback sessions listed separately on the daily report.
	TrainingEventTerms  []string
	ExpeditedEventTerms []string
	// Gemini
	GeminiAPIKey string
	// Optional Postgres backend for the dedup state store. Empty means
	// flat JSON files under StateDir.
	StateDatabaseURL string
	StateDir         string
	// Pipeline tuning
	TrainingRecencyDays int
	UrgentDays          int
	WarningDays         int
}

// Load reads configuration from the environment and validates required fields.
func Load() (*Config, error) {
	cfg := &Config{
		NotionAPIKey:          os.Getenv("NOTION_API_KEY"),
		CandidateDBID:         os.Getenv("NOTION_DATABASE_ID"),
		OnboardingDBID:        os.Getenv("ONBOARDING_DB_ID"),
		GoogleCredentialsPath: os.Getenv("GOOGLE_CREDENTIALS_PATH"),
		OpsHubSheetID:         os.Getenv("GOOGLE_SHEET_ID"),
		OpsHubSheetGID:        envInt64("SHEET_GID", 102025870),
		FormSheetID:           os.Getenv("FORM_SHEET_ID"),
		FormSheetGID:          envInt64("FORM_SHEET_GID", 0),
		MatchesTabName:        envString("SHEET_MATCHES_TAB_NAME", "Gap Matches"),

		SlackBotToken:           os.Getenv("SLACK_BOT_TOKEN"),
		SlackAdminToken:         os.Getenv("SLACK_ADMIN_TOKEN"),
		SlackTeamID:             os.Getenv("SLACK_TEAM_ID"),
		SlackMatchChannel:       envString("SLACK_CHANNEL", "ops-matching"),
		SlackOnboardingChannel:  os.Getenv("SLACK_ONBOARDING_CHANNEL"),
		SlackOffboardingChannel: os.Getenv("SLACK_OFFBOARDING_CHANNEL"),
		SlackWorkshopChannel:    os.Getenv("SLACK_WORKSHOP_CHANNEL"),

		SMTPHost:      envString("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      int(envInt64("SMTP_PORT", 587)),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		EmailTo:       envString("EMAIL_TO", "talent@kodely.io"),
		EmailCC:       os.Getenv("EMAIL_CC"),
		EmailsEnabled: envBool("EMAILS_ENABLED", true),

		WelcomeCalendlyLink:          os.Getenv("WELCOME_CALENDLY_LINK"),
		WelcomeReturningCalendlyLink: os.Getenv("WELCOME_RETURNING_CALENDLY_LINK"),
		WelcomeChecklistLink:         os.Getenv("WELCOME_NOTION_CHECKLIST_LINK"),
		WelcomeQuizLink:              os.Getenv("WELCOME_QUIZ_LINK"),
		WelcomeAppLink:               os.Getenv("WELCOME_APP_LINK"),
		WelcomeAndroidLink:           os.Getenv("WELCOME_ANDROID_LINK"),

		CheckrAPIKey:  os.Getenv("CHECKR_API_KEY"),
		CheckrPackage: envString("CHECKR_PACKAGE", "tasker_standard"),

		CalendlyAPIToken:    os.Getenv("CALENDLY_API_TOKEN"),
		CalendlyBookingURL:  os.Getenv("CALENDLY_BOOKING_URL"),
		TrainingEventTerms:  envList("CALENDLY_TRAINING_EVENT_NAMES", []string{"training", "dress rehearsal"}),
		ExpeditedEventTerms: envList("CALENDLY_EXPEDITED_EVENT_NAMES", []string{"expedited", "feedback"}),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		StateDatabaseURL: os.Getenv("STATE_DATABASE_URL"),
		StateDir:         envString("STATE_DIR", "."),

		TrainingRecencyDays: int(envInt64("TRAINING_RECENCY_DAYS", 90)),
		UrgentDays:          int(envInt64("OB_URGENT_DAYS", 3)),
		WarningDays:         int(envInt64("OB_WARNING_DAYS", 7)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields using struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
