package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/config"
	"github.com/sri657/interview-gap-matcher/internal/mailing"
	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
)

// app bundles the run-scoped dependencies every subcommand starts from.
// Each run gets a fresh uuid stamped on all log lines.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	closers []func()
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, closeLog := config.SetupLogger(os.Getenv("LOG_FILE"), slog.LevelInfo)
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = closeLog() })
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// state opens the workflow's dedup store: Postgres when
// STATE_DATABASE_URL is set, a flat JSON file otherwise.
func (a *app) state(ctx context.Context, filename string) (statestore.Store, error) {
	store, closeStore, err := statestore.Open(ctx, a.cfg.StateDatabaseURL, a.cfg.StateDir, filename, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)
	return store, nil
}

func (a *app) slack() *alerting.Slack {
	return alerting.New(a.cfg.SlackBotToken, a.logger)
}

func (a *app) sheets(ctx context.Context) (*opshub.Client, error) {
	return opshub.NewClient(ctx, a.cfg.GoogleCredentialsPath, a.cfg.OpsHubSheetID, a.logger)
}

func (a *app) leaders() *notion.LeaderService {
	return &notion.LeaderService{
		Client:     notion.NewClient(a.cfg.NotionAPIKey, a.logger),
		DatabaseID: a.cfg.OnboardingDBID,
	}
}

func (a *app) mailer() *mailing.Sender {
	return mailing.NewSender(a.cfg.SMTPHost, a.cfg.SMTPPort, a.cfg.SMTPUser,
		a.cfg.SMTPPassword, a.cfg.EmailFrom, a.cfg.EmailsEnabled, a.logger)
}

// forms opens the hiring form responses sheet, or returns nil when no
// form sheet is configured or the sheet cannot be reached.
func (a *app) forms(ctx context.Context) *opshub.FormClient {
	if a.cfg.FormSheetID == "" {
		return nil
	}
	sheets, err := opshub.NewClient(ctx, a.cfg.GoogleCredentialsPath, a.cfg.FormSheetID, a.logger)
	if err != nil {
		a.logger.Warn("failed to open form sheet", "error", err)
		return nil
	}
	return opshub.NewFormClient(sheets, a.cfg.FormSheetGID)
}

// formEmails loads the name to email map from the hiring form sheet.
// No form sheet configured means an empty map, never an error.
func (a *app) formEmails(ctx context.Context) map[string]string {
	forms := a.forms(ctx)
	if forms == nil {
		return nil
	}
	emails, err := forms.Emails(ctx)
	if err != nil {
		a.logger.Warn("failed to load form emails", "error", err)
		return nil
	}
	return emails
}

func (a *app) emailTo() []string {
	return splitAddrs(a.cfg.EmailTo)
}

func (a *app) emailCC() []string {
	return splitAddrs(a.cfg.EmailCC)
}

func splitAddrs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
