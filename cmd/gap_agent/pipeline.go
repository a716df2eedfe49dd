package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/calendly"
	"github.com/sri657/interview-gap-matcher/internal/llm"
	"github.com/sri657/interview-gap-matcher/internal/mailing"
	"github.com/sri657/interview-gap-matcher/internal/notes"
	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/pipeline"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/welcome"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the onboarding digest, compliance alerts, and stage advances",
	Long:  "Post the daily onboarding status digest, escalate overdue compliance, advance leaders through the pipeline stages, and fire the per-stage automations.",
	RunE:  runPipeline,
}

var (
	pipelineDryRun         bool
	pipelineDigestOnly     bool
	pipelineComplianceOnly bool
	pipelineEmail          bool
	pipelineEmailOnly      bool
	pipelineDetailed       bool
)

func init() {
	pipelineCmd.Flags().BoolVar(&pipelineDryRun, "dry-run", false, "Print, don't post or patch")
	pipelineCmd.Flags().BoolVar(&pipelineDigestOnly, "digest-only", false, "Only run the morning digest")
	pipelineCmd.Flags().BoolVar(&pipelineComplianceOnly, "compliance-only", false, "Only run compliance checks and pipeline advances")
	pipelineCmd.Flags().BoolVar(&pipelineEmail, "email", false, "Send the HTML report in addition to Slack")
	pipelineCmd.Flags().BoolVar(&pipelineEmailOnly, "email-only", false, "Send the HTML report only (no Slack)")
	pipelineCmd.Flags().BoolVar(&pipelineDetailed, "detailed", false, "Email the per-task detailed board instead of the summary report")

	rootCmd.AddCommand(pipelineCmd)
}

// recencyAdapter binds the Calendly client to one organization so the
// pipeline guards can ask about a single email.
type recencyAdapter struct {
	client *calendly.Client
	orgURI string
}

func (r *recencyAdapter) LastTraining(ctx context.Context, email string) (time.Time, bool, error) {
	return r.client.LastTraining(ctx, r.orgURI, email)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	runDigest := !pipelineComplianceOnly
	runCompliance := !pipelineDigestOnly
	sendSlack := !pipelineEmailOnly
	sendHTML := pipelineEmail || pipelineEmailOnly

	leaderSvc := a.leaders()
	leaders, err := leaderSvc.OnboardingLeaders(ctx)
	if err != nil {
		return err
	}
	if len(leaders) == 0 {
		a.logger.Info("no onboarding leaders found")
		return nil
	}

	sheets, err := a.sheets(ctx)
	if err != nil {
		return err
	}
	sheetRows, err := sheets.RawValues(ctx, a.cfg.OpsHubSheetGID)
	if err != nil {
		return fmt.Errorf("failed to load ops hub rows: %w", err)
	}
	a.logger.Info("loaded ops hub rows", "rows", len(sheetRows))

	workshops := make(map[string][]opshub.Workshop, len(leaders))
	for _, l := range leaders {
		if l.Name != "" {
			workshops[l.Name] = opshub.LeaderWorkshops(sheetRows, l.Name)
		}
	}

	today := time.Now()
	slack := a.slack()

	if runDigest {
		a.logger.Info("building daily digest", "leaders", len(leaders))
		if sendSlack {
			msg := pipeline.BuildDigestMessage(leaders, workshops, today, a.cfg.UrgentDays, a.cfg.WarningDays)
			if pipelineDryRun {
				fmt.Println("--- DRY RUN: DAILY DIGEST ---")
				fmt.Println(msg)
				fmt.Println()
			} else if err := slack.Post(ctx, a.cfg.SlackOnboardingChannel, msg); err != nil {
				a.logger.Error("failed to post daily digest", "error", err)
			}
		}
		if sendHTML {
			build := pipeline.BuildDigestEmailHTML
			if pipelineDetailed {
				build = pipeline.BuildDetailedReportHTML
			}
			html, err := build(leaders, workshops, today, a.cfg.UrgentDays, a.cfg.WarningDays)
			if err != nil {
				return err
			}
			subject := pipeline.DigestSubject(today)
			if pipelineDryRun {
				fmt.Println("--- DRY RUN: ONBOARDING EMAIL ---")
				fmt.Printf("Subject: %s\n", subject)
				fmt.Println(html)
			} else if err := a.mailer().SendReport(ctx, a.emailTo(), a.emailCC(), subject, html); err != nil {
				a.logger.Error("failed to send onboarding report", "error", err)
			}
		}
	}

	if !runCompliance {
		return nil
	}

	state, err := a.state(ctx, "digest_state.json")
	if err != nil {
		return err
	}

	alerts := pipeline.ComplianceAlerts(leaders, state, today, a.cfg.UrgentDays, a.cfg.WarningDays)
	if len(alerts) > 0 {
		a.logger.Info("compliance alerts generated", "count", len(alerts))
	}
	for _, alert := range alerts {
		if pipelineDryRun {
			fmt.Println("--- DRY RUN: COMPLIANCE ALERT ---")
			fmt.Println(alert)
			fmt.Println()
			continue
		}
		if err := slack.Post(ctx, a.cfg.SlackOnboardingChannel, alert); err != nil {
			a.logger.Error("failed to post compliance alert", "error", err)
		}
	}

	env := pipeline.Env{Now: today, RecencyDays: a.cfg.TrainingRecencyDays}
	if a.cfg.CalendlyAPIToken != "" {
		cal := calendly.NewClient(a.cfg.CalendlyAPIToken, a.cfg.TrainingEventTerms, a.logger)
		if user, err := cal.CurrentUser(ctx); err != nil {
			a.logger.Warn("could not connect to calendly, training recency checks skipped", "error", err)
		} else {
			env.Recency = &recencyAdapter{client: cal, orgURI: user.CurrentOrganization}
		}
	}

	runner := &pipeline.Runner{
		Leaders:   leaderSvc,
		Notifier:  slack,
		Channel:   a.cfg.SlackOnboardingChannel,
		State:     state,
		Hooks:     a.stageHooks(ctx, state, leaderSvc, slack),
		Env:       env,
		SheetRows: sheetRows,
		ColorSync: func(ctx context.Context, leaderName string, stage pipeline.Stage) error {
			_, err := sheets.SyncLeaderColor(ctx, a.cfg.OpsHubSheetGID, sheetRows, leaderName, stage.String())
			return err
		},
		DryRun: pipelineDryRun,
		Logger: a.logger,
	}

	transitions, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if len(transitions) > 0 {
		a.logger.Info("pipeline advanced", "count", len(transitions))
	} else {
		a.logger.Info("no pipeline transitions")
	}

	if catchups := runner.CatchUpHooks(ctx, leaders); len(catchups) > 0 {
		a.logger.Info("catch-up hooks fired", "count", len(catchups))
	}

	if !pipelineDryRun {
		if err := state.Save(ctx); err != nil {
			return fmt.Errorf("failed to save digest state: %w", err)
		}
	}
	a.logger.Info("pipeline run complete", "dry_run", pipelineDryRun)
	return nil
}

// stageHooks wires the production hook implementations. A missing
// Gemini key leaves notes generation off; everything else degrades the
// same way its standalone subcommand would.
func (a *app) stageHooks(ctx context.Context, state statestore.Store, leaderSvc *notion.LeaderService, slack *alerting.Slack) *pipeline.StageHooks {
	mailer := a.mailer()
	hooks := &pipeline.StageHooks{
		Welcome: &welcome.Service{
			Leaders:    leaderSvc,
			Mailer:     mailer,
			Links:      a.welcomeLinks(),
			FormEmails: a.formEmails(ctx),
			Notifier:   slack,
			Channel:    a.cfg.SlackOnboardingChannel,
			State:      state,
			DryRun:     pipelineDryRun,
			Logger:     a.logger,
		},
		Tasks:      leaderSvc,
		Mailer:     mailer,
		BookingURL: a.cfg.CalendlyBookingURL,
		State:      state,
		Logger:     a.logger,
	}
	if a.cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), a.cfg.GeminiAPIKey)
		if err != nil {
			a.logger.Warn("failed to create gemini client, trainer notes disabled", "error", err)
		} else {
			a.closers = append(a.closers, func() { _ = gemini.Close() })
			hooks.Notes = &notes.Service{
				Store:     leaderSvc,
				Generator: gemini,
				State:     state,
				DryRun:    pipelineDryRun,
				Logger:    a.logger,
			}
		}
	}
	return hooks
}

func (a *app) welcomeLinks() mailing.Links {
	return mailing.Links{
		Calendly:          a.cfg.WelcomeCalendlyLink,
		ReturningCalendly: a.cfg.WelcomeReturningCalendlyLink,
		Checklist:         a.cfg.WelcomeChecklistLink,
		Quiz:              a.cfg.WelcomeQuizLink,
		AppStore:          a.cfg.WelcomeAppLink,
		PlayStore:         a.cfg.WelcomeAndroidLink,
	}
}
