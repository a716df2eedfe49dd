package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/calendly"
	"github.com/sri657/interview-gap-matcher/internal/reminder"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Remind unbooked leaders to schedule training",
	Long:  "Group leaders with no trainer assigned by start week, post the summary report to the onboarding channel, and DM each unbooked leader a Calendly booking link at most once a week.",
	RunE:  runReminder,
}

var (
	reminderDryRun    bool
	reminderEmail     bool
	reminderEmailOnly bool
)

func init() {
	reminderCmd.Flags().BoolVar(&reminderDryRun, "dry-run", false, "Print report and DMs without posting to Slack")
	reminderCmd.Flags().BoolVar(&reminderEmail, "email", false, "Send HTML email in addition to Slack")
	reminderCmd.Flags().BoolVar(&reminderEmailOnly, "email-only", false, "Send HTML email only (no Slack)")

	rootCmd.AddCommand(reminderCmd)
}

func runReminder(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sendSlack := !reminderEmailOnly
	sendHTML := reminderEmail || reminderEmailOnly

	state, err := a.state(ctx, "training_reminder_state.json")
	if err != nil {
		return err
	}

	leaderSvc := a.leaders()
	slack := a.slack()
	svc := &reminder.Service{
		Leaders:          leaderSvc,
		Notifier:         slack,
		DM:               slack,
		Channel:          a.cfg.SlackOnboardingChannel,
		BookingURL:       a.cfg.CalendlyBookingURL,
		ExpeditedTerms:   a.cfg.ExpeditedEventTerms,
		Mailer:           a.mailer(),
		EmailTo:          a.emailTo(),
		EmailCC:          a.emailCC(),
		RemindersEnabled: a.cfg.EmailsEnabled,
		State:            state,
		DryRun:           reminderDryRun,
		Logger:           a.logger,
	}
	if a.cfg.CalendlyAPIToken != "" {
		svc.Sessions = calendly.NewClient(a.cfg.CalendlyAPIToken, a.cfg.TrainingEventTerms, a.logger)
	}

	reminded := 0
	if sendSlack {
		if reminded, err = svc.Run(ctx); err != nil {
			return err
		}
		if !reminderDryRun {
			if err := state.Save(ctx); err != nil {
				return fmt.Errorf("failed to save reminder state: %w", err)
			}
		}
	}

	if sendHTML {
		leaders, err := leaderSvc.LeadersWithoutTrainer(ctx)
		if err != nil {
			return err
		}
		buckets := reminder.GroupByWeek(leaders, time.Now())
		if err := svc.SendEmail(ctx, buckets); err != nil {
			a.logger.Error("failed to send training report email", "error", err)
		}
	}

	a.logger.Info("training reminder complete", "reminded", reminded, "dry_run", reminderDryRun)
	return nil
}
