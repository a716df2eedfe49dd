package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/welcome"
)

var welcomeCmd = &cobra.Command{
	Use:   "welcome",
	Short: "Send welcome emails to new leaders",
	Long:  "Email every leader whose card is past compliance but has no welcome email sent, mark the card, and announce each send in Slack.",
	RunE:  runWelcome,
}

var welcomeDryRun bool

func init() {
	welcomeCmd.Flags().BoolVar(&welcomeDryRun, "dry-run", false, "Print emails without sending")

	rootCmd.AddCommand(welcomeCmd)
}

func runWelcome(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.state(ctx, "welcome_email_state.json")
	if err != nil {
		return err
	}

	svc := &welcome.Service{
		Leaders:    a.leaders(),
		Mailer:     a.mailer(),
		Links:      a.welcomeLinks(),
		FormEmails: a.formEmails(ctx),
		Notifier:   a.slack(),
		Channel:    a.cfg.SlackOnboardingChannel,
		State:      state,
		DryRun:     welcomeDryRun,
		Logger:     a.logger,
	}
	sent, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("welcome run complete", "sent", sent, "dry_run", welcomeDryRun)

	if !welcomeDryRun {
		if err := state.Save(ctx); err != nil {
			return fmt.Errorf("failed to save welcome state: %w", err)
		}
	}
	return nil
}
