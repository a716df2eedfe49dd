package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/calendly"
)

var calendlyCmd = &cobra.Command{
	Use:   "calendly",
	Short: "Sync training bookings and completions from Calendly",
	Long:  "Match recent Calendly training bookings to onboarding cards, mark finished sessions complete, and announce each transition in Slack once.",
	RunE:  runCalendly,
}

var calendlyDryRun bool

func init() {
	calendlyCmd.Flags().BoolVar(&calendlyDryRun, "dry-run", false, "Print transitions without patching cards")

	rootCmd.AddCommand(calendlyCmd)
}

func runCalendly(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.CalendlyAPIToken == "" {
		return fmt.Errorf("CALENDLY_API_TOKEN is not set")
	}

	state, err := a.state(ctx, "calendly_state.json")
	if err != nil {
		return err
	}

	sync := &calendly.Sync{
		Events:   calendly.NewClient(a.cfg.CalendlyAPIToken, a.cfg.TrainingEventTerms, a.logger),
		Store:    a.leaders(),
		Notifier: a.slack(),
		Channel:  a.cfg.SlackOnboardingChannel,
		State:    state,
		DryRun:   calendlyDryRun,
		Logger:   a.logger,
	}
	booked, completed, err := sync.Run(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("calendly sync complete", "booked", booked, "completed", completed)

	if !calendlyDryRun {
		if err := state.Save(ctx); err != nil {
			return fmt.Errorf("failed to save calendly state: %w", err)
		}
	}
	return nil
}
