package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/provision"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Invite onboarding leaders to Slack",
	Long:  "Invite every leader past compliance to the Slack workspace and the workshop leaders channel, then mark the card's Slack tasks.",
	RunE:  runProvision,
}

var provisionDryRun bool

func init() {
	provisionCmd.Flags().BoolVar(&provisionDryRun, "dry-run", false, "Print invites without sending")

	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.state(ctx, "slack_provision_state.json")
	if err != nil {
		return err
	}

	svc := &provision.Service{
		Leaders:         a.leaders(),
		Bot:             a.slack(),
		Notifier:        a.slack(),
		Channel:         a.cfg.SlackOnboardingChannel,
		WorkshopChannel: a.cfg.SlackWorkshopChannel,
		FormEmails:      a.formEmails(ctx),
		State:           state,
		DryRun:          provisionDryRun,
		Logger:          a.logger,
	}
	if a.cfg.SlackAdminToken != "" {
		svc.Admin = alerting.NewAdmin(a.cfg.SlackAdminToken, a.cfg.SlackTeamID, a.logger)
	} else {
		a.logger.Warn("SLACK_ADMIN_TOKEN not set, skipping workspace invites")
	}

	provisioned, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("slack provisioning complete", "provisioned", provisioned, "dry_run", provisionDryRun)

	if !provisionDryRun {
		if err := state.Save(ctx); err != nil {
			return fmt.Errorf("failed to save provisioning state: %w", err)
		}
	}
	return nil
}
