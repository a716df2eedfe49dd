package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/checkr"
)

var checkrCmd = &cobra.Command{
	Use:   "checkr",
	Short: "Send and poll background checks",
	Long:  "Invite every leader whose compliance is Not Sent to a Checkr background check, then poll pending invitations and patch cleared statuses back onto their cards.",
	RunE:  runCheckr,
}

var (
	checkrDryRun   bool
	checkrPollOnly bool
	checkrSendOnly bool
)

func init() {
	checkrCmd.Flags().BoolVar(&checkrDryRun, "dry-run", false, "Print actions without inviting or patching")
	checkrCmd.Flags().BoolVar(&checkrPollOnly, "poll-only", false, "Only poll pending invitations")
	checkrCmd.Flags().BoolVar(&checkrSendOnly, "send-only", false, "Only send new invitations")

	rootCmd.AddCommand(checkrCmd)
}

func runCheckr(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.CheckrAPIKey == "" {
		return fmt.Errorf("CHECKR_API_KEY is not set")
	}

	state, err := a.state(ctx, "checkr_state.json")
	if err != nil {
		return err
	}

	var minors map[string]bool
	if forms := a.forms(ctx); forms != nil {
		if minors, err = forms.Minors(ctx); err != nil {
			a.logger.Warn("failed to load minor flags from form", "error", err)
			minors = nil
		}
	}

	sync := &checkr.Sync{
		API:        checkr.NewClient(a.cfg.CheckrAPIKey, a.logger),
		Store:      a.leaders(),
		Package:    a.cfg.CheckrPackage,
		FormEmails: a.formEmails(ctx),
		FormMinors: minors,
		Notifier:   a.slack(),
		Channel:    a.cfg.SlackOnboardingChannel,
		Mailer:     a.mailer(),
		State:      state,
		DryRun:     checkrDryRun,
		Logger:     a.logger,
	}

	if !checkrPollOnly {
		sent, err := sync.SendInvitations(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("background check invitations processed", "count", sent)
	}
	if !checkrSendOnly {
		cleared, err := sync.PollPending(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("pending background checks polled", "cleared", cleared)
	}

	if !checkrDryRun {
		if err := state.Save(ctx); err != nil {
			return fmt.Errorf("failed to save checkr state: %w", err)
		}
	}
	return nil
}
