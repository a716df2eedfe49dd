package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/tracker"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Track onboarding and offboarding from sheet colors",
	Long:  "Scan the Ops Hub leader cells for color-coded onboarding, compliance, and offboarding events, create or update the matching cards, and alert the ops channels once per event.",
	RunE:  runScan,
}

var scanDryRun bool

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "Detect events and print alerts without posting or creating cards")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sheets, err := a.sheets(ctx)
	if err != nil {
		return fmt.Errorf("failed to open ops hub sheet: %w", err)
	}
	rows, err := sheets.FetchRows(ctx, a.cfg.OpsHubSheetGID)
	if err != nil {
		return err
	}

	events := tracker.ScanRows(rows, time.Now())
	a.logger.Info("scanned leader cells", "rows", len(rows), "events", len(events))
	if len(events) == 0 {
		return nil
	}

	state, err := a.state(ctx, "onboarded.json")
	if err != nil {
		return err
	}

	t := &tracker.Tracker{
		Store:              a.leaders(),
		Notifier:           a.slack(),
		OnboardingChannel:  a.cfg.SlackOnboardingChannel,
		OffboardingChannel: a.cfg.SlackOffboardingChannel,
		State:              state,
		DryRun:             scanDryRun,
		Logger:             a.logger,
	}
	counts, err := t.Process(ctx, events)
	if err != nil {
		return err
	}
	a.logger.Info("tracker run complete",
		"onboarding", counts.Onboarding, "compliance", counts.Compliance,
		"offboarding", counts.Offboarding, "dry_run", scanDryRun)

	if !scanDryRun {
		if err := state.Save(ctx); err != nil {
			return fmt.Errorf("failed to save tracker state: %w", err)
		}
	}
	return nil
}
