package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/llm"
	"github.com/sri657/interview-gap-matcher/internal/notes"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Generate trainer prep notes on onboarding cards",
	Long:  "Generate a trainer prep notes section for every leader in setup or training whose card doesn't have one yet, using the lesson context from the workshop assignment.",
	RunE:  runNotes,
}

var (
	notesDryRun bool
	notesLimit  int
)

func init() {
	notesCmd.Flags().BoolVar(&notesDryRun, "dry-run", false, "Print generated notes without writing to cards")
	notesCmd.Flags().IntVar(&notesLimit, "limit", 0, "Generate notes for at most this many cards (0 = no limit)")

	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	gemini, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), a.cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	a.closers = append(a.closers, func() { _ = gemini.Close() })

	state, err := a.state(ctx, "trainer_notes_state.json")
	if err != nil {
		return err
	}

	svc := &notes.Service{
		Store:     a.leaders(),
		Generator: gemini,
		State:     state,
		Limit:     notesLimit,
		DryRun:    notesDryRun,
		Logger:    a.logger,
	}
	generated, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("trainer notes run complete", "generated", generated, "dry_run", notesDryRun)

	if !notesDryRun {
		if err := state.Save(ctx); err != nil {
			return fmt.Errorf("failed to save trainer notes state: %w", err)
		}
	}
	return nil
}
