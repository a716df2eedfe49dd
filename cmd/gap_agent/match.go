package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sri657/interview-gap-matcher/internal/matching"
	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match candidates to open workshop gaps and announce them",
	Long:  "Scan the Ops Hub sheet for workshop gaps, match them against interview-stage candidates by region and availability, and post each new (candidate, workshop) pair to Slack once.",
	RunE:  runMatch,
}

var (
	matchDryRun     bool
	matchRegion     string
	matchWriteSheet bool
)

func init() {
	matchCmd.Flags().BoolVar(&matchDryRun, "dry-run", false, "Print matches without posting to Slack")
	matchCmd.Flags().StringVar(&matchRegion, "region", "", "Only match workshops in this region (e.g. 'SF', 'Brooklyn')")
	matchCmd.Flags().BoolVar(&matchWriteSheet, "write-sheet", false, "Write current matches to the Gap Matches sheet tab")

	rootCmd.AddCommand(matchCmd)
}

// fetchMatchInputs loads candidates and gaps concurrently. Candidates
// come from the Notion pipeline database plus the hiring form sheet.
func fetchMatchInputs(ctx context.Context, a *app, today time.Time) ([]types.Candidate, []types.Gap, error) {
	sheets, err := a.sheets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ops hub sheet: %w", err)
	}
	notionClient := notion.NewClient(a.cfg.NotionAPIKey, a.logger)

	var candidates []types.Candidate
	var formCandidates []types.Candidate
	var gaps []types.Gap

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = notionClient.MatchableCandidates(gctx, a.cfg.CandidateDBID)
		return err
	})
	g.Go(func() error {
		rows, err := sheets.FetchRows(gctx, a.cfg.OpsHubSheetGID)
		if err != nil {
			return err
		}
		gaps = opshub.ExtractGaps(rows, today)
		return nil
	})
	if a.cfg.FormSheetID != "" {
		g.Go(func() error {
			formSheets, err := opshub.NewClient(gctx, a.cfg.GoogleCredentialsPath, a.cfg.FormSheetID, a.logger)
			if err != nil {
				return err
			}
			formCandidates, err = opshub.NewFormClient(formSheets, a.cfg.FormSheetGID).Candidates(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return append(candidates, formCandidates...), gaps, nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	today := time.Now()
	candidates, gaps, err := fetchMatchInputs(ctx, a, today)
	if err != nil {
		return err
	}
	a.logger.Info("fetched match inputs", "candidates", len(candidates), "gaps", len(gaps))

	if matchRegion != "" {
		want := normalize.Location(matchRegion)
		var filtered []types.Gap
		for _, gap := range gaps {
			if normalize.Location(gap.Region) == want {
				filtered = append(filtered, gap)
			}
		}
		gaps = filtered
		a.logger.Info("filtered gaps by region", "region", matchRegion, "gaps", len(gaps))
	}

	matches := matching.FindMatches(candidates, gaps)
	if len(matches) == 0 {
		a.logger.Info("no new matches found")
		return nil
	}

	state, err := a.state(ctx, "notified.json")
	if err != nil {
		return err
	}

	notify := &matching.Notify{
		Notifier: a.slack(),
		Channel:  a.cfg.SlackMatchChannel,
		State:    state,
		DryRun:   matchDryRun,
		Logger:   a.logger,
	}
	sent, err := notify.Run(ctx, matches)
	if err != nil {
		return err
	}
	if err := state.Save(ctx); err != nil {
		return fmt.Errorf("failed to save notification state: %w", err)
	}

	if matchWriteSheet && !matchDryRun {
		sheets, err := a.sheets(ctx)
		if err != nil {
			return err
		}
		var rows []opshub.MatchRow
		for _, m := range matches {
			for _, gap := range m.Gaps {
				rows = append(rows, opshub.MatchRow{Candidate: m.Candidate, Gap: gap})
			}
		}
		if err := sheets.WriteMatches(ctx, a.cfg.MatchesTabName, rows, today); err != nil {
			a.logger.Error("failed to write matches to sheet", "error", err)
		}
	}

	a.logger.Info("match run complete", "notifications", sent, "dry_run", matchDryRun)
	return nil
}
