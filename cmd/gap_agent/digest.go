package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sri657/interview-gap-matcher/internal/digest"
	"github.com/sri657/interview-gap-matcher/internal/matching"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Email the daily gap match digest",
	Long:  "Build the recruiting-ready HTML digest of every open workshop gap, its matched candidates, and per-region action checklists, and email it to the ops list.",
	RunE:  runDigest,
}

var digestDryRun bool

func init() {
	digestCmd.Flags().BoolVar(&digestDryRun, "dry-run", false, "Print the email instead of sending it")

	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
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
	if len(gaps) == 0 {
		a.logger.Info("no open gaps, skipping digest")
		return nil
	}

	matches := matching.FindMatches(candidates, gaps)
	a.logger.Info("building gap digest", "gaps", len(gaps), "matches", len(matches))

	html, err := digest.BuildHTML(matches, gaps, today)
	if err != nil {
		return err
	}
	subject := digest.Subject(today)

	if digestDryRun {
		fmt.Println("--- DRY RUN: GAP DIGEST EMAIL ---")
		fmt.Printf("Subject: %s\n", subject)
		fmt.Println(html)
		return nil
	}
	if err := a.mailer().SendReport(ctx, a.emailTo(), a.emailCC(), subject, html); err != nil {
		return fmt.Errorf("failed to send gap digest: %w", err)
	}
	return nil
}
