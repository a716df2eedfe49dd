package opshub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/sri657/interview-gap-matcher/internal/types"
)

// matchHeaders are the columns written to the Gap Matches tab.
var matchHeaders = []interface{}{
	"Date", "Region", "Site", "Lesson", "Day", "Time",
	"Start Date", "End Date", "Gap Type", "Candidate", "Email", "Status",
}

// MatchRow pairs a candidate with one of its matched gaps for write-back.
type MatchRow struct {
	Candidate types.Candidate
	Gap       types.Gap
}

// WriteMatches clears and rewrites the matches tab so it always reflects the
// current run's state, creating the tab if it does not exist.
func (c *Client) WriteMatches(ctx context.Context, tabName string, matches []MatchRow, today time.Time) error {
	if err := c.ensureTab(ctx, tabName); err != nil {
		return err
	}

	todayStr := today.Format("2006-01-02")
	values := [][]interface{}{matchHeaders}
	for _, m := range matches {
		values = append(values, []interface{}{
			todayStr,
			m.Gap.Region,
			m.Gap.Site,
			m.Gap.Lesson,
			m.Gap.Day,
			m.Gap.Time,
			m.Gap.StartDate,
			m.Gap.EndDate,
			string(m.Gap.Type),
			m.Candidate.Name,
			m.Candidate.Email,
			m.Candidate.Status,
		})
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, tabName, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear tab %q: %w", tabName, err)
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, tabName+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write matches to %q: %w", tabName, err)
	}

	c.logger.Info("wrote match rows", slog.String("tab", tabName), slog.Int("rows", len(values)-1))
	return nil
}

func (c *Client) ensureTab(ctx context.Context, tabName string) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tabName {
			return nil
		}
	}

	c.logger.Info("creating matches tab", slog.String("tab", tabName))
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: tabName,
					GridProperties: &sheets.GridProperties{
						RowCount:    500,
						ColumnCount: int64(len(matchHeaders)),
					},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create tab %q: %w", tabName, err)
	}
	return nil
}
