package opshub

import (
	"context"
	"log/slog"
)

// StageColors maps pipeline stages to the cell color painted onto the
// leader's Ops Hub cells on transition. Values sit inside the Classify
// thresholds so a synced cell reads back as the matching class. Stages
// without an entry leave the sheet untouched.
var StageColors = map[string]RGB{
	"Background Check Pending": {R: 0.6, G: 0.4, B: 0.9},
	"Onboarding Setup":         {R: 0.58, G: 0.83, B: 0.45},
}

// SyncLeaderColor recolors every Leader 1/2/3 cell holding the leader's
// name to the stage's mapped color. Returns the number of cells updated;
// unmapped stages are a no-op.
func (c *Client) SyncLeaderColor(ctx context.Context, gid int64, rows [][]string, leaderName, stage string) (int, error) {
	color, ok := StageColors[stage]
	if !ok {
		return 0, nil
	}
	cells := LeaderCells(rows, leaderName)
	updated := 0
	for _, cell := range cells {
		if err := c.UpdateCellColor(ctx, gid, cell.Row, cell.Col, color); err != nil {
			return updated, err
		}
		updated++
	}
	if updated > 0 {
		c.logger.Info("synced leader cell colors",
			slog.String("leader", leaderName), slog.String("stage", stage), slog.Int("cells", updated))
	}
	return updated, nil
}
