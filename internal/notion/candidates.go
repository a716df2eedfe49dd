package notion

import (
	"context"
	"log/slog"

	"github.com/jomei/notionapi"

	"github.com/sri657/interview-gap-matcher/internal/types"
)

// MatchableStatuses are the candidate pipeline stages eligible for gap
// matching.
var MatchableStatuses = []string{
	"\U0001F3B3 Team screening",
	"Talent Screen",
	"Teaching Demo",
}

// MatchableCandidates queries the candidate database for everyone in a
// match-ready status.
func (c *Client) MatchableCandidates(ctx context.Context, databaseID string) ([]types.Candidate, error) {
	filters := make(notionapi.OrCompoundFilter, 0, len(MatchableStatuses))
	for _, status := range MatchableStatuses {
		filters = append(filters, notionapi.PropertyFilter{
			Property: PropCandidateStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: status},
		})
	}

	pages, err := c.queryAll(ctx, databaseID, filters)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.Candidate, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		candidates = append(candidates, types.Candidate{
			ID:        string(page.ID),
			Name:      PropValue(page, PropName),
			Email:     PropValue(page, PropEmail),
			Status:    PropValue(page, PropCandidateStatus),
			Locations: MultiSelectValues(page, PropCandidateLocation),
			Source:    types.SourceNotion,
		})
	}

	c.logger.Info("fetched matchable candidates", slog.Int("count", len(candidates)))
	return candidates, nil
}
