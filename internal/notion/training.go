package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/sri657/interview-gap-matcher/internal/types"
)

// LeadersTrainingScheduled queries leaders in Training In Progress whose
// training is booked but not yet complete.
func (c *Client) LeadersTrainingScheduled(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filter := notionapi.AndCompoundFilter{
		notionapi.PropertyFilter{
			Property: PropReadinessStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: "Training In Progress"},
		},
		notionapi.PropertyFilter{
			Property: PropTrainingStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: "Scheduled"},
		},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// PatchTrainingBooked records a training booking: trainer assigned,
// status Scheduled, and optionally the pipeline advance out of
// Onboarding Setup.
func (c *Client) PatchTrainingBooked(ctx context.Context, pageID, trainer string, advance bool) error {
	props := notionapi.Properties{
		PropTrainerAssigned: notionapi.SelectProperty{Select: notionapi.Option{Name: trainer}},
		PropTrainingStatus:  notionapi.SelectProperty{Select: notionapi.Option{Name: "Scheduled"}},
	}
	if advance {
		props[PropReadinessStatus] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: "Training In Progress"},
		}
	}
	_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("failed to record training booking on page %s: %w", pageID, err)
	}
	return nil
}

// MarkTrainingComplete flips Training Status to Complete after the
// session has ended.
func (c *Client) MarkTrainingComplete(ctx context.Context, pageID string) error {
	return c.PatchSelect(ctx, pageID, PropTrainingStatus, "Complete")
}
