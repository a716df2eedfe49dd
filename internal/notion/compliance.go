package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/sri657/interview-gap-matcher/internal/types"
)

// complianceStages are the Readiness Status values eligible for a new
// background-check invitation.
var complianceStages = []string{
	"Matched",
	"Onboarding Setup",
	"Background Check Pending",
	"Training In Progress",
}

// LeadersComplianceNotSent queries leaders whose background check has not
// been initiated.
func (c *Client) LeadersComplianceNotSent(ctx context.Context, databaseID string) ([]types.Leader, error) {
	stageFilter := make(notionapi.OrCompoundFilter, 0, len(complianceStages))
	for _, stage := range complianceStages {
		stageFilter = append(stageFilter, notionapi.PropertyFilter{
			Property: PropReadinessStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: stage},
		})
	}
	filter := notionapi.AndCompoundFilter{
		stageFilter,
		notionapi.PropertyFilter{
			Property: PropComplianceStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: "Not Sent"},
		},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// LeadersCompliancePending queries leaders with an invitation out and no
// result yet.
func (c *Client) LeadersCompliancePending(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filter := notionapi.PropertyFilter{
		Property: PropComplianceStatus,
		Select:   &notionapi.SelectFilterCondition{Equals: "Sent"},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// PatchCompliance sets the Compliance Status select.
func (c *Client) PatchCompliance(ctx context.Context, pageID, status string) error {
	return c.PatchSelect(ctx, pageID, PropComplianceStatus, status)
}

// BackfillEmail writes an email onto a card whose Email property is empty.
func (c *Client) BackfillEmail(ctx context.Context, pageID, email string) error {
	_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			PropEmail: notionapi.EmailProperty{Email: email},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to backfill email on page %s: %w", pageID, err)
	}
	return nil
}
