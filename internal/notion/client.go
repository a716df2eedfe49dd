package notion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jomei/notionapi"
)

// Property names on the onboarding database.
const (
	PropName             = "Name"
	PropEmail            = "Email"
	PropRegion           = "Region"
	PropStartDate        = "Start Date"
	PropReadinessStatus  = "Readiness Status"
	PropComplianceStatus = "Compliance Status"
	PropGusto            = "Gusto"
	PropSlackInvite      = "Slack Invite"
	PropWorkshopSlack    = "Workshop Slack"
	PropLessonPlan       = "Lesson Plan"
	PropOnboardingEmail  = "Onboarding Email Sent?"
	PropTrainerAssigned  = "Trainer Assigned"
	PropTrainingStatus   = "Training Status"
	PropTrainingOutcome  = "Training Outcome"
	PropReturningLeader  = "Returning Leader?"
	PropBirthdate        = "Birthdate"
	PropSeason           = "Season"
	PropSchoolTeaching   = "School Teaching"
	PropLeaderType       = "Leader Type"
)

// Candidate database property names.
const (
	PropCandidateStatus   = "Status"
	PropCandidateLocation = "Location"
)

// DoneValues are the select values that count a task as complete.
var DoneValues = map[string]bool{
	"Done":     true,
	"Complete": true,
	"Clear":    true,
	"Sent":     true,
	"Yes":      true,
}

// TaskDone reports whether a raw task field value counts as complete.
func TaskDone(value string) bool {
	return DoneValues[value]
}

// AccessFields are the four access-setup properties that gate the move
// from Onboarding Setup to training. Gusto is excluded: payroll gets set
// up when the leader goes ACTIVE.
var AccessFields = []string{
	PropSlackInvite,
	PropWorkshopSlack,
	PropLessonPlan,
	PropOnboardingEmail,
}

// TaskFields maps onboarding task properties to display names for digests.
var TaskFields = map[string]string{
	PropComplianceStatus: "Compliance",
	PropGusto:            "Gusto",
	PropSlackInvite:      "Slack Invite",
	PropWorkshopSlack:    "Workshop Slack",
	PropLessonPlan:       "Lesson Plan",
	PropOnboardingEmail:  "Onboarding Email",
}

// TaskOrder fixes the display order of TaskFields in digest output.
var TaskOrder = []string{
	PropComplianceStatus,
	PropGusto,
	PropSlackInvite,
	PropWorkshopSlack,
	PropLessonPlan,
	PropOnboardingEmail,
}

// Client wraps the Notion API with the query and patch operations the
// workflows use.
type Client struct {
	api    *notionapi.Client
	logger *slog.Logger
}

// NewClient builds a Notion client from an integration token.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: notionapi.NewClient(notionapi.Token(apiKey)), logger: logger}
}

// queryAll pages through a database query until has_more is false.
func (c *Client) queryAll(ctx context.Context, databaseID string, filter notionapi.Filter) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			Filter:      filter,
			PageSize:    100,
			StartCursor: cursor,
		}
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// PatchSelect sets a select property on a page.
func (c *Client) PatchSelect(ctx context.Context, pageID, property, value string) error {
	_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			property: notionapi.SelectProperty{Select: notionapi.Option{Name: value}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to patch %s on page %s: %w", property, pageID, err)
	}
	return nil
}

// PatchStatus sets a status property on a page. Onboarding Email Sent?
// is a status property, not a select.
func (c *Client) PatchStatus(ctx context.Context, pageID, property, value string) error {
	_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			property: notionapi.StatusProperty{Status: notionapi.Option{Name: value}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to patch %s on page %s: %w", property, pageID, err)
	}
	return nil
}

// MarkOnboardingEmailSent flips the Onboarding Email Sent? status to Sent.
func (c *Client) MarkOnboardingEmailSent(ctx context.Context, pageID string) error {
	return c.PatchStatus(ctx, pageID, PropOnboardingEmail, "Sent")
}

// PatchReadiness advances a leader's Readiness Status.
func (c *Client) PatchReadiness(ctx context.Context, pageID, stage string) error {
	return c.PatchSelect(ctx, pageID, PropReadinessStatus, stage)
}

// ClearTrainingFields resets Trainer Assigned, Training Status, and
// Training Outcome for a Fail 1 rebook. The stage is left unchanged.
func (c *Client) ClearTrainingFields(ctx context.Context, pageID string) error {
	_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			PropTrainerAssigned: notionapi.SelectProperty{Select: notionapi.Option{}},
			PropTrainingStatus:  notionapi.SelectProperty{Select: notionapi.Option{}},
			PropTrainingOutcome: notionapi.SelectProperty{Select: notionapi.Option{}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to clear training fields on page %s: %w", pageID, err)
	}
	return nil
}
