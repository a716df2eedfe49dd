package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Onboarding ticket defaults written at creation.
const (
	currentSeason     = "Winter 2026"
	defaultLeaderRole = "Leader"
)

var offboardingChecklist = []string{
	"Remove from Gusto",
	"Remove from Slack workspace",
	"Remove LearnDash access",
	"Remove from Workshop Slack channel",
	"Notify team of departure",
}

// Ticket carries the sheet-derived fields for a new onboarding or
// offboarding card.
type Ticket struct {
	Name      string
	Region    string
	Site      string
	StartDate string
}

// AllLeaders fetches every card in the onboarding database, regardless
// of stage. Used to detect returning leaders before creating a ticket.
func (c *Client) AllLeaders(ctx context.Context, databaseID string) ([]types.Leader, error) {
	pages, err := c.queryAll(ctx, databaseID, nil)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

func (t Ticket) startDateProperty() (notionapi.DateProperty, bool) {
	parsed, ok := normalize.ParseSheetDate(t.StartDate)
	if !ok {
		return notionapi.DateProperty{}, false
	}
	d := notionapi.Date(parsed)
	return notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}, true
}

func (t Ticket) baseProperties(stage string) notionapi.Properties {
	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Title: []notionapi.RichText{textRun(t.Name)},
		},
		PropSeason:          notionapi.SelectProperty{Select: notionapi.Option{Name: currentSeason}},
		PropReadinessStatus: notionapi.SelectProperty{Select: notionapi.Option{Name: stage}},
		PropSchoolTeaching: notionapi.MultiSelectProperty{
			MultiSelect: []notionapi.Option{{Name: t.Site}},
		},
		PropLeaderType: notionapi.SelectProperty{Select: notionapi.Option{Name: defaultLeaderRole}},
	}
	if t.Region != "" {
		props[PropRegion] = notionapi.SelectProperty{Select: notionapi.Option{Name: t.Region}}
	}
	if date, ok := t.startDateProperty(); ok {
		props[PropStartDate] = date
	}
	return props
}

// CreateOnboardingTicket creates a new onboarding card for a leader
// detected on the Ops Hub sheet, starting at Matched with compliance
// Not Sent. Returns the new page URL.
func (c *Client) CreateOnboardingTicket(ctx context.Context, databaseID string, t Ticket) (string, error) {
	props := t.baseProperties("Matched")
	props[PropComplianceStatus] = notionapi.SelectProperty{Select: notionapi.Option{Name: "Not Sent"}}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create onboarding ticket for %s: %w", t.Name, err)
	}
	return page.URL, nil
}

// UpdateReturningLeader repurposes an existing card for a new school
// assignment: trainer cleared, stage reset, school and start date
// replaced.
func (c *Client) UpdateReturningLeader(ctx context.Context, pageID string, t Ticket) error {
	props := notionapi.Properties{
		PropReadinessStatus: notionapi.SelectProperty{
			Select: notionapi.Option{Name: "Returning Leader- Onboarding Needed"},
		},
		PropTrainerAssigned: notionapi.SelectProperty{Select: notionapi.Option{}},
		PropSchoolTeaching: notionapi.MultiSelectProperty{
			MultiSelect: []notionapi.Option{{Name: t.Site}},
		},
	}
	if t.Region != "" {
		props[PropRegion] = notionapi.SelectProperty{Select: notionapi.Option{Name: t.Region}}
	}
	if date, ok := t.startDateProperty(); ok {
		props[PropStartDate] = date
	}

	_, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("failed to update returning leader card for %s: %w", t.Name, err)
	}
	return nil
}

// CreateOffboardingTicket creates an offboarding card carrying a to-do
// checklist of the removal steps. Returns the new page URL.
func (c *Client) CreateOffboardingTicket(ctx context.Context, databaseID string, t Ticket) (string, error) {
	children := make([]notionapi.Block, 0, len(offboardingChecklist))
	for _, item := range offboardingChecklist {
		children = append(children, &notionapi.ToDoBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeToDo,
			},
			ToDo: notionapi.ToDo{
				RichText: []notionapi.RichText{textRun(item)},
				Checked:  false,
			},
		})
	}

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: t.baseProperties("Offboarding Needed"),
		Children:   children,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create offboarding ticket for %s: %w", t.Name, err)
	}
	return page.URL, nil
}
