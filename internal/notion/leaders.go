package notion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// onboardingStatuses are the Readiness Status values queried for pipeline
// evaluation. "Onboarding" is a legacy value still present on old cards.
var onboardingStatuses = []string{
	"Matched",
	"Background Check Pending",
	"Onboarding Setup",
	"Training In Progress",
	"ACTIVE",
	"Onboarding",
	"Needs Review",
}

// OnboardingLeaders queries every leader in a known pipeline stage and
// deduplicates by page id.
func (c *Client) OnboardingLeaders(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filters := make(notionapi.OrCompoundFilter, 0, len(onboardingStatuses))
	for _, status := range onboardingStatuses {
		filters = append(filters, notionapi.PropertyFilter{
			Property: PropReadinessStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: status},
		})
	}

	pages, err := c.queryAll(ctx, databaseID, filters)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(pages))
	leaders := make([]types.Leader, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		id := string(page.ID)
		if seen[id] {
			continue
		}
		seen[id] = true
		leaders = append(leaders, leaderFromPage(page))
	}

	c.logger.Info("fetched onboarding leaders", slog.Int("count", len(leaders)))
	return leaders, nil
}

// LeadersNeedingWelcome queries Onboarding Setup leaders whose welcome
// email has not gone out yet.
func (c *Client) LeadersNeedingWelcome(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filter := notionapi.AndCompoundFilter{
		notionapi.PropertyFilter{
			Property: PropReadinessStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: "Onboarding Setup"},
		},
		notionapi.OrCompoundFilter{
			notionapi.PropertyFilter{
				Property: PropOnboardingEmail,
				Status:   &notionapi.StatusFilterCondition{IsEmpty: true},
			},
			notionapi.PropertyFilter{
				Property: PropOnboardingEmail,
				Status:   &notionapi.StatusFilterCondition{Equals: "Not Sent"},
			},
		},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// LeadersNeedingSlack queries Onboarding Setup leaders whose Slack invite
// property is empty or Not Done.
func (c *Client) LeadersNeedingSlack(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filter := notionapi.AndCompoundFilter{
		notionapi.PropertyFilter{
			Property: PropReadinessStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: "Onboarding Setup"},
		},
		notionapi.OrCompoundFilter{
			notionapi.PropertyFilter{
				Property: PropSlackInvite,
				Select:   &notionapi.SelectFilterCondition{IsEmpty: true},
			},
			notionapi.PropertyFilter{
				Property: PropSlackInvite,
				Select:   &notionapi.SelectFilterCondition{Equals: "Not Done"},
			},
			notionapi.PropertyFilter{
				Property: PropWorkshopSlack,
				Select:   &notionapi.SelectFilterCondition{IsEmpty: true},
			},
			notionapi.PropertyFilter{
				Property: PropWorkshopSlack,
				Select:   &notionapi.SelectFilterCondition{Equals: "Not Done"},
			},
		},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// LeadersInSetupOrTraining queries the two stages where workshop prep
// notes apply.
func (c *Client) LeadersInSetupOrTraining(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filter := notionapi.OrCompoundFilter{
		notionapi.PropertyFilter{
			Property: PropReadinessStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: "Onboarding Setup"},
		},
		notionapi.PropertyFilter{
			Property: PropReadinessStatus,
			Select:   &notionapi.SelectFilterCondition{Equals: "Training In Progress"},
		},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// LeadersWithoutTrainer queries leaders in the training-adjacent stages
// with no trainer assigned, for the reminder report.
func (c *Client) LeadersWithoutTrainer(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filter := notionapi.AndCompoundFilter{
		notionapi.OrCompoundFilter{
			notionapi.PropertyFilter{
				Property: PropReadinessStatus,
				Select:   &notionapi.SelectFilterCondition{Equals: "Onboarding Setup"},
			},
			notionapi.PropertyFilter{
				Property: PropReadinessStatus,
				Select:   &notionapi.SelectFilterCondition{Equals: "Training In Progress"},
			},
		},
		notionapi.PropertyFilter{
			Property: PropTrainerAssigned,
			Select:   &notionapi.SelectFilterCondition{IsEmpty: true},
		},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// LeadersWithTrainer queries leaders in active stages who already have a
// trainer, for reminder report context.
func (c *Client) LeadersWithTrainer(ctx context.Context, databaseID string) ([]types.Leader, error) {
	filter := notionapi.AndCompoundFilter{
		notionapi.OrCompoundFilter{
			notionapi.PropertyFilter{
				Property: PropReadinessStatus,
				Select:   &notionapi.SelectFilterCondition{Equals: "Onboarding Setup"},
			},
			notionapi.PropertyFilter{
				Property: PropReadinessStatus,
				Select:   &notionapi.SelectFilterCondition{Equals: "Training In Progress"},
			},
		},
		notionapi.PropertyFilter{
			Property: PropTrainerAssigned,
			Select:   &notionapi.SelectFilterCondition{IsNotEmpty: true},
		},
	}

	pages, err := c.queryAll(ctx, databaseID, filter)
	if err != nil {
		return nil, err
	}
	return leadersFromPages(pages), nil
}

// LeaderService binds a client to one onboarding database so pipeline
// callers do not carry the database id through every call.
type LeaderService struct {
	Client     *Client
	DatabaseID string
}

func (s *LeaderService) OnboardingLeaders(ctx context.Context) ([]types.Leader, error) {
	return s.Client.OnboardingLeaders(ctx, s.DatabaseID)
}

func (s *LeaderService) PatchReadiness(ctx context.Context, pageID, stage string) error {
	return s.Client.PatchReadiness(ctx, pageID, stage)
}

func (s *LeaderService) ClearTrainingFields(ctx context.Context, pageID string) error {
	return s.Client.ClearTrainingFields(ctx, pageID)
}

func (s *LeaderService) LeadersNeedingWelcome(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersNeedingWelcome(ctx, s.DatabaseID)
}

func (s *LeaderService) MarkOnboardingEmailSent(ctx context.Context, pageID string) error {
	return s.Client.MarkOnboardingEmailSent(ctx, pageID)
}

func (s *LeaderService) LeadersComplianceNotSent(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersComplianceNotSent(ctx, s.DatabaseID)
}

func (s *LeaderService) LeadersCompliancePending(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersCompliancePending(ctx, s.DatabaseID)
}

func (s *LeaderService) PatchCompliance(ctx context.Context, pageID, status string) error {
	return s.Client.PatchCompliance(ctx, pageID, status)
}

func (s *LeaderService) BackfillEmail(ctx context.Context, pageID, email string) error {
	return s.Client.BackfillEmail(ctx, pageID, email)
}

func (s *LeaderService) LeadersTrainingScheduled(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersTrainingScheduled(ctx, s.DatabaseID)
}

func (s *LeaderService) PatchTrainingBooked(ctx context.Context, pageID, trainer string, advance bool) error {
	return s.Client.PatchTrainingBooked(ctx, pageID, trainer, advance)
}

func (s *LeaderService) MarkTrainingComplete(ctx context.Context, pageID string) error {
	return s.Client.MarkTrainingComplete(ctx, pageID)
}

func (s *LeaderService) AllLeaders(ctx context.Context) ([]types.Leader, error) {
	return s.Client.AllLeaders(ctx, s.DatabaseID)
}

func (s *LeaderService) CreateOnboardingTicket(ctx context.Context, t Ticket) (string, error) {
	return s.Client.CreateOnboardingTicket(ctx, s.DatabaseID, t)
}

func (s *LeaderService) UpdateReturningLeader(ctx context.Context, pageID string, t Ticket) error {
	return s.Client.UpdateReturningLeader(ctx, pageID, t)
}

func (s *LeaderService) CreateOffboardingTicket(ctx context.Context, t Ticket) (string, error) {
	return s.Client.CreateOffboardingTicket(ctx, s.DatabaseID, t)
}

func (s *LeaderService) LeadersNeedingSlack(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersNeedingSlack(ctx, s.DatabaseID)
}

func (s *LeaderService) LeadersWithoutTrainer(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersWithoutTrainer(ctx, s.DatabaseID)
}

func (s *LeaderService) LeadersWithTrainer(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersWithTrainer(ctx, s.DatabaseID)
}

func (s *LeaderService) PatchSelect(ctx context.Context, pageID, property, value string) error {
	return s.Client.PatchSelect(ctx, pageID, property, value)
}

func (s *LeaderService) LeadersInSetupOrTraining(ctx context.Context) ([]types.Leader, error) {
	return s.Client.LeadersInSetupOrTraining(ctx, s.DatabaseID)
}

// WorkshopAssignment reads a leader card's body once and returns the
// workshop assignment section, plus whether a trainer notes section is
// already present.
func (s *LeaderService) WorkshopAssignment(ctx context.Context, pageID string) (string, bool, error) {
	blocks, err := s.Client.PageBlocks(ctx, pageID)
	if err != nil {
		return "", false, err
	}
	return WorkshopAssignmentText(blocks), HasHeadingContaining(blocks, "trainer notes"), nil
}

func (s *LeaderService) AppendTrainerNotes(ctx context.Context, pageID, notes string) error {
	return s.Client.AppendTrainerNotes(ctx, pageID, notes)
}

func leadersFromPages(pages []notionapi.Page) []types.Leader {
	leaders := make([]types.Leader, 0, len(pages))
	for i := range pages {
		leaders = append(leaders, leaderFromPage(&pages[i]))
	}
	return leaders
}

func leaderFromPage(page *notionapi.Page) types.Leader {
	rawName := PropValue(page, PropName)
	name, embeddedEmail := normalize.CleanName(rawName)

	email := strings.ToLower(strings.TrimSpace(PropValue(page, PropEmail)))
	emailOnCard := email != ""
	if email == "" {
		email = embeddedEmail
	}

	leader := types.Leader{
		PageID:          string(page.ID),
		PageURL:         page.URL,
		Name:            name,
		Email:           email,
		EmailOnCard:     emailOnCard,
		Region:          PropValue(page, PropRegion),
		ReadinessStatus: PropValue(page, PropReadinessStatus),
		TrainerAssigned: PropValue(page, PropTrainerAssigned),
		TrainingStatus:  PropValue(page, PropTrainingStatus),
		TrainingOutcome: PropValue(page, PropTrainingOutcome),
		ReturningLeader: PropValue(page, PropReturningLeader) == "Yes",
		TaskFields:      make(map[string]string, len(TaskFields)),
	}
	for prop := range TaskFields {
		leader.TaskFields[prop] = PropValue(page, prop)
	}
	if start, ok := normalize.ParseISODate(PropValue(page, PropStartDate)); ok {
		leader.StartDate = &start
	}
	if dob, ok := normalize.ParseISODate(PropValue(page, PropBirthdate)); ok {
		leader.Birthdate = &dob
	}
	return leader
}
