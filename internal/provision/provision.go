// Package provision sets up Slack access for leaders in Onboarding
// Setup: a workspace invite through the admin API and a workshop channel
// invite through the bot, with the matching card properties flipped to
// Done.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sri657/interview-gap-matcher/internal/alerting"
	"github.com/sri657/interview-gap-matcher/internal/checkr"
	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/statestore"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// LeaderSource is the onboarding database surface provisioning uses.
type LeaderSource interface {
	LeadersNeedingSlack(ctx context.Context) ([]types.Leader, error)
	PatchSelect(ctx context.Context, pageID, property, value string) error
}

// WorkspaceInviter sends workspace invites. Production is the Slack
// admin API behind a user token.
type WorkspaceInviter interface {
	InviteToWorkspace(ctx context.Context, email, realName string, channelIDs []string) error
}

// ChannelInviter adds existing workspace users to channels.
type ChannelInviter interface {
	UserIDByEmail(ctx context.Context, email string) (string, error)
	InviteToChannel(ctx context.Context, channelID, userID string) error
}

// Result reports which halves of provisioning succeeded for a leader.
type Result struct {
	Workspace bool   `json:"workspace"`
	Channel   bool   `json:"channel"`
	At        string `json:"at,omitempty"`
}

// Service provisions Slack access. Admin nil skips workspace invites,
// WorkshopChannel empty skips channel invites.
type Service struct {
	Leaders         LeaderSource
	Admin           WorkspaceInviter
	Bot             ChannelInviter
	Notifier        alerting.Notifier
	Channel         string
	WorkshopChannel string
	FormEmails      map[string]string
	State           statestore.Store
	DryRun          bool
	Logger          *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Run provisions every leader in Onboarding Setup whose Slack properties
// are not yet Done. Returns the number provisioned.
func (s *Service) Run(ctx context.Context) (int, error) {
	leaders, err := s.Leaders.LeadersNeedingSlack(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query leaders needing slack: %w", err)
	}
	s.logger().Info("leaders needing slack provisioning", slog.Int("count", len(leaders)))

	provisioned := 0
	for _, l := range leaders {
		key := statestore.SlackProvisioned{PageID: l.PageID}
		if s.State.Has(key) {
			continue
		}

		result := s.ProvisionLeader(ctx, l)
		if !result.Workspace && !result.Channel {
			continue
		}
		if s.DryRun {
			provisioned++
			continue
		}

		result.At = statestore.Timestamp()
		if err := s.State.Put(key, result); err != nil {
			s.logger().Error("failed to record slack provisioning", "leader", l.Name, "error", err)
		}
		provisioned++
	}
	return provisioned, nil
}

// ProvisionLeader runs both invites for one leader and posts the
// confirmation alert. Also called from the pipeline's Onboarding Setup
// hook.
func (s *Service) ProvisionLeader(ctx context.Context, l types.Leader) Result {
	email := checkr.ResolveEmail(l, s.FormEmails)
	if email == "" {
		s.logger().Warn("no email for leader, cannot provision slack", slog.String("leader", l.Name))
		return Result{}
	}

	if s.DryRun {
		channel := s.WorkshopChannel
		if channel == "" {
			channel = "(not set)"
		}
		fmt.Printf("--- DRY RUN: SLACK PROVISION ---\n  Leader: %s (%s)\n"+
			"  Workspace invite: admin.users.invite\n  Channel invite: %s\n\n",
			l.Name, email, channel)
		return Result{Workspace: true, Channel: true}
	}

	var result Result
	if s.Admin != nil {
		if err := s.Admin.InviteToWorkspace(ctx, email, l.Name, []string{s.Channel}); err != nil {
			s.logger().Error("workspace invite failed", "leader", l.Name, "error", err)
		} else {
			result.Workspace = true
			if err := s.Leaders.PatchSelect(ctx, l.PageID, notion.PropSlackInvite, "Done"); err != nil {
				s.logger().Error("failed to mark slack invite done", "leader", l.Name, "error", err)
			}
		}
	} else {
		s.logger().Warn("no admin client, skipping workspace invite", slog.String("leader", l.Name))
	}

	if s.Bot != nil && s.WorkshopChannel != "" {
		if err := s.inviteToWorkshopChannel(ctx, email); err != nil {
			s.logger().Warn("workshop channel invite failed", "leader", l.Name, "error", err)
		} else {
			result.Channel = true
			if err := s.Leaders.PatchSelect(ctx, l.PageID, notion.PropWorkshopSlack, "Done"); err != nil {
				s.logger().Error("failed to mark workshop slack done", "leader", l.Name, "error", err)
			}
		}
	} else {
		s.logger().Warn("no bot client or workshop channel, skipping channel invite",
			slog.String("leader", l.Name))
	}

	if result.Workspace || result.Channel {
		s.postConfirmation(ctx, l.Name, email, result)
	}
	return result
}

func (s *Service) inviteToWorkshopChannel(ctx context.Context, email string) error {
	userID, err := s.Bot.UserIDByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.Bot.InviteToChannel(ctx, s.WorkshopChannel, userID)
}

func (s *Service) postConfirmation(ctx context.Context, name, email string, result Result) {
	if s.Notifier == nil {
		return
	}
	steps := ""
	if result.Workspace {
		steps += "- Workspace invite sent"
	}
	if result.Channel {
		if steps != "" {
			steps += "\n"
		}
		steps += "- Added to workshop channel"
	}
	msg := fmt.Sprintf(":busts_in_silhouette: SLACK ACCESS PROVISIONED\n\n"+
		"*Leader:* %s\n*Email:* %s\n\n%s", name, email, steps)
	if err := s.Notifier.Post(ctx, s.Channel, msg); err != nil {
		s.logger().Error("failed to post slack provision alert", "leader", name, "error", err)
	}
}
