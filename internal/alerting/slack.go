// Package alerting posts operator-facing Slack messages and provisions
// Slack access for new leaders.
package alerting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/slack-go/slack"
)

const (
	maxAttempts      = 3
	defaultRetryWait = 5 * time.Second
)

// Notifier is the outbound message surface the workflows depend on.
// Production uses Slack; tests substitute a recorder.
type Notifier interface {
	Post(ctx context.Context, channel, text string) error
}

// Slack wraps the Slack Web API with rate-limit retries.
type Slack struct {
	api    *slack.Client
	logger *slog.Logger
}

// New builds a Slack client from a bot token.
func New(botToken string, logger *slog.Logger) *Slack {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slack{api: slack.New(botToken), logger: logger}
}

// Post sends a message to a channel, retrying rate-limited sends with the
// server-advised wait. The wait is cancellable through ctx.
func (s *Slack) Post(ctx context.Context, channel, text string) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		_, _, err := s.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
		if err == nil {
			return nil
		}
		lastErr = err

		var rle *slack.RateLimitedError
		if errors.As(err, &rle) && attempt < maxAttempts-1 {
			wait := rle.RetryAfter
			if wait <= 0 {
				wait = defaultRetryWait
			}
			s.logger.Warn("slack rate limited, waiting", slog.Duration("wait", wait))
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}
		break
	}
	return fmt.Errorf("failed to post to slack channel %s: %w", channel, lastErr)
}

// UserIDByEmail looks up a workspace user id from an email address.
func (s *Slack) UserIDByEmail(ctx context.Context, email string) (string, error) {
	user, err := s.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up slack user for %s: %w", email, err)
	}
	return user.ID, nil
}

// InviteToChannel adds a user to a channel. Already being in the channel
// counts as success.
func (s *Slack) InviteToChannel(ctx context.Context, channelID, userID string) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		_, err := s.api.InviteUsersToConversationContext(ctx, channelID, userID)
		if err == nil || err.Error() == "already_in_channel" {
			return nil
		}
		lastErr = err

		var rle *slack.RateLimitedError
		if errors.As(err, &rle) && attempt < maxAttempts-1 {
			wait := rle.RetryAfter
			if wait <= 0 {
				wait = defaultRetryWait
			}
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}
		break
	}
	return fmt.Errorf("failed to invite user %s to channel %s: %w", userID, channelID, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
