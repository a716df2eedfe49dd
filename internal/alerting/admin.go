package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const adminInviteURL = "https://slack.com/api/admin.users.invite"

// Admin performs workspace invites, which need a user token with the
// admin.users:write scope. The Web API library does not cover this
// endpoint, so the call goes straight to the HTTP API.
type Admin struct {
	token  string
	teamID string
	http   *http.Client
	logger *slog.Logger
}

// NewAdmin builds an admin client. teamID identifies the workspace the
// invites target.
func NewAdmin(token, teamID string, logger *slog.Logger) *Admin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{
		token:  token,
		teamID: teamID,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type slackAPIResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// InviteToWorkspace invites an email to the workspace, landing them in the
// given channels. Already being invited or in the team counts as success.
func (a *Admin) InviteToWorkspace(ctx context.Context, email, realName string, channelIDs []string) error {
	if a.teamID == "" {
		return fmt.Errorf("slack team id not configured, cannot invite to workspace")
	}

	form := url.Values{
		"team_id":     {a.teamID},
		"email":       {email},
		"channel_ids": {strings.Join(channelIDs, ",")},
		"real_name":   {realName},
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, adminInviteURL, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to build invite request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+a.token)

		resp, err := a.http.Do(req)
		if err != nil {
			lastErr = err
			break
		}

		var body slackAPIResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		retryAfter := resp.Header.Get("Retry-After")
		resp.Body.Close()
		if decodeErr != nil {
			lastErr = fmt.Errorf("failed to decode invite response: %w", decodeErr)
			break
		}

		if body.OK {
			return nil
		}
		switch body.Error {
		case "already_invited", "already_in_team":
			a.logger.Info("user already in workspace, treating invite as success", slog.String("email", email))
			return nil
		case "ratelimited":
			if attempt < maxAttempts-1 {
				wait := 10 * time.Second
				if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
					wait = time.Duration(secs) * time.Second
				}
				a.logger.Warn("slack admin api rate limited, waiting", slog.Duration("wait", wait))
				if err := sleepCtx(ctx, wait); err != nil {
					return err
				}
				continue
			}
		}
		lastErr = fmt.Errorf("slack error: %s", body.Error)
		break
	}
	return fmt.Errorf("failed to invite %s to workspace: %w", email, lastErr)
}
