// Package calendly syncs training bookings: new bookings assign a
// trainer and advance the card, finished sessions flip Training Status
// to Complete, and the recency lookup lets returning leaders skip
// retraining.
package calendly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.calendly.com"

const (
	maxAttempts      = 3
	defaultRateWait  = 5 * time.Second
	recentEventsSpan = 25 * time.Hour
	completedSpan    = 48 * time.Hour
	historySpan      = 180 * 24 * time.Hour
)

// User is the authenticated Calendly user.
type User struct {
	URI                 string `json:"uri"`
	Name                string `json:"name"`
	CurrentOrganization string `json:"current_organization"`
}

// Event is a scheduled Calendly event.
type Event struct {
	URI              string       `json:"uri"`
	Name             string       `json:"name"`
	StartTime        string       `json:"start_time"`
	EndTime          string       `json:"end_time"`
	EventMemberships []Membership `json:"event_memberships"`
}

// Membership names one host of an event.
type Membership struct {
	UserName string `json:"user_name"`
}

// Invitee is one booked attendee of an event.
type Invitee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Host returns the event's first host name, or Unknown.
func (e *Event) Host() string {
	if len(e.EventMemberships) > 0 && e.EventMemberships[0].UserName != "" {
		return e.EventMemberships[0].UserName
	}
	return "Unknown"
}

// Ended reports whether the event's end time is in the past.
func (e *Event) Ended(now time.Time) bool {
	end, err := time.Parse(time.RFC3339, e.EndTime)
	if err != nil {
		return false
	}
	return end.Before(now)
}

// Client is a minimal Calendly v2 REST client. There is no official Go
// SDK; authentication is a bearer personal access token.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	// TrainingTerms are lowercase substrings that mark an event as a
	// training session.
	TrainingTerms []string
}

// NewClient builds a Calendly client.
func NewClient(token string, trainingTerms []string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		token:         token,
		baseURL:       defaultBaseURL,
		http:          &http.Client{Timeout: 30 * time.Second},
		logger:        logger,
		TrainingTerms: trainingTerms,
	}
}

// get performs one GET with rate-limit retry. A 429 waits for
// Retry-After and tries again, up to maxAttempts.
func (c *Client) get(ctx context.Context, rawURL string, query url.Values, out any) error {
	u := rawURL
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("calendly request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			if attempt == maxAttempts {
				return fmt.Errorf("calendly rate limit persisted after %d attempts", maxAttempts)
			}
			c.logger.Warn("calendly rate limited, waiting",
				slog.Duration("wait", wait), slog.Int("attempt", attempt))
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return fmt.Errorf("calendly GET %s returned %d: %s", rawURL, resp.StatusCode, raw)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode calendly response: %w", err)
		}
		return nil
	}
	return nil
}

func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRateWait
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

// CurrentUser returns the token owner, including the organization URI
// used for org-wide event queries.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var wrapper struct {
		Resource User `json:"resource"`
	}
	if err := c.get(ctx, c.baseURL+"/users/me", nil, &wrapper); err != nil {
		return nil, err
	}
	return &wrapper.Resource, nil
}

type eventList struct {
	Collection []Event `json:"collection"`
}

func (c *Client) scheduledEvents(ctx context.Context, query url.Values) ([]Event, error) {
	var list eventList
	if err := c.get(ctx, c.baseURL+"/scheduled_events", query, &list); err != nil {
		return nil, err
	}
	return list.Collection, nil
}

// isTraining reports whether an event name names a training session.
func (c *Client) isTraining(eventName string) bool {
	lower := strings.ToLower(eventName)
	for _, term := range c.TrainingTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// RecentTrainingEvents fetches org-wide training events started in the
// last 25 hours, covering a daily run with overlap.
func (c *Client) RecentTrainingEvents(ctx context.Context, orgURI string) ([]Event, error) {
	query := url.Values{
		"organization":   {orgURI},
		"min_start_time": {time.Now().UTC().Add(-recentEventsSpan).Format(time.RFC3339)},
		"status":         {"active"},
		"count":          {"100"},
	}
	events, err := c.scheduledEvents(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.filterTraining(events), nil
}

// CompletedTrainingEvents fetches training events from the last 48 hours
// whose end time has passed.
func (c *Client) CompletedTrainingEvents(ctx context.Context, orgURI string) ([]Event, error) {
	now := time.Now().UTC()
	query := url.Values{
		"organization":   {orgURI},
		"min_start_time": {now.Add(-completedSpan).Format(time.RFC3339)},
		"max_start_time": {now.Format(time.RFC3339)},
		"status":         {"active"},
		"count":          {"100"},
	}
	events, err := c.scheduledEvents(ctx, query)
	if err != nil {
		return nil, err
	}

	var completed []Event
	for _, e := range c.filterTraining(events) {
		if e.Ended(now) {
			completed = append(completed, e)
		}
	}
	return completed, nil
}

func (c *Client) filterTraining(events []Event) []Event {
	var out []Event
	for _, e := range events {
		if c.isTraining(e.Name) {
			out = append(out, e)
		}
	}
	return out
}

// Invitees fetches the attendees of one event.
func (c *Client) Invitees(ctx context.Context, eventURI string) ([]Invitee, error) {
	var list struct {
		Collection []Invitee `json:"collection"`
	}
	if err := c.get(ctx, eventURI+"/invitees", nil, &list); err != nil {
		return nil, err
	}
	return list.Collection, nil
}

// LastTraining returns the end time of the leader's most recent finished
// training session within the last six months. Implements the recency
// check the pipeline uses for returning leaders.
func (c *Client) LastTraining(ctx context.Context, orgURI, email string) (time.Time, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return time.Time{}, false, nil
	}

	now := time.Now().UTC()
	query := url.Values{
		"organization":   {orgURI},
		"invitee_email":  {email},
		"min_start_time": {now.Add(-historySpan).Format(time.RFC3339)},
		"status":         {"active"},
		"count":          {"100"},
	}
	events, err := c.scheduledEvents(ctx, query)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to look up training history for %s: %w", email, err)
	}

	var latest time.Time
	found := false
	for _, e := range c.filterTraining(events) {
		end, err := time.Parse(time.RFC3339, e.EndTime)
		if err != nil || !end.Before(now) {
			continue
		}
		if !found || end.After(latest) {
			latest = end
			found = true
		}
	}
	return latest, found, nil
}

// Recency binds a client and organization into the single-method
// interface the pipeline guards consume.
type Recency struct {
	Client *Client
	OrgURI string
}

func (r *Recency) LastTraining(ctx context.Context, email string) (time.Time, bool, error) {
	return r.Client.LastTraining(ctx, r.OrgURI, email)
}
