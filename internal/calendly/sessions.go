package calendly

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Session is one booked attendee of a scheduled event, flattened for the
// daily training report.
type Session struct {
	Invitee   string
	Trainer   string
	Start     time.Time
	EventName string
}

func (c *Client) sessionsFor(ctx context.Context, events []Event) ([]Session, error) {
	var out []Session
	for _, e := range events {
		invitees, err := c.Invitees(ctx, e.URI)
		if err != nil {
			return nil, err
		}
		trainer := e.Host()
		start, _ := time.Parse(time.RFC3339, e.StartTime)
		for _, inv := range invitees {
			name := inv.Name
			if name == "" {
				name = "Unknown"
			}
			out = append(out, Session{
				Invitee:   name,
				Trainer:   trainer,
				Start:     start,
				EventName: e.Name,
			})
		}
	}
	return out, nil
}

// UpcomingTrainingSessions lists training sessions booked in the next
// seven days.
func (c *Client) UpcomingTrainingSessions(ctx context.Context, orgURI string) ([]Session, error) {
	now := time.Now().UTC()
	query := url.Values{
		"organization":   {orgURI},
		"min_start_time": {now.Format(time.RFC3339)},
		"max_start_time": {now.Add(7 * 24 * time.Hour).Format(time.RFC3339)},
		"status":         {"active"},
		"count":          {"100"},
	}
	events, err := c.scheduledEvents(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.sessionsFor(ctx, c.filterTraining(events))
}

// ExpeditedSessions lists upcoming expedited or feedback sessions, which
// use their own event names.
func (c *Client) ExpeditedSessions(ctx context.Context, orgURI string, terms []string) ([]Session, error) {
	query := url.Values{
		"organization":   {orgURI},
		"min_start_time": {time.Now().UTC().Format(time.RFC3339)},
		"status":         {"active"},
		"count":          {"100"},
	}
	events, err := c.scheduledEvents(ctx, query)
	if err != nil {
		return nil, err
	}

	var matched []Event
	for _, e := range events {
		lower := strings.ToLower(e.Name)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				matched = append(matched, e)
				break
			}
		}
	}
	return c.sessionsFor(ctx, matched)
}
