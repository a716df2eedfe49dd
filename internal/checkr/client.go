// Package checkr automates background checks: it creates Checkr
// candidates and invitations for leaders whose compliance is Not Sent,
// reuses clear reports from the last year, and polls pending invitations
// until a result lands.
package checkr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.checkr.com/v1"

// maxCandidatePages bounds the full-index scan; 20 pages of 100 covers
// the whole account with room to spare.
const maxCandidatePages = 20

// Candidate is a Checkr candidate record.
type Candidate struct {
	ID        string   `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	ReportIDs []string `json:"report_ids"`
}

// Report is a Checkr background-check report.
type Report struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Result      string `json:"result"`
	CompletedAt string `json:"completed_at"`
}

// Invitation is a Checkr invitation.
type Invitation struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ReportID string `json:"report_id"`
}

// Client is a minimal Checkr REST client. Checkr has no official Go SDK;
// authentication is basic auth with the API key as username.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a Checkr client.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("checkr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("checkr %s %s returned %d: %s", method, path, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode checkr response: %w", err)
	}
	return nil
}

type candidateList struct {
	Data []Candidate `json:"data"`
}

// CandidatesByEmail returns candidates registered under an email.
func (c *Client) CandidatesByEmail(ctx context.Context, email string) ([]Candidate, error) {
	var list candidateList
	if err := c.do(ctx, http.MethodGet, "/candidates", url.Values{"email": {email}}, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// AllCandidates pages through the full candidate list.
func (c *Client) AllCandidates(ctx context.Context) ([]Candidate, error) {
	var all []Candidate
	for page := 1; page <= maxCandidatePages; page++ {
		query := url.Values{
			"per_page": {"100"},
			"page":     {fmt.Sprint(page)},
		}
		var list candidateList
		if err := c.do(ctx, http.MethodGet, "/candidates", query, nil, &list); err != nil {
			return all, err
		}
		if len(list.Data) == 0 {
			break
		}
		all = append(all, list.Data...)
	}
	return all, nil
}

// CreateCandidate registers a new candidate. Returns the candidate id.
func (c *Client) CreateCandidate(ctx context.Context, email, firstName, lastName string) (string, error) {
	body := map[string]any{
		"first_name":     firstName,
		"last_name":      lastName,
		"email":          email,
		"no_middle_name": true,
	}
	var created Candidate
	if err := c.do(ctx, http.MethodPost, "/candidates", nil, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// CreateInvitation sends a background-check invitation with the given
// package and work state. Returns the invitation id.
func (c *Client) CreateInvitation(ctx context.Context, candidateID, pkg, workState string) (string, error) {
	body := map[string]any{
		"candidate_id": candidateID,
		"package":      pkg,
		"work_locations": []map[string]string{
			{"state": workState, "country": "US"},
		},
	}
	var created Invitation
	if err := c.do(ctx, http.MethodPost, "/invitations", nil, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// GetInvitation fetches one invitation.
func (c *Client) GetInvitation(ctx context.Context, invitationID string) (*Invitation, error) {
	var inv Invitation
	if err := c.do(ctx, http.MethodGet, "/invitations/"+invitationID, nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetReport fetches one report.
func (c *Client) GetReport(ctx context.Context, reportID string) (*Report, error) {
	var rep Report
	if err := c.do(ctx, http.MethodGet, "/reports/"+reportID, nil, nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ReportStatus resolves the effective status for an invitation: the
// report status once a report exists, otherwise the invitation status.
func (c *Client) ReportStatus(ctx context.Context, invitationID string) (string, error) {
	inv, err := c.GetInvitation(ctx, invitationID)
	if err != nil {
		return "", err
	}
	if inv.ReportID != "" {
		rep, err := c.GetReport(ctx, inv.ReportID)
		if err == nil {
			return rep.Status, nil
		}
		c.logger.Warn("failed to fetch report, falling back to invitation status",
			"invitation", invitationID, "error", err)
	}
	if inv.Status == "" {
		return "pending", nil
	}
	return inv.Status, nil
}
