package opshub

import (
	"context"
	"fmt"
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/normalize"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// Form Responses header fragments. Matched case-insensitively by substring
// because the form occasionally gets re-worded.
const (
	formNameHeader       = "full legal name"
	formEmailHeader      = "email"
	formEmailQualifier   = "personal"
	formLocationHeader   = "location"
	formDaysHeader       = "days"
	formWorkPermitHeader = "work permit"
	formUnder18Fragment  = "under 18"
	formOver18Header     = "over the age of 18"
)

var canonicalWeekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// FormClient reads the Leader Confirmation Form Responses sheet.
type FormClient struct {
	sheets *Client
	gid    int64
}

// NewFormClient wraps an existing Sheets client pointed at the form
// responses spreadsheet.
func NewFormClient(sheets *Client, gid int64) *FormClient {
	return &FormClient{sheets: sheets, gid: gid}
}

func headerIndex(header []string, fragments ...string) int {
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		match := true
		for _, frag := range fragments {
			if !strings.Contains(lower, frag) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Emails loads a lowercase-name to email mapping from the form.
// The most recent form entry wins per name.
func (f *FormClient) Emails(ctx context.Context) (map[string]string, error) {
	rows, err := f.sheets.RawValues(ctx, f.gid)
	if err != nil {
		return nil, fmt.Errorf("failed to load form responses: %w", err)
	}
	if len(rows) < 2 {
		return map[string]string{}, nil
	}

	nameCol := headerIndex(rows[0], formNameHeader)
	emailCol := headerIndex(rows[0], formEmailHeader, formEmailQualifier)
	if nameCol < 0 || emailCol < 0 {
		f.sheets.logger.Warn("could not find name/email columns in form responses")
		return map[string]string{}, nil
	}

	mapping := make(map[string]string)
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		email := cellAt(row, emailCol)
		if name != "" && email != "" {
			mapping[strings.ToLower(name)] = email
		}
	}
	return mapping, nil
}

// Minors returns the lowercase names of under-18 leaders, detected from
// the work-permit and over-18 form questions.
func (f *FormClient) Minors(ctx context.Context) (map[string]bool, error) {
	rows, err := f.sheets.RawValues(ctx, f.gid)
	if err != nil {
		return nil, fmt.Errorf("failed to load form responses: %w", err)
	}
	if len(rows) < 2 {
		return map[string]bool{}, nil
	}

	nameCol := headerIndex(rows[0], formNameHeader)
	permitCol := headerIndex(rows[0], formWorkPermitHeader, formUnder18Fragment)
	over18Col := headerIndex(rows[0], formOver18Header)
	if nameCol < 0 {
		return map[string]bool{}, nil
	}

	minors := make(map[string]bool)
	for _, row := range rows[1:] {
		name := strings.ToLower(cellAt(row, nameCol))
		if name == "" {
			continue
		}
		permit := strings.ToLower(cellAt(row, permitCol))
		over18 := strings.ToLower(cellAt(row, over18Col))
		if permit == "yes" || over18 == "no" {
			minors[name] = true
		}
	}
	return minors, nil
}

// Candidates builds form-sourced match candidates, each carrying declared
// locations and weekday availability. Later rows win per identity (the
// form keeps every submission).
func (f *FormClient) Candidates(ctx context.Context) ([]types.Candidate, error) {
	rows, err := f.sheets.RawValues(ctx, f.gid)
	if err != nil {
		return nil, fmt.Errorf("failed to load form responses: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	nameCol := headerIndex(rows[0], formNameHeader)
	emailCol := headerIndex(rows[0], formEmailHeader, formEmailQualifier)
	locCol := headerIndex(rows[0], formLocationHeader)
	daysCol := headerIndex(rows[0], formDaysHeader)
	if nameCol < 0 {
		return nil, nil
	}

	byID := make(map[string]types.Candidate)
	var order []string
	for _, row := range rows[1:] {
		rawName := cellAt(row, nameCol)
		name, embedded := normalize.CleanName(rawName)
		email := strings.ToLower(cellAt(row, emailCol))
		if email == "" {
			email = embedded
		}
		if name == "" && email == "" {
			continue
		}

		id := types.FormCandidateID(email, name)
		cand := types.Candidate{
			ID:            id,
			Name:          name,
			Email:         email,
			Status:        "Form Submitted",
			Source:        types.SourceForm,
			Locations:     splitList(cellAt(row, locCol)),
			AvailableDays: parseWeekdays(cellAt(row, daysCol)),
		}
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = cand
	}

	candidates := make([]types.Candidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, byID[id])
	}
	return candidates, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseWeekdays extracts canonical weekday names from a free-text answer
// like "Mon, Wed, Friday afternoons".
func parseWeekdays(raw string) []string {
	lower := strings.ToLower(raw)
	var days []string
	for _, day := range canonicalWeekdays {
		abbrev := strings.ToLower(day[:3])
		if strings.Contains(lower, strings.ToLower(day)) || hasDayToken(lower, abbrev) {
			days = append(days, day)
		}
	}
	return days
}

// hasDayToken reports whether any word in s starts with the given weekday
// abbreviation, so "Tues" and "Thurs" still match.
func hasDayToken(s, abbrev string) bool {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if strings.HasPrefix(tok, abbrev) {
			return true
		}
	}
	return false
}
