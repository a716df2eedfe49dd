// Package types defines the shared domain types passed between packages.
package types

// CandidateSource identifies which system of record a candidate came from.
type CandidateSource string

const (
	SourceNotion CandidateSource = "notion"
	SourceForm   CandidateSource = "form"
)

// Candidate is an instructor candidate eligible for gap matching.
// Recomputed fresh every run; identity is the source record's unique key
// (Notion page id, or "form::<email-or-name>" for form-sourced rows).
type Candidate struct {
	ID        string
	Name      string
	Email     string
	Status    string
	Locations []string
	Source    CandidateSource
	// AvailableDays holds canonical weekday names ("Monday"...) declared on
	// the intake form. Empty for Notion-sourced candidates.
	AvailableDays []string
}

// FormCandidateID builds the synthetic identity for a form-sourced candidate.
func FormCandidateID(email, name string) string {
	if email != "" {
		return "form::" + email
	}
	return "form::" + name
}
