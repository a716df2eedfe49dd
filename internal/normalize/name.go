package normalize

import (
	"regexp"
	"strings"
)

var (
	emailPattern       = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`)
	parentheticalSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// CleanName recovers a display name from a cell that may mix name, email,
// and scheduling notes (e.g. "Jane Doe jane@x.com (TUES,FRI)"). Returns the
// cleaned name and any email address embedded in the raw string.
func CleanName(raw string) (name, embeddedEmail string) {
	if m := emailPattern.FindString(raw); m != "" {
		embeddedEmail = strings.ToLower(m)
	}
	name = emailPattern.ReplaceAllString(raw, "")
	name = parentheticalSuffix.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name), embeddedEmail
}

// ExtractEmail returns the first email address found in s, lowercased,
// or "" when none is present.
func ExtractEmail(s string) string {
	return strings.ToLower(emailPattern.FindString(s))
}
