package checkr

import (
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/types"
)

// ResolveEmail finds a leader's email: the card's own value first, then
// the form sheet by exact name, then by first and last name. Returns ""
// when nothing matches.
func ResolveEmail(l types.Leader, formEmails map[string]string) string {
	if l.Email != "" {
		return l.Email
	}
	name := strings.ToLower(strings.TrimSpace(l.Name))
	if name == "" {
		return ""
	}
	if email, ok := formEmails[name]; ok {
		return email
	}
	if email := matchFirstLast(name, formEmails); email != "" {
		return email
	}
	return ""
}

func matchFirstLast(name string, formEmails map[string]string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return ""
	}
	for formName, email := range formEmails {
		fp := strings.Fields(formName)
		if len(fp) >= 2 && fp[0] == parts[0] && fp[len(fp)-1] == parts[len(parts)-1] {
			return email
		}
	}
	return ""
}

// isMinor reports whether a leader appears in the under-18 set, matching
// exactly or by first and last name. Middle names on either side differ
// often enough that exact-only matching misses real minors.
func isMinor(name string, minors map[string]bool) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if minors[lower] {
		return true
	}
	parts := strings.Fields(lower)
	if len(parts) < 2 {
		return false
	}
	for minor := range minors {
		mp := strings.Fields(minor)
		if len(mp) >= 2 && mp[0] == parts[0] && mp[len(mp)-1] == parts[len(parts)-1] {
			return true
		}
	}
	return false
}

// splitName yields (first, last) from a full name. A single-word name
// becomes (word, "").
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return name, ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}
