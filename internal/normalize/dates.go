package normalize

import (
	"strings"
	"time"
)

// sheetDateFormats is the ordered list of accepted date layouts for Ops Hub
// cells like "November 3, 2025" or "1/14/26". First match wins.
var sheetDateFormats = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
	"1/2/06",
}

// ParseSheetDate parses a human-entered sheet date. Unparseable or empty
// strings return the zero time and false; callers must not treat those
// rows as expired.
func ParseSheetDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range sheetDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseISODate parses the date portion of a Notion date property value
// (ISO 8601, possibly with a time suffix).
func ParseISODate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
