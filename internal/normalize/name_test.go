package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantEmail string
	}{
		{"plain name", "Jane Doe", "Jane Doe", ""},
		{"embedded email", "Jane Doe jane.doe@example.com", "Jane Doe", "jane.doe@example.com"},
		{"email uppercased", "Jane JANE@Example.COM", "Jane", "jane@example.com"},
		{"trailing parenthetical", "Jane Doe (TUES,FRI)", "Jane Doe", ""},
		{"email and parenthetical", "Jane Doe jane@x.io (sub only)", "Jane Doe", "jane@x.io"},
		{"collapsed whitespace", "Jane\n  Doe", "Jane Doe", ""},
		{"empty", "", "", ""},
		{"email only", "jane@x.io", "", "jane@x.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, email := CleanName(tt.input)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantEmail, email)
		})
	}
}

func TestParseSheetDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   string
	}{
		{"long month", "November 3, 2025", true, "2025-11-03"},
		{"short month", "Jan 14, 2026", true, "2026-01-14"},
		{"slash format", "11/3/2025", true, "2025-11-03"},
		{"two digit year", "1/14/26", true, "2026-01-14"},
		{"empty", "", false, ""},
		{"garbage", "next tuesday", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSheetDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
			}
		})
	}
}

func TestParseISODate(t *testing.T) {
	got, ok := ParseISODate("2026-02-01T00:00:00.000-08:00")
	assert.True(t, ok)
	assert.Equal(t, "2026-02-01", got.Format("2006-01-02"))

	_, ok = ParseISODate("not a date")
	assert.False(t, ok)
}
