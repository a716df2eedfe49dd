package opshub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func bg(r, g, b float64) CellFormat {
	return CellFormat{Background: RGB{R: r, G: g, B: b}, HasBackground: true}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		format   CellFormat
		expected CellClass
	}{
		{"no formatting", CellFormat{}, ClassNormal},
		{"white background", bg(1, 1, 1), ClassNormal},
		{"near white", bg(0.98, 0.97, 0.96), ClassNormal},
		{"strikethrough wins over color", CellFormat{Background: RGB{1, 0.2, 0.2}, HasBackground: true, Strikethrough: true}, ClassStrikethrough},
		{"strikethrough on plain cell", CellFormat{Strikethrough: true}, ClassStrikethrough},
		{"mid gray", bg(0.8, 0.8, 0.8), ClassGray},
		{"dark gray", bg(0.5, 0.5, 0.5), ClassGray},
		{"red backout", bg(0.96, 0.3, 0.3), ClassRed},
		{"pure red", bg(1, 0, 0), ClassRed},
		{"scoot pink", bg(1, 0.6, 0.95), ClassScoot},
		{"orange new leader", bg(1, 0.6, 0.2), ClassOrange},
		{"purple compliance", bg(0.6, 0.4, 0.8), ClassPurple},
		{"yellow pending", bg(1, 0.9, 0.3), ClassYellow},
		{"green onboarding", bg(0.5, 0.85, 0.5), ClassGreen},
		{"light green", bg(0.72, 0.88, 0.72), ClassGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.format))
		})
	}
}
