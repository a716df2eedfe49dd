// Package opshub reads the Ops Hub scheduling spreadsheet: workshop rows,
// per-cell background colors, and strikethrough flags. The sheet is the
// system-of-record for workshop staffing, with cell colors encoding leader
// assignment status.
package opshub

// CellClass is the assignment status encoded by a leader cell's formatting.
type CellClass string

const (
	ClassStrikethrough CellClass = "strikethrough"
	ClassGray          CellClass = "gray"
	ClassRed           CellClass = "red"
	ClassScoot         CellClass = "scoot" // pink, staffed by a third party
	ClassOrange        CellClass = "orange"
	ClassPurple        CellClass = "purple"
	ClassYellow        CellClass = "yellow"
	ClassGreen         CellClass = "green"
	ClassNormal        CellClass = "normal"
)

// RGB is an effective background color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// CellFormat is the formatting metadata read for a single leader cell.
type CellFormat struct {
	Background    RGB
	HasBackground bool
	Strikethrough bool
}

// Classify maps cell formatting to a CellClass. Strikethrough overrides
// color; gray is checked before specific hues. Thresholds are tuned against
// the live sheet palette, not derived from a color model.
func Classify(f CellFormat) CellClass {
	if f.Strikethrough {
		return ClassStrikethrough
	}
	if !f.HasBackground {
		return ClassNormal
	}
	r, g, b := f.Background.R, f.Background.G, f.Background.B

	// White or near-white background is unformatted.
	if r > 0.95 && g > 0.95 && b > 0.95 {
		return ClassNormal
	}
	// Gray: channels nearly equal, mid brightness.
	if maxChannel(r, g, b)-minChannel(r, g, b) < 0.08 && r > 0.35 && r <= 0.93 {
		return ClassGray
	}
	if r > 0.8 && g < 0.45 && b < 0.45 {
		return ClassRed
	}
	if r > 0.9 && g < 0.7 && b > 0.9 {
		return ClassScoot
	}
	if r > 0.85 && g >= 0.45 && g <= 0.75 && b < 0.45 {
		return ClassOrange
	}
	if b > 0.7 && g < 0.65 && r < 0.9 {
		return ClassPurple
	}
	if r > 0.85 && g > 0.75 && b < 0.6 {
		return ClassYellow
	}
	if g > 0.7 && g >= r && g >= b {
		return ClassGreen
	}
	return ClassNormal
}

func maxChannel(r, g, b float64) float64 {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return m
}

func minChannel(r, g, b float64) float64 {
	m := r
	if g < m {
		m = g
	}
	if b < m {
		m = b
	}
	return m
}
