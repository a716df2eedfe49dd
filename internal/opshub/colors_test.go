package opshub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageColorsRoundTripThroughClassify(t *testing.T) {
	want := map[string]CellClass{
		"Background Check Pending": ClassPurple,
		"Onboarding Setup":         ClassGreen,
	}
	assert.Len(t, StageColors, len(want))
	for stage, class := range want {
		color, ok := StageColors[stage]
		assert.True(t, ok, stage)
		got := Classify(CellFormat{Background: color, HasBackground: true})
		assert.Equal(t, class, got, stage)
	}
}
