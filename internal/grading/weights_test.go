package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestWeightedScoreAllComponentsFull(t *testing.T) {
	c := Components{
		Homework:  ptr(100),
		GroupWork: ptr(100),
		Project:   ptr(100),
		Quiz:      ptr(100),
		MidTerm:   ptr(100),
		EndOfTerm: ptr(100),
	}
	assert.Equal(t, 100.00, WeightedScore(c))
}

func TestWeightedScoreAllMissing(t *testing.T) {
	assert.Equal(t, 0.00, WeightedScore(Components{}))
}

func TestWeightedScoreMissingComponentsCountAsZero(t *testing.T) {
	c := Components{
		MidTerm:   ptr(80),
		EndOfTerm: ptr(90),
	}
	// 80*0.30 + 90*0.40 = 60.00
	assert.Equal(t, 60.00, WeightedScore(c))
}

func TestWeightedScoreIsDeterministic(t *testing.T) {
	c := Components{
		Homework:  ptr(73.3),
		GroupWork: ptr(88),
		Project:   ptr(61.5),
		Quiz:      ptr(95),
		MidTerm:   ptr(70.25),
		EndOfTerm: ptr(82.8),
	}
	first := WeightedScore(c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, WeightedScore(c))
	}
}

func TestWeightedModeDetection(t *testing.T) {
	assert.False(t, Components{}.Weighted())
	assert.True(t, Components{Quiz: ptr(0)}.Weighted())
}

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 0.00, OverallScore(nil))
	assert.Equal(t, 85.00, OverallScore([]float64{80, 90}))
	assert.Equal(t, 84.67, OverallScore([]float64{85, 92, 77}))
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 84.67, Round2(84.666))
	assert.Equal(t, 60.0, Round2(59.999))
}
