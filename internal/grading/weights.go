package grading

import "math"

// Components carries the six optional assessment scores for one subject. A nil
// field means the component was not assessed; the presence of any non-nil field
// switches the subject into weighted mode.
type Components struct {
	Homework  *float64
	GroupWork *float64
	Project   *float64
	Quiz      *float64
	MidTerm   *float64
	EndOfTerm *float64
}

// Weighted reports whether any assessment component is present.
func (c Components) Weighted() bool {
	return c.Homework != nil || c.GroupWork != nil || c.Project != nil ||
		c.Quiz != nil || c.MidTerm != nil || c.EndOfTerm != nil
}

// Fixed assessment weights, summing to 100%.
const (
	weightHomework  = 0.05
	weightGroupWork = 0.05
	weightProject   = 0.10
	weightQuiz      = 0.10
	weightMidTerm   = 0.30
	weightEndOfTerm = 0.40
)

// WeightTable exposes the percentage weights for template payloads.
func WeightTable() map[string]int {
	return map[string]int{
		"homework":  5,
		"groupWork": 5,
		"project":   10,
		"quiz":      10,
		"midTerm":   30,
		"endOfTerm": 40,
	}
}

// WeightedScore combines the component scores into one percentage. Missing
// components count as zero.
func WeightedScore(c Components) float64 {
	total := value(c.Homework)*weightHomework +
		value(c.GroupWork)*weightGroupWork +
		value(c.Project)*weightProject +
		value(c.Quiz)*weightQuiz +
		value(c.MidTerm)*weightMidTerm +
		value(c.EndOfTerm)*weightEndOfTerm
	return Round2(total)
}

// OverallScore is the unweighted mean of the per-subject scores, zero when the
// subject list is empty.
func OverallScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return Round2(sum / float64(len(scores)))
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
