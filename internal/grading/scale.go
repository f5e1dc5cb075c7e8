package grading

import "math"

// Band maps a contiguous integer score range to a grade label, a qualitative
// domain and a point value. Bands are ordered highest first and together cover
// the whole 0-100 range.
type Band struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Grade  string  `json:"grade"`
	Domain string  `json:"description"`
	Points float64 `json:"points"`
}

// Scale is an ordered list of disjoint bands.
type Scale []Band

// StandardScale returns the general 11-band grading scheme (A+ through U).
func StandardScale() Scale {
	return Scale{
		{Min: 90, Max: 100, Grade: "A+", Domain: "Excellent", Points: 4.0},
		{Min: 85, Max: 89, Grade: "A", Domain: "Very Good", Points: 3.8},
		{Min: 80, Max: 84, Grade: "A-", Domain: "Good", Points: 3.5},
		{Min: 75, Max: 79, Grade: "B", Domain: "Satisfactory", Points: 3.0},
		{Min: 70, Max: 74, Grade: "B-", Domain: "Developing", Points: 2.8},
		{Min: 65, Max: 69, Grade: "C", Domain: "Passing", Points: 2.5},
		{Min: 60, Max: 64, Grade: "C-", Domain: "Passing", Points: 2.0},
		{Min: 55, Max: 59, Grade: "D", Domain: "Marginal", Points: 1.5},
		{Min: 50, Max: 54, Grade: "D-", Domain: "Below Average", Points: 1.0},
		{Min: 40, Max: 49, Grade: "E", Domain: "Frustration", Points: 0.5},
		{Min: 0, Max: 39, Grade: "U", Domain: "No participation", Points: 0.0},
	}
}

// PrimaryScale returns the 8-band scheme (A+ through E) used by primary
// schools.
func PrimaryScale() Scale {
	return Scale{
		{Min: 90, Max: 100, Grade: "A+", Domain: "Excellent", Points: 4.0},
		{Min: 80, Max: 89, Grade: "A", Domain: "Very Good", Points: 3.5},
		{Min: 70, Max: 79, Grade: "B+", Domain: "Good", Points: 3.0},
		{Min: 60, Max: 69, Grade: "B", Domain: "Satisfactory", Points: 2.5},
		{Min: 50, Max: 59, Grade: "C", Domain: "Average", Points: 2.0},
		{Min: 40, Max: 49, Grade: "C-", Domain: "Below Average", Points: 1.5},
		{Min: 30, Max: 39, Grade: "D", Domain: "Poor", Points: 1.0},
		{Min: 0, Max: 29, Grade: "E", Domain: "Very Poor", Points: 0.0},
	}
}

// Band resolves the band for a numeric score. The score is rounded half-up to
// the nearest integer before comparison; comparing the raw float against band
// boundaries mis-banded scores like 89.2, which must land in 85-89 rather than
// fall through to the lowest band. If nothing matches the lowest band wins.
func (s Scale) Band(score float64) Band {
	if len(s) == 0 {
		return Band{Grade: "-"}
	}
	rounded := int(math.Floor(score + 0.5))
	for _, band := range s {
		if rounded >= band.Min && rounded <= band.Max {
			return band
		}
	}
	return s[len(s)-1]
}
