package models

import (
	"database/sql/driver"
	"time"

	"github.com/noah-isme/sms-go-api/internal/grading"
)

// SubjectGrade is one subject row inside a gradebook entry. The entry is
// weighted when any of the six assessment components is non-nil, otherwise the
// flat Score field is banded directly. Mixing modes across subjects within one
// gradebook entry is allowed.
type SubjectGrade struct {
	Subject   string   `json:"subject"`
	Score     float64  `json:"score"`
	Grade     string   `json:"grade,omitempty"`
	Comment   string   `json:"comment,omitempty"`
	Homework  *float64 `json:"homework,omitempty"`
	GroupWork *float64 `json:"groupWork,omitempty"`
	Project   *float64 `json:"project,omitempty"`
	Quiz      *float64 `json:"quiz,omitempty"`
	MidTerm   *float64 `json:"midTerm,omitempty"`
	EndOfTerm *float64 `json:"endOfTerm,omitempty"`
}

// Components adapts the subject row for the weighted calculator.
func (g SubjectGrade) Components() grading.Components {
	return grading.Components{
		Homework:  g.Homework,
		GroupWork: g.GroupWork,
		Project:   g.Project,
		Quiz:      g.Quiz,
		MidTerm:   g.MidTerm,
		EndOfTerm: g.EndOfTerm,
	}
}

// SubjectGradeList stores the ordered subject rows as a JSONB column.
type SubjectGradeList []SubjectGrade

func (l SubjectGradeList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue([]SubjectGrade{})
	}
	return jsonValue([]SubjectGrade(l))
}

func (l *SubjectGradeList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// GradebookEntry aggregates all subject grades for a student in one term of
// one academic year. At most one entry exists per (student_id, term,
// academic_year, school_code); re-saving replaces the subject list and
// recomputes the overall fields in place.
type GradebookEntry struct {
	ID            string           `db:"id" json:"id"`
	SchoolCode    string           `db:"school_code" json:"school_code"`
	StudentID     string           `db:"student_id" json:"student_id"`
	ClassID       string           `db:"class_id" json:"class_id"`
	Term          string           `db:"term" json:"term"`
	AcademicYear  string           `db:"academic_year" json:"academic_year"`
	Subjects      SubjectGradeList `db:"subjects" json:"subjects"`
	OverallScore  float64          `db:"overall_score" json:"overall_score"`
	OverallGrade  string           `db:"overall_grade" json:"overall_grade"`
	OverallPoints float64          `db:"overall_points" json:"overall_points"`
	OverallDomain string           `db:"overall_domain" json:"overall_domain"`
	GradedBy      string           `db:"graded_by" json:"graded_by"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// GradebookFilter narrows gradebook listings.
type GradebookFilter struct {
	SchoolCode   string
	StudentID    string
	StudentIDs   []string
	ClassID      string
	Term         string
	AcademicYear string
}
