package models

import (
	"database/sql/driver"
	"time"
)

// SkillsMap maps a skill name to its rating label, stored as JSONB.
type SkillsMap map[string]string

func (m SkillsMap) Value() (driver.Value, error) {
	if m == nil {
		return jsonValue(map[string]string{})
	}
	return jsonValue(map[string]string(m))
}

func (m *SkillsMap) Scan(src interface{}) error {
	return jsonScan(src, m)
}

// SocialSkillsEntry rates a student's conduct for one term. At most one entry
// exists per (student_id, term, academic_year, school_code).
type SocialSkillsEntry struct {
	ID           string    `db:"id" json:"id"`
	SchoolCode   string    `db:"school_code" json:"school_code"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Term         string    `db:"term" json:"term"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Skills       SkillsMap `db:"skills" json:"skills"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
