package models

import "time"

// Student belongs to exactly one school. Age is derived from DateOfBirth on
// every read and write, never trusted from storage.
type Student struct {
	ID               string    `db:"id" json:"id"`
	SchoolCode       string    `db:"school_code" json:"school_code"`
	FirstName        string    `db:"first_name" json:"first_name"`
	MiddleName       string    `db:"middle_name" json:"middle_name,omitempty"`
	LastName         string    `db:"last_name" json:"last_name"`
	DateOfBirth      string    `db:"date_of_birth" json:"date_of_birth"`
	Gender           string    `db:"gender" json:"gender"`
	GradeLevel       string    `db:"grade_level" json:"grade_level,omitempty"`
	ClassID          string    `db:"class_id" json:"class_id,omitempty"`
	ParentID         string    `db:"parent_id" json:"parent_id,omitempty"`
	Address          string    `db:"address" json:"address,omitempty"`
	EmergencyContact string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	Notes            string    `db:"notes" json:"notes,omitempty"`
	PhotoURL         string    `db:"photo_url" json:"photo_url,omitempty"`
	Age              int       `db:"-" json:"age"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// RefreshAge recomputes the derived age field from the date of birth.
func (s *Student) RefreshAge(now time.Time) {
	s.Age = AgeFromDOB(s.DateOfBirth, now)
}

// AgeFromDOB computes whole years between a YYYY-MM-DD date of birth and now.
// Unparseable dates yield zero.
func AgeFromDOB(dob string, now time.Time) int {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0
	}
	years := now.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// StudentFilter narrows student listings. SchoolCode is always set by the
// service from the caller's session.
type StudentFilter struct {
	SchoolCode string
	ClassID    string
	GradeLevel string
	ParentID   string
}
