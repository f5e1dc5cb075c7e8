package models

import "time"

// AttendanceStatus enumerates the four allowed daily statuses.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// IsValidAttendanceStatus reports whether the status is one of the four
// allowed values.
func IsValidAttendanceStatus(status AttendanceStatus) bool {
	switch status {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceRecord holds one student's status for one date. At most one record
// exists per (student_id, date, school_code); a second mark on the same day
// overwrites status and marked_by.
type AttendanceRecord struct {
	ID         string           `db:"id" json:"id"`
	SchoolCode string           `db:"school_code" json:"school_code"`
	StudentID  string           `db:"student_id" json:"student_id"`
	ClassID    string           `db:"class_id" json:"class_id"`
	Date       string           `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	MarkedBy   string           `db:"marked_by" json:"marked_by"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	SchoolCode string
	StudentID  string
	StudentIDs []string
	ClassID    string
	Date       string
	StartDate  string
	EndDate    string
}

// AttendanceSummary aggregates a student's records by status.
type AttendanceSummary struct {
	Present   int `json:"present"`
	Absent    int `json:"absent"`
	Late      int `json:"late"`
	Excused   int `json:"excused"`
	TotalDays int `json:"total_days"`
}

// Add counts one record into the summary.
func (s *AttendanceSummary) Add(status AttendanceStatus) {
	switch status {
	case AttendancePresent:
		s.Present++
	case AttendanceAbsent:
		s.Absent++
	case AttendanceLate:
		s.Late++
	case AttendanceExcused:
		s.Excused++
	}
	s.TotalDays++
}
