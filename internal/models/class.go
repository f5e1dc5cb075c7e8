package models

import "time"

// Class groups students within one school. Teachers see classes where they are
// either the assigned teacher or the creator.
type Class struct {
	ID           string    `db:"id" json:"id"`
	SchoolCode   string    `db:"school_code" json:"school_code"`
	Name         string    `db:"name" json:"name"`
	GradeLevel   string    `db:"grade_level" json:"grade_level"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomNumber   string    `db:"room_number" json:"room_number,omitempty"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ClassFilter narrows class listings.
type ClassFilter struct {
	SchoolCode string
	// TeacherID restricts results to classes taught or created by this user.
	TeacherID string
}
