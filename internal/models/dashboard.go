package models

// DashboardStats is the role-aware stats payload. Admin/teacher sessions see
// school-wide counts; parents see their own children only. Pointer fields are
// omitted for roles they do not apply to.
type DashboardStats struct {
	TotalStudents     *int    `json:"total_students,omitempty"`
	TotalClasses      *int    `json:"total_classes,omitempty"`
	TotalTeachers     *int    `json:"total_teachers,omitempty"`
	TotalSchools      *int    `json:"total_schools,omitempty"`
	TodayPresent      *int    `json:"today_present,omitempty"`
	TodayAbsent       *int    `json:"today_absent,omitempty"`
	TodayLate         *int    `json:"today_late,omitempty"`
	ChildrenCount     *int    `json:"children_count,omitempty"`
	AttendancePresent *int    `json:"attendance_present,omitempty"`
	AttendanceAbsent  *int    `json:"attendance_absent,omitempty"`
	AverageGrade      float64 `json:"average_grade"`
}
