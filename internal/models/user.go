package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole identifies the access level of an account.
type UserRole string

const (
	RoleSuperuser UserRole = "superuser"
	RoleAdmin     UserRole = "admin"
	RoleTeacher   UserRole = "teacher"
	RoleParent    UserRole = "parent"
)

// IsValidRole reports whether the role is one of the assignable roles.
// Superuser accounts exist only through bootstrap and are never created or
// assigned through the API.
func IsValidRole(role UserRole) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleParent:
		return true
	}
	return false
}

// Permission names gate individual operations independently of roles.
const (
	PermManageSchools   = "manage_schools"
	PermManageUsers     = "manage_users"
	PermManageStudents  = "manage_students"
	PermManageClasses   = "manage_classes"
	PermMarkAttendance  = "mark_attendance"
	PermManageGrades    = "manage_grades"
	PermGenerateReports = "generate_reports"
	PermManageTemplates = "manage_templates"
)

// DefaultPermissions is the capability table assigning each role its default
// permission set. Individual accounts may be granted a different set at
// creation; superusers bypass permission checks entirely.
func DefaultPermissions(role UserRole) []string {
	switch role {
	case RoleSuperuser:
		return []string{
			PermManageSchools, PermManageUsers, PermManageStudents,
			PermManageClasses, PermMarkAttendance, PermManageGrades,
			PermGenerateReports, PermManageTemplates,
		}
	case RoleAdmin:
		return []string{
			PermManageUsers, PermManageStudents, PermManageClasses,
			PermMarkAttendance, PermManageGrades, PermGenerateReports,
		}
	case RoleTeacher:
		return []string{
			PermManageStudents, PermMarkAttendance, PermManageGrades,
			PermGenerateReports,
		}
	case RoleParent:
		return nil
	}
	return nil
}

// User is an account scoped to one school; usernames are unique per school,
// so the same username may exist in two schools as different accounts.
type User struct {
	ID           string         `db:"id" json:"id"`
	Username     string         `db:"username" json:"username"`
	Name         string         `db:"name" json:"name"`
	Role         UserRole       `db:"role" json:"role"`
	SchoolCode   string         `db:"school_code" json:"school_code"`
	Permissions  pq.StringArray `db:"permissions" json:"permissions"`
	PasswordHash string         `db:"password_hash" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// HasPermission reports whether the stored permission set contains p.
func (u *User) HasPermission(p string) bool {
	for _, held := range u.Permissions {
		if held == p {
			return true
		}
	}
	return false
}
