package models

import "time"

// LoginRequest is the credential payload. SchoolCode selects the tenant the
// session will operate in.
type LoginRequest struct {
	SchoolCode string `json:"school_code" validate:"required"`
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token and the session profile.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo is the public profile embedded in auth responses. SchoolCode is the
// session school, which for a superuser may differ from the account's home
// school.
type UserInfo struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Role        UserRole `json:"role"`
	SchoolCode  string   `json:"school_code"`
	Permissions []string `json:"permissions"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// CreateSchoolRequest registers a new tenant.
type CreateSchoolRequest struct {
	SchoolCode string `json:"school_code" validate:"required,alphanum,min=3,max=12"`
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// UpdateSchoolRequest modifies a tenant. The code is not part of the payload;
// tenant codes never change.
type UpdateSchoolRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive *bool  `json:"is_active"`
}

// CreateUserRequest registers an account in the caller's school. Permissions,
// when present, override the role defaults.
type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=64"`
	Name        string   `json:"name" validate:"required"`
	Password    string   `json:"password" validate:"required,min=8"`
	Role        UserRole `json:"role" validate:"required"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest reassigns a user's role.
type UpdateRoleRequest struct {
	Role UserRole `json:"role" validate:"required"`
}

// UpdatePermissionsRequest overrides a user's permission set.
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

// SaveStudentRequest creates or updates a student record.
type SaveStudentRequest struct {
	FirstName        string `json:"first_name" validate:"required"`
	MiddleName       string `json:"middle_name"`
	LastName         string `json:"last_name" validate:"required"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	GradeLevel       string `json:"grade_level"`
	ClassID          string `json:"class_id"`
	ParentID         string `json:"parent_id"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	Notes            string `json:"notes"`
}

// SaveClassRequest creates or updates a class record.
type SaveClassRequest struct {
	Name         string `json:"name" validate:"required"`
	GradeLevel   string `json:"grade_level" validate:"required"`
	TeacherID    string `json:"teacher_id"`
	RoomNumber   string `json:"room_number"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// MarkAttendanceRequest records one student's status for one date.
type MarkAttendanceRequest struct {
	StudentID string           `json:"student_id" validate:"required"`
	ClassID   string           `json:"class_id"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// BulkAttendanceRequest marks a whole class in one call.
type BulkAttendanceRequest struct {
	Records []MarkAttendanceRequest `json:"records" validate:"required,min=1,dive"`
}

// BulkAttendanceResult reports how many records a bulk mark created versus
// overwrote.
type BulkAttendanceResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SaveGradebookRequest records all subject grades for a student in one term.
type SaveGradebookRequest struct {
	StudentID    string         `json:"student_id" validate:"required"`
	ClassID      string         `json:"class_id"`
	Term         string         `json:"term" validate:"required"`
	AcademicYear string         `json:"academic_year" validate:"required"`
	Subjects     []SubjectGrade `json:"subjects" validate:"required,dive"`
}

// SaveSocialSkillsRequest records conduct ratings for a student in one term.
type SaveSocialSkillsRequest struct {
	StudentID    string            `json:"student_id" validate:"required"`
	Term         string            `json:"term" validate:"required"`
	AcademicYear string            `json:"academic_year" validate:"required"`
	Skills       map[string]string `json:"skills" validate:"required,min=1"`
}

// UpdateTemplateRequest replaces a school's report template configuration.
type UpdateTemplateRequest struct {
	SchoolName             string              `json:"school_name" validate:"required"`
	SchoolMotto            string              `json:"school_motto"`
	LogoURL                string              `json:"logo_url"`
	HeaderText             string              `json:"header_text" validate:"required"`
	SubHeaderText          string              `json:"sub_header_text"`
	Subjects               TemplateSubjectList `json:"subjects" validate:"required,min=1"`
	GradeScale             BandList            `json:"grade_scale"`
	UseWeightedGrading     bool                `json:"use_weighted_grading"`
	Sections               JSONMap             `json:"sections"`
	SocialSkillsCategories StringList          `json:"social_skills_categories"`
	SkillRatings           StringList          `json:"skill_ratings"`
	AchievementStandards   StringList          `json:"achievement_standards"`
	PaperSize              string              `json:"paper_size"`
	Layout                 JSONMap             `json:"layout"`
}
