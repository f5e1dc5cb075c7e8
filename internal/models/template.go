package models

import (
	"database/sql/driver"
	"time"

	"github.com/noah-isme/sms-go-api/internal/grading"
)

// TemplateSubject is one entry of a school's subject roster.
type TemplateSubject struct {
	Name   string `json:"name"`
	IsCore bool   `json:"is_core"`
}

// TemplateSubjectList stores the roster as JSONB.
type TemplateSubjectList []TemplateSubject

func (l TemplateSubjectList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue([]TemplateSubject{})
	}
	return jsonValue([]TemplateSubject(l))
}

func (l *TemplateSubjectList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// BandList stores a grade scale as JSONB.
type BandList []grading.Band

func (l BandList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue([]grading.Band{})
	}
	return jsonValue([]grading.Band(l))
}

func (l *BandList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// Scale converts the stored bands to a lookup scale, falling back to the
// standard scheme when the template carries no bands.
func (l BandList) Scale() grading.Scale {
	if len(l) == 0 {
		return grading.StandardScale()
	}
	return grading.Scale(l)
}

// StringList stores a plain string slice as JSONB.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue([]string{})
	}
	return jsonValue([]string(l))
}

func (l *StringList) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// JSONMap stores free-form layout data as JSONB.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return jsonValue(map[string]interface{}{})
	}
	return jsonValue(map[string]interface{}(m))
}

func (m *JSONMap) Scan(src interface{}) error {
	return jsonScan(src, m)
}

// ReportTemplate configures report-card rendering for one school: subject
// roster, grade scale, section layout, social-skill categories and signature
// images. One template exists per school_code; it is auto-created with
// defaults the first time it is requested.
type ReportTemplate struct {
	ID                     string              `db:"id" json:"id"`
	SchoolCode             string              `db:"school_code" json:"school_code"`
	SchoolName             string              `db:"school_name" json:"school_name"`
	SchoolMotto            string              `db:"school_motto" json:"school_motto,omitempty"`
	LogoURL                string              `db:"logo_url" json:"logo_url,omitempty"`
	HeaderText             string              `db:"header_text" json:"header_text"`
	SubHeaderText          string              `db:"sub_header_text" json:"sub_header_text,omitempty"`
	Subjects               TemplateSubjectList `db:"subjects" json:"subjects"`
	GradeScale             BandList            `db:"grade_scale" json:"grade_scale"`
	UseWeightedGrading     bool                `db:"use_weighted_grading" json:"use_weighted_grading"`
	Sections               JSONMap             `db:"sections" json:"sections"`
	SocialSkillsCategories StringList          `db:"social_skills_categories" json:"social_skills_categories"`
	SkillRatings           StringList          `db:"skill_ratings" json:"skill_ratings"`
	AchievementStandards   StringList          `db:"achievement_standards" json:"achievement_standards"`
	PaperSize              string              `db:"paper_size" json:"paper_size"`
	Layout                 JSONMap             `db:"layout" json:"layout"`
	HeadTeacherSigURL      string              `db:"head_teacher_sig_url" json:"head_teacher_sig_url,omitempty"`
	ClassTeacherSigURL     string              `db:"class_teacher_sig_url" json:"class_teacher_sig_url,omitempty"`
	CreatedAt              time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time           `db:"updated_at" json:"updated_at"`
}

// DefaultReportTemplate builds the template a school starts with.
func DefaultReportTemplate(schoolCode, schoolName string) *ReportTemplate {
	return &ReportTemplate{
		SchoolCode: schoolCode,
		SchoolName: schoolName,
		HeaderText: "END OF TERM REPORT CARD",
		Subjects: TemplateSubjectList{
			{Name: "English", IsCore: true},
			{Name: "Mathematics", IsCore: true},
			{Name: "Science", IsCore: true},
			{Name: "Social Studies", IsCore: true},
			{Name: "Religious Education", IsCore: false},
			{Name: "Physical Education", IsCore: false},
			{Name: "Art and Craft", IsCore: false},
			{Name: "Music", IsCore: false},
		},
		GradeScale:         BandList(grading.StandardScale()),
		UseWeightedGrading: false,
		Sections: JSONMap{
			"attendance":    true,
			"social_skills": true,
			"grades":        true,
			"comments":      true,
		},
		SocialSkillsCategories: StringList{
			"Completes Assignments",
			"Follows Instructions",
			"Punctuality",
			"Respect for Teacher",
			"Works Well with Others",
		},
		SkillRatings:         StringList{"Excellent", "Good", "Satisfactory", "Needs Improvement"},
		AchievementStandards: StringList{},
		PaperSize:            "a4",
		Layout:               JSONMap{},
	}
}
