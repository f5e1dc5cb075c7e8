package models

import "github.com/noah-isme/sms-go-api/internal/grading"

// ReportCard is the assembled term report for one student: profile, grades,
// attendance summary, conduct ratings and the school's active grade scale.
// Position is only set when the card is built as part of a class ranking.
type ReportCard struct {
	Student           Student            `json:"student"`
	Class             *Class             `json:"class,omitempty"`
	Term              string             `json:"term"`
	AcademicYear      string             `json:"academic_year"`
	Grades            *GradebookEntry    `json:"grades,omitempty"`
	AttendanceSummary AttendanceSummary  `json:"attendance_summary"`
	SocialSkills      SkillsMap          `json:"social_skills,omitempty"`
	GradeScale        []grading.Band     `json:"grade_scale"`
	Position          int                `json:"position,omitempty"`
	Signatures        ReportSignatures   `json:"signatures"`
}

// ReportSignatures carries the signature image URLs attached to a card.
type ReportSignatures struct {
	HeadTeacher  string `json:"head_teacher,omitempty"`
	ClassTeacher string `json:"class_teacher,omitempty"`
}

// ClassReport is the ranked set of report cards for one class and term.
type ClassReport struct {
	Class        Class        `json:"class"`
	Term         string       `json:"term"`
	AcademicYear string       `json:"academic_year"`
	Cards        []ReportCard `json:"cards"`
}
