package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/export"
)

type reportGradebookRepository interface {
	FindForStudentTerm(ctx context.Context, studentID, term, academicYear, schoolCode string) (*models.GradebookEntry, error)
	List(ctx context.Context, filter models.GradebookFilter) ([]models.GradebookEntry, error)
}

type reportAttendanceRepository interface {
	SummaryForStudent(ctx context.Context, studentID, schoolCode string) (*models.AttendanceSummary, error)
}

type reportSocialSkillsRepository interface {
	FindForStudentTerm(ctx context.Context, studentID, term, academicYear, schoolCode string) (*models.SocialSkillsEntry, error)
}

type reportTemplateProvider interface {
	Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error)
}

// ReportService assembles report cards. A class report ranks students by
// overall score descending with ascending student id as the tie-break, so two
// builds of the same class always agree on positions. Students without a
// gradebook entry score zero and rank last.
type ReportService struct {
	students     studentRepository
	classes      classRepository
	gradebook    reportGradebookRepository
	attendance   reportAttendanceRepository
	socialSkills reportSocialSkillsRepository
	templates    reportTemplateProvider
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
	metrics      *MetricsService
}

// WithMetrics attaches report instrumentation and returns the service.
func (s *ReportService) WithMetrics(m *MetricsService) *ReportService {
	s.metrics = m
	return s
}

// NewReportService constructs a ReportService instance.
func NewReportService(
	students studentRepository,
	classes classRepository,
	gradebook reportGradebookRepository,
	attendance reportAttendanceRepository,
	socialSkills reportSocialSkillsRepository,
	templates reportTemplateProvider,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:     students,
		classes:      classes,
		gradebook:    gradebook,
		attendance:   attendance,
		socialSkills: socialSkills,
		templates:    templates,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// BuildForStudent assembles one student's report card for a term. Parents may
// only build cards for their own children.
func (s *ReportService) BuildForStudent(ctx context.Context, claims *models.JWTClaims, studentID, term, academicYear string) (*models.ReportCard, error) {
	student, err := s.students.FindByID(ctx, studentID, claims.SchoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if claims.Role == models.RoleParent && student.ParentID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	tmpl, err := s.templates.Get(ctx, claims.SchoolCode)
	if err != nil {
		return nil, err
	}

	card, err := s.assemble(ctx, claims.SchoolCode, *student, term, academicYear, tmpl)
	if err != nil {
		return nil, err
	}

	if student.ClassID != "" {
		class, err := s.classes.FindByID(ctx, student.ClassID, claims.SchoolCode)
		if err == nil {
			card.Class = class
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
	}
	return card, nil
}

// BuildForClass assembles ranked report cards for every student in a class.
func (s *ReportService) BuildForClass(ctx context.Context, claims *models.JWTClaims, classID, term, academicYear string) (*models.ClassReport, error) {
	class, err := s.classes.FindByID(ctx, classID, claims.SchoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	students, err := s.students.List(ctx, models.StudentFilter{
		SchoolCode: claims.SchoolCode,
		ClassID:    classID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	tmpl, err := s.templates.Get(ctx, claims.SchoolCode)
	if err != nil {
		return nil, err
	}

	cards := make([]models.ReportCard, 0, len(students))
	for _, student := range students {
		card, err := s.assemble(ctx, claims.SchoolCode, student, term, academicYear, tmpl)
		if err != nil {
			return nil, err
		}
		card.Class = class
		cards = append(cards, *card)
	}

	sort.SliceStable(cards, func(i, j int) bool {
		left, right := overallOf(cards[i]), overallOf(cards[j])
		if left != right {
			return left > right
		}
		return cards[i].Student.ID < cards[j].Student.ID
	})
	for i := range cards {
		cards[i].Position = i + 1
	}

	s.logger.Info("class report built",
		zap.String("class_id", classID),
		zap.String("term", term),
		zap.Int("students", len(cards)))

	return &models.ClassReport{
		Class:        *class,
		Term:         term,
		AcademicYear: academicYear,
		Cards:        cards,
	}, nil
}

// ExportClassCSV renders a ranked class report as CSV.
func (s *ReportService) ExportClassCSV(ctx context.Context, claims *models.JWTClaims, classID, term, academicYear string) ([]byte, error) {
	report, err := s.BuildForClass(ctx, claims, classID, term, academicYear)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(classDataset(report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// ExportClassPDF renders a ranked class report as a tabular PDF.
func (s *ReportService) ExportClassPDF(ctx context.Context, claims *models.JWTClaims, classID, term, academicYear string) ([]byte, error) {
	report, err := s.BuildForClass(ctx, claims, classID, term, academicYear)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s class report", report.Class.Name)
	subtitle := fmt.Sprintf("%s, %s", term, academicYear)
	data, err := s.pdf.Render(classDataset(report), title, subtitle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return data, nil
}

func (s *ReportService) assemble(ctx context.Context, schoolCode string, student models.Student, term, academicYear string, tmpl *models.ReportTemplate) (*models.ReportCard, error) {
	student.RefreshAge(time.Now().UTC())

	card := &models.ReportCard{
		Student:      student,
		Term:         term,
		AcademicYear: academicYear,
		GradeScale:   tmpl.GradeScale.Scale(),
		Signatures: models.ReportSignatures{
			HeadTeacher:  tmpl.HeadTeacherSigURL,
			ClassTeacher: tmpl.ClassTeacherSigURL,
		},
	}

	grades, err := s.gradebook.FindForStudentTerm(ctx, student.ID, term, academicYear, schoolCode)
	if err == nil {
		card.Grades = grades
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradebook entry")
	}

	summary, err := s.attendance.SummaryForStudent(ctx, student.ID, schoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize attendance")
	}
	card.AttendanceSummary = *summary

	skills, err := s.socialSkills.FindForStudentTerm(ctx, student.ID, term, academicYear, schoolCode)
	if err == nil {
		card.SocialSkills = skills.Skills
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load social skills")
	}

	s.metrics.RecordReportBuilt()
	return card, nil
}

func overallOf(card models.ReportCard) float64 {
	if card.Grades == nil {
		return 0
	}
	return card.Grades.OverallScore
}

func classDataset(report *models.ClassReport) export.Dataset {
	headers := []string{"Position", "Student", "Overall Score", "Overall Grade", "Present", "Absent", "Late", "Excused"}
	rows := make([][]string, 0, len(report.Cards))
	for _, card := range report.Cards {
		overall, grade := "0.00", "-"
		if card.Grades != nil {
			overall = fmt.Sprintf("%.2f", card.Grades.OverallScore)
			grade = card.Grades.OverallGrade
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", card.Position),
			fmt.Sprintf("%s %s", card.Student.FirstName, card.Student.LastName),
			overall,
			grade,
			fmt.Sprintf("%d", card.AttendanceSummary.Present),
			fmt.Sprintf("%d", card.AttendanceSummary.Absent),
			fmt.Sprintf("%d", card.AttendanceSummary.Late),
			fmt.Sprintf("%d", card.AttendanceSummary.Excused),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
