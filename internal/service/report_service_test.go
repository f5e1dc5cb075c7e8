package service

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type mockReportStudents struct {
	mockStudentLookup
}

func (m *mockReportStudents) Create(ctx context.Context, student *models.Student) error { return nil }
func (m *mockReportStudents) Update(ctx context.Context, student *models.Student) error { return nil }
func (m *mockReportStudents) Delete(ctx context.Context, id, schoolCode string) error   { return nil }

type mockReportClasses struct {
	classes map[string]*models.Class
}

func (m *mockReportClasses) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	out := []models.Class{}
	for _, class := range m.classes {
		out = append(out, *class)
	}
	return out, nil
}

func (m *mockReportClasses) FindByID(ctx context.Context, id, schoolCode string) (*models.Class, error) {
	if class, ok := m.classes[id]; ok && class.SchoolCode == schoolCode {
		return class, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportClasses) Create(ctx context.Context, class *models.Class) error { return nil }
func (m *mockReportClasses) Update(ctx context.Context, class *models.Class) error { return nil }
func (m *mockReportClasses) Delete(ctx context.Context, id, schoolCode string) error {
	return nil
}

type mockReportGradebook struct {
	byStudent map[string]*models.GradebookEntry
}

func (m *mockReportGradebook) FindForStudentTerm(ctx context.Context, studentID, term, academicYear, schoolCode string) (*models.GradebookEntry, error) {
	if entry, ok := m.byStudent[studentID]; ok {
		return entry, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportGradebook) List(ctx context.Context, filter models.GradebookFilter) ([]models.GradebookEntry, error) {
	return nil, nil
}

type mockReportAttendance struct {
	summaries map[string]*models.AttendanceSummary
}

func (m *mockReportAttendance) SummaryForStudent(ctx context.Context, studentID, schoolCode string) (*models.AttendanceSummary, error) {
	if summary, ok := m.summaries[studentID]; ok {
		return summary, nil
	}
	return &models.AttendanceSummary{}, nil
}

type mockReportSkills struct {
	byStudent map[string]*models.SocialSkillsEntry
}

func (m *mockReportSkills) FindForStudentTerm(ctx context.Context, studentID, term, academicYear, schoolCode string) (*models.SocialSkillsEntry, error) {
	if entry, ok := m.byStudent[studentID]; ok {
		return entry, nil
	}
	return nil, sql.ErrNoRows
}

type mockTemplateProvider struct {
	tmpl *models.ReportTemplate
}

func (m *mockTemplateProvider) Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	return m.tmpl, nil
}

func reportFixture() *ReportService {
	students := &mockReportStudents{mockStudentLookup{students: map[string]*models.Student{
		"stu-a": {ID: "stu-a", SchoolCode: "GHS", FirstName: "Ama", LastName: "Mensah", ClassID: "class-1", DateOfBirth: "2015-03-12", ParentID: "parent-1"},
		"stu-b": {ID: "stu-b", SchoolCode: "GHS", FirstName: "Kojo", LastName: "Asante", ClassID: "class-1", DateOfBirth: "2015-07-01"},
		"stu-c": {ID: "stu-c", SchoolCode: "GHS", FirstName: "Esi", LastName: "Boateng", ClassID: "class-1", DateOfBirth: "2015-01-20"},
	}}}
	classes := &mockReportClasses{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", SchoolCode: "GHS", Name: "Primary 4 Blue"},
	}}
	gradebook := &mockReportGradebook{byStudent: map[string]*models.GradebookEntry{
		"stu-a": {StudentID: "stu-a", OverallScore: 85, OverallGrade: "A"},
		"stu-b": {StudentID: "stu-b", OverallScore: 85, OverallGrade: "A"},
		// stu-c has no entry and must rank last with a zero score
	}}
	attendance := &mockReportAttendance{summaries: map[string]*models.AttendanceSummary{
		"stu-a": {Present: 50, Absent: 2, TotalDays: 52},
	}}
	skills := &mockReportSkills{byStudent: map[string]*models.SocialSkillsEntry{
		"stu-a": {StudentID: "stu-a", Skills: models.SkillsMap{"Punctuality": "Excellent"}},
	}}
	templates := &mockTemplateProvider{tmpl: models.DefaultReportTemplate("GHS", "Greenfield")}
	return NewReportService(students, classes, gradebook, attendance, skills, templates, zap.NewNop())
}

func TestReportServiceBuildForStudent(t *testing.T) {
	svc := reportFixture()

	card, err := svc.BuildForStudent(context.Background(), adminClaims(), "stu-a", "Term 1", "2025/2026")
	require.NoError(t, err)

	assert.Equal(t, "Ama", card.Student.FirstName)
	assert.Positive(t, card.Student.Age)
	require.NotNil(t, card.Grades)
	assert.InDelta(t, 85.0, card.Grades.OverallScore, 1e-9)
	assert.Equal(t, 50, card.AttendanceSummary.Present)
	assert.Equal(t, "Excellent", card.SocialSkills["Punctuality"])
	assert.NotEmpty(t, card.GradeScale)
	require.NotNil(t, card.Class)
	assert.Equal(t, "Primary 4 Blue", card.Class.Name)
}

func TestReportServiceBuildForStudentUnknown(t *testing.T) {
	svc := reportFixture()

	_, err := svc.BuildForStudent(context.Background(), adminClaims(), "stu-nope", "Term 1", "2025/2026")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestReportServiceParentCannotBuildForOtherChild(t *testing.T) {
	svc := reportFixture()

	parent := &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent, SchoolCode: "GHS"}
	_, err := svc.BuildForStudent(context.Background(), parent, "stu-b", "Term 1", "2025/2026")
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	card, err := svc.BuildForStudent(context.Background(), parent, "stu-a", "Term 1", "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, "stu-a", card.Student.ID)
}

func TestReportServiceClassRankingDeterministic(t *testing.T) {
	svc := reportFixture()

	report, err := svc.BuildForClass(context.Background(), adminClaims(), "class-1", "Term 1", "2025/2026")
	require.NoError(t, err)
	require.Len(t, report.Cards, 3)

	// stu-a and stu-b tie at 85; the lower student id wins the tie. stu-c has
	// no gradebook entry, scores zero and ranks last.
	assert.Equal(t, "stu-a", report.Cards[0].Student.ID)
	assert.Equal(t, 1, report.Cards[0].Position)
	assert.Equal(t, "stu-b", report.Cards[1].Student.ID)
	assert.Equal(t, 2, report.Cards[1].Position)
	assert.Equal(t, "stu-c", report.Cards[2].Student.ID)
	assert.Equal(t, 3, report.Cards[2].Position)
	assert.Nil(t, report.Cards[2].Grades)
}

func TestReportServiceBuildForClassUnknown(t *testing.T) {
	svc := reportFixture()

	_, err := svc.BuildForClass(context.Background(), adminClaims(), "class-nope", "Term 1", "2025/2026")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestReportServiceExportClassCSV(t *testing.T) {
	svc := reportFixture()

	data, err := svc.ExportClassCSV(context.Background(), adminClaims(), "class-1", "Term 1", "2025/2026")
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "Position,Student,Overall Score"))
	assert.Contains(t, content, "1,Ama Mensah,85.00,A")
	assert.Contains(t, content, "3,Esi Boateng,0.00,-")
}

func TestReportServiceExportClassPDF(t *testing.T) {
	svc := reportFixture()

	data, err := svc.ExportClassPDF(context.Background(), adminClaims(), "class-1", "Term 1", "2025/2026")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
