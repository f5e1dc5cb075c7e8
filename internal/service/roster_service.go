package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/export"
)

// ImportError reports one rejected CSV row. Row numbers are 1-based and count
// the header row, so the first data row is row 2.
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a CSV import: rows that became records and rows
// that were rejected. A partially failing file still imports its valid rows.
type ImportResult struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}

// RosterService handles CSV template downloads, roster exports and bulk
// imports of students and teacher accounts.
type RosterService struct {
	students studentRepository
	users    userRepository
	csv      *export.CSVExporter
	logger   *zap.Logger
	metrics  *MetricsService
}

// WithMetrics attaches import instrumentation and returns the service.
func (s *RosterService) WithMetrics(m *MetricsService) *RosterService {
	s.metrics = m
	return s
}

// NewRosterService constructs a RosterService instance.
func NewRosterService(students studentRepository, users userRepository, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{students: students, users: users, csv: export.NewCSVExporter(), logger: logger}
}

var studentTemplateHeaders = []string{
	"student_id", "first_name", "middle_name", "last_name",
	"date_of_birth", "gender", "grade_level",
}

var teacherTemplateHeaders = []string{"username", "name", "password"}

// StudentTemplate returns the CSV skeleton for student imports with one
// sample row.
func (s *RosterService) StudentTemplate() ([]byte, error) {
	return s.csv.Render(export.Dataset{
		Headers: studentTemplateHeaders,
		Rows: [][]string{
			{"", "Ama", "", "Mensah", "2015-03-12", "female", "Primary 4"},
		},
	})
}

// TeacherTemplate returns the CSV skeleton for teacher account imports.
func (s *RosterService) TeacherTemplate() ([]byte, error) {
	return s.csv.Render(export.Dataset{
		Headers: teacherTemplateHeaders,
		Rows: [][]string{
			{"k.owusu", "Kwame Owusu", "ChangeMe@123"},
		},
	})
}

// ExportStudents dumps the session school's roster as CSV.
func (s *RosterService) ExportStudents(ctx context.Context, claims *models.JWTClaims) ([]byte, error) {
	students, err := s.students.List(ctx, models.StudentFilter{SchoolCode: claims.SchoolCode})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	rows := make([][]string, 0, len(students))
	for _, student := range students {
		rows = append(rows, []string{
			student.ID, student.FirstName, student.MiddleName, student.LastName,
			student.DateOfBirth, student.Gender, student.GradeLevel,
		})
	}
	data, err := s.csv.Render(export.Dataset{Headers: studentTemplateHeaders, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// ImportStudents creates students from an uploaded CSV, assigning them to the
// given class when set. Invalid rows are reported individually; valid rows
// are imported regardless.
func (s *RosterService) ImportStudents(ctx context.Context, claims *models.JWTClaims, classID string, file io.Reader) (*ImportResult, error) {
	_, rows, err := export.ParseCSV(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not parse csv file")
	}

	result := &ImportResult{Errors: []ImportError{}}
	for i, row := range rows {
		rowNumber := i + 2
		student := models.Student{
			SchoolCode:  claims.SchoolCode,
			FirstName:   row["first_name"],
			MiddleName:  row["middle_name"],
			LastName:    row["last_name"],
			DateOfBirth: row["date_of_birth"],
			Gender:      row["gender"],
			GradeLevel:  row["grade_level"],
			ClassID:     classID,
		}
		if msg := validateStudentRow(student); msg != "" {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: msg})
			continue
		}
		if err := s.students.Create(ctx, &student); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: "failed to save student"})
			s.logger.Warn("student import row failed", zap.Int("row", rowNumber), zap.Error(err))
			continue
		}
		result.Imported++
	}

	s.metrics.RecordImportedRows("students", result.Imported)
	s.logger.Info("students imported",
		zap.String("school_code", claims.SchoolCode),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// ImportTeachers creates teacher accounts from an uploaded CSV.
func (s *RosterService) ImportTeachers(ctx context.Context, claims *models.JWTClaims, file io.Reader) (*ImportResult, error) {
	_, rows, err := export.ParseCSV(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not parse csv file")
	}

	result := &ImportResult{Errors: []ImportError{}}
	for i, row := range rows {
		rowNumber := i + 2
		username, name, password := row["username"], row["name"], row["password"]
		if username == "" || name == "" {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: "username and name are required"})
			continue
		}
		if len(password) < 8 {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: "password must be at least 8 characters"})
			continue
		}

		taken, err := s.users.ExistsByUsername(ctx, username, claims.SchoolCode)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: "failed to check username"})
			continue
		}
		if taken {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: fmt.Sprintf("username %q already exists", username)})
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: "failed to hash password"})
			continue
		}
		user := models.User{
			Username:     username,
			Name:         name,
			Role:         models.RoleTeacher,
			SchoolCode:   claims.SchoolCode,
			Permissions:  models.DefaultPermissions(models.RoleTeacher),
			PasswordHash: string(hash),
		}
		if err := s.users.Create(ctx, &user); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNumber, Message: "failed to save teacher"})
			s.logger.Warn("teacher import row failed", zap.Int("row", rowNumber), zap.Error(err))
			continue
		}
		result.Imported++
	}

	s.metrics.RecordImportedRows("teachers", result.Imported)
	s.logger.Info("teachers imported",
		zap.String("school_code", claims.SchoolCode),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

func validateStudentRow(student models.Student) string {
	if student.FirstName == "" || student.LastName == "" {
		return "first_name and last_name are required"
	}
	if student.DateOfBirth == "" {
		return "date_of_birth is required"
	}
	if _, err := time.Parse("2006-01-02", student.DateOfBirth); err != nil {
		return "date_of_birth must be formatted YYYY-MM-DD"
	}
	return ""
}
