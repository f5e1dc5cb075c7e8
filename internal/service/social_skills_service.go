package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type socialSkillsRepository interface {
	Upsert(ctx context.Context, entry *models.SocialSkillsEntry) (bool, error)
	ListForStudent(ctx context.Context, studentID, schoolCode string) ([]models.SocialSkillsEntry, error)
	FindForStudentTerm(ctx context.Context, studentID, term, academicYear, schoolCode string) (*models.SocialSkillsEntry, error)
}

// SocialSkillsService records conduct ratings per student and term. Saving the
// same term again replaces the ratings.
type SocialSkillsService struct {
	repo      socialSkillsRepository
	students  attendanceStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSocialSkillsService constructs a SocialSkillsService instance.
func NewSocialSkillsService(repo socialSkillsRepository, students attendanceStudentRepository, validate *validator.Validate, logger *zap.Logger) *SocialSkillsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SocialSkillsService{repo: repo, students: students, validator: validate, logger: logger}
}

// Save records a student's conduct ratings for one term.
func (s *SocialSkillsService) Save(ctx context.Context, claims *models.JWTClaims, req models.SaveSocialSkillsRequest) (*models.SocialSkillsEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid social skills payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID, claims.SchoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	entry := &models.SocialSkillsEntry{
		SchoolCode:   claims.SchoolCode,
		StudentID:    req.StudentID,
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
		Skills:       models.SkillsMap(req.Skills),
	}
	if _, err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save social skills")
	}
	return entry, nil
}

// ListForStudent returns a student's entries, optionally narrowed to one term.
// Parents are limited to their own children.
func (s *SocialSkillsService) ListForStudent(ctx context.Context, claims *models.JWTClaims, studentID, term, academicYear string) ([]models.SocialSkillsEntry, error) {
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

	if term != "" && academicYear != "" {
		entry, err := s.repo.FindForStudentTerm(ctx, studentID, term, academicYear, claims.SchoolCode)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return []models.SocialSkillsEntry{}, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load social skills")
		}
		return []models.SocialSkillsEntry{*entry}, nil
	}

	entries, err := s.repo.ListForStudent(ctx, studentID, claims.SchoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list social skills")
	}
	return entries, nil
}
