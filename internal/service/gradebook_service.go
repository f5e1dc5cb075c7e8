package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/grading"
	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type gradebookRepository interface {
	Upsert(ctx context.Context, entry *models.GradebookEntry) (bool, error)
	List(ctx context.Context, filter models.GradebookFilter) ([]models.GradebookEntry, error)
	FindByID(ctx context.Context, id, schoolCode string) (*models.GradebookEntry, error)
	Delete(ctx context.Context, id, schoolCode string) error
}

type gradeScaleProvider interface {
	ActiveScale(ctx context.Context, schoolCode string) (grading.Scale, error)
}

// GradebookService saves and serves term grades. Each subject row is scored in
// its own mode: weighted when any assessment component is present, the flat
// score otherwise. Overall fields are the banded mean of the subject scores.
type GradebookService struct {
	repo      gradebookRepository
	students  attendanceStudentRepository
	scales    gradeScaleProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradebookService constructs a GradebookService instance.
func NewGradebookService(repo gradebookRepository, students attendanceStudentRepository, scales gradeScaleProvider, validate *validator.Validate, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradebookService{repo: repo, students: students, scales: scales, validator: validate, logger: logger}
}

// Save scores and persists all subject grades for one student and term. A
// re-save replaces the subject list in place, keeping the entry's identity.
func (s *GradebookService) Save(ctx context.Context, claims *models.JWTClaims, req models.SaveGradebookRequest) (*models.GradebookEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gradebook payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID, claims.SchoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	scale, err := s.scales.ActiveScale(ctx, claims.SchoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}

	subjects := make(models.SubjectGradeList, len(req.Subjects))
	scores := make([]float64, 0, len(req.Subjects))
	for i, subject := range req.Subjects {
		if subject.Components().Weighted() {
			subject.Score = grading.WeightedScore(subject.Components())
		} else {
			subject.Score = grading.Round2(subject.Score)
		}
		subject.Grade = scale.Band(subject.Score).Grade
		subjects[i] = subject
		scores = append(scores, subject.Score)
	}

	overall := grading.OverallScore(scores)
	band := scale.Band(overall)

	entry := &models.GradebookEntry{
		SchoolCode:    claims.SchoolCode,
		StudentID:     req.StudentID,
		ClassID:       req.ClassID,
		Term:          req.Term,
		AcademicYear:  req.AcademicYear,
		Subjects:      subjects,
		OverallScore:  overall,
		OverallGrade:  band.Grade,
		OverallPoints: band.Points,
		OverallDomain: band.Domain,
		GradedBy:      claims.UserID,
	}
	if _, err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save gradebook entry")
	}

	s.logger.Info("gradebook entry saved",
		zap.String("student_id", entry.StudentID),
		zap.String("term", entry.Term),
		zap.String("school_code", entry.SchoolCode))
	return entry, nil
}

// List returns gradebook entries visible to the caller. Parents are limited
// to their own children.
func (s *GradebookService) List(ctx context.Context, claims *models.JWTClaims, filter models.GradebookFilter) ([]models.GradebookEntry, error) {
	filter.SchoolCode = claims.SchoolCode

	if claims.Role == models.RoleParent {
		children, err := s.students.List(ctx, models.StudentFilter{
			SchoolCode: claims.SchoolCode,
			ParentID:   claims.UserID,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load children")
		}
		ids := make([]string, 0, len(children))
		for _, child := range children {
			if filter.StudentID != "" && filter.StudentID != child.ID {
				continue
			}
			ids = append(ids, child.ID)
		}
		if len(ids) == 0 {
			return []models.GradebookEntry{}, nil
		}
		filter.StudentID = ""
		filter.StudentIDs = ids
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gradebook entries")
	}
	return entries, nil
}

// Get fetches a gradebook entry within the session school.
func (s *GradebookService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.GradebookEntry, error) {
	entry, err := s.repo.FindByID(ctx, id, claims.SchoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gradebook entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradebook entry")
	}
	if claims.Role == models.RoleParent {
		student, err := s.students.FindByID(ctx, entry.StudentID, claims.SchoolCode)
		if err != nil || student.ParentID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gradebook entry not found")
		}
	}
	return entry, nil
}

// Delete removes a gradebook entry within the session school.
func (s *GradebookService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := s.repo.Delete(ctx, id, claims.SchoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "gradebook entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete gradebook entry")
	}
	return nil
}
