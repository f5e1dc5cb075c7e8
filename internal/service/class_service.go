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

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	FindByID(ctx context.Context, id, schoolCode string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id, schoolCode string) error
}

// ClassService manages classes within the session school. Teachers only see
// classes they teach or created; admins and superusers see the whole school.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// List returns classes visible to the caller.
func (s *ClassService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Class, error) {
	filter := models.ClassFilter{SchoolCode: claims.SchoolCode}
	if claims.Role == models.RoleTeacher {
		filter.TeacherID = claims.UserID
	}
	classes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get fetches one class within the session school.
func (s *ClassService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id, claims.SchoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create registers a class in the session school.
func (s *ClassService) Create(ctx context.Context, claims *models.JWTClaims, req models.SaveClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.Class{
		SchoolCode:   claims.SchoolCode,
		Name:         req.Name,
		GradeLevel:   req.GradeLevel,
		TeacherID:    req.TeacherID,
		RoomNumber:   req.RoomNumber,
		AcademicYear: req.AcademicYear,
		CreatedBy:    claims.UserID,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("school_code", class.SchoolCode))
	return class, nil
}

// Update modifies a class within the session school.
func (s *ClassService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.SaveClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	class.Name = req.Name
	class.GradeLevel = req.GradeLevel
	class.TeacherID = req.TeacherID
	class.RoomNumber = req.RoomNumber
	class.AcademicYear = req.AcademicYear

	if err := s.repo.Update(ctx, class); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class within the session school.
func (s *ClassService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := s.repo.Delete(ctx, id, claims.SchoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}
