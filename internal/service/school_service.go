package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type schoolRepository interface {
	List(ctx context.Context) ([]models.School, error)
	FindByID(ctx context.Context, id string) (*models.School, error)
	FindByCode(ctx context.Context, code string) (*models.School, error)
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	Delete(ctx context.Context, id string) error
}

// SchoolService manages tenants. The bootstrap school hosts the superuser
// account and can never be deleted; school codes are immutable once created.
type SchoolService struct {
	repo          schoolRepository
	validator     *validator.Validate
	logger        *zap.Logger
	bootstrapCode string
}

// NewSchoolService constructs a SchoolService instance.
func NewSchoolService(repo schoolRepository, validate *validator.Validate, logger *zap.Logger, bootstrapCode string) *SchoolService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SchoolService{repo: repo, validator: validate, logger: logger, bootstrapCode: strings.ToUpper(bootstrapCode)}
}

// List returns all schools.
func (s *SchoolService) List(ctx context.Context) ([]models.School, error) {
	schools, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
	}
	return schools, nil
}

// Get fetches one school by id.
func (s *SchoolService) Get(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return school, nil
}

// Create registers a new tenant. Codes are stored uppercase and must be
// unique.
func (s *SchoolService) Create(ctx context.Context, req models.CreateSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}

	code := strings.ToUpper(strings.TrimSpace(req.SchoolCode))
	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "school code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check school code")
	}

	school := &models.School{
		SchoolCode: code,
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		Email:      req.Email,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school")
	}

	s.logger.Info("school created", zap.String("school_code", school.SchoolCode))
	return school, nil
}

// Update modifies a school's profile. The code field is never touched.
func (s *SchoolService) Update(ctx context.Context, id string, req models.UpdateSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}

	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	school.Name = req.Name
	school.Address = req.Address
	school.Phone = req.Phone
	school.Email = req.Email
	if req.IsActive != nil {
		school.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school")
	}
	return school, nil
}

// Delete removes a school. The bootstrap school is protected.
func (s *SchoolService) Delete(ctx context.Context, id string) error {
	school, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if school.SchoolCode == s.bootstrapCode {
		return appErrors.Clone(appErrors.ErrForbidden, "the bootstrap school cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete school")
	}
	s.logger.Info("school deleted", zap.String("school_code", school.SchoolCode))
	return nil
}
