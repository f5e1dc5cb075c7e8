package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id, schoolCode string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id, schoolCode string) error
}

type photoStore interface {
	Save(kind, filename string, data []byte) (string, error)
	Delete(url string) error
}

// StudentService manages student records within the session school. Parents
// only ever see students linked to them; other roles see the whole school.
type StudentService struct {
	repo      studentRepository
	photos    photoStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, photos photoStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, photos: photos, validator: validate, logger: logger}
}

// List returns students visible to the caller, with filters applied.
func (s *StudentService) List(ctx context.Context, claims *models.JWTClaims, filter models.StudentFilter) ([]models.Student, error) {
	filter.SchoolCode = claims.SchoolCode
	if claims.Role == models.RoleParent {
		filter.ParentID = claims.UserID
	}
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	now := time.Now().UTC()
	for i := range students {
		students[i].RefreshAge(now)
	}
	return students, nil
}

// Get fetches one student visible to the caller.
func (s *StudentService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id, claims.SchoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if claims.Role == models.RoleParent && student.ParentID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	student.RefreshAge(time.Now().UTC())
	return student, nil
}

// Create registers a student in the session school.
func (s *StudentService) Create(ctx context.Context, claims *models.JWTClaims, req models.SaveStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		SchoolCode:       claims.SchoolCode,
		FirstName:        req.FirstName,
		MiddleName:       req.MiddleName,
		LastName:         req.LastName,
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		GradeLevel:       req.GradeLevel,
		ClassID:          req.ClassID,
		ParentID:         req.ParentID,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Notes:            req.Notes,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	student.RefreshAge(time.Now().UTC())

	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("school_code", student.SchoolCode))
	return student, nil
}

// Update replaces a student's profile.
func (s *StudentService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.SaveStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	student.FirstName = req.FirstName
	student.MiddleName = req.MiddleName
	student.LastName = req.LastName
	student.DateOfBirth = req.DateOfBirth
	student.Gender = req.Gender
	student.GradeLevel = req.GradeLevel
	student.ClassID = req.ClassID
	student.ParentID = req.ParentID
	student.Address = req.Address
	student.EmergencyContact = req.EmergencyContact
	student.Notes = req.Notes

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	student.RefreshAge(time.Now().UTC())
	return student, nil
}

// Delete removes a student and their stored photo.
func (s *StudentService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	student, err := s.Get(ctx, claims, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, claims.SchoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if student.PhotoURL != "" {
		if err := s.photos.Delete(student.PhotoURL); err != nil {
			s.logger.Warn("failed to remove student photo", zap.String("student_id", id), zap.Error(err))
		}
	}
	return nil
}

// UploadPhoto validates and stores a student photo, replacing any previous
// one.
func (s *StudentService) UploadPhoto(ctx context.Context, claims *models.JWTClaims, id, filename string, data []byte) (*models.Student, error) {
	student, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	url, err := s.photos.Save("photos", filename, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	previous := student.PhotoURL
	student.PhotoURL = url
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo reference")
	}
	if previous != "" {
		if err := s.photos.Delete(previous); err != nil {
			s.logger.Warn("failed to remove replaced photo", zap.String("student_id", id), zap.Error(err))
		}
	}
	return student, nil
}
