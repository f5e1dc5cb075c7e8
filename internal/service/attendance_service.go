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

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (bool, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

type attendanceStudentRepository interface {
	FindByID(ctx context.Context, id, schoolCode string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

// AttendanceService records daily statuses. Marking is idempotent per
// (student, date): a second mark on the same day overwrites the status in one
// atomic statement rather than producing a duplicate.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, students: students, validator: validate, logger: logger}
}

// Mark records one student's status for one date.
func (s *AttendanceService) Mark(ctx context.Context, claims *models.JWTClaims, req models.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !models.IsValidAttendanceStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be present, absent, late or excused")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID, claims.SchoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	record := &models.AttendanceRecord{
		SchoolCode: claims.SchoolCode,
		StudentID:  req.StudentID,
		ClassID:    req.ClassID,
		Date:       req.Date,
		Status:     req.Status,
		MarkedBy:   claims.UserID,
	}
	if _, err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// MarkBulk records a batch of statuses and reports how many were created
// versus overwritten. The batch fails as a whole on the first invalid row.
func (s *AttendanceService) MarkBulk(ctx context.Context, claims *models.JWTClaims, req models.BulkAttendanceRequest) (*models.BulkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}

	result := &models.BulkAttendanceResult{}
	for _, item := range req.Records {
		if !models.IsValidAttendanceStatus(item.Status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "status must be present, absent, late or excused")
		}
		record := &models.AttendanceRecord{
			SchoolCode: claims.SchoolCode,
			StudentID:  item.StudentID,
			ClassID:    item.ClassID,
			Date:       item.Date,
			Status:     item.Status,
			MarkedBy:   claims.UserID,
		}
		inserted, err := s.repo.Upsert(ctx, record)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("bulk attendance recorded",
		zap.String("school_code", claims.SchoolCode),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return result, nil
}

// List returns attendance records visible to the caller. Parents are limited
// to their own children.
func (s *AttendanceService) List(ctx context.Context, claims *models.JWTClaims, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	filter.SchoolCode = claims.SchoolCode

	if claims.Role == models.RoleParent {
		children, err := s.students.List(ctx, models.StudentFilter{
			SchoolCode: claims.SchoolCode,
			ParentID:   claims.UserID,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load children")
		}
		if len(children) == 0 {
			return []models.AttendanceRecord{}, nil
		}
		ids := make([]string, 0, len(children))
		for _, child := range children {
			if filter.StudentID != "" && filter.StudentID != child.ID {
				continue
			}
			ids = append(ids, child.ID)
		}
		if len(ids) == 0 {
			return []models.AttendanceRecord{}, nil
		}
		filter.StudentID = ""
		filter.StudentIDs = ids
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}
