package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type dashboardStudentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	Count(ctx context.Context, schoolCode string) (int, error)
}

type dashboardClassRepository interface {
	Count(ctx context.Context, schoolCode string) (int, error)
}

type dashboardUserRepository interface {
	CountBySchoolAndRole(ctx context.Context, schoolCode string, role models.UserRole) (int, error)
}

type dashboardSchoolRepository interface {
	Count(ctx context.Context) (int, error)
}

type dashboardAttendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	CountByStatusOnDate(ctx context.Context, schoolCode, date string, status models.AttendanceStatus) (int, error)
}

type dashboardGradebookRepository interface {
	AverageOverallScore(ctx context.Context, schoolCode string) (float64, error)
}

// DashboardService aggregates the role-aware landing stats. Admins and
// teachers see school-wide counts and today's attendance split; superusers
// additionally see the tenant count; parents see only their own children.
type DashboardService struct {
	students   dashboardStudentRepository
	classes    dashboardClassRepository
	users      dashboardUserRepository
	schools    dashboardSchoolRepository
	attendance dashboardAttendanceRepository
	gradebook  dashboardGradebookRepository
	logger     *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(
	students dashboardStudentRepository,
	classes dashboardClassRepository,
	users dashboardUserRepository,
	schools dashboardSchoolRepository,
	attendance dashboardAttendanceRepository,
	gradebook dashboardGradebookRepository,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:   students,
		classes:    classes,
		users:      users,
		schools:    schools,
		attendance: attendance,
		gradebook:  gradebook,
		logger:     logger,
	}
}

// Stats assembles the dashboard payload for the caller's role.
func (s *DashboardService) Stats(ctx context.Context, claims *models.JWTClaims) (*models.DashboardStats, error) {
	if claims.Role == models.RoleParent {
		return s.parentStats(ctx, claims)
	}
	return s.schoolStats(ctx, claims)
}

func (s *DashboardService) schoolStats(ctx context.Context, claims *models.JWTClaims) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	totalStudents, err := s.students.Count(ctx, claims.SchoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	stats.TotalStudents = &totalStudents

	totalClasses, err := s.classes.Count(ctx, claims.SchoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	stats.TotalClasses = &totalClasses

	totalTeachers, err := s.users.CountBySchoolAndRole(ctx, claims.SchoolCode, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	stats.TotalTeachers = &totalTeachers

	if claims.Role == models.RoleSuperuser {
		totalSchools, err := s.schools.Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count schools")
		}
		stats.TotalSchools = &totalSchools
	}

	today := time.Now().UTC().Format("2006-01-02")
	present, err := s.attendance.CountByStatusOnDate(ctx, claims.SchoolCode, today, models.AttendancePresent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}
	stats.TodayPresent = &present

	absent, err := s.attendance.CountByStatusOnDate(ctx, claims.SchoolCode, today, models.AttendanceAbsent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}
	stats.TodayAbsent = &absent

	late, err := s.attendance.CountByStatusOnDate(ctx, claims.SchoolCode, today, models.AttendanceLate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}
	stats.TodayLate = &late

	average, err := s.gradebook.AverageOverallScore(ctx, claims.SchoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to average grades")
	}
	stats.AverageGrade = average

	return stats, nil
}

func (s *DashboardService) parentStats(ctx context.Context, claims *models.JWTClaims) (*models.DashboardStats, error) {
	children, err := s.students.List(ctx, models.StudentFilter{
		SchoolCode: claims.SchoolCode,
		ParentID:   claims.UserID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load children")
	}

	stats := &models.DashboardStats{}
	count := len(children)
	stats.ChildrenCount = &count

	if count == 0 {
		zero := 0
		stats.AttendancePresent = &zero
		stats.AttendanceAbsent = &zero
		return stats, nil
	}

	ids := make([]string, 0, count)
	for _, child := range children {
		ids = append(ids, child.ID)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	records, err := s.attendance.List(ctx, models.AttendanceFilter{
		SchoolCode: claims.SchoolCode,
		StudentIDs: ids,
		StartDate:  monthStart.Format("2006-01-02"),
		EndDate:    now.Format("2006-01-02"),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	var present, absent int
	for _, record := range records {
		switch record.Status {
		case models.AttendancePresent, models.AttendanceLate:
			present++
		case models.AttendanceAbsent:
			absent++
		}
	}
	stats.AttendancePresent = &present
	stats.AttendanceAbsent = &absent

	average, err := s.gradebook.AverageOverallScore(ctx, claims.SchoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to average grades")
	}
	stats.AverageGrade = average

	return stats, nil
}
