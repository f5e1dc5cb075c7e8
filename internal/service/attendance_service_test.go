package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records map[string]*models.AttendanceRecord
}

func attendanceKey(record *models.AttendanceRecord) string {
	return record.StudentID + "|" + record.Date + "|" + record.SchoolCode
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	if m.records == nil {
		m.records = map[string]*models.AttendanceRecord{}
	}
	key := attendanceKey(record)
	if existing, ok := m.records[key]; ok {
		existing.Status = record.Status
		existing.MarkedBy = record.MarkedBy
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return false, nil
	}
	m.records[key] = record
	return true, nil
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	out := []models.AttendanceRecord{}
	for _, record := range m.records {
		if record.SchoolCode != filter.SchoolCode {
			continue
		}
		if filter.StudentID != "" && record.StudentID != filter.StudentID {
			continue
		}
		if len(filter.StudentIDs) > 0 {
			match := false
			for _, id := range filter.StudentIDs {
				if record.StudentID == id {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *record)
	}
	return out, nil
}

func attendanceFixture() (*AttendanceService, *mockAttendanceRepo) {
	repo := &mockAttendanceRepo{}
	students := &mockStudentLookup{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", SchoolCode: "GHS", ParentID: "parent-1"},
		"stu-2": {ID: "stu-2", SchoolCode: "GHS"},
	}}
	svc := NewAttendanceService(repo, students, validator.New(), zap.NewNop())
	return svc, repo
}

func TestAttendanceServiceMark(t *testing.T) {
	svc, repo := attendanceFixture()

	record, err := svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-1",
		Date:      "2026-02-10",
		Status:    models.AttendancePresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", record.MarkedBy)
	assert.Len(t, repo.records, 1)
}

func TestAttendanceServiceSecondMarkOverwrites(t *testing.T) {
	svc, repo := attendanceFixture()

	_, err := svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-1", Date: "2026-02-10", Status: models.AttendancePresent,
	})
	require.NoError(t, err)

	_, err = svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-1", Date: "2026-02-10", Status: models.AttendanceLate,
	})
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	for _, record := range repo.records {
		assert.Equal(t, models.AttendanceLate, record.Status)
	}
}

func TestAttendanceServiceMarkInvalidStatus(t *testing.T) {
	svc, _ := attendanceFixture()

	_, err := svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-1", Date: "2026-02-10", Status: "sleeping",
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestAttendanceServiceMarkUnknownStudent(t *testing.T) {
	svc, _ := attendanceFixture()

	_, err := svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-elsewhere", Date: "2026-02-10", Status: models.AttendancePresent,
	})
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestAttendanceServiceBulkCountsCreatedAndUpdated(t *testing.T) {
	svc, _ := attendanceFixture()

	_, err := svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-1", Date: "2026-02-10", Status: models.AttendancePresent,
	})
	require.NoError(t, err)

	result, err := svc.MarkBulk(context.Background(), adminClaims(), models.BulkAttendanceRequest{
		Records: []models.MarkAttendanceRequest{
			{StudentID: "stu-1", Date: "2026-02-10", Status: models.AttendanceAbsent},
			{StudentID: "stu-2", Date: "2026-02-10", Status: models.AttendancePresent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
}

func TestAttendanceServiceParentSeesOnlyOwnChildren(t *testing.T) {
	svc, _ := attendanceFixture()

	_, err := svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-1", Date: "2026-02-10", Status: models.AttendancePresent,
	})
	require.NoError(t, err)
	_, err = svc.Mark(context.Background(), adminClaims(), models.MarkAttendanceRequest{
		StudentID: "stu-2", Date: "2026-02-10", Status: models.AttendancePresent,
	})
	require.NoError(t, err)

	parent := &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent, SchoolCode: "GHS"}
	records, err := svc.List(context.Background(), parent, models.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "stu-1", records[0].StudentID)

	// Asking for another family's child yields nothing rather than an error.
	records, err = svc.List(context.Background(), parent, models.AttendanceFilter{StudentID: "stu-2"})
	require.NoError(t, err)
	assert.Empty(t, records)
}
