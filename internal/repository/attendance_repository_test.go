package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sms-go-api/internal/models"
)

func TestAttendanceRepositoryUpsertCreates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`INSERT INTO attendance .+ ON CONFLICT \(student_id, date, school_code\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).
			AddRow("att-1", time.Now().UTC(), true))

	record := &models.AttendanceRecord{
		SchoolCode: "GHS",
		StudentID:  "stu-1",
		ClassID:    "class-1",
		Date:       "2026-02-10",
		Status:     models.AttendancePresent,
		MarkedBy:   "user-1",
	}
	inserted, err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, "att-1", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertOverwrites(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	original := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO attendance .+ ON CONFLICT \(student_id, date, school_code\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).
			AddRow("att-existing", original, false))

	record := &models.AttendanceRecord{
		SchoolCode: "GHS",
		StudentID:  "stu-1",
		Date:       "2026-02-10",
		Status:     models.AttendanceLate,
		MarkedBy:   "user-1",
	}
	inserted, err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, "att-existing", record.ID)
	require.Equal(t, original, record.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByDateRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "school_code", "student_id", "class_id", "date", "status", "marked_by", "created_at", "updated_at",
	}).AddRow("att-1", "GHS", "stu-1", "class-1", "2026-02-10", models.AttendancePresent, "user-1", now, now)

	mock.ExpectQuery(`SELECT .+ FROM attendance WHERE school_code = \$1 AND student_id = \$2 AND date >= \$3 AND date <= \$4`).
		WithArgs("GHS", "stu-1", "2026-02-01", "2026-02-28").
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), models.AttendanceFilter{
		SchoolCode: "GHS",
		StudentID:  "stu-1",
		StartDate:  "2026-02-01",
		EndDate:    "2026-02-28",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummaryForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"status", "total"}).
		AddRow(models.AttendancePresent, 18).
		AddRow(models.AttendanceAbsent, 2).
		AddRow(models.AttendanceLate, 1)
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS total FROM attendance`).
		WithArgs("stu-1", "GHS").
		WillReturnRows(rows)

	summary, err := repo.SummaryForStudent(context.Background(), "stu-1", "GHS")
	require.NoError(t, err)
	require.Equal(t, 18, summary.Present)
	require.Equal(t, 2, summary.Absent)
	require.Equal(t, 1, summary.Late)
	require.Equal(t, 21, summary.TotalDays)
	require.NoError(t, mock.ExpectationsWereMet())
}
