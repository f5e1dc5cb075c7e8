package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sms-go-api/internal/models"
)

const attendanceColumns = `id, school_code, student_id, class_id, date, status, marked_by, created_at, updated_at`

// AttendanceRepository manages persistence for attendance records. The unique
// index on (student_id, date, school_code) makes Upsert atomic: two writers
// marking the same student on the same day can never produce a duplicate row.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or overwrites the record for (student, date, school) in a
// single statement. It reports whether a new row was created and fills in the
// surviving row's id and created_at.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO attendance (id, school_code, student_id, class_id, date, status, marked_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (student_id, date, school_code)
        DO UPDATE SET status = EXCLUDED.status, class_id = EXCLUDED.class_id,
            marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, (xmax = 0) AS inserted`
	var inserted bool
	err := r.db.QueryRowxContext(ctx, query,
		record.ID, record.SchoolCode, record.StudentID, record.ClassID, record.Date,
		record.Status, record.MarkedBy, record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID, &record.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert attendance: %w", err)
	}
	return inserted, nil
}

// List returns attendance records of one school matching the filters.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	conditions := []string{"school_code = $1"}
	args := []interface{}{filter.SchoolCode}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if len(filter.StudentIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("student_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.StudentIDs))
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d AND date <= $%d", len(args)+1, len(args)+2))
		args = append(args, filter.StartDate, filter.EndDate)
	}

	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE %s ORDER BY date DESC`,
		attendanceColumns, strings.Join(conditions, " AND "))

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// SummaryForStudent aggregates a student's records by status.
func (r *AttendanceRepository) SummaryForStudent(ctx context.Context, studentID, schoolCode string) (*models.AttendanceSummary, error) {
	const query = `SELECT status, COUNT(*) AS total FROM attendance
        WHERE student_id = $1 AND school_code = $2 GROUP BY status`
	rows := []struct {
		Status models.AttendanceStatus `db:"status"`
		Total  int                     `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID, schoolCode); err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	summary := &models.AttendanceSummary{}
	for _, row := range rows {
		for i := 0; i < row.Total; i++ {
			summary.Add(row.Status)
		}
	}
	return summary, nil
}

// CountByStatusOnDate counts records with a status on one date in a school.
func (r *AttendanceRepository) CountByStatusOnDate(ctx context.Context, schoolCode, date string, status models.AttendanceStatus) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM attendance WHERE school_code = $1 AND date = $2 AND status = $3`,
		schoolCode, date, status)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return total, nil
}
