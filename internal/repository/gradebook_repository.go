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

const gradebookColumns = `id, school_code, student_id, class_id, term, academic_year, subjects,
        overall_score, overall_grade, overall_points, overall_domain, graded_by, created_at, updated_at`

// GradebookRepository manages persistence for gradebook entries. The unique
// index on (student_id, term, academic_year, school_code) makes Upsert atomic:
// re-saving a term replaces the subject list without ever duplicating the row.
type GradebookRepository struct {
	db *sqlx.DB
}

// NewGradebookRepository constructs a GradebookRepository.
func NewGradebookRepository(db *sqlx.DB) *GradebookRepository {
	return &GradebookRepository{db: db}
}

// Upsert inserts or replaces the entry for (student, term, year, school) in a
// single statement. On conflict the original id and created_at survive; the
// caller's entry is updated with the surviving values.
func (r *GradebookRepository) Upsert(ctx context.Context, entry *models.GradebookEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	const query = `INSERT INTO gradebook (id, school_code, student_id, class_id, term, academic_year, subjects,
        overall_score, overall_grade, overall_points, overall_domain, graded_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (student_id, term, academic_year, school_code)
        DO UPDATE SET class_id = EXCLUDED.class_id, subjects = EXCLUDED.subjects,
            overall_score = EXCLUDED.overall_score, overall_grade = EXCLUDED.overall_grade,
            overall_points = EXCLUDED.overall_points, overall_domain = EXCLUDED.overall_domain,
            graded_by = EXCLUDED.graded_by, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, (xmax = 0) AS inserted`
	var inserted bool
	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.SchoolCode, entry.StudentID, entry.ClassID, entry.Term, entry.AcademicYear,
		entry.Subjects, entry.OverallScore, entry.OverallGrade, entry.OverallPoints, entry.OverallDomain,
		entry.GradedBy, entry.CreatedAt, entry.UpdatedAt,
	).Scan(&entry.ID, &entry.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert gradebook entry: %w", err)
	}
	return inserted, nil
}

// List returns gradebook entries of one school matching the filters.
func (r *GradebookRepository) List(ctx context.Context, filter models.GradebookFilter) ([]models.GradebookEntry, error) {
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
	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}

	query := fmt.Sprintf(`SELECT %s FROM gradebook WHERE %s ORDER BY academic_year DESC, term, student_id`,
		gradebookColumns, strings.Join(conditions, " AND "))

	var entries []models.GradebookEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list gradebook entries: %w", err)
	}
	return entries, nil
}

// FindByID fetches a gradebook entry within a school.
func (r *GradebookRepository) FindByID(ctx context.Context, id, schoolCode string) (*models.GradebookEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM gradebook WHERE id = $1 AND school_code = $2`, gradebookColumns)
	var entry models.GradebookEntry
	if err := r.db.GetContext(ctx, &entry, query, id, schoolCode); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindForStudentTerm fetches the entry for one student in one term.
func (r *GradebookRepository) FindForStudentTerm(ctx context.Context, studentID, term, academicYear, schoolCode string) (*models.GradebookEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM gradebook
        WHERE student_id = $1 AND term = $2 AND academic_year = $3 AND school_code = $4`, gradebookColumns)
	var entry models.GradebookEntry
	if err := r.db.GetContext(ctx, &entry, query, studentID, term, academicYear, schoolCode); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes a gradebook entry within its school.
func (r *GradebookRepository) Delete(ctx context.Context, id, schoolCode string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gradebook WHERE id = $1 AND school_code = $2`, id, schoolCode)
	if err != nil {
		return fmt.Errorf("delete gradebook entry: %w", err)
	}
	return requireRowAffected(res)
}

// AverageOverallScore returns the mean overall score across a school's
// entries, or 0 when the school has none.
func (r *GradebookRepository) AverageOverallScore(ctx context.Context, schoolCode string) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg,
		`SELECT COALESCE(AVG(overall_score), 0) FROM gradebook WHERE school_code = $1`, schoolCode)
	if err != nil {
		return 0, fmt.Errorf("average gradebook score: %w", err)
	}
	return avg, nil
}
