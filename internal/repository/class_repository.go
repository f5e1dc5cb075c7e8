package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sms-go-api/internal/models"
)

const classColumns = `id, school_code, name, grade_level, teacher_id, room_number, academic_year, created_by, created_at`

// ClassRepository manages persistence for class records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes of one school. When TeacherID is set, only classes
// taught or created by that user are returned.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE school_code = $1`, classColumns)
	args := []interface{}{filter.SchoolCode}
	if filter.TeacherID != "" {
		query += ` AND (teacher_id = $2 OR created_by = $2)`
		args = append(args, filter.TeacherID)
	}
	query += ` ORDER BY name`

	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID fetches a class within a school.
func (r *ClassRepository) FindByID(ctx context.Context, id, schoolCode string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE id = $1 AND school_code = $2`, classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id, schoolCode); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create inserts a new class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	class.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO classes (id, school_code, name, grade_level, teacher_id, room_number, academic_year, created_by, created_at)
        VALUES (:id, :school_code, :name, :grade_level, :teacher_id, :room_number, :academic_year, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies an existing class within its school.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	const query = `UPDATE classes SET name = :name, grade_level = :grade_level, teacher_id = :teacher_id,
        room_number = :room_number, academic_year = :academic_year
        WHERE id = :id AND school_code = :school_code`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes a class within its school.
func (r *ClassRepository) Delete(ctx context.Context, id, schoolCode string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1 AND school_code = $2`, id, schoolCode)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return requireRowAffected(res)
}

// Count returns the number of classes in a school.
func (r *ClassRepository) Count(ctx context.Context, schoolCode string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM classes WHERE school_code = $1`, schoolCode); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}
