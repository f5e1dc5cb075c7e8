package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sms-go-api/internal/models"
)

const studentColumns = `id, school_code, first_name, middle_name, last_name, date_of_birth, gender,
        grade_level, class_id, parent_id, address, emergency_contact, notes, photo_url, created_at, updated_at`

// StudentRepository manages persistence for student records. Every query is
// scoped to a school_code; there is no unscoped access path.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students of one school matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"school_code = $1"}
	args := []interface{}{filter.SchoolCode}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}

	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY last_name, first_name`,
		studentColumns, strings.Join(conditions, " AND "))

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student within a school. A cross-tenant id misses the
// school_code filter and reads as absent.
func (r *StudentRepository) FindByID(ctx context.Context, id, schoolCode string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 AND school_code = $2`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, schoolCode); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, school_code, first_name, middle_name, last_name, date_of_birth, gender,
        grade_level, class_id, parent_id, address, emergency_contact, notes, photo_url, created_at, updated_at)
        VALUES (:id, :school_code, :first_name, :middle_name, :last_name, :date_of_birth, :gender,
        :grade_level, :class_id, :parent_id, :address, :emergency_contact, :notes, :photo_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student within its school.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
        date_of_birth = :date_of_birth, gender = :gender, grade_level = :grade_level, class_id = :class_id,
        parent_id = :parent_id, address = :address, emergency_contact = :emergency_contact, notes = :notes,
        photo_url = :photo_url, updated_at = :updated_at
        WHERE id = :id AND school_code = :school_code`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes a student within its school.
func (r *StudentRepository) Delete(ctx context.Context, id, schoolCode string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1 AND school_code = $2`, id, schoolCode)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireRowAffected(res)
}

// Count returns the number of students in a school.
func (r *StudentRepository) Count(ctx context.Context, schoolCode string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students WHERE school_code = $1`, schoolCode); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
