package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sms-go-api/internal/models"
)

// SchoolRepository manages persistence for school (tenant) records.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// List returns all schools ordered by code.
func (r *SchoolRepository) List(ctx context.Context) ([]models.School, error) {
	const query = `SELECT id, school_code, name, address, phone, email, is_active, created_at, updated_at
        FROM schools ORDER BY school_code`
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, query); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// FindByID fetches a school by ID.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	const query = `SELECT id, school_code, name, address, phone, email, is_active, created_at, updated_at
        FROM schools WHERE id = $1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// FindByCode fetches a school by its unique code.
func (r *SchoolRepository) FindByCode(ctx context.Context, code string) (*models.School, error) {
	const query = `SELECT id, school_code, name, address, phone, email, is_active, created_at, updated_at
        FROM schools WHERE school_code = $1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, code); err != nil {
		return nil, err
	}
	return &school, nil
}

// Create inserts a new school record.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	school.CreatedAt = now
	school.UpdatedAt = now
	const query = `INSERT INTO schools (id, school_code, name, address, phone, email, is_active, created_at, updated_at)
        VALUES (:id, :school_code, :name, :address, :phone, :email, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// Update modifies a school. The school_code column is deliberately absent from
// the SET list: tenant codes are immutable after creation.
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	school.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schools SET name = :name, address = :address, phone = :phone, email = :email,
        is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("update school: %w", err)
	}
	return nil
}

// Delete removes a school record.
func (r *SchoolRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete school: %w", err)
	}
	return nil
}

// Count returns the number of schools.
func (r *SchoolRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM schools`); err != nil {
		return 0, fmt.Errorf("count schools: %w", err)
	}
	return total, nil
}
