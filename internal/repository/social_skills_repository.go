package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sms-go-api/internal/models"
)

const socialSkillsColumns = `id, school_code, student_id, term, academic_year, skills, created_at, updated_at`

// SocialSkillsRepository manages persistence for conduct ratings, one row per
// (student_id, term, academic_year, school_code).
type SocialSkillsRepository struct {
	db *sqlx.DB
}

// NewSocialSkillsRepository constructs a SocialSkillsRepository.
func NewSocialSkillsRepository(db *sqlx.DB) *SocialSkillsRepository {
	return &SocialSkillsRepository{db: db}
}

// Upsert inserts or replaces the ratings for (student, term, year, school) in
// a single statement.
func (r *SocialSkillsRepository) Upsert(ctx context.Context, entry *models.SocialSkillsEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	const query = `INSERT INTO social_skills (id, school_code, student_id, term, academic_year, skills, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (student_id, term, academic_year, school_code)
        DO UPDATE SET skills = EXCLUDED.skills, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, (xmax = 0) AS inserted`
	var inserted bool
	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.SchoolCode, entry.StudentID, entry.Term, entry.AcademicYear,
		entry.Skills, entry.CreatedAt, entry.UpdatedAt,
	).Scan(&entry.ID, &entry.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert social skills: %w", err)
	}
	return inserted, nil
}

// ListForStudent returns a student's entries, newest academic year first.
func (r *SocialSkillsRepository) ListForStudent(ctx context.Context, studentID, schoolCode string) ([]models.SocialSkillsEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM social_skills WHERE student_id = $1 AND school_code = $2
        ORDER BY academic_year DESC, term`, socialSkillsColumns)
	var entries []models.SocialSkillsEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID, schoolCode); err != nil {
		return nil, fmt.Errorf("list social skills: %w", err)
	}
	return entries, nil
}

// FindForStudentTerm fetches the entry for one student in one term.
func (r *SocialSkillsRepository) FindForStudentTerm(ctx context.Context, studentID, term, academicYear, schoolCode string) (*models.SocialSkillsEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM social_skills
        WHERE student_id = $1 AND term = $2 AND academic_year = $3 AND school_code = $4`, socialSkillsColumns)
	var entry models.SocialSkillsEntry
	if err := r.db.GetContext(ctx, &entry, query, studentID, term, academicYear, schoolCode); err != nil {
		return nil, err
	}
	return &entry, nil
}
