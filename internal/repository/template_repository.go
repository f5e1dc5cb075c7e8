package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sms-go-api/internal/models"
)

const templateColumns = `id, school_code, school_name, school_motto, logo_url, header_text, sub_header_text,
        subjects, grade_scale, use_weighted_grading, sections, social_skills_categories, skill_ratings,
        achievement_standards, paper_size, layout, head_teacher_sig_url, class_teacher_sig_url, created_at, updated_at`

// TemplateRepository manages persistence for report-card templates, one row
// per school_code.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs a TemplateRepository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindByCode fetches the template of one school.
func (r *TemplateRepository) FindByCode(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_templates WHERE school_code = $1`, templateColumns)
	var tmpl models.ReportTemplate
	if err := r.db.GetContext(ctx, &tmpl, query, schoolCode); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Create inserts a template. The unique index on school_code rejects a second
// template for the same school.
func (r *TemplateRepository) Create(ctx context.Context, tmpl *models.ReportTemplate) error {
	if tmpl.ID == "" {
		tmpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	const query = `INSERT INTO report_templates (id, school_code, school_name, school_motto, logo_url, header_text,
        sub_header_text, subjects, grade_scale, use_weighted_grading, sections, social_skills_categories,
        skill_ratings, achievement_standards, paper_size, layout, head_teacher_sig_url, class_teacher_sig_url,
        created_at, updated_at)
        VALUES (:id, :school_code, :school_name, :school_motto, :logo_url, :header_text,
        :sub_header_text, :subjects, :grade_scale, :use_weighted_grading, :sections, :social_skills_categories,
        :skill_ratings, :achievement_standards, :paper_size, :layout, :head_teacher_sig_url, :class_teacher_sig_url,
        :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tmpl); err != nil {
		return fmt.Errorf("create report template: %w", err)
	}
	return nil
}

// Update modifies a school's template. The school_code column stays out of the
// SET list; a template never moves between schools.
func (r *TemplateRepository) Update(ctx context.Context, tmpl *models.ReportTemplate) error {
	tmpl.UpdatedAt = time.Now().UTC()
	const query = `UPDATE report_templates SET school_name = :school_name, school_motto = :school_motto,
        logo_url = :logo_url, header_text = :header_text, sub_header_text = :sub_header_text,
        subjects = :subjects, grade_scale = :grade_scale, use_weighted_grading = :use_weighted_grading,
        sections = :sections, social_skills_categories = :social_skills_categories, skill_ratings = :skill_ratings,
        achievement_standards = :achievement_standards, paper_size = :paper_size, layout = :layout,
        head_teacher_sig_url = :head_teacher_sig_url, class_teacher_sig_url = :class_teacher_sig_url,
        updated_at = :updated_at
        WHERE school_code = :school_code`
	res, err := r.db.NamedExecContext(ctx, query, tmpl)
	if err != nil {
		return fmt.Errorf("update report template: %w", err)
	}
	return requireRowAffected(res)
}
