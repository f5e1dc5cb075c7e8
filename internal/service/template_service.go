package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/grading"
	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type templateRepository interface {
	FindByCode(ctx context.Context, schoolCode string) (*models.ReportTemplate, error)
	Create(ctx context.Context, tmpl *models.ReportTemplate) error
	Update(ctx context.Context, tmpl *models.ReportTemplate) error
}

type templateSchoolRepository interface {
	FindByCode(ctx context.Context, code string) (*models.School, error)
}

type signatureStore interface {
	Save(kind, filename string, data []byte) (string, error)
}

// TemplateService serves per-school report templates. A school that has never
// configured one receives the default template, created on first read. Reads
// go through a short-lived redis cache keyed by school code; every write
// invalidates the key.
type TemplateService struct {
	repo       templateRepository
	schools    templateSchoolRepository
	signatures signatureStore
	cache      *redis.Client
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
}

// WithMetrics attaches cache instrumentation and returns the service.
func (s *TemplateService) WithMetrics(m *MetricsService) *TemplateService {
	s.metrics = m
	return s
}

// NewTemplateService constructs a TemplateService instance. The cache client
// may be nil, in which case every read hits the database.
func NewTemplateService(repo templateRepository, schools templateSchoolRepository, signatures signatureStore, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &TemplateService{
		repo:       repo,
		schools:    schools,
		signatures: signatures,
		cache:      cache,
		cacheTTL:   cacheTTL,
		validator:  validate,
		logger:     logger,
	}
}

// Get returns the template for a school, creating the default one on first
// read.
func (s *TemplateService) Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	schoolCode = strings.ToUpper(schoolCode)

	if cached := s.fromCache(ctx, schoolCode); cached != nil {
		s.metrics.RecordCacheLookup(true)
		return cached, nil
	}
	s.metrics.RecordCacheLookup(false)

	tmpl, err := s.repo.FindByCode(ctx, schoolCode)
	if err == nil {
		s.toCache(ctx, tmpl)
		return tmpl, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report template")
	}

	school, err := s.schools.FindByCode(ctx, schoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}

	tmpl = models.DefaultReportTemplate(schoolCode, school.Name)
	if err := s.repo.Create(ctx, tmpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create default template")
	}
	s.logger.Info("default report template created", zap.String("school_code", schoolCode))
	s.toCache(ctx, tmpl)
	return tmpl, nil
}

// Update replaces a school's template configuration.
func (s *TemplateService) Update(ctx context.Context, schoolCode string, req models.UpdateTemplateRequest) (*models.ReportTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	tmpl, err := s.Get(ctx, schoolCode)
	if err != nil {
		return nil, err
	}

	tmpl.SchoolName = req.SchoolName
	tmpl.SchoolMotto = req.SchoolMotto
	tmpl.LogoURL = req.LogoURL
	tmpl.HeaderText = req.HeaderText
	tmpl.SubHeaderText = req.SubHeaderText
	tmpl.Subjects = req.Subjects
	tmpl.GradeScale = req.GradeScale
	tmpl.UseWeightedGrading = req.UseWeightedGrading
	tmpl.Sections = req.Sections
	tmpl.SocialSkillsCategories = req.SocialSkillsCategories
	tmpl.SkillRatings = req.SkillRatings
	tmpl.AchievementStandards = req.AchievementStandards
	tmpl.PaperSize = req.PaperSize
	tmpl.Layout = req.Layout

	if err := s.repo.Update(ctx, tmpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update template")
	}
	s.invalidate(ctx, tmpl.SchoolCode)
	return tmpl, nil
}

// ActiveScale returns the grade scale a school currently grades against.
func (s *TemplateService) ActiveScale(ctx context.Context, schoolCode string) (grading.Scale, error) {
	tmpl, err := s.Get(ctx, schoolCode)
	if err != nil {
		return nil, err
	}
	return tmpl.GradeScale.Scale(), nil
}

// UploadSignature stores a signature image for the given role slot and
// records its URL on the template.
func (s *TemplateService) UploadSignature(ctx context.Context, schoolCode, role, filename string, data []byte) (*models.ReportTemplate, error) {
	if role != "head_teacher" && role != "class_teacher" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "signature role must be head_teacher or class_teacher")
	}

	tmpl, err := s.Get(ctx, schoolCode)
	if err != nil {
		return nil, err
	}

	url, err := s.signatures.Save("signatures", filename, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	switch role {
	case "head_teacher":
		tmpl.HeadTeacherSigURL = url
	case "class_teacher":
		tmpl.ClassTeacherSigURL = url
	}
	if err := s.repo.Update(ctx, tmpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store signature reference")
	}
	s.invalidate(ctx, tmpl.SchoolCode)
	return tmpl, nil
}

func cacheKey(schoolCode string) string {
	return fmt.Sprintf("report-template:%s", schoolCode)
}

func (s *TemplateService) fromCache(ctx context.Context, schoolCode string) *models.ReportTemplate {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, cacheKey(schoolCode)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("template cache read failed", zap.Error(err))
		}
		return nil
	}
	var tmpl models.ReportTemplate
	if err := json.Unmarshal(payload, &tmpl); err != nil {
		s.logger.Warn("template cache decode failed", zap.Error(err))
		return nil
	}
	return &tmpl
}

func (s *TemplateService) toCache(ctx context.Context, tmpl *models.ReportTemplate) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(tmpl)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(tmpl.SchoolCode), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("template cache write failed", zap.Error(err))
	}
}

func (s *TemplateService) invalidate(ctx context.Context, schoolCode string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(schoolCode)).Err(); err != nil {
		s.logger.Warn("template cache invalidation failed", zap.Error(err))
	}
}
