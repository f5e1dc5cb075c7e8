package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sms-go-api/internal/handler"
	"github.com/noah-isme/sms-go-api/internal/middleware"
	"github.com/noah-isme/sms-go-api/internal/models"
	"github.com/noah-isme/sms-go-api/internal/repository"
	"github.com/noah-isme/sms-go-api/internal/service"
	"github.com/noah-isme/sms-go-api/pkg/cache"
	"github.com/noah-isme/sms-go-api/pkg/config"
	"github.com/noah-isme/sms-go-api/pkg/database"
	"github.com/noah-isme/sms-go-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sms-go-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sms-go-api/pkg/middleware/requestid"
	"github.com/noah-isme/sms-go-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, template cache disabled", "error", err)
		redisClient = nil
	}

	uploads, err := storage.NewUploadStore(cfg.Uploads.StorageDir, cfg.Uploads.MaxFileSizeBytes, cfg.Uploads.AllowedExtensions)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload store", "error", err)
	}

	schoolRepo := repository.NewSchoolRepository(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradebookRepo := repository.NewGradebookRepository(db)
	socialSkillsRepo := repository.NewSocialSkillsRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	if err := seedBootstrap(context.Background(), cfg.Bootstrap, schoolRepo, userRepo, logr); err != nil {
		logr.Sugar().Fatalw("failed to seed bootstrap data", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, schoolRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	schoolSvc := service.NewSchoolService(schoolRepo, nil, logr, cfg.Bootstrap.SchoolCode)
	userSvc := service.NewUserService(userRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, uploads, nil, logr)
	classSvc := service.NewClassService(classRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, nil, logr)
	templateSvc := service.NewTemplateService(templateRepo, schoolRepo, uploads, redisClient, cfg.Templates.CacheTTL, nil, logr).WithMetrics(metricsSvc)
	gradebookSvc := service.NewGradebookService(gradebookRepo, studentRepo, templateSvc, nil, logr)
	socialSkillsSvc := service.NewSocialSkillsService(socialSkillsRepo, studentRepo, nil, logr)
	reportSvc := service.NewReportService(studentRepo, classRepo, gradebookRepo, attendanceRepo, socialSkillsRepo, templateSvc, logr).WithMetrics(metricsSvc)
	rosterSvc := service.NewRosterService(studentRepo, userRepo, logr).WithMetrics(metricsSvc)
	dashboardSvc := service.NewDashboardService(studentRepo, classRepo, userRepo, schoolRepo, attendanceRepo, gradebookRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	schoolHandler := handler.NewSchoolHandler(schoolSvc)
	userHandler := handler.NewUserHandler(userSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	classHandler := handler.NewClassHandler(classSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	gradebookHandler := handler.NewGradebookHandler(gradebookSvc)
	socialSkillsHandler := handler.NewSocialSkillsHandler(socialSkillsSvc)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	uploadHandler := handler.NewUploadHandler(uploads)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		schools := protected.Group("/schools", middleware.RequireRoles(models.RoleSuperuser))
		{
			schools.GET("", schoolHandler.List)
			schools.POST("", schoolHandler.Create)
			schools.PUT("/:id", schoolHandler.Update)
			schools.DELETE("/:id", schoolHandler.Delete)
		}

		users := protected.Group("/users", middleware.RequireRoles(models.RoleAdmin), middleware.RequirePermission(models.PermManageUsers))
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.PUT("/:id/role", userHandler.UpdateRole)
			users.PUT("/:id/permissions", userHandler.UpdatePermissions)
			users.DELETE("/:id", userHandler.Delete)
		}
		protected.GET("/teachers", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), userHandler.ListTeachers)
		protected.GET("/parents", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), userHandler.ListParents)

		protected.GET("/students", studentHandler.List)
		protected.GET("/students/:id", studentHandler.Get)
		protected.POST("/students", middleware.RequirePermission(models.PermManageStudents), studentHandler.Create)
		protected.PUT("/students/:id", middleware.RequirePermission(models.PermManageStudents), studentHandler.Update)
		protected.DELETE("/students/:id", middleware.RequirePermission(models.PermManageStudents), studentHandler.Delete)
		protected.POST("/students/:id/photo", middleware.RequirePermission(models.PermManageStudents), studentHandler.UploadPhoto)

		protected.GET("/classes", classHandler.List)
		protected.GET("/classes/:id", classHandler.Get)
		protected.POST("/classes", middleware.RequirePermission(models.PermManageClasses), classHandler.Create)
		protected.PUT("/classes/:id", middleware.RequirePermission(models.PermManageClasses), classHandler.Update)
		protected.DELETE("/classes/:id", middleware.RequirePermission(models.PermManageClasses), classHandler.Delete)

		protected.GET("/attendance", attendanceHandler.List)
		protected.POST("/attendance", middleware.RequirePermission(models.PermMarkAttendance), attendanceHandler.Mark)
		protected.POST("/attendance/bulk", middleware.RequirePermission(models.PermMarkAttendance), attendanceHandler.MarkBulk)

		protected.GET("/gradebook", gradebookHandler.List)
		protected.GET("/gradebook/:id", gradebookHandler.Get)
		protected.POST("/gradebook", middleware.RequirePermission(models.PermManageGrades), gradebookHandler.Save)
		protected.DELETE("/gradebook/:id", middleware.RequirePermission(models.PermManageGrades), gradebookHandler.Delete)

		protected.GET("/social-skills/:student_id", socialSkillsHandler.ListForStudent)
		protected.POST("/social-skills", middleware.RequirePermission(models.PermManageGrades), socialSkillsHandler.Save)

		protected.GET("/grading-scheme", templateHandler.GradingScheme)
		protected.GET("/report-templates/:school_code", templateHandler.Get)
		protected.PUT("/report-templates/:school_code", middleware.RequireRoles(models.RoleSuperuser), templateHandler.Update)

		protected.GET("/signatures", templateHandler.Signatures)
		protected.POST("/signatures/:role", middleware.RequireRoles(models.RoleAdmin), templateHandler.UploadSignature)

		protected.GET("/report-cards/student/:id", reportHandler.ForStudent)
		protected.GET("/report-cards/class/:id", middleware.RequirePermission(models.PermGenerateReports), reportHandler.ForClass)

		protected.GET("/export/students/template", middleware.RequirePermission(models.PermManageStudents), rosterHandler.StudentTemplate)
		protected.GET("/export/teachers/template", middleware.RequirePermission(models.PermManageUsers), rosterHandler.TeacherTemplate)
		protected.GET("/export/students", middleware.RequirePermission(models.PermManageStudents), rosterHandler.ExportStudents)
		protected.POST("/import/students", middleware.RequirePermission(models.PermManageStudents), rosterHandler.ImportStudents)
		protected.POST("/import/teachers", middleware.RequirePermission(models.PermManageUsers), rosterHandler.ImportTeachers)

		protected.GET("/stats/dashboard", dashboardHandler.Stats)

		protected.GET("/uploads/:kind/:file", uploadHandler.Serve)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// seedBootstrap ensures the reserved system school and its superuser account
// exist. It runs on every start and only inserts what is missing.
func seedBootstrap(ctx context.Context, cfg config.BootstrapConfig, schools *repository.SchoolRepository, users *repository.UserRepository, logr *zap.Logger) error {
	if _, err := schools.FindByCode(ctx, cfg.SchoolCode); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup bootstrap school: %w", err)
		}
		school := &models.School{
			SchoolCode: cfg.SchoolCode,
			Name:       cfg.SchoolName,
			IsActive:   true,
		}
		if err := schools.Create(ctx, school); err != nil {
			return fmt.Errorf("create bootstrap school: %w", err)
		}
		logr.Info("bootstrap school created", zap.String("school_code", cfg.SchoolCode))
	}

	if _, err := users.FindSuperuserByUsername(ctx, cfg.SuperuserUsername); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup bootstrap superuser: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperuserPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash bootstrap password: %w", err)
		}
		user := &models.User{
			Username:     cfg.SuperuserUsername,
			Name:         cfg.SuperuserName,
			Role:         models.RoleSuperuser,
			SchoolCode:   cfg.SchoolCode,
			Permissions:  models.DefaultPermissions(models.RoleSuperuser),
			PasswordHash: string(hash),
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create bootstrap superuser: %w", err)
		}
		logr.Info("bootstrap superuser created", zap.String("username", cfg.SuperuserUsername))
	}

	return nil
}
