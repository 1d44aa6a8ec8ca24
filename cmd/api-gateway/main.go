package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/univ-erp/registrar-api/api/swagger"
	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/handler"
	"github.com/univ-erp/registrar-api/internal/middleware"
	"github.com/univ-erp/registrar-api/internal/models"
	"github.com/univ-erp/registrar-api/internal/repository"
	"github.com/univ-erp/registrar-api/internal/service"
	"github.com/univ-erp/registrar-api/pkg/cache"
	"github.com/univ-erp/registrar-api/pkg/config"
	"github.com/univ-erp/registrar-api/pkg/database"
	"github.com/univ-erp/registrar-api/pkg/logger"
	corsmiddleware "github.com/univ-erp/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/univ-erp/registrar-api/pkg/middleware/requestid"
)

// @title University Registrar API
// @version 1.0.0
// @description Course registration, grading, and administration
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	authRepo := repository.NewAuthRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeBookRepo := repository.NewGradeBookRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	bootCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	setting, err := maintenanceRepo.Get(bootCtx)
	cancel()
	if err != nil {
		logr.Sugar().Fatalw("failed to read maintenance setting", "error", err)
	}
	gate := access.NewController(setting.MaintenanceOn)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(authRepo, validate, logr, service.AuthServiceConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		MaxFailedAttempts:  cfg.Auth.MaxFailedAttempts,
		LockoutDuration:    cfg.Auth.LockoutDuration,
		BcryptCost:         cfg.Auth.BcryptCost,
	})
	studentSvc := service.NewStudentService(sectionRepo, courseRepo, enrollmentRepo, gradeBookRepo, profileRepo, authRepo, cacheRepo, cfg.Catalog.CacheTTL, gate, metricsSvc, logr)
	instructorSvc := service.NewInstructorService(sectionRepo, enrollmentRepo, gradeBookRepo, gate, logr)
	adminSvc := service.NewAdminService(authRepo, profileRepo, courseRepo, sectionRepo, enrollmentRepo, cacheRepo, gate, validate, logr, cfg.Auth.BcryptCost)
	maintenanceSvc := service.NewMaintenanceService(maintenanceRepo, gate, logr)

	var backupSvc *service.BackupService
	if cfg.Backup.Enabled {
		backupSvc = service.NewBackupService(courseRepo, sectionRepo, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc, metricsSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, metricsSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, maintenanceSvc, backupSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)

	api.GET("/catalog", studentHandler.Catalog)

	students := api.Group("/students/me", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	students.POST("/registrations", studentHandler.Register)
	students.DELETE("/registrations/:sectionId", studentHandler.Drop)
	students.GET("/timetable", studentHandler.Timetable)
	students.GET("/grades", studentHandler.Grades)
	students.GET("/transcript", studentHandler.Transcript)

	instructors := api.Group("/instructors/me", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleInstructor))
	instructors.GET("/sections", instructorHandler.Sections)
	instructors.GET("/sections/:id/grades", instructorHandler.SectionGrades)
	instructors.POST("/sections/:id/final-grades", instructorHandler.ComputeFinalGrades)
	instructors.POST("/sections/:id/students/:studentId/scores", instructorHandler.RecordScores)
	instructors.PUT("/sections/:id/students/:studentId/components", instructorHandler.SaveComponents)
	instructors.PUT("/sections/:id/students/:studentId/components/final", instructorHandler.SaveComponentsWithFinal)

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/users", adminHandler.CreateUser)
	admin.POST("/users/:username/lock", adminHandler.LockUser)
	admin.POST("/users/:username/unlock", adminHandler.UnlockUser)
	admin.PUT("/students/:id/profile", adminHandler.SaveStudentProfile)
	admin.PUT("/instructors/:id/profile", adminHandler.SaveInstructorProfile)
	admin.POST("/courses", adminHandler.CreateCourse)
	admin.DELETE("/courses/:id", adminHandler.DeleteCourse)
	admin.POST("/sections", adminHandler.CreateSection)
	admin.DELETE("/sections/:id", adminHandler.DeleteSection)
	admin.PUT("/sections/:id/instructor", adminHandler.AssignInstructor)
	admin.GET("/maintenance", adminHandler.MaintenanceStatus)
	admin.PUT("/maintenance", adminHandler.SetMaintenance)
	admin.GET("/backup", adminHandler.Backup)
	admin.POST("/restore", adminHandler.Restore)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
