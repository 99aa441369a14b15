package main

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/etutplan/etut-api/api/swagger"
	"github.com/etutplan/etut-api/internal/handler"
	"github.com/etutplan/etut-api/internal/middleware"
	"github.com/etutplan/etut-api/internal/models"
	"github.com/etutplan/etut-api/internal/repository"
	"github.com/etutplan/etut-api/internal/service"
	"github.com/etutplan/etut-api/pkg/cache"
	"github.com/etutplan/etut-api/pkg/config"
	"github.com/etutplan/etut-api/pkg/database"
	"github.com/etutplan/etut-api/pkg/logger"
	corsmiddleware "github.com/etutplan/etut-api/pkg/middleware/cors"
	reqidmiddleware "github.com/etutplan/etut-api/pkg/middleware/requestid"
)

// @title Etut Scheduling API
// @version 1.0.0
// @description Scheduling and conflict resolution for tutoring study sessions
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	// repositories
	sessionRepo := repository.NewSessionRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, true)
		}
	}

	// services
	bookingService := service.NewBookingService(sessionRepo, availabilityRepo, timeSlotRepo, teacherRepo, studentRepo, classroomRepo, cacheService, validate, logr)
	availabilityService := service.NewAvailabilityService(availabilityRepo, teacherRepo, timeSlotRepo, validate, logr)
	timeSlotService := service.NewTimeSlotService(timeSlotRepo, sessionRepo, availabilityRepo, validate, logr)
	teacherService := service.NewTeacherService(teacherRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, validate, logr)
	classroomService := service.NewClassroomService(classroomRepo, validate, logr)
	noteService := service.NewNoteService(noteRepo, studentRepo, teacherRepo, validate, logr)
	reportService := service.NewReportService(sessionRepo, cacheService, logr)
	auditService := service.NewAuditService(userRepo, logr)
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "etut-api",
	})

	var seedService *service.SeedService
	if cfg.Seed.Enabled {
		rng := rand.New(rand.NewSource(cfg.Seed.Value))
		seedService = service.NewSeedService(timeSlotService, teacherService, studentService, classroomService, availabilityService, bookingService, rng, logr)
	}

	// handlers
	sessionHandler := handler.NewSessionHandler(bookingService, metricsService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	timeSlotHandler := handler.NewTimeSlotHandler(timeSlotService)
	teacherHandler := handler.NewTeacherHandler(teacherService)
	studentHandler := handler.NewStudentHandler(studentService)
	classroomHandler := handler.NewClassroomHandler(classroomService)
	noteHandler := handler.NewNoteHandler(noteService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(seedService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	admin := middleware.RequireRoles(models.RoleAdmin)

	sessions := protected.Group("/sessions")
	{
		sessions.GET("", sessionHandler.List)
		sessions.POST("", staff, middleware.Audit(auditService, "BOOK", "session"), sessionHandler.Book)
		sessions.POST("/bulk", staff, middleware.Audit(auditService, "BOOK_BULK", "session"), sessionHandler.BookBulk)
		sessions.PUT("/:id/move", staff, middleware.Audit(auditService, "MOVE", "session"), sessionHandler.Move)
		sessions.PUT("/:id/attendance", staff, middleware.Audit(auditService, "ATTENDANCE", "session"), sessionHandler.UpdateAttendance)
		sessions.DELETE("/:id", staff, middleware.Audit(auditService, "CANCEL", "session"), sessionHandler.Delete)
	}

	teachers := protected.Group("/teachers")
	{
		teachers.GET("", teacherHandler.List)
		teachers.POST("", admin, teacherHandler.Create)
		teachers.GET("/:teacherId", teacherHandler.Get)
		teachers.PUT("/:teacherId", admin, teacherHandler.Update)
		teachers.DELETE("/:teacherId", admin, teacherHandler.Deactivate)
		teachers.GET("/:teacherId/calendar", sessionHandler.TeacherCalendar)
		teachers.GET("/:teacherId/availability", availabilityHandler.List)
		teachers.POST("/:teacherId/availability", staff, availabilityHandler.Add)
		teachers.PUT("/:teacherId/availability", staff, availabilityHandler.Replace)
		teachers.DELETE("/:teacherId/availability", staff, availabilityHandler.Remove)
	}

	students := protected.Group("/students")
	{
		students.GET("", studentHandler.List)
		students.POST("", admin, studentHandler.Create)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", admin, studentHandler.Update)
		students.DELETE("/:id", admin, studentHandler.Deactivate)
		students.GET("/:id/notes", staff, noteHandler.ListForStudent)
		students.POST("/:id/notes", staff, noteHandler.Create)
	}

	notes := protected.Group("/notes")
	notes.Use(staff)
	{
		notes.GET("", noteHandler.List)
		notes.GET("/categories", noteHandler.Categories)
		notes.GET("/:id", noteHandler.Get)
		notes.PUT("/:id", noteHandler.Update)
		notes.DELETE("/:id", noteHandler.Delete)
	}

	classrooms := protected.Group("/classrooms")
	{
		classrooms.GET("", classroomHandler.List)
		classrooms.POST("", admin, classroomHandler.Create)
		classrooms.GET("/:id", classroomHandler.Get)
		classrooms.PUT("/:id", admin, classroomHandler.Update)
		classrooms.DELETE("/:id", admin, classroomHandler.Delete)
	}

	slots := protected.Group("/time-slots")
	{
		slots.GET("", timeSlotHandler.List)
		slots.GET("/:id", timeSlotHandler.Get)
		slots.POST("", admin, timeSlotHandler.Create)
		slots.PUT("/:id", admin, timeSlotHandler.Update)
		slots.DELETE("/:id", admin, timeSlotHandler.Delete)
	}

	if cfg.Reports.Enabled {
		reports := protected.Group("/reports")
		reports.Use(staff)
		{
			reports.GET("/attendance", reportHandler.AttendanceSummary)
			reports.GET("/attendance/export", reportHandler.AttendanceExport)
			reports.GET("/schedule/export", reportHandler.ScheduleExport)
		}
	}

	protected.POST("/admin/seed", admin, adminHandler.Seed)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
