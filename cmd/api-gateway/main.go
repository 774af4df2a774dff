package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/edu-assign-api/internal/handler"
	"github.com/noah-isme/edu-assign-api/internal/middleware"
	"github.com/noah-isme/edu-assign-api/internal/models"
	"github.com/noah-isme/edu-assign-api/internal/repository"
	"github.com/noah-isme/edu-assign-api/internal/service"
	"github.com/noah-isme/edu-assign-api/pkg/cache"
	"github.com/noah-isme/edu-assign-api/pkg/config"
	"github.com/noah-isme/edu-assign-api/pkg/database"
	"github.com/noah-isme/edu-assign-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-assign-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-assign-api/pkg/middleware/requestid"
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

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, preview caching disabled", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	profileRepo := repository.NewWeightProfileRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Optimizer.ResultCacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "edu-assign-api",
	})
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	profileSvc := service.NewWeightProfileService(profileRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, validate, logr)
	optimizerSvc := service.NewOptimizationService(
		teacherRepo,
		courseRepo,
		assignmentRepo,
		profileRepo,
		cacheSvc,
		metricsSvc,
		nil,
		service.OptimizationConfig{
			ExactSolverMaxSize:             cfg.Optimizer.ExactSolverMaxSize,
			WorkloadSpreadThresholdMinutes: cfg.Optimizer.WorkloadSpreadThresholdMinutes,
			MaxAssignmentsPerTeacher:       cfg.Optimizer.MaxAssignmentsPerTeacher,
			DefaultProfile:                 cfg.Optimizer.DefaultProfile,
			CacheTTL:                       cfg.Optimizer.ResultCacheTTL,
		},
		logr,
	)

	authHandler := handler.NewAuthHandler(authSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	profileHandler := handler.NewWeightProfileHandler(profileSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	optimizationHandler := handler.NewOptimizationHandler(optimizerSvc)

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
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

		protected.GET("/teachers", teacherHandler.List)
		protected.GET("/teachers/:id", teacherHandler.Get)

		protected.GET("/courses", courseHandler.List)
		protected.GET("/courses/:id", courseHandler.Get)

		protected.GET("/weight-profiles", profileHandler.List)
		protected.GET("/weight-profiles/:id", profileHandler.Get)

		protected.GET("/assignments", assignmentHandler.List)
		protected.GET("/assignments/:id", assignmentHandler.Get)

		protected.GET("/optimize/preview", optimizationHandler.Preview)
	}

	planners := protected.Group("")
	planners.Use(middleware.RequireRoles(models.RoleAdmin, models.RolePlanner))
	{
		planners.POST("/teachers", teacherHandler.Create)
		planners.PUT("/teachers/:id", teacherHandler.Update)
		planners.DELETE("/teachers/:id", teacherHandler.Deactivate)

		planners.POST("/courses", courseHandler.Create)
		planners.PUT("/courses/:id", courseHandler.Update)
		planners.DELETE("/courses/:id", courseHandler.Delete)

		planners.POST("/weight-profiles", profileHandler.Create)
		planners.PUT("/weight-profiles/:id", profileHandler.Update)
		planners.DELETE("/weight-profiles/:id", profileHandler.Delete)

		planners.PATCH("/assignments/:id/status", assignmentHandler.UpdateStatus)

		planners.POST("/optimize", optimizationHandler.Run)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
