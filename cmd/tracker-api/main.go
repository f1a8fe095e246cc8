package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/smarthealthy/tracker-api/api/swagger"
	"github.com/smarthealthy/tracker-api/internal/handler"
	"github.com/smarthealthy/tracker-api/internal/middleware"
	"github.com/smarthealthy/tracker-api/internal/repository"
	"github.com/smarthealthy/tracker-api/internal/service"
	"github.com/smarthealthy/tracker-api/pkg/cache"
	"github.com/smarthealthy/tracker-api/pkg/config"
	"github.com/smarthealthy/tracker-api/pkg/logger"
	corsmiddleware "github.com/smarthealthy/tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/smarthealthy/tracker-api/pkg/middleware/requestid"
	"github.com/smarthealthy/tracker-api/pkg/storage"
)

// @title Healthy School Tracker API
// @version 1.0.0
// @description Gamification tracker for a school healthy-choices program
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

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		if cfg.Store.Driver == config.StoreDriverRedis {
			logr.Sugar().Fatalw("redis store selected but redis is unreachable", "error", err)
		}
		logr.Sugar().Warnw("redis unavailable, leaderboard caching disabled", "error", err)
	} else {
		redisClient = client
	}

	var store repository.DocumentStore
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		store = repository.NewRedisDocumentStore(redisClient, cfg.Store.RedisKey)
	default:
		fileStore, err := repository.NewFileDocumentStore(cfg.Store.FilePath)
		if err != nil {
			logr.Sugar().Fatalw("failed to init document store", "error", err)
		}
		store = fileStore
	}

	ctx := context.Background()
	session, err := service.NewSession(ctx, store, logr, metrics)
	if err != nil {
		logr.Sugar().Fatalw("failed to load document", "error", err)
	}

	photos, err := storage.NewPhotoStore(cfg.Photos.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo store", "error", err)
	}

	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Leaderboard.CacheTTL, logr, redisClient != nil)
	leaderboardSvc := service.NewLeaderboardService(session, cacheSvc, logr)
	ledgerSvc := service.NewLedgerService(session, validate, logr, metrics, leaderboardSvc)
	stationSvc := service.NewStationService(session, validate, logr)
	transferSvc := service.NewTransferService(session, leaderboardSvc, photos, logr)

	authSvc, err := service.NewAuthService(session, validate, logr, leaderboardSvc, service.AuthConfig{
		Secret:          cfg.JWT.Secret,
		StudentDuration: cfg.JWT.Expiration,
		TeacherDuration: cfg.Teacher.TokenDuration,
		Issuer:          cfg.JWT.Issuer,
		TeacherPassword: cfg.Teacher.Password,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to init auth service", "error", err)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	submissionHandler := handler.NewSubmissionHandler(ledgerSvc, photos, cfg.Photos.MaxSizeBytes)
	profileHandler := handler.NewProfileHandler(ledgerSvc)
	stationHandler := handler.NewStationHandler(stationSvc, ledgerSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	photoHandler := handler.NewPhotoHandler(photos)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/teacher", authHandler.TeacherUnlock)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/leaderboard", leaderboardHandler.List)
	authed.GET("/photos/*ref", photoHandler.Get)

	student := authed.Group("", middleware.RequireStudent())
	student.GET("/profile", profileHandler.Get)
	student.GET("/profile/badges", profileHandler.Badges)
	student.GET("/profile/posts", submissionHandler.History)
	student.POST("/posts", submissionHandler.Create)
	student.GET("/stations/:code", stationHandler.Get)
	student.POST("/stations/:code/claims", stationHandler.Claim)

	teacher := authed.Group("", middleware.RequireTeacher())
	teacher.GET("/stations", stationHandler.List)
	teacher.PUT("/stations/:code", stationHandler.Upsert)
	teacher.GET("/transfer/export", transferHandler.Export)
	teacher.POST("/transfer/import", transferHandler.Import)
	teacher.POST("/transfer/reset", transferHandler.Reset)
	teacher.GET("/transfer/report", transferHandler.Report)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
