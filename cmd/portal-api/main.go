package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/wmou-edu/portal-api/internal/handler"
	"github.com/wmou-edu/portal-api/internal/middleware"
	"github.com/wmou-edu/portal-api/internal/repository"
	"github.com/wmou-edu/portal-api/internal/service"
	"github.com/wmou-edu/portal-api/pkg/cache"
	"github.com/wmou-edu/portal-api/pkg/config"
	"github.com/wmou-edu/portal-api/pkg/database"
	"github.com/wmou-edu/portal-api/pkg/jobs"
	"github.com/wmou-edu/portal-api/pkg/logger"
	"github.com/wmou-edu/portal-api/pkg/mailer"
	corsmiddleware "github.com/wmou-edu/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/wmou-edu/portal-api/pkg/middleware/requestid"
	"github.com/wmou-edu/portal-api/pkg/storage"
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	uploads, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	resultRepo := repository.NewResultRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	smtp := mailer.NewSMTP(cfg.SMTP)
	notificationSvc := service.NewNotificationService(smtp, userRepo, logr, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	})

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, uploads, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, paymentRepo, registrationRepo, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, courseRepo, registrationRepo, uploads, notificationSvc, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, announcementRepo, registrationRepo, resultRepo, cacheSvc, logr, service.DashboardConfig{
		CacheEnabled: cfg.Dashboard.CacheEnabled,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	resultSvc := service.NewResultService(resultRepo, logr)
	materialSvc := service.NewMaterialService(materialRepo, registrationRepo, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(rootCtx)
	defer notificationSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, metricsSvc, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Users:         handler.NewUserHandler(userSvc),
		Courses:       handler.NewCourseHandler(courseSvc, userSvc),
		Payments:      handler.NewPaymentHandler(paymentSvc, dashboardSvc, uploads, signer, cfg.Receipts.MaxFileSizeBytes),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Results:       handler.NewResultHandler(resultSvc),
		Materials:     handler.NewMaterialHandler(materialSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc, userSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
