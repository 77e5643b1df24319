package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/instructor-companion-api/api/swagger"
	"github.com/noah-isme/instructor-companion-api/internal/handler"
	internalmiddleware "github.com/noah-isme/instructor-companion-api/internal/middleware"
	"github.com/noah-isme/instructor-companion-api/internal/models"
	"github.com/noah-isme/instructor-companion-api/internal/repository"
	"github.com/noah-isme/instructor-companion-api/internal/service"
	"github.com/noah-isme/instructor-companion-api/pkg/cache"
	"github.com/noah-isme/instructor-companion-api/pkg/config"
	"github.com/noah-isme/instructor-companion-api/pkg/database"
	"github.com/noah-isme/instructor-companion-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/instructor-companion-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/instructor-companion-api/pkg/middleware/requestid"
)

// @title Instructor Companion API
// @version 1.0.0
// @description Read-only instructor activity dashboard: teaching stats, class rosters and payment request status.
// @BasePath /
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
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(connectRedis(cfg, logr), logger.Component(logr, "cache"))
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	settings, dashboard := buildServices(cfg, db, cacheRepo, metrics, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	dashboardHandler := handler.NewDashboardHandler(dashboard)
	api.GET("/instructors/:instructorId/dashboard", dashboardHandler.Instructor)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				logr.Fatal("server failed", zap.Error(err))
			}
			return
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				// settings form saved; drop cached links
				if err := settings.InvalidateLinkSettings(context.Background()); err != nil {
					logr.Warn("link settings reload failed", zap.Error(err))
				} else {
					logr.Info("link settings cache cleared")
				}
				continue
			}
			logr.Info("shutting down", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := srv.Shutdown(ctx); err != nil {
				logr.Error("graceful shutdown failed", zap.Error(err))
			}
			cancel()
			return
		}
	}
}

// connectRedis returns nil when the settings cache is disabled or Redis is unreachable.
func connectRedis(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Links.CacheEnabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, link settings cache disabled", zap.Error(err))
		return nil
	}
	return client
}

func buildServices(cfg *config.Config, db *sqlx.DB, cacheRepo *repository.CacheRepository, metrics *service.MetricsService, logr *zap.Logger) (*service.SettingsService, *service.DashboardService) {
	location, err := time.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		logr.Warn("unknown dashboard timezone, using UTC", zap.String("timezone", cfg.Dashboard.Timezone), zap.Error(err))
		location = time.UTC
	}

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Links.CacheTTL, logger.Component(logr, "cache"), cfg.Links.CacheEnabled)

	settings := service.NewSettingsService(service.SettingsServiceParams{
		Repo:    repository.NewConfigurationRepository(db),
		Cache:   cacheSvc,
		Metrics: metrics,
		Logger:  logger.Component(logr, "settings"),
		Defaults: models.LinkSettings{
			EmergencyProcedures:  cfg.Links.EmergencyProcedures,
			InstructorHandbook:   cfg.Links.InstructorHandbook,
			RequestReimbursement: cfg.Links.RequestReimbursement,
			LogHours:             cfg.Links.LogHours,
			PaymentStatus:        cfg.Links.PaymentStatus,
		},
		CacheTTL: cfg.Links.CacheTTL,
	})

	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Events:      repository.NewEventRepository(db),
		Enrollments: service.NewEnrollmentService(repository.NewEnrollmentRepository(db), metrics, logger.Component(logr, "enrollment")),
		Ratings: service.NewRatingService(repository.NewSurveyRepository(db), metrics, logger.Component(logr, "rating"), service.RatingServiceConfig{
			SurveyID:      cfg.Rating.SurveyID,
			QuestionKey:   cfg.Rating.QuestionKey,
			EventFieldKey: cfg.Rating.EventFieldKey,
		}),
		Payments:  service.NewPaymentStatusService(repository.NewPaymentRequestRepository(db), metrics, logger.Component(logr, "payment_status")),
		Settings:  settings,
		Profiles:  repository.NewProfileRepository(db),
		Links:     service.NewLinkBuilder(logger.Component(logr, "links")),
		Validator: validator.New(),
		Metrics:   metrics,
		Logger:    logger.Component(logr, "dashboard"),
		Config: service.DashboardServiceConfig{
			EventsLimit:  cfg.Dashboard.EventsLimit,
			Location:     location,
			RosterPath:   cfg.Dashboard.RosterPath,
			FeedbackPath: cfg.Dashboard.FeedbackPath,
			ProfilePath:  cfg.Dashboard.ProfilePath,
		},
	})

	return settings, dashboard
}
