package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/database"
	"github.com/sensoryplay/portal-backend/internal/handler"
	"github.com/sensoryplay/portal-backend/internal/logger"
	"github.com/sensoryplay/portal-backend/internal/mailer"
	"github.com/sensoryplay/portal-backend/internal/repository"
	"github.com/sensoryplay/portal-backend/internal/router"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
	"github.com/sensoryplay/portal-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("class_timezone", cfg.Timezone().String()).
		Msg("Starting portal backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	newsletterRepo := repository.NewNewsletterRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Redis-backed Infrastructure ──────────────────────────────────
	sessions := service.NewRedisSessionStore(rdb)
	catalogCache := service.NewRedisCatalogCache(rdb, cfg.CatalogCacheTTL, log)
	outbox := service.NewRedisOutbox(rdb)
	availability := service.NewRedisAvailabilityPublisher(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	settingService := service.NewSettingService(settingRepo, log)
	notificationService := service.NewNotificationService(cfg, outbox, settingService, log)
	authService := service.NewAuthService(cfg, userRepo, sessions, notificationService, log)
	classService := service.NewClassService(classRepo, locationRepo, catalogCache, cfg.Timezone(), log)
	locationService := service.NewLocationService(locationRepo, classRepo, catalogCache, log)
	bookingService := service.NewBookingService(bookingRepo, classRepo, notificationService, availability, catalogCache, log)
	contactService := service.NewContactService(contactRepo, notificationService, log)
	newsletterService := service.NewNewsletterService(newsletterRepo, log)
	userService := service.NewUserService(userRepo, bookingRepo, sessions, log)
	dashboardService := service.NewDashboardService(dashboardRepo)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		Location:   handler.NewLocationHandler(locationService, log),
		Class:      handler.NewClassHandler(classService, log),
		Booking:    handler.NewBookingHandler(bookingService, log),
		Contact:    handler.NewContactHandler(contactService, log),
		Newsletter: handler.NewNewsletterHandler(newsletterService, log),
		Dashboard:  handler.NewDashboardHandler(dashboardService, log),
		AdminUser:  handler.NewAdminUserHandler(userService),
		Setting:    handler.NewSettingHandler(settingService, log),
		Media:      handler.NewMediaHandler(mediaService, log),
		WS:         handler.NewWSHandler(classService, availability, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	emailWorker := worker.NewEmailWorker(rdb, mailer.NewLogMailer(log), log)
	go func() {
		defer close(workerDone)
		emailWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r, stopLimiters := router.SetupRouter(authService, handlers, cfg, log)
	defer stopLimiters()

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the email worker and wait for it to drain the outbox.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Email worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
