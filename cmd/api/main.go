package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vijanahub/mentor-service/internal/app"
	"github.com/vijanahub/mentor-service/internal/config"
	"github.com/vijanahub/mentor-service/internal/controller/httpapi"
	"github.com/vijanahub/mentor-service/internal/notify"
	"github.com/vijanahub/mentor-service/internal/repository"
	"github.com/vijanahub/mentor-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Repositories.
	sessionRepo := repository.NewSessionRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	// Notification dispatch runs on its own goroutine; delivery failures
	// never surface to callers.
	dispatcher := notify.NewDispatcher(&notify.LogPort{Logger: logger}, logger, 256)
	dispatcher.Start()
	defer dispatcher.Stop()

	policy := service.SchedulingPolicy{
		MinAdvanceHours:      cfg.Scheduling.MinAdvanceHours,
		MaxAdvanceDays:       cfg.Scheduling.MaxAdvanceDays,
		MinSessionGapMinutes: cfg.Scheduling.MinSessionGapMinutes,
		MaxSessionsPerWeek:   cfg.Scheduling.MaxSessionsPerWeek,
	}

	// Services.
	sessionService := service.NewSessionService(sessionRepo, availabilityRepo, sessionRepo, dispatcher, policy, loc, logger)
	reviewService := service.NewReviewService(reviewRepo, sessionRepo, dispatcher, logger)
	availabilityService := service.NewAvailabilityService(availabilityRepo, logger)

	reminder := app.NewReminder(sessionRepo, dispatcher, logger, cfg.Scheduling.ReminderLeadMinutes)
	reminder.Start(ctx)
	defer reminder.Stop()

	handler := httpapi.NewHandler(sessionService, reviewService, availabilityService, pool, logger)
	router := httpapi.NewRouter(handler)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("Starting mentor service",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
