package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajiri-labs/hajiri/internal/api"
	"github.com/hajiri-labs/hajiri/internal/clock"
	"github.com/hajiri-labs/hajiri/internal/config"
	"github.com/hajiri-labs/hajiri/internal/database"
	"github.com/hajiri-labs/hajiri/internal/directory"
	"github.com/hajiri-labs/hajiri/internal/face"
	"github.com/hajiri-labs/hajiri/internal/facestore"
	"github.com/hajiri-labs/hajiri/internal/matcher"
	"github.com/hajiri-labs/hajiri/internal/repository"
	"github.com/hajiri-labs/hajiri/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Hajiri API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Face encoder
	encoder, err := face.NewFaceProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create face provider: %w", err)
	}

	// Attendance time zone
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Repositories
	studentRepo := repository.NewStudentRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)

	// Identity directory and face store
	dir := directory.New(studentRepo)
	faces, err := facestore.New(cfg.FacesDir, encoder, logger)
	if err != nil {
		return fmt.Errorf("failed to open face store: %w", err)
	}

	// Warm the caches; failures are not fatal, both refresh again on enrollment
	if err := dir.Refresh(ctx); err != nil {
		logger.Warn("initial directory refresh failed", slog.Any("error", err))
	}
	if err := faces.Reload(ctx); err != nil {
		logger.Warn("initial face store load failed", slog.Any("error", err))
	}

	svc := service.NewAttendanceService(
		faces,
		dir,
		studentRepo,
		attendanceRepo,
		encoder,
		matcher.New(encoder, cfg.MatchTolerance),
		clock.New(loc),
		logger,
	)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		AttendanceService: svc,
		DB:                pool,
		StaticDir:         cfg.StaticDir,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
