package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/lateness"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/cache"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	classifierService "github.com/cmlabs-hris/attendance-engine/internal/service/classifier"
	fingerprintService "github.com/cmlabs-hris/attendance-engine/internal/service/fingerprint"
	geofenceService "github.com/cmlabs-hris/attendance-engine/internal/service/geofence"
	latenessService "github.com/cmlabs-hris/attendance-engine/internal/service/lateness"
	notificationService "github.com/cmlabs-hris/attendance-engine/internal/service/notification"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	hours, err := attendance.ParseWorkingHours(cfg.Attendance.WorkStart, cfg.Attendance.WorkEnd)
	if err != nil {
		return err
	}
	clk := clock.New(loc)

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	directoryCache, err := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	defer directoryCache.Close()

	storeRepo := cache.NewStoreDirectory(postgresql.NewStoreRepository(db), directoryCache)
	employeeRepo := cache.NewEmployeeDirectory(postgresql.NewEmployeeRepository(db), directoryCache)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	archiveRepo := postgresql.NewLateStatisticArchiveRepository(db)
	triggerRepo := postgresql.NewPunishmentTriggerRepository(db)
	outboxRepo := postgresql.NewNotificationOutboxRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	hub := sse.NewHub()
	dispatcher := notificationService.NewDispatcher(outboxRepo, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
		MaxRetries:    cfg.Notification.MaxRetries,
		RetryDelay:    cfg.Notification.RetryDelay,
	})
	defer dispatcher.Stop()

	aggregator := latenessService.NewLateStatisticsAggregator(archiveRepo, lateness.Thresholds{
		MaxLateCount:   cfg.Attendance.LateCountThreshold,
		MaxLateMinutes: cfg.Attendance.LateMinutesThreshold,
	}, clk)

	attendanceSvc := attendanceService.NewAttendanceService(
		employeeRepo,
		geofenceService.NewGeofenceValidator(storeRepo, cfg.Attendance.DefaultRadiusMeters),
		fingerprintService.NewFingerprintAnalyzer(),
		classifierService.NewStatusClassifier(loc),
		aggregator,
		attendanceRepo,
		triggerRepo,
		dispatcher,
		clk,
		hours,
	)

	scheduler := cron.NewScheduler()
	cron.NewLatenessJobs(aggregator, clk).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc, aggregator, loc),
		appHTTP.NewNotificationHandler(dispatcher, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// open SSE streams end when the process is signalled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
