package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/futa-medical/clinic-booking/internal/gateway"
	"github.com/futa-medical/clinic-booking/internal/iam"
	"github.com/futa-medical/clinic-booking/internal/scheduling"
	"github.com/futa-medical/clinic-booking/internal/students"
	"github.com/futa-medical/clinic-booking/pkg/config"
	"github.com/futa-medical/clinic-booking/pkg/database"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
)

const (
	serviceName    = "futa-clinic-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.WithField("version", serviceVersion).Info("Starting FUTA clinic API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing := monitoring.NewNoopTracingManager(serviceName)
	if cfg.Tracing.Enabled {
		tracing, err = monitoring.NewTracingManager(&monitoring.TracingConfig{
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
			Environment:    cfg.Tracing.Environment,
			SamplingRate:   cfg.Tracing.SamplingRate,
		})
		if err != nil {
			log.WithError(err).Warn("Tracing disabled, failed to initialize exporter")
			tracing = monitoring.NewNoopTracingManager(serviceName)
		}
	}
	metrics := monitoring.NewMetricsCollector(serviceName)

	retryDelay := time.Duration(cfg.Database.RetryDelay) * time.Second

	var db *database.DB
	err = database.Retry(ctx, log, "connect", cfg.Database.StartupRetries, retryDelay, func(ctx context.Context) error {
		conn, connErr := database.NewConnection(ctx, &cfg.Database, log)
		if connErr != nil {
			return connErr
		}
		db = conn
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()
	db.SetTxRecorder(metrics)

	passwords := iam.NewPasswordManager()
	tokens := iam.NewTokenIssuer(cfg.JWT)
	accounts := iam.NewRepository(db, log)
	departments := scheduling.NewDepartmentRepository(db, log)
	appointments := scheduling.NewRepository(db, log)
	studentRepo := students.NewRepository(db, log)

	seeder := iam.NewSeeder(log, cfg.Seed, accounts, accounts, departments, passwords)
	err = database.Retry(ctx, log, "schema_and_seed", cfg.Database.StartupRetries, retryDelay, func(ctx context.Context) error {
		if err := db.CreateSchema(ctx); err != nil {
			return err
		}
		return seeder.Seed(ctx)
	})
	if err != nil {
		// the API still serves whatever the database already holds
		log.WithError(err).Error("Schema creation or seeding failed, continuing")
	}

	authService := iam.NewService(log, tracing, accounts, accounts, passwords, tokens)
	adminService := iam.NewAdminService(log, accounts, accounts, accounts, departments, passwords)
	schedulingService := scheduling.NewService(log, tracing, appointments, departments)
	studentService := students.NewService(log, tracing, studentRepo)

	health := monitoring.NewHealthManager(serviceName, serviceVersion)
	health.RegisterChecker("database", monitoring.NewDatabaseHealthChecker(db.DB))
	health.RegisterChecker("seed", monitoring.NewSeedHealthChecker(db.DB))

	limiter := gateway.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize)
	if cfg.RateLimit.CleanupInterval > 0 {
		limiter.StartCleanup(ctx, time.Duration(cfg.RateLimit.CleanupInterval)*time.Second)
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gateway.NewRouter(&gateway.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics,
		Tracing:     tracing,
		Health:      health,
		Tokens:      tokens,
		RateLimiter: limiter,
		Auth:        iam.NewHandlers(authService, metrics, log),
		Admin:       iam.NewAdminHandlers(adminService, metrics, log),
		Scheduling:  scheduling.NewHandlers(schedulingService, metrics, log),
		Students:    students.NewHandlers(studentService, log),
	})

	server := gateway.NewService(cfg.Server, router, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to flush traces")
	}

	log.Info("FUTA clinic API exited")
}
