package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"studyguard/internal/config"
	"studyguard/internal/database"
	"studyguard/internal/handlers"
	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/repository"
	"studyguard/internal/security"
	"studyguard/internal/service"
)

const (
	shutdownTimeout      = 15 * time.Second
	limiterSweepInterval = 5 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		ServiceName: "studyguard",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Console:     cfg.LogFormat == "console",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	dbCtx := logg.WithField(ctx, "db_type", cfg.DatabaseType)
	logg.Info(dbCtx, "database connection established")

	applied, err := db.RunMigrations(ctx)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "applied", len(applied)), "migrations complete")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(registry)

	emails, err := service.NewEmailService(ctx, service.EmailOptions{
		AWSRegion:  cfg.Email.AWSRegion,
		FromEmail:  cfg.Email.FromEmail,
		FromName:   cfg.Email.FromName,
		AppBaseURL: cfg.Email.AppBaseURL,
		Logger:     logg,
	})
	if err != nil {
		return err
	}

	deps := service.Deps{DB: db, Repos: repository.New(db), Logger: logg}
	household := service.NewHouseholdService(deps)
	retention := service.NewRetentionService(deps, service.RetentionOptions{
		Days:      cfg.Retention.Days,
		BatchSize: cfg.Retention.BatchSize,
		Interval:  cfg.Retention.Interval,
	}, collector)

	tokens := security.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	heartbeatLimiter := security.NewRateLimiter(cfg.Heartbeat.Rate, cfg.Heartbeat.Window)
	signupLimiter := security.NewRateLimiter(cfg.Signup.Rate, cfg.Signup.Window)

	router := handlers.NewRouter(handlers.Services{
		Accounts:   service.NewAccountService(deps, household),
		Household:  household,
		Barrier:    service.NewBarrierService(deps, collector),
		Heartbeats: service.NewHeartbeatService(deps, household, collector),
		Alerts:     service.NewAlertService(deps, household, emails, collector),
		Settings:   service.NewSettingsService(deps),
		Coursework: service.NewCourseworkService(deps, household),
	}, handlers.RouterOptions{
		DB:               db,
		Tokens:           tokens,
		Logger:           logg,
		Metrics:          collector,
		Gatherer:         registry,
		HeartbeatLimiter: heartbeatLimiter,
		SignupLimiter:    signupLimiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Info(logg.WithField(gctx, "addr", server.Addr), "server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := retention.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		heartbeatLimiter.Run(gctx, limiterSweepInterval)
		return nil
	})

	g.Go(func() error {
		signupLimiter.Run(gctx, limiterSweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logg.Info(context.Background(), "server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
