// Package main initializes and starts the HealthMate HTTPS server, setting up
// configuration, logging, the database and Redis connections, repositories,
// services, handlers, and TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/auth"
	"github.com/atinyakov/healthmate/internal/certgen"
	"github.com/atinyakov/healthmate/internal/config"
	"github.com/atinyakov/healthmate/internal/db"
	"github.com/atinyakov/healthmate/internal/logger"
	"github.com/atinyakov/healthmate/internal/metrics"
	"github.com/atinyakov/healthmate/internal/middleware"
	"github.com/atinyakov/healthmate/internal/repository"
	"github.com/atinyakov/healthmate/internal/server/handler/http"
	"github.com/atinyakov/healthmate/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	zapLogger, err := logger.New(options.LogLevel, options.LogFormat, "healthmate-server")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(options *config.Options, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := options.Location()
	if err != nil {
		return err
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer postgresDB.Close()

	db.StartExpiredShareSweeper(ctx, postgresDB, options.ShareSweepInterval, zapLogger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     options.RedisAddr,
		Password: options.RedisPassword,
		DB:       options.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zapLogger.Warn("redis unavailable, activity feed degraded", zap.Error(err))
	}

	ca, err := certgen.LoadAuthorityDir(options.CertDir)
	if err != nil {
		return fmt.Errorf("failed to load CA: %w", err)
	}
	collector := metrics.NewCollector()
	tokens := auth.NewTokenManager(options.TokenSecret, options.TokenIssuer, options.TokenTTL)
	if !tokens.Enabled() {
		zapLogger.Info("token_secret not set, accepting client certificates only")
	}

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	vitalsRepo := repository.NewPostgresVitalsRepository(postgresDB)
	shareRepo := repository.NewPostgresShareRepository(postgresDB)
	activityRepo := repository.NewRedisActivityRepository(redisClient)

	authService := service.NewAuthService(authRepo)
	activityService := service.NewActivityService(activityRepo, zapLogger)
	opts := []service.Option{
		service.WithActivity(activityService),
		service.WithDisplayNames(authService),
		service.WithRecorder(collector),
		service.WithLocation(loc),
	}
	vitalsService := service.NewVitalsService(vitalsRepo, opts...)
	shareService := service.NewShareService(vitalsRepo, shareRepo, options.ShareBaseURL, opts...)

	handlers := http.Handlers{
		Auth: &http.AuthHandler{
			AuthService:  authService,
			Certs:        ca,
			Tokens:       tokens,
			CertValidity: certgen.ClientValidity,
			Log:          zapLogger,
		},
		Vitals:   &http.VitalsHandler{Service: vitalsService, Log: zapLogger},
		Shares:   &http.ShareHandler{Service: shareService, Log: zapLogger},
		Activity: &http.ActivityHandler{Service: activityService, Log: zapLogger},
	}
	var verifier middleware.TokenVerifier
	if tokens.Enabled() {
		verifier = tokens
	}
	router := http.NewRouter(handlers, http.RouterDeps{
		Tokens:        verifier,
		SharedLimiter: middleware.NewRateLimiter(options.SharedRateLimit, options.SharedRateBurst),
		Metrics:       collector,
		Logger:        zapLogger,
	})

	cert, err := tls.LoadX509KeyPair(filepath.Join(options.CertDir, "server.crt"), filepath.Join(options.CertDir, "server.key"))
	if err != nil {
		return fmt.Errorf("failed to load server TLS cert/key: %w", err)
	}

	// Client certificates are optional at the TLS layer: registration and
	// token-authenticated requests arrive without one.
	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			ClientAuth:   tls.VerifyClientCertIfGiven,
			ClientCAs:    ca.Pool(),
			MinVersion:   tls.VersionTLS12,
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
		errCh <- server.ListenAndServeTLS("", "")
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTPS server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
