package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/config"
	"github.com/voicegate/voicegate-server/internal/database"
	"github.com/voicegate/voicegate-server/internal/events"
	"github.com/voicegate/voicegate-server/internal/handler"
	"github.com/voicegate/voicegate-server/internal/jobs"
	"github.com/voicegate/voicegate-server/internal/middleware"
	"github.com/voicegate/voicegate-server/internal/redis"
	"github.com/voicegate/voicegate-server/internal/repository"
	"github.com/voicegate/voicegate-server/internal/service"
	"github.com/voicegate/voicegate-server/internal/util"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	subscriptionRepo := repository.NewSubscriptionRepository(db.DB)
	eventRepo := repository.NewWebhookEventRepository(db.DB)

	broker := events.NewBroker(redisClient)
	defer broker.Close()

	// Observe subscription churn from every server process.
	firehose := broker.Subscribe("")
	go func() {
		for {
			select {
			case change := <-firehose.Changes:
				log.Info().
					Str("email", util.MaskEmail(change.Email)).
					Str("status", string(change.Status)).
					Msg("entitlement changed")
			case <-firehose.Done:
				return
			}
		}
	}()

	billingService := service.NewBillingService(subscriptionRepo, eventRepo, broker)
	entitlementService := service.NewEntitlementService(subscriptionRepo, cfg.AllowTestEntitlement)
	credentialService := service.NewCredentialService(
		cfg.RealtimeSessionsURL, cfg.VoiceAPIKey, cfg.RealtimeModel, cfg.RealtimeVoice,
	)
	diagnosticService := service.NewDiagnosticService(subscriptionRepo, broker)

	rateLimiter := service.NewRateLimiter(redisClient.Client)

	stripeSignatureMiddleware := middleware.NewStripeSignatureMiddleware(cfg.StripeWebhookSecret)
	adminAuthMiddleware := middleware.NewAdminAuthMiddleware(cfg.AdminPasswordHash)
	apiRateLimitMiddleware := middleware.NewIPRateLimitMiddleware(
		rateLimiter, config.APIRateLimitPerMin, config.APIRateLimitWindow, "api",
	)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	webhookHandler := handler.NewWebhookHandler(billingService)
	accessHandler := handler.NewAccessHandler(entitlementService)
	sessionHandler := handler.NewSessionHandler(credentialService)
	adminHandler := handler.NewAdminHandler(diagnosticService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/billing", func(r chi.Router) {
		r.Use(stripeSignatureMiddleware.Handler)
		r.Post("/webhook", webhookHandler.HandleEvent)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(bodyLimitMiddleware.Handler)
		r.Use(apiRateLimitMiddleware.Handler)
		r.Post("/sub-status", accessHandler.CheckAccess)
		r.Get("/session", sessionHandler.MintCredential)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminAuthMiddleware.Handler)
		r.Use(bodyLimitMiddleware.Handler)
		r.Post("/test-webhook", adminHandler.RunDiagnostic)
	})

	cleanupJob := jobs.NewCleanupJob(eventRepo, cfg.EventRetention(), config.EventPurgeInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
