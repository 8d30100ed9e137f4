package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/audit"
	alertrepo "github.com/Reyansh-Niranjan/CogniSecure/internal/alert/repository"
	auditrepo "github.com/Reyansh-Niranjan/CogniSecure/internal/audit/repository"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/completion"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/config"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/db"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/gateway"
	healthhandler "github.com/Reyansh-Niranjan/CogniSecure/internal/health/handler"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/httpapi"
	officerrepo "github.com/Reyansh-Niranjan/CogniSecure/internal/officer/repository"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/platform/logger"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/policy/engine"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/promptcontext"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/quota"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/server"
	sessionrepo "github.com/Reyansh-Niranjan/CogniSecure/internal/session/repository"
	sessionservice "github.com/Reyansh-Niranjan/CogniSecure/internal/session/service"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry"
	telemetryotel "github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry/otel"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry/producer"
)

const (
	serviceName         = "cognisecure-gateway"
	healthCheckInterval = 15 * time.Second
	quotaPurgeInterval  = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(serviceName, "info")
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := logger.New(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	database, err := db.OpenContext(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer database.Close()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatal().Err(err).Msg("otel providers")
	}
	providers.SetGlobal()

	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic, log)
	if err != nil {
		log.Fatal().Err(err).Msg("kafka producer")
	}
	var events telemetry.EventEmitter = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	if kafkaProducer != nil {
		events = telemetry.Multi(kafkaProducer, events)
		log.Info().Str("topic", cfg.TelemetryKafkaTopic).Msg("telemetry: emitting gateway events to kafka")
	}

	policy, err := engine.NewOPAEvaluator(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("policy engine")
	}

	ledger, closeLedger, err := newLedger(ctx, cfg, database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("quota ledger")
	}
	defer closeLedger()

	officers := officerrepo.NewPostgresRepository(database)
	audits := auditrepo.NewPostgresRepository(database)
	sessions := sessionservice.NewService(sessionrepo.NewPostgresRepository(database), officers, cfg.SessionLifetime())

	gw := gateway.New(gateway.Deps{
		Sessions: sessions,
		Policy:   policy,
		Quota:    ledger,
		Context:  promptcontext.NewResolver(alertrepo.NewPostgresRepository(database)),
		Completer: completion.NewClient(completion.Config{
			BaseURL:   cfg.CompletionBaseURL,
			APIKey:    cfg.CompletionAPIKey,
			Model:     cfg.CompletionModel,
			MaxTokens: cfg.CompletionMaxTokens,
			Timeout:   cfg.CompletionTimeoutDuration(),
			RPS:       cfg.CompletionRPS,
			Title:     "CogniSecure",
		}),
		Audit:             audit.NewWriter(audits, log),
		AuditLogs:         audits,
		Officers:          officers,
		Events:            events,
		MeterProvider:     providers.MeterProvider,
		Log:               log,
		MaxContextRecords: cfg.MaxContextRecords,
	})

	checker := healthhandler.NewChecker(database, policy)
	healthSrv := health.NewServer()

	grpcSrv := server.NewGRPCServer(log, cfg.TrustProxyHeaders)
	server.RegisterServices(grpcSrv, server.Deps{Gateway: gw, Health: healthSrv})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("listen")
	}

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(gw, checker, log, cfg.TrustProxyHeaders),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		return grpcSrv.Serve(lis)
	})
	if httpSrv != nil {
		g.Go(func() error {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		checker.Watch(gctx, healthSrv, healthCheckInterval, log)
		return nil
	})
	if purger, ok := ledger.(*quota.PostgresLedger); ok {
		g.Go(func() error {
			purgeQuota(gctx, purger, log)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if httpSrv != nil {
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("http shutdown")
			}
		}
		grpcSrv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
	}

	// Let in-flight EmitAsync calls finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Warn().Err(err).Msg("kafka producer close")
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("stopped")
}

// newLedger builds the quota ledger selected by QUOTA_BACKEND. The returned close func is never nil.
func newLedger(ctx context.Context, cfg *config.Config, database *sql.DB, log zerolog.Logger) (quota.Ledger, func(), error) {
	retention := cfg.QuotaRetentionWindow()
	switch cfg.QuotaBackend {
	case config.QuotaBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, func() {}, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Int("per_hour", cfg.QuotaPerHour).Msg("quota: redis ledger")
		return quota.NewRedisLedger(client, cfg.QuotaPerHour, retention), func() { _ = client.Close() }, nil
	case config.QuotaBackendMemory:
		log.Warn().Int("per_hour", cfg.QuotaPerHour).Msg("quota: in-memory ledger, counts are per process")
		return quota.NewMemoryLedger(cfg.QuotaPerHour, retention), func() {}, nil
	default:
		log.Info().Int("per_hour", cfg.QuotaPerHour).Msg("quota: postgres ledger")
		return quota.NewPostgresLedger(database, cfg.QuotaPerHour, retention), func() {}, nil
	}
}

func purgeQuota(ctx context.Context, ledger *quota.PostgresLedger, log zerolog.Logger) {
	ticker := time.NewTicker(quotaPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := ledger.PurgeBefore(ctx, time.Now().UTC())
			if err != nil {
				log.Warn().Err(err).Msg("quota purge")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("quota purge")
			}
		}
	}
}
