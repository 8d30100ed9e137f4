// Worker consumes gateway events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/config"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/platform/logger"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("cognisecure-worker", "info")
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := logger.New("cognisecure-worker", cfg.LogLevel)

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal().Msg("worker: KAFKA_BROKERS is required")
	}
	client, err := loki.NewClient(cfg.LokiURL)
	if err != nil {
		log.Fatal().Err(err).Msg("worker: LOKI_URL is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.TelemetryKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("topic", cfg.TelemetryKafkaTopic).
		Str("group_id", cfg.KafkaGroupID).
		Str("loki_url", cfg.LokiURL).
		Msg("worker: consuming")

	consume(ctx, reader, client, log)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type eventPusher interface {
	PushEventJSON(ctx context.Context, raw []byte) error
}

// consume forwards every message to Loki until ctx is done. Read and push failures are logged and skipped.
func consume(ctx context.Context, reader messageReader, pusher eventPusher, log zerolog.Logger) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("worker: stopped")
				return
			}
			log.Warn().Err(err).Msg("worker: kafka read error")
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := pusher.PushEventJSON(pushCtx, msg.Value); err != nil {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("worker: loki push failed")
		}
		pushCancel()
	}
}
