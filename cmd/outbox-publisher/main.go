package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/sponsored-events/internal/adapters/crdb"
	"github.com/robertarktes/sponsored-events/internal/adapters/rabbit"
	"github.com/robertarktes/sponsored-events/internal/config"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/outbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.CRDBDSN == "" || cfg.RabbitURL == "" {
		log.Fatal("outbox publisher requires CRDB_DSN and RABBIT_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := observability.SetupOTel(ctx, cfg, "sev-outbox-publisher")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate crdb: %v", err)
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	rabbitPub, err := rabbit.NewPublisher(conn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}
	defer rabbitPub.Close()

	logger.WithField("interval", cfg.OutboxInterval.String()).Info("Outbox publisher started")
	outbox.NewPublisher(repo, rabbitPub, logger).Run(ctx, cfg.OutboxInterval)
	logger.Info("Shutdown outbox publisher")
}
