package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/robertarktes/sponsored-events/internal/adapters/mongo"
	"github.com/robertarktes/sponsored-events/internal/adapters/rabbit"
	"github.com/robertarktes/sponsored-events/internal/config"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const auditQueue = "sev.audit"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoURI == "" || cfg.RabbitURL == "" {
		log.Fatal("audit worker requires MONGO_URI and RABBIT_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := observability.SetupOTel(ctx, cfg, "sev-audit-worker")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	audit := mongoadapter.NewAuditLogger(mongoClient.Database("sev"), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, auditQueue, "ledger.*", "inventory.#")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	logger.Info("Audit worker started")
	NewAuditWorker(audit, logger).Run(ctx, deliveries)
	logger.Info("Shutdown audit worker")
}

type auditStore interface {
	LogMessage(ctx context.Context, action, messageID string, sentAt time.Time, data map[string]interface{}) error
}

// AuditWorker copies every broker message into the audit trail.
type AuditWorker struct {
	store      auditStore
	logger     observability.Logger
	maxRetries int
	backoff    time.Duration
}

func NewAuditWorker(store auditStore, logger observability.Logger) *AuditWorker {
	return &AuditWorker{store: store, logger: logger, maxRetries: 3, backoff: time.Second}
}

func (w *AuditWorker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks a delivery once it is stored. Undecodable bodies are dropped;
// storage failures are requeued after the retries run out.
func (w *AuditWorker) handle(ctx context.Context, d amqp.Delivery) {
	logger := w.logger.WithFields(map[string]interface{}{
		"routing_key": d.RoutingKey,
		"message_id":  d.MessageId,
	})

	var data map[string]interface{}
	if err := json.Unmarshal(d.Body, &data); err != nil {
		logger.Warn("dropping undecodable message: ", err)
		d.Nack(false, false)
		return
	}

	if err := w.storeWithRetry(ctx, d, data); err != nil {
		logger.Error("failed to store audit log after retries: ", err)
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

func (w *AuditWorker) storeWithRetry(ctx context.Context, d amqp.Delivery, data map[string]interface{}) error {
	var err error
	for i := 0; i < w.maxRetries; i++ {
		if err = w.store.LogMessage(ctx, d.RoutingKey, d.MessageId, d.Timestamp, data); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(1<<i) * w.backoff):
		}
	}
	return err
}
