// Package outbox relays journaled ledger transactions to the message broker.
package outbox

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/sponsored-events/internal/adapters/crdb"
	"github.com/robertarktes/sponsored-events/internal/observability"
)

// Broker is the publishing side of the message broker.
type Broker interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

type Publisher struct {
	store     *crdb.Repository
	broker    Broker
	logger    observability.Logger
	batchSize int
}

func NewPublisher(store *crdb.Repository, broker Broker, logger observability.Logger) *Publisher {
	return &Publisher{store: store, broker: broker, logger: logger, batchSize: 50}
}

func (p *Publisher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.RelayOnce(ctx)
			if err != nil {
				p.logger.Error("outbox relay failed: ", err)
				continue
			}
			if n > 0 {
				p.logger.WithField("published", n).Debug("outbox relayed")
			}
		}
	}
}

// RelayOnce publishes one batch. Records stay NEW when their publish fails
// and are retried on the next pass; the broker dedupes by message id.
func (p *Publisher) RelayOnce(ctx context.Context) (int, error) {
	published := 0
	err := p.store.WithTx(ctx, func(tx pgx.Tx) error {
		records, err := p.store.ClaimOutbox(ctx, tx, p.batchSize)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			observability.OutboxLag.Set(time.Since(records[0].CreatedAt).Seconds())
		} else {
			observability.OutboxLag.Set(0)
		}
		for _, rec := range records {
			msg := amqp.Publishing{
				MessageId:    rec.DedupeKey,
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    rec.CreatedAt,
				Body:         rec.Payload,
			}
			if err := p.broker.Publish(ctx, rec.EventType, msg); err != nil {
				observability.RabbitPublishFailures.Inc()
				p.logger.WithField("outbox_id", rec.ID).Warn("publish failed: ", err)
				break
			}
			if err := p.store.MarkPublished(ctx, tx, rec.ID, time.Now()); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}
