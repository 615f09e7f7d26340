package crdb

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/robertarktes/sponsored-events/internal/ledger"
	"github.com/robertarktes/sponsored-events/internal/observability"
)

const journalRetries = 3

// Journal mirrors ledger transactions into CockroachDB. Each append writes
// the transaction row, flags the settled payment and queues an outbox
// record in one serializable transaction. Rows and dedupe keys carry the
// run id of the ledger that produced them.
type Journal struct {
	repo   *Repository
	runID  string
	logger observability.Logger
}

func NewJournal(repo *Repository, runID string, logger observability.Logger) *Journal {
	return &Journal{repo: repo, runID: runID, logger: logger}
}

// DedupeKey is the outbox dedupe key and broker message id of a transaction.
func DedupeKey(runID string, seq int64) string {
	return "ledger:" + runID + ":" + strconv.FormatInt(seq, 10)
}

// EventType is the routing key a transaction is relayed under.
func EventType(kind ledger.Kind) string {
	if kind == ledger.KindRefund {
		return "ledger.refund"
	}
	return "ledger.payment"
}

func (j *Journal) Append(ctx context.Context, t ledger.Transaction, matched *ledger.Transaction) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return errors.Wrap(err, "encode transaction")
	}
	seq := strconv.FormatInt(t.Seq, 10)

	for attempt := 0; ; attempt++ {
		err = j.repo.WithTx(ctx, func(tx pgx.Tx) error {
			if err := j.repo.InsertTransaction(ctx, tx, j.runID, t); err != nil {
				return err
			}
			if matched != nil {
				if err := j.repo.MarkMatched(ctx, tx, j.runID, matched.Seq); err != nil {
					return errors.Wrapf(err, "mark payment %d matched", matched.Seq)
				}
			}
			return j.repo.InsertOutbox(ctx, tx, OutboxRecord{
				ID:            uuid.New(),
				AggregateType: "ledger_transaction",
				AggregateID:   j.runID + ":" + seq,
				EventType:     EventType(t.Kind),
				Payload:       payload,
				DedupeKey:     DedupeKey(j.runID, t.Seq),
			})
		})
		if !errors.Is(err, domain.ErrSerializationFailure) || attempt == journalRetries-1 {
			return err
		}
		backoff := time.Duration(1<<attempt) * 50 * time.Millisecond
		j.logger.WithField("seq", t.Seq).Warn("journal retry after serialization failure")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
