package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/robertarktes/sponsored-events/internal/ledger"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/shopspring/decimal"
)

const (
	SerializationFailureCode = "40001"
)

// Schema creates the journal and outbox tables. Sequence numbers restart
// with every process, so journal rows are keyed by the run that wrote them.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_transactions (
	run_id TEXT NOT NULL,
	seq INT8 NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('PAYMENT', 'REFUND')),
	payer TEXT NOT NULL,
	payee TEXT NOT NULL,
	amount NUMERIC NOT NULL,
	matched BOOL NOT NULL DEFAULT false,
	matched_seq INT8,
	at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload_json JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'NEW' CHECK (status IN ('NEW', 'PUBLISHED', 'FAILED')),
	dedupe_key TEXT NOT NULL
);
`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return errors.Wrap(err, "apply schema")
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	defer func() { observability.DBTxDuration.Observe(time.Since(start).Seconds()) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		err = tx.Commit(ctx)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
		return domain.ErrSerializationFailure
	}
	return err
}

func (r *Repository) InsertTransaction(ctx context.Context, tx pgx.Tx, runID string, t ledger.Transaction) error {
	var matchedSeq *int64
	if t.MatchedSeq != 0 {
		matchedSeq = &t.MatchedSeq
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_transactions (run_id, seq, kind, payer, payee, amount, matched, matched_seq, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, runID, t.Seq, string(t.Kind), t.Payer, t.Payee, t.Amount.String(), t.Matched, matchedSeq, t.At)
	return err
}

// MarkMatched flags the payment a refund settled.
func (r *Repository) MarkMatched(ctx context.Context, tx pgx.Tx, runID string, seq int64) error {
	result, err := tx.Exec(ctx, `
		UPDATE ledger_transactions SET matched = true
		WHERE run_id = $1 AND seq = $2 AND kind = 'PAYMENT' AND NOT matched
	`, runID, seq)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Transactions reads one run's journal back in sequence order.
func (r *Repository) Transactions(ctx context.Context, runID string) ([]ledger.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT seq, kind, payer, payee, amount::TEXT, matched, COALESCE(matched_seq, 0), at
		FROM ledger_transactions WHERE run_id = $1 ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		var kind, amount string
		if err := rows.Scan(&t.Seq, &kind, &t.Payer, &t.Payee, &amount, &t.Matched, &t.MatchedSeq, &t.At); err != nil {
			return nil, err
		}
		t.Kind = ledger.Kind(kind)
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, errors.Wrapf(err, "parse amount of transaction %d", t.Seq)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
