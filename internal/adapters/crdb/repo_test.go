package crdb_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/sponsored-events/internal/adapters/crdb"
	"github.com/robertarktes/sponsored-events/internal/ledger"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startCRDB(t *testing.T, ctx context.Context) *crdb.Repository {
	t.Helper()
	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp", "8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { crdbContainer.Terminate(context.Background()) })

	dsn, err := crdbContainer.Endpoint(ctx, "postgresql")
	if err != nil {
		t.Fatal(err)
	}

	admin, err := pgxpool.New(ctx, dsn+"/defaultdb?sslmode=disable&user=root")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS sev"); err != nil {
		t.Fatal(err)
	}
	admin.Close()

	pool, err := pgxpool.New(ctx, dsn+"/sev?sslmode=disable&user=root")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	repo := crdb.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestJournal_MirrorsLedger(t *testing.T) {
	ctx := context.Background()
	repo := startCRDB(t, ctx)
	logger := observability.NewDiscardLogger()
	amount := decimal.RequireFromString("31.50")

	// Two processes against one database restart their sequence numbers.
	for _, runID := range []string{"run-a", "run-b"} {
		t.Run(runID, func(t *testing.T) {
			l := ledger.New(logger, ledger.WithJournal(crdb.NewJournal(repo, runID, logger)))
			if !l.Pay(ctx, "consumer", "organiser", amount) {
				t.Fatal("payment failed")
			}
			if !l.Refund(ctx, "consumer", "organiser", amount) {
				t.Fatal("refund failed")
			}

			txs, err := repo.Transactions(ctx, runID)
			if err != nil {
				t.Fatal(err)
			}
			if len(txs) != 2 {
				t.Fatalf("expected 2 journal rows, got %d", len(txs))
			}
			payment, refund := txs[0], txs[1]
			if payment.Seq != 1 || payment.Kind != ledger.KindPayment || !payment.Matched || !payment.Amount.Equal(amount) {
				t.Errorf("unexpected payment row %+v", payment)
			}
			if refund.Kind != ledger.KindRefund || refund.MatchedSeq != payment.Seq {
				t.Errorf("unexpected refund row %+v", refund)
			}
		})
	}

	n, err := repo.CountOutbox(ctx, "NEW")
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("expected 4 queued outbox records, got %d", n)
	}

	var keys []string
	err = repo.WithTx(ctx, func(tx pgx.Tx) error {
		claimed, err := repo.ClaimOutbox(ctx, tx, 10)
		for _, rec := range claimed {
			keys = append(keys, rec.DedupeKey)
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, k := range keys {
		if seen[k] {
			t.Errorf("dedupe key %s reused across runs", k)
		}
		seen[k] = true
	}
	if !seen[crdb.DedupeKey("run-a", 1)] || !seen[crdb.DedupeKey("run-b", 1)] {
		t.Errorf("expected first payment of both runs queued, got %v", keys)
	}
}

func TestRepository_ClaimAndPublishOutbox(t *testing.T) {
	ctx := context.Background()
	repo := startCRDB(t, ctx)
	logger := observability.NewDiscardLogger()

	journal := crdb.NewJournal(repo, "run-a", logger)
	for seq := int64(1); seq <= 3; seq++ {
		tx := ledger.Transaction{
			Seq:    seq,
			Payer:  "p",
			Payee:  "q",
			Amount: decimal.NewFromInt(seq),
			Kind:   ledger.KindPayment,
			At:     time.Now(),
		}
		if err := journal.Append(ctx, tx, nil); err != nil {
			t.Fatal(err)
		}
	}

	var claimed []crdb.OutboxRecord
	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		claimed, err = repo.ClaimOutbox(ctx, tx, 2)
		if err != nil {
			return err
		}
		for _, rec := range claimed {
			if err := repo.MarkPublished(ctx, tx, rec.ID, time.Now()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(claimed) != 2 {
		t.Fatalf("expected 2 claimed records, got %d", len(claimed))
	}
	if claimed[0].EventType != "ledger.payment" || claimed[0].DedupeKey != "ledger:run-a:1" {
		t.Errorf("unexpected record %+v", claimed[0])
	}
	var decoded ledger.Transaction
	if err := json.Unmarshal(claimed[0].Payload, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Seq != 1 || !decoded.Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("unexpected payload %+v", decoded)
	}

	left, err := repo.CountOutbox(ctx, "NEW")
	if err != nil {
		t.Fatal(err)
	}
	if left != 1 {
		t.Errorf("expected 1 record left, got %d", left)
	}
}
