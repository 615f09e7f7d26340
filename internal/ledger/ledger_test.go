package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robertarktes/sponsored-events/internal/ledger"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLedger_RefundMatchesSinglePayment(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(observability.NewDiscardLogger())

	if !l.Pay(ctx, "alice", "org", amt("31.50")) {
		t.Fatal("expected payment to succeed")
	}
	if !l.Refund(ctx, "alice", "org", amt("31.5")) {
		t.Fatal("expected first refund to succeed")
	}
	if l.Refund(ctx, "alice", "org", amt("31.50")) {
		t.Fatal("expected second refund to fail")
	}

	txs := l.Transactions()
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if !txs[0].Matched || txs[0].Kind != ledger.KindPayment {
		t.Errorf("expected matched payment, got %+v", txs[0])
	}
	if txs[1].Kind != ledger.KindRefund || txs[1].MatchedSeq != txs[0].Seq {
		t.Errorf("expected refund of seq %d, got %+v", txs[0].Seq, txs[1])
	}
}

func TestLedger_RefundWithoutPayment(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(observability.NewDiscardLogger())
	l.Pay(ctx, "alice", "org", amt("10"))

	tests := []struct {
		name         string
		payer, payee string
		amount       string
	}{
		{"different payer", "bob", "org", "10"},
		{"different payee", "alice", "other", "10"},
		{"different amount", "alice", "org", "10.01"},
		{"reversed parties", "org", "alice", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if l.Refund(ctx, tt.payer, tt.payee, amt(tt.amount)) {
				t.Fatal("expected refund to fail")
			}
		})
	}
	if len(l.Transactions()) != 1 {
		t.Fatalf("failed refunds must not append, got %d transactions", len(l.Transactions()))
	}
}

func TestLedger_AmbiguousRefundRejected(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(observability.NewDiscardLogger())
	l.Pay(ctx, "alice", "org", amt("20"))
	l.Pay(ctx, "alice", "org", amt("20"))

	if l.Refund(ctx, "alice", "org", amt("20")) {
		t.Fatal("expected ambiguous refund to fail")
	}
	if n := l.Unmatched("alice", "org", amt("20")); n != 2 {
		t.Fatalf("expected both payments still unmatched, got %d", n)
	}
}

func TestLedger_RefundOnlyRefundsPayments(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(observability.NewDiscardLogger())
	l.Pay(ctx, "alice", "org", amt("5"))
	l.Pay(ctx, "alice", "org", amt("7"))

	if !l.Refund(ctx, "alice", "org", amt("5")) {
		t.Fatal("expected refund of 5 to succeed")
	}
	if !l.Refund(ctx, "alice", "org", amt("7")) {
		t.Fatal("expected refund of 7 to succeed")
	}
	l.Pay(ctx, "alice", "org", amt("5"))
	if !l.Refund(ctx, "alice", "org", amt("5")) {
		t.Fatal("expected refund of a new payment to succeed")
	}
}

type recordingJournal struct {
	appended []ledger.Transaction
	matched  []*ledger.Transaction
	err      error
}

func (j *recordingJournal) Append(_ context.Context, tx ledger.Transaction, matched *ledger.Transaction) error {
	j.appended = append(j.appended, tx)
	j.matched = append(j.matched, matched)
	return j.err
}

func TestLedger_Journal(t *testing.T) {
	ctx := context.Background()
	j := &recordingJournal{}
	l := ledger.New(observability.NewDiscardLogger(), ledger.WithJournal(j))

	l.Pay(ctx, "gov", "org", amt("157.50"))
	l.Refund(ctx, "gov", "org", amt("157.50"))
	l.Refund(ctx, "gov", "org", amt("157.50"))

	if len(j.appended) != 2 {
		t.Fatalf("expected 2 journal appends, got %d", len(j.appended))
	}
	if j.matched[0] != nil {
		t.Errorf("payment must not carry a matched transaction")
	}
	if j.matched[1] == nil || !j.matched[1].Matched || j.matched[1].Seq != j.appended[0].Seq {
		t.Errorf("refund must carry the matched payment, got %+v", j.matched[1])
	}
}

func TestLedger_JournalFailureDoesNotChangeResult(t *testing.T) {
	ctx := context.Background()
	j := &recordingJournal{err: errors.New("db down")}
	l := ledger.New(observability.NewDiscardLogger(), ledger.WithJournal(j))

	if !l.Pay(ctx, "a", "b", amt("1")) {
		t.Fatal("expected payment to succeed despite journal failure")
	}
	if !l.Refund(ctx, "a", "b", amt("1")) {
		t.Fatal("expected refund to succeed despite journal failure")
	}
}
