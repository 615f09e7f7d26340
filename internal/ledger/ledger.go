// Package ledger records payment and refund attempts and decides which prior
// payment a refund settles.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/robertarktes/sponsored-events/internal/clock"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPayment Kind = "PAYMENT"
	KindRefund  Kind = "REFUND"
)

type Transaction struct {
	Seq     int64           `json:"seq"`
	Payer   string          `json:"payer"`
	Payee   string          `json:"payee"`
	Amount  decimal.Decimal `json:"amount"`
	Kind    Kind            `json:"kind"`
	Matched bool            `json:"matched"`
	// MatchedSeq is the payment a refund settled.
	MatchedSeq int64     `json:"matched_seq,omitempty"`
	At         time.Time `json:"at"`
}

// Journal mirrors appended transactions to durable storage. matched is the
// payment a refund settled and is nil for payments.
type Journal interface {
	Append(ctx context.Context, tx Transaction, matched *Transaction) error
}

// Ledger is the only owner of its transaction list.
type Ledger struct {
	mu      sync.Mutex
	txs     []*Transaction
	nextSeq int64
	clock   clock.Clock
	journal Journal
	logger  observability.Logger
}

type Option func(*Ledger)

func WithJournal(j Journal) Option {
	return func(l *Ledger) { l.journal = j }
}

func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

func New(logger observability.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		nextSeq: 1,
		clock:   clock.NewSystem(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Pay models an always-available gateway: it appends a payment and succeeds.
func (l *Ledger) Pay(ctx context.Context, payer, payee string, amount decimal.Decimal) bool {
	l.mu.Lock()
	tx := *l.appendLocked(payer, payee, amount, KindPayment)
	l.mu.Unlock()

	observability.LedgerOperations.WithLabelValues(string(KindPayment), "ok").Inc()
	l.mirror(ctx, tx, nil)
	return true
}

// Refund succeeds only when exactly one unmatched payment carries the same
// (payer, payee, amount) triple. That payment becomes matched and a refund
// is appended. With zero or several candidates nothing changes.
func (l *Ledger) Refund(ctx context.Context, payer, payee string, amount decimal.Decimal) bool {
	l.mu.Lock()
	candidates := l.unmatchedLocked(payer, payee, amount)
	if len(candidates) != 1 {
		l.mu.Unlock()
		observability.LedgerOperations.WithLabelValues(string(KindRefund), "rejected").Inc()
		l.logger.WithFields(map[string]interface{}{
			"payer":      payer,
			"payee":      payee,
			"amount":     amount.String(),
			"candidates": len(candidates),
		}).Warn("refund rejected")
		return false
	}
	payment := candidates[0]
	payment.Matched = true
	rec := l.appendLocked(payer, payee, amount, KindRefund)
	rec.MatchedSeq = payment.Seq
	tx := *rec
	matched := *payment
	l.mu.Unlock()

	observability.LedgerOperations.WithLabelValues(string(KindRefund), "ok").Inc()
	l.mirror(ctx, tx, &matched)
	return true
}

// Transactions returns a copy of every transaction in append order.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.txs))
	for i, tx := range l.txs {
		out[i] = *tx
	}
	return out
}

// Unmatched counts unmatched payments for a triple.
func (l *Ledger) Unmatched(payer, payee string, amount decimal.Decimal) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.unmatchedLocked(payer, payee, amount))
}

func (l *Ledger) appendLocked(payer, payee string, amount decimal.Decimal, kind Kind) *Transaction {
	tx := &Transaction{
		Seq:    l.nextSeq,
		Payer:  payer,
		Payee:  payee,
		Amount: amount,
		Kind:   kind,
		At:     l.clock.Now(),
	}
	l.nextSeq++
	l.txs = append(l.txs, tx)
	return tx
}

func (l *Ledger) unmatchedLocked(payer, payee string, amount decimal.Decimal) []*Transaction {
	var out []*Transaction
	for _, tx := range l.txs {
		if tx.Kind != KindPayment || tx.Matched {
			continue
		}
		if tx.Payer == payer && tx.Payee == payee && tx.Amount.Equal(amount) {
			out = append(out, tx)
		}
	}
	return out
}

func (l *Ledger) mirror(ctx context.Context, tx Transaction, matched *Transaction) {
	if l.journal == nil {
		return
	}
	if err := l.journal.Append(ctx, tx, matched); err != nil {
		l.logger.WithField("seq", tx.Seq).Error("journal append failed: ", err)
	}
}
