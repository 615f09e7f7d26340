package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingActive              BookingStatus = "ACTIVE"
	BookingCancelledByConsumer BookingStatus = "CANCELLED_BY_CONSUMER"
	BookingCancelledByProvider BookingStatus = "CANCELLED_BY_PROVIDER"
	BookingPaymentFailed       BookingStatus = "PAYMENT_FAILED"
)

// ConsumerCancellationWindow is how long before the start of a performance
// a consumer may still cancel.
const ConsumerCancellationWindow = 24 * time.Hour

type Booking struct {
	ID          int64
	Booker      *Consumer
	Performance *Performance
	Tickets     int
	AmountPaid  decimal.Decimal
	CreatedAt   time.Time
	Status      BookingStatus
}

func NewBooking(id int64, booker *Consumer, p *Performance, tickets int, amount decimal.Decimal, now time.Time) *Booking {
	return &Booking{
		ID:          id,
		Booker:      booker,
		Performance: p,
		Tickets:     tickets,
		AmountPaid:  amount,
		CreatedAt:   now,
		Status:      BookingActive,
	}
}

func (b *Booking) IsActive() bool { return b.Status == BookingActive }

// Event is the event the booked performance belongs to.
func (b *Booking) Event() Event { return b.Performance.Event }

// CancellableByConsumer reports whether the performance starts at least
// ConsumerCancellationWindow after now.
func (b *Booking) CancellableByConsumer(now time.Time) bool {
	return !b.Performance.Start.Add(-ConsumerCancellationWindow).Before(now)
}

func (b *Booking) CancelByConsumer(now time.Time) error {
	if !b.IsActive() {
		return ErrBookingNotActive
	}
	if !b.CancellableByConsumer(now) {
		return ErrCancellationWindow
	}
	b.Status = BookingCancelledByConsumer
	return nil
}

func (b *Booking) CancelByProvider() error {
	if !b.IsActive() {
		return ErrBookingNotActive
	}
	b.Status = BookingCancelledByProvider
	return nil
}

func (b *Booking) MarkPaymentFailed() error {
	if !b.IsActive() {
		return ErrBookingNotActive
	}
	b.Status = BookingPaymentFailed
	return nil
}
