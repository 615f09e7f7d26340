package engine

import (
	"context"

	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/shopspring/decimal"
)

type BookEvent struct {
	base
	EventID       int64
	PerformanceID int64
	Tickets       int

	result int64
}

func (*BookEvent) Source() string { return "BookEvent" }

// Result is the new booking id, or 0.
func (c *BookEvent) Result() int64 { return c.result }

func (c *BookEvent) Execute(ctx context.Context, env *Env) {
	var (
		consumer *domain.Consumer
		ev       domain.Event
		te       *domain.TicketedEvent
		perf     *domain.Performance
	)
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeBookEventNotConsumer, func() bool {
			var ok bool
			consumer, ok = env.actor().(*domain.Consumer)
			return ok
		}},
		{CodeBookEventEventNotFound, func() bool {
			var ok bool
			ev, ok = env.Store.Event(c.EventID)
			return ok
		}},
		{CodeBookEventNotTicketed, func() bool {
			var ok bool
			te, ok = ev.(*domain.TicketedEvent)
			return ok
		}},
		{CodeBookEventNotActive, func() bool { return te.IsActive() }},
		{CodeBookEventInvalidNumTickets, func() bool { return c.Tickets >= 1 }},
		{CodeBookEventPerformanceNotFound, func() bool {
			var ok bool
			perf, ok = te.Performance(c.PerformanceID)
			return ok
		}},
		{CodeBookEventAlreadyOver, func() bool { return !perf.HasEnded(env.now()) }},
		{CodeBookEventNotEnoughTickets, func() bool {
			return te.Organiser.Inventory.NumTicketsLeft(ctx, te.ID, perf.ID) >= c.Tickets
		}},
	}, func() step[int64] {
		org := te.Organiser
		amount := te.DiscountedPrice().Mul(decimal.NewFromInt(int64(c.Tickets)))
		b := env.Store.CreateBooking(consumer, perf, c.Tickets, amount, env.now())
		fields := map[string]any{
			"booking_id": b.ID,
			"event_id":   te.ID,
			"amount":     amount.String(),
		}
		if !env.Payments.Pay(ctx, consumer.PaymentAccount, org.PaymentAccount, amount) {
			if err := b.MarkPaymentFailed(); err != nil {
				env.Logger.WithField("booking_id", b.ID).Error("mark payment failed: ", err)
			}
			return fail[int64](CodeBookEventPaymentFailed, fields)
		}
		org.Inventory.RecordNewBooking(ctx, te.ID, perf.ID, b.ID, consumer.Name, consumer.Email, c.Tickets)
		return done(b.ID, CodeBookEventSuccess, fields)
	})
}

type CancelBooking struct {
	base
	BookingID int64

	result bool
}

func (*CancelBooking) Source() string { return "CancelBooking" }

func (c *CancelBooking) Result() bool { return c.result }

func (c *CancelBooking) Execute(ctx context.Context, env *Env) {
	var (
		consumer *domain.Consumer
		b        *domain.Booking
	)
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeCancelBookingNotConsumer, func() bool {
			var ok bool
			consumer, ok = env.actor().(*domain.Consumer)
			return ok
		}},
		{CodeCancelBookingNotFound, func() bool {
			var ok bool
			b, ok = env.Store.Booking(c.BookingID)
			return ok
		}},
		{CodeCancelBookingNotBooker, func() bool { return b.Booker == consumer }},
		{CodeCancelBookingNotActive, func() bool { return b.IsActive() }},
		{CodeCancelBookingWithin24h, func() bool { return b.CancellableByConsumer(env.now()) }},
	}, func() step[bool] {
		org := b.Event().Base().Organiser
		fields := map[string]any{"booking_id": b.ID}
		if !env.Payments.Refund(ctx, consumer.PaymentAccount, org.PaymentAccount, b.AmountPaid) {
			return fail[bool](CodeCancelBookingRefundFailed, fields)
		}
		if err := b.CancelByConsumer(env.now()); err != nil {
			env.Logger.WithField("booking_id", b.ID).Error("cancel booking: ", err)
		}
		org.Inventory.CancelBooking(ctx, b.ID)
		fields["status"] = string(b.Status)
		return done(true, CodeCancelBookingSuccess, fields)
	})
}
