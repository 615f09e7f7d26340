package engine

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/shopspring/decimal"
)

// organiserGuards are the shared preconditions of event creation.
func organiserGuards(env *Env, title string, category domain.Category) []Guard {
	return []Guard{
		{CodeCreateEventNotLoggedIn, func() bool { return env.actor() != nil }},
		{CodeCreateEventNotOrganiser, func() bool {
			_, ok := env.actor().(*domain.Organiser)
			return ok
		}},
		{CodeCreateEventTitleBlank, func() bool { return !blank(title) }},
		{CodeCreateEventInvalidCategory, category.Valid},
	}
}

type CreateNonTicketedEvent struct {
	base
	Title    string
	Category domain.Category

	result int64
}

func (*CreateNonTicketedEvent) Source() string { return "CreateNonTicketedEvent" }

// Result is the new event id, or 0.
func (c *CreateNonTicketedEvent) Result() int64 { return c.result }

func (c *CreateNonTicketedEvent) Execute(ctx context.Context, env *Env) {
	c.result = run(ctx, env, &c.base, c.Source(), organiserGuards(env, c.Title, c.Category), func() step[int64] {
		org := env.actor().(*domain.Organiser)
		ev := env.Store.CreateNonTicketedEvent(org, c.Title, c.Category)
		org.Inventory.RecordNewEvent(ctx, ev.ID, ev.Title, 0)
		return done(ev.ID, CodeCreateNonTicketedSuccess, map[string]any{"event_id": ev.ID})
	})
}

type CreateTicketedEvent struct {
	base
	Title              string
	Category           domain.Category
	Price              decimal.Decimal
	MaxTickets         int
	RequestSponsorship bool

	result int64
}

func (*CreateTicketedEvent) Source() string { return "CreateTicketedEvent" }

// Result is the new event id, or 0.
func (c *CreateTicketedEvent) Result() int64 { return c.result }

func (c *CreateTicketedEvent) Execute(ctx context.Context, env *Env) {
	guards := append(organiserGuards(env, c.Title, c.Category),
		Guard{CodeCreateEventInvalidMaxTickets, func() bool { return c.MaxTickets >= 1 }},
		Guard{CodeCreateEventNegativePrice, func() bool { return !c.Price.IsNegative() }},
	)
	c.result = run(ctx, env, &c.base, c.Source(), guards, func() step[int64] {
		org := env.actor().(*domain.Organiser)
		ev := env.Store.CreateTicketedEvent(org, c.Title, c.Category, c.Price, c.MaxTickets)
		fields := map[string]any{"event_id": ev.ID}
		if c.RequestSponsorship {
			req := env.Store.CreateSponsorshipRequest(ev)
			fields["sponsorship_request_id"] = req.ID
			env.record(ctx, c.Source(), CodeCreateEventSponsorship, map[string]any{
				"event_id":   ev.ID,
				"request_id": req.ID,
			})
		}
		org.Inventory.RecordNewEvent(ctx, ev.ID, ev.Title, ev.MaxTickets)
		return done(ev.ID, CodeCreateTicketedSuccess, fields)
	})
}

type AddPerformance struct {
	base
	EventID int64
	Spec    domain.PerformanceSpec

	result *domain.Performance
}

func (*AddPerformance) Source() string { return "AddPerformance" }

func (c *AddPerformance) Result() *domain.Performance { return c.result }

func (c *AddPerformance) Execute(ctx context.Context, env *Env) {
	var ev domain.Event
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeAddPerformanceStartAfterEnd, func() bool { return !c.Spec.Start.After(c.Spec.End) }},
		{CodeAddPerformanceCapacityBelowOne, func() bool { return c.Spec.CapacityLimit >= 1 }},
		{CodeAddPerformanceVenueSizeBelowOne, func() bool { return c.Spec.VenueSize >= 1 }},
		{CodeAddPerformanceNotLoggedIn, func() bool { return env.actor() != nil }},
		{CodeAddPerformanceNotOrganiser, func() bool {
			_, ok := env.actor().(*domain.Organiser)
			return ok
		}},
		{CodeAddPerformanceEventNotFound, func() bool {
			var ok bool
			ev, ok = env.Store.Event(c.EventID)
			return ok
		}},
		{CodeAddPerformanceNotEventOrganiser, func() bool {
			return ev.Base().IsOrganisedBy(env.actor())
		}},
		{CodeAddPerformanceTitleClash, func() bool {
			return !titleClash(env, ev, c.Spec.Start, c.Spec.End)
		}},
	}, func() step[*domain.Performance] {
		p, err := env.Store.CreatePerformance(ev, c.Spec)
		if err != nil {
			env.Logger.WithField("event_id", c.EventID).Error("create performance: ", err)
			return fail[*domain.Performance](invalidPerformanceCode(err), nil)
		}
		org := ev.Base().Organiser
		org.Inventory.RecordNewPerformance(ctx, ev.Base().ID, p.ID, p.Start, p.End)
		return done(p, CodeAddPerformanceSuccess, map[string]any{
			"event_id":       ev.Base().ID,
			"performance_id": p.ID,
		})
	})
}

func invalidPerformanceCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCapacity):
		return CodeAddPerformanceCapacityBelowOne
	case errors.Is(err, domain.ErrInvalidVenueSize):
		return CodeAddPerformanceVenueSizeBelowOne
	default:
		return CodeAddPerformanceStartAfterEnd
	}
}

// titleClash reports whether a different event with the same title already
// has a performance with exactly this timing. Organisers are not compared.
func titleClash(env *Env, ev domain.Event, start, end time.Time) bool {
	for _, other := range env.Store.Events() {
		ob := other.Base()
		if ob.ID == ev.Base().ID || ob.Title != ev.Base().Title {
			continue
		}
		for _, p := range ob.Performances {
			if p.SameTiming(start, end) {
				return true
			}
		}
	}
	return false
}

type CancelEvent struct {
	base
	EventID int64
	Message string

	result bool
}

func (*CancelEvent) Source() string { return "CancelEvent" }

func (c *CancelEvent) Result() bool { return c.result }

func (c *CancelEvent) Execute(ctx context.Context, env *Env) {
	var ev domain.Event
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeCancelEventMessageBlank, func() bool { return !blank(c.Message) }},
		{CodeCancelEventNotOrganiser, func() bool {
			_, ok := env.actor().(*domain.Organiser)
			return ok
		}},
		{CodeCancelEventEventNotFound, func() bool {
			var ok bool
			ev, ok = env.Store.Event(c.EventID)
			return ok
		}},
		{CodeCancelEventNotActive, func() bool { return ev.Base().IsActive() }},
		{CodeCancelEventNotEventOrganiser, func() bool {
			return ev.Base().IsOrganisedBy(env.actor())
		}},
		{CodeCancelEventPerformanceStarted, func() bool {
			return !ev.Base().HasStartedPerformance(env.now())
		}},
	}, func() step[bool] {
		org := ev.Base().Organiser
		if te, ok := ev.(*domain.TicketedEvent); ok && te.IsSponsored() {
			amount := te.SponsorshipAmount()
			fields := map[string]any{"event_id": te.ID, "amount": amount.String()}
			if !env.Payments.Refund(ctx, te.SponsorAccount(), org.PaymentAccount, amount) {
				return fail[bool](CodeCancelEventSponsorshipRefundFailed, fields)
			}
			env.record(ctx, c.Source(), CodeCancelEventSponsorshipRefundOK, fields)
		}

		cancelled := 0
		for _, b := range env.Store.BookingsByEvent(ev.Base().ID) {
			if !b.IsActive() {
				continue
			}
			code := CodeCancelEventBookingRefundOK
			if !env.Payments.Refund(ctx, b.Booker.PaymentAccount, org.PaymentAccount, b.AmountPaid) {
				code = CodeCancelEventBookingRefundFailed
			}
			env.record(ctx, c.Source(), code, map[string]any{"booking_id": b.ID})
			if err := b.CancelByProvider(); err != nil {
				env.Logger.WithField("booking_id", b.ID).Error("cancel booking: ", err)
				continue
			}
			cancelled++
		}

		if err := ev.Base().Cancel(); err != nil {
			env.Logger.WithField("event_id", ev.Base().ID).Error("cancel event: ", err)
		}
		org.Inventory.CancelEvent(ctx, ev.Base().ID, c.Message)
		return done(true, CodeCancelEventSuccess, map[string]any{
			"event_id":           ev.Base().ID,
			"bookings_cancelled": cancelled,
		})
	})
}
