package engine

import (
	"context"
	"time"

	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/robertarktes/sponsored-events/internal/store"
)

// ListEvents lists events visible to the actor. With UserEventsOnly a
// consumer sees events matching their preferences and an organiser sees
// their own events; everyone else sees events with a future performance.
type ListEvents struct {
	base
	UserEventsOnly   bool
	ActiveEventsOnly bool

	result store.Snapshot[domain.Event]
}

func (*ListEvents) Source() string { return "ListEvents" }

func (c *ListEvents) Result() store.Snapshot[domain.Event] { return c.result }

func (c *ListEvents) Execute(ctx context.Context, env *Env) {
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeListEventsNotLoggedIn, func() bool { return env.actor() != nil }},
	}, func() step[store.Snapshot[domain.Event]] {
		events := selectEvents(env, env.Store.Events(), c.UserEventsOnly, c.ActiveEventsOnly, true)
		return done(events, CodeListEventsSuccess, map[string]any{
			"count":  len(events),
			"user":   c.UserEventsOnly,
			"active": c.ActiveEventsOnly,
		})
	})
}

// ListEventsOnDate narrows ListEvents to events with a performance that
// starts and ends within a day either side of Date.
type ListEventsOnDate struct {
	base
	Date             time.Time
	UserEventsOnly   bool
	ActiveEventsOnly bool

	result store.Snapshot[domain.Event]
}

func (*ListEventsOnDate) Source() string { return "ListEventsOnDate" }

func (c *ListEventsOnDate) Result() store.Snapshot[domain.Event] { return c.result }

func (c *ListEventsOnDate) Execute(ctx context.Context, env *Env) {
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeListEventsNotLoggedIn, func() bool { return env.actor() != nil }},
	}, func() step[store.Snapshot[domain.Event]] {
		onDate := env.Store.Events().Filter(func(ev domain.Event) bool {
			for _, p := range ev.Base().Performances {
				if p.WithinDayOf(c.Date) {
					return true
				}
			}
			return false
		})
		events := selectEvents(env, onDate, c.UserEventsOnly, c.ActiveEventsOnly, false)
		return done(events, CodeListEventsSuccess, map[string]any{
			"count": len(events),
			"date":  c.Date,
		})
	})
}

func selectEvents(env *Env, events store.Snapshot[domain.Event], userOnly, activeOnly, futureOnly bool) store.Snapshot[domain.Event] {
	now := env.now()
	active := func(ev domain.Event) bool { return !activeOnly || ev.Base().IsActive() }

	if userOnly {
		switch u := env.actor().(type) {
		case *domain.Consumer:
			return events.Filter(func(ev domain.Event) bool {
				return active(ev) && satisfiesPreferences(ev, u.Preferences, now)
			})
		case *domain.Organiser:
			return events.Filter(func(ev domain.Event) bool {
				return active(ev) && ev.Base().Organiser == u
			})
		}
	}
	return events.Filter(func(ev domain.Event) bool {
		if (futureOnly || activeOnly) && !ev.Base().HasFuturePerformance(now) {
			return false
		}
		return active(ev)
	})
}

func satisfiesPreferences(ev domain.Event, prefs domain.Preferences, now time.Time) bool {
	for _, p := range ev.Base().Performances {
		if p.Satisfies(prefs, now) {
			return true
		}
	}
	return false
}

type ListConsumerBookings struct {
	base

	result store.Snapshot[*domain.Booking]
}

func (*ListConsumerBookings) Source() string { return "ListConsumerBookings" }

func (c *ListConsumerBookings) Result() store.Snapshot[*domain.Booking] { return c.result }

func (c *ListConsumerBookings) Execute(ctx context.Context, env *Env) {
	var consumer *domain.Consumer
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeListConsumerBookingsNotLoggedIn, func() bool { return env.actor() != nil }},
		{CodeListConsumerBookingsNotConsumer, func() bool {
			var ok bool
			consumer, ok = env.actor().(*domain.Consumer)
			return ok
		}},
	}, func() step[store.Snapshot[*domain.Booking]] {
		bookings := env.Store.BookingsByConsumer(consumer)
		return done(bookings, CodeListConsumerBookingsSuccess, map[string]any{"count": len(bookings)})
	})
}

// ListEventBookings is open to the event's organiser and to government
// representatives.
type ListEventBookings struct {
	base
	EventID int64

	result store.Snapshot[*domain.Booking]
}

func (*ListEventBookings) Source() string { return "ListEventBookings" }

func (c *ListEventBookings) Result() store.Snapshot[*domain.Booking] { return c.result }

func (c *ListEventBookings) Execute(ctx context.Context, env *Env) {
	var ev domain.Event
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeListEventBookingsNotLoggedIn, func() bool { return env.actor() != nil }},
		{CodeListEventBookingsEventNotFound, func() bool {
			var ok bool
			ev, ok = env.Store.Event(c.EventID)
			return ok
		}},
		{CodeListEventBookingsNotTicketed, func() bool {
			_, ok := ev.(*domain.TicketedEvent)
			return ok
		}},
		{CodeListEventBookingsNotOrgNorGov, func() bool {
			if _, ok := env.actor().(*domain.GovernmentRepresentative); ok {
				return true
			}
			return ev.Base().IsOrganisedBy(env.actor())
		}},
	}, func() step[store.Snapshot[*domain.Booking]] {
		bookings := env.Store.BookingsByEvent(c.EventID)
		return done(bookings, CodeListEventBookingsSuccess, map[string]any{
			"event_id": c.EventID,
			"count":    len(bookings),
		})
	})
}

type ListSponsorshipRequests struct {
	base
	PendingOnly bool

	result store.Snapshot[*domain.SponsorshipRequest]
}

func (*ListSponsorshipRequests) Source() string { return "ListSponsorshipRequests" }

func (c *ListSponsorshipRequests) Result() store.Snapshot[*domain.SponsorshipRequest] {
	return c.result
}

func (c *ListSponsorshipRequests) Execute(ctx context.Context, env *Env) {
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeListSponsorshipsNotLoggedIn, func() bool { return env.actor() != nil }},
		{CodeListSponsorshipsNotGovernment, func() bool {
			_, ok := env.actor().(*domain.GovernmentRepresentative)
			return ok
		}},
	}, func() step[store.Snapshot[*domain.SponsorshipRequest]] {
		requests := env.Store.SponsorshipRequests()
		if c.PendingOnly {
			requests = env.Store.PendingSponsorshipRequests()
		}
		return done(requests, CodeListSponsorshipsSuccess, map[string]any{
			"count":   len(requests),
			"pending": c.PendingOnly,
		})
	})
}

// GovernmentReport lists, once each, the consumers holding an active booking
// at an active ticketed event of the named organisation.
type GovernmentReport struct {
	base
	OrgName string

	result store.Snapshot[*domain.Consumer]
}

func (*GovernmentReport) Source() string { return "GovernmentReport" }

func (c *GovernmentReport) Result() store.Snapshot[*domain.Consumer] { return c.result }

func (c *GovernmentReport) Execute(ctx context.Context, env *Env) {
	var org *domain.Organiser
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeGovernmentReportNotGovernment, func() bool {
			_, ok := env.actor().(*domain.GovernmentRepresentative)
			return ok
		}},
		{CodeGovernmentReportOrganiserNotFound, func() bool {
			for _, u := range env.Store.Users() {
				if o, ok := u.(*domain.Organiser); ok && o.OrgName == c.OrgName {
					org = o
					return true
				}
			}
			return false
		}},
	}, func() step[store.Snapshot[*domain.Consumer]] {
		seen := make(map[*domain.Consumer]bool)
		consumers := store.Snapshot[*domain.Consumer]{}
		for _, ev := range env.Store.EventsByOrganiser(org) {
			if _, ok := ev.(*domain.TicketedEvent); !ok || !ev.Base().IsActive() {
				continue
			}
			for _, b := range env.Store.BookingsByEvent(ev.Base().ID) {
				if b.IsActive() && !seen[b.Booker] {
					seen[b.Booker] = true
					consumers = append(consumers, b.Booker)
				}
			}
		}
		return done(consumers, CodeGovernmentReportSuccess, map[string]any{
			"org_name": c.OrgName,
			"count":    len(consumers),
		})
	})
}

// AvailableTickets reads the remaining tickets of a performance from the
// organiser's inventory system.
type AvailableTickets struct {
	base
	EventID       int64
	PerformanceID int64

	result int
}

func (*AvailableTickets) Source() string { return "AvailableTickets" }

func (c *AvailableTickets) Result() int { return c.result }

func (c *AvailableTickets) Execute(ctx context.Context, env *Env) {
	var te *domain.TicketedEvent
	c.result = run(ctx, env, &c.base, c.Source(), []Guard{
		{CodeAvailableTicketsEventNotFound, func() bool {
			_, ok := env.Store.Event(c.EventID)
			return ok
		}},
		{CodeAvailableTicketsNotTicketed, func() bool {
			ev, _ := env.Store.Event(c.EventID)
			var ok bool
			te, ok = ev.(*domain.TicketedEvent)
			return ok
		}},
		{CodeAvailableTicketsPerformanceNotFound, func() bool {
			_, ok := te.Performance(c.PerformanceID)
			return ok
		}},
	}, func() step[int] {
		left := te.Organiser.Inventory.NumTicketsLeft(ctx, te.ID, c.PerformanceID)
		return done(left, CodeAvailableTicketsSuccess, map[string]any{
			"event_id":       te.ID,
			"performance_id": c.PerformanceID,
			"left":           left,
		})
	})
}
