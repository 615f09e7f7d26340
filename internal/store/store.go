// Package store owns every entity of the marketplace and hands out
// references to them. Ids are assigned per entity kind, start at 1 and are
// never reused.
package store

import (
	"slices"
	"sync"
	"time"

	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is an independent copy of a collection. The container belongs to
// the caller; the entities in it are shared with the store.
type Snapshot[T any] []T

// Filter returns the elements of s for which keep returns true.
func (s Snapshot[T]) Filter(keep func(T) bool) Snapshot[T] {
	out := make(Snapshot[T], 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

type counter struct{ next int64 }

func (c *counter) take() int64 {
	if c.next == 0 {
		c.next = 1
	}
	id := c.next
	c.next++
	return id
}

type Store struct {
	mu sync.RWMutex

	users        map[string]domain.User
	userOrder    []domain.User
	events       []domain.Event
	bookings     []*domain.Booking
	sponsorships []*domain.SponsorshipRequest

	eventIDs       counter
	performanceIDs counter
	bookingIDs     counter
	sponsorshipIDs counter
}

func New() *Store {
	return &Store{users: make(map[string]domain.User)}
}

// AddUser registers u under its email. It reports false if the email is taken.
func (s *Store) AddUser(u domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := u.Acct().Email
	if _, ok := s.users[email]; ok {
		return false
	}
	s.users[email] = u
	s.userOrder = append(s.userOrder, u)
	return true
}

func (s *Store) User(email string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	return u, ok
}

// Rekey moves u from oldEmail to its current email. It reports false if the
// new email belongs to a different user.
func (s *Store) Rekey(u domain.User, oldEmail string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	newEmail := u.Acct().Email
	if other, ok := s.users[newEmail]; ok && other != u {
		return false
	}
	if cur, ok := s.users[oldEmail]; ok && cur == u {
		delete(s.users, oldEmail)
	}
	s.users[newEmail] = u
	return true
}

// Users returns users in registration order.
func (s *Store) Users() Snapshot[domain.User] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[domain.User](slices.Clone(s.userOrder))
}

func (s *Store) CreateNonTicketedEvent(org *domain.Organiser, title string, category domain.Category) *domain.NonTicketedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := domain.NewNonTicketedEvent(s.eventIDs.take(), org, title, category)
	s.events = append(s.events, ev)
	return ev
}

func (s *Store) CreateTicketedEvent(org *domain.Organiser, title string, category domain.Category, price decimal.Decimal, maxTickets int) *domain.TicketedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := domain.NewTicketedEvent(s.eventIDs.take(), org, title, category, price, maxTickets)
	s.events = append(s.events, ev)
	return ev
}

func (s *Store) Event(id int64) (domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.Base().ID == id {
			return ev, true
		}
	}
	return nil, false
}

func (s *Store) Events() Snapshot[domain.Event] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[domain.Event](slices.Clone(s.events))
}

// EventsByOrganiser returns org's events in creation order.
func (s *Store) EventsByOrganiser(org *domain.Organiser) Snapshot[domain.Event] {
	return s.Events().Filter(func(ev domain.Event) bool {
		return ev.Base().Organiser == org
	})
}

// CreatePerformance assigns the next performance id. The id is only consumed
// when spec is valid.
func (s *Store) CreatePerformance(ev domain.Event, spec domain.PerformanceSpec) (*domain.Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return domain.NewPerformance(s.performanceIDs.take(), ev, spec)
}

func (s *Store) CreateBooking(booker *domain.Consumer, p *domain.Performance, tickets int, amount decimal.Decimal, now time.Time) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := domain.NewBooking(s.bookingIDs.take(), booker, p, tickets, amount, now)
	s.bookings = append(s.bookings, b)
	return b
}

func (s *Store) Booking(id int64) (*domain.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

func (s *Store) Bookings() Snapshot[*domain.Booking] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[*domain.Booking](slices.Clone(s.bookings))
}

func (s *Store) BookingsByEvent(eventID int64) Snapshot[*domain.Booking] {
	return s.Bookings().Filter(func(b *domain.Booking) bool {
		return b.Event().Base().ID == eventID
	})
}

func (s *Store) BookingsByConsumer(c *domain.Consumer) Snapshot[*domain.Booking] {
	return s.Bookings().Filter(func(b *domain.Booking) bool {
		return b.Booker == c
	})
}

// CreateSponsorshipRequest opens the single pending request of ev.
func (s *Store) CreateSponsorshipRequest(ev *domain.TicketedEvent) *domain.SponsorshipRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := domain.NewSponsorshipRequest(s.sponsorshipIDs.take(), ev)
	s.sponsorships = append(s.sponsorships, r)
	return r
}

func (s *Store) SponsorshipRequest(id int64) (*domain.SponsorshipRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.sponsorships {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (s *Store) SponsorshipRequests() Snapshot[*domain.SponsorshipRequest] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[*domain.SponsorshipRequest](slices.Clone(s.sponsorships))
}

func (s *Store) PendingSponsorshipRequests() Snapshot[*domain.SponsorshipRequest] {
	return s.SponsorshipRequests().Filter(func(r *domain.SponsorshipRequest) bool {
		return r.IsPending()
	})
}
