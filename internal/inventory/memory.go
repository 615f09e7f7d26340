package inventory

import (
	"context"
	"sync"
	"time"
)

type memoryEvent struct {
	max       int
	left      int
	cancelled bool
	percent   int
}

type memoryBooking struct {
	eventID int64
	tickets int
}

// Memory is an in-process System. Tickets form one pool per event shared by
// all of its performances.
type Memory struct {
	mu           sync.Mutex
	orgName      string
	orgAddress   string
	events       map[int64]*memoryEvent
	performances map[int64]int64
	bookings     map[int64]memoryBooking
}

func NewMemory(orgName, orgAddress string) *Memory {
	return &Memory{
		orgName:      orgName,
		orgAddress:   orgAddress,
		events:       make(map[int64]*memoryEvent),
		performances: make(map[int64]int64),
		bookings:     make(map[int64]memoryBooking),
	}
}

func (m *Memory) RecordNewEvent(_ context.Context, eventID int64, _ string, maxTickets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if maxTickets < 0 {
		maxTickets = 0
	}
	m.events[eventID] = &memoryEvent{max: maxTickets, left: maxTickets}
}

func (m *Memory) RecordNewPerformance(_ context.Context, eventID, performanceID int64, _, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.performances[performanceID] = eventID
}

func (m *Memory) RecordNewBooking(_ context.Context, eventID, _, bookingID int64, _, _ string, tickets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok || ev.cancelled {
		return
	}
	if tickets > ev.left {
		tickets = ev.left
	}
	ev.left -= tickets
	m.bookings[bookingID] = memoryBooking{eventID: eventID, tickets: tickets}
}

func (m *Memory) CancelBooking(_ context.Context, bookingID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return
	}
	delete(m.bookings, bookingID)
	ev, ok := m.events[b.eventID]
	if !ok || ev.cancelled {
		return
	}
	ev.left += b.tickets
	if ev.left > ev.max {
		ev.left = ev.max
	}
}

func (m *Memory) CancelEvent(_ context.Context, eventID int64, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		return
	}
	ev.cancelled = true
	ev.left = 0
	for id, b := range m.bookings {
		if b.eventID == eventID {
			delete(m.bookings, id)
		}
	}
	for id, evID := range m.performances {
		if evID == eventID {
			delete(m.performances, id)
		}
	}
}

func (m *Memory) RecordSponsorshipAcceptance(_ context.Context, eventID int64, percent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.events[eventID]; ok {
		ev.percent = percent
	}
}

func (m *Memory) RecordSponsorshipRejection(_ context.Context, eventID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.events[eventID]; ok {
		ev.percent = 0
	}
}

func (m *Memory) NumTicketsLeft(_ context.Context, eventID, _ int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		return 0
	}
	return ev.left
}

// SponsoredPercent reports the last sponsorship decision recorded for eventID.
func (m *Memory) SponsoredPercent(eventID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.events[eventID]; ok {
		return ev.percent
	}
	return 0
}
