package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryMusic   Category = "music"
	CategoryTheatre Category = "theatre"
	CategoryDance   Category = "dance"
	CategoryMovie   Category = "movie"
	CategorySports  Category = "sports"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMusic, CategoryTheatre, CategoryDance, CategoryMovie, CategorySports:
		return true
	}
	return false
}

type EventStatus string

const (
	EventActive    EventStatus = "ACTIVE"
	EventCancelled EventStatus = "CANCELLED"
)

// Event is either *NonTicketedEvent or *TicketedEvent.
type Event interface {
	Base() *EventBase
	isEvent()
}

type EventBase struct {
	ID           int64
	Organiser    *Organiser
	Title        string
	Category     Category
	Status       EventStatus
	Performances []*Performance
}

func (e *EventBase) Base() *EventBase { return e }

func (e *EventBase) IsActive() bool { return e.Status == EventActive }

func (e *EventBase) IsOrganisedBy(u User) bool {
	o, ok := u.(*Organiser)
	return ok && o == e.Organiser
}

// Performance returns the performance with the given id, or false.
func (e *EventBase) Performance(id int64) (*Performance, bool) {
	for _, p := range e.Performances {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// HasStartedPerformance reports whether any performance started before now.
// An active event in that state is frozen.
func (e *EventBase) HasStartedPerformance(now time.Time) bool {
	for _, p := range e.Performances {
		if p.HasStarted(now) {
			return true
		}
	}
	return false
}

// HasFuturePerformance reports whether some performance starts after now.
func (e *EventBase) HasFuturePerformance(now time.Time) bool {
	for _, p := range e.Performances {
		if p.Start.After(now) {
			return true
		}
	}
	return false
}

// Cancel moves an Active event to Cancelled. Cancelled is terminal.
func (e *EventBase) Cancel() error {
	if e.Status != EventActive {
		return ErrEventNotActive
	}
	e.Status = EventCancelled
	return nil
}

func (e *EventBase) addPerformance(p *Performance) {
	e.Performances = append(e.Performances, p)
}

type NonTicketedEvent struct {
	EventBase
}

type TicketedEvent struct {
	EventBase
	Price       decimal.Decimal
	MaxTickets  int
	Sponsorship *SponsorshipRequest
}

func (*NonTicketedEvent) isEvent() {}
func (*TicketedEvent) isEvent()    {}

func NewNonTicketedEvent(id int64, organiser *Organiser, title string, category Category) *NonTicketedEvent {
	return &NonTicketedEvent{EventBase: EventBase{
		ID:        id,
		Organiser: organiser,
		Title:     title,
		Category:  category,
		Status:    EventActive,
	}}
}

func NewTicketedEvent(id int64, organiser *Organiser, title string, category Category, price decimal.Decimal, maxTickets int) *TicketedEvent {
	return &TicketedEvent{
		EventBase: EventBase{
			ID:        id,
			Organiser: organiser,
			Title:     title,
			Category:  category,
			Status:    EventActive,
		},
		Price:      price,
		MaxTickets: maxTickets,
	}
}

func (e *TicketedEvent) IsSponsored() bool {
	return e.Sponsorship != nil && e.Sponsorship.Status == SponsorshipAccepted
}

// DiscountedPrice is the per-ticket price a consumer pays.
func (e *TicketedEvent) DiscountedPrice() decimal.Decimal {
	if !e.IsSponsored() {
		return e.Price
	}
	keep := decimal.NewFromInt(int64(100 - e.Sponsorship.Percent))
	return e.Price.Mul(keep).Div(decimal.NewFromInt(100))
}

// SponsorshipAmount is what the sponsor paid for the whole ticket allowance:
// (price - discounted price) * MaxTickets. Zero when not sponsored.
func (e *TicketedEvent) SponsorshipAmount() decimal.Decimal {
	if !e.IsSponsored() {
		return decimal.Zero
	}
	return e.Price.Sub(e.DiscountedPrice()).Mul(decimal.NewFromInt(int64(e.MaxTickets)))
}

// SponsorAccount is the payment account the accepted sponsorship came from.
func (e *TicketedEvent) SponsorAccount() string {
	if !e.IsSponsored() {
		return ""
	}
	return e.Sponsorship.SponsorAccount
}

// TicketPrice returns the per-ticket price of a ticketed event.
func TicketPrice(e Event) (decimal.Decimal, bool) {
	switch ev := e.(type) {
	case *TicketedEvent:
		return ev.DiscountedPrice(), true
	case *NonTicketedEvent:
		return decimal.Zero, false
	default:
		return decimal.Zero, false
	}
}
