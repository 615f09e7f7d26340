package http

import (
	"time"

	"github.com/robertarktes/sponsored-events/internal/domain"
	"github.com/shopspring/decimal"
)

type performanceJSON struct {
	ID               int64     `json:"id"`
	Venue            string    `json:"venue"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Performers       []string  `json:"performers"`
	AirFiltration    bool      `json:"air_filtration"`
	SocialDistancing bool      `json:"social_distancing"`
	Outdoors         bool      `json:"outdoors"`
	CapacityLimit    int       `json:"capacity_limit"`
	VenueSize        int       `json:"venue_size"`
}

type eventJSON struct {
	ID               int64              `json:"id"`
	Title            string             `json:"title"`
	Category         domain.Category    `json:"category"`
	Status           domain.EventStatus `json:"status"`
	OrgName          string             `json:"org_name"`
	Ticketed         bool               `json:"ticketed"`
	Price            *decimal.Decimal   `json:"price,omitempty"`
	DiscountedPrice  *decimal.Decimal   `json:"discounted_price,omitempty"`
	MaxTickets       int                `json:"max_tickets,omitempty"`
	SponsoredPercent int                `json:"sponsored_percent,omitempty"`
	Performances     []performanceJSON  `json:"performances"`
}

type bookingJSON struct {
	ID            int64                `json:"id"`
	EventID       int64                `json:"event_id"`
	EventTitle    string               `json:"event_title"`
	PerformanceID int64                `json:"performance_id"`
	BookerEmail   string               `json:"booker_email"`
	Tickets       int                  `json:"tickets"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	Status        domain.BookingStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

type sponsorshipJSON struct {
	ID         int64                    `json:"id"`
	EventID    int64                    `json:"event_id"`
	EventTitle string                   `json:"event_title"`
	OrgName    string                   `json:"org_name"`
	Price      decimal.Decimal          `json:"price"`
	MaxTickets int                      `json:"max_tickets"`
	Status     domain.SponsorshipStatus `json:"status"`
	Percent    int                      `json:"percent,omitempty"`
}

type consumerJSON struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type userJSON struct {
	Kind  string `json:"kind"`
	Email string `json:"email"`
}

func toPerformance(p *domain.Performance) performanceJSON {
	return performanceJSON{
		ID:               p.ID,
		Venue:            p.Venue,
		Start:            p.Start,
		End:              p.End,
		Performers:       p.Performers,
		AirFiltration:    p.AirFiltration,
		SocialDistancing: p.SocialDistancing,
		Outdoors:         p.Outdoors,
		CapacityLimit:    p.CapacityLimit,
		VenueSize:        p.VenueSize,
	}
}

func toEvent(ev domain.Event) eventJSON {
	b := ev.Base()
	out := eventJSON{
		ID:           b.ID,
		Title:        b.Title,
		Category:     b.Category,
		Status:       b.Status,
		OrgName:      b.Organiser.OrgName,
		Performances: make([]performanceJSON, 0, len(b.Performances)),
	}
	for _, p := range b.Performances {
		out.Performances = append(out.Performances, toPerformance(p))
	}
	if te, ok := ev.(*domain.TicketedEvent); ok {
		price, discounted := te.Price, te.DiscountedPrice()
		out.Ticketed = true
		out.Price = &price
		out.DiscountedPrice = &discounted
		out.MaxTickets = te.MaxTickets
		if te.IsSponsored() {
			out.SponsoredPercent = te.Sponsorship.Percent
		}
	}
	return out
}

func toEvents(events []domain.Event) []eventJSON {
	out := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, toEvent(ev))
	}
	return out
}

func toBooking(b *domain.Booking) bookingJSON {
	ev := b.Event().Base()
	return bookingJSON{
		ID:            b.ID,
		EventID:       ev.ID,
		EventTitle:    ev.Title,
		PerformanceID: b.Performance.ID,
		BookerEmail:   b.Booker.Email,
		Tickets:       b.Tickets,
		AmountPaid:    b.AmountPaid,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
}

func toBookings(bookings []*domain.Booking) []bookingJSON {
	out := make([]bookingJSON, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBooking(b))
	}
	return out
}

func toSponsorships(requests []*domain.SponsorshipRequest) []sponsorshipJSON {
	out := make([]sponsorshipJSON, 0, len(requests))
	for _, r := range requests {
		out = append(out, sponsorshipJSON{
			ID:         r.ID,
			EventID:    r.Event.ID,
			EventTitle: r.Event.Title,
			OrgName:    r.Event.Organiser.OrgName,
			Price:      r.Event.Price,
			MaxTickets: r.Event.MaxTickets,
			Status:     r.Status,
			Percent:    r.Percent,
		})
	}
	return out
}

func toConsumers(consumers []*domain.Consumer) []consumerJSON {
	out := make([]consumerJSON, 0, len(consumers))
	for _, c := range consumers {
		out = append(out, consumerJSON{Name: c.Name, Email: c.Email, Phone: c.Phone})
	}
	return out
}

func toUser(u domain.User) userJSON {
	return userJSON{Kind: domain.Kind(u), Email: u.Acct().Email}
}

type preferencesJSON struct {
	SocialDistancing bool `json:"social_distancing"`
	AirFiltration    bool `json:"air_filtration"`
	OutdoorsOnly     bool `json:"outdoors_only"`
	// Zero limits mean no limit.
	MaxCapacity  int `json:"max_capacity"`
	MaxVenueSize int `json:"max_venue_size"`
}

func (p *preferencesJSON) toDomain() domain.Preferences {
	prefs := domain.DefaultPreferences()
	if p == nil {
		return prefs
	}
	prefs.SocialDistancing = p.SocialDistancing
	prefs.AirFiltration = p.AirFiltration
	prefs.OutdoorsOnly = p.OutdoorsOnly
	if p.MaxCapacity > 0 {
		prefs.MaxCapacity = p.MaxCapacity
	}
	if p.MaxVenueSize > 0 {
		prefs.MaxVenueSize = p.MaxVenueSize
	}
	return prefs
}
