package domain

import "github.com/shopspring/decimal"

type SponsorshipStatus string

const (
	SponsorshipPending  SponsorshipStatus = "PENDING"
	SponsorshipAccepted SponsorshipStatus = "ACCEPTED"
	SponsorshipRejected SponsorshipStatus = "REJECTED"
)

type SponsorshipRequest struct {
	ID             int64
	Event          *TicketedEvent
	Status         SponsorshipStatus
	Percent        int
	SponsorAccount string
}

// NewSponsorshipRequest creates a pending request and links it to event.
func NewSponsorshipRequest(id int64, event *TicketedEvent) *SponsorshipRequest {
	r := &SponsorshipRequest{ID: id, Event: event, Status: SponsorshipPending}
	event.Sponsorship = r
	return r
}

func (r *SponsorshipRequest) IsPending() bool { return r.Status == SponsorshipPending }

// Payment is what a sponsor pays to subsidise percent of every ticket.
func (r *SponsorshipRequest) Payment(percent int) decimal.Decimal {
	return r.Event.Price.
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(int64(r.Event.MaxTickets)))
}

func (r *SponsorshipRequest) Accept(percent int, sponsorAccount string) error {
	if !r.IsPending() {
		return ErrSponsorshipNotPending
	}
	if percent < 1 || percent > 100 {
		return ErrInvalidPercentage
	}
	r.Percent = percent
	r.SponsorAccount = sponsorAccount
	r.Status = SponsorshipAccepted
	return nil
}

func (r *SponsorshipRequest) Reject() error {
	if !r.IsPending() {
		return ErrSponsorshipNotPending
	}
	r.Status = SponsorshipRejected
	return nil
}
