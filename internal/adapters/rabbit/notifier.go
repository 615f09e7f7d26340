package rabbit

import (
	"context"
	"time"

	"github.com/robertarktes/sponsored-events/internal/inventory"
	"github.com/robertarktes/sponsored-events/internal/observability"
)

// Routing keys of inventory notifications.
const (
	KeyEventCreated        = "inventory.event.created"
	KeyPerformanceAdded    = "inventory.performance.added"
	KeyBookingCreated      = "inventory.booking.created"
	KeyBookingCancelled    = "inventory.booking.cancelled"
	KeyEventCancelled      = "inventory.event.cancelled"
	KeySponsorshipAccepted = "inventory.sponsorship.accepted"
	KeySponsorshipRejected = "inventory.sponsorship.rejected"
)

// InventoryMessage is the body of every inventory notification.
type InventoryMessage struct {
	OrgName       string     `json:"org_name"`
	OrgAddress    string     `json:"org_address"`
	EventID       int64      `json:"event_id,omitempty"`
	PerformanceID int64      `json:"performance_id,omitempty"`
	BookingID     int64      `json:"booking_id,omitempty"`
	Title         string     `json:"title,omitempty"`
	MaxTickets    int        `json:"max_tickets,omitempty"`
	Tickets       int        `json:"tickets,omitempty"`
	BookerName    string     `json:"booker_name,omitempty"`
	BookerEmail   string     `json:"booker_email,omitempty"`
	Percent       int        `json:"percent,omitempty"`
	Message       string     `json:"message,omitempty"`
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
}

type jsonPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Notifier decorates an inventory.System so that every transition is also
// published to the broker. Reads go straight to the wrapped system.
type Notifier struct {
	next       inventory.System
	pub        jsonPublisher
	logger     observability.Logger
	orgName    string
	orgAddress string
}

// NotifyingFactory wraps every System built by next in a Notifier.
func NotifyingFactory(next inventory.Factory, pub jsonPublisher, logger observability.Logger) inventory.Factory {
	return func(orgName, orgAddress string) inventory.System {
		return &Notifier{
			next:       next(orgName, orgAddress),
			pub:        pub,
			logger:     logger.WithField("org_name", orgName),
			orgName:    orgName,
			orgAddress: orgAddress,
		}
	}
}

func (n *Notifier) publish(ctx context.Context, key string, msg InventoryMessage) {
	msg.OrgName = n.orgName
	msg.OrgAddress = n.orgAddress
	if err := n.pub.PublishJSON(ctx, key, msg); err != nil {
		n.logger.WithField("key", key).Warn("inventory notification not published: ", err)
	}
}

func (n *Notifier) RecordNewEvent(ctx context.Context, eventID int64, title string, maxTickets int) {
	n.next.RecordNewEvent(ctx, eventID, title, maxTickets)
	n.publish(ctx, KeyEventCreated, InventoryMessage{EventID: eventID, Title: title, MaxTickets: maxTickets})
}

func (n *Notifier) RecordNewPerformance(ctx context.Context, eventID, performanceID int64, start, end time.Time) {
	n.next.RecordNewPerformance(ctx, eventID, performanceID, start, end)
	n.publish(ctx, KeyPerformanceAdded, InventoryMessage{EventID: eventID, PerformanceID: performanceID, Start: &start, End: &end})
}

func (n *Notifier) RecordNewBooking(ctx context.Context, eventID, performanceID, bookingID int64, bookerName, bookerEmail string, tickets int) {
	n.next.RecordNewBooking(ctx, eventID, performanceID, bookingID, bookerName, bookerEmail, tickets)
	n.publish(ctx, KeyBookingCreated, InventoryMessage{
		EventID:       eventID,
		PerformanceID: performanceID,
		BookingID:     bookingID,
		BookerName:    bookerName,
		BookerEmail:   bookerEmail,
		Tickets:       tickets,
	})
}

func (n *Notifier) CancelBooking(ctx context.Context, bookingID int64) {
	n.next.CancelBooking(ctx, bookingID)
	n.publish(ctx, KeyBookingCancelled, InventoryMessage{BookingID: bookingID})
}

func (n *Notifier) CancelEvent(ctx context.Context, eventID int64, message string) {
	n.next.CancelEvent(ctx, eventID, message)
	n.publish(ctx, KeyEventCancelled, InventoryMessage{EventID: eventID, Message: message})
}

func (n *Notifier) RecordSponsorshipAcceptance(ctx context.Context, eventID int64, percent int) {
	n.next.RecordSponsorshipAcceptance(ctx, eventID, percent)
	n.publish(ctx, KeySponsorshipAccepted, InventoryMessage{EventID: eventID, Percent: percent})
}

func (n *Notifier) RecordSponsorshipRejection(ctx context.Context, eventID int64) {
	n.next.RecordSponsorshipRejection(ctx, eventID)
	n.publish(ctx, KeySponsorshipRejected, InventoryMessage{EventID: eventID})
}

func (n *Notifier) NumTicketsLeft(ctx context.Context, eventID, performanceID int64) int {
	return n.next.NumTicketsLeft(ctx, eventID, performanceID)
}
