// Package inventory defines the organiser-side ticket inventory collaborator.
//
// The engine notifies a System after every committed transition that changes
// ticket availability or sponsorship, and re-reads NumTicketsLeft whenever it
// needs an availability answer. Notifications are fire-and-forget: an
// implementation that talks to a remote service logs its own failures.
package inventory

import (
	"context"
	"time"
)

type System interface {
	RecordNewEvent(ctx context.Context, eventID int64, title string, maxTickets int)
	RecordNewPerformance(ctx context.Context, eventID, performanceID int64, start, end time.Time)
	RecordNewBooking(ctx context.Context, eventID, performanceID, bookingID int64, bookerName, bookerEmail string, tickets int)
	CancelBooking(ctx context.Context, bookingID int64)
	CancelEvent(ctx context.Context, eventID int64, message string)
	RecordSponsorshipAcceptance(ctx context.Context, eventID int64, percent int)
	RecordSponsorshipRejection(ctx context.Context, eventID int64)
	NumTicketsLeft(ctx context.Context, eventID, performanceID int64) int
}

// Factory builds the System owned by one organiser.
type Factory func(orgName, orgAddress string) System

// MemoryFactory returns a Factory producing independent Memory systems.
func MemoryFactory() Factory {
	return func(orgName, orgAddress string) System {
		return NewMemory(orgName, orgAddress)
	}
}
