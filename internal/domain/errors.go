package domain

import "github.com/cockroachdb/errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrSerializationFailure = errors.New("serialization failure")

	ErrEventNotActive        = errors.New("event not active")
	ErrBookingNotActive      = errors.New("booking not active")
	ErrCancellationWindow    = errors.New("cancellation window closed")
	ErrSponsorshipNotPending = errors.New("sponsorship request not pending")
	ErrInvalidPercentage     = errors.New("invalid sponsorship percentage")
	ErrStartAfterEnd         = errors.New("performance starts after it ends")
	ErrInvalidCapacity       = errors.New("capacity limit must be at least 1")
	ErrInvalidVenueSize      = errors.New("venue size must be at least 1")
)
