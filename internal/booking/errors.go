package booking

import "errors"

// Business-rule violations surfaced synchronously to the caller. These are
// terminal: the presentation layer translates them, nothing retries them.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventInactive      = errors.New("event is not open for booking")
	ErrInvalidTicketCount = errors.New("ticket count must be at least 1")
	ErrCapacityExceeded   = errors.New("not enough available spots for this event")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrUnauthorized       = errors.New("not authorized for this booking")
)

// ErrEventBusy is transient lock contention, not a business rejection. The
// service retries acquisition internally; callers seeing it may retry.
var ErrEventBusy = errors.New("event is being booked by another request, try again")
