package storage

import "errors"

// ErrInvalidRange is returned when a date range has check-in on or after check-out.
var ErrInvalidRange = errors.New("invalid date range")

// ErrInvalidArgument is returned for malformed inputs such as out-of-bounds coordinates.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrDoubleBooking is returned when a booking would overlap an existing blocking booking.
// This is an expected contention outcome, not a bug; callers may retry with different dates.
var ErrDoubleBooking = errors.New("dates overlap an existing booking")

// ErrInsufficientFunds is returned when the guest's balance cannot cover the total cost.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNotFound is returned when a booking, listing or wallet does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when creating a record whose ID is taken.
var ErrAlreadyExists = errors.New("already exists")

// ErrForbidden is returned when the requester may not act on the booking.
var ErrForbidden = errors.New("requester not permitted")

// ErrInvalidTransition is returned when a booking cannot be cancelled from its current status.
var ErrInvalidTransition = errors.New("booking not in a cancellable state")

// ErrAlreadySettled is returned when refund entries already exist for a booking.
// Benign on retried cancellations; it guarantees no double refund.
var ErrAlreadySettled = errors.New("booking already settled")

// ErrListingNotBookable is returned when the listing is not in PUBLISHED status.
var ErrListingNotBookable = errors.New("listing not bookable")

// ErrVersionConflict is returned when an optimistic version check lost a race.
// Nothing was written; the caller may re-read state and try again.
var ErrVersionConflict = errors.New("concurrent write conflict")
