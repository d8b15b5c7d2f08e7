package storage

import (
	"context"
	"time"

	"github.com/staynest/reservation-engine/pkg/models"
)

// BookingReader defines the interface for reading booking data.
type BookingReader interface {
	// GetBooking retrieves a booking by its ID.
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)

	// ListBookingsByListingID retrieves all bookings for a listing. This is
	// the authoritative read used for availability checks.
	ListBookingsByListingID(ctx context.Context, listingID string) ([]models.Booking, error)

	// ListBookingsByGuestID retrieves all bookings made by a guest.
	ListBookingsByGuestID(ctx context.Context, guestID string) ([]models.Booking, error)
}

// BookingWriter defines the interface for the invariant-carrying booking
// writes. Implementations must guarantee per-listing exclusivity for
// CreateBooking and per-booking exclusivity for CancelBooking: a losing
// concurrent writer fails atomically with nothing written.
type BookingWriter interface {
	// CreateBooking inserts the booking and commits its funding entries
	// (guest debit, host credit, listing counters) as one atomic unit.
	// It fails with ErrInsufficientFunds, ErrVersionConflict, or a wrapped
	// transport error; on any failure no write is observable.
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)

	// CancelBooking transitions the booking to CANCELLED and commits its
	// refund entries as one atomic unit. It fails with ErrInvalidTransition
	// if the booking is no longer cancellable and ErrAlreadySettled if
	// refund entries already exist.
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)

	// AdvanceBookingStatuses recomputes UPCOMING/CURRENT/COMPLETED for all
	// non-cancelled bookings from now. Idempotent; returns the number of
	// bookings updated.
	AdvanceBookingStatuses(ctx context.Context, now time.Time) (int, error)

	// AdvanceBookingStatus advances a single booking, used by the scheduled
	// per-booking sweep. Returns true iff a transition was applied.
	AdvanceBookingStatus(ctx context.Context, bookingID string, now time.Time) (bool, error)
}

// BookingStore combines the reader and writer interfaces.
type BookingStore interface {
	BookingReader
	BookingWriter
}
