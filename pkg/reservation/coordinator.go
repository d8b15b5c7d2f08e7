package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/staynest/reservation-engine/pkg/availability"
	"github.com/staynest/reservation-engine/pkg/geo"
	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/scheduler"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// maxCreateAttempts bounds how often Reserve re-reads availability after
// losing an optimistic version race. Each attempt starts from a fresh read,
// so this never re-submits a write with an unknown outcome.
const maxCreateAttempts = 3

// Coordinator orchestrates reservations: it validates requests, consults
// availability, writes through the booking store and schedules follow-up
// status sweeps. Each reservation attempt moves strictly through
// validation -> availability check -> funded create; any rejection leaves
// prior state unchanged.
type Coordinator struct {
	Store     storage.ApiStore
	Scheduler scheduler.Scheduler
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(store storage.ApiStore, sched scheduler.Scheduler) *Coordinator {
	if sched == nil {
		sched = scheduler.NoOpScheduler{}
	}
	return &Coordinator{Store: store, Scheduler: sched}
}

// Reserve creates a booking for the guest over the given range. The booking
// is returned in status PENDING with its funding already committed: the
// guest debited and the host escrow credited atomically with the insert.
func (c *Coordinator) Reserve(ctx context.Context, listingID, guestID string, rng models.DateRange) (*models.Booking, error) {
	if listingID == "" || guestID == "" {
		return nil, fmt.Errorf("%w: listing and guest IDs are required", storage.ErrInvalidArgument)
	}
	if !rng.Valid() {
		return nil, fmt.Errorf("%w: check-in %s is not before check-out %s",
			storage.ErrInvalidRange, rng.CheckIn.Format("2006-01-02"), rng.CheckOut.Format("2006-01-02"))
	}

	listing, err := c.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.PUBLISHED {
		return nil, fmt.Errorf("listing %s has status %s: %w", listingID, listing.Status, storage.ErrListingNotBookable)
	}

	totalCost := rng.Nights() * listing.CostPerNight

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		bookings, err := c.listListingBookings(ctx, listingID)
		if err != nil {
			return nil, err
		}
		// Fast-path rejection; the store repeats this check authoritatively
		// under the listing's version condition before committing.
		free, err := availability.IsAvailable(listingID, rng, bookings)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, storage.ErrDoubleBooking
		}

		booking := &models.Booking{
			ListingId: listingID,
			GuestId:   guestID,
			CheckIn:   rng.CheckIn,
			CheckOut:  rng.CheckOut,
			TotalCost: totalCost,
		}

		created, err := c.Store.CreateBooking(ctx, booking)
		if err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				// A concurrent booking writer for this listing committed
				// between our read and our write. Nothing was written;
				// re-read availability and try once more.
				lastErr = err
				continue
			}
			return nil, err
		}

		c.scheduleSweeps(ctx, created)
		return created, nil
	}

	return nil, fmt.Errorf("listing %s stayed contended after %d attempts: %w", listingID, maxCreateAttempts, lastErr)
}

// scheduleSweeps enqueues status sweeps around the booking's boundaries.
// Scheduling failures are logged, never surfaced: the periodic sweep covers
// any booking the queue missed.
func (c *Coordinator) scheduleSweeps(ctx context.Context, booking *models.Booking) {
	for _, at := range []time.Time{booking.CheckIn, booking.CheckOut} {
		if err := c.Scheduler.ScheduleStatusSweep(ctx, booking.Id, time.Until(at)); err != nil {
			slog.Log(ctx, slog.LevelError, "booking created but sweep scheduling failed",
				"booking_id", booking.Id, "error", err)
		}
	}
}

// Cancel transitions the booking to CANCELLED and commits the compensating
// refund. Only the booking's guest or an administrative requester may cancel.
func (c *Coordinator) Cancel(ctx context.Context, bookingID, requesterID string, admin bool) (*models.Booking, error) {
	if bookingID == "" || requesterID == "" {
		return nil, fmt.Errorf("%w: booking and requester IDs are required", storage.ErrInvalidArgument)
	}

	booking, err := c.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && booking.GuestId != requesterID {
		return nil, fmt.Errorf("requester %s may not cancel booking %s: %w", requesterID, bookingID, storage.ErrForbidden)
	}

	return c.Store.CancelBooking(ctx, bookingID)
}

// CheckAvailability reports whether the listing is free over the range.
func (c *Coordinator) CheckAvailability(ctx context.Context, listingID string, rng models.DateRange) (bool, error) {
	if !rng.Valid() {
		return false, fmt.Errorf("%w: check-in %s is not before check-out %s",
			storage.ErrInvalidRange, rng.CheckIn.Format("2006-01-02"), rng.CheckOut.Format("2006-01-02"))
	}
	bookings, err := c.listListingBookings(ctx, listingID)
	if err != nil {
		return false, err
	}
	return availability.IsAvailable(listingID, rng, bookings)
}

// BookedRanges returns the listing's occupied ranges for calendar display.
func (c *Coordinator) BookedRanges(ctx context.Context, listingID string) ([]models.DateRange, error) {
	bookings, err := c.listListingBookings(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return availability.BookedRanges(listingID, bookings), nil
}

// SearchNearby ranks published listings within radiusKm of center.
func (c *Coordinator) SearchNearby(ctx context.Context, center models.Coordinate, radiusKm float64) ([]geo.Match, error) {
	if err := geo.Validate(center); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %f", storage.ErrInvalidArgument, radiusKm)
	}

	var listings []models.Listing
	err := c.retryRead(ctx, func() error {
		var err error
		listings, err = c.Store.ListListings(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	candidates := listings[:0:0]
	for _, listing := range listings {
		if listing.Status == models.PUBLISHED {
			candidates = append(candidates, listing)
		}
	}

	return geo.FindNearby(center, radiusKm, candidates)
}

// Tick recomputes the time-derived statuses of all non-terminal bookings.
func (c *Coordinator) Tick(ctx context.Context, now time.Time) (int, error) {
	return c.Store.AdvanceBookingStatuses(ctx, now)
}

func (c *Coordinator) getListing(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing *models.Listing
	err := c.retryRead(ctx, func() error {
		var err error
		listing, err = c.Store.GetListing(ctx, listingID)
		return err
	})
	return listing, err
}

func (c *Coordinator) getBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking *models.Booking
	err := c.retryRead(ctx, func() error {
		var err error
		booking, err = c.Store.GetBooking(ctx, bookingID)
		return err
	})
	return booking, err
}

func (c *Coordinator) listListingBookings(ctx context.Context, listingID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := c.retryRead(ctx, func() error {
		var err error
		bookings, err = c.Store.ListBookingsByListingID(ctx, listingID)
		return err
	})
	return bookings, err
}
