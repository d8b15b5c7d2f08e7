package availability

import (
	"fmt"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// IsAvailable reports whether the listing is free over the requested range.
// A booking blocks the range iff it is PENDING, UPCOMING or CURRENT for the
// same listing and its half-open interval intersects the requested one.
// Cancelled and completed bookings never block availability.
func IsAvailable(listingID string, rng models.DateRange, bookings []models.Booking) (bool, error) {
	if !rng.Valid() {
		return false, fmt.Errorf("%w: check-in %s is not before check-out %s",
			storage.ErrInvalidRange, rng.CheckIn.Format("2006-01-02"), rng.CheckOut.Format("2006-01-02"))
	}

	for i := range bookings {
		b := &bookings[i]
		if b.ListingId != listingID || !b.Blocking() {
			continue
		}
		if rng.Overlaps(b.Range()) {
			return false, nil
		}
	}
	return true, nil
}

// BookedRanges returns the date ranges of all non-cancelled bookings for the
// listing, for calendar display. Read-only; no side effects.
func BookedRanges(listingID string, bookings []models.Booking) []models.DateRange {
	var ranges []models.DateRange
	for i := range bookings {
		b := &bookings[i]
		if b.ListingId != listingID || b.Status == models.CANCELLED {
			continue
		}
		ranges = append(ranges, b.Range())
	}
	return ranges
}
