package models

import (
	"time"
)

// BookingStatus defines the possible states of a booking.
type BookingStatus string

const (
	PENDING   BookingStatus = "PENDING"
	UPCOMING  BookingStatus = "UPCOMING"
	CURRENT   BookingStatus = "CURRENT"
	COMPLETED BookingStatus = "COMPLETED"
	CANCELLED BookingStatus = "CANCELLED"
)

// ListingStatus defines the publication states of a listing.
type ListingStatus string

const (
	DRAFT     ListingStatus = "DRAFT"
	PUBLISHED ListingStatus = "PUBLISHED"
	SUSPENDED ListingStatus = "SUSPENDED"
	DELETED   ListingStatus = "DELETED"
)

// EntryDirection defines the direction of a settlement entry.
type EntryDirection string

const (
	GuestDebit  EntryDirection = "GUEST_DEBIT"
	HostCredit  EntryDirection = "HOST_CREDIT"
	GuestCredit EntryDirection = "GUEST_CREDIT"
	HostDebit   EntryDirection = "HOST_DEBIT"
)

// Coordinate is a point on the globe.
type Coordinate struct {
	Latitude  float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude float64 `json:"longitude" dynamodbav:"longitude"`
}

// DateRange is a half-open [CheckIn, CheckOut) stay interval.
// CheckIn must be strictly before CheckOut.
type DateRange struct {
	CheckIn  time.Time `json:"check_in" dynamodbav:"check_in"`
	CheckOut time.Time `json:"check_out" dynamodbav:"check_out"`
}

// Nights returns the number of nights covered by the range.
func (r DateRange) Nights() int64 {
	return int64(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Valid reports whether the range is well-formed.
func (r DateRange) Valid() bool {
	return r.CheckIn.Before(r.CheckOut)
}

// Overlaps reports whether two half-open ranges intersect.
// Back-to-back stays (checkout day == next check-in day) do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Listing represents the subset of a listing this engine reads, plus the
// aggregate counters it maintains. Identity fields are owned by listing
// management and never mutated here.
type Listing struct {
	Id            string        `json:"id" dynamodbav:"id"`
	HostId        string        `json:"host_id" dynamodbav:"host_id"`
	CostPerNight  int64         `json:"cost_per_night" dynamodbav:"cost_per_night"`
	Location      Coordinate    `json:"location" dynamodbav:"location"`
	Status        ListingStatus `json:"status" dynamodbav:"status"`
	BookingNumber int64         `json:"booking_number" dynamodbav:"booking_number"`
	SaleAmount    int64         `json:"sale_amount" dynamodbav:"sale_amount"`
	Version       int64         `json:"version" dynamodbav:"version"`
}

// Booking is the sole source of truth for "this listing is occupied on
// these dates". TotalCost is computed once at creation and never recomputed.
type Booking struct {
	Id        string        `dynamodbav:"id"`
	ListingId string        `dynamodbav:"listing_id"`
	GuestId   string        `dynamodbav:"guest_id"`
	HostId    string        `dynamodbav:"host_id"`
	CheckIn   time.Time     `dynamodbav:"check_in"`
	CheckOut  time.Time     `dynamodbav:"check_out"`
	TotalCost int64         `dynamodbav:"total_cost"`
	Status    BookingStatus `dynamodbav:"status"`
	CreatedAt time.Time     `dynamodbav:"created_at"`
	UpdatedAt time.Time     `dynamodbav:"updated_at"`
}

// Range returns the booking's stay interval.
func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Blocking reports whether the booking makes its dates unavailable.
// Cancelled and completed bookings never block availability.
func (b *Booking) Blocking() bool {
	switch b.Status {
	case PENDING, UPCOMING, CURRENT:
		return true
	default:
		return false
	}
}

// Cancellable reports whether the booking may still transition to CANCELLED.
func (b *Booking) Cancellable() bool {
	return b.Status == PENDING || b.Status == UPCOMING
}

// DerivedStatus returns the status implied by the wall clock for a
// non-cancelled booking.
func (b *Booking) DerivedStatus(now time.Time) BookingStatus {
	switch {
	case now.Before(b.CheckIn):
		return UPCOMING
	case now.Before(b.CheckOut):
		return CURRENT
	default:
		return COMPLETED
	}
}

// Wallet represents a user's balance account. Guests spend from it; hosts
// accrue escrow credits into it. Version backs optimistic locking.
type Wallet struct {
	UserId    string    `json:"user_id" dynamodbav:"user_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Balance   int64     `json:"balance" dynamodbav:"balance"`
	Version   int64     `json:"version" dynamodbav:"version"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// SettlementEntry is a single row in the append-only settlement ledger.
// A booking's net settlement is the signed sum of its entries.
type SettlementEntry struct {
	EntryID   string         `dynamodbav:"entry_id"`
	BookingID string         `dynamodbav:"booking_id"`
	GuestID   string         `dynamodbav:"guest_id"`
	HostID    string         `dynamodbav:"host_id"`
	Amount    int64          `dynamodbav:"amount"`
	Direction EntryDirection `dynamodbav:"direction"`
	CreatedAt time.Time      `dynamodbav:"created_at"`
	GSI1PK    string         `dynamodbav:"gsi1pk"`
}
