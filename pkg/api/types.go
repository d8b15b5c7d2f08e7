// Package api defines the transport models for the reservation engine's
// HTTP surface. Dates travel as plain YYYY-MM-DD values.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// BookingStatus defines the externally visible states of a booking.
type BookingStatus string

// NewReservation is the request body for creating a reservation.
type NewReservation struct {
	ListingId string             `json:"listing_id"`
	GuestId   string             `json:"guest_id"`
	CheckIn   openapi_types.Date `json:"check_in"`
	CheckOut  openapi_types.Date `json:"check_out"`
}

// Booking is the API representation of a booking.
type Booking struct {
	Id        string             `json:"id"`
	ListingId string             `json:"listing_id"`
	GuestId   string             `json:"guest_id"`
	HostId    string             `json:"host_id"`
	CheckIn   openapi_types.Date `json:"check_in"`
	CheckOut  openapi_types.Date `json:"check_out"`
	TotalCost int64              `json:"total_cost"`
	Status    BookingStatus      `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// DateRange is an occupied half-open [check_in, check_out) interval.
type DateRange struct {
	CheckIn  openapi_types.Date `json:"check_in"`
	CheckOut openapi_types.Date `json:"check_out"`
}

// Availability is the response for an availability check.
type Availability struct {
	ListingId string             `json:"listing_id"`
	CheckIn   openapi_types.Date `json:"check_in"`
	CheckOut  openapi_types.Date `json:"check_out"`
	Available bool               `json:"available"`
}

// Listing is the API representation of a listing.
type Listing struct {
	Id            string  `json:"id"`
	HostId        string  `json:"host_id"`
	CostPerNight  int64   `json:"cost_per_night"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Status        string  `json:"status"`
	BookingNumber int64   `json:"booking_number"`
	SaleAmount    int64   `json:"sale_amount"`
}

// NearbyListing is a search result: a listing and its distance from the
// search center.
type NearbyListing struct {
	Listing    Listing `json:"listing"`
	DistanceKm float64 `json:"distance_km"`
}

// NewWallet is the request body for creating a wallet.
type NewWallet struct {
	UserId string `json:"user_id"`
	Name   string `json:"name"`
}

// Wallet is the API representation of a balance account.
type Wallet struct {
	UserId  string `json:"user_id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
	Version int64  `json:"version"`
}

// AddFunds is the request body for crediting a wallet.
type AddFunds struct {
	Amount int64 `json:"amount"`
}

// SettlementEntry is the API representation of a ledger entry.
type SettlementEntry struct {
	EntryId   string    `json:"entry_id"`
	BookingId string    `json:"booking_id"`
	GuestId   string    `json:"guest_id"`
	HostId    string    `json:"host_id"`
	Amount    int64     `json:"amount"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

// TickRequest optionally overrides the sweep time; zero means now.
type TickRequest struct {
	Now *time.Time `json:"now,omitempty"`
}

// TickResponse reports how many bookings a sweep updated.
type TickResponse struct {
	Updated int `json:"updated"`
}
