package mapping

import (
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/staynest/reservation-engine/pkg/api"
	"github.com/staynest/reservation-engine/pkg/geo"
	"github.com/staynest/reservation-engine/pkg/models"
)

// ToApiBooking converts a domain Booking model to an API Booking model.
func ToApiBooking(booking *models.Booking) *api.Booking {
	return &api.Booking{
		Id:        booking.Id,
		ListingId: booking.ListingId,
		GuestId:   booking.GuestId,
		HostId:    booking.HostId,
		CheckIn:   openapi_types.Date{Time: booking.CheckIn},
		CheckOut:  openapi_types.Date{Time: booking.CheckOut},
		TotalCost: booking.TotalCost,
		Status:    api.BookingStatus(booking.Status),
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}
}

// ToDomainDateRange converts an API NewReservation's dates to a domain range.
func ToDomainDateRange(newReservation *api.NewReservation) models.DateRange {
	return models.DateRange{
		CheckIn:  newReservation.CheckIn.Time,
		CheckOut: newReservation.CheckOut.Time,
	}
}

// ToApiDateRange converts a domain DateRange to an API DateRange.
func ToApiDateRange(rng models.DateRange) api.DateRange {
	return api.DateRange{
		CheckIn:  openapi_types.Date{Time: rng.CheckIn},
		CheckOut: openapi_types.Date{Time: rng.CheckOut},
	}
}

// ToApiListing converts a domain Listing model to an API Listing model.
func ToApiListing(listing *models.Listing) *api.Listing {
	return &api.Listing{
		Id:            listing.Id,
		HostId:        listing.HostId,
		CostPerNight:  listing.CostPerNight,
		Latitude:      listing.Location.Latitude,
		Longitude:     listing.Location.Longitude,
		Status:        string(listing.Status),
		BookingNumber: listing.BookingNumber,
		SaleAmount:    listing.SaleAmount,
	}
}

// ToApiNearbyListing converts a geo search match to an API NearbyListing.
func ToApiNearbyListing(match geo.Match) api.NearbyListing {
	return api.NearbyListing{
		Listing:    *ToApiListing(&match.Listing),
		DistanceKm: match.DistanceKm,
	}
}

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(wallet *models.Wallet) *api.Wallet {
	return &api.Wallet{
		UserId:  wallet.UserId,
		Name:    wallet.Name,
		Balance: wallet.Balance,
		Version: wallet.Version,
	}
}

// StartingBalance is the credit every new wallet opens with.
const StartingBalance = 1000

// ToDomainNewWallet converts an API NewWallet model to a domain Wallet model.
func ToDomainNewWallet(newWallet *api.NewWallet) *models.Wallet {
	return &models.Wallet{
		UserId:  newWallet.UserId,
		Name:    newWallet.Name,
		Balance: StartingBalance,
		Version: 1,
	}
}

// ToApiSettlementEntry converts a domain SettlementEntry to its API model.
func ToApiSettlementEntry(entry *models.SettlementEntry) *api.SettlementEntry {
	return &api.SettlementEntry{
		EntryId:   entry.EntryID,
		BookingId: entry.BookingID,
		GuestId:   entry.GuestID,
		HostId:    entry.HostID,
		Amount:    entry.Amount,
		Direction: string(entry.Direction),
		CreatedAt: entry.CreatedAt,
	}
}
