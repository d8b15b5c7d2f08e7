package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/settlement"
	"github.com/staynest/reservation-engine/pkg/storage"
	"github.com/staynest/reservation-engine/pkg/storage/memory"
)

// TestReservationLifecycle runs the whole flow against the in-memory store:
// book, fail an overlapping booking, cancel with a symmetric refund, rebook.
func TestReservationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	coordinator := NewCoordinator(store, nil)

	store.AddListing(models.Listing{
		Id:           "loft",
		HostId:       "host-1",
		CostPerNight: 100,
		Location:     models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		Status:       models.PUBLISHED,
	})
	_, err := store.CreateWallet(ctx, &models.Wallet{UserId: "guest-1", Balance: 1000, Version: 1})
	assert.NoError(t, err)
	_, err = store.CreateWallet(ctx, &models.Wallet{UserId: "guest-2", Balance: 1000, Version: 1})
	assert.NoError(t, err)
	_, err = store.CreateWallet(ctx, &models.Wallet{UserId: "host-1", Balance: 0, Version: 1})
	assert.NoError(t, err)

	stay := models.DateRange{CheckIn: day(10), CheckOut: day(13)}

	// Book three nights at 100 per night.
	booking, err := coordinator.Reserve(ctx, "loft", "guest-1", stay)
	assert.NoError(t, err)
	assert.Equal(t, int64(300), booking.TotalCost)

	guest, _ := store.GetWallet(ctx, "guest-1")
	host, _ := store.GetWallet(ctx, "host-1")
	assert.Equal(t, int64(700), guest.Balance)
	assert.Equal(t, int64(300), host.Balance)

	// A second guest cannot take an overlapping range.
	_, err = coordinator.Reserve(ctx, "loft", "guest-2",
		models.DateRange{CheckIn: day(12), CheckOut: day(15)})
	assert.True(t, errors.Is(err, storage.ErrDoubleBooking))

	// Availability reflects the booking.
	free, err := coordinator.CheckAvailability(ctx, "loft", stay)
	assert.NoError(t, err)
	assert.False(t, free)

	ranges, err := coordinator.BookedRanges(ctx, "loft")
	assert.NoError(t, err)
	assert.Equal(t, []models.DateRange{stay}, ranges)

	// Only the guest may cancel.
	_, err = coordinator.Cancel(ctx, booking.Id, "guest-2", false)
	assert.True(t, errors.Is(err, storage.ErrForbidden))

	cancelled, err := coordinator.Cancel(ctx, booking.Id, "guest-1", false)
	assert.NoError(t, err)
	assert.Equal(t, models.CANCELLED, cancelled.Status)

	// Refund restored both balances and the ledger nets to zero.
	guest, _ = store.GetWallet(ctx, "guest-1")
	host, _ = store.GetWallet(ctx, "host-1")
	assert.Equal(t, int64(1000), guest.Balance)
	assert.Equal(t, int64(0), host.Balance)

	entries, err := store.ListSettlementEntriesByBookingID(ctx, booking.Id)
	assert.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, int64(0), settlement.NetOf(booking.Id, entries))

	// Cancelling again cannot double refund.
	_, err = coordinator.Cancel(ctx, booking.Id, "guest-1", false)
	assert.True(t, errors.Is(err, storage.ErrAlreadySettled))

	// The dates are free again and the second guest can now book them.
	rebooked, err := coordinator.Reserve(ctx, "loft", "guest-2", stay)
	assert.NoError(t, err)
	assert.Equal(t, int64(300), rebooked.TotalCost)

	// The nearby search surfaces the listing.
	matches, err := coordinator.SearchNearby(ctx, models.Coordinate{Latitude: 40.73, Longitude: -73.99}, 25)
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, "loft", matches[0].Listing.Id)
}

// TestConcurrentReserve hammers one range through the coordinator and the
// in-memory store; exactly one request may win.
func TestConcurrentReserve(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	coordinator := NewCoordinator(store, nil)

	store.AddListing(models.Listing{
		Id:           "loft",
		HostId:       "host-1",
		CostPerNight: 100,
		Status:       models.PUBLISHED,
	})
	_, err := store.CreateWallet(ctx, &models.Wallet{UserId: "host-1", Version: 1})
	assert.NoError(t, err)

	const requests = 16
	guests := make([]string, requests)
	for i := range guests {
		guests[i] = string(rune('a' + i))
		_, err := store.CreateWallet(ctx, &models.Wallet{UserId: guests[i], Balance: 1000, Version: 1})
		assert.NoError(t, err)
	}

	stay := models.DateRange{CheckIn: day(10), CheckOut: day(13)}

	var wg sync.WaitGroup
	results := make(chan error, requests)
	for _, guest := range guests {
		wg.Add(1)
		go func(guest string) {
			defer wg.Done()
			_, err := coordinator.Reserve(ctx, "loft", guest, stay)
			results <- err
		}(guest)
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.True(t, errors.Is(err, storage.ErrDoubleBooking))
		}
	}
	assert.Equal(t, 1, winners)

	host, err := store.GetWallet(ctx, "host-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(300), host.Balance)
}
