package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/settlement"
	"github.com/staynest/reservation-engine/pkg/storage"
)

func day(d int) time.Time {
	return time.Date(2026, time.November, d, 0, 0, 0, 0, time.UTC)
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := New()
	store.AddListing(models.Listing{
		Id:           "listing-1",
		HostId:       "host-1",
		CostPerNight: 10000,
		Status:       models.PUBLISHED,
	})

	ctx := context.Background()
	_, err := store.CreateWallet(ctx, &models.Wallet{UserId: "guest-1", Balance: 100000, Version: 1})
	assert.NoError(t, err)
	_, err = store.CreateWallet(ctx, &models.Wallet{UserId: "guest-2", Balance: 100000, Version: 1})
	assert.NoError(t, err)
	_, err = store.CreateWallet(ctx, &models.Wallet{UserId: "host-1", Balance: 0, Version: 1})
	assert.NoError(t, err)

	return store
}

func newBooking(guestID string, in, out int) *models.Booking {
	return &models.Booking{
		ListingId: "listing-1",
		GuestId:   guestID,
		CheckIn:   day(in),
		CheckOut:  day(out),
		TotalCost: 30000,
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("Moves Money And Writes Ledger Pair", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		created, err := store.CreateBooking(ctx, newBooking("guest-1", 1, 4))

		assert.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, models.PENDING, created.Status)
		assert.Equal(t, "host-1", created.HostId)

		guest, _ := store.GetWallet(ctx, "guest-1")
		host, _ := store.GetWallet(ctx, "host-1")
		assert.Equal(t, int64(70000), guest.Balance)
		assert.Equal(t, int64(30000), host.Balance)

		listing, _ := store.GetListing(ctx, "listing-1")
		assert.Equal(t, int64(1), listing.BookingNumber)
		assert.Equal(t, int64(30000), listing.SaleAmount)
		assert.Equal(t, int64(2), listing.Version)

		entries, _ := store.ListSettlementEntriesByBookingID(ctx, created.Id)
		assert.Len(t, entries, 2)
		assert.Equal(t, int64(-30000), settlement.NetOf(created.Id, entries))
	})

	t.Run("Rejects Overlap", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		_, err := store.CreateBooking(ctx, newBooking("guest-1", 1, 6))
		assert.NoError(t, err)

		_, err = store.CreateBooking(ctx, newBooking("guest-2", 5, 10))
		assert.True(t, errors.Is(err, storage.ErrDoubleBooking))

		// The loser left no trace.
		guest2, _ := store.GetWallet(ctx, "guest-2")
		assert.Equal(t, int64(100000), guest2.Balance)
		bookings, _ := store.ListBookingsByListingID(ctx, "listing-1")
		assert.Len(t, bookings, 1)
	})

	t.Run("Allows Back To Back", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		_, err := store.CreateBooking(ctx, newBooking("guest-1", 1, 6))
		assert.NoError(t, err)

		_, err = store.CreateBooking(ctx, newBooking("guest-2", 6, 9))
		assert.NoError(t, err)
	})

	t.Run("Insufficient Funds Leaves No Trace", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		booking := newBooking("guest-1", 1, 4)
		booking.TotalCost = 200000

		_, err := store.CreateBooking(ctx, booking)

		assert.True(t, errors.Is(err, storage.ErrInsufficientFunds))
		guest, _ := store.GetWallet(ctx, "guest-1")
		assert.Equal(t, int64(100000), guest.Balance)
		entries, _ := store.ListSettlementEntries(ctx, 10)
		assert.Empty(t, entries)
	})

	t.Run("Cancelled Booking Frees The Dates", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		first, err := store.CreateBooking(ctx, newBooking("guest-1", 1, 6))
		assert.NoError(t, err)
		_, err = store.CancelBooking(ctx, first.Id)
		assert.NoError(t, err)

		_, err = store.CreateBooking(ctx, newBooking("guest-2", 1, 6))
		assert.NoError(t, err)
	})
}

func TestCancelBooking(t *testing.T) {
	t.Run("Refund Restores Balances", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		created, err := store.CreateBooking(ctx, newBooking("guest-1", 1, 4))
		assert.NoError(t, err)

		cancelled, err := store.CancelBooking(ctx, created.Id)

		assert.NoError(t, err)
		assert.Equal(t, models.CANCELLED, cancelled.Status)

		guest, _ := store.GetWallet(ctx, "guest-1")
		host, _ := store.GetWallet(ctx, "host-1")
		assert.Equal(t, int64(100000), guest.Balance)
		assert.Equal(t, int64(0), host.Balance)

		listing, _ := store.GetListing(ctx, "listing-1")
		assert.Equal(t, int64(0), listing.SaleAmount)

		entries, _ := store.ListSettlementEntriesByBookingID(ctx, created.Id)
		assert.Len(t, entries, 4)
		assert.Equal(t, int64(0), settlement.NetOf(created.Id, entries))
	})

	t.Run("Second Cancel Is Rejected", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		created, err := store.CreateBooking(ctx, newBooking("guest-1", 1, 4))
		assert.NoError(t, err)

		_, err = store.CancelBooking(ctx, created.Id)
		assert.NoError(t, err)

		_, err = store.CancelBooking(ctx, created.Id)
		assert.True(t, errors.Is(err, storage.ErrAlreadySettled))

		// No double refund.
		guest, _ := store.GetWallet(ctx, "guest-1")
		assert.Equal(t, int64(100000), guest.Balance)
		entries, _ := store.ListSettlementEntriesByBookingID(ctx, created.Id)
		assert.Len(t, entries, 4)
	})

	t.Run("Current Stay Not Cancellable", func(t *testing.T) {
		store := seededStore(t)
		ctx := context.Background()

		created, err := store.CreateBooking(ctx, newBooking("guest-1", 1, 4))
		assert.NoError(t, err)

		// The stay starts: PENDING -> CURRENT.
		_, err = store.AdvanceBookingStatus(ctx, created.Id, day(2))
		assert.NoError(t, err)

		_, err = store.CancelBooking(ctx, created.Id)
		assert.True(t, errors.Is(err, storage.ErrInvalidTransition))
	})

	t.Run("Not Found", func(t *testing.T) {
		store := seededStore(t)
		_, err := store.CancelBooking(context.Background(), "missing")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func TestAdvanceBookingStatuses(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	created, err := store.CreateBooking(ctx, newBooking("guest-1", 5, 8))
	assert.NoError(t, err)

	// Before check-in: PENDING -> UPCOMING.
	updated, err := store.AdvanceBookingStatuses(ctx, day(1))
	assert.NoError(t, err)
	assert.Equal(t, 1, updated)
	booking, _ := store.GetBooking(ctx, created.Id)
	assert.Equal(t, models.UPCOMING, booking.Status)

	// During the stay: UPCOMING -> CURRENT.
	updated, err = store.AdvanceBookingStatuses(ctx, day(6))
	assert.NoError(t, err)
	assert.Equal(t, 1, updated)
	booking, _ = store.GetBooking(ctx, created.Id)
	assert.Equal(t, models.CURRENT, booking.Status)

	// After checkout: CURRENT -> COMPLETED, then idempotent.
	updated, err = store.AdvanceBookingStatuses(ctx, day(9))
	assert.NoError(t, err)
	assert.Equal(t, 1, updated)
	updated, err = store.AdvanceBookingStatuses(ctx, day(9))
	assert.NoError(t, err)
	assert.Equal(t, 0, updated)
}

// TestConcurrentCreateBooking drives many goroutines at the same dates and
// asserts exactly one wins.
func TestConcurrentCreateBooking(t *testing.T) {
	store := New()
	store.AddListing(models.Listing{
		Id:           "listing-1",
		HostId:       "host-1",
		CostPerNight: 100,
		Status:       models.PUBLISHED,
	})
	ctx := context.Background()
	_, err := store.CreateWallet(ctx, &models.Wallet{UserId: "host-1", Version: 1})
	assert.NoError(t, err)

	const writers = 32
	for i := 0; i < writers; i++ {
		guestID := string(rune('a' + i%26))
		_, _ = store.CreateWallet(ctx, &models.Wallet{UserId: guestID, Balance: 10000, Version: 1})
	}

	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			booking := &models.Booking{
				ListingId: "listing-1",
				GuestId:   string(rune('a' + i%26)),
				CheckIn:   day(1),
				CheckOut:  day(4),
				TotalCost: 300,
			}
			_, err := store.CreateBooking(ctx, booking)
			results <- err
		}(i)
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

	bookings, err := store.ListBookingsByListingID(ctx, "listing-1")
	assert.NoError(t, err)
	assert.Len(t, bookings, 1)

	// The host was credited exactly once.
	host, err := store.GetWallet(ctx, "host-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(300), host.Balance)
}
