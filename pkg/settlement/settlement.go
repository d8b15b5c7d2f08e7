package settlement

import (
	"fmt"
	"time"

	"github.com/staynest/reservation-engine/pkg/models"
)

// ledgerPartition is the fixed partition key for the ledger listing GSI.
const ledgerPartition = "SETTLEMENT_ENTRIES"

// EntryID returns the deterministic ID for a booking's entry in a given
// direction. This is the idempotency key: a booking can carry at most one
// entry per direction, so replayed funding or refund writes collide instead
// of duplicating money movements.
func EntryID(bookingID string, direction models.EntryDirection) string {
	return fmt.Sprintf("%s#%s", bookingID, direction)
}

// FundingEntries builds the entry pair committed when a booking is funded:
// one GUEST_DEBIT and one HOST_CREDIT of equal magnitude.
func FundingEntries(booking *models.Booking, now time.Time) [2]models.SettlementEntry {
	return [2]models.SettlementEntry{
		newEntry(booking, models.GuestDebit, now),
		newEntry(booking, models.HostCredit, now),
	}
}

// RefundEntries builds the compensating pair committed when a funded booking
// is cancelled: one GUEST_CREDIT and one HOST_DEBIT mirroring the funding.
func RefundEntries(booking *models.Booking, now time.Time) [2]models.SettlementEntry {
	return [2]models.SettlementEntry{
		newEntry(booking, models.GuestCredit, now),
		newEntry(booking, models.HostDebit, now),
	}
}

func newEntry(booking *models.Booking, direction models.EntryDirection, now time.Time) models.SettlementEntry {
	return models.SettlementEntry{
		EntryID:   EntryID(booking.Id, direction),
		BookingID: booking.Id,
		GuestID:   booking.GuestId,
		HostID:    booking.HostId,
		Amount:    booking.TotalCost,
		Direction: direction,
		CreatedAt: now,
		GSI1PK:    ledgerPartition,
	}
}

// Delta returns the signed effect of the entry on the given user's balance.
// Entries for other users contribute zero.
func Delta(entry *models.SettlementEntry, userID string) int64 {
	switch entry.Direction {
	case models.GuestDebit:
		if entry.GuestID == userID {
			return -entry.Amount
		}
	case models.GuestCredit:
		if entry.GuestID == userID {
			return entry.Amount
		}
	case models.HostCredit:
		if entry.HostID == userID {
			return entry.Amount
		}
	case models.HostDebit:
		if entry.HostID == userID {
			return -entry.Amount
		}
	}
	return 0
}

// BalanceOf folds the signed sum of all entries touching the given user.
func BalanceOf(userID string, entries []models.SettlementEntry) int64 {
	var total int64
	for i := range entries {
		total += Delta(&entries[i], userID)
	}
	return total
}

// NetOf folds the net settlement of a booking from the guest's perspective.
// A funded booking nets -TotalCost; a funded-then-refunded booking nets zero.
func NetOf(bookingID string, entries []models.SettlementEntry) int64 {
	var total int64
	for i := range entries {
		e := &entries[i]
		if e.BookingID != bookingID {
			continue
		}
		total += Delta(e, e.GuestID)
	}
	return total
}
