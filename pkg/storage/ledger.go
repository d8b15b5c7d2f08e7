package storage

import (
	"context"

	"github.com/staynest/reservation-engine/pkg/models"
)

// LedgerReader defines the interface for reading the settlement ledger.
// The ledger is append-only; entries are written exclusively by booking
// creation and cancellation, never through this interface.
type LedgerReader interface {
	// ListSettlementEntries retrieves the most recent settlement entries.
	ListSettlementEntries(ctx context.Context, limit int32) ([]models.SettlementEntry, error)

	// ListSettlementEntriesByBookingID retrieves all entries for a booking.
	ListSettlementEntriesByBookingID(ctx context.Context, bookingID string) ([]models.SettlementEntry, error)
}
