package ledger

import (
	"net/http"
	"strconv"

	"github.com/staynest/reservation-engine/pkg/api"
	"github.com/staynest/reservation-engine/pkg/handlers"
	"github.com/staynest/reservation-engine/pkg/mapping"
	"github.com/staynest/reservation-engine/pkg/storage"
)

const defaultLimit = 20

// LedgerHandler holds the dependencies for settlement-ledger handlers.
type LedgerHandler struct {
	Store storage.LedgerReader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(store storage.LedgerReader) *LedgerHandler {
	return &LedgerHandler{Store: store}
}

// ListSettlementEntries handles the logic for retrieving recent ledger
// entries, newest first. The limit query param caps the page size.
func (h *LedgerHandler) ListSettlementEntries(w http.ResponseWriter, r *http.Request) {
	limit := int32(defaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = int32(parsed)
	}

	domainEntries, err := h.Store.ListSettlementEntries(r.Context(), limit)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	apiEntries := make([]*api.SettlementEntry, len(domainEntries))
	for i, entry := range domainEntries {
		apiEntries[i] = mapping.ToApiSettlementEntry(&entry)
	}

	handlers.RespondJSON(w, http.StatusOK, apiEntries)
}

// ListSettlementEntriesByBookingId handles the logic for retrieving the
// ledger entries attached to one booking.
func (h *LedgerHandler) ListSettlementEntriesByBookingId(w http.ResponseWriter, r *http.Request, bookingId string) {
	domainEntries, err := h.Store.ListSettlementEntriesByBookingID(r.Context(), bookingId)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	apiEntries := make([]*api.SettlementEntry, len(domainEntries))
	for i, entry := range domainEntries {
		apiEntries[i] = mapping.ToApiSettlementEntry(&entry)
	}

	handlers.RespondJSON(w, http.StatusOK, apiEntries)
}
