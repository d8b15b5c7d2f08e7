package reservations

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/staynest/reservation-engine/pkg/api"
	"github.com/staynest/reservation-engine/pkg/handlers"
	"github.com/staynest/reservation-engine/pkg/mapping"
	"github.com/staynest/reservation-engine/pkg/reservation"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// Requester identity headers. Authentication happens upstream; these carry
// the already-authenticated identity into the service.
const (
	HeaderRequesterID = "X-Requester-Id"
	HeaderAdmin       = "X-Admin"
)

// ReservationsHandler holds the dependencies for reservation-related handlers.
type ReservationsHandler struct {
	Coordinator *reservation.Coordinator
	Store       storage.BookingReader
}

// NewReservationsHandler creates a new ReservationsHandler.
func NewReservationsHandler(coordinator *reservation.Coordinator, store storage.BookingReader) *ReservationsHandler {
	return &ReservationsHandler{Coordinator: coordinator, Store: store}
}

// CreateReservation handles the logic for booking a listing.
func (h *ReservationsHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var newReservation api.NewReservation
	if err := json.NewDecoder(r.Body).Decode(&newReservation); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	rng := mapping.ToDomainDateRange(&newReservation)
	created, err := h.Coordinator.Reserve(r.Context(), newReservation.ListingId, newReservation.GuestId, rng)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, mapping.ToApiBooking(created))
}

// GetReservationById handles the logic for retrieving a booking by its ID.
func (h *ReservationsHandler) GetReservationById(w http.ResponseWriter, r *http.Request, bookingId string) {
	booking, err := h.Store.GetBooking(r.Context(), bookingId)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiBooking(booking))
}

// CancelReservationById handles the logic for cancelling a booking. The
// requester's identity comes from the X-Requester-Id header; X-Admin marks an
// administrative override that skips the ownership check.
func (h *ReservationsHandler) CancelReservationById(w http.ResponseWriter, r *http.Request, bookingId string) {
	requesterID := r.Header.Get(HeaderRequesterID)
	admin := r.Header.Get(HeaderAdmin) == "true"

	cancelled, err := h.Coordinator.Cancel(r.Context(), bookingId, requesterID, admin)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiBooking(cancelled))
}

// ListReservationsByGuestId handles the logic for retrieving a guest's bookings.
func (h *ReservationsHandler) ListReservationsByGuestId(w http.ResponseWriter, r *http.Request, guestId string) {
	bookings, err := h.Store.ListBookingsByGuestID(r.Context(), guestId)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	apiBookings := make([]*api.Booking, len(bookings))
	for i, booking := range bookings {
		apiBookings[i] = mapping.ToApiBooking(&booking)
	}

	handlers.RespondJSON(w, http.StatusOK, apiBookings)
}

// Tick handles the logic for an on-demand status sweep over all live bookings.
func (h *ReservationsHandler) Tick(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if r.Body != nil && r.ContentLength != 0 {
		var req api.TickRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}
		if req.Now != nil {
			now = *req.Now
		}
	}

	updated, err := h.Coordinator.Tick(r.Context(), now)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, api.TickResponse{Updated: updated})
}
