package listings

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/staynest/reservation-engine/pkg/api"
	"github.com/staynest/reservation-engine/pkg/handlers"
	"github.com/staynest/reservation-engine/pkg/mapping"
	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/reservation"
	"github.com/staynest/reservation-engine/pkg/storage"
)

const dateLayout = "2006-01-02"

// ListingsHandler holds the dependencies for listing-related handlers:
// availability checks, booked-range calendars and proximity search.
type ListingsHandler struct {
	Coordinator *reservation.Coordinator
	Store       storage.ListingReader
}

// NewListingsHandler creates a new ListingsHandler.
func NewListingsHandler(coordinator *reservation.Coordinator, store storage.ListingReader) *ListingsHandler {
	return &ListingsHandler{Coordinator: coordinator, Store: store}
}

// GetListingById handles the logic for retrieving a listing by its ID.
func (h *ListingsHandler) GetListingById(w http.ResponseWriter, r *http.Request, listingId string) {
	listing, err := h.Store.GetListing(r.Context(), listingId)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiListing(listing))
}

// GetAvailability handles the logic for checking whether a listing is free
// over the half-open range given by the check_in and check_out query params.
func (h *ListingsHandler) GetAvailability(w http.ResponseWriter, r *http.Request, listingId string) {
	rng, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	available, err := h.Coordinator.CheckAvailability(r.Context(), listingId, rng)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	apiRange := mapping.ToApiDateRange(rng)
	handlers.RespondJSON(w, http.StatusOK, api.Availability{
		ListingId: listingId,
		CheckIn:   apiRange.CheckIn,
		CheckOut:  apiRange.CheckOut,
		Available: available,
	})
}

// GetBookedRanges handles the logic for retrieving a listing's occupied ranges.
func (h *ListingsHandler) GetBookedRanges(w http.ResponseWriter, r *http.Request, listingId string) {
	ranges, err := h.Coordinator.BookedRanges(r.Context(), listingId)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	apiRanges := make([]api.DateRange, len(ranges))
	for i, rng := range ranges {
		apiRanges[i] = mapping.ToApiDateRange(rng)
	}

	handlers.RespondJSON(w, http.StatusOK, apiRanges)
}

// SearchNearby handles the logic for finding published listings within
// radius_km of the lat/lon query params, nearest first.
func (h *ListingsHandler) SearchNearby(w http.ResponseWriter, r *http.Request) {
	lat, err := parseFloat(r, "lat")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lon, err := parseFloat(r, "lon")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	radiusKm, err := parseFloat(r, "radius_km")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	matches, err := h.Coordinator.SearchNearby(r.Context(), models.Coordinate{Latitude: lat, Longitude: lon}, radiusKm)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	apiMatches := make([]api.NearbyListing, len(matches))
	for i, match := range matches {
		apiMatches[i] = mapping.ToApiNearbyListing(match)
	}

	handlers.RespondJSON(w, http.StatusOK, apiMatches)
}

func parseRange(r *http.Request) (models.DateRange, error) {
	checkIn, err := time.Parse(dateLayout, r.URL.Query().Get("check_in"))
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid check_in: %v", err)
	}
	checkOut, err := time.Parse(dateLayout, r.URL.Query().Get("check_out"))
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid check_out: %v", err)
	}
	return models.DateRange{CheckIn: checkIn, CheckOut: checkOut}, nil
}

func parseFloat(r *http.Request, name string) (float64, error) {
	value, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return value, nil
}
