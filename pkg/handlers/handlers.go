// Package handlers provides shared response plumbing for the HTTP handler
// packages: JSON encoding and the mapping from storage errors to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/staynest/reservation-engine/pkg/storage"
)

// StatusForError maps a storage error to the HTTP status the API reports.
// Unrecognized errors map to 500.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrInvalidRange), errors.Is(err, storage.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, storage.ErrDoubleBooking),
		errors.Is(err, storage.ErrInvalidTransition),
		errors.Is(err, storage.ErrAlreadySettled),
		errors.Is(err, storage.ErrListingNotBookable),
		errors.Is(err, storage.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with its mapped status code. Server-side failures are
// logged and reported without the underlying detail.
func Error(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
