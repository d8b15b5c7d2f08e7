package storage

import (
	"context"

	"github.com/staynest/reservation-engine/pkg/models"
)

// ListingReader defines the interface for reading listing data. Listings are
// owned by external listing management; this engine only reads them and
// maintains their aggregate counters through booking writes.
type ListingReader interface {
	// GetListing retrieves a listing by its ID.
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)

	// ListListings retrieves all listings, the candidate set for nearby search.
	ListListings(ctx context.Context) ([]models.Listing, error)
}
