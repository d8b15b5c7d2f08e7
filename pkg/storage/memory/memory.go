package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fmt"

	"github.com/google/uuid"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/settlement"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// Store is an in-process implementation of the storage interfaces, used for
// local development and tests. It provides the same exclusivity contract as
// the DynamoDB store through a lock per listing held across the
// availability check and the insert, so a pure read-then-write race cannot
// double-book.
type Store struct {
	mu       sync.RWMutex
	listings map[string]*models.Listing
	bookings map[string]*models.Booking
	wallets  map[string]*models.Wallet
	entries  []models.SettlementEntry

	lockMu       sync.Mutex
	listingLocks map[string]*sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		listings:     make(map[string]*models.Listing),
		bookings:     make(map[string]*models.Booking),
		wallets:      make(map[string]*models.Wallet),
		listingLocks: make(map[string]*sync.Mutex),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// listingLock returns the mutex serializing all booking writes for a listing.
func (s *Store) listingLock(listingID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.listingLocks[listingID]
	if !ok {
		lock = &sync.Mutex{}
		s.listingLocks[listingID] = lock
	}
	return lock
}

// AddListing seeds a listing. Listings are owned by external listing
// management; this exists for dev mode and tests only.
func (s *Store) AddListing(listing models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.Version == 0 {
		listing.Version = 1
	}
	s.listings[listing.Id] = &listing
}

// CreateBooking checks availability and inserts the booking with its funding
// entries under the listing lock. On overlap it fails with ErrDoubleBooking
// and performs no write.
func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	lock := s.listingLock(booking.ListingId)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[booking.ListingId]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", booking.ListingId, storage.ErrNotFound)
	}
	guestWallet, ok := s.wallets[booking.GuestId]
	if !ok {
		return nil, fmt.Errorf("wallet for user ID %s: %w", booking.GuestId, storage.ErrNotFound)
	}
	hostWallet, ok := s.wallets[listing.HostId]
	if !ok {
		return nil, fmt.Errorf("wallet for user ID %s: %w", listing.HostId, storage.ErrNotFound)
	}

	// Authoritative overlap check under the listing lock.
	rng := booking.Range()
	for _, existing := range s.bookings {
		if existing.ListingId != booking.ListingId || !existing.Blocking() {
			continue
		}
		if rng.Overlaps(existing.Range()) {
			return nil, storage.ErrDoubleBooking
		}
	}

	if guestWallet.Balance < booking.TotalCost {
		return nil, storage.ErrInsufficientFunds
	}

	now := time.Now()
	booking.Id = uuid.New().String()
	booking.HostId = listing.HostId
	booking.Status = models.PENDING
	booking.CreatedAt = now
	booking.UpdatedAt = now

	guestWallet.Balance -= booking.TotalCost
	guestWallet.Version++
	hostWallet.Balance += booking.TotalCost
	hostWallet.Version++
	listing.Version++
	listing.BookingNumber++
	listing.SaleAmount += booking.TotalCost

	entries := settlement.FundingEntries(booking, now)
	s.entries = append(s.entries, entries[0], entries[1])

	stored := *booking
	s.bookings[booking.Id] = &stored
	return booking, nil
}

// CancelBooking transitions the booking to CANCELLED and appends the refund
// pair under the listing lock. The entry IDs are deterministic, so a second
// cancellation fails with ErrAlreadySettled before touching balances.
func (s *Store) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	s.mu.RLock()
	existing, ok := s.bookings[bookingID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", bookingID, storage.ErrNotFound)
	}

	lock := s.listingLock(existing.ListingId)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	booking := s.bookings[bookingID]
	if booking.Status == models.CANCELLED {
		return nil, storage.ErrAlreadySettled
	}
	if !booking.Cancellable() {
		return nil, storage.ErrInvalidTransition
	}

	refundID := settlement.EntryID(booking.Id, models.GuestCredit)
	for i := range s.entries {
		if s.entries[i].EntryID == refundID {
			return nil, storage.ErrAlreadySettled
		}
	}

	guestWallet := s.wallets[booking.GuestId]
	hostWallet := s.wallets[booking.HostId]
	listing := s.listings[booking.ListingId]
	if guestWallet == nil || hostWallet == nil || listing == nil {
		return nil, fmt.Errorf("booking %s references missing records: %w", bookingID, storage.ErrNotFound)
	}

	now := time.Now()
	booking.Status = models.CANCELLED
	booking.UpdatedAt = now

	guestWallet.Balance += booking.TotalCost
	guestWallet.Version++
	hostWallet.Balance -= booking.TotalCost
	hostWallet.Version++
	listing.Version++
	listing.SaleAmount -= booking.TotalCost

	entries := settlement.RefundEntries(booking, now)
	s.entries = append(s.entries, entries[0], entries[1])

	result := *booking
	return &result, nil
}

// AdvanceBookingStatuses recomputes time-derived statuses for all
// non-terminal bookings. Idempotent.
func (s *Store) AdvanceBookingStatuses(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, booking := range s.bookings {
		if booking.Status == models.CANCELLED || booking.Status == models.COMPLETED {
			continue
		}
		desired := booking.DerivedStatus(now)
		if desired != booking.Status {
			booking.Status = desired
			booking.UpdatedAt = now
			updated++
		}
	}
	return updated, nil
}

// AdvanceBookingStatus advances a single booking.
func (s *Store) AdvanceBookingStatus(ctx context.Context, bookingID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return false, fmt.Errorf("booking %s: %w", bookingID, storage.ErrNotFound)
	}
	if booking.Status == models.CANCELLED || booking.Status == models.COMPLETED {
		return false, nil
	}
	desired := booking.DerivedStatus(now)
	if desired == booking.Status {
		return false, nil
	}
	booking.Status = desired
	booking.UpdatedAt = now
	return true, nil
}

// GetBooking retrieves a booking by its ID.
func (s *Store) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", bookingID, storage.ErrNotFound)
	}
	result := *booking
	return &result, nil
}

// ListBookingsByListingID retrieves all bookings for a listing.
func (s *Store) ListBookingsByListingID(ctx context.Context, listingID string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, booking := range s.bookings {
		if booking.ListingId == listingID {
			bookings = append(bookings, *booking)
		}
	}
	sortBookings(bookings)
	return bookings, nil
}

// ListBookingsByGuestID retrieves all bookings made by a guest.
func (s *Store) ListBookingsByGuestID(ctx context.Context, guestID string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, booking := range s.bookings {
		if booking.GuestId == guestID {
			bookings = append(bookings, *booking)
		}
	}
	sortBookings(bookings)
	return bookings, nil
}

func sortBookings(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CheckIn.Equal(bookings[j].CheckIn) {
			return bookings[i].CheckIn.Before(bookings[j].CheckIn)
		}
		return bookings[i].Id < bookings[j].Id
	})
}

// GetListing retrieves a listing by its ID.
func (s *Store) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", listingID, storage.ErrNotFound)
	}
	result := *listing
	return &result, nil
}

// ListListings retrieves all listings.
func (s *Store) ListListings(ctx context.Context) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]models.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		listings = append(listings, *listing)
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Id < listings[j].Id })
	return listings, nil
}

// GetWallet retrieves a user's wallet.
func (s *Store) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallet, ok := s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, storage.ErrNotFound)
	}
	result := *wallet
	return &result, nil
}

// CreateWallet creates a new wallet.
func (s *Store) CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[wallet.UserId]; exists {
		return nil, fmt.Errorf("wallet for user ID %s: %w", wallet.UserId, storage.ErrAlreadyExists)
	}
	stored := *wallet
	s.wallets[wallet.UserId] = &stored
	return wallet, nil
}

// AddFunds credits amount to a user's wallet.
func (s *Store) AddFunds(ctx context.Context, userID string, amount int64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", storage.ErrInvalidArgument, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, storage.ErrNotFound)
	}
	wallet.Balance += amount
	wallet.Version++
	result := *wallet
	return &result, nil
}

// ListWallets retrieves all wallets.
func (s *Store) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := make([]models.Wallet, 0, len(s.wallets))
	for _, wallet := range s.wallets {
		wallets = append(wallets, *wallet)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].UserId < wallets[j].UserId })
	return wallets, nil
}

// ListSettlementEntries retrieves the most recent settlement entries.
func (s *Store) ListSettlementEntries(ctx context.Context, limit int32) ([]models.SettlementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.SettlementEntry, len(s.entries))
	copy(entries, s.entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if limit > 0 && int(limit) < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// ListSettlementEntriesByBookingID retrieves all entries for a booking.
func (s *Store) ListSettlementEntriesByBookingID(ctx context.Context, bookingID string) ([]models.SettlementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []models.SettlementEntry
	for _, entry := range s.entries {
		if entry.BookingID == bookingID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
