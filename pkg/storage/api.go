package storage

// ApiStore defines the complete set of operations needed by the API and the
// reservation coordinator. It composes other interfaces to provide a clear
// boundary for data access.
type ApiStore interface {
	BookingStore
	WalletStore
	LedgerReader
	ListingReader
}
