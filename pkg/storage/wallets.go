package storage

import (
	"context"

	"github.com/staynest/reservation-engine/pkg/models"
)

// WalletStore defines the interface for managing balance accounts.
type WalletStore interface {
	// GetWallet retrieves a user's wallet by their user ID.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// CreateWallet creates a new wallet for a user.
	CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)

	// AddFunds credits amount to a user's wallet and returns the updated wallet.
	AddFunds(ctx context.Context, userID string, amount int64) (*models.Wallet, error)

	// ListWallets retrieves all wallets from the storage.
	ListWallets(ctx context.Context) ([]models.Wallet, error)
}
