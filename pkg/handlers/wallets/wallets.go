package wallets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/staynest/reservation-engine/pkg/api"
	"github.com/staynest/reservation-engine/pkg/handlers"
	"github.com/staynest/reservation-engine/pkg/mapping"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Store storage.WalletStore
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(store storage.WalletStore) *WalletsHandler {
	return &WalletsHandler{Store: store}
}

// CreateWallet handles the logic for creating a new wallet.
func (h *WalletsHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var newWallet api.NewWallet
	if err := json.NewDecoder(r.Body).Decode(&newWallet); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if newWallet.UserId == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	domainWallet := mapping.ToDomainNewWallet(&newWallet)
	domainWallet.CreatedAt = time.Now()

	createdWallet, err := h.Store.CreateWallet(r.Context(), domainWallet)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, mapping.ToApiWallet(createdWallet))
}

// GetWalletByUserId handles the logic for retrieving a user's wallet.
func (h *WalletsHandler) GetWalletByUserId(w http.ResponseWriter, r *http.Request, userId string) {
	domainWallet, err := h.Store.GetWallet(r.Context(), userId)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiWallet(domainWallet))
}

// ListWallets handles the logic for retrieving all wallets.
func (h *WalletsHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	domainWallets, err := h.Store.ListWallets(r.Context())
	if err != nil {
		handlers.Error(w, err)
		return
	}

	// Newest wallets first.
	sort.Slice(domainWallets, func(i, j int) bool {
		return domainWallets[i].CreatedAt.After(domainWallets[j].CreatedAt)
	})

	apiWallets := make([]*api.Wallet, len(domainWallets))
	for i, wallet := range domainWallets {
		apiWallets[i] = mapping.ToApiWallet(&wallet)
	}

	handlers.RespondJSON(w, http.StatusOK, apiWallets)
}

// AddFunds handles the logic for crediting a user's wallet.
func (h *WalletsHandler) AddFunds(w http.ResponseWriter, r *http.Request, userId string) {
	var req api.AddFunds
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	updatedWallet, err := h.Store.AddFunds(r.Context(), userId, req.Amount)
	if err != nil {
		handlers.Error(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiWallet(updatedWallet))
}
