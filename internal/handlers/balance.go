package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/a2sh3r/walletd/internal/middleware"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/a2sh3r/walletd/internal/service"
)

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if asset := r.URL.Query().Get("asset"); asset != "" {
		balance, err := h.ledgerService.GetBalance(r.Context(), userID, asset)
		if err != nil {
			writeError(w, err, "get balance")
			return
		}
		writeJSON(w, http.StatusOK, balance.View())
		return
	}

	balances, err := h.ledgerService.ListBalances(r.Context(), userID)
	if err != nil {
		writeError(w, err, "list balances")
		return
	}

	views := make([]models.BalanceView, 0, len(balances))
	for _, b := range balances {
		views = append(views, b.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req service.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	req.SenderID = userID

	record, err := h.transferService.Transfer(r.Context(), req)
	if err != nil {
		writeError(w, err, "transfer")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type addressValidation struct {
	Address string `json:"address"`
	Valid   bool   `json:"valid"`
}

func (h *Handler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "address is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, addressValidation{
		Address: address,
		Valid:   h.adminService.IsValidAddress(address),
	})
}
