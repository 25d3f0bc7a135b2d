package handlers

import (
	"net/http"
	"strings"

	"github.com/a2sh3r/walletd/internal/middleware"
	"github.com/a2sh3r/walletd/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	offset, limit, ok := pageParams(r)
	if !ok {
		http.Error(w, "invalid pagination", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	txs, err := h.journalService.List(r.Context(), models.TransactionFilter{
		UserID: userID,
		Type:   models.TransactionType(strings.ToLower(q.Get("type"))),
		Asset:  strings.ToUpper(q.Get("asset")),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, err, "list transactions")
		return
	}
	if len(txs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	tx, err := h.journalService.Get(r.Context(), userID, middleware.IsAdmin(r.Context()), id)
	if err != nil {
		writeError(w, err, "get transaction")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) TxStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.adminService.TxStatus(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err, "tx status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
