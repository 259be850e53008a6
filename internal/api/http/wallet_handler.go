package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nft-rental-backend/internal/service"
)

type WalletHandler struct {
	walletSvc service.WalletService
	noteSvc   service.NotificationService
}

func NewWalletHandler(walletSvc service.WalletService, noteSvc service.NotificationService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, noteSvc: noteSvc}
}

type registerAssetRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

func (h *WalletHandler) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req registerAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	asset, err := h.walletSvc.RegisterAsset(r.Context(), caller, req.Name, req.Symbol, req.URI)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

func (h *WalletHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.walletSvc.GetAsset(r.Context(), mux.Vars(r)["assetID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

type depositRequest struct {
	Amount uint64 `json:"amount"`
}

type balanceResponse struct {
	Balance uint64 `json:"balance"`
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	balance, err := h.walletSvc.Deposit(r.Context(), caller, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	balance, err := h.walletSvc.Balance(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	page, pageSize := pageParams(r)
	entries, total, err := h.walletSvc.History(r.Context(), caller, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: entries, Total: total})
}

func (h *WalletHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	page, pageSize := pageParams(r)
	notes, total, err := h.noteSvc.GetNotifications(r.Context(), caller, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: notes, Total: total})
}

func (h *WalletHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid notification id"})
		return
	}

	if err := h.noteSvc.MarkAsRead(r.Context(), caller, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
