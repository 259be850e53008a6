package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nft-rental-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type rentRequest struct {
	DurationDays uint32 `json:"duration_days"`
}

func (h *RentalHandler) Rent(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req rentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	listing, err := h.rentalSvc.Rent(r.Context(), caller, mux.Vars(r)["assetID"], req.DurationDays)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	listing, err := h.rentalSvc.Return(r.Context(), caller, mux.Vars(r)["assetID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *RentalHandler) ClaimExpired(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	listing, err := h.rentalSvc.ClaimExpired(r.Context(), caller, mux.Vars(r)["assetID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}
