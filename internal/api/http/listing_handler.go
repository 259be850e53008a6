package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nft-rental-backend/internal/service"
)

type ListingHandler struct {
	listingSvc service.ListingService
}

func NewListingHandler(listingSvc service.ListingService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc}
}

type createListingRequest struct {
	AssetID string `json:"asset_id"`
	service.ListingTerms
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.AssetID == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "asset_id is required"})
		return
	}

	listing, err := h.listingSvc.List(r.Context(), caller, req.AssetID, req.ListingTerms)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["assetID"]
	listing, err := h.listingSvc.Get(r.Context(), assetID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) Browse(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	listings, total, err := h.listingSvc.Browse(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: listings, Total: total})
}

func (h *ListingHandler) Unlist(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	listing, err := h.listingSvc.Unlist(r.Context(), caller, mux.Vars(r)["assetID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) ListLendings(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	page, pageSize := pageParams(r)
	listings, total, err := h.listingSvc.ListLendings(r.Context(), caller, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: listings, Total: total})
}

func (h *ListingHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	caller, ok := partyFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	page, pageSize := pageParams(r)
	listings, total, err := h.listingSvc.ListRentals(r.Context(), caller, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Items: listings, Total: total})
}
