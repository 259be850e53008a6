package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// respondError maps the transition error taxonomy onto HTTP statuses. Every
// error is the definitive outcome of the call; nothing is retried server
// side.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidTerms),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrOverflow),
		errors.Is(err, domain.ErrInvalidAssetKind),
		errors.Is(err, service.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorizedRenter),
		errors.Is(err, domain.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrAssetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrListingNotActive),
		errors.Is(err, domain.ErrAlreadyRented),
		errors.Is(err, domain.ErrNotRented),
		errors.Is(err, domain.ErrRentalNotExpired),
		errors.Is(err, domain.ErrCannotUnlistRented),
		errors.Is(err, domain.ErrListingExists),
		errors.Is(err, domain.ErrAssetExists),
		errors.Is(err, domain.ErrAssetNotHeld),
		errors.Is(err, domain.ErrUnauthorizedTransfer),
		errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		respondJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

type pagedResponse struct {
	Items any   `json:"items"`
	Total int32 `json:"total"`
}

func pageParams(r *http.Request) (int32, int32) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
