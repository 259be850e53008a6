package domain

import "errors"

// Terminal errors for the rental state machine. Every transition checks its
// preconditions before any side effect; the first violation aborts the call
// with one of these and no partial state.
var (
	ErrInvalidTerms       = errors.New("invalid listing terms")
	ErrListingNotActive   = errors.New("listing is not active")
	ErrAlreadyRented      = errors.New("asset is already rented")
	ErrInvalidDuration    = errors.New("invalid rental duration")
	ErrOverflow           = errors.New("arithmetic overflow")
	ErrNotRented          = errors.New("asset is not currently rented")
	ErrUnauthorizedRenter = errors.New("unauthorized renter")
	ErrRentalNotExpired   = errors.New("rental period has not expired yet")
	ErrCannotUnlistRented = errors.New("cannot unlist an asset that is currently rented")

	ErrListingNotFound = errors.New("listing not found")
	ErrListingExists   = errors.New("asset is already listed")
	ErrNotOwner        = errors.New("caller is not the listing owner")

	// Custody primitive failures, surfaced verbatim to callers.
	ErrAssetNotFound        = errors.New("asset not found")
	ErrAssetExists          = errors.New("asset is already registered")
	ErrAssetNotHeld         = errors.New("source account does not hold the asset")
	ErrUnauthorizedTransfer = errors.New("authority does not control source account")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAssetKind     = errors.New("asset is not a unique asset")
)
