package domain

import (
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
)

// Party is an authenticated marketplace participant. Its custody address is
// derived from its ID at signup and never changes.
type Party struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Address      custody.Address `json:"address"`
	CreatedOn    time.Time       `json:"created_on"`
}
