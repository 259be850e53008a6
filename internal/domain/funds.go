package domain

import (
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
)

// Account is one currency balance bucket, addressed by custody address.
// Party accounts and per-listing funds vaults share this table.
type Account struct {
	Address   custody.Address `json:"address"`
	Balance   uint64          `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// JournalEntry is one immutable funds movement. Every transfer and deposit
// appends exactly one entry.
type JournalEntry struct {
	ID        uuid.UUID       `json:"id"`
	From      *custody.Address `json:"from,omitempty"` // nil for deposits
	To        custody.Address `json:"to"`
	Amount    uint64          `json:"amount"`
	Memo      string          `json:"memo"`
	CreatedAt time.Time       `json:"created_at"`
}
