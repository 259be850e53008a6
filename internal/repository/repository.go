package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the same repository
// code runs standalone or inside a transition's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.RentalListing) error
	GetByAsset(ctx context.Context, assetID string) (*domain.RentalListing, error)
	// GetByAssetForUpdate locks the listing row for the remainder of the
	// surrounding transaction, serializing concurrent transitions that
	// target the same listing.
	GetByAssetForUpdate(ctx context.Context, assetID string) (*domain.RentalListing, error)
	Update(ctx context.Context, listing *domain.RentalListing) error
	ListAvailable(ctx context.Context, page, pageSize int32) ([]domain.RentalListing, int32, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error)
	ListByRenter(ctx context.Context, renter uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error)
	// ListEndingBetween returns rented listings whose end time falls in
	// (from, to]. Used by the reminder jobs only; it moves nothing.
	ListEndingBetween(ctx context.Context, from, to time.Time) ([]domain.RentalListing, error)
}

// AssetRepository is the asset-transfer primitive plus the asset registry.
type AssetRepository interface {
	Register(ctx context.Context, asset *domain.Asset) error
	Get(ctx context.Context, assetID string) (*domain.Asset, error)
	// Transfer moves the single unit of the asset from one custody account
	// to another. It fails if from does not hold the unit or if auth does
	// not control from.
	Transfer(ctx context.Context, assetID string, from, to custody.Address, auth custody.Authority) error
}

// FundsRepository is the currency-transfer primitive plus its journal.
type FundsRepository interface {
	EnsureAccount(ctx context.Context, addr custody.Address) error
	Balance(ctx context.Context, addr custody.Address) (uint64, error)
	Deposit(ctx context.Context, to custody.Address, amount uint64, memo string) error
	// Transfer debits from and credits to within the surrounding
	// transaction. It fails on insufficient balance or if auth does not
	// control from.
	Transfer(ctx context.Context, from, to custody.Address, amount uint64, auth custody.Authority, memo string) error
	History(ctx context.Context, addr custody.Address, page, pageSize int32) ([]domain.JournalEntry, int32, error)
}

type PartyRepository interface {
	Create(ctx context.Context, party *domain.Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error)
	GetByEmail(ctx context.Context, email string) (*domain.Party, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, partyID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int64, partyID uuid.UUID) error
}

// Store bundles the repositories and provides the single transactional
// boundary every lifecycle transition runs inside.
type Store interface {
	Listings() ListingRepository
	Assets() AssetRepository
	Funds() FundsRepository
	Parties() PartyRepository
	Notifications() NotificationRepository
	// WithinTx runs fn against a transaction-scoped Store. Every repository
	// call made through that Store commits or rolls back as one unit; no
	// intermediate state is observable outside the transaction.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
