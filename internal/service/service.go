package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/domain"
)

// Clock is the agreed-upon time source for rental expiry decisions.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// RealClock returns the wall-clock time source.
func RealClock() Clock { return realClock{} }

// ListingTerms are the owner-set parameters of a new listing. Amounts are
// in the smallest currency unit.
type ListingTerms struct {
	DailyRent       uint64 `json:"daily_rent"`
	Collateral      uint64 `json:"collateral"`
	MinDurationDays uint32 `json:"min_duration_days"`
	MaxDurationDays uint32 `json:"max_duration_days"`
}

type ListingService interface {
	// List deposits the owner's asset into its escrow vault and creates the
	// listing, atomically.
	List(ctx context.Context, owner uuid.UUID, assetID string, terms ListingTerms) (*domain.RentalListing, error)
	// Unlist returns an un-rented asset to its owner and closes the listing.
	Unlist(ctx context.Context, caller uuid.UUID, assetID string) (*domain.RentalListing, error)
	Get(ctx context.Context, assetID string) (*domain.RentalListing, error)
	Browse(ctx context.Context, page, pageSize int32) ([]domain.RentalListing, int32, error)
	ListLendings(ctx context.Context, owner uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error)
	ListRentals(ctx context.Context, renter uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error)
}

type RentalService interface {
	// Rent collects rent plus collateral from the renter, hands the asset
	// over, forwards the rent to the owner, and records the occupancy.
	Rent(ctx context.Context, renter uuid.UUID, assetID string, durationDays uint32) (*domain.RentalListing, error)
	// Return takes the asset back from the current renter and refunds the
	// full collateral. The listing stays active.
	Return(ctx context.Context, caller uuid.UUID, assetID string) (*domain.RentalListing, error)
	// ClaimExpired is the owner's unilateral remedy for non-return: after
	// expiry the owner receives the asset and the forfeited collateral, and
	// the listing closes permanently.
	ClaimExpired(ctx context.Context, caller uuid.UUID, assetID string) (*domain.RentalListing, error)
}

type WalletService interface {
	RegisterAsset(ctx context.Context, caller uuid.UUID, name, symbol, uri string) (*domain.Asset, error)
	GetAsset(ctx context.Context, assetID string) (*domain.Asset, error)
	Deposit(ctx context.Context, caller uuid.UUID, amount uint64) (uint64, error)
	Balance(ctx context.Context, caller uuid.UUID) (uint64, error)
	History(ctx context.Context, caller uuid.UUID, page, pageSize int32) ([]domain.JournalEntry, int32, error)
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.Party, string, error)
	Login(ctx context.Context, email, password string) (*domain.Party, string, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, partyID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, partyID uuid.UUID, notificationID int64) error
}
