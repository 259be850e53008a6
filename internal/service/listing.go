package service

import (
	"context"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
)

type listingService struct {
	store   repository.Store
	keyring *custody.Keyring
	clock   Clock
}

func NewListingService(store repository.Store, keyring *custody.Keyring, clock Clock) ListingService {
	return &listingService{store: store, keyring: keyring, clock: clock}
}

func validateTerms(terms ListingTerms) error {
	if terms.DailyRent == 0 {
		return domain.ErrInvalidTerms
	}
	if terms.MinDurationDays == 0 || terms.MinDurationDays > terms.MaxDurationDays {
		return domain.ErrInvalidTerms
	}
	return nil
}

func (s *listingService) List(ctx context.Context, owner uuid.UUID, assetID string, terms ListingTerms) (*domain.RentalListing, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	var out *domain.RentalListing
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		// Metadata is validated here, once; transitions after creation
		// trust it.
		asset, err := tx.Assets().Get(ctx, assetID)
		if err != nil {
			return err
		}
		if asset.Kind != domain.AssetKindUnique {
			return domain.ErrInvalidAssetKind
		}

		l := &domain.RentalListing{
			AssetID:         assetID,
			Owner:           owner,
			DailyRent:       terms.DailyRent,
			Collateral:      terms.Collateral,
			MinDurationDays: terms.MinDurationDays,
			MaxDurationDays: terms.MaxDurationDays,
			IsActive:        true,
			Occupancy:       domain.Vacant(),
			CreatedAt:       s.clock.Now(),
		}
		if err := tx.Listings().Create(ctx, l); err != nil {
			return err
		}

		// The deposit rides the same transaction as the record: if it
		// fails, no listing is created.
		ownerAddr := s.keyring.PartyAddressFor(owner)
		assetVault := s.keyring.AssetVaultFor(assetID)
		err = tx.Assets().Transfer(ctx, assetID, ownerAddr, assetVault,
			s.keyring.AuthorityFor(ownerAddr))
		if err != nil {
			return err
		}

		// The funds vault account exists from day one, mirroring the asset
		// vault.
		if err := tx.Funds().EnsureAccount(ctx, s.keyring.FundsVaultFor(assetID)); err != nil {
			return err
		}

		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Asset listed", "asset_id", assetID, "owner", owner,
		"daily_rent", terms.DailyRent, "collateral", terms.Collateral)
	return out, nil
}

func (s *listingService) Unlist(ctx context.Context, caller uuid.UUID, assetID string) (*domain.RentalListing, error) {
	var out *domain.RentalListing
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		l, err := tx.Listings().GetByAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if l.Owner != caller {
			return domain.ErrNotOwner
		}
		if !l.IsActive {
			return domain.ErrListingNotActive
		}
		// An owner can never pull an asset that is out on rent, no matter
		// how late it is; claim-expired is the remedy for that.
		if l.Occupancy.Rented() {
			return domain.ErrCannotUnlistRented
		}

		assetVault := s.keyring.AssetVaultFor(assetID)
		ownerAddr := s.keyring.PartyAddressFor(l.Owner)
		err = tx.Assets().Transfer(ctx, assetID, assetVault, ownerAddr,
			s.keyring.AuthorityFor(assetVault))
		if err != nil {
			return err
		}

		l.IsActive = false
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Asset unlisted", "asset_id", assetID, "owner", caller)
	return out, nil
}

func (s *listingService) Get(ctx context.Context, assetID string) (*domain.RentalListing, error) {
	return s.store.Listings().GetByAsset(ctx, assetID)
}

func (s *listingService) Browse(ctx context.Context, page, pageSize int32) ([]domain.RentalListing, int32, error) {
	return s.store.Listings().ListAvailable(ctx, page, pageSize)
}

func (s *listingService) ListLendings(ctx context.Context, owner uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error) {
	return s.store.Listings().ListByOwner(ctx, owner, page, pageSize)
}

func (s *listingService) ListRentals(ctx context.Context, renter uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error) {
	return s.store.Listings().ListByRenter(ctx, renter, page, pageSize)
}
