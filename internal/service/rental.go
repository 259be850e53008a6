package service

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
)

type rentalService struct {
	store   repository.Store
	keyring *custody.Keyring
	clock   Clock
}

func NewRentalService(store repository.Store, keyring *custody.Keyring, clock Clock) RentalService {
	return &rentalService{store: store, keyring: keyring, clock: clock}
}

// rentalPayment computes total rent and rent plus collateral in a widened
// domain, so an overflowing product is detected instead of wrapping.
func rentalPayment(dailyRent uint64, durationDays uint32, collateral uint64) (totalRent, totalPayment uint64, err error) {
	hi, lo := bits.Mul64(dailyRent, uint64(durationDays))
	if hi != 0 {
		return 0, 0, domain.ErrOverflow
	}
	sum, carry := bits.Add64(lo, collateral, 0)
	if carry != 0 {
		return 0, 0, domain.ErrOverflow
	}
	return lo, sum, nil
}

func (s *rentalService) Rent(ctx context.Context, renter uuid.UUID, assetID string, durationDays uint32) (*domain.RentalListing, error) {
	var out *domain.RentalListing
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		l, err := tx.Listings().GetByAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if !l.IsActive {
			return domain.ErrListingNotActive
		}
		if l.Occupancy.Rented() {
			return domain.ErrAlreadyRented
		}
		if durationDays < l.MinDurationDays || durationDays > l.MaxDurationDays {
			return domain.ErrInvalidDuration
		}

		totalRent, totalPayment, err := rentalPayment(l.DailyRent, durationDays, l.Collateral)
		if err != nil {
			return err
		}

		renterAddr := s.keyring.PartyAddressFor(renter)
		ownerAddr := s.keyring.PartyAddressFor(l.Owner)
		assetVault := s.keyring.AssetVaultFor(assetID)
		fundsVault := s.keyring.FundsVaultFor(assetID)

		// Funds are collected before the asset is released: no renting
		// without payment.
		err = tx.Funds().Transfer(ctx, renterAddr, fundsVault, totalPayment,
			s.keyring.AuthorityFor(renterAddr), fmt.Sprintf("rental payment for %s (%d days)", assetID, durationDays))
		if err != nil {
			return err
		}

		// The asset leaves escrow under the vault's own derived authority;
		// no human key signs this leg.
		err = tx.Assets().Transfer(ctx, assetID, assetVault, renterAddr,
			s.keyring.AuthorityFor(assetVault))
		if err != nil {
			return err
		}

		// Rent forwards to the owner only after the asset has moved,
		// leaving exactly the collateral in the funds vault.
		err = tx.Funds().Transfer(ctx, fundsVault, ownerAddr, totalRent,
			s.keyring.AuthorityFor(fundsVault), fmt.Sprintf("rent for %s", assetID))
		if err != nil {
			return err
		}

		// Calendar-day arithmetic: a uint32 day count expressed as
		// nanoseconds can exceed the Duration range and wrap into the past.
		end := s.clock.Now().AddDate(0, 0, int(durationDays))
		l.Occupancy = domain.OccupiedBy(renter, end)
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, out.Owner, "Asset Rented",
		fmt.Sprintf("Your asset %s was rented for %d days", assetID, durationDays),
		map[string]string{"type": "RENTED", "asset_id": assetID})

	logger.Info("Asset rented", "asset_id", assetID, "renter", renter, "duration_days", durationDays)
	return out, nil
}

func (s *rentalService) Return(ctx context.Context, caller uuid.UUID, assetID string) (*domain.RentalListing, error) {
	var out *domain.RentalListing
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		l, err := tx.Listings().GetByAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		renter, rented := l.Occupancy.Renter()
		if !rented {
			return domain.ErrNotRented
		}
		if renter != caller {
			return domain.ErrUnauthorizedRenter
		}

		renterAddr := s.keyring.PartyAddressFor(caller)
		assetVault := s.keyring.AssetVaultFor(assetID)
		fundsVault := s.keyring.FundsVaultFor(assetID)

		err = tx.Assets().Transfer(ctx, assetID, renterAddr, assetVault,
			s.keyring.AuthorityFor(renterAddr))
		if err != nil {
			return err
		}

		// Full collateral refund; the listing stays active and accepts the
		// next rental without the owner re-listing.
		err = tx.Funds().Transfer(ctx, fundsVault, renterAddr, l.Collateral,
			s.keyring.AuthorityFor(fundsVault), fmt.Sprintf("collateral refund for %s", assetID))
		if err != nil {
			return err
		}

		l.Occupancy = domain.Vacant()
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, out.Owner, "Asset Returned",
		fmt.Sprintf("Your asset %s was returned and is listed again", assetID),
		map[string]string{"type": "RETURNED", "asset_id": assetID})

	logger.Info("Asset returned", "asset_id", assetID, "renter", caller)
	return out, nil
}

func (s *rentalService) ClaimExpired(ctx context.Context, caller uuid.UUID, assetID string) (*domain.RentalListing, error) {
	var forfeited uuid.UUID
	var out *domain.RentalListing
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		l, err := tx.Listings().GetByAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if l.Owner != caller {
			return domain.ErrNotOwner
		}
		renter, rented := l.Occupancy.Renter()
		if !rented {
			return domain.ErrNotRented
		}
		end, _ := l.Occupancy.EndTime()
		if s.clock.Now().Before(end) {
			return domain.ErrRentalNotExpired
		}

		renterAddr := s.keyring.PartyAddressFor(renter)
		ownerAddr := s.keyring.PartyAddressFor(l.Owner)
		fundsVault := s.keyring.FundsVaultFor(assetID)

		// The renter's cooperation is not required: custody of the unit is
		// revoked under protocol authority and the asset goes straight to
		// the owner.
		err = tx.Assets().Transfer(ctx, assetID, renterAddr, ownerAddr,
			s.keyring.AuthorityFor(renterAddr))
		if err != nil {
			return err
		}

		// Collateral is forfeited to the owner as the non-return penalty.
		err = tx.Funds().Transfer(ctx, fundsVault, ownerAddr, l.Collateral,
			s.keyring.AuthorityFor(fundsVault), fmt.Sprintf("forfeited collateral for %s", assetID))
		if err != nil {
			return err
		}

		// Forfeiture closes the listing for good; re-offering the asset
		// takes a fresh listing.
		l.Occupancy = domain.Vacant()
		l.IsActive = false
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		forfeited = renter
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, forfeited, "Collateral Forfeited",
		fmt.Sprintf("You did not return asset %s before expiry; the owner reclaimed it and your collateral", assetID),
		map[string]string{"type": "FORFEITED", "asset_id": assetID})

	logger.Info("Expired rental claimed", "asset_id", assetID, "owner", caller, "renter", forfeited)
	return out, nil
}

// notify writes an in-app notification after the transition has committed.
// Failures are logged, never surfaced: the transition outcome is final.
func (s *rentalService) notify(ctx context.Context, partyID uuid.UUID, title, message string, attrs map[string]string) {
	n := &domain.Notification{
		PartyID:    partyID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := s.store.Notifications().Create(ctx, n); err != nil {
		logger.Warn("Failed to write notification", "party_id", partyID, "title", title, "error", err)
	}
}
