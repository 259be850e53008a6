package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

type walletService struct {
	store   repository.Store
	keyring *custody.Keyring
}

func NewWalletService(store repository.Store, keyring *custody.Keyring) WalletService {
	return &walletService{store: store, keyring: keyring}
}

// RegisterAsset mints a fresh unique asset into the caller's custody. The
// asset identifier doubles as the listing key later on.
func (s *walletService) RegisterAsset(ctx context.Context, caller uuid.UUID, name, symbol, uri string) (*domain.Asset, error) {
	asset := &domain.Asset{
		ID:        uuid.NewString(),
		Name:      name,
		Symbol:    symbol,
		URI:       uri,
		Kind:      domain.AssetKindUnique,
		Holder:    s.keyring.PartyAddressFor(caller),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Assets().Register(ctx, asset); err != nil {
		return nil, err
	}

	logger.Info("Asset registered", "asset_id", asset.ID, "holder", asset.Holder)
	return asset, nil
}

func (s *walletService) GetAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	return s.store.Assets().Get(ctx, assetID)
}

func (s *walletService) Deposit(ctx context.Context, caller uuid.UUID, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	addr := s.keyring.PartyAddressFor(caller)
	if err := s.store.Funds().Deposit(ctx, addr, amount, "deposit"); err != nil {
		return 0, err
	}
	return s.store.Funds().Balance(ctx, addr)
}

func (s *walletService) Balance(ctx context.Context, caller uuid.UUID) (uint64, error) {
	return s.store.Funds().Balance(ctx, s.keyring.PartyAddressFor(caller))
}

func (s *walletService) History(ctx context.Context, caller uuid.UUID, page, pageSize int32) ([]domain.JournalEntry, int32, error) {
	return s.store.Funds().History(ctx, s.keyring.PartyAddressFor(caller), page, pageSize)
}
