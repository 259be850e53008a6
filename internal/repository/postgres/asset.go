package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
)

type assetRepository struct {
	db      repository.DBTX
	keyring *custody.Keyring
}

func NewAssetRepository(db repository.DBTX, keyring *custody.Keyring) repository.AssetRepository {
	return &assetRepository{db: db, keyring: keyring}
}

func (r *assetRepository) Register(ctx context.Context, a *domain.Asset) error {
	query := `INSERT INTO assets (id, name, symbol, uri, kind, holder, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.Name, a.Symbol, a.URI, a.Kind, a.Holder, a.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return domain.ErrAssetExists
	}
	return err
}

func (r *assetRepository) Get(ctx context.Context, assetID string) (*domain.Asset, error) {
	a := &domain.Asset{}
	query := `SELECT id, name, symbol, uri, kind, holder, created_at FROM assets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, assetID).
		Scan(&a.ID, &a.Name, &a.Symbol, &a.URI, &a.Kind, &a.Holder, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Transfer moves the one unit of the asset by swapping its holder. The
// conditional update is the held-exactly-here check and the move in one
// statement.
func (r *assetRepository) Transfer(ctx context.Context, assetID string, from, to custody.Address, auth custody.Authority) error {
	if !r.keyring.Verify(auth, from) {
		return domain.ErrUnauthorizedTransfer
	}

	query := `UPDATE assets SET holder = $1 WHERE id = $2 AND holder = $3`
	res, err := r.db.ExecContext(ctx, query, to, assetID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.Get(ctx, assetID); getErr != nil {
			return getErr
		}
		return domain.ErrAssetNotHeld
	}

	logger.Debug("Asset transferred", "asset_id", assetID, "from", from, "to", to)
	return nil
}
