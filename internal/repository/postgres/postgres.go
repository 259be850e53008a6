package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
)

// Store implements repository.Store over Postgres. The zero-cost trick is
// that every repository is built over a DBTX; NewStore wires them to the
// raw *sql.DB, while WithinTx rebuilds them over one *sql.Tx so a whole
// lifecycle transition shares a single transaction.
type Store struct {
	db      *sql.DB
	keyring *custody.Keyring

	listings      repository.ListingRepository
	assets        repository.AssetRepository
	funds         repository.FundsRepository
	parties       repository.PartyRepository
	notifications repository.NotificationRepository
}

func NewStore(db *sql.DB, keyring *custody.Keyring) *Store {
	return newStore(db, db, keyring)
}

func newStore(db *sql.DB, q repository.DBTX, keyring *custody.Keyring) *Store {
	return &Store{
		db:            db,
		keyring:       keyring,
		listings:      NewListingRepository(q),
		assets:        NewAssetRepository(q, keyring),
		funds:         NewFundsRepository(q, keyring),
		parties:       NewPartyRepository(q),
		notifications: NewNotificationRepository(q),
	}
}

func (s *Store) Listings() repository.ListingRepository { return s.listings }
func (s *Store) Assets() repository.AssetRepository     { return s.assets }
func (s *Store) Funds() repository.FundsRepository      { return s.funds }
func (s *Store) Parties() repository.PartyRepository    { return s.parties }
func (s *Store) Notifications() repository.NotificationRepository {
	return s.notifications
}

// WithinTx runs fn against a transaction-scoped Store and commits only if
// fn returns nil. Any error rolls everything back, so a failed fund or
// asset movement leaves no partial state behind.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(newStore(s.db, tx, s.keyring)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Transaction rollback failed", "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}
