package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
)

type fundsRepository struct {
	db      repository.DBTX
	keyring *custody.Keyring
}

func NewFundsRepository(db repository.DBTX, keyring *custody.Keyring) repository.FundsRepository {
	return &fundsRepository{db: db, keyring: keyring}
}

func (r *fundsRepository) EnsureAccount(ctx context.Context, addr custody.Address) error {
	query := `INSERT INTO accounts (address, balance, created_at) VALUES ($1, 0, $2)
	          ON CONFLICT (address) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, addr, time.Now().UTC())
	return err
}

func (r *fundsRepository) Balance(ctx context.Context, addr custody.Address) (uint64, error) {
	var balance int64
	query := `SELECT balance FROM accounts WHERE address = $1`
	err := r.db.QueryRowContext(ctx, query, addr).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(balance), nil
}

func (r *fundsRepository) Deposit(ctx context.Context, to custody.Address, amount uint64, memo string) error {
	if err := r.credit(ctx, to, amount); err != nil {
		return err
	}
	return r.journal(ctx, nil, to, amount, memo)
}

// Transfer debits from and credits to. The debit's balance guard doubles as
// the insufficient-funds check; under the surrounding transaction both legs
// commit or neither does.
func (r *fundsRepository) Transfer(ctx context.Context, from, to custody.Address, amount uint64, auth custody.Authority, memo string) error {
	if !r.keyring.Verify(auth, from) {
		return domain.ErrUnauthorizedTransfer
	}

	debit := `UPDATE accounts SET balance = balance - $1 WHERE address = $2 AND balance >= $1`
	res, err := r.db.ExecContext(ctx, debit, int64(amount), from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInsufficientFunds
	}

	if err := r.credit(ctx, to, amount); err != nil {
		return err
	}
	if err := r.journal(ctx, &from, to, amount, memo); err != nil {
		return err
	}

	logger.Debug("Funds transferred", "from", from, "to", to, "amount", amount, "memo", memo)
	return nil
}

func (r *fundsRepository) History(ctx context.Context, addr custody.Address, page, pageSize int32) ([]domain.JournalEntry, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM journal_entries WHERE from_address = $1 OR to_address = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, addr).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, from_address, to_address, amount, memo, created_at FROM journal_entries
	          WHERE from_address = $1 OR to_address = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, addr, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			e      domain.JournalEntry
			from   sql.NullString
			amount int64
		)
		if err := rows.Scan(&e.ID, &from, &e.To, &amount, &e.Memo, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if from.Valid {
			addr := custody.Address(from.String)
			e.From = &addr
		}
		e.Amount = uint64(amount)
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}

func (r *fundsRepository) credit(ctx context.Context, to custody.Address, amount uint64) error {
	query := `INSERT INTO accounts (address, balance, created_at) VALUES ($1, $2, $3)
	          ON CONFLICT (address) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`
	_, err := r.db.ExecContext(ctx, query, to, int64(amount), time.Now().UTC())
	return err
}

func (r *fundsRepository) journal(ctx context.Context, from *custody.Address, to custody.Address, amount uint64, memo string) error {
	query := `INSERT INTO journal_entries (id, from_address, to_address, amount, memo, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	var fromCol sql.NullString
	if from != nil {
		fromCol = sql.NullString{String: string(*from), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query, uuid.New(), fromCol, to, int64(amount), memo, time.Now().UTC())
	return err
}
