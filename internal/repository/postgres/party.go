package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/repository"
)

var ErrPartyNotFound = errors.New("party not found")

type partyRepository struct {
	db repository.DBTX
}

func NewPartyRepository(db repository.DBTX) repository.PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) Create(ctx context.Context, p *domain.Party) error {
	query := `INSERT INTO parties (id, name, email, password_hash, address, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Email, p.PasswordHash, p.Address, p.CreatedOn)
	return err
}

func (r *partyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	query := `SELECT id, name, email, password_hash, address, created_on FROM parties WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *partyRepository) GetByEmail(ctx context.Context, email string) (*domain.Party, error) {
	query := `SELECT id, name, email, password_hash, address, created_on FROM parties WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *partyRepository) scanOne(row *sql.Row) (*domain.Party, error) {
	p := &domain.Party{}
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Address, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPartyNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
