package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/repository"
)

type listingRepository struct {
	db repository.DBTX
}

func NewListingRepository(db repository.DBTX) repository.ListingRepository {
	return &listingRepository{db: db}
}

const listingColumns = `asset_id, owner, daily_rent, collateral, min_duration_days, max_duration_days, is_active, current_renter, rental_end_time, created_at`

// Create inserts a fresh listing keyed by the asset identifier. A closed
// listing row for the same asset is overwritten in place — closed is
// terminal for that listing, and re-offering the asset starts a new one.
// An active row wins the conflict and the create fails.
func (r *listingRepository) Create(ctx context.Context, l *domain.RentalListing) error {
	query := `INSERT INTO listings (asset_id, owner, daily_rent, collateral, min_duration_days, max_duration_days, is_active, current_renter, rental_end_time, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (asset_id) DO UPDATE SET
	            owner = EXCLUDED.owner,
	            daily_rent = EXCLUDED.daily_rent,
	            collateral = EXCLUDED.collateral,
	            min_duration_days = EXCLUDED.min_duration_days,
	            max_duration_days = EXCLUDED.max_duration_days,
	            is_active = EXCLUDED.is_active,
	            current_renter = EXCLUDED.current_renter,
	            rental_end_time = EXCLUDED.rental_end_time,
	            created_at = EXCLUDED.created_at
	          WHERE listings.is_active = FALSE AND listings.current_renter IS NULL`
	renter, end := occupancyColumns(l.Occupancy)
	res, err := r.db.ExecContext(ctx, query,
		l.AssetID, l.Owner, int64(l.DailyRent), int64(l.Collateral),
		l.MinDurationDays, l.MaxDurationDays, l.IsActive, renter, end, l.CreatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrListingExists
	}
	return nil
}

func (r *listingRepository) GetByAsset(ctx context.Context, assetID string) (*domain.RentalListing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE asset_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, assetID))
}

func (r *listingRepository) GetByAssetForUpdate(ctx context.Context, assetID string) (*domain.RentalListing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE asset_id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, assetID))
}

func (r *listingRepository) Update(ctx context.Context, l *domain.RentalListing) error {
	query := `UPDATE listings SET is_active = $1, current_renter = $2, rental_end_time = $3 WHERE asset_id = $4`
	renter, end := occupancyColumns(l.Occupancy)
	res, err := r.db.ExecContext(ctx, query, l.IsActive, renter, end, l.AssetID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) ListAvailable(ctx context.Context, page, pageSize int32) ([]domain.RentalListing, int32, error) {
	where := `WHERE is_active = TRUE AND current_renter IS NULL`
	return r.list(ctx, where, nil, page, pageSize)
}

func (r *listingRepository) ListByOwner(ctx context.Context, owner uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error) {
	return r.list(ctx, `WHERE owner = $1`, []any{owner}, page, pageSize)
}

func (r *listingRepository) ListByRenter(ctx context.Context, renter uuid.UUID, page, pageSize int32) ([]domain.RentalListing, int32, error) {
	return r.list(ctx, `WHERE current_renter = $1`, []any{renter}, page, pageSize)
}

func (r *listingRepository) ListEndingBetween(ctx context.Context, from, to time.Time) ([]domain.RentalListing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
	          WHERE current_renter IS NOT NULL AND rental_end_time > $1 AND rental_end_time <= $2
	          ORDER BY rental_end_time`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *listingRepository) list(ctx context.Context, where string, args []any, page, pageSize int32) ([]domain.RentalListing, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM listings ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + listingColumns + ` FROM listings ` + where +
		` ORDER BY created_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}
	return listings, count, nil
}

func (r *listingRepository) scanOne(row *sql.Row) (*domain.RentalListing, error) {
	l, err := scanListing(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func scanListings(rows *sql.Rows) ([]domain.RentalListing, error) {
	var listings []domain.RentalListing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func scanListing(scan func(dest ...any) error) (*domain.RentalListing, error) {
	var (
		l          domain.RentalListing
		dailyRent  int64
		collateral int64
		renter     uuid.NullUUID
		end        sql.NullTime
	)
	err := scan(&l.AssetID, &l.Owner, &dailyRent, &collateral,
		&l.MinDurationDays, &l.MaxDurationDays, &l.IsActive, &renter, &end, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.DailyRent = uint64(dailyRent)
	l.Collateral = uint64(collateral)
	if renter.Valid && end.Valid {
		l.Occupancy = domain.OccupiedBy(renter.UUID, end.Time)
	} else {
		l.Occupancy = domain.Vacant()
	}
	return &l, nil
}

func placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// occupancyColumns splits the occupancy sum type into the two nullable
// columns it persists as.
func occupancyColumns(o domain.Occupancy) (uuid.NullUUID, sql.NullTime) {
	renter, rented := o.Renter()
	end, _ := o.EndTime()
	return uuid.NullUUID{UUID: renter, Valid: rented}, sql.NullTime{Time: end, Valid: rented}
}
