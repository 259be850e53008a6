package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
)

type notificationRepository struct {
	db repository.DBTX
}

func NewNotificationRepository(db repository.DBTX) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		return err
	}

	query := `INSERT INTO notifications (party_id, title, message, is_read, attributes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = r.db.QueryRowContext(ctx, query, n.PartyID, n.Title, n.Message, n.IsRead, attrs, time.Now().UTC()).Scan(&n.ID)
	if err != nil {
		logger.Error("Failed to create notification", "party_id", n.PartyID, "error", err)
	}
	return err
}

func (r *notificationRepository) List(ctx context.Context, partyID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE party_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, partyID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, party_id, title, message, is_read, attributes, created_on
	          FROM notifications WHERE party_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, partyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.PartyID, &n.Title, &n.Message, &n.IsRead, &attrs, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, err
			}
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id int64, partyID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND party_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, partyID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification not found or access denied")
	}
	return nil
}
