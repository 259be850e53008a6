package service

import (
	"context"

	"github.com/google/uuid"

	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/repository"
)

type notificationService struct {
	store repository.Store
}

func NewNotificationService(store repository.Store) NotificationService {
	return &notificationService{store: store}
}

func (s *notificationService) GetNotifications(ctx context.Context, partyID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.store.Notifications().List(ctx, partyID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, partyID uuid.UUID, notificationID int64) error {
	return s.store.Notifications().MarkAsRead(ctx, notificationID, partyID)
}
