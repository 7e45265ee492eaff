package service

import (
	"context"

	"github.com/google/uuid"

	"itad-service/internal/model"
	"itad-service/internal/repository"
)

// NotificationService records and lists in-app notifications. Delivery to
// external channels is out of scope; rows are only surfaced back to users.
type NotificationService struct {
	notifications *repository.NotificationRepository
}

func NewNotificationService(notifications *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) Record(ctx context.Context, userID, tenantID uuid.UUID, kind model.NotificationKind, message string) error {
	return s.notifications.Create(ctx, &model.Notification{
		UserID:   userID,
		TenantID: tenantID,
		Kind:     kind,
		Message:  message,
	})
}

func (s *NotificationService) ListMine(ctx context.Context, principal model.Principal) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, principal.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	return s.notifications.MarkRead(ctx, id, principal.UserID)
}
