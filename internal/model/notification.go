package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationBookingCreated NotificationKind = "booking_created"
	NotificationDriverAssigned NotificationKind = "driver_assigned"
	NotificationJobCompleted   NotificationKind = "job_completed"
)

// Notification is an in-app notification record. Delivery (email, push) is
// handled outside this service; rows here are only listed back to the user.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	TenantID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Kind      NotificationKind `gorm:"type:varchar(40);not null" json:"kind"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
