package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a customer organisation record within a tenant. ResellerID is
// set when the client was onboarded by a reseller; the scope resolver uses
// it to compute reseller visibility.
type Client struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ResellerID *uuid.UUID `gorm:"type:uuid;index" json:"reseller_id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	Email      string     `gorm:"type:varchar(255);not null;index" json:"email"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
