package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusCreated   BookingStatus = "created"
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCollected BookingStatus = "collected"
	BookingStatusSanitised BookingStatus = "sanitised"
	BookingStatusGraded    BookingStatus = "graded"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus converts a raw string to a BookingStatus, returning an
// error for unknown values.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	switch st {
	case BookingStatusCreated, BookingStatusScheduled, BookingStatusCollected,
		BookingStatusSanitised, BookingStatusGraded, BookingStatusCompleted,
		BookingStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// Booking is a customer collection request. Its status is the coarse,
// customer-facing projection of progress; the linked job carries the
// fine-grained operational status.
type Booking struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID         *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	Status           BookingStatus   `gorm:"type:booking_status;not null;default:created" json:"status"`
	JobID            *uuid.UUID      `gorm:"type:uuid" json:"job_id"`
	ScheduledDate    *time.Time      `json:"scheduled_date"`
	CollectedAt      *time.Time      `json:"collected_at"`
	SanitisedAt      *time.Time      `json:"sanitised_at"`
	GradedAt         *time.Time      `json:"graded_at"`
	CompletedAt      *time.Time      `json:"completed_at"`
	EstimatedCO2e    decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"estimated_co2e"`
	EstimatedBuyback decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"estimated_buyback"`
	CharityPercent   int             `gorm:"not null;default:0" json:"charity_percent"`
	SiteAddress      string          `gorm:"type:text" json:"site_address"`
	ContactName      string          `gorm:"type:varchar(255)" json:"contact_name"`
	ContactPhone     string          `gorm:"type:varchar(32)" json:"contact_phone"`
	Notes            string          `gorm:"type:text" json:"notes"`
	Assets           []BookingAsset  `gorm:"foreignKey:BookingID" json:"assets,omitempty"`
	History          []BookingStatusHistory `gorm:"foreignKey:BookingID" json:"history,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BookingAsset is one line of equipment on a booking request.
type BookingAsset struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	Category  string    `gorm:"type:varchar(64);not null" json:"category"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Make      string    `gorm:"type:varchar(128)" json:"make"`
	Model     string    `gorm:"type:varchar(128)" json:"model"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BookingAsset) TableName() string {
	return "booking_assets"
}

func (a *BookingAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
