package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatusHistory is an append-only audit row, one per booking status
// transition. ChangedBy is nil when the change was made by the system
// (booking sync from job progress).
type BookingStatusHistory struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BookingID uuid.UUID     `gorm:"type:uuid;not null;index" json:"booking_id"`
	Status    BookingStatus `gorm:"type:booking_status;not null" json:"status"`
	ChangedBy *uuid.UUID    `gorm:"type:uuid" json:"changed_by"`
	Notes     *string       `gorm:"type:text" json:"notes"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (BookingStatusHistory) TableName() string {
	return "booking_status_history"
}

func (h *BookingStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// JobStatusHistory is an append-only audit row, one per job status
// transition, including permitted no-op transitions.
type JobStatusHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	JobID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"job_id"`
	Status    JobStatus  `gorm:"type:job_status;not null" json:"status"`
	ChangedBy *uuid.UUID `gorm:"type:uuid" json:"changed_by"`
	Notes     *string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (JobStatusHistory) TableName() string {
	return "job_status_history"
}

func (h *JobStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
