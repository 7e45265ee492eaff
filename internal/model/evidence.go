package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Evidence is a write-once proof-of-work record captured by a driver at a
// job status milestone. At most one record exists per (job, status) pair,
// enforced by a unique index. There is no update or delete path; if the
// uploading user is removed, UploadedBy is nulled and the record kept.
type Evidence struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	JobID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_id"`
	Status      JobStatus      `gorm:"type:job_status;not null" json:"status"`
	Photos      pq.StringArray `gorm:"type:text[];not null" json:"photos"`
	Signature   *string        `gorm:"type:text" json:"signature"`
	SealNumbers pq.StringArray `gorm:"type:text[];not null" json:"seal_numbers"`
	Notes       *string        `gorm:"type:text" json:"notes"`
	UploadedBy  *uuid.UUID     `gorm:"type:uuid" json:"uploaded_by"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Evidence) TableName() string {
	return "evidence"
}

func (e *Evidence) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
