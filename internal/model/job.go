package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusBooked    JobStatus = "booked"
	JobStatusRouted    JobStatus = "routed"
	JobStatusEnRoute   JobStatus = "en_route"
	JobStatusArrived   JobStatus = "arrived"
	JobStatusCollected JobStatus = "collected"
	JobStatusWarehouse JobStatus = "warehouse"
	JobStatusSanitised JobStatus = "sanitised"
	JobStatusGraded    JobStatus = "graded"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ParseJobStatus converts a raw string to a JobStatus, returning an error
// for unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobStatusBooked, JobStatusRouted, JobStatusEnRoute, JobStatusArrived,
		JobStatusCollected, JobStatusWarehouse, JobStatusSanitised,
		JobStatusGraded, JobStatusCompleted, JobStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Job is the operational dispatch unit created when a driver is assigned to
// a booking. Client, site and asset data are copied from the booking at
// assignment time, not referenced live, so later booking edits never alter
// an in-flight job.
type Job struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ErpJobNumber    string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"erp_job_number"`
	BookingID       *uuid.UUID      `gorm:"type:uuid;index" json:"booking_id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Status          JobStatus       `gorm:"type:job_status;not null;default:booked" json:"status"`
	DriverID        *uuid.UUID      `gorm:"type:uuid;index" json:"driver_id"`
	ScheduledDate   *time.Time      `json:"scheduled_date"`
	CompletedDate   *time.Time      `json:"completed_date"`
	CO2eSaved       decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"co2e_saved"`
	TravelEmissions decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"travel_emissions"`
	BuybackValue    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"buyback_value"`
	CharityPercent  int             `gorm:"not null;default:0" json:"charity_percent"`
	SiteAddress     string          `gorm:"type:text" json:"site_address"`
	ContactName     string          `gorm:"type:varchar(255)" json:"contact_name"`
	ContactPhone    string          `gorm:"type:varchar(32)" json:"contact_phone"`
	LoadingBay      string          `gorm:"type:text" json:"loading_bay"`
	SecurityNotes   string          `gorm:"type:text" json:"security_notes"`
	Assets          []JobAsset         `gorm:"foreignKey:JobID" json:"assets,omitempty"`
	History         []JobStatusHistory `gorm:"foreignKey:JobID" json:"history,omitempty"`
	Evidence        []Evidence         `gorm:"foreignKey:JobID" json:"evidence,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// JobAsset is a snapshot of a booking asset line, copied at assignment time.
type JobAsset struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	Category  string    `gorm:"type:varchar(64);not null" json:"category"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Make      string    `gorm:"type:varchar(128)" json:"make"`
	Model     string    `gorm:"type:varchar(128)" json:"model"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (JobAsset) TableName() string {
	return "job_assets"
}

func (a *JobAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
