package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetDetails loads a job with its asset snapshot, status history (newest
// first) and evidence records.
func (r *JobRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Assets").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Evidence").
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// JobListFilter narrows job list queries. ClientID/CreatedBy and ClientIDs
// scope through the linked booking; DriverID matches the job directly and
// carries no tenant restriction (drivers may work jobs across tenants).
type JobListFilter struct {
	TenantID  *uuid.UUID
	Status    *model.JobStatus
	BookingID *uuid.UUID
	DriverID  *uuid.UUID
	ClientID  *uuid.UUID
	ClientIDs []uuid.UUID
	CreatedBy *uuid.UUID
}

func (r *JobRepository) List(ctx context.Context, filter JobListFilter, page Page) ([]model.Job, int64, error) {
	page = page.Normalize()
	query := r.db.WithContext(ctx).Model(&model.Job{})

	if filter.TenantID != nil {
		query = query.Where("jobs.tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("jobs.status = ?", *filter.Status)
	}
	if filter.BookingID != nil {
		query = query.Where("jobs.booking_id = ?", *filter.BookingID)
	}
	if filter.DriverID != nil {
		query = query.Where("jobs.driver_id = ?", *filter.DriverID)
	}
	if filter.ClientID != nil || filter.CreatedBy != nil || filter.ClientIDs != nil {
		query = query.Joins("JOIN bookings b ON b.id = jobs.booking_id")
		if filter.ClientID != nil && filter.CreatedBy != nil {
			query = query.Where("b.client_id = ? OR b.created_by = ?", *filter.ClientID, *filter.CreatedBy)
		} else if filter.ClientID != nil {
			query = query.Where("b.client_id = ?", *filter.ClientID)
		} else if filter.CreatedBy != nil {
			query = query.Where("b.created_by = ?", *filter.CreatedBy)
		}
		if filter.ClientIDs != nil {
			if len(filter.ClientIDs) == 0 {
				// a reseller with no client records sees nothing
				query = query.Where("1 = 0")
			} else {
				query = query.Where("b.client_id IN ?", filter.ClientIDs)
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []model.Job
	err := query.Order("jobs.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// UpdateStatusIf moves the job to next only if it is currently at expected.
// Transitioning into completed stamps completed_date on first entry. Two
// racing writers observing the same prior state cannot both succeed: the
// loser matches zero rows and gets ok == false.
func (r *JobRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.JobStatus, now time.Time) (bool, error) {
	updates := map[string]interface{}{"status": next}
	if next == model.JobStatusCompleted {
		updates["completed_date"] = gorm.Expr("COALESCE(completed_date, ?)", now)
	}

	res := r.db.WithContext(ctx).Model(&model.Job{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
