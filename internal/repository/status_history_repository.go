package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

// StatusHistoryRepository appends audit rows for booking and job status
// transitions. History is append-only; no update or delete methods exist.
type StatusHistoryRepository struct {
	db *gorm.DB
}

func NewStatusHistoryRepository(db *gorm.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

func (r *StatusHistoryRepository) AppendBooking(ctx context.Context, row *model.BookingStatusHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *StatusHistoryRepository) AppendJob(ctx context.Context, row *model.JobStatusHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *StatusHistoryRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.BookingStatusHistory, error) {
	var rows []model.BookingStatusHistory
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StatusHistoryRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.JobStatusHistory, error) {
	var rows []model.JobStatusHistory
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
