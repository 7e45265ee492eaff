package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetDetails loads a booking with its asset lines and status history,
// history newest first.
func (r *BookingRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("Assets").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// BookingListFilter narrows booking list queries. When both ClientID and
// CreatedBy are set they combine with OR: a client sees bookings owned by
// their client record as well as bookings they submitted themselves.
type BookingListFilter struct {
	TenantID  *uuid.UUID
	Status    *model.BookingStatus
	ClientID  *uuid.UUID
	ClientIDs []uuid.UUID
	CreatedBy *uuid.UUID
	DriverID  *uuid.UUID
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter, page Page) ([]model.Booking, int64, error) {
	page = page.Normalize()
	query := r.db.WithContext(ctx).Model(&model.Booking{})

	if filter.TenantID != nil {
		query = query.Where("bookings.tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("bookings.status = ?", *filter.Status)
	}
	if filter.ClientID != nil && filter.CreatedBy != nil {
		query = query.Where("bookings.client_id = ? OR bookings.created_by = ?", *filter.ClientID, *filter.CreatedBy)
	} else if filter.ClientID != nil {
		query = query.Where("bookings.client_id = ?", *filter.ClientID)
	} else if filter.CreatedBy != nil {
		query = query.Where("bookings.created_by = ?", *filter.CreatedBy)
	}
	if filter.ClientIDs != nil {
		if len(filter.ClientIDs) == 0 {
			// a reseller with no client records sees nothing
			query = query.Where("1 = 0")
		} else {
			query = query.Where("bookings.client_id IN ?", filter.ClientIDs)
		}
	}
	if filter.DriverID != nil {
		query = query.Joins("JOIN jobs j ON j.booking_id = bookings.id").
			Where("j.driver_id = ?", *filter.DriverID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []model.Booking
	err := query.Order("bookings.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// UpdateStatusIf moves the booking to next only if it is currently at
// expected, stamping the matching milestone timestamp on first entry. The
// conditional write makes concurrent transitions race-safe: the loser
// matches zero rows and the caller sees ok == false.
func (r *BookingRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.BookingStatus, now time.Time) (bool, error) {
	updates := map[string]interface{}{"status": next}
	switch next {
	case model.BookingStatusCollected:
		updates["collected_at"] = gorm.Expr("COALESCE(collected_at, ?)", now)
	case model.BookingStatusSanitised:
		updates["sanitised_at"] = gorm.Expr("COALESCE(sanitised_at, ?)", now)
	case model.BookingStatusGraded:
		updates["graded_at"] = gorm.Expr("COALESCE(graded_at, ?)", now)
	case model.BookingStatusCompleted:
		updates["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", now)
	}

	res := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LinkJob records the job created for this booking.
func (r *BookingRepository) LinkJob(ctx context.Context, bookingID, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ?", bookingID).
		Update("job_id", jobID).Error
}
