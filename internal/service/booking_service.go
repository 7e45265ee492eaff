package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"itad-service/internal/model"
	"itad-service/internal/repository"
	"itad-service/internal/workflow"
)

type BookingService struct {
	bookings BookingStore
	history  HistoryStore
	scope    *ScopeResolver
	notifier Notifier
	log      zerolog.Logger
}

func NewBookingService(
	bookings BookingStore,
	history HistoryStore,
	scope *ScopeResolver,
	notifier Notifier,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		history:  history,
		scope:    scope,
		notifier: notifier,
		log:      log,
	}
}

type BookingAssetInput struct {
	Category string
	Quantity int
	Make     string
	Model    string
	Notes    string
}

type CreateBookingInput struct {
	ClientID       *uuid.UUID
	ScheduledDate  *time.Time
	SiteAddress    string
	ContactName    string
	ContactPhone   string
	CharityPercent int
	Notes          string
	Assets         []BookingAssetInput
}

// Create registers a collection request, computing the indicative CO2e and
// buyback estimates from its asset lines.
func (s *BookingService) Create(ctx context.Context, principal model.Principal, input CreateBookingInput) (*model.Booking, error) {
	if principal.IsDriver() {
		return nil, ErrPermissionDenied
	}
	if len(input.Assets) == 0 {
		return nil, fmt.Errorf("%w: booking requires at least one asset line", ErrInvalidInput)
	}
	if input.CharityPercent < 0 || input.CharityPercent > 100 {
		return nil, fmt.Errorf("%w: charity percent must be between 0 and 100", ErrInvalidInput)
	}
	if strings.TrimSpace(input.SiteAddress) == "" {
		return nil, fmt.Errorf("%w: site address is required", ErrInvalidInput)
	}

	booking := &model.Booking{
		TenantID:       principal.TenantID,
		ClientID:       input.ClientID,
		CreatedBy:      principal.UserID,
		Status:         model.BookingStatusCreated,
		ScheduledDate:  input.ScheduledDate,
		CharityPercent: input.CharityPercent,
		SiteAddress:    strings.TrimSpace(input.SiteAddress),
		ContactName:    strings.TrimSpace(input.ContactName),
		ContactPhone:   strings.TrimSpace(input.ContactPhone),
		Notes:          input.Notes,
	}
	for _, a := range input.Assets {
		if a.Quantity <= 0 {
			return nil, fmt.Errorf("%w: asset quantity must be positive", ErrInvalidInput)
		}
		if strings.TrimSpace(a.Category) == "" {
			return nil, fmt.Errorf("%w: asset category is required", ErrInvalidInput)
		}
		booking.Assets = append(booking.Assets, model.BookingAsset{
			Category: strings.ToLower(strings.TrimSpace(a.Category)),
			Quantity: a.Quantity,
			Make:     a.Make,
			Model:    a.Model,
			Notes:    a.Notes,
		})
	}

	booking.EstimatedCO2e, booking.EstimatedBuyback = EstimateAssets(booking.Assets)

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	changedBy := principal.UserID
	if err := s.history.AppendBooking(ctx, &model.BookingStatusHistory{
		BookingID: booking.ID,
		Status:    model.BookingStatusCreated,
		ChangedBy: &changedBy,
	}); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Booking %s received, estimated %s kg CO2e saved", booking.ID, booking.EstimatedCO2e)
		if err := s.notifier.Record(ctx, principal.UserID, principal.TenantID, model.NotificationBookingCreated, msg); err != nil {
			s.log.Error().Err(err).Str("booking_id", booking.ID.String()).Msg("failed to record booking notification")
		}
	}

	return s.bookings.GetDetails(ctx, booking.ID)
}

// UpdateStatus moves a booking directly along its own transition graph.
// This is the admin override path; normal progress arrives through job
// status propagation.
func (s *BookingService) UpdateStatus(ctx context.Context, principal model.Principal, bookingID uuid.UUID, next model.BookingStatus, notes *string) (*model.Booking, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return nil, err
	}

	if !workflow.IsValidBookingTransition(booking.Status, next) {
		return nil, fmt.Errorf("%w: invalid booking status transition %s -> %s", ErrInvalidInput, booking.Status, next)
	}

	ok, err := s.bookings.UpdateStatusIf(ctx, booking.ID, booking.Status, next, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking status changed concurrently, expected %s", ErrInvalidInput, booking.Status)
	}

	changedBy := principal.UserID
	if err := s.history.AppendBooking(ctx, &model.BookingStatusHistory{
		BookingID: booking.ID,
		Status:    next,
		ChangedBy: &changedBy,
		Notes:     notes,
	}); err != nil {
		return nil, err
	}

	return s.bookings.GetDetails(ctx, booking.ID)
}

// Cancel moves a booking to its terminal cancelled status. Bookings are
// never physically deleted. Admins may cancel any booking; other roles may
// cancel bookings they can see, while the graph still only allows it from
// created or scheduled.
func (s *BookingService) Cancel(ctx context.Context, principal model.Principal, bookingID uuid.UUID, notes *string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return nil, err
	}

	if !principal.IsAdmin() {
		allowed, err := s.scope.CanAccessBooking(ctx, principal, booking)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrPermissionDenied
		}
	}

	if !workflow.IsValidBookingTransition(booking.Status, model.BookingStatusCancelled) {
		return nil, fmt.Errorf("%w: invalid booking status transition %s -> %s", ErrInvalidInput, booking.Status, model.BookingStatusCancelled)
	}

	ok, err := s.bookings.UpdateStatusIf(ctx, booking.ID, booking.Status, model.BookingStatusCancelled, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking status changed concurrently, expected %s", ErrInvalidInput, booking.Status)
	}

	changedBy := principal.UserID
	if err := s.history.AppendBooking(ctx, &model.BookingStatusHistory{
		BookingID: booking.ID,
		Status:    model.BookingStatusCancelled,
		ChangedBy: &changedBy,
		Notes:     notes,
	}); err != nil {
		return nil, err
	}

	return s.bookings.GetDetails(ctx, booking.ID)
}

func (s *BookingService) Get(ctx context.Context, principal model.Principal, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.GetDetails(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return nil, err
	}

	if !principal.IsAdmin() {
		if principal.IsDriver() {
			// drivers read bookings only through their jobs
			return nil, ErrPermissionDenied
		}
		allowed, err := s.scope.CanAccessBooking(ctx, principal, booking)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrPermissionDenied
		}
	}

	return booking, nil
}

type BookingListInput struct {
	Status *model.BookingStatus
	Page   repository.Page
}

func (s *BookingService) List(ctx context.Context, principal model.Principal, input BookingListInput) ([]model.Booking, int64, error) {
	filter, err := s.scope.BookingFilter(ctx, principal)
	if err != nil {
		return nil, 0, err
	}
	filter.Status = input.Status

	return s.bookings.List(ctx, filter, input.Page)
}
