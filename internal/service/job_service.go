package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"itad-service/internal/model"
	"itad-service/internal/repository"
	"itad-service/internal/workflow"
)

// JobService is the job lifecycle manager: it orchestrates job status
// changes, appends audit history, enforces role-gated terminal actions and
// propagates job progress onto the linked booking.
// ErpRegistrar obtains an external job reference from the ERP at assignment
// time. A nil registrar, or a registration failure, falls back to a locally
// generated reference.
type ErpRegistrar interface {
	RegisterJob(ctx context.Context, booking *model.Booking, driverID uuid.UUID) (string, error)
}

type JobService struct {
	jobs     JobStore
	bookings BookingStore
	history  HistoryStore
	scope    *ScopeResolver
	notifier Notifier
	erp      ErpRegistrar
	log      zerolog.Logger
}

func NewJobService(
	jobs JobStore,
	bookings BookingStore,
	history HistoryStore,
	scope *ScopeResolver,
	notifier Notifier,
	erp ErpRegistrar,
	log zerolog.Logger,
) *JobService {
	return &JobService{
		jobs:     jobs,
		bookings: bookings,
		history:  history,
		scope:    scope,
		notifier: notifier,
		erp:      erp,
		log:      log,
	}
}

type AssignDriverInput struct {
	BookingID     uuid.UUID
	DriverID      uuid.UUID
	ScheduledDate *time.Time
	LoadingBay    string
	SecurityNotes string
}

// AssignDriver creates the dispatch job for a booking. Client, site and
// asset data are snapshotted onto the job at this moment; later booking
// edits do not reach the job. The booking is linked and moved to scheduled.
func (s *JobService) AssignDriver(ctx context.Context, principal model.Principal, input AssignDriverInput) (*model.Job, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	booking, err := s.bookings.GetDetails(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, input.BookingID)
		}
		return nil, err
	}

	if booking.JobID != nil {
		return nil, fmt.Errorf("%w: booking already has a job", ErrConflict)
	}
	if booking.Status != model.BookingStatusCreated {
		return nil, fmt.Errorf("%w: booking is %s, only created bookings can be assigned", ErrConflict, booking.Status)
	}

	scheduledDate := input.ScheduledDate
	if scheduledDate == nil {
		scheduledDate = booking.ScheduledDate
	}

	erpNumber := newErpJobNumber()
	if s.erp != nil {
		number, err := s.erp.RegisterJob(ctx, booking, input.DriverID)
		if err != nil {
			s.log.Warn().Err(err).Str("booking_id", booking.ID.String()).Msg("ERP registration failed, using generated reference")
		} else {
			erpNumber = number
		}
	}

	driverID := input.DriverID
	bookingID := booking.ID
	job := &model.Job{
		ErpJobNumber:    erpNumber,
		BookingID:       &bookingID,
		TenantID:        booking.TenantID,
		Status:          model.JobStatusBooked,
		DriverID:        &driverID,
		ScheduledDate:   scheduledDate,
		CO2eSaved:       booking.EstimatedCO2e,
		TravelEmissions: decimal.Zero,
		BuybackValue:    booking.EstimatedBuyback,
		CharityPercent:  booking.CharityPercent,
		SiteAddress:     booking.SiteAddress,
		ContactName:     booking.ContactName,
		ContactPhone:    booking.ContactPhone,
		LoadingBay:      input.LoadingBay,
		SecurityNotes:   input.SecurityNotes,
	}
	for _, a := range booking.Assets {
		job.Assets = append(job.Assets, model.JobAsset{
			Category: a.Category,
			Quantity: a.Quantity,
			Make:     a.Make,
			Model:    a.Model,
			Notes:    a.Notes,
		})
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	if err := s.bookings.LinkJob(ctx, booking.ID, job.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	changedBy := principal.UserID
	if err := s.history.AppendJob(ctx, &model.JobStatusHistory{
		JobID:     job.ID,
		Status:    model.JobStatusBooked,
		ChangedBy: &changedBy,
	}); err != nil {
		return nil, err
	}

	ok, err := s.bookings.UpdateStatusIf(ctx, booking.ID, model.BookingStatusCreated, model.BookingStatusScheduled, now)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := s.history.AppendBooking(ctx, &model.BookingStatusHistory{
			BookingID: booking.ID,
			Status:    model.BookingStatusScheduled,
			ChangedBy: &changedBy,
			Notes:     strPtr("driver assigned"),
		}); err != nil {
			return nil, err
		}
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("You have been assigned job %s", job.ErpJobNumber)
		if err := s.notifier.Record(ctx, driverID, booking.TenantID, model.NotificationDriverAssigned, msg); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to record assignment notification")
		}
	}

	return s.jobs.GetDetails(ctx, job.ID)
}

// UpdateStatus applies a status transition to a job. The move must be legal
// in the job transition graph; entering completed is reserved to drivers.
// One history row is appended per transition, including permitted no-op
// transitions, and job progress is propagated onto the linked booking.
// The returned job is fully reloaded, so callers always observe
// post-transition state.
func (s *JobService) UpdateStatus(ctx context.Context, principal model.Principal, jobID uuid.UUID, next model.JobStatus, notes *string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return nil, err
	}

	switch principal.Role {
	case model.RoleAdmin:
	case model.RoleDriver:
		if job.DriverID == nil || *job.DriverID != principal.UserID {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, ErrPermissionDenied
	}
	if next == model.JobStatusCompleted && !principal.IsDriver() {
		return nil, fmt.Errorf("%w: only the driver may mark a job completed", ErrPermissionDenied)
	}

	if !workflow.IsValidJobTransition(job.Status, next) {
		return nil, fmt.Errorf("%w: invalid job status transition %s -> %s", ErrInvalidInput, job.Status, next)
	}

	now := time.Now()
	ok, err := s.jobs.UpdateStatusIf(ctx, job.ID, job.Status, next, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// a concurrent writer moved the job first; report, don't overwrite
		return nil, fmt.Errorf("%w: job status changed concurrently, expected %s", ErrInvalidInput, job.Status)
	}

	changedBy := principal.UserID
	if err := s.history.AppendJob(ctx, &model.JobStatusHistory{
		JobID:     job.ID,
		Status:    next,
		ChangedBy: &changedBy,
		Notes:     notes,
	}); err != nil {
		return nil, err
	}

	if job.BookingID != nil {
		if err := s.syncBookingFromJob(ctx, *job.BookingID, next, now); err != nil {
			return nil, err
		}
	}

	if next == model.JobStatusCompleted && s.notifier != nil && job.BookingID != nil {
		booking, err := s.bookings.GetByID(ctx, *job.BookingID)
		if err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to load booking for completion notification")
		} else {
			msg := fmt.Sprintf("Job %s has been completed", job.ErpJobNumber)
			if err := s.notifier.Record(ctx, booking.CreatedBy, booking.TenantID, model.NotificationJobCompleted, msg); err != nil {
				s.log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to record completion notification")
			}
		}
	}

	return s.jobs.GetDetails(ctx, job.ID)
}

// syncBookingFromJob propagates a job status milestone onto the linked
// booking. The update only fires when the booking sits at the exact
// predecessor state the rule requires; a mismatch is a silent no-op, since
// the booking may have advanced independently or the link may be stale.
// This makes duplicate and out-of-order sync calls self-discarding.
func (s *JobService) syncBookingFromJob(ctx context.Context, bookingID uuid.UUID, jobStatus model.JobStatus, now time.Time) error {
	rule, ok := workflow.SyncRuleFor(jobStatus)
	if !ok {
		return nil
	}

	advanced, err := s.bookings.UpdateStatusIf(ctx, bookingID, rule.Requires, rule.Next, now)
	if err != nil {
		return err
	}
	if !advanced {
		return nil
	}

	return s.history.AppendBooking(ctx, &model.BookingStatusHistory{
		BookingID: bookingID,
		Status:    rule.Next,
		Notes:     strPtr(fmt.Sprintf("advanced automatically: job reached %s", jobStatus)),
	})
}

// Cancel terminates a job outside the normal transition graph. The graph
// defines no inbound edge to cancelled for jobs, so cancellation is a
// deliberate administrative action rather than a driver transition.
func (s *JobService) Cancel(ctx context.Context, principal model.Principal, jobID uuid.UUID, notes *string) (*model.Job, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return nil, err
	}

	if job.Status == model.JobStatusCompleted || job.Status == model.JobStatusCancelled {
		return nil, fmt.Errorf("%w: job is already %s", ErrConflict, job.Status)
	}

	ok, err := s.jobs.UpdateStatusIf(ctx, job.ID, job.Status, model.JobStatusCancelled, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: job status changed concurrently, expected %s", ErrConflict, job.Status)
	}

	changedBy := principal.UserID
	if err := s.history.AppendJob(ctx, &model.JobStatusHistory{
		JobID:     job.ID,
		Status:    model.JobStatusCancelled,
		ChangedBy: &changedBy,
		Notes:     notes,
	}); err != nil {
		return nil, err
	}

	return s.jobs.GetDetails(ctx, job.ID)
}

func (s *JobService) Get(ctx context.Context, principal model.Principal, jobID uuid.UUID) (*model.Job, error) {
	job, err := s.jobs.GetDetails(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return nil, err
	}

	var booking *model.Booking
	if job.BookingID != nil && (principal.IsClient() || principal.IsReseller()) {
		booking, err = s.bookings.GetByID(ctx, *job.BookingID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	allowed, err := s.scope.CanAccessJob(ctx, principal, job, booking)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrPermissionDenied
	}

	return job, nil
}

type JobListInput struct {
	Status    *model.JobStatus
	BookingID *uuid.UUID
	Page      repository.Page
}

func (s *JobService) List(ctx context.Context, principal model.Principal, input JobListInput) ([]model.Job, int64, error) {
	filter, err := s.scope.JobFilter(ctx, principal)
	if err != nil {
		return nil, 0, err
	}
	filter.Status = input.Status
	filter.BookingID = input.BookingID

	return s.jobs.List(ctx, filter, input.Page)
}

// newErpJobNumber fabricates an external job reference. The real ERP
// integration is mocked; references only need to be unique and recognisable.
func newErpJobNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ERP-%s-%s", time.Now().Format("20060102"), id[:8])
}

func strPtr(s string) *string {
	return &s
}
