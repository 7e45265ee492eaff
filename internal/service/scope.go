package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
	"itad-service/internal/repository"
)

// ScopeResolver computes the visibility filter for a caller's role. It is
// consulted by every list/get operation before any mutation logic runs and
// never performs mutations itself.
//
//   - admin: unrestricted, across tenants.
//   - driver: jobs assigned to them, with no tenant restriction (a driver
//     may be dispatched to bookings originating in other tenants).
//   - client: bookings/jobs owned by the client record their email resolves
//     to within their tenant, or bookings they submitted themselves.
//   - reseller: bookings/jobs of client records they onboarded, within
//     their own tenant.
type ScopeResolver struct {
	clients ClientStore
}

func NewScopeResolver(clients ClientStore) *ScopeResolver {
	return &ScopeResolver{clients: clients}
}

func (s *ScopeResolver) BookingFilter(ctx context.Context, principal model.Principal) (repository.BookingListFilter, error) {
	filter := repository.BookingListFilter{}

	switch principal.Role {
	case model.RoleAdmin:
	case model.RoleDriver:
		driverID := principal.UserID
		filter.DriverID = &driverID
	case model.RoleClient:
		tenantID := principal.TenantID
		createdBy := principal.UserID
		filter.TenantID = &tenantID
		filter.CreatedBy = &createdBy
		client, err := s.clients.GetByEmailAndTenant(ctx, principal.Email, principal.TenantID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return filter, err
			}
			// no client record: visibility falls back to own submissions
		} else {
			clientID := client.ID
			filter.ClientID = &clientID
		}
	case model.RoleReseller:
		tenantID := principal.TenantID
		filter.TenantID = &tenantID
		ids, err := s.clients.ListIDsByReseller(ctx, principal.UserID, principal.TenantID)
		if err != nil {
			return filter, err
		}
		if ids == nil {
			ids = []uuid.UUID{}
		}
		filter.ClientIDs = ids
	default:
		return filter, ErrPermissionDenied
	}

	return filter, nil
}

func (s *ScopeResolver) JobFilter(ctx context.Context, principal model.Principal) (repository.JobListFilter, error) {
	bookingFilter, err := s.BookingFilter(ctx, principal)
	if err != nil {
		return repository.JobListFilter{}, err
	}
	return repository.JobListFilter{
		TenantID:  bookingFilter.TenantID,
		DriverID:  bookingFilter.DriverID,
		ClientID:  bookingFilter.ClientID,
		ClientIDs: bookingFilter.ClientIDs,
		CreatedBy: bookingFilter.CreatedBy,
	}, nil
}

// CanAccessBooking decides single-record access using the same rules as the
// list filters.
func (s *ScopeResolver) CanAccessBooking(ctx context.Context, principal model.Principal, booking *model.Booking) (bool, error) {
	switch principal.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleClient:
		if booking.TenantID != principal.TenantID {
			return false, nil
		}
		if booking.CreatedBy == principal.UserID {
			return true, nil
		}
		client, err := s.clients.GetByEmailAndTenant(ctx, principal.Email, principal.TenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return booking.ClientID != nil && *booking.ClientID == client.ID, nil
	case model.RoleReseller:
		if booking.TenantID != principal.TenantID || booking.ClientID == nil {
			return false, nil
		}
		ids, err := s.clients.ListIDsByReseller(ctx, principal.UserID, principal.TenantID)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if id == *booking.ClientID {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

// CanAccessJob decides single-record access to a job. Drivers see their own
// jobs; clients and resellers see jobs through the linked booking, which
// the caller supplies (nil when the job has none).
func (s *ScopeResolver) CanAccessJob(ctx context.Context, principal model.Principal, job *model.Job, booking *model.Booking) (bool, error) {
	switch principal.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleDriver:
		return job.DriverID != nil && *job.DriverID == principal.UserID, nil
	case model.RoleClient, model.RoleReseller:
		if booking == nil {
			return false, nil
		}
		return s.CanAccessBooking(ctx, principal, booking)
	}
	return false, nil
}
