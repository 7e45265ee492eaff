package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"itad-service/internal/model"
	"itad-service/internal/repository"
)

// Store interfaces are defined here, on the consuming side, and satisfied
// by the repository structs. Services never touch *gorm.DB directly, which
// keeps the workflow logic testable against in-memory stores.

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context, filter repository.BookingListFilter, page repository.Page) ([]model.Booking, int64, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.BookingStatus, now time.Time) (bool, error)
	LinkJob(ctx context.Context, bookingID, jobID uuid.UUID) error
}

type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter repository.JobListFilter, page repository.Page) ([]model.Job, int64, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.JobStatus, now time.Time) (bool, error)
}

type HistoryStore interface {
	AppendBooking(ctx context.Context, row *model.BookingStatusHistory) error
	AppendJob(ctx context.Context, row *model.JobStatusHistory) error
}

type EvidenceStore interface {
	Create(ctx context.Context, evidence *model.Evidence) error
	GetByJobAndStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) (*model.Evidence, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Evidence, error)
	NullUploadedBy(ctx context.Context, userID uuid.UUID) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateInvite(ctx context.Context, invite *model.Invite) error
	GetInviteByToken(ctx context.Context, token string) (*model.Invite, error)
	MarkInviteAccepted(ctx context.Context, id uuid.UUID) error
}

type ClientStore interface {
	GetByEmailAndTenant(ctx context.Context, email string, tenantID uuid.UUID) (*model.Client, error)
	ListIDsByReseller(ctx context.Context, resellerID, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// Notifier records in-app notifications. Recording is best-effort from the
// workflow's point of view; failures are logged, never fatal to the
// operation that triggered them.
type Notifier interface {
	Record(ctx context.Context, userID, tenantID uuid.UUID, kind model.NotificationKind, message string) error
}
