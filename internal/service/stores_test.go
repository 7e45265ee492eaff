package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
	"itad-service/internal/repository"
)

// memStore holds in-memory state mirroring the repository layer's
// conditional-update and unique-index semantics. memJobs, memBookings and
// memEvidence adapt it to the store interfaces.
type memStore struct {
	jobs     map[uuid.UUID]*model.Job
	bookings map[uuid.UUID]*model.Booking
	jobHist  []model.JobStatusHistory
	bookHist []model.BookingStatusHistory
	evidence []*model.Evidence
	clients  []*model.Client
	users    map[uuid.UUID]*model.User
	invites  map[uuid.UUID]*model.Invite

	seq int

	// failNextJobConditional simulates losing a status-write race: the next
	// job conditional update matches zero rows.
	failNextJobConditional bool
	// skipEvidencePrecheck simulates the check-then-insert race by hiding
	// existing rows from GetByJobAndStatus.
	skipEvidencePrecheck bool
}

func newMemStore() *memStore {
	return &memStore{
		jobs:     make(map[uuid.UUID]*model.Job),
		bookings: make(map[uuid.UUID]*model.Booking),
		users:    make(map[uuid.UUID]*model.User),
		invites:  make(map[uuid.UUID]*model.Invite),
	}
}

func (m *memStore) nextTime() time.Time {
	m.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
}

func (m *memStore) addJob(job *model.Job) *model.Job {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	m.jobs[job.ID] = job
	return job
}

func (m *memStore) addBooking(booking *model.Booking) *model.Booking {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	m.bookings[booking.ID] = booking
	return booking
}

// HistoryStore

func (m *memStore) AppendJob(ctx context.Context, row *model.JobStatusHistory) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = m.nextTime()
	m.jobHist = append(m.jobHist, *row)
	return nil
}

func (m *memStore) AppendBooking(ctx context.Context, row *model.BookingStatusHistory) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = m.nextTime()
	m.bookHist = append(m.bookHist, *row)
	return nil
}

// ClientStore

func (m *memStore) GetByEmailAndTenant(ctx context.Context, email string, tenantID uuid.UUID) (*model.Client, error) {
	for _, c := range m.clients {
		if c.Email == email && c.TenantID == tenantID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) ListIDsByReseller(ctx context.Context, resellerID, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, c := range m.clients {
		if c.ResellerID != nil && *c.ResellerID == resellerID && c.TenantID == tenantID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// memJobs implements JobStore.
type memJobs struct{ *memStore }

func (m memJobs) Create(ctx context.Context, job *model.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	for i := range job.Assets {
		if job.Assets[i].ID == uuid.Nil {
			job.Assets[i].ID = uuid.New()
		}
		job.Assets[i].JobID = job.ID
	}
	copied := *job
	copied.Assets = append([]model.JobAsset(nil), job.Assets...)
	m.jobs[job.ID] = &copied
	return nil
}

func (m memJobs) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *job
	return &copied, nil
}

func (m memJobs) GetDetails(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	job.History = nil
	for i := len(m.jobHist) - 1; i >= 0; i-- {
		if m.jobHist[i].JobID == id {
			job.History = append(job.History, m.jobHist[i])
		}
	}
	job.Evidence = nil
	for _, e := range m.evidence {
		if e.JobID == id {
			job.Evidence = append(job.Evidence, *e)
		}
	}
	return job, nil
}

func (m memJobs) List(ctx context.Context, filter repository.JobListFilter, page repository.Page) ([]model.Job, int64, error) {
	var out []model.Job
	for _, job := range m.jobs {
		if filter.DriverID != nil && (job.DriverID == nil || *job.DriverID != *filter.DriverID) {
			continue
		}
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		out = append(out, *job)
	}
	return out, int64(len(out)), nil
}

func (m memJobs) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.JobStatus, now time.Time) (bool, error) {
	if m.failNextJobConditional {
		m.memStore.failNextJobConditional = false
		return false, nil
	}
	job, ok := m.jobs[id]
	if !ok || job.Status != expected {
		return false, nil
	}
	job.Status = next
	if next == model.JobStatusCompleted && job.CompletedDate == nil {
		t := now
		job.CompletedDate = &t
	}
	return true, nil
}

// memBookings implements BookingStore.
type memBookings struct{ *memStore }

func (m memBookings) Create(ctx context.Context, booking *model.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	for i := range booking.Assets {
		if booking.Assets[i].ID == uuid.Nil {
			booking.Assets[i].ID = uuid.New()
		}
		booking.Assets[i].BookingID = booking.ID
	}
	copied := *booking
	copied.Assets = append([]model.BookingAsset(nil), booking.Assets...)
	m.bookings[booking.ID] = &copied
	return nil
}

func (m memBookings) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m memBookings) GetDetails(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.History = nil
	for i := len(m.bookHist) - 1; i >= 0; i-- {
		if m.bookHist[i].BookingID == id {
			booking.History = append(booking.History, m.bookHist[i])
		}
	}
	return booking, nil
}

func (m memBookings) List(ctx context.Context, filter repository.BookingListFilter, page repository.Page) ([]model.Booking, int64, error) {
	var out []model.Booking
	for _, b := range m.bookings {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (m memBookings) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next model.BookingStatus, now time.Time) (bool, error) {
	booking, ok := m.bookings[id]
	if !ok || booking.Status != expected {
		return false, nil
	}
	booking.Status = next
	t := now
	switch next {
	case model.BookingStatusCollected:
		if booking.CollectedAt == nil {
			booking.CollectedAt = &t
		}
	case model.BookingStatusSanitised:
		if booking.SanitisedAt == nil {
			booking.SanitisedAt = &t
		}
	case model.BookingStatusGraded:
		if booking.GradedAt == nil {
			booking.GradedAt = &t
		}
	case model.BookingStatusCompleted:
		if booking.CompletedAt == nil {
			booking.CompletedAt = &t
		}
	}
	return true, nil
}

func (m memBookings) LinkJob(ctx context.Context, bookingID, jobID uuid.UUID) error {
	booking, ok := m.bookings[bookingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	booking.JobID = &jobID
	return nil
}

// memEvidence implements EvidenceStore.
type memEvidence struct{ *memStore }

func (m memEvidence) Create(ctx context.Context, evidence *model.Evidence) error {
	for _, e := range m.evidence {
		if e.JobID == evidence.JobID && e.Status == evidence.Status {
			return gorm.ErrDuplicatedKey
		}
	}
	if evidence.ID == uuid.Nil {
		evidence.ID = uuid.New()
	}
	copied := *evidence
	m.memStore.evidence = append(m.memStore.evidence, &copied)
	return nil
}

func (m memEvidence) GetByJobAndStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) (*model.Evidence, error) {
	if m.skipEvidencePrecheck {
		return nil, gorm.ErrRecordNotFound
	}
	for _, e := range m.evidence {
		if e.JobID == jobID && e.Status == status {
			copied := *e
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memEvidence) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Evidence, error) {
	var out []model.Evidence
	for _, e := range m.evidence {
		if e.JobID == jobID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// memUsers implements UserStore.
type memUsers struct{ *memStore }

func (m memUsers) Create(ctx context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m memUsers) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (m memUsers) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m memUsers) CreateInvite(ctx context.Context, invite *model.Invite) error {
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	copied := *invite
	m.invites[invite.ID] = &copied
	return nil
}

func (m memUsers) GetInviteByToken(ctx context.Context, token string) (*model.Invite, error) {
	for _, inv := range m.invites {
		if inv.Token == token {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memUsers) MarkInviteAccepted(ctx context.Context, id uuid.UUID) error {
	inv, ok := m.invites[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if inv.AcceptedAt == nil {
		t := m.nextTime()
		inv.AcceptedAt = &t
	}
	return nil
}

func (m memEvidence) NullUploadedBy(ctx context.Context, userID uuid.UUID) error {
	for _, e := range m.evidence {
		if e.UploadedBy != nil && *e.UploadedBy == userID {
			e.UploadedBy = nil
		}
	}
	return nil
}
