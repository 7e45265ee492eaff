package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

// EvidenceService is the append-only evidence ledger. Records are created
// once per (job, status) milestone and never updated or deleted; the
// storage layer backs the uniqueness with an index so racing submissions
// cannot both land.
type EvidenceService struct {
	evidence EvidenceStore
	jobs     JobStore
}

func NewEvidenceService(evidence EvidenceStore, jobs JobStore) *EvidenceService {
	return &EvidenceService{evidence: evidence, jobs: jobs}
}

type SubmitEvidenceInput struct {
	JobID       uuid.UUID
	Status      model.JobStatus
	Photos      []string
	Signature   *string
	SealNumbers []string
	Notes       *string
}

// Submit records proof of work for a job status milestone. The submission
// must carry at least one non-blank photo or a signature, and only one
// record may ever exist per (job, status).
func (s *EvidenceService) Submit(ctx context.Context, principal model.Principal, input SubmitEvidenceInput) (*model.Evidence, error) {
	job, err := s.jobs.GetByID(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, input.JobID)
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

	photos := filterBlank(input.Photos)
	sealNumbers := filterBlank(input.SealNumbers)
	signature := trimToNil(input.Signature)

	if len(photos) == 0 && signature == nil {
		return nil, fmt.Errorf("%w: evidence requires at least one photo or a signature", ErrInvalidInput)
	}

	if _, err := s.evidence.GetByJobAndStatus(ctx, input.JobID, input.Status); err == nil {
		return nil, fmt.Errorf("%w: evidence already recorded for status %s", ErrInvalidInput, input.Status)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	uploadedBy := principal.UserID
	evidence := &model.Evidence{
		JobID:       input.JobID,
		Status:      input.Status,
		Photos:      photos,
		Signature:   signature,
		SealNumbers: sealNumbers,
		Notes:       input.Notes,
		UploadedBy:  &uploadedBy,
	}

	if err := s.evidence.Create(ctx, evidence); err != nil {
		// the unique index catches the check-then-insert race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: evidence already recorded for status %s", ErrInvalidInput, input.Status)
		}
		return nil, err
	}

	return evidence, nil
}

func (s *EvidenceService) ListByJob(ctx context.Context, principal model.Principal, jobID uuid.UUID) ([]model.Evidence, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return nil, err
	}

	// clients and resellers read evidence through job details, which runs
	// the full scope check
	switch principal.Role {
	case model.RoleAdmin:
	case model.RoleDriver:
		if job.DriverID == nil || *job.DriverID != principal.UserID {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, ErrPermissionDenied
	}

	return s.evidence.ListByJob(ctx, jobID)
}

func filterBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
