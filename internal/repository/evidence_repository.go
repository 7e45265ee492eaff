package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

// EvidenceRepository persists write-once evidence records. Uniqueness per
// (job_id, status) is backed by a unique index, so a racing double-submit
// surfaces as gorm.ErrDuplicatedKey rather than a second row.
type EvidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

func (r *EvidenceRepository) Create(ctx context.Context, evidence *model.Evidence) error {
	return r.db.WithContext(ctx).Create(evidence).Error
}

func (r *EvidenceRepository) GetByJobAndStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) (*model.Evidence, error) {
	var evidence model.Evidence
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND status = ?", jobID, status).
		First(&evidence).Error
	if err != nil {
		return nil, err
	}
	return &evidence, nil
}

func (r *EvidenceRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Evidence, error) {
	var rows []model.Evidence
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// NullUploadedBy detaches a removed user from their evidence records,
// preserving the records themselves for audit continuity.
func (r *EvidenceRepository) NullUploadedBy(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Evidence{}).
		Where("uploaded_by = ?", userID).
		Update("uploaded_by", nil).Error
}
