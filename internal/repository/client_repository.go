package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByEmailAndTenant resolves the client record a client-role user belongs
// to. The scope resolver uses this to compute client visibility.
func (r *ClientRepository) GetByEmailAndTenant(ctx context.Context, email string, tenantID uuid.UUID) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).
		Where("email = ? AND tenant_id = ?", email, tenantID).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// ListIDsByReseller returns the ids of clients belonging to a reseller
// within the reseller's own tenant.
func (r *ClientRepository) ListIDsByReseller(ctx context.Context, resellerID, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("reseller_id = ? AND tenant_id = ?", resellerID, tenantID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ClientRepository) ListByReseller(ctx context.Context, resellerID, tenantID uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).
		Where("reseller_id = ? AND tenant_id = ?", resellerID, tenantID).
		Order("created_at DESC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
