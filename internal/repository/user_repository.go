package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *UserRepository) CreateInvite(ctx context.Context, invite *model.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *UserRepository) GetInviteByToken(ctx context.Context, token string) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *UserRepository) MarkInviteAccepted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Invite{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Update("accepted_at", gorm.Expr("NOW()")).Error
}
