package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
)

const inviteTTL = 7 * 24 * time.Hour

type UserService struct {
	users    UserStore
	evidence EvidenceStore
}

func NewUserService(users UserStore, evidence EvidenceStore) *UserService {
	return &UserService{users: users, evidence: evidence}
}

type CreateInviteInput struct {
	Email string
	Role  model.Role
}

func (s *UserService) CreateInvite(ctx context.Context, principal model.Principal, input CreateInviteInput) (*model.Invite, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	switch input.Role {
	case model.RoleAdmin, model.RoleClient, model.RoleReseller, model.RoleDriver:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	invite := &model.Invite{
		TenantID:  principal.TenantID,
		Email:     email,
		Role:      input.Role,
		Token:     strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		ExpiresAt: time.Now().Add(inviteTTL),
	}

	if err := s.users.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

type AcceptInviteInput struct {
	Token string
	Name  string
}

// AcceptInvite redeems an invite token, creating the user with the tenant
// and role the invite carries. Expired or already-redeemed tokens are
// rejected.
func (s *UserService) AcceptInvite(ctx context.Context, input AcceptInviteInput) (*model.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	invite, err := s.users.GetInviteByToken(ctx, strings.TrimSpace(input.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invite", ErrNotFound)
		}
		return nil, err
	}

	if invite.AcceptedAt != nil {
		return nil, fmt.Errorf("%w: invite already accepted", ErrConflict)
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, fmt.Errorf("%w: invite has expired", ErrInvalidInput)
	}

	user := &model.User{
		TenantID: invite.TenantID,
		Role:     invite.Role,
		Name:     strings.TrimSpace(input.Name),
		Email:    invite.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: a user with this email already exists", ErrConflict)
		}
		return nil, err
	}

	if err := s.users.MarkInviteAccepted(ctx, invite.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context, principal model.Principal) ([]model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.users.ListByTenant(ctx, principal.TenantID)
}

// Delete removes a user. Evidence the user uploaded is kept for audit
// continuity with uploaded_by nulled first.
func (s *UserService) Delete(ctx context.Context, principal model.Principal, userID uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return err
	}
	if user.TenantID != principal.TenantID {
		return ErrPermissionDenied
	}

	if err := s.evidence.NullUploadedBy(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}
