package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"itad-service/internal/model"
)

func newUserTestEnv() (*memStore, *UserService) {
	store := newMemStore()
	return store, NewUserService(memUsers{store}, memEvidence{store})
}

func seedUser(store *memStore, tenantID uuid.UUID, role model.Role, email string) *model.User {
	user := &model.User{
		ID:       uuid.New(),
		TenantID: tenantID,
		Role:     role,
		Name:     "Test User",
		Email:    email,
	}
	store.users[user.ID] = user
	return user
}

func seedInvite(store *memStore, tenantID uuid.UUID, role model.Role, expiresAt time.Time) *model.Invite {
	invite := &model.Invite{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     "invitee@example.com",
		Role:      role,
		Token:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		ExpiresAt: expiresAt,
	}
	store.invites[invite.ID] = invite
	return invite
}

func TestDeleteUserNullsEvidenceUploader(t *testing.T) {
	store, svc := newUserTestEnv()
	ctx := context.Background()

	tenantID := uuid.New()
	admin := adminPrincipal(tenantID)
	driver := seedUser(store, tenantID, model.RoleDriver, "driver@example.com")
	other := seedUser(store, tenantID, model.RoleDriver, "other@example.com")

	jobID := uuid.New()
	for _, e := range []*model.Evidence{
		{ID: uuid.New(), JobID: jobID, Status: model.JobStatusCollected, UploadedBy: &driver.ID},
		{ID: uuid.New(), JobID: jobID, Status: model.JobStatusWarehouse, UploadedBy: &driver.ID},
		{ID: uuid.New(), JobID: jobID, Status: model.JobStatusSanitised, UploadedBy: &other.ID},
	} {
		store.evidence = append(store.evidence, e)
	}

	if err := svc.Delete(ctx, admin, driver.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := store.users[driver.ID]; ok {
		t.Fatalf("expected user to be removed")
	}
	if len(store.evidence) != 3 {
		t.Fatalf("expected evidence records to survive, got %d", len(store.evidence))
	}
	for _, e := range store.evidence {
		switch e.Status {
		case model.JobStatusCollected, model.JobStatusWarehouse:
			if e.UploadedBy != nil {
				t.Fatalf("expected uploaded_by nulled on %s evidence, got %v", e.Status, *e.UploadedBy)
			}
		case model.JobStatusSanitised:
			if e.UploadedBy == nil || *e.UploadedBy != other.ID {
				t.Fatalf("expected other driver's evidence untouched")
			}
		}
	}
}

func TestDeleteUserPermissions(t *testing.T) {
	store, svc := newUserTestEnv()
	ctx := context.Background()

	tenantID := uuid.New()
	user := seedUser(store, tenantID, model.RoleDriver, "driver@example.com")

	if err := svc.Delete(ctx, driverPrincipal(uuid.New()), user.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied for driver, got %v", err)
	}
	if err := svc.Delete(ctx, adminPrincipal(uuid.New()), user.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied across tenants, got %v", err)
	}
	if err := svc.Delete(ctx, adminPrincipal(tenantID), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
	if _, ok := store.users[user.ID]; !ok {
		t.Fatalf("expected user to remain after rejected deletes")
	}
}

func TestAcceptInviteCreatesUser(t *testing.T) {
	store, svc := newUserTestEnv()
	ctx := context.Background()

	tenantID := uuid.New()
	invite := seedInvite(store, tenantID, model.RoleClient, time.Now().Add(time.Hour))

	user, err := svc.AcceptInvite(ctx, AcceptInviteInput{Token: invite.Token, Name: "  Jamie Ops  "})
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if user.TenantID != tenantID || user.Role != model.RoleClient {
		t.Fatalf("expected tenant and role from invite, got %s/%s", user.TenantID, user.Role)
	}
	if user.Name != "Jamie Ops" || user.Email != invite.Email {
		t.Fatalf("unexpected user identity: %q %q", user.Name, user.Email)
	}
	if store.invites[invite.ID].AcceptedAt == nil {
		t.Fatalf("expected invite to be marked accepted")
	}

	_, err = svc.AcceptInvite(ctx, AcceptInviteInput{Token: invite.Token, Name: "Second Taker"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on second redemption, got %v", err)
	}
}

func TestAcceptInviteRejectsExpired(t *testing.T) {
	store, svc := newUserTestEnv()
	ctx := context.Background()

	invite := seedInvite(store, uuid.New(), model.RoleDriver, time.Now().Add(-time.Minute))

	_, err := svc.AcceptInvite(ctx, AcceptInviteInput{Token: invite.Token, Name: "Too Late"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for expired invite, got %v", err)
	}
	if len(store.users) != 0 {
		t.Fatalf("expected no user created from expired invite")
	}
}

func TestAcceptInviteValidation(t *testing.T) {
	store, svc := newUserTestEnv()
	ctx := context.Background()

	if _, err := svc.AcceptInvite(ctx, AcceptInviteInput{Token: "whatever", Name: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank name, got %v", err)
	}
	if _, err := svc.AcceptInvite(ctx, AcceptInviteInput{Token: "no-such-token", Name: "Someone"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown token, got %v", err)
	}

	invite := seedInvite(store, uuid.New(), model.RoleClient, time.Now().Add(time.Hour))
	seedUser(store, invite.TenantID, model.RoleClient, invite.Email)
	if _, err := svc.AcceptInvite(ctx, AcceptInviteInput{Token: invite.Token, Name: "Dup Email"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for existing email, got %v", err)
	}
}

func TestCreateInviteValidation(t *testing.T) {
	store, svc := newUserTestEnv()
	ctx := context.Background()

	tenantID := uuid.New()
	admin := adminPrincipal(tenantID)

	if _, err := svc.CreateInvite(ctx, driverPrincipal(uuid.New()), CreateInviteInput{Email: "a@b.com", Role: model.RoleDriver}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied for driver, got %v", err)
	}
	if _, err := svc.CreateInvite(ctx, admin, CreateInviteInput{Email: "not-an-email", Role: model.RoleDriver}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for bad email, got %v", err)
	}
	if _, err := svc.CreateInvite(ctx, admin, CreateInviteInput{Email: "a@b.com", Role: model.Role("janitor")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown role, got %v", err)
	}

	invite, err := svc.CreateInvite(ctx, admin, CreateInviteInput{Email: "  New@Example.COM ", Role: model.RoleReseller})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	if invite.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", invite.Email)
	}
	if invite.TenantID != tenantID || invite.Role != model.RoleReseller {
		t.Fatalf("unexpected invite scope: %s/%s", invite.TenantID, invite.Role)
	}
	if invite.Token == "" || !invite.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected a token and a future expiry")
	}
	if _, ok := store.invites[invite.ID]; !ok {
		t.Fatalf("expected invite persisted")
	}
}
