package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"itad-service/internal/model"
	"itad-service/internal/repository"
)

// ClientService manages the customer organisation records that booking
// visibility hangs off. Admins manage any client in their tenant; resellers
// onboard clients attached to themselves.
type ClientService struct {
	clients *repository.ClientRepository
}

func NewClientService(clients *repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

type CreateClientInput struct {
	Name  string
	Email string
}

func (s *ClientService) Create(ctx context.Context, principal model.Principal, input CreateClientInput) (*model.Client, error) {
	if !principal.IsAdmin() && !principal.IsReseller() {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}

	client := &model.Client{
		TenantID: principal.TenantID,
		Name:     name,
		Email:    email,
	}
	if principal.IsReseller() {
		resellerID := principal.UserID
		client.ResellerID = &resellerID
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
		}
		return nil, err
	}

	switch {
	case principal.IsAdmin():
	case principal.IsReseller():
		if client.TenantID != principal.TenantID ||
			client.ResellerID == nil || *client.ResellerID != principal.UserID {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, ErrPermissionDenied
	}

	return client, nil
}

func (s *ClientService) List(ctx context.Context, principal model.Principal) ([]model.Client, error) {
	switch {
	case principal.IsAdmin():
		return s.clients.ListByTenant(ctx, principal.TenantID)
	case principal.IsReseller():
		return s.clients.ListByReseller(ctx, principal.UserID, principal.TenantID)
	}
	return nil, ErrPermissionDenied
}
