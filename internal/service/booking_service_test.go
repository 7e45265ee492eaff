package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"itad-service/internal/model"
)

func newBookingTestEnv() (*memStore, *BookingService) {
	store := newMemStore()
	scope := NewScopeResolver(store)
	svc := NewBookingService(memBookings{store}, store, scope, nil, zerolog.Nop())
	return store, svc
}

func clientPrincipal(tenantID uuid.UUID, email string) model.Principal {
	return model.Principal{UserID: uuid.New(), TenantID: tenantID, Role: model.RoleClient, Email: email}
}

func TestCreateBookingEstimatesAndRecordsHistory(t *testing.T) {
	_, svc := newBookingTestEnv()
	principal := clientPrincipal(uuid.New(), "ops@acme.example")

	booking, err := svc.Create(context.Background(), principal, CreateBookingInput{
		SiteAddress:    " 1 Example Way ",
		ContactName:    "Sam Ops",
		CharityPercent: 10,
		Assets: []BookingAssetInput{
			{Category: " Laptop ", Quantity: 10},
			{Category: "server", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if booking.Status != model.BookingStatusCreated {
		t.Fatalf("expected created, got %s", booking.Status)
	}
	if booking.TenantID != principal.TenantID || booking.CreatedBy != principal.UserID {
		t.Fatalf("expected tenant and creator stamped from principal")
	}
	if booking.SiteAddress != "1 Example Way" {
		t.Fatalf("expected trimmed site address, got %q", booking.SiteAddress)
	}
	if booking.Assets[0].Category != "laptop" {
		t.Fatalf("expected normalised category, got %q", booking.Assets[0].Category)
	}

	wantCO2e, wantBuyback := EstimateAssets(booking.Assets)
	if !booking.EstimatedCO2e.Equal(wantCO2e) || !booking.EstimatedBuyback.Equal(wantBuyback) {
		t.Fatalf("estimates %s / %s do not match asset lines %s / %s",
			booking.EstimatedCO2e, booking.EstimatedBuyback, wantCO2e, wantBuyback)
	}
	if booking.EstimatedCO2e.LessThanOrEqual(decimal.Zero) {
		t.Fatalf("expected positive co2e estimate, got %s", booking.EstimatedCO2e)
	}

	if len(booking.History) != 1 {
		t.Fatalf("expected one history row, got %d", len(booking.History))
	}
	if booking.History[0].Status != model.BookingStatusCreated {
		t.Fatalf("expected created history row, got %s", booking.History[0].Status)
	}
	if booking.History[0].ChangedBy == nil || *booking.History[0].ChangedBy != principal.UserID {
		t.Fatalf("expected history attributed to the creator")
	}
}

func TestCreateBookingValidation(t *testing.T) {
	_, svc := newBookingTestEnv()
	principal := clientPrincipal(uuid.New(), "ops@acme.example")

	cases := []struct {
		name  string
		input CreateBookingInput
	}{
		{"no assets", CreateBookingInput{SiteAddress: "addr"}},
		{"charity over 100", CreateBookingInput{SiteAddress: "addr", CharityPercent: 101, Assets: []BookingAssetInput{{Category: "laptop", Quantity: 1}}}},
		{"blank site address", CreateBookingInput{SiteAddress: "  ", Assets: []BookingAssetInput{{Category: "laptop", Quantity: 1}}}},
		{"zero quantity", CreateBookingInput{SiteAddress: "addr", Assets: []BookingAssetInput{{Category: "laptop", Quantity: 0}}}},
		{"blank category", CreateBookingInput{SiteAddress: "addr", Assets: []BookingAssetInput{{Category: " ", Quantity: 1}}}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), principal, tc.input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	driver := driverPrincipal(uuid.New())
	_, err := svc.Create(context.Background(), driver, CreateBookingInput{
		SiteAddress: "addr",
		Assets:      []BookingAssetInput{{Category: "laptop", Quantity: 1}},
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for driver, got %v", err)
	}
}

func TestBookingUpdateStatusIsAdminOverride(t *testing.T) {
	store, svc := newBookingTestEnv()
	tenantID := uuid.New()
	booking := store.addBooking(&model.Booking{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedBy: uuid.New(),
		Status:    model.BookingStatusScheduled,
	})

	client := clientPrincipal(tenantID, "ops@acme.example")
	if _, err := svc.UpdateStatus(context.Background(), client, booking.ID, model.BookingStatusCollected, nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for client, got %v", err)
	}

	admin := adminPrincipal(tenantID)
	if _, err := svc.UpdateStatus(context.Background(), admin, booking.ID, model.BookingStatusGraded, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for skipped stage, got %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), admin, booking.ID, model.BookingStatusCollected, nil)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Status != model.BookingStatusCollected {
		t.Fatalf("expected collected, got %s", updated.Status)
	}
	if updated.CollectedAt == nil {
		t.Fatalf("expected collected_at stamped")
	}
}

func TestBookingCancelOnlyBeforeCollection(t *testing.T) {
	store, svc := newBookingTestEnv()
	tenantID := uuid.New()
	creator := clientPrincipal(tenantID, "ops@acme.example")

	booking := store.addBooking(&model.Booking{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedBy: creator.UserID,
		Status:    model.BookingStatusScheduled,
	})

	cancelled, err := svc.Cancel(context.Background(), creator, booking.ID, nil)
	if err != nil {
		t.Fatalf("cancel own booking: %v", err)
	}
	if cancelled.Status != model.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	collected := store.addBooking(&model.Booking{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedBy: creator.UserID,
		Status:    model.BookingStatusCollected,
	})
	if _, err := svc.Cancel(context.Background(), adminPrincipal(tenantID), collected.ID, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput cancelling collected booking, got %v", err)
	}

	other := store.addBooking(&model.Booking{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedBy: uuid.New(),
		Status:    model.BookingStatusCreated,
	})
	if _, err := svc.Cancel(context.Background(), creator, other.ID, nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for foreign booking, got %v", err)
	}
}

func TestBookingGetDeniedToDrivers(t *testing.T) {
	store, svc := newBookingTestEnv()
	booking := store.addBooking(&model.Booking{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		CreatedBy: uuid.New(),
		Status:    model.BookingStatusCreated,
	})

	if _, err := svc.Get(context.Background(), driverPrincipal(uuid.New()), booking.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for driver, got %v", err)
	}
	if _, err := svc.Get(context.Background(), adminPrincipal(booking.TenantID), booking.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(context.Background(), adminPrincipal(booking.TenantID), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
