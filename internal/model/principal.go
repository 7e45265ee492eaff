package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleClient   Role = "client"
	RoleReseller Role = "reseller"
	RoleDriver   Role = "driver"
)

// Principal is the authenticated caller, resolved from the access token by
// the auth middleware. The core trusts these values as given.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
	Email    string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}

func (p Principal) IsReseller() bool {
	return p.Role == RoleReseller
}

func (p Principal) IsDriver() bool {
	return p.Role == RoleDriver
}
