package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindDriver   = "driver"
	KindCustomer = "customer"
)

// DriverProfile is the operational record of a driver. AccountID is the ownership
// link; it is null for profiles created before accounts existed.
type DriverProfile struct {
	ID            uuid.UUID     `json:"id"`
	AccountID     uuid.NullUUID `json:"-"`
	DisplayName   string        `json:"display_name"`
	Phone         string        `json:"phone"`
	LicenseNumber string        `json:"license_number"`
	Available     bool          `json:"available"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"`
}

func (d DriverProfile) ResourceKind() string   { return KindDriver }
func (d DriverProfile) ResourceID() uuid.UUID  { return d.ID }
func (d DriverProfile) OwnerID() uuid.NullUUID { return d.AccountID }

// CustomerProfile is the operational record of a customer needing rides home.
type CustomerProfile struct {
	ID          uuid.UUID     `json:"id"`
	AccountID   uuid.NullUUID `json:"-"`
	DisplayName string        `json:"display_name"`
	Phone       string        `json:"phone"`
	HomeAddress string        `json:"home_address"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

func (c CustomerProfile) ResourceKind() string   { return KindCustomer }
func (c CustomerProfile) ResourceID() uuid.UUID  { return c.ID }
func (c CustomerProfile) OwnerID() uuid.NullUUID { return c.AccountID }
