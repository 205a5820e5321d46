package control

import (
	"strings"
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/shared"
)

// LocationStatus represents the occupancy status of a storage location
type LocationStatus string

const (
	LocationStatusAvailable LocationStatus = "Available"
	LocationStatusReserved  LocationStatus = "Reserved"
)

// IsValid checks whether the status is a known value
func (s LocationStatus) IsValid() bool {
	return s == LocationStatusAvailable || s == LocationStatusReserved
}

// ControlMode determines how exclusivity violations are enforced for a location
type ControlMode string

const (
	ControlModeDisabled ControlMode = "Disabled"
	ControlModeWarning  ControlMode = "Warning"
	// ControlModeStrict is declared for future hard-block enforcement.
	// It currently behaves the same as Warning.
	ControlModeStrict ControlMode = "Strict"
)

// IsValid checks whether the mode is a known value
func (m ControlMode) IsValid() bool {
	return m == ControlModeDisabled || m == ControlModeWarning || m == ControlModeStrict
}

// Enabled reports whether exclusivity control applies under this mode
func (m ControlMode) Enabled() bool {
	return m == ControlModeWarning || m == ControlModeStrict
}

// Location represents a physical storage unit whose exclusive-occupant state
// this service manages. It is the aggregate root for exclusivity control.
// Locations are created by the surrounding warehouse system; this service
// only mutates the control fields.
type Location struct {
	shared.BaseAggregateRoot
	Code             string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name             string         `gorm:"type:varchar(255);not null"`
	AssignedCustomer string         `gorm:"type:varchar(140);index"` // empty = unoccupied
	Status           LocationStatus `gorm:"type:varchar(16);not null;default:'Available'"`
	LastAssignmentAt *time.Time
	ControlMode      ControlMode `gorm:"type:varchar(16);not null;default:'Warning'"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "storage_locations"
}

// NewLocation creates a new storage location with control defaults
func NewLocation(code, name string) (*Location, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location code cannot be empty")
	}

	return &Location{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            LocationStatusAvailable,
		ControlMode:       ControlModeWarning,
	}, nil
}

// EffectiveControlMode resolves the stored control mode, defaulting to Warning
// for records created before the control fields existed.
func (l *Location) EffectiveControlMode() ControlMode {
	if !l.ControlMode.IsValid() {
		return ControlModeWarning
	}
	return l.ControlMode
}

// IsOccupied reports whether a customer currently holds the location
func (l *Location) IsOccupied() bool {
	return l.AssignedCustomer != ""
}

// Assign reserves the location for a customer. Re-applying an assignment with
// identical target state is a no-op; the returned bool reports whether state
// actually changed.
func (l *Location) Assign(customer string, at time.Time) (bool, error) {
	if customer == "" {
		return false, shared.NewDomainError("INVALID_CUSTOMER", "Customer cannot be empty")
	}

	if l.AssignedCustomer == customer && l.Status == LocationStatusReserved {
		return false, nil
	}

	l.AssignedCustomer = customer
	l.Status = LocationStatusReserved
	l.LastAssignmentAt = &at
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return true, nil
}

// Release clears the occupant and makes the location available again.
// Releasing an already-available location is a no-op.
func (l *Location) Release() bool {
	if l.AssignedCustomer == "" && l.Status == LocationStatusAvailable {
		return false
	}

	l.AssignedCustomer = ""
	l.Status = LocationStatusAvailable
	l.LastAssignmentAt = nil
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return true
}
