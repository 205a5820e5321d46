package control

import (
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventType classifies a control log entry
type EventType string

const (
	EventAssignment EventType = "Assignment"
	EventWarning    EventType = "Warning"
	EventRelease    EventType = "Release"
)

// ControlLogEntry is one append-only audit record of an exclusivity
// transition. Entries are immutable once written; no update or delete
// operation exists anywhere in this service.
type ControlLogEntry struct {
	shared.BaseEntity
	Location         string          `gorm:"type:varchar(64);not null;index"`
	EventType        EventType       `gorm:"type:varchar(16);not null;index"`
	TransactionType  DocumentType    `gorm:"type:varchar(32);not null"`
	TransactionID    string          `gorm:"type:varchar(140);not null"`
	PreviousCustomer string          `gorm:"type:varchar(140)"`
	NewCustomer      string          `gorm:"type:varchar(140)"`
	QtyBefore        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyAfter         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ActingUser       string          `gorm:"type:varchar(140);not null"`
	OccurredAt       time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ControlLogEntry) TableName() string {
	return "location_control_log"
}

// NewAssignmentEntry records a location being claimed for a customer
func NewAssignmentEntry(location, customer string, txnType DocumentType, txnID string, qtyBefore, qtyAfter decimal.Decimal, actingUser string) *ControlLogEntry {
	return newEntry(location, EventAssignment, txnType, txnID, "", customer, qtyBefore, qtyAfter, actingUser)
}

// NewWarningEntry records a detected customer-mixing attempt. The quantity
// does not change as part of a warning.
func NewWarningEntry(location, assignedCustomer, attemptingCustomer string, txnType DocumentType, txnID string, qtyBefore decimal.Decimal, actingUser string) *ControlLogEntry {
	return newEntry(location, EventWarning, txnType, txnID, assignedCustomer, attemptingCustomer, qtyBefore, qtyBefore, actingUser)
}

// NewReleaseEntry records a location being released from its occupant
func NewReleaseEntry(location, releasedCustomer string, txnType DocumentType, txnID string, qtyBefore decimal.Decimal, actingUser string) *ControlLogEntry {
	return newEntry(location, EventRelease, txnType, txnID, releasedCustomer, "", qtyBefore, decimal.Zero, actingUser)
}

func newEntry(location string, event EventType, txnType DocumentType, txnID, prevCustomer, newCustomer string, qtyBefore, qtyAfter decimal.Decimal, actingUser string) *ControlLogEntry {
	return &ControlLogEntry{
		BaseEntity:       shared.NewBaseEntity(),
		Location:         location,
		EventType:        event,
		TransactionType:  txnType,
		TransactionID:    txnID,
		PreviousCustomer: prevCustomer,
		NewCustomer:      newCustomer,
		QtyBefore:        qtyBefore,
		QtyAfter:         qtyAfter,
		ActingUser:       actingUser,
		OccurredAt:       time.Now(),
	}
}
