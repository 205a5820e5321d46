package control

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ControlFieldUpdate is a partial update of a location's control fields.
// Nil fields are left untouched; an empty update is a no-op.
type ControlFieldUpdate struct {
	Customer            *string
	Status              *LocationStatus
	AssignmentTime      *time.Time
	ClearAssignmentTime bool
}

// IsEmpty reports whether the update carries no fields
func (u ControlFieldUpdate) IsEmpty() bool {
	return u.Customer == nil && u.Status == nil && u.AssignmentTime == nil && !u.ClearAssignmentTime
}

// LocationRepository persists location control state
type LocationRepository interface {
	FindByCode(ctx context.Context, code string) (*Location, error)
	FindAll(ctx context.Context) ([]Location, error)
	Save(ctx context.Context, location *Location) error
	// SaveControlState writes the control fields with an optimistic version
	// guard. Returns shared.ErrConcurrencyConflict when the stored version
	// no longer matches.
	SaveControlState(ctx context.Context, location *Location) error
	// UpdateControlFields applies a partial field set as a single atomic
	// write. An empty update succeeds without touching the row; an invalid
	// status fails without mutating state.
	UpdateControlFields(ctx context.Context, code string, fields ControlFieldUpdate) error
}

// ControlLogRepository appends and reads the exclusivity audit trail.
// There is deliberately no update or delete.
type ControlLogRepository interface {
	Append(ctx context.Context, entry *ControlLogEntry) error
	ListByLocation(ctx context.Context, location string, limit, offset int) ([]ControlLogEntry, error)
	CountByLocation(ctx context.Context, location string) (int64, error)
	ActivitySince(ctx context.Context, location string, since time.Time) ([]EventActivity, error)
}

// EventActivity aggregates control log entries of one event type over a window
type EventActivity struct {
	EventType EventType
	Count     int64
	LastEvent time.Time
}

// QuantitySource reads on-hand quantities from the external stock system:
// a maintained per-location aggregate view and, as fallback, the immutable
// ledger of signed stock movements.
type QuantitySource interface {
	// LevelTotal sums the aggregate view for the location. The bool reports
	// whether any rows existed, since a legitimate zero total is otherwise
	// indistinguishable from an unpopulated view.
	LevelTotal(ctx context.Context, location string) (decimal.Decimal, bool, error)
	// LedgerTotal sums signed quantities of non-cancelled, finalized ledger
	// entries for the location.
	LedgerTotal(ctx context.Context, location string) (decimal.Decimal, error)
	// LastMovementAt returns the posting time of the location's most recent
	// ledger entry, or nil when it has none.
	LastMovementAt(ctx context.Context, location string) (*time.Time, error)
	// MovementActivity aggregates ledger entries for the location since the
	// given time: how many movements posted and the absolute quantity moved.
	MovementActivity(ctx context.Context, location string, since time.Time) (MovementActivity, error)
}

// MovementActivity summarizes ledger traffic for a location over a window
type MovementActivity struct {
	Count      int64
	TotalMoved decimal.Decimal
}

// SourceDocumentLookup resolves the customer behind upstream documents
// referenced by transfer items.
type SourceDocumentLookup interface {
	CustomerOfSalesOrder(ctx context.Context, id string) (string, error)
	CustomerOfDeliveryNote(ctx context.Context, id string) (string, error)
	CustomerOfMaterialRequest(ctx context.Context, id string) (string, error)
}

// LocationLocker serializes the snapshot-read, decision and state-write for a
// single location. Acquire blocks until the lock is held or ctx is done; the
// returned function releases it.
type LocationLocker interface {
	Acquire(ctx context.Context, location string) (func(), error)
}
