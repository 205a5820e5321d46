package control

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Action classifies how a transaction-item should be treated against a location
type Action string

const (
	// ActionSkip means the evaluation cannot or must not proceed (missing
	// location or customer, control disabled). No state change, no log entry.
	ActionSkip Action = "skip"
	// ActionAllow means the same occupant is using its own location. Silent.
	ActionAllow Action = "allow"
	// ActionAssign claims the location for the acting customer.
	ActionAssign Action = "assign"
	// ActionWarn flags customer mixing without blocking the transaction.
	ActionWarn Action = "warn"
	// ActionTrack defers the outgoing decision to a post-transaction
	// quantity recheck, which may turn into a release.
	ActionTrack Action = "track"
)

// Decision is the engine's output for one (location, transaction, item) tuple.
// It is immutable, produced fresh per evaluation, and consumed once by the
// transition executor and the audit logger.
type Decision struct {
	Action           Action
	Reason           string
	Location         string
	Customer         string
	AssignedCustomer string
	QtyBefore        decimal.Decimal
}

// Decide computes the exclusivity action for one transaction-item. It is a
// pure function over the location snapshot: no lookups, no side effects.
//
// For incoming movements the checks are ordered: an empty location is claimed
// before the occupant is compared, since an empty location cannot have a
// meaningful prior occupant.
func Decide(location *Location, snapshot QuantitySnapshot, customer string, direction Direction) Decision {
	if location == nil {
		return Decision{Action: ActionSkip, Reason: "unknown location"}
	}

	d := Decision{
		Location:         location.Code,
		Customer:         customer,
		AssignedCustomer: location.AssignedCustomer,
		QtyBefore:        snapshot.Quantity,
	}

	if !location.EffectiveControlMode().Enabled() {
		d.Action = ActionSkip
		d.Reason = "control disabled for location"
		return d
	}

	// Release depends only on post-movement quantity and occupancy, so an
	// outgoing movement is tracked even when no customer resolves; the
	// customer only feeds the audit trail.
	if direction == DirectionOutgoing {
		d.Action = ActionTrack
		d.Reason = "outgoing movement, release decided after posting"
		return d
	}

	if customer == "" {
		d.Action = ActionSkip
		d.Reason = "no customer could be resolved"
		return d
	}

	switch {
	case snapshot.Quantity.IsZero():
		d.Action = ActionAssign
		d.Reason = "location empty, claiming for customer"
	case location.AssignedCustomer == customer:
		d.Action = ActionAllow
		d.Reason = "same customer"
	case !location.IsOccupied():
		// Stock exists with no recorded occupant: repair the invariant by
		// attributing it to the current customer.
		d.Action = ActionAssign
		d.Reason = "stock present without occupant, self-healing"
	default:
		d.Action = ActionWarn
		d.Reason = fmt.Sprintf("location assigned to %s, attempted by %s", location.AssignedCustomer, customer)
	}

	return d
}

// WarningMessage renders the human-readable, non-blocking warning surfaced to
// the acting user when customer mixing is detected.
func (d Decision) WarningMessage() string {
	return fmt.Sprintf(
		"Location %s is currently assigned to %s and contains stock. Using it for %s may cause inconsistencies.",
		d.Location, d.AssignedCustomer, d.Customer,
	)
}
