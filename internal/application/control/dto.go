package control

import (
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/shopspring/decimal"
)

// ItemResult is the outcome of evaluating one transaction item against its
// location. Warning is non-empty only for warn decisions; everything else is
// silent toward the end user.
type ItemResult struct {
	ItemCode  string          `json:"item_code"`
	Location  string          `json:"location"`
	Action    control.Action  `json:"action"`
	Reason    string          `json:"reason"`
	Customer  string          `json:"customer,omitempty"`
	QtyBefore decimal.Decimal `json:"qty_before"`
	Warning   string          `json:"warning,omitempty"`
}

// LocationSummary composes the on-hand quantity with the persisted control
// fields of a location.
type LocationSummary struct {
	Location         string                     `json:"location"`
	Name             string                     `json:"name"`
	Quantity         decimal.Decimal            `json:"quantity"`
	QuantitySource   control.QuantitySourceKind `json:"quantity_source"`
	AssignedCustomer string                     `json:"assigned_customer,omitempty"`
	Status           control.LocationStatus     `json:"status"`
	LastAssignmentAt *time.Time                 `json:"last_assignment_at,omitempty"`
	ControlMode      control.ControlMode        `json:"control_mode"`
}
