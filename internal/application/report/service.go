package report

import (
	"context"
	"time"

	controlapp "github.com/nedlog/warehouse-control/internal/application/control"
	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultActivityWindowDays is the trailing window for activity summaries
const DefaultActivityWindowDays = 30

// StatusFilter narrows the location status report
type StatusFilter struct {
	Location string
	Customer string
	Status   control.LocationStatus
}

// StatusRow is one line of the location/customer status report
type StatusRow struct {
	Location         string                 `json:"location"`
	Name             string                 `json:"name"`
	AssignedCustomer string                 `json:"assigned_customer,omitempty"`
	Status           control.LocationStatus `json:"status"`
	TotalQuantity    decimal.Decimal        `json:"total_quantity"`
	LastAssignmentAt *time.Time             `json:"last_assignment_at,omitempty"`
	LastMovementAt   *time.Time             `json:"last_movement_at,omitempty"`
	ControlMode      control.ControlMode    `json:"control_mode"`
}

// EventSummary aggregates one event type over the activity window
type EventSummary struct {
	Count     int64     `json:"count"`
	LastEvent time.Time `json:"last_event"`
}

// ActivitySummary is the per-location dashboard aggregation: control events
// and ledger traffic over a trailing window.
type ActivitySummary struct {
	Location      string                             `json:"location"`
	PeriodDays    int                                `json:"period_days"`
	Events        map[control.EventType]EventSummary `json:"events"`
	MovementCount int64                              `json:"movement_count"`
	TotalQtyMoved decimal.Decimal                    `json:"total_qty_moved"`
}

// Service produces the read-side views over control state and the audit log.
// These aggregations are advisory; the log itself is the record of truth.
type Service struct {
	locations control.LocationRepository
	logs      control.ControlLogRepository
	stock     control.QuantitySource
	oracle    *controlapp.QuantityOracle
	logger    *zap.Logger
}

// NewService creates a new report Service
func NewService(
	locations control.LocationRepository,
	logs control.ControlLogRepository,
	stock control.QuantitySource,
	oracle *controlapp.QuantityOracle,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		locations: locations,
		logs:      logs,
		stock:     stock,
		oracle:    oracle,
		logger:    logger,
	}
}

// LocationStatus lists every location with its occupant, on-hand quantity and
// movement recency, optionally filtered.
func (s *Service) LocationStatus(ctx context.Context, filter StatusFilter) ([]StatusRow, error) {
	locations, err := s.locations.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]StatusRow, 0, len(locations))
	for i := range locations {
		loc := &locations[i]
		if filter.Location != "" && loc.Code != filter.Location {
			continue
		}
		if filter.Customer != "" && loc.AssignedCustomer != filter.Customer {
			continue
		}
		if filter.Status != "" && loc.Status != filter.Status {
			continue
		}

		snap := s.oracle.Snapshot(ctx, loc.Code)

		lastMovement, err := s.stock.LastMovementAt(ctx, loc.Code)
		if err != nil {
			s.logger.Warn("last movement lookup failed",
				zap.String("location", loc.Code),
				zap.Error(err),
			)
			lastMovement = nil
		}

		rows = append(rows, StatusRow{
			Location:         loc.Code,
			Name:             loc.Name,
			AssignedCustomer: loc.AssignedCustomer,
			Status:           loc.Status,
			TotalQuantity:    snap.Quantity,
			LastAssignmentAt: loc.LastAssignmentAt,
			LastMovementAt:   lastMovement,
			ControlMode:      loc.EffectiveControlMode(),
		})
	}

	return rows, nil
}

// Activity summarizes control events and stock movements for one location
// over the trailing number of days.
func (s *Service) Activity(ctx context.Context, location string, days int) (*ActivitySummary, error) {
	if days <= 0 {
		days = DefaultActivityWindowDays
	}
	since := time.Now().AddDate(0, 0, -days)

	activities, err := s.logs.ActivitySince(ctx, location, since)
	if err != nil {
		return nil, err
	}

	events := make(map[control.EventType]EventSummary, len(activities))
	for _, a := range activities {
		events[a.EventType] = EventSummary{Count: a.Count, LastEvent: a.LastEvent}
	}

	summary := &ActivitySummary{
		Location:      location,
		PeriodDays:    days,
		Events:        events,
		TotalQtyMoved: decimal.Zero,
	}

	movement, err := s.stock.MovementActivity(ctx, location, since)
	if err != nil {
		s.logger.Warn("movement activity lookup failed",
			zap.String("location", location),
			zap.Error(err),
		)
		return summary, nil
	}
	summary.MovementCount = movement.Count
	summary.TotalQtyMoved = movement.TotalMoved

	return summary, nil
}
