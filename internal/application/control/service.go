package control

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/nedlog/warehouse-control/internal/domain/shared"
	"go.uber.org/zap"
)

// defaultConflictRetries bounds how often an evaluation is retried when the
// optimistic version guard detects a concurrent write to the same location.
const defaultConflictRetries = 3

// ControlService is the synchronous decision and update entry point, invoked
// once per transaction item. The exclusivity controller must never prevent a
// legitimate stock transaction from completing: every internal failure
// degrades to a skip or a reported error, and only warn decisions surface a
// message to the acting user.
type ControlService struct {
	locations control.LocationRepository
	logs      control.ControlLogRepository
	oracle    *QuantityOracle
	resolver  *CustomerResolver
	locker    control.LocationLocker
	logger    *zap.Logger
	retries   int
}

// NewControlService creates a new ControlService
func NewControlService(
	locations control.LocationRepository,
	logs control.ControlLogRepository,
	oracle *QuantityOracle,
	resolver *CustomerResolver,
	locker control.LocationLocker,
	logger *zap.Logger,
) *ControlService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ControlService{
		locations: locations,
		logs:      logs,
		oracle:    oracle,
		resolver:  resolver,
		locker:    locker,
		logger:    logger,
		retries:   defaultConflictRetries,
	}
}

// SetConflictRetries overrides the retry budget for optimistic lock conflicts
func (s *ControlService) SetConflictRetries(n int) {
	if n >= 0 {
		s.retries = n
	}
}

// HandleIncoming evaluates every item of an incoming stock transaction.
// Items are processed sequentially in document order; each item is an
// independent unit of work and failures never abort the remaining items.
func (s *ControlService) HandleIncoming(ctx context.Context, txn control.TransactionContext, actingUser string) []ItemResult {
	results := make([]ItemResult, 0, len(txn.Items))
	for _, item := range txn.Items {
		results = append(results, s.evaluateIncoming(ctx, txn, item, actingUser))
	}
	return results
}

// HandleOutgoing evaluates every item of an outgoing stock transaction after
// it has posted. Outgoing items always classify as track; the release
// decision is made on the post-transaction quantity recheck.
func (s *ControlService) HandleOutgoing(ctx context.Context, txn control.TransactionContext, actingUser string) []ItemResult {
	results := make([]ItemResult, 0, len(txn.Items))
	for _, item := range txn.Items {
		results = append(results, s.evaluateOutgoing(ctx, txn, item, actingUser))
	}
	return results
}

// LocationSummary composes the on-hand quantity with the persisted control
// fields for one location.
func (s *ControlService) LocationSummary(ctx context.Context, code string) (*LocationSummary, error) {
	loc, err := s.locations.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	snap := s.oracle.Snapshot(ctx, loc.Code)

	return &LocationSummary{
		Location:         loc.Code,
		Name:             loc.Name,
		Quantity:         snap.Quantity,
		QuantitySource:   snap.Source,
		AssignedCustomer: loc.AssignedCustomer,
		Status:           loc.Status,
		LastAssignmentAt: loc.LastAssignmentAt,
		ControlMode:      loc.EffectiveControlMode(),
	}, nil
}

// ControlLog returns a page of the audit trail for one location, newest
// first, along with the total entry count.
func (s *ControlService) ControlLog(ctx context.Context, code string, page, pageSize int) ([]control.ControlLogEntry, int64, error) {
	loc, err := s.locations.FindByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.logs.CountByLocation(ctx, loc.Code)
	if err != nil {
		return nil, 0, err
	}

	entries, err := s.logs.ListByLocation(ctx, loc.Code, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ApplyControlFields applies a manual correction of a location's control
// fields as one atomic write. Used by operators to fix drifted state; normal
// transitions go through the transaction hooks.
func (s *ControlService) ApplyControlFields(ctx context.Context, code string, fields control.ControlFieldUpdate) error {
	if fields.IsEmpty() {
		return nil
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		return err
	}
	defer release()

	if err := s.locations.UpdateControlFields(ctx, code, fields); err != nil {
		return err
	}

	s.logger.Info("location control fields updated",
		zap.String("location", code),
		zap.Bool("customer_set", fields.Customer != nil),
		zap.Bool("status_set", fields.Status != nil),
	)
	return nil
}

func (s *ControlService) evaluateIncoming(ctx context.Context, txn control.TransactionContext, item control.TransactionItem, actingUser string) ItemResult {
	locCode := item.LocationFor(control.DirectionIncoming)
	if locCode == "" {
		return skipResult(item, "", "item has no receiving location")
	}

	release, err := s.locker.Acquire(ctx, locCode)
	if err != nil {
		s.logger.Error("location lock acquisition failed",
			zap.String("location", locCode),
			zap.Error(err),
		)
		return skipResult(item, locCode, "location lock unavailable")
	}
	defer release()

	customer := s.resolver.Resolve(ctx, txn, item)

	for attempt := 0; ; attempt++ {
		loc := s.findLocation(ctx, locCode)
		snap := s.oracle.Snapshot(ctx, locCode)

		decision := control.Decide(loc, snap, customer, control.DirectionIncoming)
		res := resultFrom(item, locCode, decision)

		switch decision.Action {
		case control.ActionAssign:
			changed, assignErr := loc.Assign(customer, time.Now())
			if assignErr != nil {
				s.logger.Error("assignment rejected",
					zap.String("location", locCode),
					zap.Error(assignErr),
				)
				return skipResult(item, locCode, "assignment rejected")
			}
			if !changed {
				return res
			}

			if saveErr := s.locations.SaveControlState(ctx, loc); saveErr != nil {
				if errors.Is(saveErr, shared.ErrConcurrencyConflict) && attempt < s.retries {
					continue
				}
				s.logger.Error("location assignment write failed",
					zap.String("location", locCode),
					zap.String("customer", customer),
					zap.Error(saveErr),
				)
				res.Reason = "assignment write failed"
				return res
			}

			qtyAfter := s.oracle.Snapshot(ctx, locCode).Quantity
			s.append(ctx, control.NewAssignmentEntry(
				locCode, customer, txn.DocumentType, txn.DocumentID,
				decision.QtyBefore, qtyAfter, actingUser,
			))
			s.logger.Info("location assigned",
				zap.String("location", locCode),
				zap.String("customer", customer),
				zap.String("transaction", txn.DocumentID),
			)

		case control.ActionWarn:
			res.Warning = decision.WarningMessage()
			s.append(ctx, control.NewWarningEntry(
				locCode, decision.AssignedCustomer, customer,
				txn.DocumentType, txn.DocumentID, decision.QtyBefore, actingUser,
			))
			s.logger.Info("location customer mixing detected",
				zap.String("location", locCode),
				zap.String("assigned_customer", decision.AssignedCustomer),
				zap.String("attempting_customer", customer),
				zap.String("transaction", txn.DocumentID),
			)
		}

		return res
	}
}

func (s *ControlService) evaluateOutgoing(ctx context.Context, txn control.TransactionContext, item control.TransactionItem, actingUser string) ItemResult {
	locCode := item.LocationFor(control.DirectionOutgoing)
	if locCode == "" {
		return skipResult(item, "", "item has no issuing location")
	}

	release, err := s.locker.Acquire(ctx, locCode)
	if err != nil {
		s.logger.Error("location lock acquisition failed",
			zap.String("location", locCode),
			zap.Error(err),
		)
		return skipResult(item, locCode, "location lock unavailable")
	}
	defer release()

	customer := s.resolver.Resolve(ctx, txn, item)

	for attempt := 0; ; attempt++ {
		loc := s.findLocation(ctx, locCode)
		snap := s.oracle.Snapshot(ctx, locCode)

		decision := control.Decide(loc, snap, customer, control.DirectionOutgoing)
		res := resultFrom(item, locCode, decision)
		if decision.Action != control.ActionTrack {
			return res
		}

		// The movement has already posted, so a fresh snapshot reflects its
		// quantity effect.
		after := s.oracle.Snapshot(ctx, locCode)
		if !after.Quantity.IsZero() || !loc.IsOccupied() {
			return res
		}

		released := loc.AssignedCustomer
		if !loc.Release() {
			return res
		}

		if saveErr := s.locations.SaveControlState(ctx, loc); saveErr != nil {
			if errors.Is(saveErr, shared.ErrConcurrencyConflict) && attempt < s.retries {
				continue
			}
			s.logger.Error("location release write failed",
				zap.String("location", locCode),
				zap.Error(saveErr),
			)
			res.Reason = "release write failed"
			return res
		}

		s.append(ctx, control.NewReleaseEntry(
			locCode, released, txn.DocumentType, txn.DocumentID,
			decision.QtyBefore, actingUser,
		))
		s.logger.Info("location released",
			zap.String("location", locCode),
			zap.String("customer", released),
			zap.String("transaction", txn.DocumentID),
		)
		res.Reason = "quantity reached zero, location released"

		return res
	}
}

// findLocation returns nil when the location is unknown or the lookup fails,
// which the decision engine treats as a skip.
func (s *ControlService) findLocation(ctx context.Context, code string) *control.Location {
	loc, err := s.locations.FindByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("location lookup failed",
				zap.String("location", code),
				zap.Error(err),
			)
		}
		return nil
	}
	return loc
}

// append writes an audit entry best-effort. The log is advisory: a failed
// append is reported and swallowed, and never undoes a state transition that
// already committed.
func (s *ControlService) append(ctx context.Context, entry *control.ControlLogEntry) {
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("control log append failed",
			zap.String("location", entry.Location),
			zap.String("event_type", string(entry.EventType)),
			zap.String("transaction", entry.TransactionID),
			zap.Error(err),
		)
	}
}

func resultFrom(item control.TransactionItem, location string, d control.Decision) ItemResult {
	return ItemResult{
		ItemCode:  item.ItemCode,
		Location:  location,
		Action:    d.Action,
		Reason:    d.Reason,
		Customer:  d.Customer,
		QtyBefore: d.QtyBefore,
	}
}

func skipResult(item control.TransactionItem, location, reason string) ItemResult {
	return ItemResult{
		ItemCode: item.ItemCode,
		Location: location,
		Action:   control.ActionSkip,
		Reason:   reason,
	}
}
