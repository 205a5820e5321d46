package control

import (
	"context"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuantityOracle resolves the current on-hand quantity for a location. The
// aggregate level view is the primary source; when it has no rows for the
// location the immutable movement ledger is scanned instead, since an empty
// view is indistinguishable from genuine zero stock.
//
// Quantity unavailability must never block the caller's transaction: every
// failure degrades to a zero snapshot and is reported through the logger.
type QuantityOracle struct {
	source control.QuantitySource
	logger *zap.Logger
}

// NewQuantityOracle creates a new QuantityOracle
func NewQuantityOracle(source control.QuantitySource, logger *zap.Logger) *QuantityOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuantityOracle{source: source, logger: logger}
}

// Snapshot computes the on-hand quantity for a location at this moment.
// The snapshot is ephemeral and recomputed per decision.
func (o *QuantityOracle) Snapshot(ctx context.Context, location string) control.QuantitySnapshot {
	if location == "" {
		return control.QuantitySnapshot{Source: control.QuantityUnavailable}
	}

	total, found, err := o.source.LevelTotal(ctx, location)
	if err != nil {
		o.logger.Error("level view lookup failed, treating quantity as zero",
			zap.String("location", location),
			zap.Error(err),
		)
		return control.QuantitySnapshot{Location: location, Quantity: decimal.Zero, Source: control.QuantityUnavailable}
	}
	if found {
		return control.QuantitySnapshot{Location: location, Quantity: total, Source: control.QuantityFromLevels}
	}

	total, err = o.source.LedgerTotal(ctx, location)
	if err != nil {
		o.logger.Error("ledger fallback lookup failed, treating quantity as zero",
			zap.String("location", location),
			zap.Error(err),
		)
		return control.QuantitySnapshot{Location: location, Quantity: decimal.Zero, Source: control.QuantityUnavailable}
	}

	return control.QuantitySnapshot{Location: location, Quantity: total, Source: control.QuantityFromLedger}
}
