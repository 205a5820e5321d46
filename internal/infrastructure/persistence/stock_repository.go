package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stockLevel is a read model over the stock system's maintained per-location
// aggregate view. This service never writes it.
type stockLevel struct {
	Location string
	ItemCode string
	Quantity decimal.Decimal
}

func (stockLevel) TableName() string {
	return "stock_levels"
}

// stockMovement is a read model over the immutable ledger of signed stock
// movements. This service never writes it.
type stockMovement struct {
	Location    string
	ItemCode    string
	Quantity    decimal.Decimal
	IsCancelled bool
	IsFinalized bool
	PostedAt    time.Time
}

func (stockMovement) TableName() string {
	return "stock_movements"
}

// GormStockReader implements control.QuantitySource over the stock system's
// tables
type GormStockReader struct {
	db *gorm.DB
}

// NewGormStockReader creates a new GormStockReader
func NewGormStockReader(db *gorm.DB) *GormStockReader {
	return &GormStockReader{db: db}
}

// LevelTotal sums the aggregate view for the location. The bool reports
// whether any view rows existed at all.
func (r *GormStockReader) LevelTotal(ctx context.Context, location string) (decimal.Decimal, bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stockLevel{}).
		Where("location = ?", location).
		Count(&count).Error; err != nil {
		return decimal.Zero, false, err
	}
	if count == 0 {
		return decimal.Zero, false, nil
	}

	var row struct {
		Total decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stockLevel{}).
		Select("SUM(quantity) AS total").
		Where("location = ?", location).
		Scan(&row).Error; err != nil {
		return decimal.Zero, false, err
	}
	return row.Total.Decimal, true, nil
}

// LedgerTotal sums signed quantities of non-cancelled, finalized ledger
// entries for the location
func (r *GormStockReader) LedgerTotal(ctx context.Context, location string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stockMovement{}).
		Select("SUM(quantity) AS total").
		Where("location = ? AND is_cancelled = ? AND is_finalized = ?", location, false, true).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Decimal, nil
}

// LastMovementAt returns the posting time of the most recent ledger entry for
// the location, or nil when it has none
func (r *GormStockReader) LastMovementAt(ctx context.Context, location string) (*time.Time, error) {
	var movement stockMovement
	err := r.db.WithContext(ctx).
		Where("location = ? AND is_cancelled = ? AND is_finalized = ?", location, false, true).
		Order("posted_at DESC").
		First(&movement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	at := movement.PostedAt
	return &at, nil
}

// MovementActivity aggregates ledger traffic for the location since the given
// time
func (r *GormStockReader) MovementActivity(ctx context.Context, location string, since time.Time) (control.MovementActivity, error) {
	var row struct {
		Count      int64
		TotalMoved decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stockMovement{}).
		Select("COUNT(*) AS count, SUM(ABS(quantity)) AS total_moved").
		Where("location = ? AND is_cancelled = ? AND is_finalized = ? AND posted_at >= ?", location, false, true, since).
		Scan(&row).Error; err != nil {
		return control.MovementActivity{}, err
	}
	return control.MovementActivity{
		Count:      row.Count,
		TotalMoved: row.TotalMoved.Decimal,
	}, nil
}
