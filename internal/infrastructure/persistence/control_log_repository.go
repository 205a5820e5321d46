package persistence

import (
	"context"
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"gorm.io/gorm"
)

// GormControlLogRepository implements control.ControlLogRepository using GORM.
// The backing table is append-only; this repository exposes no update or
// delete path.
type GormControlLogRepository struct {
	db *gorm.DB
}

// NewGormControlLogRepository creates a new GormControlLogRepository
func NewGormControlLogRepository(db *gorm.DB) *GormControlLogRepository {
	return &GormControlLogRepository{db: db}
}

// Append inserts a new audit entry
func (r *GormControlLogRepository) Append(ctx context.Context, entry *control.ControlLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByLocation returns entries for a location, most recent first
func (r *GormControlLogRepository) ListByLocation(ctx context.Context, location string, limit, offset int) ([]control.ControlLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entries []control.ControlLogEntry
	if err := r.db.WithContext(ctx).
		Where("location = ?", location).
		Order("occurred_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByLocation returns the total number of entries for a location
func (r *GormControlLogRepository) CountByLocation(ctx context.Context, location string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&control.ControlLogEntry{}).
		Where("location = ?", location).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ActivitySince aggregates entries per event type from the given time onward
func (r *GormControlLogRepository) ActivitySince(ctx context.Context, location string, since time.Time) ([]control.EventActivity, error) {
	var rows []control.EventActivity
	if err := r.db.WithContext(ctx).
		Model(&control.ControlLogEntry{}).
		Select("event_type, COUNT(*) AS count, MAX(occurred_at) AS last_event").
		Where("location = ? AND occurred_at >= ?", location, since).
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
