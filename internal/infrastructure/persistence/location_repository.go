package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/nedlog/warehouse-control/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLocationRepository implements control.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByCode finds a storage location by its code
func (r *GormLocationRepository) FindByCode(ctx context.Context, code string) (*control.Location, error) {
	var location control.Location
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindAll returns all storage locations ordered by code
func (r *GormLocationRepository) FindAll(ctx context.Context) ([]control.Location, error) {
	var locations []control.Location
	if err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Save persists the full location record
func (r *GormLocationRepository) Save(ctx context.Context, location *control.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// SaveControlState writes only the exclusivity control fields, guarded by the
// aggregate version. The caller has already incremented the in-memory version,
// so the row must still carry the previous one.
func (r *GormLocationRepository) SaveControlState(ctx context.Context, location *control.Location) error {
	result := r.db.WithContext(ctx).
		Model(location).
		Where("id = ? AND version = ?", location.ID, location.Version-1).
		Updates(map[string]interface{}{
			"assigned_customer":  location.AssignedCustomer,
			"status":             location.Status,
			"last_assignment_at": location.LastAssignmentAt,
			"version":            location.Version,
			"updated_at":         location.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// UpdateControlFields applies a partial control-field update as one atomic
// write. An empty update succeeds without touching the row.
func (r *GormLocationRepository) UpdateControlFields(ctx context.Context, code string, fields control.ControlFieldUpdate) error {
	if fields.IsEmpty() {
		return nil
	}
	if fields.Status != nil && !fields.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown location status: "+string(*fields.Status))
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if fields.Customer != nil {
		updates["assigned_customer"] = *fields.Customer
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.ClearAssignmentTime {
		updates["last_assignment_at"] = nil
	} else if fields.AssignmentTime != nil {
		updates["last_assignment_at"] = *fields.AssignmentTime
	}

	result := r.db.WithContext(ctx).
		Model(&control.Location{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
