package persistence

import (
	"context"
	"errors"

	"github.com/nedlog/warehouse-control/internal/domain/shared"
	"gorm.io/gorm"
)

// Read models over the order-management tables that transfer items reference.
// This service only ever needs the customer column.

type salesOrder struct {
	DocumentID string
	Customer   string
}

func (salesOrder) TableName() string {
	return "sales_orders"
}

type deliveryNote struct {
	DocumentID string
	Customer   string
}

func (deliveryNote) TableName() string {
	return "delivery_notes"
}

type materialRequest struct {
	DocumentID string
	Customer   string
}

func (materialRequest) TableName() string {
	return "material_requests"
}

// GormSourceDocumentRepository implements control.SourceDocumentLookup over
// the order-management tables
type GormSourceDocumentRepository struct {
	db *gorm.DB
}

// NewGormSourceDocumentRepository creates a new GormSourceDocumentRepository
func NewGormSourceDocumentRepository(db *gorm.DB) *GormSourceDocumentRepository {
	return &GormSourceDocumentRepository{db: db}
}

// CustomerOfSalesOrder returns the customer of a sales order
func (r *GormSourceDocumentRepository) CustomerOfSalesOrder(ctx context.Context, id string) (string, error) {
	var doc salesOrder
	return r.customerOf(ctx, &doc, id, &doc.Customer)
}

// CustomerOfDeliveryNote returns the customer of a delivery note
func (r *GormSourceDocumentRepository) CustomerOfDeliveryNote(ctx context.Context, id string) (string, error) {
	var doc deliveryNote
	return r.customerOf(ctx, &doc, id, &doc.Customer)
}

// CustomerOfMaterialRequest returns the customer of a material request, which
// may legitimately be empty for internal requests
func (r *GormSourceDocumentRepository) CustomerOfMaterialRequest(ctx context.Context, id string) (string, error) {
	var doc materialRequest
	return r.customerOf(ctx, &doc, id, &doc.Customer)
}

func (r *GormSourceDocumentRepository) customerOf(ctx context.Context, model interface{}, id string, customer *string) (string, error) {
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		First(model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return *customer, nil
}
