package handler

import (
	"time"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/shopspring/decimal"
)

// TransactionItemRequest is one line of a reported stock transaction
type TransactionItemRequest struct {
	ItemCode       string          `json:"item_code" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	Location       string          `json:"location"`
	SourceLocation string          `json:"source_location"`
	TargetLocation string          `json:"target_location"`

	SalesOrderID      string `json:"sales_order_id"`
	DeliveryNoteID    string `json:"delivery_note_id"`
	MaterialRequestID string `json:"material_request_id"`
}

// TransactionRequest reports a stock-affecting document for evaluation
type TransactionRequest struct {
	DocumentType string                   `json:"document_type" binding:"required"`
	DocumentID   string                   `json:"document_id" binding:"required"`
	Supplier     string                   `json:"supplier"`
	Customer     string                   `json:"customer"`
	Items        []TransactionItemRequest `json:"items" binding:"required,min=1,dive"`
}

var knownDocumentTypes = map[control.DocumentType]bool{
	control.DocTypePurchaseReceipt: true,
	control.DocTypeDeliveryNote:    true,
	control.DocTypeStockEntry:      true,
	control.DocTypeSalesOrder:      true,
	control.DocTypeMaterialRequest: true,
}

// Validate checks fields the binding tags cannot express
func (r TransactionRequest) Validate() bool {
	return knownDocumentTypes[control.DocumentType(r.DocumentType)]
}

// ToDomain converts the request to a domain transaction context
func (r TransactionRequest) ToDomain() control.TransactionContext {
	items := make([]control.TransactionItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, control.TransactionItem{
			ItemCode:          item.ItemCode,
			Quantity:          item.Quantity,
			Location:          item.Location,
			SourceLocation:    item.SourceLocation,
			TargetLocation:    item.TargetLocation,
			SalesOrderID:      item.SalesOrderID,
			DeliveryNoteID:    item.DeliveryNoteID,
			MaterialRequestID: item.MaterialRequestID,
		})
	}
	return control.TransactionContext{
		DocumentType: control.DocumentType(r.DocumentType),
		DocumentID:   r.DocumentID,
		Supplier:     r.Supplier,
		Customer:     r.Customer,
		Items:        items,
	}
}

// ControlFieldsRequest is a partial update of a location's control fields.
// Absent fields are left untouched.
type ControlFieldsRequest struct {
	Customer            *string    `json:"customer"`
	Status              *string    `json:"status"`
	AssignmentTime      *time.Time `json:"assignment_time"`
	ClearAssignmentTime bool       `json:"clear_assignment_time"`
}

// ToDomain converts the request to a domain field update
func (r ControlFieldsRequest) ToDomain() control.ControlFieldUpdate {
	update := control.ControlFieldUpdate{
		Customer:            r.Customer,
		AssignmentTime:      r.AssignmentTime,
		ClearAssignmentTime: r.ClearAssignmentTime,
	}
	if r.Status != nil {
		status := control.LocationStatus(*r.Status)
		update.Status = &status
	}
	return update
}

// ControlLogEntryResponse is one audit entry on the wire
type ControlLogEntryResponse struct {
	ID               string          `json:"id"`
	Location         string          `json:"location"`
	EventType        string          `json:"event_type"`
	TransactionType  string          `json:"transaction_type"`
	TransactionID    string          `json:"transaction_id"`
	PreviousCustomer string          `json:"previous_customer,omitempty"`
	NewCustomer      string          `json:"new_customer,omitempty"`
	QtyBefore        decimal.Decimal `json:"qty_before"`
	QtyAfter         decimal.Decimal `json:"qty_after"`
	ActingUser       string          `json:"acting_user"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// NewControlLogEntryResponse converts a domain entry to its wire form
func NewControlLogEntryResponse(entry control.ControlLogEntry) ControlLogEntryResponse {
	return ControlLogEntryResponse{
		ID:               entry.ID.String(),
		Location:         entry.Location,
		EventType:        string(entry.EventType),
		TransactionType:  string(entry.TransactionType),
		TransactionID:    entry.TransactionID,
		PreviousCustomer: entry.PreviousCustomer,
		NewCustomer:      entry.NewCustomer,
		QtyBefore:        entry.QtyBefore,
		QtyAfter:         entry.QtyAfter,
		ActingUser:       entry.ActingUser,
		OccurredAt:       entry.OccurredAt,
	}
}
