package control

import "github.com/shopspring/decimal"

// Direction indicates whether a transaction moves stock into or out of a location
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// DocumentType identifies the kind of stock-affecting document being processed
type DocumentType string

const (
	DocTypePurchaseReceipt DocumentType = "Purchase Receipt"
	DocTypeDeliveryNote    DocumentType = "Delivery Note"
	DocTypeStockEntry      DocumentType = "Stock Entry"
	DocTypeSalesOrder      DocumentType = "Sales Order"
	DocTypeMaterialRequest DocumentType = "Material Request"
)

// IsSupplierFulfillment reports whether the document is a supplier-fulfillment
// style incoming document. For these, the supplier occupies the exclusivity
// slot in place of a customer.
func (t DocumentType) IsSupplierFulfillment() bool {
	return t == DocTypePurchaseReceipt
}

// TransactionItem is one line of a stock-affecting transaction. Depending on
// the document type it carries a single location or a source/target pair, plus
// the upstream references needed to resolve a customer for transfers.
type TransactionItem struct {
	ItemCode       string          `json:"item_code"`
	Quantity       decimal.Decimal `json:"quantity"`
	Location       string          `json:"location,omitempty"`        // Purchase Receipt / Delivery Note
	SourceLocation string          `json:"source_location,omitempty"` // Stock Entry issue side
	TargetLocation string          `json:"target_location,omitempty"` // Stock Entry receipt side

	// Upstream document references for customer resolution on transfers.
	SalesOrderID      string `json:"sales_order_id,omitempty"`
	DeliveryNoteID    string `json:"delivery_note_id,omitempty"`
	MaterialRequestID string `json:"material_request_id,omitempty"`
}

// LocationFor returns the location this item affects for the given direction:
// the receiving location for incoming movements, the issuing location for
// outgoing ones. Empty means the item does not touch a location on that side.
func (i TransactionItem) LocationFor(direction Direction) string {
	if direction == DirectionIncoming {
		if i.TargetLocation != "" {
			return i.TargetLocation
		}
		return i.Location
	}
	if i.SourceLocation != "" {
		return i.SourceLocation
	}
	return i.Location
}

// TransactionContext describes one stock-affecting event and its line items.
// It is supplied by the caller; this service never decides what quantity
// changed or why.
type TransactionContext struct {
	DocumentType DocumentType      `json:"document_type"`
	DocumentID   string            `json:"document_id"`
	Supplier     string            `json:"supplier,omitempty"`
	Customer     string            `json:"customer,omitempty"`
	Items        []TransactionItem `json:"items"`
}

// QuantitySnapshot captures the on-hand quantity for a location at decision
// time. It is ephemeral and recomputed per decision, never persisted.
type QuantitySnapshot struct {
	Location string
	Quantity decimal.Decimal
	Source   QuantitySourceKind
}

// QuantitySourceKind identifies which source produced a quantity snapshot
type QuantitySourceKind string

const (
	QuantityFromLevels  QuantitySourceKind = "levels"
	QuantityFromLedger  QuantitySourceKind = "ledger"
	QuantityUnavailable QuantitySourceKind = "unavailable"
)
