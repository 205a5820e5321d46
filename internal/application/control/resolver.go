package control

import (
	"context"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"go.uber.org/zap"
)

// CustomerResolver derives the acting customer identity from a transaction
// and its item context. Resolution order, first match wins:
//
//  1. Supplier-fulfillment documents use the supplier identity (the
//     receiving party's contractual counterpart occupies the slot).
//  2. A direct customer field on the transaction.
//  3. For transfers, item-level linkage to an upstream sales order,
//     delivery note or material request.
//
// An empty result means no identity could be derived and the engine must skip.
type CustomerResolver struct {
	docs   control.SourceDocumentLookup
	logger *zap.Logger
}

// NewCustomerResolver creates a new CustomerResolver
func NewCustomerResolver(docs control.SourceDocumentLookup, logger *zap.Logger) *CustomerResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerResolver{docs: docs, logger: logger}
}

// Resolve extracts the acting customer for one transaction item. Upstream
// lookup failures are reported and treated as unresolved, never raised.
func (r *CustomerResolver) Resolve(ctx context.Context, txn control.TransactionContext, item control.TransactionItem) string {
	if txn.DocumentType.IsSupplierFulfillment() && txn.Supplier != "" {
		return txn.Supplier
	}

	if txn.Customer != "" {
		return txn.Customer
	}

	if txn.DocumentType == control.DocTypeStockEntry {
		if c := r.lookup(ctx, "sales order", item.SalesOrderID, r.docs.CustomerOfSalesOrder); c != "" {
			return c
		}
		if c := r.lookup(ctx, "delivery note", item.DeliveryNoteID, r.docs.CustomerOfDeliveryNote); c != "" {
			return c
		}
		if c := r.lookup(ctx, "material request", item.MaterialRequestID, r.docs.CustomerOfMaterialRequest); c != "" {
			return c
		}
	}

	return ""
}

func (r *CustomerResolver) lookup(ctx context.Context, kind, id string, fn func(context.Context, string) (string, error)) string {
	if id == "" {
		return ""
	}
	customer, err := fn(ctx, id)
	if err != nil {
		r.logger.Warn("upstream document lookup failed during customer resolution",
			zap.String("document_kind", kind),
			zap.String("document_id", id),
			zap.Error(err),
		)
		return ""
	}
	return customer
}
