package control

import (
	"context"
	"errors"
	"testing"

	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/nedlog/warehouse-control/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type stubDocs struct {
	salesOrders      map[string]string
	deliveryNotes    map[string]string
	materialRequests map[string]string
	err              error
}

func (s stubDocs) CustomerOfSalesOrder(_ context.Context, id string) (string, error) {
	return s.find(s.salesOrders, id)
}

func (s stubDocs) CustomerOfDeliveryNote(_ context.Context, id string) (string, error) {
	return s.find(s.deliveryNotes, id)
}

func (s stubDocs) CustomerOfMaterialRequest(_ context.Context, id string) (string, error) {
	return s.find(s.materialRequests, id)
}

func (s stubDocs) find(m map[string]string, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if c, ok := m[id]; ok {
		return c, nil
	}
	return "", shared.ErrNotFound
}

func TestResolve_SupplierForPurchaseReceipt(t *testing.T) {
	r := NewCustomerResolver(stubDocs{}, nil)

	txn := control.TransactionContext{
		DocumentType: control.DocTypePurchaseReceipt,
		Supplier:     "SUPP-1",
		Customer:     "CUST-IGNORED",
	}
	customer := r.Resolve(context.Background(), txn, control.TransactionItem{})

	assert.Equal(t, "SUPP-1", customer)
}

func TestResolve_DirectCustomerField(t *testing.T) {
	r := NewCustomerResolver(stubDocs{}, nil)

	txn := control.TransactionContext{
		DocumentType: control.DocTypeDeliveryNote,
		Customer:     "CUST-1",
	}
	customer := r.Resolve(context.Background(), txn, control.TransactionItem{})

	assert.Equal(t, "CUST-1", customer)
}

func TestResolve_StockEntryUpstreamOrder(t *testing.T) {
	docs := stubDocs{
		salesOrders:      map[string]string{"SO-1": "CUST-SO"},
		deliveryNotes:    map[string]string{"DN-1": "CUST-DN"},
		materialRequests: map[string]string{"MR-1": "CUST-MR"},
	}
	r := NewCustomerResolver(docs, nil)
	txn := control.TransactionContext{DocumentType: control.DocTypeStockEntry}
	ctx := context.Background()

	cases := []struct {
		name string
		item control.TransactionItem
		want string
	}{
		{"sales order wins", control.TransactionItem{SalesOrderID: "SO-1", DeliveryNoteID: "DN-1"}, "CUST-SO"},
		{"delivery note next", control.TransactionItem{DeliveryNoteID: "DN-1", MaterialRequestID: "MR-1"}, "CUST-DN"},
		{"material request last", control.TransactionItem{MaterialRequestID: "MR-1"}, "CUST-MR"},
		{"no linkage", control.TransactionItem{}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(ctx, txn, tc.item))
		})
	}
}

func TestResolve_UpstreamRefsIgnoredForNonTransfers(t *testing.T) {
	docs := stubDocs{salesOrders: map[string]string{"SO-1": "CUST-SO"}}
	r := NewCustomerResolver(docs, nil)

	txn := control.TransactionContext{DocumentType: control.DocTypeDeliveryNote}
	item := control.TransactionItem{SalesOrderID: "SO-1"}

	assert.Empty(t, r.Resolve(context.Background(), txn, item))
}

func TestResolve_LookupFailureFallsThrough(t *testing.T) {
	r := NewCustomerResolver(stubDocs{err: errors.New("db down")}, nil)

	txn := control.TransactionContext{DocumentType: control.DocTypeStockEntry}
	item := control.TransactionItem{SalesOrderID: "SO-1"}

	assert.Empty(t, r.Resolve(context.Background(), txn, item))
}

func TestResolve_SupplierlessReceiptFallsBack(t *testing.T) {
	r := NewCustomerResolver(stubDocs{}, nil)

	txn := control.TransactionContext{
		DocumentType: control.DocTypePurchaseReceipt,
		Customer:     "CUST-1",
	}

	assert.Equal(t, "CUST-1", r.Resolve(context.Background(), txn, control.TransactionItem{}))
}
