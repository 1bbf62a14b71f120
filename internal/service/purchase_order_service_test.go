package service

import (
	"sync"
	"testing"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func createDraftOrder(t *testing.T, svc testServices, db *gorm.DB, items []PurchaseOrderItemInput) *model.PurchaseOrder {
	t.Helper()
	wh := seedWarehouse(t, db, "WH-PO")
	order, err := svc.purchase.Create(CreatePurchaseOrderInput{
		Supplier:    "Acme Pharma",
		WarehouseID: wh.ID,
		Items:       items,
	}, "buyer")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func advanceToOrdered(t *testing.T, svc testServices, order *model.PurchaseOrder) {
	t.Helper()
	if _, err := svc.purchase.Submit(order.ID, "buyer"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.purchase.Approve(order.ID, "manager"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.purchase.PlaceOrder(order.ID, "buyer"); err != nil {
		t.Fatalf("place order: %v", err)
	}
}

func TestPurchaseOrderTotals(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p1 := seedProduct(t, db, "MED-001")
	p2 := seedProduct(t, db, "MED-002")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p1.ID, Quantity: 10, UnitPrice: decimal.NewFromFloat(2.50)},
		{ProductID: p2.ID, Quantity: 4, UnitPrice: decimal.NewFromInt(10)},
	})

	if !order.TotalAmount.Equal(decimal.NewFromInt(65)) {
		t.Fatalf("expected subtotal 65, got %s", order.TotalAmount)
	}
	if !order.TaxAmount.Equal(decimal.NewFromFloat(9.75)) {
		t.Fatalf("expected tax 9.75, got %s", order.TaxAmount)
	}
	if !order.GrandTotal.Equal(decimal.NewFromFloat(74.75)) {
		t.Fatalf("expected grand total 74.75, got %s", order.GrandTotal)
	}
	if order.Status != model.POStatusDraft {
		t.Fatalf("expected DRAFT, got %s", order.Status)
	}
}

func TestPurchaseOrderReceiveFull(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 20, UnitPrice: decimal.NewFromInt(3)},
	})
	advanceToOrdered(t, svc, order)

	expiry := time.Now().AddDate(2, 0, 0)
	received, err := svc.purchase.Receive(order.ID, []ReceiveItemInput{
		{ItemID: order.Items[0].ID, ReceivedQty: 20, BatchNumber: "LOT-PO-1", ExpiryDate: &expiry},
	}, "clerk")
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if received.Status != model.POStatusReceived {
		t.Fatalf("expected RECEIVED, got %s", received.Status)
	}
	if received.ReceivedDate == nil {
		t.Fatalf("expected received date set")
	}

	var batch model.Batch
	if err := db.First(&batch, "batch_number = ?", "LOT-PO-1").Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if batch.InitialQuantity != 20 || batch.CurrentQuantity != 20 {
		t.Fatalf("expected batch 20/20, got %d/%d", batch.InitialQuantity, batch.CurrentQuantity)
	}
	if batch.CostPrice == nil || !batch.CostPrice.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected cost price 3, got %v", batch.CostPrice)
	}

	row := stockRow(t, db, p.ID, order.WarehouseID)
	if row.Quantity != 20 {
		t.Fatalf("expected stock 20, got %d", row.Quantity)
	}

	var movements int64
	if err := db.Model(&model.StockMovement{}).
		Where("reference_type = ? AND reference_id = ?", model.RefPurchaseOrder, order.ID).
		Count(&movements).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movements != 1 {
		t.Fatalf("expected 1 receipt movement, got %d", movements)
	}
}

func TestPurchaseOrderPartialReceive(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 20, UnitPrice: decimal.NewFromInt(3)},
	})
	advanceToOrdered(t, svc, order)
	itemID := order.Items[0].ID
	expiry := time.Now().AddDate(2, 0, 0)

	partial, err := svc.purchase.Receive(order.ID, []ReceiveItemInput{
		{ItemID: itemID, ReceivedQty: 5, BatchNumber: "LOT-1", ExpiryDate: &expiry},
	}, "clerk")
	if err != nil {
		t.Fatalf("partial receive: %v", err)
	}
	if partial.Status != model.POStatusPartiallyReceived {
		t.Fatalf("expected PARTIALLY_RECEIVED, got %s", partial.Status)
	}

	// Receiving more than the ordered remainder is refused entirely.
	_, err = svc.purchase.Receive(order.ID, []ReceiveItemInput{
		{ItemID: itemID, ReceivedQty: 16, BatchNumber: "LOT-1"},
	}, "clerk")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	full, err := svc.purchase.Receive(order.ID, []ReceiveItemInput{
		{ItemID: itemID, ReceivedQty: 15, BatchNumber: "LOT-1"},
	}, "clerk")
	if err != nil {
		t.Fatalf("final receive: %v", err)
	}
	if full.Status != model.POStatusReceived {
		t.Fatalf("expected RECEIVED, got %s", full.Status)
	}

	row := stockRow(t, db, p.ID, order.WarehouseID)
	if row.Quantity != 20 {
		t.Fatalf("expected stock 20, got %d", row.Quantity)
	}
}

func TestPurchaseOrderReceiveDuplicateLines(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(2)},
	})
	advanceToOrdered(t, svc, order)
	itemID := order.Items[0].ID
	expiry := time.Now().AddDate(2, 0, 0)

	// Two lines for the same item would pass the per-line over-receipt
	// check while together exceeding the ordered quantity.
	_, err := svc.purchase.Receive(order.ID, []ReceiveItemInput{
		{ItemID: itemID, ReceivedQty: 6, BatchNumber: "LOT-DUP", ExpiryDate: &expiry},
		{ItemID: itemID, ReceivedQty: 6, BatchNumber: "LOT-DUP", ExpiryDate: &expiry},
	}, "clerk")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for duplicate item lines, got %v", err)
	}

	reloaded, err := svc.purchase.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != model.POStatusOrdered {
		t.Fatalf("expected order still ORDERED, got %s", reloaded.Status)
	}
	if reloaded.Items[0].ReceivedQty != 0 {
		t.Fatalf("expected nothing received, got %d", reloaded.Items[0].ReceivedQty)
	}

	var rows int64
	if err := db.Model(&model.Stock{}).Where("product_id = ?", p.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count stock rows: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no stock rows, got %d", rows)
	}
}

func TestPurchaseOrderReceiveRequiresOrderedState(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
	})

	_, err := svc.purchase.Receive(order.ID, []ReceiveItemInput{
		{ItemID: order.Items[0].ID, ReceivedQty: 10},
	}, "clerk")
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestPurchaseOrderSubmitWithoutItems(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)

	order := createDraftOrder(t, svc, db, nil)
	if _, err := svc.purchase.Submit(order.ID, "buyer"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPurchaseOrderUpdateNonDraft(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
	})
	if _, err := svc.purchase.Submit(order.ID, "buyer"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := svc.purchase.Update(order.ID, CreatePurchaseOrderInput{
		Supplier:    "Other Supplier",
		WarehouseID: order.WarehouseID,
		Items: []PurchaseOrderItemInput{
			{ProductID: p.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(2)},
		},
	}, "buyer")
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestPurchaseOrderConcurrentApprove(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
	})
	if _, err := svc.purchase.Submit(order.ID, "buyer"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Both callers race to approve; sqlite reports transient lock errors
	// under contention, so each retries until it wins or loses the
	// transition outright.
	approve := func(actor string) error {
		for i := 0; i < 50; i++ {
			_, err := svc.purchase.Approve(order.ID, actor)
			if err == nil || apperr.IsKind(err, apperr.KindInvalidTransition) {
				return err
			}
			time.Sleep(time.Millisecond)
		}
		t.Errorf("%s: approve kept failing on lock contention", actor)
		return nil
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, actor := range []string{"manager-a", "manager-b"} {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			results <- approve(actor)
		}(actor)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else if apperr.IsKind(err, apperr.KindInvalidTransition) {
			losses++
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected one winner and one invalid transition, got %d wins %d losses", wins, losses)
	}

	reloaded, err := svc.purchase.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != model.POStatusApproved {
		t.Fatalf("expected APPROVED, got %s", reloaded.Status)
	}
	if reloaded.ApprovedBy != "manager-a" && reloaded.ApprovedBy != "manager-b" {
		t.Fatalf("expected a single approver recorded, got %q", reloaded.ApprovedBy)
	}
}

func TestPurchaseOrderCancelTerminal(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
	})

	cancelled, err := svc.purchase.Cancel(order.ID, "budget cut", "manager")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.POStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	if _, err := svc.purchase.Submit(order.ID, "buyer"); !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition from CANCELLED, got %v", err)
	}
}
