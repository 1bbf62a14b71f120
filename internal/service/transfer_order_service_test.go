package service

import (
	"testing"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/apperr"

	"gorm.io/gorm"
)

type transferFixture struct {
	svc     testServices
	db      *gorm.DB
	from    *model.Warehouse
	to      *model.Warehouse
	product *model.Product
}

func newTransferFixture(t *testing.T, onHand int) *transferFixture {
	t.Helper()
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	f := &transferFixture{
		svc:     svc,
		db:      db,
		from:    seedWarehouse(t, db, "WH-A"),
		to:      seedWarehouse(t, db, "WH-B"),
		product: seedProduct(t, db, "MED-001"),
	}
	if onHand > 0 {
		creditStock(t, svc, f.product.ID, f.from.ID, nil, onHand)
	}
	return f
}

func (f *transferFixture) createPending(t *testing.T, qty int) *model.TransferOrder {
	t.Helper()
	order, err := f.svc.transfer.Create(CreateTransferOrderInput{
		FromWarehouseID: f.from.ID,
		ToWarehouseID:   f.to.ID,
		Items:           []TransferOrderItemInput{{ProductID: f.product.ID, Quantity: qty}},
	}, "planner")
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if _, err := f.svc.transfer.Submit(order.ID, "planner"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	return order
}

func TestTransferLifecycle(t *testing.T) {
	f := newTransferFixture(t, 100)
	order := f.createPending(t, 30)

	approved, err := f.svc.transfer.Approve(order.ID, "manager")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.TransferApproved {
		t.Fatalf("expected APPROVED, got %s", approved.Status)
	}
	source := stockRow(t, f.db, f.product.ID, f.from.ID)
	if source.Quantity != 100 || source.ReservedQty != 30 || source.AvailableQty != 70 {
		t.Fatalf("after approve: %d/%d/%d", source.Quantity, source.ReservedQty, source.AvailableQty)
	}

	shipped, err := f.svc.transfer.Ship(order.ID, "clerk")
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	if shipped.Status != model.TransferInTransit {
		t.Fatalf("expected IN_TRANSIT, got %s", shipped.Status)
	}
	source = stockRow(t, f.db, f.product.ID, f.from.ID)
	if source.Quantity != 70 || source.ReservedQty != 0 {
		t.Fatalf("after ship: %d/%d", source.Quantity, source.ReservedQty)
	}

	received, err := f.svc.transfer.Receive(order.ID, nil, "receiver")
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if received.Status != model.TransferReceived {
		t.Fatalf("expected RECEIVED, got %s", received.Status)
	}
	dest := stockRow(t, f.db, f.product.ID, f.to.ID)
	if dest.Quantity != 30 {
		t.Fatalf("expected 30 at destination, got %d", dest.Quantity)
	}

	var types []string
	if err := f.db.Model(&model.StockMovement{}).
		Where("reference_type = ? AND reference_id = ?", model.RefTransferOrder, order.ID).
		Order("created_at").Pluck("type", &types).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected TRANSFER_OUT and TRANSFER_IN, got %v", types)
	}
}

func TestTransferApproveInsufficientStock(t *testing.T) {
	f := newTransferFixture(t, 20)
	order := f.createPending(t, 50)

	_, err := f.svc.transfer.Approve(order.ID, "manager")
	if !apperr.IsKind(err, apperr.KindInsufficientAvailable) {
		t.Fatalf("expected insufficient available, got %v", err)
	}

	// The whole approval rolled back: no reservation, status unchanged.
	source := stockRow(t, f.db, f.product.ID, f.from.ID)
	if source.ReservedQty != 0 {
		t.Fatalf("expected no reservation, got %d", source.ReservedQty)
	}
	reloaded, err := f.svc.transfer.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != model.TransferPending {
		t.Fatalf("expected PENDING, got %s", reloaded.Status)
	}
}

func TestTransferShipBeforeApproval(t *testing.T) {
	f := newTransferFixture(t, 100)
	order := f.createPending(t, 10)

	if _, err := f.svc.transfer.Ship(order.ID, "clerk"); !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestTransferCancelReleasesReservation(t *testing.T) {
	f := newTransferFixture(t, 100)
	order := f.createPending(t, 40)

	if _, err := f.svc.transfer.Approve(order.ID, "manager"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	cancelled, err := f.svc.transfer.Cancel(order.ID, "route closed", "manager")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.TransferCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	source := stockRow(t, f.db, f.product.ID, f.from.ID)
	if source.Quantity != 100 || source.ReservedQty != 0 {
		t.Fatalf("expected reservation released, got %d/%d", source.Quantity, source.ReservedQty)
	}
}

func TestTransferReceiveWithShortage(t *testing.T) {
	f := newTransferFixture(t, 100)
	order := f.createPending(t, 30)

	if _, err := f.svc.transfer.Approve(order.ID, "manager"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.transfer.Ship(order.ID, "clerk"); err != nil {
		t.Fatalf("ship: %v", err)
	}

	reloaded, err := f.svc.transfer.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	itemID := reloaded.Items[0].ID

	// More than approved is rejected.
	_, err = f.svc.transfer.Receive(order.ID, []TransferReceiptInput{{ItemID: itemID, ReceivedQty: 40}}, "receiver")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	received, err := f.svc.transfer.Receive(order.ID, []TransferReceiptInput{{ItemID: itemID, ReceivedQty: 25}}, "receiver")
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if received.Items[0].ReceivedQty == nil || *received.Items[0].ReceivedQty != 25 {
		t.Fatalf("expected received 25, got %v", received.Items[0].ReceivedQty)
	}

	dest := stockRow(t, f.db, f.product.ID, f.to.ID)
	if dest.Quantity != 25 {
		t.Fatalf("expected 25 at destination, got %d", dest.Quantity)
	}
}

func TestTransferSameWarehouseRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH-A")
	p := seedProduct(t, db, "MED-001")

	_, err := svc.transfer.Create(CreateTransferOrderInput{
		FromWarehouseID: wh.ID,
		ToWarehouseID:   wh.ID,
		Items:           []TransferOrderItemInput{{ProductID: p.ID, Quantity: 5}},
	}, "planner")
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
