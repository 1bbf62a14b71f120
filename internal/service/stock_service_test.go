package service

import (
	"testing"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/apperr"

	"gorm.io/gorm"
)

func TestReserveReleaseLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	creditStock(t, svc, p.ID, wh.ID, nil, 100)

	row := stockRow(t, db, p.ID, wh.ID)
	if row.Quantity != 100 || row.AvailableQty != 100 {
		t.Fatalf("expected quantity 100 available 100, got %d/%d", row.Quantity, row.AvailableQty)
	}

	reserved, err := svc.stock.Reserve(row.ID, 30, "test")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if reserved.Quantity != 100 || reserved.ReservedQty != 30 || reserved.AvailableQty != 70 {
		t.Fatalf("after reserve: got %d/%d/%d", reserved.Quantity, reserved.ReservedQty, reserved.AvailableQty)
	}

	// More than available must fail and leave the row unchanged.
	if _, err := svc.stock.Reserve(row.ID, 80, "test"); !apperr.IsKind(err, apperr.KindInsufficientAvailable) {
		t.Fatalf("expected insufficient available, got %v", err)
	}
	row = stockRow(t, db, p.ID, wh.ID)
	if row.ReservedQty != 30 || row.AvailableQty != 70 {
		t.Fatalf("failed reserve mutated row: %d/%d", row.ReservedQty, row.AvailableQty)
	}

	released, err := svc.stock.Release(row.ID, 30, "test")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.ReservedQty != 0 || released.AvailableQty != 100 {
		t.Fatalf("after release: %d/%d", released.ReservedQty, released.AvailableQty)
	}

	if _, err := svc.stock.Release(row.ID, 1, "test"); !apperr.IsKind(err, apperr.KindOverRelease) {
		t.Fatalf("expected over release, got %v", err)
	}
}

func TestApplyDeltaRejectsNegativeStock(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")

	err := db.Transaction(func(tx *gorm.DB) error {
		stock, err := svc.stock.GetOrCreateTx(tx, p.ID, wh.ID, nil, true)
		if err != nil {
			return err
		}
		return svc.stock.ApplyDeltaTx(tx, stock, -5)
	})
	if !apperr.IsKind(err, apperr.KindNegativeStock) {
		t.Fatalf("expected negative stock error, got %v", err)
	}

	// The transaction rolled back, so not even the zero row survives.
	var count int64
	if err := db.Model(&model.Stock{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no stock rows after rollback, got %d", count)
	}
}

func TestDebitCannotDropBelowReserved(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	creditStock(t, svc, p.ID, wh.ID, nil, 100)

	row := stockRow(t, db, p.ID, wh.ID)
	if _, err := svc.stock.Reserve(row.ID, 60, "test"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Issuing 50 would leave 50 on hand, below the 60 reserved.
	_, err := svc.movement.Create(MovementInput{
		Type:        model.MovementIssue,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		Quantity:    50,
		Actor:       "test",
	})
	if !apperr.IsKind(err, apperr.KindInsufficientAvailable) {
		t.Fatalf("expected insufficient available, got %v", err)
	}

	row = stockRow(t, db, p.ID, wh.ID)
	if row.Quantity != 100 || row.ReservedQty != 60 {
		t.Fatalf("failed issue mutated row: %d/%d", row.Quantity, row.ReservedQty)
	}
}

func TestSetQuantityBelowReservedRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	creditStock(t, svc, p.ID, wh.ID, nil, 100)

	row := stockRow(t, db, p.ID, wh.ID)
	if _, err := svc.stock.Reserve(row.ID, 40, "test"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		stock, err := svc.stock.GetOrCreateTx(tx, p.ID, wh.ID, nil, false)
		if err != nil {
			return err
		}
		return svc.stock.SetQuantityTx(tx, stock, 30)
	})
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestVerifyLedgerReplaysJournal(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	creditStock(t, svc, p.ID, wh.ID, nil, 100)

	if _, err := svc.movement.Create(MovementInput{
		Type:        model.MovementIssue,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		Quantity:    30,
		Reason:      "dispensed",
		Actor:       "test",
	}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	check, err := svc.stock.VerifyLedger(p.ID, wh.ID, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !check.Consistent || check.Quantity != 70 || check.MovementSum != 70 {
		t.Fatalf("expected consistent 70/70, got %+v", check)
	}

	// Tamper with the ledger behind the journal's back.
	if err := db.Model(&model.Stock{}).Where("product_id = ?", p.ID).Update("quantity", 99).Error; err != nil {
		t.Fatalf("tamper: %v", err)
	}
	check, err = svc.stock.VerifyLedger(p.ID, wh.ID, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if check.Consistent {
		t.Fatalf("expected inconsistency after tamper, got %+v", check)
	}
}

func TestNotifyLowStockIdempotent(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	if err := db.Model(p).Update("min_stock_level", 10).Error; err != nil {
		t.Fatalf("set min level: %v", err)
	}
	creditStock(t, svc, p.ID, wh.ID, nil, 5)

	rows, err := svc.stock.LowStock()
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(rows) != 1 || rows[0].ProductID != p.ID {
		t.Fatalf("expected one low stock row, got %+v", rows)
	}

	created, err := svc.stock.NotifyLowStock()
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 notification, got %d", created)
	}

	created, err = svc.stock.NotifyLowStock()
	if err != nil {
		t.Fatalf("notify again: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected no duplicate notifications, got %d", created)
	}
}
