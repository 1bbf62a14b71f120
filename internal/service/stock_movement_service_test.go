package service

import (
	"strings"
	"testing"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/apperr"

	"github.com/shopspring/decimal"
)

func TestReceiptThenIssue(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")

	price := decimal.NewFromFloat(2.50)
	receipt, err := svc.movement.Create(MovementInput{
		Type:        model.MovementReceipt,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		Quantity:    100,
		UnitPrice:   &price,
		Actor:       "test",
	})
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if !strings.HasPrefix(receipt.MovementNumber, "SM-") {
		t.Fatalf("unexpected movement number %s", receipt.MovementNumber)
	}
	if receipt.Quantity != 100 {
		t.Fatalf("expected stored +100, got %d", receipt.Quantity)
	}
	if receipt.TotalValue == nil || !receipt.TotalValue.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected total value 250, got %v", receipt.TotalValue)
	}

	issue, err := svc.movement.Create(MovementInput{
		Type:        model.MovementIssue,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		Quantity:    30,
		Reason:      "dispensed",
		Actor:       "test",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issue.Quantity != -30 {
		t.Fatalf("expected stored -30, got %d", issue.Quantity)
	}

	row := stockRow(t, db, p.ID, wh.ID)
	if row.Quantity != 70 {
		t.Fatalf("expected quantity 70, got %d", row.Quantity)
	}
}

func TestManualMovementRejectsWorkflowTypes(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")

	for _, typ := range []model.MovementType{model.MovementStockCount, model.MovementTransferIn, model.MovementTransferOut} {
		_, err := svc.movement.Create(MovementInput{
			Type:        typ,
			ProductID:   p.ID,
			WarehouseID: wh.ID,
			Quantity:    10,
			Actor:       "test",
		})
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", typ, err)
		}
	}
}

func TestAdjustmentKeepsSign(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	creditStock(t, svc, p.ID, wh.ID, nil, 50)

	down, err := svc.movement.Create(MovementInput{
		Type:        model.MovementAdjustment,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		Quantity:    -8,
		Reason:      "spillage",
		Actor:       "test",
	})
	if err != nil {
		t.Fatalf("adjust down: %v", err)
	}
	if down.Quantity != -8 {
		t.Fatalf("expected stored -8, got %d", down.Quantity)
	}

	if _, err := svc.movement.Create(MovementInput{
		Type:        model.MovementAdjustment,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		Quantity:    3,
		Reason:      "recount",
		Actor:       "test",
	}); err != nil {
		t.Fatalf("adjust up: %v", err)
	}

	row := stockRow(t, db, p.ID, wh.ID)
	if row.Quantity != 45 {
		t.Fatalf("expected quantity 45, got %d", row.Quantity)
	}
}

func TestIssueFromRecalledBatchBlocked(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	batch := seedBatch(t, db, p.ID, "LOT-1", 100, 0)
	creditStock(t, svc, p.ID, wh.ID, &batch.ID, 100)

	if _, err := svc.batch.Recall(batch.ID, "contamination", "qa"); err != nil {
		t.Fatalf("recall: %v", err)
	}

	_, err := svc.movement.Create(MovementInput{
		Type:        model.MovementIssue,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		BatchID:     &batch.ID,
		Quantity:    10,
		Actor:       "test",
	})
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict for recalled batch, got %v", err)
	}

	// Disposals remain allowed so bad stock can still be removed.
	if _, err := svc.movement.Create(MovementInput{
		Type:        model.MovementDamaged,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		BatchID:     &batch.ID,
		Quantity:    10,
		Reason:      "destroyed after recall",
		Actor:       "test",
	}); err != nil {
		t.Fatalf("disposal: %v", err)
	}

	row := stockRow(t, db, p.ID, wh.ID)
	if row.Quantity != 90 {
		t.Fatalf("expected quantity 90, got %d", row.Quantity)
	}
}

func TestBatchQuantityTracksLedger(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	batch := seedBatch(t, db, p.ID, "LOT-1", 100, 0)

	creditStock(t, svc, p.ID, wh.ID, &batch.ID, 100)
	if _, err := svc.movement.Create(MovementInput{
		Type:        model.MovementIssue,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		BatchID:     &batch.ID,
		Quantity:    40,
		Actor:       "test",
	}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	var reloaded model.Batch
	if err := db.First(&reloaded, "id = ?", batch.ID).Error; err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if reloaded.CurrentQuantity != 60 {
		t.Fatalf("expected batch quantity 60, got %d", reloaded.CurrentQuantity)
	}
}

func TestZeroQuantityRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")

	_, err := svc.movement.Create(MovementInput{
		Type:        model.MovementReceipt,
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		Quantity:    0,
		Actor:       "test",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
