package service

import (
	"testing"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/apperr"
)

func TestBatchCreateDefaultsCurrentQuantity(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	batch := &model.Batch{
		BatchNumber:     "LOT-1",
		ProductID:       p.ID,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
		InitialQuantity: 200,
	}
	if err := svc.batch.Create(batch, "test"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if batch.CurrentQuantity != 200 {
		t.Fatalf("expected current quantity 200, got %d", batch.CurrentQuantity)
	}
}

func TestBatchDuplicateNumberRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")
	seedBatch(t, db, p.ID, "LOT-1", 100, 100)

	err := svc.batch.Create(&model.Batch{
		BatchNumber:     "LOT-1",
		ProductID:       p.ID,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
		InitialQuantity: 50,
	}, "test")
	if !apperr.IsKind(err, apperr.KindDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestBatchRecallNotifiesHoldings(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	whA := seedWarehouse(t, db, "WH-A")
	whB := seedWarehouse(t, db, "WH-B")
	p := seedProduct(t, db, "MED-001")
	batch := seedBatch(t, db, p.ID, "LOT-1", 200, 0)
	creditStock(t, svc, p.ID, whA.ID, &batch.ID, 120)
	creditStock(t, svc, p.ID, whB.ID, &batch.ID, 80)

	recalled, err := svc.batch.Recall(batch.ID, "contamination", "qa")
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if !recalled.IsRecalled || recalled.RecallReason != "contamination" {
		t.Fatalf("batch not flagged: %+v", recalled)
	}

	var notifications int64
	if err := db.Model(&model.Notification{}).Where("type = ?", model.NotifyRecall).Count(&notifications).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if notifications != 2 {
		t.Fatalf("expected one notification per holding warehouse, got %d", notifications)
	}

	if _, err := svc.batch.Recall(batch.ID, "again", "qa"); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict on second recall, got %v", err)
	}
}

func TestBatchRecallRequiresReason(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")
	batch := seedBatch(t, db, p.ID, "LOT-1", 100, 100)

	if _, err := svc.batch.Recall(batch.ID, "", "qa"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkExpiredIdempotent(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	stale := &model.Batch{
		BatchNumber:     "LOT-OLD",
		ProductID:       p.ID,
		ExpiryDate:      time.Now().AddDate(0, 0, -10),
		InitialQuantity: 50,
		CurrentQuantity: 50,
	}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedBatch(t, db, p.ID, "LOT-FRESH", 50, 50)

	marked, err := svc.batch.MarkExpired("system")
	if err != nil {
		t.Fatalf("mark expired: %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 marked, got %d", marked)
	}

	marked, err = svc.batch.MarkExpired("system")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if marked != 0 {
		t.Fatalf("expected second run to mark nothing, got %d", marked)
	}

	var reloaded model.Batch
	if err := db.First(&reloaded, "id = ?", stale.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsExpired {
		t.Fatalf("batch not marked expired")
	}
}

func TestExpiredBatchNotReservable(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	batch := seedBatch(t, db, p.ID, "LOT-1", 100, 0)
	creditStock(t, svc, p.ID, wh.ID, &batch.ID, 100)

	if err := db.Model(batch).Update("is_expired", true).Error; err != nil {
		t.Fatalf("expire: %v", err)
	}

	row := stockRow(t, db, p.ID, wh.ID)
	if _, err := svc.stock.Reserve(row.ID, 10, "test"); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict for expired batch, got %v", err)
	}
}

func TestBatchDeleteBlockedByActiveStock(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	batch := seedBatch(t, db, p.ID, "LOT-1", 100, 0)
	creditStock(t, svc, p.ID, wh.ID, &batch.ID, 100)

	if err := svc.batch.Delete(batch.ID, "test"); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
