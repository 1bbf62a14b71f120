package service

import (
	"testing"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/apperr"
)

func TestStockCountLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	creditStock(t, svc, p.ID, wh.ID, nil, 100)

	count, err := svc.count.Create(CreateStockCountInput{
		WarehouseID:   wh.ID,
		ScheduledDate: time.Now(),
	}, "auditor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	started, err := svc.count.Start(count.ID, "auditor")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != model.CountInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", started.Status)
	}
	if len(started.Items) != 1 || started.Items[0].SystemQty != 100 {
		t.Fatalf("expected one snapshot item at 100, got %+v", started.Items)
	}

	if _, err := svc.count.RecordCounts(count.ID, []CountEntry{
		{ProductID: p.ID, CountedQty: 90},
	}, "auditor"); err != nil {
		t.Fatalf("record: %v", err)
	}

	completed, err := svc.count.Complete(count.ID, "auditor")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.CountCompleted || completed.EndDate == nil {
		t.Fatalf("expected COMPLETED with end date, got %+v", completed)
	}

	approved, err := svc.count.Approve(count.ID, "manager")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.CountApproved || approved.ApprovedBy != "manager" {
		t.Fatalf("expected APPROVED by manager, got %+v", approved)
	}

	row := stockRow(t, db, p.ID, wh.ID)
	if row.Quantity != 90 {
		t.Fatalf("expected ledger written to 90, got %d", row.Quantity)
	}

	var adjustment model.StockMovement
	if err := db.First(&adjustment, "type = ? AND reference_id = ?", model.MovementStockCount, count.ID).Error; err != nil {
		t.Fatalf("load adjustment: %v", err)
	}
	if adjustment.Quantity != -10 {
		t.Fatalf("expected variance -10 journaled, got %d", adjustment.Quantity)
	}

	// The journal replays to the corrected quantity.
	check, err := svc.stock.VerifyLedger(p.ID, wh.ID, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !check.Consistent || check.Quantity != 90 {
		t.Fatalf("expected consistent ledger at 90, got %+v", check)
	}
}

func TestStockCountRecordOverwrites(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")
	creditStock(t, svc, p.ID, wh.ID, nil, 50)

	count, err := svc.count.Create(CreateStockCountInput{WarehouseID: wh.ID, ScheduledDate: time.Now()}, "auditor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.count.Start(count.ID, "auditor"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.count.RecordCounts(count.ID, []CountEntry{{ProductID: p.ID, CountedQty: 48}}, "auditor"); err != nil {
		t.Fatalf("first record: %v", err)
	}
	result, err := svc.count.RecordCounts(count.ID, []CountEntry{{ProductID: p.ID, CountedQty: 52}}, "auditor")
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	item := result.Items[0]
	if item.CountedQty == nil || *item.CountedQty != 52 || item.Variance == nil || *item.Variance != 2 {
		t.Fatalf("expected counted 52 variance 2, got %+v", item)
	}
}

func TestStockCountCompleteRequiresAllCounted(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p1 := seedProduct(t, db, "MED-001")
	p2 := seedProduct(t, db, "MED-002")
	creditStock(t, svc, p1.ID, wh.ID, nil, 10)
	creditStock(t, svc, p2.ID, wh.ID, nil, 20)

	count, err := svc.count.Create(CreateStockCountInput{WarehouseID: wh.ID, ScheduledDate: time.Now()}, "auditor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.count.Start(count.ID, "auditor"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.count.RecordCounts(count.ID, []CountEntry{{ProductID: p1.ID, CountedQty: 10}}, "auditor"); err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := svc.count.Complete(count.ID, "auditor"); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict for uncounted items, got %v", err)
	}
}

func TestStockCountRecordBeforeStart(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p := seedProduct(t, db, "MED-001")

	count, err := svc.count.Create(CreateStockCountInput{WarehouseID: wh.ID, ScheduledDate: time.Now()}, "auditor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.count.RecordCounts(count.ID, []CountEntry{{ProductID: p.ID, CountedQty: 5}}, "auditor")
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestStockCountScheduledInPast(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")

	_, err := svc.count.Create(CreateStockCountInput{
		WarehouseID:   wh.ID,
		ScheduledDate: time.Now().AddDate(0, 0, -2),
	}, "auditor")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStockCountVarianceReport(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	wh := seedWarehouse(t, db, "WH1")
	p1 := seedProduct(t, db, "MED-001")
	p2 := seedProduct(t, db, "MED-002")
	creditStock(t, svc, p1.ID, wh.ID, nil, 100)
	creditStock(t, svc, p2.ID, wh.ID, nil, 40)

	count, err := svc.count.Create(CreateStockCountInput{WarehouseID: wh.ID, ScheduledDate: time.Now()}, "auditor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.count.Start(count.ID, "auditor"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.count.RecordCounts(count.ID, []CountEntry{
		{ProductID: p1.ID, CountedQty: 95},
		{ProductID: p2.ID, CountedQty: 40},
	}, "auditor"); err != nil {
		t.Fatalf("record: %v", err)
	}

	report, err := svc.count.Variance(count.ID)
	if err != nil {
		t.Fatalf("variance: %v", err)
	}
	if report.TotalItems != 2 || report.CountedItems != 2 {
		t.Fatalf("expected 2 items counted, got %+v", report)
	}
	if report.WithVariance != 1 || report.TotalVariance != -5 {
		t.Fatalf("expected one variance of -5, got %+v", report)
	}
}
