package service

import (
	"fmt"
	"testing"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Supplier{},
		&model.Warehouse{}, &model.Zone{}, &model.Shelf{},
		&model.Product{}, &model.Batch{},
		&model.Stock{}, &model.StockMovement{},
		&model.PurchaseOrder{}, &model.PurchaseOrderItem{},
		&model.TransferOrder{}, &model.TransferOrderItem{},
		&model.StockCount{}, &model.StockCountItem{},
		&model.Notification{}, &model.Payment{},
		&model.Sequence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testServices struct {
	stock    StockService
	movement StockMovementService
	batch    BatchService
	purchase PurchaseOrderService
	transfer TransferOrderService
	count    StockCountService
	payment  PaymentService
}

func newTestServices(db *gorm.DB) testServices {
	stockRepo := repository.NewStockRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	productRepo := repository.NewProductRepo(db)
	warehouseRepo := repository.NewWarehouseRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	purchaseRepo := repository.NewPurchaseOrderRepo(db)
	transferRepo := repository.NewTransferOrderRepo(db)
	countRepo := repository.NewStockCountRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	sequenceRepo := repository.NewSequenceRepo()

	stock := NewStockService(stockRepo, movementRepo, batchRepo, productRepo, notificationRepo, db)
	movement := NewStockMovementService(movementRepo, batchRepo, productRepo, warehouseRepo, sequenceRepo, stock, db)
	return testServices{
		stock:    stock,
		movement: movement,
		batch:    NewBatchService(batchRepo, stockRepo, productRepo, notificationRepo, db),
		purchase: NewPurchaseOrderService(purchaseRepo, productRepo, warehouseRepo, batchRepo, sequenceRepo, movement, db),
		transfer: NewTransferOrderService(transferRepo, productRepo, warehouseRepo, sequenceRepo, stock, movement, db),
		count:    NewStockCountService(countRepo, warehouseRepo, stockRepo, sequenceRepo, stock, movement, db),
		payment:  NewPaymentService(paymentRepo, purchaseRepo, db),
	}
}

func seedWarehouse(t *testing.T, db *gorm.DB, code string) *model.Warehouse {
	t.Helper()
	w := &model.Warehouse{Code: code, Name: "Warehouse " + code, Type: model.WarehouseBranch, IsActive: true}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("seed warehouse: %v", err)
	}
	return w
}

func seedProduct(t *testing.T, db *gorm.DB, code string) *model.Product {
	t.Helper()
	p := &model.Product{
		Code:          code,
		Name:          "Product " + code,
		Category:      model.CategoryMedication,
		UnitOfMeasure: model.UnitBox,
		Status:        model.ProductActive,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedBatch(t *testing.T, db *gorm.DB, productID uuid.UUID, number string, initial, current int) *model.Batch {
	t.Helper()
	b := &model.Batch{
		BatchNumber:     number,
		ProductID:       productID,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
		InitialQuantity: initial,
		CurrentQuantity: current,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return b
}

// creditStock books a RECEIPT movement so the ledger row exists.
func creditStock(t *testing.T, svc testServices, productID, warehouseID uuid.UUID, batchID *uuid.UUID, qty int) {
	t.Helper()
	if _, err := svc.movement.Create(MovementInput{
		Type:        model.MovementReceipt,
		ProductID:   productID,
		WarehouseID: warehouseID,
		BatchID:     batchID,
		Quantity:    qty,
		Actor:       "test",
	}); err != nil {
		t.Fatalf("credit stock: %v", err)
	}
}

func stockRow(t *testing.T, db *gorm.DB, productID, warehouseID uuid.UUID) *model.Stock {
	t.Helper()
	var s model.Stock
	if err := db.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&s).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return &s
}
