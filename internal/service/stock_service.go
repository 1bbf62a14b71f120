package service

import (
	"errors"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStockSummary aggregates the ledger for one product.
type ProductStockSummary struct {
	Product        *model.Product    `json:"product"`
	TotalQuantity  int               `json:"total_quantity"`
	TotalReserved  int               `json:"total_reserved"`
	TotalAvailable int               `json:"total_available"`
	Status         model.StockStatus `json:"status"`
	Rows           []model.Stock     `json:"rows"`
}

// LedgerCheck compares a ledger row against the replayed movement journal.
type LedgerCheck struct {
	Quantity    int  `json:"quantity"`
	MovementSum int  `json:"movement_sum"`
	Consistent  bool `json:"consistent"`
}

// StockService owns the ledger. The *Tx methods are the only code allowed to
// mutate stock rows; callers must hold a transaction and pass rows obtained
// from GetOrCreateTx so every read-then-write happens under the row lock.
type StockService interface {
	// GetOrCreateTx locks the ledger row for one key. When no row exists it
	// creates a zero row if create is true, otherwise fails with NotFound.
	GetOrCreateTx(tx *gorm.DB, productID, warehouseID uuid.UUID, batchID *uuid.UUID, create bool) (*model.Stock, error)
	ApplyDeltaTx(tx *gorm.DB, stock *model.Stock, delta int) error
	ReserveTx(tx *gorm.DB, stock *model.Stock, qty int) error
	ReleaseTx(tx *gorm.DB, stock *model.Stock, qty int) error
	// SetQuantityTx writes an absolute on-hand quantity. Used only by stock
	// count approval; reservations are left untouched.
	SetQuantityTx(tx *gorm.DB, stock *model.Stock, quantity int) error

	GetStocks(p pagination.Params, f repository.StockFilters) ([]model.Stock, int64, error)
	GetStock(id uuid.UUID) (*model.Stock, error)
	GetProductStock(productID uuid.UUID) (*ProductStockSummary, error)
	GetWarehouseStock(warehouseID uuid.UUID) ([]model.Stock, error)
	Reserve(stockID uuid.UUID, qty int, actor string) (*model.Stock, error)
	Release(stockID uuid.UUID, qty int, actor string) (*model.Stock, error)
	VerifyLedger(productID, warehouseID uuid.UUID, batchID *uuid.UUID) (*LedgerCheck, error)
	LowStock() ([]repository.LowStockRow, error)
	NotifyLowStock() (int, error)
}

type stockService struct {
	stockRepo        repository.StockRepository
	movementRepo     repository.StockMovementRepository
	batchRepo        repository.BatchRepository
	productRepo      repository.ProductRepository
	notificationRepo repository.NotificationRepository
	db               *gorm.DB
}

func NewStockService(
	stockRepo repository.StockRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	notificationRepo repository.NotificationRepository,
	db *gorm.DB,
) StockService {
	return &stockService{
		stockRepo:        stockRepo,
		movementRepo:     movementRepo,
		batchRepo:        batchRepo,
		productRepo:      productRepo,
		notificationRepo: notificationRepo,
		db:               db,
	}
}

func (s *stockService) GetOrCreateTx(tx *gorm.DB, productID, warehouseID uuid.UUID, batchID *uuid.UUID, create bool) (*model.Stock, error) {
	stock, err := s.stockRepo.FindByKeyForUpdate(tx, productID, warehouseID, batchID)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !create {
		return nil, apperr.NotFound("no stock for product %s in warehouse %s", productID, warehouseID)
	}

	stock = &model.Stock{
		ProductID:   productID,
		WarehouseID: warehouseID,
		BatchID:     batchID,
	}
	if err := s.stockRepo.Create(tx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

func (s *stockService) ApplyDeltaTx(tx *gorm.DB, stock *model.Stock, delta int) error {
	newQty := stock.Quantity + delta
	if newQty < 0 {
		return apperr.NegativeStock("stock would go negative: quantity %d, delta %d", stock.Quantity, delta)
	}
	if newQty < stock.ReservedQty {
		return apperr.InsufficientAvailable("quantity %d would drop below reserved %d", newQty, stock.ReservedQty)
	}
	stock.Quantity = newQty
	return s.saveTx(tx, stock)
}

func (s *stockService) ReserveTx(tx *gorm.DB, stock *model.Stock, qty int) error {
	if qty <= 0 {
		return apperr.Validation("reserve quantity must be positive, got %d", qty)
	}
	if qty > stock.AvailableQty {
		return apperr.InsufficientAvailable("requested %d, available %d", qty, stock.AvailableQty)
	}
	if stock.BatchID != nil {
		var batch model.Batch
		if err := tx.First(&batch, "id = ?", *stock.BatchID).Error; err != nil {
			return err
		}
		if !batch.Allocatable() {
			return apperr.StateConflict("batch %s is not allocatable (expired or recalled)", batch.BatchNumber)
		}
	}
	stock.ReservedQty += qty
	return s.saveTx(tx, stock)
}

func (s *stockService) ReleaseTx(tx *gorm.DB, stock *model.Stock, qty int) error {
	if qty <= 0 {
		return apperr.Validation("release quantity must be positive, got %d", qty)
	}
	if qty > stock.ReservedQty {
		return apperr.OverRelease("release %d exceeds reserved %d", qty, stock.ReservedQty)
	}
	stock.ReservedQty -= qty
	return s.saveTx(tx, stock)
}

func (s *stockService) SetQuantityTx(tx *gorm.DB, stock *model.Stock, quantity int) error {
	if quantity < 0 {
		return apperr.Validation("quantity must not be negative, got %d", quantity)
	}
	if quantity < stock.ReservedQty {
		return apperr.StateConflict("counted quantity %d is below reserved %d", quantity, stock.ReservedQty)
	}
	stock.Quantity = quantity
	return s.saveTx(tx, stock)
}

// saveTx recomputes the stored available quantity and bumps the movement
// timestamp. Every mutator funnels through here.
func (s *stockService) saveTx(tx *gorm.DB, stock *model.Stock) error {
	stock.AvailableQty = stock.Quantity - stock.ReservedQty
	now := time.Now()
	stock.LastMovementDate = &now
	return s.stockRepo.Save(tx, stock)
}

func (s *stockService) GetStocks(p pagination.Params, f repository.StockFilters) ([]model.Stock, int64, error) {
	return s.stockRepo.FindAll(p, f)
}

func (s *stockService) GetStock(id uuid.UUID) (*model.Stock, error) {
	stock, err := s.stockRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("stock %s not found", id)
		}
		return nil, err
	}
	return stock, nil
}

func (s *stockService) GetProductStock(productID uuid.UUID) (*ProductStockSummary, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", productID)
		}
		return nil, err
	}

	rows, err := s.stockRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}

	summary := &ProductStockSummary{Product: product, Rows: rows}
	for _, row := range rows {
		summary.TotalQuantity += row.Quantity
		summary.TotalReserved += row.ReservedQty
		summary.TotalAvailable += row.AvailableQty
	}
	total := model.Stock{Quantity: summary.TotalQuantity}
	summary.Status = total.Status(product.MinStockLevel)
	return summary, nil
}

func (s *stockService) GetWarehouseStock(warehouseID uuid.UUID) ([]model.Stock, error) {
	return s.stockRepo.FindByWarehouse(warehouseID)
}

func (s *stockService) Reserve(stockID uuid.UUID, qty int, actor string) (*model.Stock, error) {
	return s.mutate(stockID, actor, func(tx *gorm.DB, stock *model.Stock) error {
		return s.ReserveTx(tx, stock, qty)
	})
}

func (s *stockService) Release(stockID uuid.UUID, qty int, actor string) (*model.Stock, error) {
	return s.mutate(stockID, actor, func(tx *gorm.DB, stock *model.Stock) error {
		return s.ReleaseTx(tx, stock, qty)
	})
}

// mutate resolves the row's key, then re-reads it under the lock before
// applying fn so concurrent mutations serialize.
func (s *stockService) mutate(stockID uuid.UUID, actor string, fn func(tx *gorm.DB, stock *model.Stock) error) (*model.Stock, error) {
	existing, err := s.GetStock(stockID)
	if err != nil {
		return nil, err
	}

	var result *model.Stock
	err = s.db.Transaction(func(tx *gorm.DB) error {
		stock, err := s.stockRepo.FindByKeyForUpdate(tx, existing.ProductID, existing.WarehouseID, existing.BatchID)
		if err != nil {
			return err
		}
		stock.UpdatedBy = actor
		if err := fn(tx, stock); err != nil {
			return err
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyLedger replays the movement journal for one key and compares the sum
// against the stored quantity.
func (s *stockService) VerifyLedger(productID, warehouseID uuid.UUID, batchID *uuid.UUID) (*LedgerCheck, error) {
	sum, err := s.movementRepo.SumByKey(productID, warehouseID, batchID)
	if err != nil {
		return nil, err
	}

	quantity := 0
	stock, err := s.stockRepo.FindByKeyForUpdate(s.db, productID, warehouseID, batchID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if stock != nil {
		quantity = stock.Quantity
	}

	return &LedgerCheck{
		Quantity:    quantity,
		MovementSum: sum,
		Consistent:  quantity == sum,
	}, nil
}

func (s *stockService) LowStock() ([]repository.LowStockRow, error) {
	return s.stockRepo.FindLowStock()
}

// NotifyLowStock raises one LOW_STOCK notification per product at or below
// its minimum level. Re-running creates no duplicates.
func (s *stockService) NotifyLowStock() (int, error) {
	rows, err := s.stockRepo.FindLowStock()
	if err != nil {
		return 0, err
	}

	created := 0
	for _, row := range rows {
		exists, err := s.notificationRepo.ExistsForReference(model.NotifyLowStock, "PRODUCT", row.ProductID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		refID := row.ProductID
		n := &model.Notification{
			Type:          model.NotifyLowStock,
			Title:         "Low stock: " + row.Code,
			Message:       lowStockMessage(row),
			Priority:      model.PriorityHigh,
			ReferenceType: "PRODUCT",
			ReferenceID:   &refID,
		}
		if err := s.notificationRepo.Create(nil, n); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func lowStockMessage(row repository.LowStockRow) string {
	return "Product " + row.Name + " (" + row.Code + ") is at or below its minimum stock level"
}
