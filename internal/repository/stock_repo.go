package repository

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockFilters narrows ledger listings.
type StockFilters struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	BatchID     *uuid.UUID
	OutOfStock  bool
	HasReserved bool
}

// LowStockRow is one product whose total on-hand quantity is at or below
// its minimum stock level.
type LowStockRow struct {
	ProductID     uuid.UUID `json:"product_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	MinStockLevel int       `json:"min_stock_level"`
	TotalQuantity int       `json:"total_quantity"`
}

type StockRepository interface {
	// FindByKeyForUpdate locks the ledger row for one (product, warehouse,
	// batch) key. Returns gorm.ErrRecordNotFound when no row exists.
	FindByKeyForUpdate(tx *gorm.DB, productID, warehouseID uuid.UUID, batchID *uuid.UUID) (*model.Stock, error)
	Create(tx *gorm.DB, s *model.Stock) error
	Save(tx *gorm.DB, s *model.Stock) error

	FindAll(p pagination.Params, f StockFilters) ([]model.Stock, int64, error)
	FindByID(id uuid.UUID) (*model.Stock, error)
	FindByProduct(productID uuid.UUID) ([]model.Stock, error)
	FindByWarehouse(warehouseID uuid.UUID) ([]model.Stock, error)
	FindPositiveByWarehouse(tx *gorm.DB, warehouseID uuid.UUID) ([]model.Stock, error)
	FindPositiveByBatch(batchID uuid.UUID) ([]model.Stock, error)
	HasActiveStock(batchID uuid.UUID) (bool, error)
	FindLowStock() ([]LowStockRow, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) FindByKeyForUpdate(tx *gorm.DB, productID, warehouseID uuid.UUID, batchID *uuid.UUID) (*model.Stock, error) {
	var stock model.Stock
	q := forUpdate(tx).Where("product_id = ? AND warehouse_id = ?", productID, warehouseID)
	q = batchScope(q, "batch_id", batchID)
	if err := q.First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepo) Create(tx *gorm.DB, s *model.Stock) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(s).Error
}

func (r *stockRepo) Save(tx *gorm.DB, s *model.Stock) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(s).Error
}

func (r *stockRepo) FindAll(p pagination.Params, f StockFilters) ([]model.Stock, int64, error) {
	q := r.db.Model(&model.Stock{})
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *f.WarehouseID)
	}
	if f.BatchID != nil {
		q = q.Where("batch_id = ?", *f.BatchID)
	}
	if f.OutOfStock {
		q = q.Where("quantity = 0")
	}
	if f.HasReserved {
		q = q.Where("reserved_qty > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stocks []model.Stock
	err := q.Preload("Product").Preload("Warehouse").Preload("Batch").
		Offset(p.Offset).Limit(p.Limit).Find(&stocks).Error
	return stocks, total, err
}

func (r *stockRepo) FindByID(id uuid.UUID) (*model.Stock, error) {
	var stock model.Stock
	err := r.db.Preload("Product").Preload("Warehouse").Preload("Batch").
		First(&stock, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepo) FindByProduct(productID uuid.UUID) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.Preload("Warehouse").Preload("Batch").
		Where("product_id = ?", productID).Find(&stocks).Error
	return stocks, err
}

func (r *stockRepo) FindByWarehouse(warehouseID uuid.UUID) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.Preload("Product").Preload("Batch").
		Where("warehouse_id = ?", warehouseID).Find(&stocks).Error
	return stocks, err
}

// FindPositiveByWarehouse snapshots every row holding stock; used inside the
// stock count start transaction.
func (r *stockRepo) FindPositiveByWarehouse(tx *gorm.DB, warehouseID uuid.UUID) ([]model.Stock, error) {
	if tx == nil {
		tx = r.db
	}
	var stocks []model.Stock
	err := tx.Where("warehouse_id = ? AND quantity > 0", warehouseID).Find(&stocks).Error
	return stocks, err
}

func (r *stockRepo) FindPositiveByBatch(batchID uuid.UUID) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.Preload("Warehouse").
		Where("batch_id = ? AND quantity > 0", batchID).Find(&stocks).Error
	return stocks, err
}

func (r *stockRepo) HasActiveStock(batchID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Stock{}).
		Where("batch_id = ? AND quantity > 0", batchID).Count(&count).Error
	return count > 0, err
}

// FindLowStock aggregates on-hand quantity per active product and returns
// those at or below their minimum stock level.
func (r *stockRepo) FindLowStock() ([]LowStockRow, error) {
	var rows []LowStockRow
	err := r.db.Model(&model.Stock{}).
		Select("stocks.product_id, products.code, products.name, products.min_stock_level, COALESCE(SUM(stocks.quantity), 0) as total_quantity").
		Joins("JOIN products ON products.id = stocks.product_id").
		Where("products.status = ? AND products.min_stock_level > 0", model.ProductActive).
		Group("stocks.product_id, products.code, products.name, products.min_stock_level").
		Having("COALESCE(SUM(stocks.quantity), 0) <= products.min_stock_level").
		Scan(&rows).Error
	return rows, err
}
