package repository

import (
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilters narrows journal listings.
type MovementFilters struct {
	Type          string
	ProductID     *uuid.UUID
	WarehouseID   *uuid.UUID
	BatchID       *uuid.UUID
	ReferenceType string
	ReferenceID   *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
}

// TypeSummary aggregates the journal per movement type.
type TypeSummary struct {
	Type          model.MovementType `json:"type"`
	Count         int64              `json:"count"`
	TotalQuantity int64              `json:"total_quantity"`
}

type StockMovementRepository interface {
	Create(tx *gorm.DB, m *model.StockMovement) error
	FindAll(p pagination.Params, f MovementFilters) ([]model.StockMovement, int64, error)
	FindByID(id uuid.UUID) (*model.StockMovement, error)
	FindByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error)
	// SumByKey replays the journal for one ledger key: the sum of signed
	// movement quantities (STOCK_COUNT excluded) for conservation checks.
	SumByKey(productID, warehouseID uuid.UUID, batchID *uuid.UUID) (int, error)
	SummarizeByType(warehouseID *uuid.UUID, from, to *time.Time) ([]TypeSummary, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) Create(tx *gorm.DB, m *model.StockMovement) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(m).Error
}

func (r *stockMovementRepo) FindAll(p pagination.Params, f MovementFilters) ([]model.StockMovement, int64, error) {
	q := r.db.Model(&model.StockMovement{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *f.WarehouseID)
	}
	if f.BatchID != nil {
		q = q.Where("batch_id = ?", *f.BatchID)
	}
	if f.ReferenceType != "" {
		q = q.Where("reference_type = ?", f.ReferenceType)
	}
	if f.ReferenceID != nil {
		q = q.Where("reference_id = ?", *f.ReferenceID)
	}
	if f.DateFrom != nil {
		q = q.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("created_at <= ?", *f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []model.StockMovement
	err := q.Preload("Product").Preload("Warehouse").Preload("Batch").
		Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).
		Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) FindByID(id uuid.UUID) (*model.StockMovement, error) {
	var m model.StockMovement
	err := r.db.Preload("Product").Preload("Warehouse").Preload("Batch").
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *stockMovementRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []model.StockMovement
	err := r.db.Preload("Warehouse").Preload("Batch").
		Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) SumByKey(productID, warehouseID uuid.UUID, batchID *uuid.UUID) (int, error) {
	var sum int
	q := r.db.Model(&model.StockMovement{}).
		Where("product_id = ? AND warehouse_id = ? AND type <> ?",
			productID, warehouseID, model.MovementStockCount)
	q = batchScope(q, "batch_id", batchID)
	err := q.Select("COALESCE(SUM(quantity), 0)").Scan(&sum).Error
	return sum, err
}

func (r *stockMovementRepo) SummarizeByType(warehouseID *uuid.UUID, from, to *time.Time) ([]TypeSummary, error) {
	q := r.db.Model(&model.StockMovement{})
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}

	var summaries []TypeSummary
	err := q.Select("type, COUNT(*) as count, COALESCE(SUM(quantity), 0) as total_quantity").
		Group("type").Scan(&summaries).Error
	return summaries, err
}
