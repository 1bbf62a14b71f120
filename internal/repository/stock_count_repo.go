package repository

import (
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockCountFilters narrows count listings.
type StockCountFilters struct {
	Status      string
	WarehouseID *uuid.UUID
	DateFrom    *time.Time
	DateTo      *time.Time
}

type StockCountRepository interface {
	Create(count *model.StockCount) error
	FindAll(p pagination.Params, f StockCountFilters) ([]model.StockCount, int64, error)
	FindByID(id uuid.UUID) (*model.StockCount, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.StockCount, error)
	Save(tx *gorm.DB, count *model.StockCount) error
	CreateItems(tx *gorm.DB, items []model.StockCountItem) error
	SaveItem(tx *gorm.DB, item *model.StockCountItem) error
}

type stockCountRepo struct {
	db *gorm.DB
}

func NewStockCountRepo(db *gorm.DB) StockCountRepository {
	return &stockCountRepo{db}
}

func (r *stockCountRepo) Create(count *model.StockCount) error {
	return r.db.Create(count).Error
}

func (r *stockCountRepo) FindAll(p pagination.Params, f StockCountFilters) ([]model.StockCount, int64, error) {
	q := r.db.Model(&model.StockCount{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *f.WarehouseID)
	}
	if f.DateFrom != nil {
		q = q.Where("scheduled_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("scheduled_date <= ?", *f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var counts []model.StockCount
	err := q.Preload("Warehouse").Preload("Items.Product").
		Order("scheduled_date DESC").Offset(p.Offset).Limit(p.Limit).
		Find(&counts).Error
	return counts, total, err
}

func (r *stockCountRepo) FindByID(id uuid.UUID) (*model.StockCount, error) {
	var count model.StockCount
	err := r.db.Preload("Warehouse").Preload("Items.Product").
		First(&count, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &count, nil
}

func (r *stockCountRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.StockCount, error) {
	var count model.StockCount
	if err := forUpdate(tx).First(&count, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Preload("Product").Where("stock_count_id = ?", id).
		Find(&count.Items).Error; err != nil {
		return nil, err
	}
	return &count, nil
}

func (r *stockCountRepo) Save(tx *gorm.DB, count *model.StockCount) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Omit("Items").Save(count).Error
}

func (r *stockCountRepo) CreateItems(tx *gorm.DB, items []model.StockCountItem) error {
	if len(items) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	return tx.Create(&items).Error
}

func (r *stockCountRepo) SaveItem(tx *gorm.DB, item *model.StockCountItem) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(item).Error
}
