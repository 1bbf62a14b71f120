package repository

import (
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransferOrderFilters narrows transfer listings.
type TransferOrderFilters struct {
	Status          string
	FromWarehouseID *uuid.UUID
	ToWarehouseID   *uuid.UUID
	DateFrom        *time.Time
	DateTo          *time.Time
}

type TransferOrderRepository interface {
	Create(order *model.TransferOrder) error
	FindAll(p pagination.Params, f TransferOrderFilters) ([]model.TransferOrder, int64, error)
	FindByID(id uuid.UUID) (*model.TransferOrder, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.TransferOrder, error)
	Save(tx *gorm.DB, order *model.TransferOrder) error
	SaveItem(tx *gorm.DB, item *model.TransferOrderItem) error
	CountByStatus() (map[model.TransferStatus]int64, error)
}

type transferOrderRepo struct {
	db *gorm.DB
}

func NewTransferOrderRepo(db *gorm.DB) TransferOrderRepository {
	return &transferOrderRepo{db}
}

func (r *transferOrderRepo) Create(order *model.TransferOrder) error {
	return r.db.Create(order).Error
}

func (r *transferOrderRepo) FindAll(p pagination.Params, f TransferOrderFilters) ([]model.TransferOrder, int64, error) {
	q := r.db.Model(&model.TransferOrder{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FromWarehouseID != nil {
		q = q.Where("from_warehouse_id = ?", *f.FromWarehouseID)
	}
	if f.ToWarehouseID != nil {
		q = q.Where("to_warehouse_id = ?", *f.ToWarehouseID)
	}
	if f.DateFrom != nil {
		q = q.Where("request_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("request_date <= ?", *f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.TransferOrder
	err := q.Preload("Items.Product").Preload("FromWarehouse").Preload("ToWarehouse").
		Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *transferOrderRepo) FindByID(id uuid.UUID) (*model.TransferOrder, error) {
	var order model.TransferOrder
	err := r.db.Preload("Items.Product").Preload("FromWarehouse").Preload("ToWarehouse").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *transferOrderRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.TransferOrder, error) {
	var order model.TransferOrder
	if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Preload("Product").Where("transfer_order_id = ?", id).
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *transferOrderRepo) Save(tx *gorm.DB, order *model.TransferOrder) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Omit("Items").Save(order).Error
}

func (r *transferOrderRepo) SaveItem(tx *gorm.DB, item *model.TransferOrderItem) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(item).Error
}

func (r *transferOrderRepo) CountByStatus() (map[model.TransferStatus]int64, error) {
	type row struct {
		Status model.TransferStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.TransferOrder{}).
		Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.TransferStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
