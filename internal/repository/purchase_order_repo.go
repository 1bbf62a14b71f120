package repository

import (
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOrderFilters narrows order listings.
type PurchaseOrderFilters struct {
	Status      string
	Supplier    string
	WarehouseID *uuid.UUID
	DateFrom    *time.Time
	DateTo      *time.Time
}

type PurchaseOrderRepository interface {
	Create(order *model.PurchaseOrder) error
	FindAll(p pagination.Params, f PurchaseOrderFilters) ([]model.PurchaseOrder, int64, error)
	FindByID(id uuid.UUID) (*model.PurchaseOrder, error)
	// FindByIDForUpdate locks the order row (not its items) so concurrent
	// transitions serialize; items are loaded after the lock is taken.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	Save(tx *gorm.DB, order *model.PurchaseOrder) error
	SaveItem(tx *gorm.DB, item *model.PurchaseOrderItem) error
	ReplaceItems(tx *gorm.DB, orderID uuid.UUID, items []model.PurchaseOrderItem) error
	CountByStatus() (map[model.PurchaseOrderStatus]int64, error)
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func (r *purchaseOrderRepo) Create(order *model.PurchaseOrder) error {
	return r.db.Create(order).Error
}

func (r *purchaseOrderRepo) FindAll(p pagination.Params, f PurchaseOrderFilters) ([]model.PurchaseOrder, int64, error) {
	q := r.db.Model(&model.PurchaseOrder{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Supplier != "" {
		q = q.Where("supplier LIKE ?", "%"+f.Supplier+"%")
	}
	if f.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *f.WarehouseID)
	}
	if f.DateFrom != nil {
		q = q.Where("order_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("order_date <= ?", *f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.PurchaseOrder
	err := q.Preload("Items.Product").Preload("Warehouse").
		Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *purchaseOrderRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.Preload("Items.Product").Preload("Warehouse").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Preload("Product").Where("purchase_order_id = ?", id).
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepo) Save(tx *gorm.DB, order *model.PurchaseOrder) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Omit("Items").Save(order).Error
}

func (r *purchaseOrderRepo) SaveItem(tx *gorm.DB, item *model.PurchaseOrderItem) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(item).Error
}

// ReplaceItems swaps the order's line items wholesale; used for draft edits.
func (r *purchaseOrderRepo) ReplaceItems(tx *gorm.DB, orderID uuid.UUID, items []model.PurchaseOrderItem) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Where("purchase_order_id = ?", orderID).
		Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *purchaseOrderRepo) CountByStatus() (map[model.PurchaseOrderStatus]int64, error) {
	type row struct {
		Status model.PurchaseOrderStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.PurchaseOrder{}).
		Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.PurchaseOrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
