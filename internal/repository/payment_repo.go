package repository

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(tx *gorm.DB, p *model.Payment) error
	FindAll(p pagination.Params, purchaseOrderID *uuid.UUID) ([]model.Payment, int64, error)
	FindByID(id uuid.UUID) (*model.Payment, error)
	TotalPaid(tx *gorm.DB, purchaseOrderID uuid.UUID) (decimal.Decimal, error)
	Delete(id uuid.UUID, deletedBy string) error
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(tx *gorm.DB, p *model.Payment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(p).Error
}

func (r *paymentRepo) FindAll(p pagination.Params, purchaseOrderID *uuid.UUID) ([]model.Payment, int64, error) {
	q := r.db.Model(&model.Payment{})
	if purchaseOrderID != nil {
		q = q.Where("purchase_order_id = ?", *purchaseOrderID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err := q.Preload("PurchaseOrder").Order("payment_date DESC").
		Offset(p.Offset).Limit(p.Limit).Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) FindByID(id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Preload("PurchaseOrder").First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) TotalPaid(tx *gorm.DB, purchaseOrderID uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		tx = r.db
	}
	var total decimal.NullDecimal
	err := tx.Model(&model.Payment{}).
		Where("purchase_order_id = ?", purchaseOrderID).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *paymentRepo) Delete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.Payment{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Payment{}, "id = ?", id).Error
}
