package repository

import (
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchFilters narrows batch listings.
type BatchFilters struct {
	ProductID          *uuid.UUID
	IsExpired          *bool
	IsRecalled         *bool
	ExpiringWithinDays int
	Search             string
}

type BatchRepository interface {
	Create(tx *gorm.DB, batch *model.Batch) error
	FindAll(p pagination.Params, f BatchFilters) ([]model.Batch, int64, error)
	FindByID(id uuid.UUID) (*model.Batch, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Batch, error)
	FindByNumber(batchNumber string) (*model.Batch, error)
	Update(tx *gorm.DB, batch *model.Batch) error
	Delete(id uuid.UUID, deletedBy string) error
	FindExpiredUnmarked(today time.Time) ([]model.Batch, error)
	FindExpiring(from, to time.Time) ([]model.Batch, error)
}

type batchRepo struct {
	db *gorm.DB
}

func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db}
}

func (r *batchRepo) Create(tx *gorm.DB, batch *model.Batch) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(batch).Error
}

func (r *batchRepo) FindAll(p pagination.Params, f BatchFilters) ([]model.Batch, int64, error) {
	q := r.db.Model(&model.Batch{})
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.IsExpired != nil {
		q = q.Where("is_expired = ?", *f.IsExpired)
	}
	if f.IsRecalled != nil {
		q = q.Where("is_recalled = ?", *f.IsRecalled)
	}
	if f.ExpiringWithinDays > 0 {
		now := time.Now()
		q = q.Where("is_expired = ?", false).
			Where("expiry_date BETWEEN ? AND ?", now, now.AddDate(0, 0, f.ExpiringWithinDays))
	}
	if f.Search != "" {
		q = q.Where("batch_number LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []model.Batch
	err := q.Preload("Product").Order("expiry_date ASC").
		Offset(p.Offset).Limit(p.Limit).Find(&batches).Error
	return batches, total, err
}

func (r *batchRepo) FindByID(id uuid.UUID) (*model.Batch, error) {
	var batch model.Batch
	err := r.db.Preload("Product").First(&batch, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Batch, error) {
	var batch model.Batch
	err := forUpdate(tx).First(&batch, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) FindByNumber(batchNumber string) (*model.Batch, error) {
	var batch model.Batch
	err := r.db.First(&batch, "batch_number = ?", batchNumber).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) Update(tx *gorm.DB, batch *model.Batch) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(batch).Error
}

func (r *batchRepo) Delete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.Batch{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Batch{}, "id = ?", id).Error
}

// FindExpiredUnmarked returns batches past expiry that still carry
// is_expired = false. Used by the idempotent expiry sweep.
func (r *batchRepo) FindExpiredUnmarked(today time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.Where("is_expired = ? AND expiry_date < ?", false, today).
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) FindExpiring(from, to time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.Preload("Product").
		Where("is_expired = ? AND is_recalled = ? AND current_quantity > 0", false, false).
		Where("expiry_date BETWEEN ? AND ?", from, to).
		Order("expiry_date ASC").
		Find(&batches).Error
	return batches, err
}
