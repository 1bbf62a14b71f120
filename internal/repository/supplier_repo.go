package repository

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(s *model.Supplier) error
	FindAll(p pagination.Params, search string) ([]model.Supplier, int64, error)
	FindByID(id uuid.UUID) (*model.Supplier, error)
	FindByCode(code string) (*model.Supplier, error)
	Update(s *model.Supplier) error
	Delete(id uuid.UUID, deletedBy string) error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(s *model.Supplier) error {
	return r.db.Create(s).Error
}

func (r *supplierRepo) FindAll(p pagination.Params, search string) ([]model.Supplier, int64, error) {
	q := r.db.Model(&model.Supplier{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var suppliers []model.Supplier
	err := q.Order("name ASC").Offset(p.Offset).Limit(p.Limit).Find(&suppliers).Error
	return suppliers, total, err
}

func (r *supplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepo) FindByCode(code string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.First(&s, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepo) Update(s *model.Supplier) error {
	return r.db.Save(s).Error
}

func (r *supplierRepo) Delete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.Supplier{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Supplier{}, "id = ?", id).Error
}
