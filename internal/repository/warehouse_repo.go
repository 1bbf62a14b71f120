package repository

import (
	"go-medwarehouse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WarehouseRepository interface {
	Create(w *model.Warehouse) error
	FindAll() ([]model.Warehouse, error)
	FindByID(id uuid.UUID) (*model.Warehouse, error)
	FindByCode(code string) (*model.Warehouse, error)
	Update(w *model.Warehouse) error
	CreateZone(z *model.Zone) error
	CreateShelf(s *model.Shelf) error
	FindZones(warehouseID uuid.UUID) ([]model.Zone, error)
}

type warehouseRepo struct {
	db *gorm.DB
}

func NewWarehouseRepo(db *gorm.DB) WarehouseRepository {
	return &warehouseRepo{db}
}

func (r *warehouseRepo) Create(w *model.Warehouse) error {
	return r.db.Create(w).Error
}

func (r *warehouseRepo) FindAll() ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	err := r.db.Order("code ASC").Find(&warehouses).Error
	return warehouses, err
}

func (r *warehouseRepo) FindByID(id uuid.UUID) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.Preload("Zones.Shelves").First(&w, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *warehouseRepo) FindByCode(code string) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.First(&w, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *warehouseRepo) Update(w *model.Warehouse) error {
	return r.db.Save(w).Error
}

func (r *warehouseRepo) CreateZone(z *model.Zone) error {
	return r.db.Create(z).Error
}

func (r *warehouseRepo) CreateShelf(s *model.Shelf) error {
	return r.db.Create(s).Error
}

func (r *warehouseRepo) FindZones(warehouseID uuid.UUID) ([]model.Zone, error) {
	var zones []model.Zone
	err := r.db.Preload("Shelves").Where("warehouse_id = ?", warehouseID).
		Order("code ASC").Find(&zones).Error
	return zones, err
}
