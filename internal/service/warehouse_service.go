package service

import (
	"errors"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WarehouseService interface {
	Create(w *model.Warehouse, actor string) error
	GetWarehouses() ([]model.Warehouse, error)
	GetWarehouse(id uuid.UUID) (*model.Warehouse, error)
	Update(id uuid.UUID, req *model.Warehouse, actor string) (*model.Warehouse, error)
	// Deactivate refuses while the warehouse still holds stock.
	Deactivate(id uuid.UUID, actor string) (*model.Warehouse, error)

	CreateZone(warehouseID uuid.UUID, zone *model.Zone, actor string) error
	CreateShelf(zoneID uuid.UUID, shelf *model.Shelf, actor string) error
	GetZones(warehouseID uuid.UUID) ([]model.Zone, error)
}

type warehouseService struct {
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRepository
}

func NewWarehouseService(warehouseRepo repository.WarehouseRepository, stockRepo repository.StockRepository) WarehouseService {
	return &warehouseService{warehouseRepo, stockRepo}
}

func (s *warehouseService) Create(w *model.Warehouse, actor string) error {
	if msg := validator.Check(w); msg != "" {
		return apperr.Validation("%s", msg)
	}
	if existing, err := s.warehouseRepo.FindByCode(w.Code); err == nil && existing != nil {
		return apperr.Duplicate("warehouse code %s already exists", w.Code)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	w.IsActive = true
	w.CreatedBy = actor
	w.UpdatedBy = actor
	return s.warehouseRepo.Create(w)
}

func (s *warehouseService) GetWarehouses() ([]model.Warehouse, error) {
	return s.warehouseRepo.FindAll()
}

func (s *warehouseService) GetWarehouse(id uuid.UUID) (*model.Warehouse, error) {
	w, err := s.warehouseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("warehouse %s not found", id)
		}
		return nil, err
	}
	return w, nil
}

func (s *warehouseService) Update(id uuid.UUID, req *model.Warehouse, actor string) (*model.Warehouse, error) {
	w, err := s.GetWarehouse(id)
	if err != nil {
		return nil, err
	}

	if req.Code != "" && req.Code != w.Code {
		if existing, err := s.warehouseRepo.FindByCode(req.Code); err == nil && existing != nil {
			return nil, apperr.Duplicate("warehouse code %s already exists", req.Code)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		w.Code = req.Code
	}
	if req.Name != "" {
		w.Name = req.Name
	}
	if req.NameAr != "" {
		w.NameAr = req.NameAr
	}
	if req.Type != "" {
		w.Type = req.Type
	}
	w.Description = req.Description
	w.Address = req.Address
	w.Phone = req.Phone
	w.Email = req.Email
	w.UpdatedBy = actor

	if err := s.warehouseRepo.Update(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *warehouseService) Deactivate(id uuid.UUID, actor string) (*model.Warehouse, error) {
	w, err := s.GetWarehouse(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.stockRepo.FindByWarehouse(id)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Quantity > 0 {
			return nil, apperr.StateConflict("warehouse %s still holds stock", w.Code)
		}
	}

	w.IsActive = false
	w.UpdatedBy = actor
	if err := s.warehouseRepo.Update(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *warehouseService) CreateZone(warehouseID uuid.UUID, zone *model.Zone, actor string) error {
	if _, err := s.GetWarehouse(warehouseID); err != nil {
		return err
	}
	if msg := validator.Check(zone); msg != "" {
		return apperr.Validation("%s", msg)
	}
	zone.WarehouseID = warehouseID
	zone.CreatedBy = actor
	zone.UpdatedBy = actor
	return s.warehouseRepo.CreateZone(zone)
}

func (s *warehouseService) CreateShelf(zoneID uuid.UUID, shelf *model.Shelf, actor string) error {
	if msg := validator.Check(shelf); msg != "" {
		return apperr.Validation("%s", msg)
	}
	shelf.ZoneID = zoneID
	shelf.CreatedBy = actor
	shelf.UpdatedBy = actor
	return s.warehouseRepo.CreateShelf(shelf)
}

func (s *warehouseService) GetZones(warehouseID uuid.UUID) ([]model.Zone, error) {
	return s.warehouseRepo.FindZones(warehouseID)
}
