package service

import (
	"errors"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/pagination"
	"go-medwarehouse/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierService interface {
	Create(supplier *model.Supplier, actor string) error
	GetSuppliers(p pagination.Params, search string) ([]model.Supplier, int64, error)
	GetSupplier(id uuid.UUID) (*model.Supplier, error)
	Update(id uuid.UUID, req *model.Supplier, actor string) (*model.Supplier, error)
	Delete(id uuid.UUID, actor string) error
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo}
}

func (s *supplierService) Create(supplier *model.Supplier, actor string) error {
	if msg := validator.Check(supplier); msg != "" {
		return apperr.Validation("%s", msg)
	}
	if existing, err := s.supplierRepo.FindByCode(supplier.Code); err == nil && existing != nil {
		return apperr.Duplicate("supplier code %s already exists", supplier.Code)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	supplier.IsActive = true
	supplier.CreatedBy = actor
	supplier.UpdatedBy = actor
	return s.supplierRepo.Create(supplier)
}

func (s *supplierService) GetSuppliers(p pagination.Params, search string) ([]model.Supplier, int64, error) {
	return s.supplierRepo.FindAll(p, search)
}

func (s *supplierService) GetSupplier(id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("supplier %s not found", id)
		}
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) Update(id uuid.UUID, req *model.Supplier, actor string) (*model.Supplier, error) {
	supplier, err := s.GetSupplier(id)
	if err != nil {
		return nil, err
	}

	if req.Code != "" && req.Code != supplier.Code {
		if existing, err := s.supplierRepo.FindByCode(req.Code); err == nil && existing != nil {
			return nil, apperr.Duplicate("supplier code %s already exists", req.Code)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		supplier.Code = req.Code
	}
	if req.Name != "" {
		supplier.Name = req.Name
	}
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	supplier.TaxNumber = req.TaxNumber
	supplier.IsActive = req.IsActive
	supplier.UpdatedBy = actor

	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) Delete(id uuid.UUID, actor string) error {
	if _, err := s.GetSupplier(id); err != nil {
		return err
	}
	return s.supplierRepo.Delete(id, actor)
}
