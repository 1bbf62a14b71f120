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

type ProductService interface {
	Create(product *model.Product, actor string) error
	GetProducts(p pagination.Params, f repository.ProductFilters) ([]model.Product, int64, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	GetByCode(code string) (*model.Product, error)
	GetByBarcode(barcode string) (*model.Product, error)
	Update(id uuid.UUID, req *model.Product, actor string) (*model.Product, error)
	// Discontinue and Delete both refuse while any stock remains.
	Discontinue(id uuid.UUID, actor string) (*model.Product, error)
	Delete(id uuid.UUID, actor string) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo}
}

func (s *productService) Create(product *model.Product, actor string) error {
	if msg := validator.Check(product); msg != "" {
		return apperr.Validation("%s", msg)
	}

	if existing, err := s.productRepo.FindByCode(product.Code); err == nil && existing != nil {
		return apperr.Duplicate("product code %s already exists", product.Code)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if product.Barcode != nil && *product.Barcode != "" {
		if existing, err := s.productRepo.FindByBarcode(*product.Barcode); err == nil && existing != nil {
			return apperr.Duplicate("barcode %s already exists", *product.Barcode)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if product.Status == "" {
		product.Status = model.ProductActive
	}
	product.CreatedBy = actor
	product.UpdatedBy = actor
	return s.productRepo.Create(product)
}

func (s *productService) GetProducts(p pagination.Params, f repository.ProductFilters) ([]model.Product, int64, error) {
	return s.productRepo.FindAll(p, f)
}

func (s *productService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetByCode(code string) (*model.Product, error) {
	product, err := s.productRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product with code %s not found", code)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetByBarcode(barcode string) (*model.Product, error) {
	product, err := s.productRepo.FindByBarcode(barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product with barcode %s not found", barcode)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(id uuid.UUID, req *model.Product, actor string) (*model.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if req.Code != "" && req.Code != product.Code {
		if existing, err := s.productRepo.FindByCode(req.Code); err == nil && existing != nil {
			return nil, apperr.Duplicate("product code %s already exists", req.Code)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		product.Code = req.Code
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.NameAr != "" {
		product.NameAr = req.NameAr
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	if req.UnitOfMeasure != "" {
		product.UnitOfMeasure = req.UnitOfMeasure
	}
	if req.Barcode != nil {
		product.Barcode = req.Barcode
	}
	if req.Status != "" {
		product.Status = req.Status
	}
	product.Description = req.Description
	product.MinStockLevel = req.MinStockLevel
	product.MaxStockLevel = req.MaxStockLevel
	product.ReorderPoint = req.ReorderPoint
	product.ReorderQuantity = req.ReorderQuantity
	product.UnitPrice = req.UnitPrice
	product.StorageConditions = req.StorageConditions
	product.RequiresPrescription = req.RequiresPrescription
	product.IsDangerous = req.IsDangerous
	product.UpdatedBy = actor

	if msg := validator.Check(product); msg != "" {
		return nil, apperr.Validation("%s", msg)
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Discontinue(id uuid.UUID, actor string) (*model.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if err := s.requireNoStock(id); err != nil {
		return nil, err
	}

	product.Status = model.ProductDiscontinued
	product.UpdatedBy = actor
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(id uuid.UUID, actor string) error {
	if _, err := s.GetProduct(id); err != nil {
		return err
	}
	if err := s.requireNoStock(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id, actor)
}

func (s *productService) requireNoStock(id uuid.UUID) error {
	total, err := s.productRepo.TotalStock(id)
	if err != nil {
		return err
	}
	if total > 0 {
		return apperr.StateConflict("product %s still has %d units in stock", id, total)
	}
	return nil
}
