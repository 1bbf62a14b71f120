package service

import (
	"errors"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementInput carries one journal entry to record. Quantity is the raw
// magnitude for all types except ADJUSTMENT and STOCK_COUNT, which pass a
// signed value.
type MovementInput struct {
	Type        model.MovementType
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	BatchID     *uuid.UUID
	Quantity    int
	UnitPrice   *decimal.Decimal

	ReferenceType string
	ReferenceID   *uuid.UUID
	Reason        string
	Notes         string
	Actor         string
}

// StockMovementService journals quantity changes and applies them to the
// ledger. Every ledger delta in the system flows through RecordTx.
type StockMovementService interface {
	// RecordTx appends one movement and, for all types except STOCK_COUNT,
	// applies the matching signed delta to the ledger row in the same
	// transaction.
	RecordTx(tx *gorm.DB, in MovementInput) (*model.StockMovement, error)
	// Create records a manual movement in its own transaction. STOCK_COUNT
	// and transfer types are rejected; those belong to their workflows.
	Create(in MovementInput) (*model.StockMovement, error)

	GetMovements(p pagination.Params, f repository.MovementFilters) ([]model.StockMovement, int64, error)
	GetMovement(id uuid.UUID) (*model.StockMovement, error)
	GetProductHistory(productID uuid.UUID, limit int) ([]model.StockMovement, error)
	Summarize(warehouseID *uuid.UUID, from, to *time.Time) ([]repository.TypeSummary, error)
}

type stockMovementService struct {
	movementRepo  repository.StockMovementRepository
	batchRepo     repository.BatchRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	sequenceRepo  repository.SequenceRepository
	stockSvc      StockService
	db            *gorm.DB
}

func NewStockMovementService(
	movementRepo repository.StockMovementRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	sequenceRepo repository.SequenceRepository,
	stockSvc StockService,
	db *gorm.DB,
) StockMovementService {
	return &stockMovementService{
		movementRepo:  movementRepo,
		batchRepo:     batchRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		sequenceRepo:  sequenceRepo,
		stockSvc:      stockSvc,
		db:            db,
	}
}

func (s *stockMovementService) RecordTx(tx *gorm.DB, in MovementInput) (*model.StockMovement, error) {
	if in.Quantity == 0 {
		return nil, apperr.Validation("movement quantity must not be zero")
	}

	delta, applies := in.Type.Delta(in.Quantity)

	if applies && delta < 0 && in.Type.Allocation() && in.BatchID != nil {
		batch, err := s.batchRepo.FindByIDForUpdate(tx, *in.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.IsRecalled {
			return nil, apperr.StateConflict("batch %s is recalled and cannot be issued", batch.BatchNumber)
		}
	}

	number, err := s.sequenceRepo.NextNumber(tx, "SM", time.Now())
	if err != nil {
		return nil, err
	}

	stored := in.Quantity
	if applies {
		stored = delta
	}

	movement := &model.StockMovement{
		MovementNumber: number,
		Type:           in.Type,
		ProductID:      in.ProductID,
		BatchID:        in.BatchID,
		WarehouseID:    in.WarehouseID,
		Quantity:       stored,
		UnitPrice:      in.UnitPrice,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		Reason:         in.Reason,
		Notes:          in.Notes,
	}
	if in.UnitPrice != nil {
		total := in.UnitPrice.Mul(decimal.NewFromInt(int64(abs(stored))))
		movement.TotalValue = &total
	}
	movement.CreatedBy = in.Actor
	movement.UpdatedBy = in.Actor

	if err := s.movementRepo.Create(tx, movement); err != nil {
		return nil, err
	}

	if applies {
		stock, err := s.stockSvc.GetOrCreateTx(tx, in.ProductID, in.WarehouseID, in.BatchID, delta > 0)
		if err != nil {
			return nil, err
		}
		stock.UpdatedBy = in.Actor
		if err := s.stockSvc.ApplyDeltaTx(tx, stock, delta); err != nil {
			return nil, err
		}
		if in.BatchID != nil && touchesBatch(in.Type) {
			if err := s.applyBatchDelta(tx, *in.BatchID, delta, in.Actor); err != nil {
				return nil, err
			}
		}
	}

	return movement, nil
}

// touchesBatch reports whether the movement consumes or restores the lot
// itself. Transfers relocate stock without changing the lot's quantity and
// stock counts correct the ledger directly.
func touchesBatch(t model.MovementType) bool {
	switch t {
	case model.MovementTransferIn, model.MovementTransferOut, model.MovementStockCount:
		return false
	default:
		return true
	}
}

// applyBatchDelta keeps the batch's current quantity in step with the
// ledger, bounded to [0, initialQuantity].
func (s *stockMovementService) applyBatchDelta(tx *gorm.DB, batchID uuid.UUID, delta int, actor string) error {
	batch, err := s.batchRepo.FindByIDForUpdate(tx, batchID)
	if err != nil {
		return err
	}
	next := batch.CurrentQuantity + delta
	if next < 0 {
		next = 0
	}
	if next > batch.InitialQuantity {
		next = batch.InitialQuantity
	}
	batch.CurrentQuantity = next
	batch.UpdatedBy = actor
	return s.batchRepo.Update(tx, batch)
}

func (s *stockMovementService) Create(in MovementInput) (*model.StockMovement, error) {
	switch in.Type {
	case model.MovementStockCount:
		return nil, apperr.Validation("STOCK_COUNT movements are recorded by count approval only")
	case model.MovementTransferIn, model.MovementTransferOut:
		return nil, apperr.Validation("transfer movements are recorded by transfer orders only")
	}

	if _, err := s.productRepo.FindByID(in.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", in.ProductID)
		}
		return nil, err
	}
	if _, err := s.warehouseRepo.FindByID(in.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("warehouse %s not found", in.WarehouseID)
		}
		return nil, err
	}
	if in.BatchID != nil {
		if _, err := s.batchRepo.FindByID(*in.BatchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("batch %s not found", *in.BatchID)
			}
			return nil, err
		}
	}

	var movement *model.StockMovement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = s.RecordTx(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *stockMovementService) GetMovements(p pagination.Params, f repository.MovementFilters) ([]model.StockMovement, int64, error) {
	return s.movementRepo.FindAll(p, f)
}

func (s *stockMovementService) GetMovement(id uuid.UUID) (*model.StockMovement, error) {
	movement, err := s.movementRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("movement %s not found", id)
		}
		return nil, err
	}
	return movement, nil
}

func (s *stockMovementService) GetProductHistory(productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	return s.movementRepo.FindByProduct(productID, limit)
}

func (s *stockMovementService) Summarize(warehouseID *uuid.UUID, from, to *time.Time) ([]repository.TypeSummary, error) {
	return s.movementRepo.SummarizeByType(warehouseID, from, to)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
