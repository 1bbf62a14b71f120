package service

import (
	"errors"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateStockCountInput struct {
	WarehouseID   uuid.UUID `json:"warehouse_id" validate:"uuid_required"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
	Notes         string    `json:"notes"`
}

// CountEntry is one physical count for a (product, batch) key.
type CountEntry struct {
	ProductID  uuid.UUID  `json:"product_id" validate:"uuid_required"`
	BatchID    *uuid.UUID `json:"batch_id,omitempty"`
	CountedQty int        `json:"counted_qty" validate:"gte=0"`
	Notes      string     `json:"notes"`
}

// VarianceReport summarizes an approved or completed count.
type VarianceReport struct {
	CountNumber   string                 `json:"count_number"`
	Status        model.StockCountStatus `json:"status"`
	TotalItems    int                    `json:"total_items"`
	CountedItems  int                    `json:"counted_items"`
	WithVariance  int                    `json:"with_variance"`
	TotalVariance int                    `json:"total_variance"`
	Items         []model.StockCountItem `json:"items"`
}

type StockCountService interface {
	Create(in CreateStockCountInput, actor string) (*model.StockCount, error)
	GetCounts(p pagination.Params, f repository.StockCountFilters) ([]model.StockCount, int64, error)
	GetCount(id uuid.UUID) (*model.StockCount, error)

	// Start snapshots every positive ledger row in the warehouse.
	Start(id uuid.UUID, actor string) (*model.StockCount, error)
	// RecordCounts stores counted quantities; resubmitting a key overwrites.
	RecordCounts(id uuid.UUID, entries []CountEntry, actor string) (*model.StockCount, error)
	// Complete requires every item to have a counted quantity.
	Complete(id uuid.UUID, actor string) (*model.StockCount, error)
	// Approve writes each counted value to the ledger as an absolute
	// quantity and journals the variance as a STOCK_COUNT movement.
	Approve(id uuid.UUID, actor string) (*model.StockCount, error)
	Cancel(id uuid.UUID, reason, actor string) (*model.StockCount, error)
	Variance(id uuid.UUID) (*VarianceReport, error)
}

type stockCountService struct {
	countRepo     repository.StockCountRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRepository
	sequenceRepo  repository.SequenceRepository
	stockSvc      StockService
	movementSvc   StockMovementService
	db            *gorm.DB
}

func NewStockCountService(
	countRepo repository.StockCountRepository,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRepository,
	sequenceRepo repository.SequenceRepository,
	stockSvc StockService,
	movementSvc StockMovementService,
	db *gorm.DB,
) StockCountService {
	return &stockCountService{
		countRepo:     countRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		sequenceRepo:  sequenceRepo,
		stockSvc:      stockSvc,
		movementSvc:   movementSvc,
		db:            db,
	}
}

func (s *stockCountService) Create(in CreateStockCountInput, actor string) (*model.StockCount, error) {
	if _, err := s.warehouseRepo.FindByID(in.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("warehouse %s not found", in.WarehouseID)
		}
		return nil, err
	}

	today := time.Now().Truncate(24 * time.Hour)
	if in.ScheduledDate.Truncate(24 * time.Hour).Before(today) {
		return nil, apperr.Validation("scheduled date must not be in the past")
	}

	var count *model.StockCount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.sequenceRepo.NextNumber(tx, "SC", time.Now())
		if err != nil {
			return err
		}
		count = &model.StockCount{
			CountNumber:   number,
			WarehouseID:   in.WarehouseID,
			Status:        model.CountPlanned,
			ScheduledDate: in.ScheduledDate,
			Notes:         in.Notes,
		}
		count.CreatedBy = actor
		count.UpdatedBy = actor
		return tx.Create(count).Error
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

func (s *stockCountService) GetCounts(p pagination.Params, f repository.StockCountFilters) ([]model.StockCount, int64, error) {
	return s.countRepo.FindAll(p, f)
}

func (s *stockCountService) GetCount(id uuid.UUID) (*model.StockCount, error) {
	count, err := s.countRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("stock count %s not found", id)
		}
		return nil, err
	}
	return count, nil
}

func (s *stockCountService) Start(id uuid.UUID, actor string) (*model.StockCount, error) {
	return s.transition(id, model.CountInProgress, actor, func(tx *gorm.DB, count *model.StockCount) error {
		rows, err := s.stockRepo.FindPositiveByWarehouse(tx, count.WarehouseID)
		if err != nil {
			return err
		}

		items := make([]model.StockCountItem, 0, len(rows))
		for _, row := range rows {
			item := model.StockCountItem{
				StockCountID: count.ID,
				ProductID:    row.ProductID,
				BatchID:      row.BatchID,
				SystemQty:    row.Quantity,
			}
			item.CreatedBy = actor
			item.UpdatedBy = actor
			items = append(items, item)
		}
		if err := s.countRepo.CreateItems(tx, items); err != nil {
			return err
		}

		now := time.Now()
		count.StartDate = &now
		count.Items = items
		return nil
	})
}

func (s *stockCountService) RecordCounts(id uuid.UUID, entries []CountEntry, actor string) (*model.StockCount, error) {
	if len(entries) == 0 {
		return nil, apperr.Validation("no count entries given")
	}

	var result *model.StockCount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		count, err := s.lockCount(tx, id)
		if err != nil {
			return err
		}
		if count.Status != model.CountInProgress {
			return apperr.InvalidTransition("stock count %s is %s, counts can only be recorded while IN_PROGRESS", count.CountNumber, count.Status)
		}

		for _, entry := range entries {
			if entry.CountedQty < 0 {
				return apperr.Validation("counted quantity must not be negative, got %d", entry.CountedQty)
			}
			item := findCountItem(count.Items, entry.ProductID, entry.BatchID)
			if item == nil {
				return apperr.NotFound("no count item for product %s in count %s", entry.ProductID, count.CountNumber)
			}

			counted := entry.CountedQty
			variance := counted - item.SystemQty
			item.CountedQty = &counted
			item.Variance = &variance
			if entry.Notes != "" {
				item.Notes = entry.Notes
			}
			item.UpdatedBy = actor
			if err := s.countRepo.SaveItem(tx, item); err != nil {
				return err
			}
		}

		count.UpdatedBy = actor
		if err := s.countRepo.Save(tx, count); err != nil {
			return err
		}
		result = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *stockCountService) Complete(id uuid.UUID, actor string) (*model.StockCount, error) {
	return s.transition(id, model.CountCompleted, actor, func(tx *gorm.DB, count *model.StockCount) error {
		for i := range count.Items {
			if count.Items[i].CountedQty == nil {
				return apperr.StateConflict("count %s has uncounted items", count.CountNumber)
			}
		}
		now := time.Now()
		count.EndDate = &now
		return nil
	})
}

func (s *stockCountService) Approve(id uuid.UUID, actor string) (*model.StockCount, error) {
	return s.transition(id, model.CountApproved, actor, func(tx *gorm.DB, count *model.StockCount) error {
		countRef := count.ID
		for i := range count.Items {
			item := &count.Items[i]
			if item.Variance == nil || *item.Variance == 0 {
				continue
			}

			// Journal the variance for audit; STOCK_COUNT movements do not
			// apply a delta themselves.
			if _, err := s.movementSvc.RecordTx(tx, MovementInput{
				Type:          model.MovementStockCount,
				ProductID:     item.ProductID,
				WarehouseID:   count.WarehouseID,
				BatchID:       item.BatchID,
				Quantity:      *item.Variance,
				ReferenceType: model.RefStockCount,
				ReferenceID:   &countRef,
				Reason:        "Stock count adjustment " + count.CountNumber,
				Notes:         item.Notes,
				Actor:         actor,
			}); err != nil {
				return err
			}

			stock, err := s.stockSvc.GetOrCreateTx(tx, item.ProductID, count.WarehouseID, item.BatchID, true)
			if err != nil {
				return err
			}
			stock.UpdatedBy = actor
			if err := s.stockSvc.SetQuantityTx(tx, stock, *item.CountedQty); err != nil {
				return err
			}
		}

		count.ApprovedBy = actor
		return nil
	})
}

func (s *stockCountService) Cancel(id uuid.UUID, reason, actor string) (*model.StockCount, error) {
	return s.transition(id, model.CountCancelled, actor, func(tx *gorm.DB, count *model.StockCount) error {
		if reason != "" {
			if count.Notes != "" {
				count.Notes += "\n"
			}
			count.Notes += "Cancelled: " + reason
		}
		return nil
	})
}

func (s *stockCountService) Variance(id uuid.UUID) (*VarianceReport, error) {
	count, err := s.GetCount(id)
	if err != nil {
		return nil, err
	}

	report := &VarianceReport{
		CountNumber: count.CountNumber,
		Status:      count.Status,
		TotalItems:  len(count.Items),
		Items:       count.Items,
	}
	for _, item := range count.Items {
		if item.CountedQty != nil {
			report.CountedItems++
		}
		if item.Variance != nil && *item.Variance != 0 {
			report.WithVariance++
			report.TotalVariance += *item.Variance
		}
	}
	return report, nil
}

func (s *stockCountService) lockCount(tx *gorm.DB, id uuid.UUID) (*model.StockCount, error) {
	count, err := s.countRepo.FindByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("stock count %s not found", id)
		}
		return nil, err
	}
	return count, nil
}

func (s *stockCountService) transition(id uuid.UUID, next model.StockCountStatus, actor string, mutate func(tx *gorm.DB, count *model.StockCount) error) (*model.StockCount, error) {
	var result *model.StockCount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		count, err := s.lockCount(tx, id)
		if err != nil {
			return err
		}
		if !count.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition("stock count %s cannot move from %s to %s", count.CountNumber, count.Status, next)
		}
		if mutate != nil {
			if err := mutate(tx, count); err != nil {
				return err
			}
		}
		count.Status = next
		count.UpdatedBy = actor
		if err := s.countRepo.Save(tx, count); err != nil {
			return err
		}
		result = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func findCountItem(items []model.StockCountItem, productID uuid.UUID, batchID *uuid.UUID) *model.StockCountItem {
	for i := range items {
		item := &items[i]
		if item.ProductID != productID {
			continue
		}
		if (item.BatchID == nil) != (batchID == nil) {
			continue
		}
		if item.BatchID != nil && *item.BatchID != *batchID {
			continue
		}
		return item
	}
	return nil
}
