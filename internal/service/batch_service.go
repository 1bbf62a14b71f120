package service

import (
	"errors"
	"fmt"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/pagination"
	"go-medwarehouse/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchWithStatus decorates a batch with its derived expiry band.
type BatchWithStatus struct {
	model.Batch
	ExpiryStatus    model.ExpiryStatus `json:"expiry_status"`
	DaysUntilExpiry int                `json:"days_until_expiry"`
}

type BatchService interface {
	Create(batch *model.Batch, actor string) error
	GetBatches(p pagination.Params, f repository.BatchFilters) ([]BatchWithStatus, int64, error)
	GetBatch(id uuid.UUID) (*BatchWithStatus, error)
	Update(id uuid.UUID, batch *model.Batch, actor string) (*model.Batch, error)
	Delete(id uuid.UUID, actor string) error

	// Recall flags the batch and notifies every warehouse holding its stock.
	Recall(id uuid.UUID, reason, actor string) (*model.Batch, error)
	// MarkExpired flags every batch past its expiry date, one notification
	// per batch. Idempotent: a second run changes nothing.
	MarkExpired(actor string) (int, error)
	// NotifyExpiring raises one EXPIRY_WARNING per batch expiring within the
	// window; re-running creates no duplicates.
	NotifyExpiring(withinDays int) (int, error)
	GetExpiring(withinDays int) ([]BatchWithStatus, error)
}

type batchService struct {
	batchRepo        repository.BatchRepository
	stockRepo        repository.StockRepository
	productRepo      repository.ProductRepository
	notificationRepo repository.NotificationRepository
	db               *gorm.DB
}

func NewBatchService(
	batchRepo repository.BatchRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	notificationRepo repository.NotificationRepository,
	db *gorm.DB,
) BatchService {
	return &batchService{
		batchRepo:        batchRepo,
		stockRepo:        stockRepo,
		productRepo:      productRepo,
		notificationRepo: notificationRepo,
		db:               db,
	}
}

func (s *batchService) Create(batch *model.Batch, actor string) error {
	if msg := validator.Check(batch); msg != "" {
		return apperr.Validation("%s", msg)
	}
	if batch.ManufacturingDate != nil && batch.ManufacturingDate.After(batch.ExpiryDate) {
		return apperr.Validation("manufacturing date is after expiry date")
	}

	if _, err := s.productRepo.FindByID(batch.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product %s not found", batch.ProductID)
		}
		return err
	}

	if existing, err := s.batchRepo.FindByNumber(batch.BatchNumber); err == nil && existing != nil {
		return apperr.Duplicate("batch number %s already exists", batch.BatchNumber)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// A standalone batch represents an existing lot.
	if batch.CurrentQuantity == 0 {
		batch.CurrentQuantity = batch.InitialQuantity
	}
	batch.CreatedBy = actor
	batch.UpdatedBy = actor
	return s.batchRepo.Create(nil, batch)
}

func (s *batchService) GetBatches(p pagination.Params, f repository.BatchFilters) ([]BatchWithStatus, int64, error) {
	batches, total, err := s.batchRepo.FindAll(p, f)
	if err != nil {
		return nil, 0, err
	}
	return decorate(batches), total, nil
}

func (s *batchService) GetBatch(id uuid.UUID) (*BatchWithStatus, error) {
	batch, err := s.batchRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("batch %s not found", id)
		}
		return nil, err
	}
	now := time.Now()
	return &BatchWithStatus{
		Batch:           *batch,
		ExpiryStatus:    batch.ExpiryStatus(now),
		DaysUntilExpiry: batch.DaysUntilExpiry(now),
	}, nil
}

func (s *batchService) Update(id uuid.UUID, req *model.Batch, actor string) (*model.Batch, error) {
	batch, err := s.batchRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("batch %s not found", id)
		}
		return nil, err
	}

	if !req.ExpiryDate.IsZero() {
		batch.ExpiryDate = req.ExpiryDate
	}
	if req.ManufacturingDate != nil {
		batch.ManufacturingDate = req.ManufacturingDate
	}
	if req.CostPrice != nil {
		batch.CostPrice = req.CostPrice
	}
	if batch.ManufacturingDate != nil && batch.ManufacturingDate.After(batch.ExpiryDate) {
		return nil, apperr.Validation("manufacturing date is after expiry date")
	}
	batch.UpdatedBy = actor

	if err := s.batchRepo.Update(nil, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *batchService) Delete(id uuid.UUID, actor string) error {
	if _, err := s.batchRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("batch %s not found", id)
		}
		return err
	}

	active, err := s.stockRepo.HasActiveStock(id)
	if err != nil {
		return err
	}
	if active {
		return apperr.StateConflict("batch %s still has active stock", id)
	}
	return s.batchRepo.Delete(id, actor)
}

func (s *batchService) Recall(id uuid.UUID, reason, actor string) (*model.Batch, error) {
	if reason == "" {
		return nil, apperr.Validation("recall reason is required")
	}

	var recalled *model.Batch
	err := s.db.Transaction(func(tx *gorm.DB) error {
		batch, err := s.batchRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("batch %s not found", id)
			}
			return err
		}
		if batch.IsRecalled {
			return apperr.StateConflict("batch %s is already recalled", batch.BatchNumber)
		}

		batch.IsRecalled = true
		batch.RecallReason = reason
		batch.UpdatedBy = actor
		if err := s.batchRepo.Update(tx, batch); err != nil {
			return err
		}

		holdings, err := s.stockRepo.FindPositiveByBatch(id)
		if err != nil {
			return err
		}
		for _, stock := range holdings {
			warehouse := stock.WarehouseID.String()
			if stock.Warehouse != nil {
				warehouse = stock.Warehouse.Name
			}
			refID := batch.ID
			n := &model.Notification{
				Type:          model.NotifyRecall,
				Title:         "Batch recalled: " + batch.BatchNumber,
				Message:       fmt.Sprintf("Batch %s recalled (%s); %d units held in %s", batch.BatchNumber, reason, stock.Quantity, warehouse),
				Priority:      model.PriorityHigh,
				ReferenceType: "BATCH",
				ReferenceID:   &refID,
			}
			n.CreatedBy = actor
			if err := s.notificationRepo.Create(tx, n); err != nil {
				return err
			}
		}

		recalled = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recalled, nil
}

func (s *batchService) MarkExpired(actor string) (int, error) {
	today := time.Now().Truncate(24 * time.Hour)
	candidates, err := s.batchRepo.FindExpiredUnmarked(today)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			batch, err := s.batchRepo.FindByIDForUpdate(tx, candidate.ID)
			if err != nil {
				return err
			}
			if batch.IsExpired {
				return nil
			}

			batch.IsExpired = true
			batch.UpdatedBy = actor
			if err := s.batchRepo.Update(tx, batch); err != nil {
				return err
			}

			refID := batch.ID
			n := &model.Notification{
				Type:          model.NotifyExpiryWarning,
				Title:         "Batch expired: " + batch.BatchNumber,
				Message:       fmt.Sprintf("Batch %s expired on %s", batch.BatchNumber, batch.ExpiryDate.Format("2006-01-02")),
				Priority:      model.PriorityHigh,
				ReferenceType: "BATCH",
				ReferenceID:   &refID,
			}
			n.CreatedBy = actor
			if err := s.notificationRepo.Create(tx, n); err != nil {
				return err
			}
			marked++
			return nil
		})
		if err != nil {
			return marked, err
		}
	}
	return marked, nil
}

func (s *batchService) NotifyExpiring(withinDays int) (int, error) {
	if withinDays <= 0 {
		withinDays = model.ExpiryWarningDays
	}
	now := time.Now()
	batches, err := s.batchRepo.FindExpiring(now, now.AddDate(0, 0, withinDays))
	if err != nil {
		return 0, err
	}

	created := 0
	for _, batch := range batches {
		exists, err := s.notificationRepo.ExistsForReference(model.NotifyExpiryWarning, "BATCH", batch.ID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		days := batch.DaysUntilExpiry(now)
		priority := model.PriorityMedium
		if days <= model.ExpiryCriticalDays {
			priority = model.PriorityHigh
		}
		refID := batch.ID
		n := &model.Notification{
			Type:          model.NotifyExpiryWarning,
			Title:         "Batch expiring: " + batch.BatchNumber,
			Message:       fmt.Sprintf("Batch %s expires in %d days (%s)", batch.BatchNumber, days, batch.ExpiryDate.Format("2006-01-02")),
			Priority:      priority,
			ReferenceType: "BATCH",
			ReferenceID:   &refID,
		}
		if err := s.notificationRepo.Create(nil, n); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *batchService) GetExpiring(withinDays int) ([]BatchWithStatus, error) {
	if withinDays <= 0 {
		withinDays = model.ExpiryWarningDays
	}
	now := time.Now()
	batches, err := s.batchRepo.FindExpiring(now, now.AddDate(0, 0, withinDays))
	if err != nil {
		return nil, err
	}
	return decorate(batches), nil
}

func decorate(batches []model.Batch) []BatchWithStatus {
	now := time.Now()
	out := make([]BatchWithStatus, 0, len(batches))
	for _, b := range batches {
		out = append(out, BatchWithStatus{
			Batch:           b,
			ExpiryStatus:    b.ExpiryStatus(now),
			DaysUntilExpiry: b.DaysUntilExpiry(now),
		})
	}
	return out
}
