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

// purchaseTaxRate is applied to the order subtotal.
var purchaseTaxRate = decimal.NewFromFloat(0.15)

type PurchaseOrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes"`
}

type CreatePurchaseOrderInput struct {
	Supplier     string                   `json:"supplier" validate:"required"`
	WarehouseID  uuid.UUID                `json:"warehouse_id" validate:"uuid_required"`
	ExpectedDate *time.Time               `json:"expected_date,omitempty"`
	Notes        string                   `json:"notes"`
	Items        []PurchaseOrderItemInput `json:"items" validate:"dive"`
}

// ReceiveItemInput is one received line. A batch number with an expiry date
// creates (or reuses) the lot the goods belong to.
type ReceiveItemInput struct {
	ItemID            uuid.UUID  `json:"item_id" validate:"uuid_required"`
	ReceivedQty       int        `json:"received_qty" validate:"gt=0"`
	BatchNumber       string     `json:"batch_number"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	ManufacturingDate *time.Time `json:"manufacturing_date,omitempty"`
}

type PurchaseOrderService interface {
	Create(in CreatePurchaseOrderInput, actor string) (*model.PurchaseOrder, error)
	GetOrders(p pagination.Params, f repository.PurchaseOrderFilters) ([]model.PurchaseOrder, int64, error)
	GetOrder(id uuid.UUID) (*model.PurchaseOrder, error)
	// Update replaces header fields and line items; draft orders only.
	Update(id uuid.UUID, in CreatePurchaseOrderInput, actor string) (*model.PurchaseOrder, error)

	Submit(id uuid.UUID, actor string) (*model.PurchaseOrder, error)
	Approve(id uuid.UUID, actor string) (*model.PurchaseOrder, error)
	PlaceOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, error)
	// Receive books received lines: RECEIPT movements, ledger credits and
	// cumulative receivedQty per item, all-or-nothing. The order moves to
	// PARTIALLY_RECEIVED until every line is received in full.
	Receive(id uuid.UUID, items []ReceiveItemInput, actor string) (*model.PurchaseOrder, error)
	Cancel(id uuid.UUID, reason, actor string) (*model.PurchaseOrder, error)
	CountByStatus() (map[model.PurchaseOrderStatus]int64, error)
}

type purchaseOrderService struct {
	orderRepo     repository.PurchaseOrderRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	batchRepo     repository.BatchRepository
	sequenceRepo  repository.SequenceRepository
	movementSvc   StockMovementService
	db            *gorm.DB
}

func NewPurchaseOrderService(
	orderRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	batchRepo repository.BatchRepository,
	sequenceRepo repository.SequenceRepository,
	movementSvc StockMovementService,
	db *gorm.DB,
) PurchaseOrderService {
	return &purchaseOrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		batchRepo:     batchRepo,
		sequenceRepo:  sequenceRepo,
		movementSvc:   movementSvc,
		db:            db,
	}
}

func (s *purchaseOrderService) Create(in CreatePurchaseOrderInput, actor string) (*model.PurchaseOrder, error) {
	items, totals, err := s.buildItems(in)
	if err != nil {
		return nil, err
	}

	var order *model.PurchaseOrder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.sequenceRepo.NextNumber(tx, "PO", time.Now())
		if err != nil {
			return err
		}
		order = &model.PurchaseOrder{
			OrderNumber:  number,
			Supplier:     in.Supplier,
			WarehouseID:  in.WarehouseID,
			Status:       model.POStatusDraft,
			OrderDate:    time.Now(),
			ExpectedDate: in.ExpectedDate,
			TotalAmount:  totals.subtotal,
			TaxAmount:    totals.tax,
			GrandTotal:   totals.grand,
			Notes:        in.Notes,
			Items:        items,
		}
		order.CreatedBy = actor
		order.UpdatedBy = actor
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

type orderTotals struct {
	subtotal decimal.Decimal
	tax      decimal.Decimal
	grand    decimal.Decimal
}

// buildItems validates every line before anything is written.
func (s *purchaseOrderService) buildItems(in CreatePurchaseOrderInput) ([]model.PurchaseOrderItem, orderTotals, error) {
	var totals orderTotals
	if in.Supplier == "" {
		return nil, totals, apperr.Validation("supplier is required")
	}
	if _, err := s.warehouseRepo.FindByID(in.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, totals, apperr.NotFound("warehouse %s not found", in.WarehouseID)
		}
		return nil, totals, err
	}

	items := make([]model.PurchaseOrderItem, 0, len(in.Items))
	subtotal := decimal.Zero
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, totals, apperr.Validation("item quantity must be positive, got %d", line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return nil, totals, apperr.Validation("item unit price must not be negative")
		}
		if _, err := s.productRepo.FindByID(line.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, totals, apperr.NotFound("product %s not found", line.ProductID)
			}
			return nil, totals, err
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, model.PurchaseOrderItem{
			ProductID:  line.ProductID,
			OrderedQty: line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: lineTotal,
			Notes:      line.Notes,
		})
	}

	totals.subtotal = subtotal
	totals.tax = subtotal.Mul(purchaseTaxRate).Round(2)
	totals.grand = totals.subtotal.Add(totals.tax)
	return items, totals, nil
}

func (s *purchaseOrderService) GetOrders(p pagination.Params, f repository.PurchaseOrderFilters) ([]model.PurchaseOrder, int64, error) {
	return s.orderRepo.FindAll(p, f)
}

func (s *purchaseOrderService) GetOrder(id uuid.UUID) (*model.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase order %s not found", id)
		}
		return nil, err
	}
	return order, nil
}

func (s *purchaseOrderService) Update(id uuid.UUID, in CreatePurchaseOrderInput, actor string) (*model.PurchaseOrder, error) {
	items, totals, err := s.buildItems(in)
	if err != nil {
		return nil, err
	}

	var updated *model.PurchaseOrder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, id)
		if err != nil {
			return err
		}
		if order.Status != model.POStatusDraft {
			return apperr.StateConflict("purchase order %s is %s; only drafts can be edited", order.OrderNumber, order.Status)
		}

		for i := range items {
			items[i].PurchaseOrderID = order.ID
			items[i].CreatedBy = actor
			items[i].UpdatedBy = actor
		}
		if err := s.orderRepo.ReplaceItems(tx, order.ID, items); err != nil {
			return err
		}

		order.Supplier = in.Supplier
		order.WarehouseID = in.WarehouseID
		order.ExpectedDate = in.ExpectedDate
		order.Notes = in.Notes
		order.TotalAmount = totals.subtotal
		order.TaxAmount = totals.tax
		order.GrandTotal = totals.grand
		order.UpdatedBy = actor
		if err := s.orderRepo.Save(tx, order); err != nil {
			return err
		}
		order.Items = items
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *purchaseOrderService) Submit(id uuid.UUID, actor string) (*model.PurchaseOrder, error) {
	return s.transition(id, model.POStatusSubmitted, actor, func(order *model.PurchaseOrder) error {
		if len(order.Items) == 0 {
			return apperr.Validation("purchase order %s has no items", order.OrderNumber)
		}
		return nil
	})
}

func (s *purchaseOrderService) Approve(id uuid.UUID, actor string) (*model.PurchaseOrder, error) {
	return s.transition(id, model.POStatusApproved, actor, func(order *model.PurchaseOrder) error {
		order.ApprovedBy = actor
		return nil
	})
}

func (s *purchaseOrderService) PlaceOrder(id uuid.UUID, actor string) (*model.PurchaseOrder, error) {
	return s.transition(id, model.POStatusOrdered, actor, nil)
}

func (s *purchaseOrderService) Receive(id uuid.UUID, items []ReceiveItemInput, actor string) (*model.PurchaseOrder, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("no received items given")
	}

	var received *model.PurchaseOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, id)
		if err != nil {
			return err
		}
		if order.Status != model.POStatusOrdered && order.Status != model.POStatusPartiallyReceived {
			return apperr.InvalidTransition("purchase order %s is %s, expected ORDERED or PARTIALLY_RECEIVED", order.OrderNumber, order.Status)
		}

		lines := make(map[uuid.UUID]*model.PurchaseOrderItem, len(order.Items))
		for i := range order.Items {
			lines[order.Items[i].ID] = &order.Items[i]
		}

		// Validate every line before the first ledger write. The cumulative
		// over-receipt check compares against the stored quantities, so each
		// item may appear at most once per call.
		seen := make(map[uuid.UUID]bool, len(items))
		for _, in := range items {
			item, ok := lines[in.ItemID]
			if !ok {
				return apperr.NotFound("item %s does not belong to purchase order %s", in.ItemID, order.OrderNumber)
			}
			if seen[in.ItemID] {
				return apperr.Validation("item %s appears more than once in the received items", in.ItemID)
			}
			seen[in.ItemID] = true
			if in.ReceivedQty <= 0 {
				return apperr.Validation("received quantity must be positive, got %d", in.ReceivedQty)
			}
			if item.ReceivedQty+in.ReceivedQty > item.OrderedQty {
				return apperr.Validation("item %s would exceed ordered quantity: %d received + %d > %d ordered",
					in.ItemID, item.ReceivedQty, in.ReceivedQty, item.OrderedQty)
			}
			if in.BatchNumber != "" && in.ExpiryDate == nil {
				if _, err := s.batchRepo.FindByNumber(in.BatchNumber); errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Validation("expiry date is required for new batch %s", in.BatchNumber)
				} else if err != nil {
					return err
				}
			}
		}

		now := time.Now()
		orderRef := order.ID
		for _, in := range items {
			item := lines[in.ItemID]

			var batchID *uuid.UUID
			if in.BatchNumber != "" {
				batch, err := s.resolveBatch(tx, in, item, now, actor)
				if err != nil {
					return err
				}
				batchID = &batch.ID
			}

			unitPrice := item.UnitPrice
			if _, err := s.movementSvc.RecordTx(tx, MovementInput{
				Type:          model.MovementReceipt,
				ProductID:     item.ProductID,
				WarehouseID:   order.WarehouseID,
				BatchID:       batchID,
				Quantity:      in.ReceivedQty,
				UnitPrice:     &unitPrice,
				ReferenceType: model.RefPurchaseOrder,
				ReferenceID:   &orderRef,
				Reason:        "Purchase order receipt " + order.OrderNumber,
				Actor:         actor,
			}); err != nil {
				return err
			}

			item.ReceivedQty += in.ReceivedQty
			item.UpdatedBy = actor
			if err := s.orderRepo.SaveItem(tx, item); err != nil {
				return err
			}
		}

		next := model.POStatusPartiallyReceived
		if order.FullyReceived() {
			next = model.POStatusReceived
			order.ReceivedDate = &now
		}
		if !order.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition("purchase order %s cannot move from %s to %s", order.OrderNumber, order.Status, next)
		}
		order.Status = next
		order.UpdatedBy = actor
		if err := s.orderRepo.Save(tx, order); err != nil {
			return err
		}
		received = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

// resolveBatch reuses an existing lot by number or creates a new one for the
// received goods. The new lot starts at zero; the RECEIPT movement credits it.
func (s *purchaseOrderService) resolveBatch(tx *gorm.DB, in ReceiveItemInput, item *model.PurchaseOrderItem, now time.Time, actor string) (*model.Batch, error) {
	existing, err := s.batchRepo.FindByNumber(in.BatchNumber)
	if err == nil {
		if existing.ProductID != item.ProductID {
			return nil, apperr.Duplicate("batch number %s belongs to a different product", in.BatchNumber)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cost := item.UnitPrice
	batch := &model.Batch{
		BatchNumber:       in.BatchNumber,
		ProductID:         item.ProductID,
		ManufacturingDate: in.ManufacturingDate,
		ExpiryDate:        *in.ExpiryDate,
		ReceivedDate:      &now,
		InitialQuantity:   in.ReceivedQty,
		CurrentQuantity:   0,
		CostPrice:         &cost,
	}
	batch.CreatedBy = actor
	batch.UpdatedBy = actor
	if err := s.batchRepo.Create(tx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *purchaseOrderService) Cancel(id uuid.UUID, reason, actor string) (*model.PurchaseOrder, error) {
	return s.transition(id, model.POStatusCancelled, actor, func(order *model.PurchaseOrder) error {
		if reason != "" {
			if order.Notes != "" {
				order.Notes += "\n"
			}
			order.Notes += "Cancelled: " + reason
		}
		return nil
	})
}

func (s *purchaseOrderService) CountByStatus() (map[model.PurchaseOrderStatus]int64, error) {
	return s.orderRepo.CountByStatus()
}

func (s *purchaseOrderService) lockOrder(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase order %s not found", id)
		}
		return nil, err
	}
	return order, nil
}

// transition locks the order, validates the status change and applies mutate
// before saving. Concurrent duplicate transitions lose here: the second
// caller sees the advanced status and fails.
func (s *purchaseOrderService) transition(id uuid.UUID, next model.PurchaseOrderStatus, actor string, mutate func(*model.PurchaseOrder) error) (*model.PurchaseOrder, error) {
	var result *model.PurchaseOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition("purchase order %s cannot move from %s to %s", order.OrderNumber, order.Status, next)
		}
		if mutate != nil {
			if err := mutate(order); err != nil {
				return err
			}
		}
		order.Status = next
		order.UpdatedBy = actor
		if err := s.orderRepo.Save(tx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
