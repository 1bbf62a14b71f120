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

type TransferOrderItemInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"uuid_required"`
	BatchID   *uuid.UUID `json:"batch_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"gt=0"`
	Notes     string     `json:"notes"`
}

type CreateTransferOrderInput struct {
	FromWarehouseID uuid.UUID                `json:"from_warehouse_id" validate:"uuid_required"`
	ToWarehouseID   uuid.UUID                `json:"to_warehouse_id" validate:"uuid_required"`
	Notes           string                   `json:"notes"`
	Items           []TransferOrderItemInput `json:"items" validate:"dive"`
}

// TransferReceiptInput overrides the received quantity for one line; lines
// not listed default to their approved quantity.
type TransferReceiptInput struct {
	ItemID      uuid.UUID `json:"item_id" validate:"uuid_required"`
	ReceivedQty int       `json:"received_qty" validate:"gte=0"`
}

type TransferOrderService interface {
	Create(in CreateTransferOrderInput, actor string) (*model.TransferOrder, error)
	GetOrders(p pagination.Params, f repository.TransferOrderFilters) ([]model.TransferOrder, int64, error)
	GetOrder(id uuid.UUID) (*model.TransferOrder, error)

	Submit(id uuid.UUID, actor string) (*model.TransferOrder, error)
	// Approve reserves the requested quantity at the source for every line;
	// the first line without enough available stock fails the whole call.
	Approve(id uuid.UUID, actor string) (*model.TransferOrder, error)
	Reject(id uuid.UUID, reason, actor string) (*model.TransferOrder, error)
	// Ship consumes the reservations and debits the source ledger.
	Ship(id uuid.UUID, actor string) (*model.TransferOrder, error)
	// Receive credits the destination ledger, creating rows as needed.
	Receive(id uuid.UUID, items []TransferReceiptInput, actor string) (*model.TransferOrder, error)
	// Cancel releases outstanding reservations when the order was APPROVED.
	Cancel(id uuid.UUID, reason, actor string) (*model.TransferOrder, error)
	CountByStatus() (map[model.TransferStatus]int64, error)
}

type transferOrderService struct {
	orderRepo     repository.TransferOrderRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	sequenceRepo  repository.SequenceRepository
	stockSvc      StockService
	movementSvc   StockMovementService
	db            *gorm.DB
}

func NewTransferOrderService(
	orderRepo repository.TransferOrderRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	sequenceRepo repository.SequenceRepository,
	stockSvc StockService,
	movementSvc StockMovementService,
	db *gorm.DB,
) TransferOrderService {
	return &transferOrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		sequenceRepo:  sequenceRepo,
		stockSvc:      stockSvc,
		movementSvc:   movementSvc,
		db:            db,
	}
}

func (s *transferOrderService) Create(in CreateTransferOrderInput, actor string) (*model.TransferOrder, error) {
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, apperr.StateConflict("source and destination warehouse must differ")
	}
	for _, id := range []uuid.UUID{in.FromWarehouseID, in.ToWarehouseID} {
		if _, err := s.warehouseRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("warehouse %s not found", id)
			}
			return nil, err
		}
	}

	items := make([]model.TransferOrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive, got %d", line.Quantity)
		}
		if _, err := s.productRepo.FindByID(line.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("product %s not found", line.ProductID)
			}
			return nil, err
		}
		items = append(items, model.TransferOrderItem{
			ProductID:    line.ProductID,
			BatchID:      line.BatchID,
			RequestedQty: line.Quantity,
			Notes:        line.Notes,
		})
	}

	var order *model.TransferOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.sequenceRepo.NextNumber(tx, "TO", time.Now())
		if err != nil {
			return err
		}
		order = &model.TransferOrder{
			OrderNumber:     number,
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Status:          model.TransferDraft,
			RequestDate:     time.Now(),
			Notes:           in.Notes,
			Items:           items,
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

func (s *transferOrderService) GetOrders(p pagination.Params, f repository.TransferOrderFilters) ([]model.TransferOrder, int64, error) {
	return s.orderRepo.FindAll(p, f)
}

func (s *transferOrderService) GetOrder(id uuid.UUID) (*model.TransferOrder, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("transfer order %s not found", id)
		}
		return nil, err
	}
	return order, nil
}

func (s *transferOrderService) Submit(id uuid.UUID, actor string) (*model.TransferOrder, error) {
	return s.transition(id, model.TransferPending, actor, func(tx *gorm.DB, order *model.TransferOrder) error {
		if len(order.Items) == 0 {
			return apperr.Validation("transfer order %s has no items", order.OrderNumber)
		}
		return nil
	})
}

func (s *transferOrderService) Approve(id uuid.UUID, actor string) (*model.TransferOrder, error) {
	return s.transition(id, model.TransferApproved, actor, func(tx *gorm.DB, order *model.TransferOrder) error {
		for i := range order.Items {
			item := &order.Items[i]
			stock, err := s.stockSvc.GetOrCreateTx(tx, item.ProductID, order.FromWarehouseID, item.BatchID, false)
			if err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					return apperr.InsufficientAvailable("product %s: requested %d, available 0", productCode(item), item.RequestedQty)
				}
				return err
			}
			if stock.AvailableQty < item.RequestedQty {
				return apperr.InsufficientAvailable("product %s: requested %d, available %d", productCode(item), item.RequestedQty, stock.AvailableQty)
			}
			stock.UpdatedBy = actor
			if err := s.stockSvc.ReserveTx(tx, stock, item.RequestedQty); err != nil {
				return err
			}

			approved := item.RequestedQty
			item.ApprovedQty = &approved
			item.UpdatedBy = actor
			if err := s.orderRepo.SaveItem(tx, item); err != nil {
				return err
			}
		}

		now := time.Now()
		order.ApprovedBy = actor
		order.ApprovedDate = &now
		return nil
	})
}

func (s *transferOrderService) Reject(id uuid.UUID, reason, actor string) (*model.TransferOrder, error) {
	if reason == "" {
		return nil, apperr.Validation("rejection reason is required")
	}
	return s.transition(id, model.TransferRejected, actor, func(tx *gorm.DB, order *model.TransferOrder) error {
		order.RejectionReason = reason
		return nil
	})
}

func (s *transferOrderService) Ship(id uuid.UUID, actor string) (*model.TransferOrder, error) {
	return s.transition(id, model.TransferInTransit, actor, func(tx *gorm.DB, order *model.TransferOrder) error {
		orderRef := order.ID
		for i := range order.Items {
			item := &order.Items[i]
			if item.ApprovedQty == nil || *item.ApprovedQty == 0 {
				continue
			}
			qty := *item.ApprovedQty

			stock, err := s.stockSvc.GetOrCreateTx(tx, item.ProductID, order.FromWarehouseID, item.BatchID, false)
			if err != nil {
				return err
			}
			stock.UpdatedBy = actor
			if err := s.stockSvc.ReleaseTx(tx, stock, qty); err != nil {
				return err
			}

			if _, err := s.movementSvc.RecordTx(tx, MovementInput{
				Type:          model.MovementTransferOut,
				ProductID:     item.ProductID,
				WarehouseID:   order.FromWarehouseID,
				BatchID:       item.BatchID,
				Quantity:      qty,
				ReferenceType: model.RefTransferOrder,
				ReferenceID:   &orderRef,
				Reason:        "Transfer shipment " + order.OrderNumber,
				Actor:         actor,
			}); err != nil {
				return err
			}
		}

		now := time.Now()
		order.ShippedDate = &now
		return nil
	})
}

func (s *transferOrderService) Receive(id uuid.UUID, items []TransferReceiptInput, actor string) (*model.TransferOrder, error) {
	overrides := make(map[uuid.UUID]int, len(items))
	for _, in := range items {
		overrides[in.ItemID] = in.ReceivedQty
	}

	return s.transition(id, model.TransferReceived, actor, func(tx *gorm.DB, order *model.TransferOrder) error {
		known := make(map[uuid.UUID]bool, len(order.Items))
		for i := range order.Items {
			known[order.Items[i].ID] = true
		}
		for itemID := range overrides {
			if !known[itemID] {
				return apperr.NotFound("item %s does not belong to transfer order %s", itemID, order.OrderNumber)
			}
		}

		orderRef := order.ID
		for i := range order.Items {
			item := &order.Items[i]
			approved := 0
			if item.ApprovedQty != nil {
				approved = *item.ApprovedQty
			}

			received := approved
			if override, ok := overrides[item.ID]; ok {
				received = override
			}
			if received < 0 || received > approved {
				return apperr.Validation("item %s received quantity %d outside [0, %d]", item.ID, received, approved)
			}

			if received > 0 {
				if _, err := s.movementSvc.RecordTx(tx, MovementInput{
					Type:          model.MovementTransferIn,
					ProductID:     item.ProductID,
					WarehouseID:   order.ToWarehouseID,
					BatchID:       item.BatchID,
					Quantity:      received,
					ReferenceType: model.RefTransferOrder,
					ReferenceID:   &orderRef,
					Reason:        "Transfer receipt " + order.OrderNumber,
					Actor:         actor,
				}); err != nil {
					return err
				}
			}

			item.ReceivedQty = &received
			item.UpdatedBy = actor
			if err := s.orderRepo.SaveItem(tx, item); err != nil {
				return err
			}
		}

		now := time.Now()
		order.ReceivedDate = &now
		return nil
	})
}

func (s *transferOrderService) Cancel(id uuid.UUID, reason, actor string) (*model.TransferOrder, error) {
	return s.transition(id, model.TransferCancelled, actor, func(tx *gorm.DB, order *model.TransferOrder) error {
		// Reservations are outstanding only between approval and shipment;
		// shipping already consumed them.
		if order.Status == model.TransferApproved {
			for i := range order.Items {
				item := &order.Items[i]
				if item.ApprovedQty == nil || *item.ApprovedQty == 0 {
					continue
				}
				stock, err := s.stockSvc.GetOrCreateTx(tx, item.ProductID, order.FromWarehouseID, item.BatchID, false)
				if err != nil {
					return err
				}
				stock.UpdatedBy = actor
				if err := s.stockSvc.ReleaseTx(tx, stock, *item.ApprovedQty); err != nil {
					return err
				}
			}
		}
		if reason != "" {
			if order.Notes != "" {
				order.Notes += "\n"
			}
			order.Notes += "Cancelled: " + reason
		}
		return nil
	})
}

func (s *transferOrderService) CountByStatus() (map[model.TransferStatus]int64, error) {
	return s.orderRepo.CountByStatus()
}

func (s *transferOrderService) transition(id uuid.UUID, next model.TransferStatus, actor string, mutate func(tx *gorm.DB, order *model.TransferOrder) error) (*model.TransferOrder, error) {
	var result *model.TransferOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("transfer order %s not found", id)
			}
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition("transfer order %s cannot move from %s to %s", order.OrderNumber, order.Status, next)
		}
		if mutate != nil {
			if err := mutate(tx, order); err != nil {
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

func productCode(item *model.TransferOrderItem) string {
	if item.Product != nil {
		return item.Product.Code
	}
	return item.ProductID.String()
}
