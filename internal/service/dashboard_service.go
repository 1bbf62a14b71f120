package service

import (
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"

	"github.com/google/uuid"
)

// DashboardSummary is the operations overview served to the frontend.
type DashboardSummary struct {
	PurchaseOrders map[model.PurchaseOrderStatus]int64 `json:"purchase_orders"`
	TransferOrders map[model.TransferStatus]int64      `json:"transfer_orders"`
	LowStock       []repository.LowStockRow            `json:"low_stock"`
	ExpiringSoon   []BatchWithStatus                   `json:"expiring_soon"`
	UnreadAlerts   int64                               `json:"unread_alerts"`
	Movements      []repository.TypeSummary            `json:"movements_last_30_days"`
}

type DashboardService interface {
	Summary(warehouseID *uuid.UUID) (*DashboardSummary, error)
}

type dashboardService struct {
	purchaseSvc     PurchaseOrderService
	transferSvc     TransferOrderService
	stockSvc        StockService
	batchSvc        BatchService
	movementSvc     StockMovementService
	notificationSvc NotificationService
}

func NewDashboardService(
	purchaseSvc PurchaseOrderService,
	transferSvc TransferOrderService,
	stockSvc StockService,
	batchSvc BatchService,
	movementSvc StockMovementService,
	notificationSvc NotificationService,
) DashboardService {
	return &dashboardService{
		purchaseSvc:     purchaseSvc,
		transferSvc:     transferSvc,
		stockSvc:        stockSvc,
		batchSvc:        batchSvc,
		movementSvc:     movementSvc,
		notificationSvc: notificationSvc,
	}
}

func (s *dashboardService) Summary(warehouseID *uuid.UUID) (*DashboardSummary, error) {
	poCounts, err := s.purchaseSvc.CountByStatus()
	if err != nil {
		return nil, err
	}
	toCounts, err := s.transferSvc.CountByStatus()
	if err != nil {
		return nil, err
	}
	lowStock, err := s.stockSvc.LowStock()
	if err != nil {
		return nil, err
	}
	expiring, err := s.batchSvc.GetExpiring(model.ExpiryCriticalDays)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationSvc.UnreadCount()
	if err != nil {
		return nil, err
	}

	from := time.Now().AddDate(0, 0, -30)
	movements, err := s.movementSvc.Summarize(warehouseID, &from, nil)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		PurchaseOrders: poCounts,
		TransferOrders: toCounts,
		LowStock:       lowStock,
		ExpiringSoon:   expiring,
		UnreadAlerts:   unread,
		Movements:      movements,
	}, nil
}
