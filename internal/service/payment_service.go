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

type CreatePaymentInput struct {
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id" validate:"uuid_required"`
	Amount          decimal.Decimal     `json:"amount"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" validate:"required"`
	PaymentDate     *time.Time          `json:"payment_date,omitempty"`
	ReferenceNumber string              `json:"reference_number"`
	Notes           string              `json:"notes"`
}

// PaymentStatusReport rolls up payments against one purchase order.
type PaymentStatusReport struct {
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id"`
	GrandTotal      decimal.Decimal     `json:"grand_total"`
	TotalPaid       decimal.Decimal     `json:"total_paid"`
	Remaining       decimal.Decimal     `json:"remaining"`
	Status          model.PaymentStatus `json:"status"`
}

type PaymentService interface {
	// Create refuses payments against cancelled orders and amounts above the
	// remaining balance.
	Create(in CreatePaymentInput, actor string) (*model.Payment, error)
	GetPayments(p pagination.Params, purchaseOrderID *uuid.UUID) ([]model.Payment, int64, error)
	GetPayment(id uuid.UUID) (*model.Payment, error)
	Status(purchaseOrderID uuid.UUID) (*PaymentStatusReport, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.PurchaseOrderRepository
	db          *gorm.DB
}

func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.PurchaseOrderRepository, db *gorm.DB) PaymentService {
	return &paymentService{paymentRepo, orderRepo, db}
}

func (s *paymentService) Create(in CreatePaymentInput, actor string) (*model.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("payment amount must be positive")
	}

	var payment *model.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(tx, in.PurchaseOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("purchase order %s not found", in.PurchaseOrderID)
			}
			return err
		}
		if order.Status == model.POStatusCancelled {
			return apperr.StateConflict("purchase order %s is cancelled", order.OrderNumber)
		}

		paid, err := s.paymentRepo.TotalPaid(tx, order.ID)
		if err != nil {
			return err
		}
		remaining := order.GrandTotal.Sub(paid)
		if in.Amount.GreaterThan(remaining) {
			return apperr.Validation("payment %s exceeds remaining balance %s", in.Amount, remaining)
		}

		date := time.Now()
		if in.PaymentDate != nil {
			date = *in.PaymentDate
		}
		payment = &model.Payment{
			PurchaseOrderID: order.ID,
			Amount:          in.Amount,
			PaymentMethod:   in.PaymentMethod,
			PaymentDate:     date,
			ReferenceNumber: in.ReferenceNumber,
			Notes:           in.Notes,
		}
		payment.CreatedBy = actor
		payment.UpdatedBy = actor
		return s.paymentRepo.Create(tx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) GetPayments(p pagination.Params, purchaseOrderID *uuid.UUID) ([]model.Payment, int64, error) {
	return s.paymentRepo.FindAll(p, purchaseOrderID)
}

func (s *paymentService) GetPayment(id uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment %s not found", id)
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Status(purchaseOrderID uuid.UUID) (*PaymentStatusReport, error) {
	order, err := s.orderRepo.FindByID(purchaseOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase order %s not found", purchaseOrderID)
		}
		return nil, err
	}

	paid, err := s.paymentRepo.TotalPaid(nil, purchaseOrderID)
	if err != nil {
		return nil, err
	}

	status := model.PaymentPending
	switch {
	case order.Status == model.POStatusCancelled:
		status = model.PaymentCancelled
	case paid.GreaterThanOrEqual(order.GrandTotal) && order.GrandTotal.IsPositive():
		status = model.PaymentPaid
	case paid.IsPositive():
		status = model.PaymentPartial
	}

	return &PaymentStatusReport{
		PurchaseOrderID: purchaseOrderID,
		GrandTotal:      order.GrandTotal,
		TotalPaid:       paid,
		Remaining:       order.GrandTotal.Sub(paid),
		Status:          status,
	}, nil
}
