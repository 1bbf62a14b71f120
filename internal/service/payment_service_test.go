package service

import (
	"testing"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/apperr"

	"github.com/shopspring/decimal"
)

func TestPaymentLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	// 100 x 1.00 = subtotal 100, tax 15, grand total 115.
	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 100, UnitPrice: decimal.NewFromInt(1)},
	})

	if _, err := svc.payment.Create(CreatePaymentInput{
		PurchaseOrderID: order.ID,
		Amount:          decimal.NewFromInt(50),
		PaymentMethod:   model.PayBankTransfer,
	}, "finance"); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	report, err := svc.payment.Status(order.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if report.Status != model.PaymentPartial || !report.Remaining.Equal(decimal.NewFromInt(65)) {
		t.Fatalf("expected PARTIAL with 65 remaining, got %+v", report)
	}

	// Overpaying the remaining balance is refused.
	_, err = svc.payment.Create(CreatePaymentInput{
		PurchaseOrderID: order.ID,
		Amount:          decimal.NewFromInt(70),
		PaymentMethod:   model.PayCash,
	}, "finance")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.payment.Create(CreatePaymentInput{
		PurchaseOrderID: order.ID,
		Amount:          decimal.NewFromInt(65),
		PaymentMethod:   model.PayCash,
	}, "finance"); err != nil {
		t.Fatalf("final payment: %v", err)
	}

	report, err = svc.payment.Status(order.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if report.Status != model.PaymentPaid || !report.Remaining.IsZero() {
		t.Fatalf("expected PAID with zero remaining, got %+v", report)
	}
}

func TestPaymentOnCancelledOrder(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(2)},
	})
	if _, err := svc.purchase.Cancel(order.ID, "no longer needed", "manager"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := svc.payment.Create(CreatePaymentInput{
		PurchaseOrderID: order.ID,
		Amount:          decimal.NewFromInt(5),
		PaymentMethod:   model.PayCash,
	}, "finance")
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	report, err := svc.payment.Status(order.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if report.Status != model.PaymentCancelled {
		t.Fatalf("expected CANCELLED, got %s", report.Status)
	}
}

func TestPaymentAmountMustBePositive(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := newTestServices(db)
	p := seedProduct(t, db, "MED-001")

	order := createDraftOrder(t, svc, db, []PurchaseOrderItemInput{
		{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(2)},
	})

	_, err := svc.payment.Create(CreatePaymentInput{
		PurchaseOrderID: order.ID,
		Amount:          decimal.Zero,
		PaymentMethod:   model.PayCash,
	}, "finance")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
