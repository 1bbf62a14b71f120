package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PayCash         PaymentMethod = "CASH"
	PayBankTransfer PaymentMethod = "BANK_TRANSFER"
	PayCheck        PaymentMethod = "CHECK"
	PayCreditCard   PaymentMethod = "CREDIT_CARD"
	PayDebitCard    PaymentMethod = "DEBIT_CARD"
	PayCreditNote   PaymentMethod = "CREDIT_NOTE"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPartial   PaymentStatus = "PARTIAL"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentOverdue   PaymentStatus = "OVERDUE"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Payment records money paid against a purchase order.
type Payment struct {
	BaseModel
	PurchaseOrderID uuid.UUID      `gorm:"type:uuid;not null;index" json:"purchase_order_id" validate:"uuid_required"`
	PurchaseOrder   *PurchaseOrder `json:"purchase_order,omitempty" validate:"-"`

	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required,oneof=CASH BANK_TRANSFER CHECK CREDIT_CARD DEBIT_CARD CREDIT_NOTE"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber string          `gorm:"type:varchar(50)" json:"reference_number"`
	Notes           string          `json:"notes"`
}
