package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "DRAFT"
	POStatusSubmitted         PurchaseOrderStatus = "SUBMITTED"
	POStatusApproved          PurchaseOrderStatus = "APPROVED"
	POStatusOrdered           PurchaseOrderStatus = "ORDERED"
	POStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	POStatusReceived          PurchaseOrderStatus = "RECEIVED"
	POStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// purchaseOrderTransitions is the closed transition table; anything not
// listed is an invalid transition.
var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POStatusDraft:             {POStatusSubmitted, POStatusCancelled},
	POStatusSubmitted:         {POStatusApproved, POStatusCancelled},
	POStatusApproved:          {POStatusOrdered, POStatusCancelled},
	POStatusOrdered:           {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
	POStatusPartiallyReceived: {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
	POStatusReceived:          {},
	POStatusCancelled:         {},
}

func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, allowed := range purchaseOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PurchaseOrder tracks procurement from a supplier into one warehouse.
type PurchaseOrder struct {
	BaseModel
	OrderNumber string `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	Supplier    string `gorm:"type:varchar(255);not null" json:"supplier"`

	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Warehouse   *Warehouse `json:"warehouse,omitempty"`

	Status PurchaseOrderStatus `gorm:"type:varchar(20);default:'DRAFT';index" json:"status"`

	OrderDate    time.Time  `json:"order_date"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_amount"`
	TaxAmount   decimal.Decimal `gorm:"type:numeric(14,2)" json:"tax_amount"`
	GrandTotal  decimal.Decimal `gorm:"type:numeric(14,2)" json:"grand_total"`

	ApprovedBy string `gorm:"type:varchar(255)" json:"approved_by"`
	Notes      string `json:"notes"`

	Items []PurchaseOrderItem `json:"items,omitempty"`
}

// FullyReceived reports whether every line has been received in full.
func (o *PurchaseOrder) FullyReceived() bool {
	for _, item := range o.Items {
		if item.ReceivedQty < item.OrderedQty {
			return false
		}
	}
	return len(o.Items) > 0
}

type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product         *Product  `json:"product,omitempty"`

	OrderedQty  int             `gorm:"not null" json:"ordered_qty"`
	ReceivedQty int             `gorm:"not null;default:0" json:"received_qty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_price"`
	Notes       string          `json:"notes"`
}
