package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementReceipt     MovementType = "RECEIPT"
	MovementIssue       MovementType = "ISSUE"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementReturn      MovementType = "RETURN"
	MovementExpired     MovementType = "EXPIRED"
	MovementDamaged     MovementType = "DAMAGED"
	MovementLost        MovementType = "LOST"
	MovementAdjustment  MovementType = "ADJUSTMENT"
	MovementStockCount  MovementType = "STOCK_COUNT"
	MovementFound       MovementType = "FOUND"
)

// Reference types linking a movement to its originating document.
const (
	RefPurchaseOrder = "PURCHASE_ORDER"
	RefTransferOrder = "TRANSFER_ORDER"
	RefStockCount    = "STOCK_COUNT"
)

// Delta maps a movement type and raw quantity to the signed ledger delta.
// The second return is false for STOCK_COUNT movements, which are recorded
// for audit only; the count approval writes the ledger directly.
func (t MovementType) Delta(quantity int) (int, bool) {
	abs := quantity
	if abs < 0 {
		abs = -abs
	}
	switch t {
	case MovementReceipt, MovementTransferIn, MovementReturn, MovementFound:
		return abs, true
	case MovementIssue, MovementTransferOut, MovementExpired, MovementDamaged, MovementLost:
		return -abs, true
	case MovementAdjustment:
		return quantity, true
	default: // STOCK_COUNT
		return 0, false
	}
}

// Allocation reports whether the type consumes sellable stock, meaning the
// batch must not be recalled (EXPIRED/DAMAGED/LOST disposals stay allowed so
// bad stock can be removed).
func (t MovementType) Allocation() bool {
	return t == MovementIssue || t == MovementTransferOut
}

// StockMovement is one immutable journal entry. Rows are never updated after
// creation; DeletedAt exists only for audit correction.
type StockMovement struct {
	BaseModel
	MovementNumber string       `gorm:"type:varchar(30);uniqueIndex;not null" json:"movement_number"`
	Type           MovementType `gorm:"type:varchar(20);not null;index" json:"type"`

	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product     *Product   `json:"product,omitempty"`
	BatchID     *uuid.UUID `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	Batch       *Batch     `json:"batch,omitempty"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Warehouse   *Warehouse `json:"warehouse,omitempty"`

	// Signed quantity: positive for credits, negative for debits.
	Quantity   int              `gorm:"not null" json:"quantity"`
	UnitPrice  *decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_price,omitempty"`
	TotalValue *decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_value,omitempty"`

	ReferenceType string     `gorm:"type:varchar(30);index" json:"reference_type"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Reason        string     `json:"reason"`
	Notes         string     `json:"notes"`
}
