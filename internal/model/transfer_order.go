package model

import (
	"time"

	"github.com/google/uuid"
)

type TransferStatus string

const (
	TransferDraft     TransferStatus = "DRAFT"
	TransferPending   TransferStatus = "PENDING"
	TransferApproved  TransferStatus = "APPROVED"
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferReceived  TransferStatus = "RECEIVED"
	TransferRejected  TransferStatus = "REJECTED"
	TransferCancelled TransferStatus = "CANCELLED"
)

var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferDraft:     {TransferPending, TransferCancelled},
	TransferPending:   {TransferApproved, TransferRejected, TransferCancelled},
	TransferApproved:  {TransferInTransit, TransferCancelled},
	TransferInTransit: {TransferReceived, TransferCancelled},
	TransferReceived:  {},
	TransferRejected:  {},
	TransferCancelled: {},
}

func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransferOrder moves stock between two distinct warehouses.
type TransferOrder struct {
	BaseModel
	OrderNumber string `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`

	FromWarehouseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"from_warehouse_id"`
	FromWarehouse   *Warehouse `gorm:"foreignKey:FromWarehouseID" json:"from_warehouse,omitempty"`
	ToWarehouseID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"to_warehouse_id"`
	ToWarehouse     *Warehouse `gorm:"foreignKey:ToWarehouseID" json:"to_warehouse,omitempty"`

	Status TransferStatus `gorm:"type:varchar(20);default:'DRAFT';index" json:"status"`

	RequestDate  time.Time  `json:"request_date"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
	ShippedDate  *time.Time `json:"shipped_date,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`

	ApprovedBy      string `gorm:"type:varchar(255)" json:"approved_by"`
	RejectionReason string `json:"rejection_reason"`
	Notes           string `json:"notes"`

	Items []TransferOrderItem `json:"items,omitempty"`
}

type TransferOrderItem struct {
	BaseModel
	TransferOrderID uuid.UUID  `gorm:"type:uuid;not null;index" json:"transfer_order_id"`
	ProductID       uuid.UUID  `gorm:"type:uuid;not null" json:"product_id"`
	Product         *Product   `json:"product,omitempty"`
	BatchID         *uuid.UUID `gorm:"type:uuid" json:"batch_id,omitempty"`

	RequestedQty int  `gorm:"not null" json:"requested_qty"`
	ApprovedQty  *int `json:"approved_qty,omitempty"`
	ReceivedQty  *int `json:"received_qty,omitempty"`
	Notes        string `json:"notes"`
}
