package model

import (
	"time"

	"github.com/google/uuid"
)

type StockCountStatus string

const (
	CountPlanned    StockCountStatus = "PLANNED"
	CountInProgress StockCountStatus = "IN_PROGRESS"
	CountCompleted  StockCountStatus = "COMPLETED"
	CountApproved   StockCountStatus = "APPROVED"
	CountCancelled  StockCountStatus = "CANCELLED"
)

var stockCountTransitions = map[StockCountStatus][]StockCountStatus{
	CountPlanned:    {CountInProgress, CountCancelled},
	CountInProgress: {CountCompleted, CountCancelled},
	CountCompleted:  {CountApproved, CountCancelled},
	CountApproved:   {},
	CountCancelled:  {},
}

func (s StockCountStatus) CanTransitionTo(next StockCountStatus) bool {
	for _, allowed := range stockCountTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StockCount reconciles physical stock against the ledger for one warehouse.
type StockCount struct {
	BaseModel
	CountNumber string `gorm:"type:varchar(30);uniqueIndex;not null" json:"count_number"`

	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Warehouse   *Warehouse `json:"warehouse,omitempty"`

	Status StockCountStatus `gorm:"type:varchar(20);default:'PLANNED';index" json:"status"`

	ScheduledDate time.Time  `gorm:"type:date;not null" json:"scheduled_date"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`

	ApprovedBy string `gorm:"type:varchar(255)" json:"approved_by"`
	Notes      string `json:"notes"`

	Items []StockCountItem `json:"items,omitempty"`
}

// StockCountItem snapshots the system quantity for one ledger key at the
// moment the count starts. Variance = CountedQty - SystemQty.
type StockCountItem struct {
	BaseModel
	StockCountID uuid.UUID  `gorm:"type:uuid;not null;index" json:"stock_count_id"`
	ProductID    uuid.UUID  `gorm:"type:uuid;not null" json:"product_id"`
	Product      *Product   `json:"product,omitempty"`
	BatchID      *uuid.UUID `gorm:"type:uuid" json:"batch_id,omitempty"`

	SystemQty  int    `gorm:"not null" json:"system_qty"`
	CountedQty *int   `json:"counted_qty,omitempty"`
	Variance   *int   `json:"variance,omitempty"`
	Notes      string `json:"notes"`
}
