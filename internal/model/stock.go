package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock is the ledger row for one (product, warehouse, batch) combination.
// AvailableQty is stored but always written as Quantity - ReservedQty; the
// stock service is the only writer.
type Stock struct {
	BaseModel
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_key" json:"product_id"`
	Product     *Product   `json:"product,omitempty"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_key" json:"warehouse_id"`
	Warehouse   *Warehouse `json:"warehouse,omitempty"`
	BatchID     *uuid.UUID `gorm:"type:uuid;index:idx_stock_key" json:"batch_id,omitempty"`
	Batch       *Batch     `json:"batch,omitempty"`

	Quantity    int `gorm:"not null;default:0" json:"quantity"`
	ReservedQty int `gorm:"not null;default:0" json:"reserved_qty"`
	AvailableQty int `gorm:"not null;default:0" json:"available_qty"`

	LastMovementDate *time.Time `json:"last_movement_date,omitempty"`
}

type StockStatus string

const (
	StockOK       StockStatus = "OK"
	StockLow      StockStatus = "LOW"
	StockCritical StockStatus = "CRITICAL"
	StockOut      StockStatus = "OUT_OF_STOCK"
)

// Status bands the on-hand quantity against the product's minimum level.
func (s *Stock) Status(minStockLevel int) StockStatus {
	switch {
	case s.Quantity == 0:
		return StockOut
	case s.Quantity*2 <= minStockLevel:
		return StockCritical
	case s.Quantity <= minStockLevel:
		return StockLow
	default:
		return StockOK
	}
}
