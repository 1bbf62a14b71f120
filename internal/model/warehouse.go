package model

import "github.com/google/uuid"

type WarehouseType string

const (
	WarehouseMain       WarehouseType = "MAIN"
	WarehouseBranch     WarehouseType = "BRANCH"
	WarehouseQuarantine WarehouseType = "QUARANTINE"
)

// Warehouse is a physical storage site.
type Warehouse struct {
	BaseModel
	Code        string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	NameAr      string        `gorm:"type:varchar(255)" json:"name_ar"`
	Type        WarehouseType `gorm:"type:varchar(20);default:'BRANCH'" json:"type" validate:"required,oneof=MAIN BRANCH QUARANTINE"`
	Description string        `json:"description"`
	Address     string        `gorm:"type:varchar(255)" json:"address"`
	Phone       string        `gorm:"type:varchar(20)" json:"phone"`
	Email       string        `gorm:"type:varchar(255)" json:"email"`
	IsActive    bool          `gorm:"default:true" json:"is_active"`

	Zones []Zone `json:"zones,omitempty"`
}

// Zone is a storage area inside a warehouse.
type Zone struct {
	BaseModel
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Code        string    `gorm:"type:varchar(20);not null" json:"code" validate:"required"`
	Name        string    `gorm:"type:varchar(255)" json:"name"`
	Description string    `json:"description"`

	Shelves []Shelf `json:"shelves,omitempty"`
}

// Shelf is a storage slot inside a zone.
type Shelf struct {
	BaseModel
	ZoneID   uuid.UUID `gorm:"type:uuid;not null;index" json:"zone_id"`
	Code     string    `gorm:"type:varchar(20);not null" json:"code" validate:"required"`
	Name     string    `gorm:"type:varchar(255)" json:"name"`
	Capacity int       `gorm:"default:0" json:"capacity"`
}
