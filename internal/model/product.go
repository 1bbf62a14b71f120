package model

import "github.com/shopspring/decimal"

type ProductCategory string

const (
	CategoryMedication    ProductCategory = "MEDICATION"
	CategoryMedicalSupply ProductCategory = "MEDICAL_SUPPLY"
	CategoryEquipment     ProductCategory = "EQUIPMENT"
	CategoryConsumable    ProductCategory = "CONSUMABLE"
)

type ProductStatus string

const (
	ProductActive       ProductStatus = "ACTIVE"
	ProductInactive     ProductStatus = "INACTIVE"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
)

type UnitOfMeasure string

const (
	UnitPiece  UnitOfMeasure = "PIECE"
	UnitBox    UnitOfMeasure = "BOX"
	UnitPack   UnitOfMeasure = "PACK"
	UnitBottle UnitOfMeasure = "BOTTLE"
	UnitVial   UnitOfMeasure = "VIAL"
	UnitCarton UnitOfMeasure = "CARTON"
)

// Product is a catalog entry for one medical item.
type Product struct {
	BaseModel
	Code     string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Barcode  *string `gorm:"type:varchar(50);uniqueIndex" json:"barcode,omitempty"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	NameAr   string  `gorm:"type:varchar(255)" json:"name_ar"`
	Category ProductCategory `gorm:"type:varchar(30);not null" json:"category" validate:"required,oneof=MEDICATION MEDICAL_SUPPLY EQUIPMENT CONSUMABLE"`

	Description       string        `json:"description"`
	UnitOfMeasure     UnitOfMeasure `gorm:"type:varchar(20);not null" json:"unit_of_measure" validate:"required"`
	MinStockLevel     int           `gorm:"default:0" json:"min_stock_level" validate:"gte=0"`
	MaxStockLevel     *int          `json:"max_stock_level,omitempty"`
	ReorderPoint      int           `gorm:"default:0" json:"reorder_point"`
	ReorderQuantity   int           `gorm:"default:0" json:"reorder_quantity"`
	UnitPrice         decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	StorageConditions string        `gorm:"type:varchar(255)" json:"storage_conditions"`

	RequiresPrescription bool `gorm:"default:false" json:"requires_prescription"`
	IsDangerous          bool `gorm:"default:false" json:"is_dangerous"`

	Status ProductStatus `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`

	Batches []Batch `json:"batches,omitempty"`
	Stocks  []Stock `json:"stocks,omitempty"`
}
