package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expiry warning windows in days.
const (
	ExpiryCriticalDays = 30
	ExpiryWarningDays  = 90
)

type ExpiryStatus string

const (
	ExpiryGood     ExpiryStatus = "GOOD"
	ExpiryWarning  ExpiryStatus = "WARNING"
	ExpiryCritical ExpiryStatus = "CRITICAL"
	ExpiryExpired  ExpiryStatus = "EXPIRED"
)

// Batch is one manufactured lot of a product sharing an expiry date.
type Batch struct {
	BaseModel
	BatchNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"batch_number" validate:"required"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product     *Product  `json:"product,omitempty" validate:"-"`

	ManufacturingDate *time.Time `gorm:"type:date" json:"manufacturing_date,omitempty"`
	ExpiryDate        time.Time  `gorm:"type:date;not null" json:"expiry_date" validate:"required"`
	ReceivedDate      *time.Time `gorm:"type:date" json:"received_date,omitempty"`

	InitialQuantity int              `gorm:"not null" json:"initial_quantity" validate:"gt=0"`
	CurrentQuantity int              `gorm:"not null" json:"current_quantity"`
	CostPrice       *decimal.Decimal `gorm:"type:numeric(12,2)" json:"cost_price,omitempty"`

	IsExpired    bool   `gorm:"default:false" json:"is_expired"`
	IsRecalled   bool   `gorm:"default:false" json:"is_recalled"`
	RecallReason string `json:"recall_reason"`

	Stocks []Stock `json:"stocks,omitempty"`
}

// DaysUntilExpiry counts whole days from now (midnight-truncated) to expiry.
func (b *Batch) DaysUntilExpiry(now time.Time) int {
	today := now.Truncate(24 * time.Hour)
	expiry := b.ExpiryDate.Truncate(24 * time.Hour)
	return int(expiry.Sub(today).Hours() / 24)
}

// ExpiryStatus derives the warning band for the batch.
func (b *Batch) ExpiryStatus(now time.Time) ExpiryStatus {
	if b.IsExpired {
		return ExpiryExpired
	}
	days := b.DaysUntilExpiry(now)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= ExpiryCriticalDays:
		return ExpiryCritical
	case days <= ExpiryWarningDays:
		return ExpiryWarning
	default:
		return ExpiryGood
	}
}

// Allocatable reports whether stock of this batch may still be reserved or issued.
func (b *Batch) Allocatable() bool {
	return !b.IsExpired && !b.IsRecalled
}
