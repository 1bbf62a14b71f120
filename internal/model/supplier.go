package model

// Supplier is a vendor record referenced by name on purchase orders.
type Supplier struct {
	BaseModel
	Code          string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required"`
	Name          string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	ContactPerson string `gorm:"type:varchar(255)" json:"contact_person"`
	Email         string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone         string `gorm:"type:varchar(20)" json:"phone"`
	Address       string `gorm:"type:varchar(255)" json:"address"`
	TaxNumber     string `gorm:"type:varchar(50)" json:"tax_number"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
}
