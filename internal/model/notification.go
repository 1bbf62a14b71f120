package model

import "github.com/google/uuid"

type NotificationType string

const (
	NotifyExpiryWarning NotificationType = "EXPIRY_WARNING"
	NotifyRecall        NotificationType = "RECALL"
	NotifyLowStock      NotificationType = "LOW_STOCK"
	NotifyOrderStatus   NotificationType = "ORDER_STATUS"
	NotifySystem        NotificationType = "SYSTEM"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityMedium NotificationPriority = "MEDIUM"
	PriorityHigh   NotificationPriority = "HIGH"
)

// Notification is a persisted alert fetched over REST; there is no push channel.
type Notification struct {
	BaseModel
	Type     NotificationType     `gorm:"type:varchar(30);not null;index" json:"type"`
	Title    string               `gorm:"type:varchar(255);not null" json:"title"`
	Message  string               `gorm:"not null" json:"message"`
	Priority NotificationPriority `gorm:"type:varchar(10);default:'MEDIUM'" json:"priority"`
	IsRead   bool                 `gorm:"default:false;index" json:"is_read"`

	ReferenceType string     `gorm:"type:varchar(30)" json:"reference_type"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
}
