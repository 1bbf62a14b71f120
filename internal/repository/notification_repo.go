package repository

import (
	"go-medwarehouse/internal/model"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(tx *gorm.DB, n *model.Notification) error
	FindAll(p pagination.Params, unreadOnly bool) ([]model.Notification, int64, error)
	FindByID(id uuid.UUID) (*model.Notification, error)
	MarkRead(id uuid.UUID) error
	MarkAllRead() error
	UnreadCount() (int64, error)
	// ExistsForReference is used by idempotent sweeps to avoid duplicate alerts.
	ExistsForReference(nType model.NotificationType, refType string, refID uuid.UUID) (bool, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) Create(tx *gorm.DB, n *model.Notification) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(n).Error
}

func (r *notificationRepo) FindAll(p pagination.Params, unreadOnly bool) ([]model.Notification, int64, error) {
	q := r.db.Model(&model.Notification{})
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.Notification
	err := q.Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepo) FindByID(id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	err := r.db.First(&n, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) MarkRead(id uuid.UUID) error {
	return r.db.Model(&model.Notification{}).Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *notificationRepo) MarkAllRead() error {
	return r.db.Model(&model.Notification{}).Where("is_read = ?", false).
		Update("is_read", true).Error
}

func (r *notificationRepo) UnreadCount() (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepo) ExistsForReference(nType model.NotificationType, refType string, refID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("type = ? AND reference_type = ? AND reference_id = ?", nType, refType, refID).
		Count(&count).Error
	return count > 0, err
}
