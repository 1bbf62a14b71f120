package service

import (
	"errors"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService interface {
	GetNotifications(p pagination.Params, unreadOnly bool) ([]model.Notification, int64, error)
	MarkRead(id uuid.UUID) error
	MarkAllRead() error
	UnreadCount() (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo}
}

func (s *notificationService) GetNotifications(p pagination.Params, unreadOnly bool) ([]model.Notification, int64, error) {
	return s.notificationRepo.FindAll(p, unreadOnly)
}

func (s *notificationService) MarkRead(id uuid.UUID) error {
	if _, err := s.notificationRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("notification %s not found", id)
		}
		return err
	}
	return s.notificationRepo.MarkRead(id)
}

func (s *notificationService) MarkAllRead() error {
	return s.notificationRepo.MarkAllRead()
}

func (s *notificationService) UnreadCount() (int64, error) {
	return s.notificationRepo.UnreadCount()
}
