package service

import (
	"errors"
	"time"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Login(in LoginInput) (*LoginResult, error)
	GetProfile(userID uuid.UUID) (*model.UserResponse, error)
	ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo}
}

func (s *authService) Login(in LoginInput) (*LoginResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	user, err := s.userRepo.FindByUsername(in.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.userRepo.FindByEmail(in.Username)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperr.Validation("account is disabled")
	}
	if !user.CheckPassword(in.Password) {
		return nil, apperr.Validation("invalid credentials")
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, user.Email, string(user.Role), user.WarehouseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s not found", userID)
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.Validation("new password must be at least 8 characters")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user %s not found", userID)
		}
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return apperr.Validation("current password is incorrect")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.userRepo.Update(user)
}
