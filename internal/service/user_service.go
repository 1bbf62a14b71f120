package service

import (
	"errors"

	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/pkg/apperr"
	"go-medwarehouse/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Username    string         `json:"username" validate:"required"`
	Email       string         `json:"email" validate:"required,email"`
	Password    string         `json:"password" validate:"required,min=8"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Phone       string         `json:"phone"`
	Role        model.UserRole `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN WAREHOUSE_MANAGER PHARMACIST VIEWER"`
	WarehouseID *uuid.UUID     `json:"warehouse_id,omitempty"`
}

type UpdateUserInput struct {
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Phone       string         `json:"phone"`
	Role        model.UserRole `json:"role"`
	WarehouseID *uuid.UUID     `json:"warehouse_id,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
}

type UserService interface {
	Create(in CreateUserInput, actor string) (*model.UserResponse, error)
	GetUsers() ([]model.UserResponse, error)
	GetUser(id uuid.UUID) (*model.UserResponse, error)
	Update(id uuid.UUID, in UpdateUserInput, actor string) (*model.UserResponse, error)
	Delete(id uuid.UUID, actor string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo}
}

func (s *userService) Create(in CreateUserInput, actor string) (*model.UserResponse, error) {
	if msg := validator.Check(&in); msg != "" {
		return nil, apperr.Validation("%s", msg)
	}

	if existing, err := s.userRepo.FindByUsername(in.Username); err == nil && existing != nil {
		return nil, apperr.Duplicate("username %s already exists", in.Username)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing, err := s.userRepo.FindByEmail(in.Email); err == nil && existing != nil {
		return nil, apperr.Duplicate("email %s already exists", in.Email)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Username:    in.Username,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Phone:       in.Phone,
		Role:        in.Role,
		WarehouseID: in.WarehouseID,
		IsActive:    true,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, err
	}
	user.CreatedBy = actor
	user.UpdatedBy = actor

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) GetUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, user.ToResponse())
	}
	return out, nil
}

func (s *userService) GetUser(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Update(id uuid.UUID, in UpdateUserInput, actor string) (*model.UserResponse, error) {
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Phone != "" {
		user.Phone = in.Phone
	}
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.WarehouseID != nil {
		user.WarehouseID = in.WarehouseID
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.UpdatedBy = actor

	if msg := validator.Check(user); msg != "" {
		return nil, apperr.Validation("%s", msg)
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Delete(id uuid.UUID, actor string) error {
	if _, err := s.find(id); err != nil {
		return err
	}
	return s.userRepo.Delete(id, actor)
}

func (s *userService) find(id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s not found", id)
		}
		return nil, err
	}
	return user, nil
}
