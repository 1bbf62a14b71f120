package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRole string

const (
	RoleSuperAdmin       UserRole = "SUPER_ADMIN"
	RoleAdmin            UserRole = "ADMIN"
	RoleWarehouseManager UserRole = "WAREHOUSE_MANAGER"
	RolePharmacist       UserRole = "PHARMACIST"
	RoleViewer           UserRole = "VIEWER"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Username  string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username" validate:"required"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FirstName string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string     `gorm:"type:varchar(100)" json:"last_name"`
	Phone     string     `gorm:"type:varchar(20)" json:"phone"`
	Role      UserRole   `gorm:"type:varchar(30);default:'VIEWER'" json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN WAREHOUSE_MANAGER PHARMACIST VIEWER"`

	// Optional scope: staff assigned to one warehouse
	WarehouseID *uuid.UUID `gorm:"type:uuid;index" json:"warehouse_id,omitempty"`
	Warehouse   *Warehouse `json:"warehouse,omitempty" validate:"-"`

	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasRole checks whether the user's role is one of the given set.
func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	Role        UserRole   `json:"role"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Role:        u.Role,
		WarehouseID: u.WarehouseID,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}
