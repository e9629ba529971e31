package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType represents the type of user
type UserType string

const (
	UserTypeAdmin    UserType = "Admin"
	UserTypeSales    UserType = "Sales"
	UserTypeCustomer UserType = "Customer"
)

// User represents a user in the system. Customers own financed contracts;
// Admin and Sales accounts operate the dealership side.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name     string   `gorm:"type:varchar(255)" json:"name"`
	Phone    string   `gorm:"type:varchar(50)" json:"phone"`
	Email    string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	UserType UserType `gorm:"type:varchar(20);default:'Customer'" json:"user_type"`

	// Relationships
	Contracts []Contract `gorm:"foreignKey:UserID" json:"contracts,omitempty"`
	Payments  []Payment  `gorm:"foreignKey:UserID" json:"payments,omitempty"`
}
