package models

import (
	"time"

	"gorm.io/gorm"
)

// Role grants a fixed set of permissions.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operador"
	RoleReader   Role = "lector"
)

// User represents an authenticated user in the system.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Role      Role           `gorm:"size:20;not null;default:'lector'" json:"role"`
	Active    bool           `gorm:"not null" json:"active"`
}
