package models

import (
	"time"

	"gorm.io/gorm"
)

// TenantStatus represents whether a tenant is still active.
type TenantStatus string

const (
	TenantActive   TenantStatus = "activo"
	TenantInactive TenantStatus = "inactivo"
)

// Tenant rents properties through contracts.
type Tenant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FullName   string `gorm:"size:200;not null" json:"full_name"`
	NationalID string `gorm:"size:20;uniqueIndex;not null" json:"national_id"`
	Phone      string `gorm:"size:20;not null" json:"phone"`
	AltPhone   string `gorm:"size:20" json:"alt_phone,omitempty"`
	Email      string `gorm:"size:100" json:"email,omitempty"`

	CurrentAddress string `gorm:"size:300" json:"current_address,omitempty"`
	HomeCity       string `gorm:"size:100" json:"home_city,omitempty"`

	Occupation string `gorm:"size:100" json:"occupation,omitempty"`
	Workplace  string `gorm:"size:200" json:"workplace,omitempty"`
	WorkPhone  string `gorm:"size:20" json:"work_phone,omitempty"`

	ReferenceName  string `gorm:"size:200" json:"reference_name,omitempty"`
	ReferencePhone string `gorm:"size:20" json:"reference_phone,omitempty"`

	Status TenantStatus `gorm:"size:20;default:'activo'" json:"status"`

	Contracts []Contract `gorm:"foreignKey:TenantID" json:"contracts,omitempty"`
}
