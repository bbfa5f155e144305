package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContractStatus represents the lifecycle of a lease.
type ContractStatus string

const (
	ContractActive     ContractStatus = "activo"
	ContractFinished   ContractStatus = "finalizado"
	ContractTerminated ContractStatus = "rescindido"
)

// Contract is a lease binding a tenant to a property.
type Contract struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PropertyID uint      `gorm:"index;not null" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	TenantID   uint      `gorm:"index;not null" json:"tenant_id"`
	Tenant     *Tenant   `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`

	Number    string         `gorm:"size:50;uniqueIndex;not null" json:"number"`
	StartDate datatypes.Date `gorm:"not null" json:"start_date"`
	EndDate   datatypes.Date `gorm:"not null" json:"end_date"`

	MonthlyRent decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthly_rent"`
	Deposit     decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"deposit"`
	// AnnualIncrease is the percent applied to the rent on each contract anniversary.
	AnnualIncrease decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"annual_increase"`
	// PaymentDay is the day of month rent falls due (1-28).
	PaymentDay int `gorm:"default:5" json:"payment_day"`
	// DailyLateFeeRate is the percent of the outstanding amount charged per day late.
	DailyLateFeeRate decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"daily_late_fee_rate"`

	Status ContractStatus `gorm:"size:20;default:'activo'" json:"status"`
	Notes  string         `gorm:"type:text" json:"notes,omitempty"`

	Payments []Payment `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
}

// IsActive returns true while the lease is running.
func (c *Contract) IsActive() bool {
	return c.Status == ContractActive
}
