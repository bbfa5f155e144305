package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PropertyType tells whether a property has one owner or several.
type PropertyType string

const (
	PropertySole   PropertyType = "propia"
	PropertyShared PropertyType = "copropiedad"
)

// PropertyStatus represents the occupancy of a property.
type PropertyStatus string

const (
	PropertyAvailable   PropertyStatus = "disponible"
	PropertyRented      PropertyStatus = "alquilado"
	PropertyMaintenance PropertyStatus = "mantenimiento"
)

// PercentageTolerance is the slack allowed when co-owner shares are summed.
var PercentageTolerance = decimal.RequireFromString("0.01")

// Property is a rentable real-estate asset.
type Property struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Location
	Address    string `gorm:"size:300;not null" json:"address"`
	City       string `gorm:"size:100;default:'La Paz'" json:"city"`
	Department string `gorm:"size:100" json:"department,omitempty"`
	Zone       string `gorm:"size:100" json:"zone,omitempty"`

	Type        PropertyType     `gorm:"size:20;not null" json:"type"`
	Kind        string           `gorm:"size:50" json:"kind,omitempty"` // casa, departamento, local...
	Area        *decimal.Decimal `gorm:"type:decimal(10,2)" json:"area,omitempty"`
	Bedrooms    int              `gorm:"default:0" json:"bedrooms"`
	Bathrooms   int              `gorm:"default:0" json:"bathrooms"`
	Description string           `gorm:"type:text" json:"description,omitempty"`

	BaseRent decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"base_rent"`
	Currency string          `gorm:"size:3;default:'BOB'" json:"currency"`
	Status   PropertyStatus  `gorm:"size:20;default:'disponible'" json:"status"`

	CoOwners  []CoOwner  `gorm:"foreignKey:PropertyID" json:"co_owners,omitempty"`
	Contracts []Contract `gorm:"foreignKey:PropertyID" json:"contracts,omitempty"`
}

// IsShared returns true when rent must be split among co-owners.
func (p *Property) IsShared() bool {
	return p.Type == PropertyShared
}

// CoOwner holds a share of a shared property.
type CoOwner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PropertyID uint      `gorm:"index;not null" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"-"`

	Name       string `gorm:"size:200;not null" json:"name"`
	NationalID string `gorm:"size:20" json:"national_id,omitempty"`
	Phone      string `gorm:"size:20" json:"phone,omitempty"`
	Email      string `gorm:"size:100" json:"email,omitempty"`

	// Percentage is the share of each payment, 0 < p <= 100.
	Percentage decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"percentage"`

	BankAccount string `gorm:"size:50" json:"bank_account,omitempty"`
	Bank        string `gorm:"size:100" json:"bank,omitempty"`
	AccountType string `gorm:"size:20" json:"account_type,omitempty"`
}

// SharesSumTo100 reports whether the percentages add up to 100 within PercentageTolerance.
func SharesSumTo100(owners []CoOwner) bool {
	total := decimal.Zero
	for _, o := range owners {
		total = total.Add(o.Percentage)
	}
	return total.Sub(decimal.NewFromInt(100)).Abs().LessThanOrEqual(PercentageTolerance)
}
