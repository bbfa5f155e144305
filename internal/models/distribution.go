package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DistributionStatus tracks the transfer of a share to its co-owner.
type DistributionStatus string

const (
	DistributionPending    DistributionStatus = "pendiente"
	DistributionPaid       DistributionStatus = "pagado"
	DistributionInProgress DistributionStatus = "en_proceso"
)

// Distribution is the share of a payment owed to one co-owner.
// A payment is distributed at most once: (payment_id, co_owner_id) is unique.
type Distribution struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PaymentID uint     `gorm:"not null;uniqueIndex:idx_distribution_payment_co_owner" json:"payment_id"`
	Payment   *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	CoOwnerID uint     `gorm:"not null;index;uniqueIndex:idx_distribution_payment_co_owner" json:"co_owner_id"`
	CoOwner   *CoOwner `gorm:"foreignKey:CoOwnerID" json:"co_owner,omitempty"`

	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Percentage decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"percentage"`

	DistributedOn datatypes.Date  `gorm:"not null" json:"distributed_on"`
	PaidOn        *datatypes.Date `json:"paid_on,omitempty"`

	Status            DistributionStatus `gorm:"size:20;default:'pendiente'" json:"status"`
	TransferReference string             `gorm:"size:100" json:"transfer_reference,omitempty"`
	Note              string             `gorm:"type:text" json:"note,omitempty"`
}
