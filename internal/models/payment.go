package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentStatus represents where a monthly rent stands.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pendiente"
	PaymentPaid    PaymentStatus = "pagado"
	PaymentPartial PaymentStatus = "parcial"
	PaymentOverdue PaymentStatus = "vencido"
)

// OpenPaymentStatuses are the states whose late fee still moves.
var OpenPaymentStatuses = []PaymentStatus{PaymentPending, PaymentPartial, PaymentOverdue}

// PaymentMethod is how the tenant paid.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "efectivo"
	MethodTransfer PaymentMethod = "transferencia"
	MethodCheque   PaymentMethod = "cheque"
	MethodDeposit  PaymentMethod = "deposito"
	MethodQR       PaymentMethod = "qr"
)

// Payment is one month of rent owed under a contract.
type Payment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ContractID uint      `gorm:"not null;uniqueIndex:idx_payment_contract_period" json:"contract_id"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`

	// Period is YYYY-MM.
	Period string `gorm:"size:7;not null;uniqueIndex:idx_payment_contract_period" json:"period"`
	Year   int    `gorm:"not null;index" json:"year"`
	Month  int    `gorm:"not null" json:"month"`

	DueDate  datatypes.Date  `gorm:"not null" json:"due_date"`
	PaidDate *datatypes.Date `json:"paid_date,omitempty"`

	ExpectedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"expected_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	LateFee        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"late_fee"`
	DaysLate       int             `gorm:"default:0" json:"days_late"`

	Method  PaymentMethod `gorm:"size:20" json:"method,omitempty"`
	Receipt string        `gorm:"size:100" json:"receipt,omitempty"`
	Note    string        `gorm:"type:text" json:"note,omitempty"`
	Status  PaymentStatus `gorm:"size:20;default:'pendiente'" json:"status"`

	Distributions []Distribution `gorm:"foreignKey:PaymentID" json:"distributions,omitempty"`
}

// IsSettled returns true when the rent has been paid in full.
func (p *Payment) IsSettled() bool {
	return p.Status == PaymentPaid && p.PaidAmount.GreaterThanOrEqual(p.ExpectedAmount)
}

// Outstanding returns what is still owed, never below zero.
func (p *Payment) Outstanding() decimal.Decimal {
	out := p.ExpectedAmount.Sub(p.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
