package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceTaxType is the tax an invoice offsets.
type InvoiceTaxType string

const (
	InvoiceForIVA   InvoiceTaxType = "iva"
	InvoiceForRCIVA InvoiceTaxType = "rc_iva"
)

// CompensationInvoice is a purchase invoice presented to reduce IVA or RC-IVA.
type CompensationInvoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ContractID  uint  `gorm:"not null;index" json:"contract_id"`
	TaxRecordID *uint `gorm:"index" json:"tax_record_id,omitempty"`

	Number     string          `gorm:"size:50;not null" json:"number"`
	IssuerNIT  string          `gorm:"size:20" json:"issuer_nit,omitempty"`
	IssuerName string          `gorm:"size:200" json:"issuer_name,omitempty"`
	IssuedOn   datatypes.Date  `gorm:"not null" json:"issued_on"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`

	TaxType InvoiceTaxType `gorm:"size:10;not null" json:"tax_type"`
	Period  string         `gorm:"size:7;not null;index" json:"period"`
	Year    int            `gorm:"not null" json:"year"`
	Month   int            `gorm:"not null" json:"month"`
	Quarter int            `gorm:"not null" json:"quarter"`

	Description string `gorm:"type:text" json:"description,omitempty"`
	Used        bool   `gorm:"default:false" json:"used"`
}
