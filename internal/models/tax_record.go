package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaxRecord persists the tax breakdown of one payment period.
type TaxRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PaymentID  uint     `gorm:"not null;uniqueIndex:idx_tax_payment_period" json:"payment_id"`
	Payment    *Payment `gorm:"foreignKey:PaymentID" json:"-"`
	ContractID uint     `gorm:"not null;index" json:"contract_id"`

	Period  string `gorm:"size:7;not null;uniqueIndex:idx_tax_payment_period" json:"periodo"`
	Year    int    `gorm:"not null;index" json:"anio"`
	Month   int    `gorm:"not null" json:"mes"`
	Quarter int    `gorm:"not null" json:"trimestre"`

	Rent decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monto_alquiler"`

	IVADetermined      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"iva_determinado"`
	IVACap             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"iva_limite_compensacion"`
	IVAInvoices        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"iva_facturas_presentadas"`
	IVAInvoicesApplied decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"iva_facturas_aplicadas"`
	IVAEffective       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"iva_efectivo"`
	IVAStatus          string          `gorm:"size:30" json:"iva_estado"`

	ITDetermined decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"it_determinado"`
	ITEffective  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"it_efectivo"`

	IsQuarterMonth       bool            `gorm:"default:false" json:"es_mes_trimestral"`
	RCIVABase            decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"rc_iva_base_trimestral"`
	RCIVADetermined      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"rc_iva_determinado"`
	RCIVAInvoices        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"rc_iva_facturas_presentadas"`
	RCIVAInvoicesApplied decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"rc_iva_facturas_aplicadas"`
	RCIVAEffective       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"rc_iva_efectivo"`
	RCIVAStatus          string          `gorm:"size:30" json:"rc_iva_estado"`

	TotalDetermined      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_determinado"`
	TotalInvoicesApplied decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_facturas_aplicadas"`
	TotalEffective       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_efectivo"`
	TotalSavings         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_ahorro"`
	NetToDistribute      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monto_neto_distribuir"`

	Notes      string          `gorm:"type:text" json:"observaciones,omitempty"`
	DeclaredOn *datatypes.Date `json:"fecha_declaracion,omitempty"`

	// Breakdown is the full engine result as returned to the caller.
	Breakdown datatypes.JSON `json:"detalle,omitempty"`
}
