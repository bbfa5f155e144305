package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegisterTaxInput computes and stores the taxes of one payment.
type RegisterTaxInput struct {
	PaymentID uint
	// Rent defaults to the expected amount of the payment.
	Rent          *decimal.Decimal
	InvoicesIVA   decimal.Decimal
	InvoicesRCIVA decimal.Decimal
	// AccruedQuarter overrides the RC-IVA base.
	AccruedQuarter *decimal.Decimal
	// UseInvoices adds the unused compensation invoices registered for the
	// contract: IVA invoices of the period and RC-IVA invoices of the quarter.
	UseInvoices bool
	Notes       string
	DeclaredOn  *time.Time
}

// RegisterTaxResult pairs the stored record with the engine breakdown.
type RegisterTaxResult struct {
	Record       *models.TaxRecord `json:"record"`
	Calculation  tax.Result        `json:"calculo"`
	InvoicesUsed int               `json:"invoices_used"`
	Message      string            `json:"message"`
}

// CreateInvoiceInput registers a compensation invoice.
type CreateInvoiceInput struct {
	ContractID  uint
	Number      string
	IssuerNIT   string
	IssuerName  string
	IssuedOn    time.Time
	Amount      decimal.Decimal
	TaxType     models.InvoiceTaxType
	Period      string
	Description string
}

// TaxTotals sums determined and effective amounts of one tax over a year.
type TaxTotals struct {
	Determined decimal.Decimal `json:"determinado"`
	Effective  decimal.Decimal `json:"efectivo"`
	Savings    decimal.Decimal `json:"ahorro_facturas"`
}

// AnnualTotals is the yearly summary of every tax.
type AnnualTotals struct {
	IVA   TaxTotals `json:"iva"`
	IT    TaxTotals `json:"it"`
	RCIVA TaxTotals `json:"rc_iva"`
	Total struct {
		Determined      decimal.Decimal `json:"determinado"`
		Effective       decimal.Decimal `json:"efectivo"`
		Savings         decimal.Decimal `json:"ahorro_total_facturas"`
		NetToDistribute decimal.Decimal `json:"neto_distribuido_copropietarios"`
	} `json:"total"`
}

// AnnualSummary lists the tax records of a contract for a year with totals.
type AnnualSummary struct {
	ContractID uint               `json:"contrato_id"`
	Year       int                `json:"anio"`
	Months     int                `json:"total_meses_registrados"`
	Records    []models.TaxRecord `json:"registros"`
	Totals     *AnnualTotals      `json:"totales_anuales,omitempty"`
	Message    string             `json:"mensaje,omitempty"`
}

// TaxService exposes the tax engine and persists its results.
type TaxService struct {
	db     *gorm.DB
	log    *logrus.Logger
	engine *tax.Engine
}

// NewTaxService returns a service computing with engine.
func NewTaxService(db *gorm.DB, log *logrus.Logger, engine *tax.Engine) *TaxService {
	return &TaxService{db: db, log: newLogger(log), engine: engine}
}

// Calculate previews the taxes of in.
func (s *TaxService) Calculate(in tax.Input) (tax.Result, error) {
	return s.engine.Compute(in)
}

// CalculateDetermined previews the taxes owed with no invoices.
func (s *TaxService) CalculateDetermined(rent decimal.Decimal, month, year int) (tax.Result, error) {
	return s.engine.ComputeDetermined(rent, month, year)
}

// Register computes the taxes of a payment period and stores a tax record.
// A payment has at most one record per period.
func (s *TaxService) Register(ctx context.Context, in RegisterTaxInput) (*RegisterTaxResult, error) {
	res := &RegisterTaxResult{Message: "Impuesto registrado exitosamente"}
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var p models.Payment
		if err := findByID(tx, &p, in.PaymentID, "payment"); err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.TaxRecord{}).Where("payment_id = ? AND period = ?", p.ID, p.Period).Count(&existing).Error; err != nil {
			return fmt.Errorf("count tax records: %w", err)
		}
		if existing > 0 {
			return apperr.Conflict("payment %d already has a tax record for %s", p.ID, p.Period)
		}

		rent := p.ExpectedAmount
		if in.Rent != nil {
			rent = *in.Rent
		}
		input := tax.Input{
			Rent:           rent,
			Month:          p.Month,
			Year:           p.Year,
			InvoicesIVA:    in.InvoicesIVA,
			InvoicesRCIVA:  in.InvoicesRCIVA,
			AccruedQuarter: in.AccruedQuarter,
		}
		var invoices []models.CompensationInvoice
		if in.UseInvoices {
			var err error
			invoices, err = s.unusedInvoices(tx, p.ContractID, p.Year, p.Month)
			if err != nil {
				return err
			}
			for _, inv := range invoices {
				switch inv.TaxType {
				case models.InvoiceForIVA:
					input.InvoicesIVA = input.InvoicesIVA.Add(inv.Amount)
				case models.InvoiceForRCIVA:
					input.InvoicesRCIVA = input.InvoicesRCIVA.Add(inv.Amount)
				}
			}
		}

		calc, err := s.engine.Compute(input)
		if err != nil {
			return err
		}
		rec, err := newTaxRecord(&p, calc)
		if err != nil {
			return err
		}
		rec.Notes = in.Notes
		if in.DeclaredOn != nil {
			d := Date(*in.DeclaredOn)
			rec.DeclaredOn = &d
		}
		if err := tx.Create(rec).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("payment %d already has a tax record for %s", p.ID, p.Period)
			}
			return fmt.Errorf("create tax record: %w", err)
		}

		if len(invoices) > 0 {
			ids := make([]uint, len(invoices))
			for i, inv := range invoices {
				ids[i] = inv.ID
			}
			err := tx.Model(&models.CompensationInvoice{}).Where("id IN ?", ids).
				Updates(map[string]any{"used": true, "tax_record_id": rec.ID}).Error
			if err != nil {
				return fmt.Errorf("mark invoices used: %w", err)
			}
		}
		res.Record = rec
		res.Calculation = calc
		res.InvoicesUsed = len(invoices)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"payment_id": in.PaymentID, "period": res.Record.Period,
		"effective": res.Record.TotalEffective.String(), "invoices_used": res.InvoicesUsed,
	}).Info("tax record registered")
	return res, nil
}

// unusedInvoices returns the invoices a period may consume: IVA invoices of
// the month and, in quarter-closing months, RC-IVA invoices of the quarter.
func (s *TaxService) unusedInvoices(tx *gorm.DB, contractID uint, year, month int) ([]models.CompensationInvoice, error) {
	q := tx.Where("contract_id = ? AND used = ? AND year = ?", contractID, false, year)
	if tax.IsQuarterClose(month) {
		q = q.Where("((tax_type = ? AND month = ?) OR (tax_type = ? AND quarter = ?))",
			models.InvoiceForIVA, month, models.InvoiceForRCIVA, tax.Quarter(month))
	} else {
		q = q.Where("tax_type = ? AND month = ?", models.InvoiceForIVA, month)
	}
	var invoices []models.CompensationInvoice
	if err := q.Order("id").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	return invoices, nil
}

func newTaxRecord(p *models.Payment, r tax.Result) (*models.TaxRecord, error) {
	snapshot, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode tax breakdown: %w", err)
	}
	return &models.TaxRecord{
		PaymentID:            p.ID,
		ContractID:           p.ContractID,
		Period:               r.Period,
		Year:                 r.Year,
		Month:                r.Month,
		Quarter:              r.Quarter,
		Rent:                 r.Rent,
		IVADetermined:        r.IVA.Determined,
		IVACap:               r.IVA.CompensationCap,
		IVAInvoices:          r.IVA.InvoicesPresented,
		IVAInvoicesApplied:   r.IVA.InvoicesApplied,
		IVAEffective:         r.IVA.Effective,
		IVAStatus:            string(r.IVA.Status),
		ITDetermined:         r.IT.Determined,
		ITEffective:          r.IT.Effective,
		IsQuarterMonth:       r.IsQuarterMonth,
		RCIVABase:            r.RCIVA.QuarterBase,
		RCIVADetermined:      r.RCIVA.Determined,
		RCIVAInvoices:        r.RCIVA.InvoicesPresented,
		RCIVAInvoicesApplied: r.RCIVA.InvoicesApplied,
		RCIVAEffective:       r.RCIVA.Effective,
		RCIVAStatus:          string(r.RCIVA.Status),
		TotalDetermined:      r.Summary.TotalDetermined,
		TotalInvoicesApplied: r.Summary.TotalInvoicesApplied,
		TotalEffective:       r.Summary.TotalEffective,
		TotalSavings:         r.Summary.TotalSavings,
		NetToDistribute:      r.Summary.NetToDistribute,
		Breakdown:            datatypes.JSON(snapshot),
	}, nil
}

// AnnualSummary returns the tax records of a contract for year, month by month.
// IT totals come from the determined amount, which always equals the effective one.
func (s *TaxService) AnnualSummary(ctx context.Context, contractID uint, year int) (*AnnualSummary, error) {
	conn := s.db.WithContext(ctx)
	var c models.Contract
	if err := findByID(conn, &c, contractID, "contract"); err != nil {
		return nil, err
	}
	var records []models.TaxRecord
	if err := conn.Where("contract_id = ? AND year = ?", contractID, year).Order("month").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load tax records: %w", err)
	}
	out := &AnnualSummary{ContractID: contractID, Year: year, Months: len(records), Records: records}
	if len(records) == 0 {
		out.Records = []models.TaxRecord{}
		out.Message = "Sin registros de impuestos para este año"
		return out, nil
	}

	var ivaD, ivaE, it, rcD, rcE, det, eff, sav, net decimal.Decimal
	for _, r := range records {
		ivaD = ivaD.Add(r.IVADetermined)
		ivaE = ivaE.Add(r.IVAEffective)
		it = it.Add(r.ITDetermined)
		rcD = rcD.Add(r.RCIVADetermined)
		rcE = rcE.Add(r.RCIVAEffective)
		det = det.Add(r.TotalDetermined)
		eff = eff.Add(r.TotalEffective)
		sav = sav.Add(r.TotalSavings)
		net = net.Add(r.NetToDistribute)
	}
	t := &AnnualTotals{
		IVA:   totals(ivaD, ivaE),
		IT:    totals(it, it),
		RCIVA: totals(rcD, rcE),
	}
	t.Total.Determined = money.Round(det)
	t.Total.Effective = money.Round(eff)
	t.Total.Savings = money.Round(sav)
	t.Total.NetToDistribute = money.Round(net)
	out.Totals = t
	return out, nil
}

func totals(determined, effective decimal.Decimal) TaxTotals {
	d, e := money.Round(determined), money.Round(effective)
	return TaxTotals{Determined: d, Effective: e, Savings: money.Round(d.Sub(e))}
}

// RegisterInvoice stores a compensation invoice for a contract period.
func (s *TaxService) RegisterInvoice(ctx context.Context, in CreateInvoiceInput) (*models.CompensationInvoice, error) {
	year, month, err := ParsePeriod(in.Period)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.TaxType != models.InvoiceForIVA && in.TaxType != models.InvoiceForRCIVA {
		fields["tax_type"] = "oneof"
	}
	if !in.Amount.IsPositive() {
		fields["amount"] = "gt"
	}
	if in.Number == "" {
		fields["number"] = "required"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields, "invalid invoice")
	}

	inv := models.CompensationInvoice{
		ContractID:  in.ContractID,
		Number:      in.Number,
		IssuerNIT:   in.IssuerNIT,
		IssuerName:  in.IssuerName,
		IssuedOn:    Date(in.IssuedOn),
		Amount:      money.Round(in.Amount),
		TaxType:     in.TaxType,
		Period:      tax.Period(year, month),
		Year:        year,
		Month:       month,
		Quarter:     tax.Quarter(month),
		Description: in.Description,
	}
	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		var c models.Contract
		if err := findByID(tx, &c, in.ContractID, "contract"); err != nil {
			return err
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"contract_id": inv.ContractID, "tax_type": inv.TaxType, "amount": inv.Amount.String()}).Info("compensation invoice registered")
	return &inv, nil
}

// ListInvoices returns the invoices of a contract, optionally for one year.
func (s *TaxService) ListInvoices(ctx context.Context, contractID uint, year int) ([]models.CompensationInvoice, error) {
	q := s.db.WithContext(ctx).Where("contract_id = ?", contractID)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var invoices []models.CompensationInvoice
	if err := q.Order("period, id").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}
