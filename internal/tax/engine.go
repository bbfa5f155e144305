// Package tax computes the Bolivian taxes owed on a monthly rent: IVA, IT and
// the quarterly RC-IVA. For every tax it reports the amount the law determines
// and the amount effectively paid once compensation invoices are applied.
//
// The engine is pure: it never touches storage and gives the same result for
// the same input.
package tax

import (
	"fmt"

	"github.com/diewo77/go-rentals/validation"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/shopspring/decimal"
)

// Status describes how much of a tax was offset by invoices.
type Status string

const (
	StatusNoCompensation       Status = "sin_compensacion"
	StatusFullyCompensated     Status = "compensado_total"
	StatusPartiallyCompensated Status = "compensado_parcial"
	StatusNotApplicable        Status = "no_aplica"
	StatusNotCompensable       Status = "no_compensable"
)

// ClosingMonths lists the months in which RC-IVA is declared.
const ClosingMonths = "Marzo, Junio, Septiembre, Diciembre"

// Rates holds the legal percentages the engine applies.
type Rates struct {
	IVA   decimal.Decimal // percent of rent
	IT    decimal.Decimal // percent of rent
	RCIVA decimal.Decimal // percent of the quarter base

	// IVACompensationCap is the share of the rent that invoices may offset.
	IVACompensationCap decimal.Decimal
	// RCIVACompensationCap is the share of determined RC-IVA that invoices may offset.
	RCIVACompensationCap decimal.Decimal
}

// DefaultRates returns the rates in force: IVA 13%, IT 3%, RC-IVA 12.5%.
func DefaultRates() Rates {
	return Rates{
		IVA:                  decimal.NewFromInt(13),
		IT:                   decimal.NewFromInt(3),
		RCIVA:                decimal.RequireFromString("12.5"),
		IVACompensationCap:   decimal.NewFromInt(30),
		RCIVACompensationCap: decimal.NewFromInt(100),
	}
}

// Input is one month of rent to tax.
type Input struct {
	Rent          decimal.Decimal
	Month         int
	Year          int
	InvoicesIVA   decimal.Decimal
	InvoicesRCIVA decimal.Decimal
	// AccruedQuarter overrides the RC-IVA base. Nil or zero means rent x 3.
	AccruedQuarter *decimal.Decimal
}

// Validate rejects inputs the engine cannot tax.
func (in Input) Validate() error {
	v := validation.Violations{}
	validation.RangeInt("mes", in.Month, 1, 12, v)
	if in.Year < 1 {
		v["anio"] = "out_of_range"
	}
	validation.NotNegative("monto_alquiler", in.Rent, v)
	validation.NotNegative("facturas_iva", in.InvoicesIVA, v)
	validation.NotNegative("facturas_rc_iva", in.InvoicesRCIVA, v)
	if in.AccruedQuarter != nil {
		validation.NotNegative("monto_acumulado_trimestre", *in.AccruedQuarter, v)
	}
	return v.Err("invalid tax input")
}

// IVAResult is the IVA block of a Result.
type IVAResult struct {
	Rate               decimal.Decimal `json:"alicuota"`
	MaxCompensationPct decimal.Decimal `json:"pct_max_compensacion"`
	Determined         decimal.Decimal `json:"determinado"`
	CompensationCap    decimal.Decimal `json:"limite_compensacion"`
	InvoicesPresented  decimal.Decimal `json:"facturas_presentadas"`
	InvoicesApplied    decimal.Decimal `json:"facturas_aplicadas"`
	Effective          decimal.Decimal `json:"efectivo"`
	Savings            decimal.Decimal `json:"ahorro"`
	Status             Status          `json:"estado"`
	Note               string          `json:"nota"`
}

// ITResult is the IT block of a Result. IT is never compensable.
type ITResult struct {
	Rate        decimal.Decimal `json:"alicuota"`
	Compensable bool            `json:"compensable"`
	Determined  decimal.Decimal `json:"determinado"`
	Effective   decimal.Decimal `json:"efectivo"`
	Savings     decimal.Decimal `json:"ahorro"`
	Status      Status          `json:"estado"`
	Note        string          `json:"nota"`
}

// RCIVAResult is the RC-IVA block of a Result.
type RCIVAResult struct {
	Rate               decimal.Decimal `json:"alicuota"`
	MaxCompensationPct decimal.Decimal `json:"pct_max_compensacion"`
	Applies            bool            `json:"aplica_este_mes"`
	ClosingMonths      string          `json:"meses_cierre"`
	QuarterBase        decimal.Decimal `json:"base_trimestral"`
	Determined         decimal.Decimal `json:"determinado"`
	InvoicesPresented  decimal.Decimal `json:"facturas_presentadas"`
	InvoicesApplied    decimal.Decimal `json:"facturas_aplicadas"`
	Effective          decimal.Decimal `json:"efectivo"`
	Savings            decimal.Decimal `json:"ahorro"`
	Status             Status          `json:"estado"`
	Note               string          `json:"nota"`
}

// Summary totals the three taxes.
type Summary struct {
	TotalDetermined      decimal.Decimal `json:"total_determinado"`
	TotalInvoicesApplied decimal.Decimal `json:"total_facturas_aplicadas"`
	TotalEffective       decimal.Decimal `json:"total_efectivo"`
	TotalSavings         decimal.Decimal `json:"total_ahorro_con_facturas"`
	NetToDistribute      decimal.Decimal `json:"monto_neto_distribuir"`
	Explanation          string          `json:"explicacion"`
}

// Result is the full tax breakdown of one month of rent.
type Result struct {
	Rent           decimal.Decimal `json:"monto_alquiler"`
	Period         string          `json:"periodo"`
	Month          int             `json:"mes"`
	Year           int             `json:"anio"`
	Quarter        int             `json:"trimestre"`
	IsQuarterMonth bool            `json:"es_mes_trimestral"`
	IVA            IVAResult       `json:"iva"`
	IT             ITResult        `json:"it"`
	RCIVA          RCIVAResult     `json:"rc_iva"`
	Summary        Summary         `json:"resumen"`
}

// Engine applies a fixed set of Rates.
type Engine struct {
	rates Rates
}

// NewEngine returns an engine using rates.
func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

// Rates returns the rates the engine was built with.
func (e *Engine) Rates() Rates { return e.rates }

// Quarter maps a month to its quarter (1-4).
func Quarter(month int) int {
	switch {
	case month <= 3:
		return 1
	case month <= 6:
		return 2
	case month <= 9:
		return 3
	default:
		return 4
	}
}

// IsQuarterClose reports whether RC-IVA is due in month.
func IsQuarterClose(month int) bool {
	return month == 3 || month == 6 || month == 9 || month == 12
}

// Period formats year and month as YYYY-MM.
func Period(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// ComputeDetermined runs Compute with no invoices, the conservative scenario.
func (e *Engine) ComputeDetermined(rent decimal.Decimal, month, year int) (Result, error) {
	return e.Compute(Input{Rent: rent, Month: month, Year: year})
}

// Compute returns the tax breakdown for in. Every amount is rounded to two
// decimals as soon as it is produced.
func (e *Engine) Compute(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	r := e.rates
	rent := money.Round(in.Rent)
	quarterMonth := IsQuarterClose(in.Month)

	iva := IVAResult{
		Rate:               r.IVA,
		MaxCompensationPct: r.IVACompensationCap,
		Determined:         money.Percent(rent, r.IVA),
		CompensationCap:    money.Percent(rent, r.IVACompensationCap),
		InvoicesPresented:  money.Round(in.InvoicesIVA),
	}
	iva.InvoicesApplied = money.Round(decimal.Min(in.InvoicesIVA, iva.CompensationCap))
	iva.Effective = money.Round(money.NonNegative(iva.Determined.Sub(iva.InvoicesApplied)))
	iva.Savings = money.Round(iva.Determined.Sub(iva.Effective))
	iva.Status = compensationStatus(iva.InvoicesApplied, iva.Effective)
	iva.Note = fmt.Sprintf("Alícuota %s%% | Compensable hasta %s%% del alquiler (Bs. %s)",
		r.IVA, r.IVACompensationCap, iva.CompensationCap.StringFixed(2))

	itDetermined := money.Percent(rent, r.IT)
	it := ITResult{
		Rate:       r.IT,
		Determined: itDetermined,
		Effective:  itDetermined,
		Savings:    decimal.Zero,
		Status:     StatusNotCompensable,
		Note: fmt.Sprintf("Alícuota %s%% | NO compensable. Siempre se paga Bs. %s",
			r.IT, itDetermined.StringFixed(2)),
	}

	rc := RCIVAResult{
		Rate:               r.RCIVA,
		MaxCompensationPct: r.RCIVACompensationCap,
		Applies:            quarterMonth,
		ClosingMonths:      ClosingMonths,
		Status:             StatusNotApplicable,
		Note:               "No aplica este mes (solo en Marzo, Junio, Sep, Dic)",
	}
	if quarterMonth {
		base := money.Round(rent.Mul(decimal.NewFromInt(3)))
		if in.AccruedQuarter != nil && !in.AccruedQuarter.IsZero() {
			base = money.Round(*in.AccruedQuarter)
		}
		rc.QuarterBase = base
		rc.Determined = money.Percent(base, r.RCIVA)
		rc.InvoicesPresented = money.Round(in.InvoicesRCIVA)
		rcCap := money.Percent(rc.Determined, r.RCIVACompensationCap)
		rc.InvoicesApplied = money.Round(decimal.Min(in.InvoicesRCIVA, rcCap))
		rc.Effective = money.Round(money.NonNegative(rc.Determined.Sub(rc.InvoicesApplied)))
		rc.Savings = money.Round(rc.Determined.Sub(rc.Effective))
		rc.Status = compensationStatus(rc.InvoicesApplied, rc.Effective)
		rc.Note = fmt.Sprintf("Alícuota %s%% sobre acumulado trimestral | Compensable al %s%%",
			r.RCIVA, r.RCIVACompensationCap)
	}

	sum := Summary{
		TotalDetermined:      money.Sum(iva.Determined, it.Determined, rc.Determined),
		TotalInvoicesApplied: money.Sum(iva.InvoicesApplied, rc.InvoicesApplied),
		TotalEffective:       money.Sum(iva.Effective, it.Effective, rc.Effective),
	}
	sum.TotalSavings = money.Round(sum.TotalDetermined.Sub(sum.TotalEffective))
	sum.NetToDistribute = money.Round(money.NonNegative(rent.Sub(sum.TotalEffective)))
	sum.Explanation = fmt.Sprintf(
		"De Bs. %s de alquiler: impuesto determinado Bs. %s, efectivamente pagas Bs. %s "+
			"(ahorraste Bs. %s con facturas), neto a distribuir: Bs. %s",
		rent.StringFixed(2), sum.TotalDetermined.StringFixed(2), sum.TotalEffective.StringFixed(2),
		sum.TotalSavings.StringFixed(2), sum.NetToDistribute.StringFixed(2))

	return Result{
		Rent:           rent,
		Period:         Period(in.Year, in.Month),
		Month:          in.Month,
		Year:           in.Year,
		Quarter:        Quarter(in.Month),
		IsQuarterMonth: quarterMonth,
		IVA:            iva,
		IT:             it,
		RCIVA:          rc,
		Summary:        sum,
	}, nil
}

func compensationStatus(applied, effective decimal.Decimal) Status {
	switch {
	case applied.IsZero():
		return StatusNoCompensation
	case effective.IsZero():
		return StatusFullyCompensated
	default:
		return StatusPartiallyCompensated
	}
}
