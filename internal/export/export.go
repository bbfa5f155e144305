// Package export renders reports as Excel workbooks.
package export

import (
	"fmt"

	"github.com/diewo77/go-rentals/internal/services"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	TaxSheet     = "Impuestos"
	CoOwnerSheet = "Distribuciones"
)

var taxHeader = []any{
	"Periodo", "Alquiler", "IVA determinado", "IVA facturas", "IVA efectivo",
	"IT", "RC-IVA determinado", "RC-IVA facturas", "RC-IVA efectivo",
	"Total determinado", "Total efectivo", "Ahorro", "Neto a distribuir",
}

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }

type sheet struct {
	f    *excelize.File
	name string
	row  int
	bold int
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &sheet{f: f, name: name, bold: bold}, nil
}

// add writes values on the next row, in bold when header is set.
func (s *sheet) add(header bool, values ...any) error {
	s.row++
	start, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(s.name, start, &values); err != nil {
		return err
	}
	if !header || len(values) == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), s.row)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, start, end, s.bold)
}

// render builds a workbook with one sheet filled by fill.
func render(name string, fill func(*sheet) error) ([]byte, error) {
	s, err := newSheet(name)
	if err != nil {
		return nil, fmt.Errorf("new workbook: %w", err)
	}
	defer s.f.Close()
	if err := fill(s); err != nil {
		return nil, fmt.Errorf("fill %s: %w", name, err)
	}
	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// rows writes each line in order; header lines are bold.
func (s *sheet) rows(header bool, lines ...[]any) error {
	for _, l := range lines {
		if err := s.add(header, l...); err != nil {
			return err
		}
	}
	return nil
}

// AnnualTaxes writes one row per tax record of the summary and a totals row.
func AnnualTaxes(sum *services.AnnualSummary) ([]byte, error) {
	return render(TaxSheet, func(s *sheet) error {
		if err := s.add(false, fmt.Sprintf("Contrato %d - gestión %d", sum.ContractID, sum.Year)); err != nil {
			return err
		}
		if err := s.add(true, taxHeader...); err != nil {
			return err
		}
		for _, r := range sum.Records {
			err := s.add(false, r.Period, num(r.Rent),
				num(r.IVADetermined), num(r.IVAInvoicesApplied), num(r.IVAEffective),
				num(r.ITDetermined),
				num(r.RCIVADetermined), num(r.RCIVAInvoicesApplied), num(r.RCIVAEffective),
				num(r.TotalDetermined), num(r.TotalEffective), num(r.TotalSavings), num(r.NetToDistribute))
			if err != nil {
				return err
			}
		}
		t := sum.Totals
		if t == nil {
			return s.add(false, sum.Message)
		}
		return s.add(true, "Total", num(sumRent(sum)),
			num(t.IVA.Determined), num(t.IVA.Savings), num(t.IVA.Effective),
			num(t.IT.Determined),
			num(t.RCIVA.Determined), num(t.RCIVA.Savings), num(t.RCIVA.Effective),
			num(t.Total.Determined), num(t.Total.Effective), num(t.Total.Savings), num(t.Total.NetToDistribute))
	})
}

func sumRent(sum *services.AnnualSummary) decimal.Decimal {
	total := decimal.Zero
	for _, r := range sum.Records {
		total = total.Add(r.Rent)
	}
	return total
}

// CoOwnerYear writes the monthly amounts of a co-owner report. The status
// column shows the latest distribution state of the month.
func CoOwnerYear(rep *services.CoOwnerReport) ([]byte, error) {
	return render(CoOwnerSheet, func(s *sheet) error {
		err := s.rows(false,
			[]any{"Copropietario", rep.CoOwner.Name},
			[]any{"Inmueble", rep.Property.Address},
			[]any{"Porcentaje", num(rep.CoOwner.Percentage)},
			[]any{"Cuenta", fmt.Sprintf("%s %s", rep.CoOwner.Bank, rep.CoOwner.BankAccount)},
			[]any{"Gestión", rep.Year},
		)
		if err != nil {
			return err
		}
		if err := s.add(true, "Mes", "Monto", "Estado"); err != nil {
			return err
		}
		for _, m := range rep.Months() {
			share := rep.Monthly[m]
			status := ""
			if n := len(share.Statuses); n > 0 {
				status = string(share.Statuses[n-1])
			}
			if err := s.add(false, m, num(share.Amount), status); err != nil {
				return err
			}
		}
		return s.rows(true,
			[]any{"Recibido", num(rep.TotalReceived)},
			[]any{"Pendiente", num(rep.TotalPending)},
			[]any{"Total", num(rep.TotalYear)},
		)
	})
}
