package export

import (
	"bytes"
	"testing"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

func TestAnnualTaxes(t *testing.T) {
	sum := &services.AnnualSummary{
		ContractID: 7,
		Year:       2026,
		Months:     1,
		Records: []models.TaxRecord{{
			Period: "2026-02", Rent: dec("3000"),
			IVADetermined: dec("390"), IVAInvoicesApplied: dec("300"), IVAEffective: dec("90"),
			ITDetermined: dec("90"), ITEffective: dec("90"),
			TotalDetermined: dec("480"), TotalEffective: dec("180"), TotalSavings: dec("300"), NetToDistribute: dec("2820"),
		}},
		Totals: &services.AnnualTotals{},
	}
	sum.Totals.IVA = services.TaxTotals{Determined: dec("390"), Effective: dec("90"), Savings: dec("300")}
	sum.Totals.Total.NetToDistribute = dec("2820")

	b, err := AnnualTaxes(sum)
	require.NoError(t, err)
	f := open(t, b)
	assert.Equal(t, []string{TaxSheet}, f.GetSheetList())
	assert.Equal(t, "Contrato 7 - gestión 2026", cell(t, f, TaxSheet, "A1"))
	assert.Equal(t, "Periodo", cell(t, f, TaxSheet, "A2"))
	assert.Equal(t, "Neto a distribuir", cell(t, f, TaxSheet, "M2"))
	assert.Equal(t, "2026-02", cell(t, f, TaxSheet, "A3"))
	assert.Equal(t, "390", cell(t, f, TaxSheet, "C3"))
	assert.Equal(t, "2820", cell(t, f, TaxSheet, "M3"))
	assert.Equal(t, "Total", cell(t, f, TaxSheet, "A4"))
	assert.Equal(t, "3000", cell(t, f, TaxSheet, "B4"))
	assert.Equal(t, "2820", cell(t, f, TaxSheet, "M4"))
}

func TestAnnualTaxes_Empty(t *testing.T) {
	b, err := AnnualTaxes(&services.AnnualSummary{ContractID: 1, Year: 2025, Message: "Sin registros de impuestos para este año"})
	require.NoError(t, err)
	f := open(t, b)
	assert.Equal(t, "Sin registros de impuestos para este año", cell(t, f, TaxSheet, "A3"))
}

func TestCoOwnerYear(t *testing.T) {
	rep := &services.CoOwnerReport{
		Year:          2026,
		TotalReceived: dec("600"),
		TotalPending:  dec("600"),
		TotalYear:     dec("1200"),
		Monthly: map[int]*services.MonthlyShare{
			2: {Amount: dec("600"), Statuses: []models.DistributionStatus{models.DistributionPending}},
			1: {Amount: dec("600"), Statuses: []models.DistributionStatus{models.DistributionPaid}},
		},
	}
	rep.CoOwner.Name = "Luis"
	rep.CoOwner.Percentage = dec("60")
	rep.Property.Address = "Calle Jaén 12"

	b, err := CoOwnerYear(rep)
	require.NoError(t, err)
	f := open(t, b)
	assert.Equal(t, "Luis", cell(t, f, CoOwnerSheet, "B1"))
	assert.Equal(t, "60", cell(t, f, CoOwnerSheet, "B3"))
	assert.Equal(t, "Mes", cell(t, f, CoOwnerSheet, "A6"))
	assert.Equal(t, "1", cell(t, f, CoOwnerSheet, "A7"))
	assert.Equal(t, string(models.DistributionPaid), cell(t, f, CoOwnerSheet, "C7"))
	assert.Equal(t, "2", cell(t, f, CoOwnerSheet, "A8"))
	assert.Equal(t, "Total", cell(t, f, CoOwnerSheet, "A11"))
	assert.Equal(t, "1200", cell(t, f, CoOwnerSheet, "B11"))
}
