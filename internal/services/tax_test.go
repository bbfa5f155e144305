package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTaxService(conn *gorm.DB) *TaxService {
	return NewTaxService(conn, nullLogger(), tax.NewEngine(tax.DefaultRates()))
}

func TestTaxRegister_StoresRecordAndSnapshot(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "3000")
	p := seedPayment(t, conn, &f.Contract, 2026, 2, "3000", "3000", models.PaymentPaid)
	svc := newTaxService(conn)

	declared := day(2026, 3, 10)
	res, err := svc.Register(context.Background(), RegisterTaxInput{PaymentID: p.ID, InvoicesIVA: dec("300"), Notes: "feb", DeclaredOn: &declared})
	require.NoError(t, err)
	rec := res.Record
	assert.Equal(t, "2026-02", rec.Period)
	assert.Equal(t, f.Contract.ID, rec.ContractID)
	assertAmount(t, "390", rec.IVADetermined)
	assertAmount(t, "90", rec.IVAEffective)
	assertAmount(t, "90", rec.ITDetermined)
	assertAmount(t, "480", rec.TotalDetermined)
	assertAmount(t, "180", rec.TotalEffective)
	assertAmount(t, "2820", rec.NetToDistribute)
	assert.Equal(t, string(tax.StatusPartiallyCompensated), rec.IVAStatus)
	require.NotNil(t, rec.DeclaredOn)

	var stored models.TaxRecord
	require.NoError(t, conn.First(&stored, rec.ID).Error)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(stored.Breakdown, &snap))
	assert.Equal(t, "2026-02", snap["periodo"])
	assert.Contains(t, snap, "resumen")

	_, err = svc.Register(context.Background(), RegisterTaxInput{PaymentID: p.ID})
	assert.True(t, apperr.IsConflict(err))
}

func TestTaxRegister_ConsumesInvoices(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "3000")
	p := seedPayment(t, conn, &f.Contract, 2026, 3, "3000", "3000", models.PaymentPaid)
	svc := newTaxService(conn)
	ctx := context.Background()

	mk := func(num string, amount string, typ models.InvoiceTaxType, period string) {
		_, err := svc.RegisterInvoice(ctx, CreateInvoiceInput{
			ContractID: f.Contract.ID, Number: num, IssuedOn: day(2026, 3, 1),
			Amount: dec(amount), TaxType: typ, Period: period,
		})
		require.NoError(t, err)
	}
	mk("F-1", "200", models.InvoiceForIVA, "2026-03")
	mk("F-2", "100", models.InvoiceForIVA, "2026-03")
	mk("F-3", "500", models.InvoiceForRCIVA, "2026-01")
	mk("F-4", "999", models.InvoiceForIVA, "2026-02")
	mk("F-5", "50", models.InvoiceForRCIVA, "2026-04")

	res, err := svc.Register(ctx, RegisterTaxInput{PaymentID: p.ID, UseInvoices: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.InvoicesUsed)
	assertAmount(t, "300", res.Record.IVAInvoices)
	assertAmount(t, "500", res.Record.RCIVAInvoices)
	assertAmount(t, "625", res.Record.RCIVAEffective)

	invoices, err := svc.ListInvoices(ctx, f.Contract.ID, 2026)
	require.NoError(t, err)
	require.Len(t, invoices, 5)
	used := map[string]bool{}
	for _, inv := range invoices {
		used[inv.Number] = inv.Used
		if inv.Used {
			require.NotNil(t, inv.TaxRecordID)
			assert.Equal(t, res.Record.ID, *inv.TaxRecordID)
		}
	}
	assert.Equal(t, map[string]bool{"F-1": true, "F-2": true, "F-3": true, "F-4": false, "F-5": false}, used)
}

func TestRegisterInvoice_Validation(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "3000")
	svc := newTaxService(conn)

	_, err := svc.RegisterInvoice(context.Background(), CreateInvoiceInput{ContractID: f.Contract.ID, Number: "F", Amount: dec("0"), TaxType: "isr", Period: "2026-01"})
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "amount")
	assert.Contains(t, ae.Fields, "tax_type")

	_, err = svc.RegisterInvoice(context.Background(), CreateInvoiceInput{ContractID: 777, Number: "F", Amount: dec("10"), TaxType: models.InvoiceForIVA, Period: "2026-01"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestAnnualSummary(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "3000")
	svc := newTaxService(conn)
	ctx := context.Background()

	for month := 1; month <= 3; month++ {
		p := seedPayment(t, conn, &f.Contract, 2026, month, "3000", "3000", models.PaymentPaid)
		_, err := svc.Register(ctx, RegisterTaxInput{PaymentID: p.ID})
		require.NoError(t, err)
	}

	sum, err := svc.AnnualSummary(ctx, f.Contract.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Months)
	require.NotNil(t, sum.Totals)
	assertAmount(t, "1170", sum.Totals.IVA.Determined)
	assertAmount(t, "270", sum.Totals.IT.Determined)
	assertAmount(t, "270", sum.Totals.IT.Effective)
	assert.True(t, sum.Totals.IT.Savings.IsZero())
	assertAmount(t, "1125", sum.Totals.RCIVA.Determined)
	assertAmount(t, "2565", sum.Totals.Total.Determined)
	assertAmount(t, "2565", sum.Totals.Total.Effective)
	assertAmount(t, "6435", sum.Totals.Total.NetToDistribute)
	assert.Equal(t, 1, sum.Records[0].Month)

	empty, err := svc.AnnualSummary(ctx, f.Contract.ID, 2025)
	require.NoError(t, err)
	assert.Nil(t, empty.Totals)
	assert.Empty(t, empty.Records)
	assert.NotEmpty(t, empty.Message)
}

func TestCalculatePreview(t *testing.T) {
	svc := newTaxService(nil)
	res, err := svc.Calculate(tax.Input{Rent: dec("3000"), Month: 2, Year: 2026, InvoicesIVA: dec("300")})
	require.NoError(t, err)
	assertAmount(t, "2820", res.Summary.NetToDistribute)

	det, err := svc.CalculateDetermined(dec("3000"), 2, 2026)
	require.NoError(t, err)
	assertAmount(t, "480", det.Summary.TotalEffective)
}
