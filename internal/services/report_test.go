package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLateFee(t *testing.T, p *models.Payment, fee string, days int) {
	t.Helper()
	p.LateFee = dec(fee)
	p.DaysLate = days
}

func TestReports(t *testing.T) {
	conn := setupTestDB(t)
	a := seedContract(t, conn, "1000")
	b := seedContract(t, conn, "2000")

	seedPayment(t, conn, &a.Contract, 2026, 1, "1000", "1000", models.PaymentPaid)
	seedPayment(t, conn, &a.Contract, 2026, 2, "1000", "400", models.PaymentPartial)
	late := seedPayment(t, conn, &b.Contract, 2026, 1, "2000", "0", models.PaymentOverdue)
	seedLateFee(t, late, "300", 30)
	require.NoError(t, conn.Save(late).Error)
	seedPayment(t, conn, &b.Contract, 2026, 2, "2000", "0", models.PaymentPending)
	seedPayment(t, conn, &b.Contract, 2025, 12, "2000", "2000", models.PaymentPaid)

	svc := NewReportService(conn, nullLogger(), fixedClock(day(2026, 2, 15)))
	ctx := context.Background()

	t.Run("dashboard", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 2026, d.Year)
		assert.EqualValues(t, 2, d.Summary.Properties)
		assert.EqualValues(t, 2, d.Summary.ActiveContracts)
		assert.EqualValues(t, 2, d.Summary.PendingPayments)
		assertAmount(t, "1400", d.Summary.Income)
		assertAmount(t, "300", d.Summary.AccruedMora)
		assert.Len(t, d.MonthlyIncome, 12)
		assertAmount(t, "1000", d.MonthlyIncome[1])
		assertAmount(t, "400", d.MonthlyIncome[2])
		assert.True(t, d.MonthlyIncome[7].IsZero())
	})

	t.Run("delinquency", func(t *testing.T) {
		rep, err := svc.Delinquency(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, rep.Contracts)
		item := rep.Items[0]
		assert.Equal(t, b.Contract.ID, item.ContractID)
		assert.Equal(t, "Ana Quispe", item.Tenant)
		assertAmount(t, "300", item.TotalMora)
		assertAmount(t, "2000", item.Outstanding)
		assertAmount(t, "300", rep.TotalMora)
	})

	t.Run("performance", func(t *testing.T) {
		perf, err := svc.PropertyPerformance(ctx, 2026)
		require.NoError(t, err)
		require.Len(t, perf.Properties, 2)
		first := perf.Properties[0]
		assert.Equal(t, a.Property.ID, first.PropertyID)
		assertAmount(t, "1400", first.Income)
		assert.Equal(t, 2, first.OccupiedMonths)
		second := perf.Properties[1]
		assert.True(t, second.Income.IsZero())
		assertAmount(t, "300", second.PendingMora)
		assert.Equal(t, 2, second.OccupiedMonths)
	})
}
