package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshPayment(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000")
	p := seedPayment(t, conn, &f.Contract, 2026, 1, "1000", "0", models.PaymentPending)
	svc := NewMoraService(conn, nullLogger(), fixedClock(day(2026, 1, 15)))

	res, err := svc.RefreshPayment(context.Background(), p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.DaysLate)
	assertAmount(t, "50", res.Fee)
	assertAmount(t, "50", res.Total)
	assertAmount(t, "1000", res.Outstanding)

	var stored models.Payment
	require.NoError(t, conn.First(&stored, p.ID).Error)
	assert.Equal(t, models.PaymentOverdue, stored.Status)
	assert.Equal(t, 10, stored.DaysLate)
	assertAmount(t, "50", stored.LateFee)

	again, err := svc.RefreshPayment(context.Background(), p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, res.DaysLate, again.DaysLate)
	assert.True(t, res.Fee.Equal(again.Fee))
}

func TestRefreshPayment_OnDueDate(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000")
	p := seedPayment(t, conn, &f.Contract, 2026, 1, "1000", "0", models.PaymentPending)
	svc := NewMoraService(conn, nullLogger(), fixedClock(day(2026, 1, 1)))

	asOf := day(2026, 1, 5)
	res, err := svc.RefreshPayment(context.Background(), p.ID, &asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DaysLate)
	assert.True(t, res.Fee.IsZero())

	var stored models.Payment
	require.NoError(t, conn.First(&stored, p.ID).Error)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestRefreshContractAndTotals(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000")
	seedPayment(t, conn, &f.Contract, 2026, 1, "1000", "0", models.PaymentPending)
	seedPayment(t, conn, &f.Contract, 2026, 2, "1000", "400", models.PaymentPartial)
	seedPayment(t, conn, &f.Contract, 2026, 3, "1000", "0", models.PaymentPending)
	paid := seedPayment(t, conn, &f.Contract, 2025, 12, "1000", "1000", models.PaymentPaid)
	svc := NewMoraService(conn, nullLogger(), fixedClock(day(2026, 2, 15)))
	ctx := context.Background()

	totals, err := svc.ContractTotals(ctx, f.Contract.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.OpenPayments)
	assert.Equal(t, 2, totals.LatePayments)
	// January: 41 days on 1000 at 0.5% = 205. February: 10 days on 600 = 30.
	assertAmount(t, "235", totals.TotalFee)
	assertAmount(t, "2600", totals.TotalOutstanding)
	assert.Equal(t, "2026-02-15", totals.AsOf)

	n, err := svc.RefreshContract(ctx, f.Contract.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var payments []models.Payment
	require.NoError(t, conn.Where("contract_id = ?", f.Contract.ID).Order("period").Find(&payments).Error)
	require.Len(t, payments, 4)
	assert.Equal(t, paid.ID, payments[0].ID)
	assert.Equal(t, models.PaymentPaid, payments[0].Status)
	assert.Equal(t, models.PaymentOverdue, payments[1].Status)
	assertAmount(t, "205", payments[1].LateFee)
	assert.Equal(t, models.PaymentOverdue, payments[2].Status)
	assertAmount(t, "30", payments[2].LateFee)
	assert.Equal(t, models.PaymentPending, payments[3].Status)
}

func TestRefreshActiveContracts_SkipsClosed(t *testing.T) {
	conn := setupTestDB(t)
	open := seedContract(t, conn, "1000")
	seedPayment(t, conn, &open.Contract, 2026, 1, "1000", "0", models.PaymentPending)

	closed := seedContract(t, conn, "500")
	require.NoError(t, conn.Model(&closed.Contract).Update("status", models.ContractFinished).Error)
	untouched := seedPayment(t, conn, &closed.Contract, 2026, 1, "500", "0", models.PaymentPending)

	svc := NewMoraService(conn, nullLogger(), fixedClock(day(2026, 1, 20)))
	n, err := svc.RefreshActiveContracts(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var p models.Payment
	require.NoError(t, conn.First(&p, untouched.ID).Error)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.True(t, p.LateFee.IsZero())
}
