package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_SumsExactly(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		shares []string
		want   []string
	}{
		{"halves", "3000", []string{"50", "50"}, []string{"1500", "1500"}},
		{"thirds", "1000", []string{"33.3333", "33.3333", "33.3334"}, []string{"333.33", "333.33", "333.34"}},
		{"uneven", "2820", []string{"60", "25", "15"}, []string{"1692", "705", "423"}},
		{"single", "999.99", []string{"100"}, []string{"999.99"}},
		{"rounding", "100.01", []string{"50", "50"}, []string{"50.01", "50.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owners := make([]models.CoOwner, len(tt.shares))
			for i, s := range tt.shares {
				owners[i] = models.CoOwner{Percentage: dec(s)}
			}
			parts := Split(dec(tt.total), owners)
			require.Len(t, parts, len(tt.want))
			sum := decimal.Zero
			for i, p := range parts {
				assertAmount(t, tt.want[i], p, "part", i)
				sum = sum.Add(p)
			}
			assert.True(t, sum.Equal(dec(tt.total)), "sum %s", sum)
		})
	}
}

func TestDistribute_SharedProperty(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "3000", "50", "30", "20")
	p := seedPayment(t, conn, &f.Contract, 2026, 2, "3000", "3000", models.PaymentPaid)
	svc := NewDistributionService(conn, nullLogger(), fixedClock(day(2026, 2, 10)))

	res, err := svc.Distribute(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, DistributionShared, res.Type)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, "2026-02", res.Period)
	assertAmount(t, "3000", res.TotalAmount)
	require.Len(t, res.Distributions, 3)
	assertAmount(t, "1500", res.Distributions[0].Amount)
	assertAmount(t, "900", res.Distributions[1].Amount)
	assertAmount(t, "600", res.Distributions[2].Amount)
	assert.Equal(t, f.Owners[0].ID, res.Distributions[0].CoOwnerID)
	assert.Equal(t, "100-1", res.Distributions[0].BankAccount)

	rows, err := svc.ListByPayment(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, models.DistributionPending, r.Status)
		require.NotNil(t, r.CoOwner)
	}
}

func TestDistribute_Twice(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000", "50", "50")
	p := seedPayment(t, conn, &f.Contract, 2026, 3, "1000", "1000", models.PaymentPaid)
	svc := NewDistributionService(conn, nullLogger(), fixedClock(day(2026, 3, 10)))

	_, err := svc.Distribute(context.Background(), p.ID)
	require.NoError(t, err)
	_, err = svc.Distribute(context.Background(), p.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyDistributed))
	assert.True(t, apperr.IsConflict(err))

	var count int64
	conn.Model(&models.Distribution{}).Where("payment_id = ?", p.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestDistribute_UniqueIndexRejectsDuplicateRow(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000", "100")
	p := seedPayment(t, conn, &f.Contract, 2026, 3, "1000", "1000", models.PaymentPaid)
	row := models.Distribution{PaymentID: p.ID, CoOwnerID: f.Owners[0].ID, Amount: dec("1000"), Percentage: dec("100"), DistributedOn: Date(day(2026, 3, 10))}
	require.NoError(t, conn.Create(&row).Error)
	dup := row
	dup.ID = 0
	assert.Error(t, conn.Create(&dup).Error)
}

func TestDistribute_SoleProperty(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "2000")
	p := seedPayment(t, conn, &f.Contract, 2026, 4, "2000", "2000", models.PaymentPaid)
	svc := NewDistributionService(conn, nullLogger(), fixedClock(day(2026, 4, 10)))

	res, err := svc.Distribute(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, DistributionNone, res.Type)
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.Distributions)
	assertAmount(t, "2000", res.TotalAmount)
}

func TestDistribute_PercentageMismatch(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000", "50", "40")
	p := seedPayment(t, conn, &f.Contract, 2026, 5, "1000", "1000", models.PaymentPaid)
	svc := NewDistributionService(conn, nullLogger(), fixedClock(day(2026, 5, 10)))

	_, err := svc.Distribute(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrPercentageMismatch)

	ok, err := svc.ValidatePercentages(context.Background(), f.Property.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDistribute_NoCoOwners(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000", "100")
	require.NoError(t, conn.Delete(&f.Owners[0]).Error)
	p := seedPayment(t, conn, &f.Contract, 2026, 5, "1000", "1000", models.PaymentPaid)
	svc := NewDistributionService(conn, nullLogger(), fixedClock(day(2026, 5, 10)))

	_, err := svc.Distribute(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNoCoOwners)
}

func TestDistribute_UnknownPayment(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewDistributionService(conn, nullLogger(), fixedClock(day(2026, 5, 10)))
	_, err := svc.Distribute(context.Background(), 999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestMarkPaidAndCoOwnerReport(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000", "60", "40")
	svc := NewDistributionService(conn, nullLogger(), fixedClock(day(2026, 3, 20)))
	ctx := context.Background()

	jan := seedPayment(t, conn, &f.Contract, 2026, 1, "1000", "1000", models.PaymentPaid)
	feb := seedPayment(t, conn, &f.Contract, 2026, 2, "1000", "1000", models.PaymentPaid)
	r1, err := svc.Distribute(ctx, jan.ID)
	require.NoError(t, err)
	_, err = svc.Distribute(ctx, feb.ID)
	require.NoError(t, err)

	d, err := svc.MarkPaid(ctx, r1.Distributions[0].DistributionID, "TRX-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.DistributionPaid, d.Status)
	assert.Equal(t, "TRX-1", d.TransferReference)
	require.NotNil(t, d.PaidOn)

	rep, err := svc.CoOwnerReport(ctx, f.Owners[0].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2026, rep.Year)
	assert.Equal(t, 2, rep.Count)
	assertAmount(t, "600", rep.TotalReceived)
	assertAmount(t, "600", rep.TotalPending)
	assertAmount(t, "1200", rep.TotalYear)
	assert.Equal(t, []int{1, 2}, rep.Months())
	assert.Equal(t, []models.DistributionStatus{models.DistributionPaid}, rep.Monthly[1].Statuses)
	assert.Equal(t, f.Property.Address, rep.Property.Address)

	empty, err := svc.CoOwnerReport(ctx, f.Owners[0].ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)

	_, err = svc.MarkPaid(ctx, 12345, "x", nil)
	assert.True(t, apperr.IsNotFound(err))
}
