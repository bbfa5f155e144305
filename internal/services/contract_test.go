package services

import (
	"context"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPropertyAndTenant(t *testing.T, conn *gorm.DB) (models.Property, models.Tenant) {
	t.Helper()
	p := models.Property{Address: "Av. 6 de Agosto 2200", Type: models.PropertySole, BaseRent: dec("2800"), Status: models.PropertyAvailable}
	require.NoError(t, conn.Create(&p).Error)
	tn := models.Tenant{FullName: "Carlos Mamani", NationalID: "4455667", Phone: "71234567"}
	require.NoError(t, conn.Create(&tn).Error)
	return p, tn
}

func TestContractCreate(t *testing.T) {
	conn := setupTestDB(t)
	prop, tn := seedPropertyAndTenant(t, conn)
	svc := NewContractService(conn, nullLogger(), dec("0.3"))
	ctx := context.Background()

	in := CreateContractInput{
		PropertyID: prop.ID, TenantID: tn.ID, Number: "CT-2026-001",
		StartDate: day(2026, 1, 1), EndDate: day(2026, 12, 31),
		MonthlyRent: dec("2800"), Deposit: dec("2800"),
	}
	c, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 5, c.PaymentDay)
	assertAmount(t, "0.3", c.DailyLateFeeRate)
	assert.Equal(t, models.ContractActive, c.Status)

	var stored models.Property
	require.NoError(t, conn.First(&stored, prop.ID).Error)
	assert.Equal(t, models.PropertyRented, stored.Status)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Tenant)
	assert.Equal(t, "Carlos Mamani", got.Tenant.FullName)

	_, err = svc.Create(ctx, in)
	assert.True(t, apperr.IsConflict(err))

	list, err := svc.List(ctx, ContractFilter{TenantID: tn.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestContractCreate_Validation(t *testing.T) {
	conn := setupTestDB(t)
	prop, tn := seedPropertyAndTenant(t, conn)
	svc := NewContractService(conn, nullLogger(), dec("0.5"))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateContractInput{
		PropertyID: prop.ID, TenantID: tn.ID,
		StartDate: day(2026, 6, 1), EndDate: day(2026, 1, 1),
		MonthlyRent: dec("0"), PaymentDay: 30,
	})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	for _, f := range []string{"number", "end_date", "monthly_rent", "payment_day"} {
		assert.Contains(t, ae.Fields, f)
	}

	_, err = svc.Create(ctx, CreateContractInput{
		PropertyID: prop.ID, TenantID: 999, Number: "X",
		StartDate: day(2026, 1, 1), EndDate: day(2026, 12, 31), MonthlyRent: dec("100"),
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestContractFinishAndRescind(t *testing.T) {
	conn := setupTestDB(t)
	a := seedContract(t, conn, "1000")
	b := seedContract(t, conn, "1500")
	svc := NewContractService(conn, nullLogger(), dec("0.5"))
	ctx := context.Background()

	done, err := svc.Finish(ctx, a.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractFinished, done.Status)
	var prop models.Property
	require.NoError(t, conn.First(&prop, a.Property.ID).Error)
	assert.Equal(t, models.PropertyAvailable, prop.Status)

	_, err = svc.Finish(ctx, a.Contract.ID)
	assert.ErrorIs(t, err, ErrContractClosed)

	rescinded, err := svc.Rescind(ctx, b.Contract.ID, "impago reiterado")
	require.NoError(t, err)
	assert.Equal(t, models.ContractTerminated, rescinded.Status)
	assert.True(t, strings.HasSuffix(rescinded.Notes, "impago reiterado"))
}

func TestRentFor(t *testing.T) {
	c := &models.Contract{StartDate: Date(day(2025, 3, 1)), MonthlyRent: dec("1000"), AnnualIncrease: dec("10")}
	assertAmount(t, "1000", RentFor(c, 2025, 3))
	assertAmount(t, "1000", RentFor(c, 2026, 2))
	assertAmount(t, "1100", RentFor(c, 2026, 3))
	assertAmount(t, "1210", RentFor(c, 2027, 3))

	flat := &models.Contract{StartDate: Date(day(2025, 3, 1)), MonthlyRent: dec("1000")}
	assertAmount(t, "1000", RentFor(flat, 2028, 1))
}

func TestGenerateSchedule(t *testing.T) {
	conn := setupTestDB(t)
	f := seedContract(t, conn, "1000")
	seedPayment(t, conn, &f.Contract, 2026, 1, "1000", "1000", models.PaymentPaid)
	svc := NewContractService(conn, nullLogger(), dec("0.5"))
	ctx := context.Background()

	res, err := svc.GenerateSchedule(ctx, f.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "2026-02", res.Payments[0].Period)
	assert.Equal(t, Date(day(2026, 2, 5)), res.Payments[0].DueDate)
	assert.Equal(t, "2026-12", res.Payments[10].Period)

	again, err := svc.GenerateSchedule(ctx, f.Contract.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Equal(t, 12, again.Skipped)
}
