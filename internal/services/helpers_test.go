package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(false))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func nullLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, got.Equal(dec(want)), "got %s, want %s %v", got.StringFixed(2), want, msgAndArgs)
}

type fixture struct {
	Property models.Property
	Tenant   models.Tenant
	Contract models.Contract
	Owners   []models.CoOwner
}

// seedContract creates a property with the given co-owner percentages (none
// for a sole-ownership property), a tenant and an active contract.
func seedContract(t *testing.T, conn *gorm.DB, rent string, shares ...string) *fixture {
	t.Helper()
	f := &fixture{}
	f.Property = models.Property{Address: "Calle Jaén 12", City: "La Paz", Type: models.PropertySole, BaseRent: dec(rent), Status: models.PropertyRented}
	if len(shares) > 0 {
		f.Property.Type = models.PropertyShared
	}
	require.NoError(t, conn.Create(&f.Property).Error)
	for i, pct := range shares {
		o := models.CoOwner{
			PropertyID:  f.Property.ID,
			Name:        fmt.Sprintf("Owner %d", i+1),
			Percentage:  dec(pct),
			BankAccount: fmt.Sprintf("100-%d", i+1),
			Bank:        "BNB",
		}
		require.NoError(t, conn.Create(&o).Error)
		f.Owners = append(f.Owners, o)
	}
	f.Tenant = models.Tenant{FullName: "Ana Quispe", NationalID: fmt.Sprintf("CI-%d", f.Property.ID), Phone: "70000000", Email: "ana@example.com", Status: models.TenantActive}
	require.NoError(t, conn.Create(&f.Tenant).Error)
	f.Contract = models.Contract{
		PropertyID:       f.Property.ID,
		TenantID:         f.Tenant.ID,
		Number:           fmt.Sprintf("CT-%d", f.Property.ID),
		StartDate:        Date(day(2026, 1, 1)),
		EndDate:          Date(day(2026, 12, 31)),
		MonthlyRent:      dec(rent),
		PaymentDay:       5,
		DailyLateFeeRate: dec("0.5"),
		Status:           models.ContractActive,
	}
	require.NoError(t, conn.Create(&f.Contract).Error)
	return f
}

// seedPayment creates a payment for the contract in period with the given amounts.
func seedPayment(t *testing.T, conn *gorm.DB, c *models.Contract, year, month int, expected, paid string, status models.PaymentStatus) *models.Payment {
	t.Helper()
	p := &models.Payment{
		ContractID:     c.ID,
		Period:         fmt.Sprintf("%d-%02d", year, month),
		Year:           year,
		Month:          month,
		DueDate:        Date(DueDate(year, month, c.PaymentDay)),
		ExpectedAmount: dec(expected),
		PaidAmount:     dec(paid),
		LateFee:        decimal.Zero,
		Status:         status,
	}
	require.NoError(t, conn.Create(p).Error)
	return p
}
