package mora

import (
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func unpaid(expected, paid string, due time.Time) *models.Payment {
	return &models.Payment{
		ExpectedAmount: dec(expected),
		PaidAmount:     dec(paid),
		DueDate:        datatypes.Date(due),
		Status:         models.PaymentPending,
	}
}

func contract(rate string) *models.Contract {
	return &models.Contract{DailyLateFeeRate: dec(rate)}
}

func TestCompute_TenDaysLate(t *testing.T) {
	p := unpaid("1000", "0", day(2026, 1, 5))
	r := Compute(p, contract("0.5"), day(2026, 1, 15))

	assert.Equal(t, 10, r.DaysLate)
	assert.True(t, r.Fee.Equal(dec("50")), "fee = %s", r.Fee)
	assert.True(t, r.Total.Equal(dec("50")), "total = %s", r.Total)
	assert.True(t, r.Outstanding.Equal(dec("1000")), "outstanding = %s", r.Outstanding)
}

func TestCompute_OnDueDate(t *testing.T) {
	p := unpaid("1000", "0", day(2026, 1, 5))
	r := Compute(p, contract("0.5"), day(2026, 1, 5))
	assert.Equal(t, 0, r.DaysLate)
	assert.True(t, r.Fee.IsZero())
}

func TestCompute_BeforeDueDate(t *testing.T) {
	p := unpaid("1000", "200", day(2026, 1, 5))
	r := Compute(p, contract("0.5"), day(2025, 12, 28))
	assert.Equal(t, 0, r.DaysLate)
	assert.True(t, r.Fee.IsZero())
	assert.True(t, r.Total.Equal(dec("200")))
	assert.Equal(t, models.PaymentPartial, NextStatus(p, r))
}

func TestCompute_PartialPaymentAccruesOnRemainder(t *testing.T) {
	p := unpaid("1500", "500", day(2026, 2, 5))
	r := Compute(p, contract("0.5"), day(2026, 2, 8))
	assert.Equal(t, 3, r.DaysLate)
	assert.True(t, r.Fee.Equal(dec("15")), "fee = %s", r.Fee)
	assert.True(t, r.Total.Equal(dec("515")), "total = %s", r.Total)
}

func TestCompute_PaidInFullKeepsRecordedFee(t *testing.T) {
	p := unpaid("1000", "1000", day(2026, 1, 5))
	p.Status = models.PaymentPaid
	p.LateFee = dec("12.5")
	r := Compute(p, contract("0.5"), day(2026, 3, 1))

	assert.Equal(t, 0, r.DaysLate)
	assert.True(t, r.Fee.Equal(dec("12.5")))
	assert.True(t, r.Total.Equal(dec("1000")))
	assert.True(t, r.Outstanding.IsZero())
}

func TestCompute_OverpaidNeverAccrues(t *testing.T) {
	for _, paid := range []string{"1000", "1000.01", "2000"} {
		p := unpaid("1000", paid, day(2026, 1, 5))
		r := Compute(p, contract("2"), day(2026, 6, 1))
		assert.True(t, r.Fee.IsZero(), "paid %s fee %s", paid, r.Fee)
		assert.Equal(t, models.PaymentPaid, NextStatus(p, r))
	}
}

func TestCompute_ZeroRate(t *testing.T) {
	p := unpaid("1000", "0", day(2026, 1, 5))
	r := Compute(p, contract("0"), day(2026, 2, 5))
	assert.Equal(t, 31, r.DaysLate)
	assert.True(t, r.Fee.IsZero())
}

func TestCompute_IgnoresClockTime(t *testing.T) {
	p := unpaid("1000", "0", day(2026, 1, 5))
	asOf := time.Date(2026, 1, 6, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, Compute(p, contract("0.5"), asOf).DaysLate)
}

func TestApply_Transitions(t *testing.T) {
	tests := []struct {
		name string
		paid string
		asOf time.Time
		want models.PaymentStatus
	}{
		{"late and unpaid", "0", day(2026, 1, 10), models.PaymentOverdue},
		{"late and partial", "300", day(2026, 1, 10), models.PaymentOverdue},
		{"on time partial", "300", day(2026, 1, 5), models.PaymentPartial},
		{"on time nothing paid", "0", day(2026, 1, 1), models.PaymentPending},
		{"settled", "1000", day(2026, 1, 10), models.PaymentPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := unpaid("1000", tt.paid, day(2026, 1, 5))
			Apply(p, Compute(p, contract("0.5"), tt.asOf))
			assert.Equal(t, tt.want, p.Status)
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	p := unpaid("800", "100", day(2026, 4, 5))
	c := contract("0.5")
	asOf := day(2026, 4, 20)

	Apply(p, Compute(p, c, asOf))
	first := *p
	Apply(p, Compute(p, c, asOf))

	assert.Equal(t, first.Status, p.Status)
	assert.Equal(t, first.DaysLate, p.DaysLate)
	assert.True(t, first.LateFee.Equal(p.LateFee))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day(2026, 3, 1), day(2026, 3, 1)))
	assert.Equal(t, 366, DaysBetween(day(2027, 12, 31), day(2028, 12, 31)))
	assert.Equal(t, -2, DaysBetween(day(2026, 3, 3), day(2026, 3, 1)))
}
