// Package mora computes late fees (mora) on unpaid rent.
//
// The fee is simple daily interest on the outstanding amount: the contract's
// daily rate applied once per day past the due date. Nothing compounds.
package mora

import (
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/shopspring/decimal"
)

// Result is the late-fee state of a payment at a given date.
type Result struct {
	DaysLate    int             `json:"days_late"`
	Fee         decimal.Decimal `json:"fee"`
	Total       decimal.Decimal `json:"total"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// DaysBetween counts whole civil days from from to to, ignoring clock time.
// It is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Compute returns the late fee owed on p under c as of asOf.
// A payment settled in full keeps the fee it already carries.
func Compute(p *models.Payment, c *models.Contract, asOf time.Time) Result {
	if p.IsSettled() {
		return Result{
			DaysLate:    0,
			Fee:         p.LateFee,
			Total:       p.PaidAmount,
			Outstanding: decimal.Zero,
		}
	}

	days := DaysBetween(time.Time(p.DueDate), asOf)
	if days < 0 {
		days = 0
	}
	outstanding := money.Round(p.Outstanding())

	fee := decimal.Zero
	if days > 0 && outstanding.IsPositive() {
		daily := c.DailyLateFeeRate.Div(money.Hundred())
		fee = money.Round(outstanding.Mul(daily).Mul(decimal.NewFromInt(int64(days))))
	}

	return Result{
		DaysLate:    days,
		Fee:         fee,
		Total:       money.Round(p.PaidAmount.Add(fee)),
		Outstanding: outstanding,
	}
}

// NextStatus derives the payment status implied by r.
func NextStatus(p *models.Payment, r Result) models.PaymentStatus {
	switch {
	case r.Outstanding.IsZero():
		return models.PaymentPaid
	case r.DaysLate > 0:
		return models.PaymentOverdue
	case p.PaidAmount.IsPositive():
		return models.PaymentPartial
	default:
		return p.Status
	}
}

// Apply stores r on p and moves p to the status it implies.
func Apply(p *models.Payment, r Result) {
	p.DaysLate = r.DaysLate
	p.LateFee = r.Fee
	p.Status = NextStatus(p, r)
}
