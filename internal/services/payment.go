package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/mora"
	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreatePaymentInput describes one month of rent to bill.
type CreatePaymentInput struct {
	ContractID uint
	Period     string // YYYY-MM
	// DueDate defaults to the contract payment day within Period.
	DueDate *time.Time
	// ExpectedAmount defaults to the contract monthly rent.
	ExpectedAmount *decimal.Decimal
	Note           string
}

// RegisterPaymentInput records money received from the tenant.
type RegisterPaymentInput struct {
	// PaidAmount is the total received so far for the period.
	PaidAmount decimal.Decimal
	PaidDate   *time.Time
	Method     models.PaymentMethod
	Receipt    string
	Note       string
}

// RegisterResult reports the payment after registration. A failed automatic
// distribution does not undo the registration; it is reported instead.
type RegisterResult struct {
	Payment           *models.Payment     `json:"payment"`
	Mora              mora.Result         `json:"mora"`
	Distribution      *DistributionResult `json:"distribution,omitempty"`
	DistributionError string              `json:"distribution_error,omitempty"`
}

// PaymentService manages the monthly payments of contracts.
type PaymentService struct {
	db          *gorm.DB
	log         *logrus.Logger
	now         Clock
	distributor *DistributionService
}

// NewPaymentService returns a service that hands settled payments to distributor.
func NewPaymentService(db *gorm.DB, log *logrus.Logger, now Clock, distributor *DistributionService) *PaymentService {
	return &PaymentService{db: db, log: newLogger(log), now: now, distributor: distributor}
}

// ParsePeriod splits a YYYY-MM period.
func ParsePeriod(period string) (year, month int, err error) {
	t, perr := time.Parse("2006-01", period)
	if perr != nil {
		return 0, 0, apperr.Validation(map[string]string{"period": "invalid_format"}, "period %q must be YYYY-MM", period)
	}
	return t.Year(), int(t.Month()), nil
}

// DueDate returns the due date of a period for a payment day, clamped to 28.
func DueDate(year, month, paymentDay int) time.Time {
	if paymentDay < 1 {
		paymentDay = 1
	}
	if paymentDay > 28 {
		paymentDay = 28
	}
	return time.Date(year, time.Month(month), paymentDay, 0, 0, 0, 0, time.UTC)
}

// Create bills one period of a contract.
func (s *PaymentService) Create(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	year, month, err := ParsePeriod(in.Period)
	if err != nil {
		return nil, err
	}
	var p models.Payment
	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		var c models.Contract
		if err := findByID(tx, &c, in.ContractID, "contract"); err != nil {
			return err
		}
		if !c.IsActive() {
			return apperr.Wrap(apperr.KindConflict, ErrContractClosed, "contract %s is %s", c.Number, c.Status)
		}
		due := DueDate(year, month, c.PaymentDay)
		if in.DueDate != nil {
			due = *in.DueDate
		}
		expected := c.MonthlyRent
		if in.ExpectedAmount != nil {
			expected = *in.ExpectedAmount
		}
		if expected.IsNegative() {
			return apperr.Validation(map[string]string{"expected_amount": "must_not_be_negative"}, "expected amount must not be negative")
		}
		p = models.Payment{
			ContractID:     c.ID,
			Period:         tax.Period(year, month),
			Year:           year,
			Month:          month,
			DueDate:        Date(due),
			ExpectedAmount: expected,
			PaidAmount:     decimal.Zero,
			LateFee:        decimal.Zero,
			Status:         models.PaymentPending,
			Note:           in.Note,
		}
		if err := tx.Create(&p).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("contract %s already has a payment for %s", c.Number, p.Period)
			}
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns a payment with its distributions.
func (s *PaymentService) Get(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := findByID(s.db.WithContext(ctx).Preload("Distributions"), &p, id, "payment"); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByContract returns the payments of a contract ordered by period.
func (s *PaymentService) ListByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	conn := s.db.WithContext(ctx)
	var c models.Contract
	if err := findByID(conn, &c, contractID, "contract"); err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := conn.Where("contract_id = ?", contractID).Order("period").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Register records the amount received for a payment, refreshes its late fee
// as of the payment date and, once the rent is settled, distributes it.
//
// The fee accrued up to the payment date is computed before the new amount is
// applied, so a late payment settled in full keeps the fee it owed.
func (s *PaymentService) Register(ctx context.Context, id uint, in RegisterPaymentInput) (*RegisterResult, error) {
	if in.PaidAmount.IsNegative() {
		return nil, apperr.Validation(map[string]string{"paid_amount": "must_not_be_negative"}, "paid amount must not be negative")
	}
	paidOn := s.now()
	if in.PaidDate != nil {
		paidOn = *in.PaidDate
	}

	res := &RegisterResult{}
	var p models.Payment
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := findByID(tx.Clauses(forUpdate), &p, id, "payment"); err != nil {
			return err
		}
		var c models.Contract
		if err := findByID(tx, &c, p.ContractID, "contract"); err != nil {
			return err
		}
		before := mora.Result{DaysLate: p.DaysLate}
		if !p.IsSettled() {
			before = mora.Compute(&p, &c, paidOn)
			mora.Apply(&p, before)
		}

		date := Date(paidOn)
		p.PaidAmount = in.PaidAmount
		p.PaidDate = &date
		if in.Method != "" {
			p.Method = in.Method
		}
		if in.Receipt != "" {
			p.Receipt = in.Receipt
		}
		if in.Note != "" {
			p.Note = in.Note
		}
		switch {
		case p.PaidAmount.GreaterThanOrEqual(p.ExpectedAmount):
			p.Status = models.PaymentPaid
		case p.PaidAmount.IsPositive():
			p.Status = models.PaymentPartial
		default:
			p.Status = models.PaymentPending
		}

		res.Mora = mora.Compute(&p, &c, paidOn)
		mora.Apply(&p, res.Mora)
		if p.IsSettled() {
			p.DaysLate = before.DaysLate
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	res.Payment = &p
	s.log.WithFields(logrus.Fields{
		"payment_id": p.ID, "paid": p.PaidAmount.String(), "status": p.Status,
	}).Info("payment registered")

	if p.Status == models.PaymentPaid && s.distributor != nil {
		dist, err := s.distributor.Distribute(ctx, p.ID)
		if err != nil {
			res.DistributionError = err.Error()
			s.log.WithError(err).WithField("payment_id", p.ID).Warn("automatic distribution failed")
		} else {
			res.Distribution = dist
		}
	}
	return res, nil
}

// Overdue returns the open payments past due as of asOf, with contract and tenant.
func (s *PaymentService) Overdue(ctx context.Context, asOf time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Preload("Contract.Tenant").
		Preload("Contract.Property").
		Where("status IN ? AND due_date < ?", models.OpenPaymentStatuses, Date(asOf)).
		Order("due_date").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue payments: %w", err)
	}
	return payments, nil
}
