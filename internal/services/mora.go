package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/diewo77/go-rentals/internal/mora"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ContractMora totals the late fees still open on a contract.
type ContractMora struct {
	ContractID       uint            `json:"contract_id"`
	AsOf             string          `json:"as_of"`
	TotalFee         decimal.Decimal `json:"total_fee"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OpenPayments     int             `json:"count"`
	LatePayments     int             `json:"late_payments"`
}

// MoraService keeps the late fees of stored payments up to date.
type MoraService struct {
	db  *gorm.DB
	log *logrus.Logger
	now Clock
}

// NewMoraService returns a service using now for the default as-of date.
func NewMoraService(db *gorm.DB, log *logrus.Logger, now Clock) *MoraService {
	return &MoraService{db: db, log: newLogger(log), now: now}
}

func (s *MoraService) asOf(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return s.now()
}

func openPayments(tx *gorm.DB, contractID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := tx.Where("contract_id = ? AND status IN ?", contractID, models.OpenPaymentStatuses).
		Order("due_date").Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("load open payments: %w", err)
	}
	return payments, nil
}

// RefreshPayment recomputes and stores the late fee of one payment.
func (s *MoraService) RefreshPayment(ctx context.Context, paymentID uint, asOf *time.Time) (mora.Result, error) {
	when := s.asOf(asOf)
	var res mora.Result
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var p models.Payment
		if err := findByID(tx.Clauses(forUpdate), &p, paymentID, "payment"); err != nil {
			return err
		}
		var c models.Contract
		if err := findByID(tx, &c, p.ContractID, "contract"); err != nil {
			return err
		}
		res = mora.Compute(&p, &c, when)
		mora.Apply(&p, res)
		return tx.Save(&p).Error
	})
	return res, err
}

// RefreshContract recomputes every open payment of a contract and returns how
// many were updated.
func (s *MoraService) RefreshContract(ctx context.Context, contractID uint, asOf *time.Time) (int, error) {
	when := s.asOf(asOf)
	var n int
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var c models.Contract
		if err := findByID(tx, &c, contractID, "contract"); err != nil {
			return err
		}
		var err error
		n, err = refreshOpen(tx, &c, when)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"contract_id": contractID, "updated": n}).Info("mora refreshed")
	return n, nil
}

func refreshOpen(tx *gorm.DB, c *models.Contract, when time.Time) (int, error) {
	payments, err := openPayments(tx.Clauses(forUpdate), c.ID)
	if err != nil {
		return 0, err
	}
	for i := range payments {
		p := &payments[i]
		mora.Apply(p, mora.Compute(p, c, when))
		if err := tx.Save(p).Error; err != nil {
			return 0, fmt.Errorf("save payment %d: %w", p.ID, err)
		}
	}
	return len(payments), nil
}

// RefreshActiveContracts recomputes the open payments of every active contract.
func (s *MoraService) RefreshActiveContracts(ctx context.Context, asOf *time.Time) (int, error) {
	when := s.asOf(asOf)
	var contracts []models.Contract
	if err := s.db.WithContext(ctx).Where("status = ?", models.ContractActive).Order("id").Find(&contracts).Error; err != nil {
		return 0, fmt.Errorf("load active contracts: %w", err)
	}
	total := 0
	for i := range contracts {
		c := &contracts[i]
		err := withTx(ctx, s.db, func(tx *gorm.DB) error {
			n, err := refreshOpen(tx, c, when)
			total += n
			return err
		})
		if err != nil {
			return total, err
		}
	}
	s.log.WithFields(logrus.Fields{"contracts": len(contracts), "updated": total}).Info("mora refreshed for active contracts")
	return total, nil
}

// ContractTotals sums the late fee and outstanding amount of a contract's open
// payments as of a date. Nothing is written.
func (s *MoraService) ContractTotals(ctx context.Context, contractID uint, asOf *time.Time) (*ContractMora, error) {
	when := s.asOf(asOf)
	conn := s.db.WithContext(ctx)
	var c models.Contract
	if err := findByID(conn, &c, contractID, "contract"); err != nil {
		return nil, err
	}
	payments, err := openPayments(conn, contractID)
	if err != nil {
		return nil, err
	}
	out := &ContractMora{ContractID: contractID, AsOf: when.Format("2006-01-02")}
	fee, outstanding := decimal.Zero, decimal.Zero
	for i := range payments {
		r := mora.Compute(&payments[i], &c, when)
		fee = fee.Add(r.Fee)
		outstanding = outstanding.Add(r.Outstanding)
		if r.DaysLate > 0 {
			out.LatePayments++
		}
	}
	out.TotalFee = money.Round(fee)
	out.TotalOutstanding = money.Round(outstanding)
	out.OpenPayments = len(payments)
	return out, nil
}
