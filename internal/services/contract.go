package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateContractInput opens a lease.
type CreateContractInput struct {
	PropertyID     uint
	TenantID       uint
	Number         string
	StartDate      time.Time
	EndDate        time.Time
	MonthlyRent    decimal.Decimal
	Deposit        decimal.Decimal
	AnnualIncrease decimal.Decimal
	PaymentDay     int
	// DailyLateFeeRate defaults to the configured rate.
	DailyLateFeeRate *decimal.Decimal
	Notes            string
}

// ContractFilter narrows List.
type ContractFilter struct {
	Status     models.ContractStatus
	PropertyID uint
	TenantID   uint
}

// ScheduleResult reports the payments created for a contract.
type ScheduleResult struct {
	ContractID uint             `json:"contract_id"`
	Created    int              `json:"created"`
	Skipped    int              `json:"skipped"`
	Payments   []models.Payment `json:"payments"`
}

// ContractService manages the lifecycle of leases.
type ContractService struct {
	db          *gorm.DB
	log         *logrus.Logger
	defaultRate decimal.Decimal
}

// NewContractService returns a service applying defaultRate to contracts
// created without a daily late-fee rate.
func NewContractService(db *gorm.DB, log *logrus.Logger, defaultRate decimal.Decimal) *ContractService {
	return &ContractService{db: db, log: newLogger(log), defaultRate: defaultRate}
}

func (in CreateContractInput) validate() error {
	v := map[string]string{}
	if in.Number == "" {
		v["number"] = "required"
	}
	if !in.EndDate.After(in.StartDate) {
		v["end_date"] = "gtfield"
	}
	if !in.MonthlyRent.IsPositive() {
		v["monthly_rent"] = "gt"
	}
	if in.Deposit.IsNegative() {
		v["deposit"] = "gte"
	}
	if in.AnnualIncrease.IsNegative() {
		v["annual_increase"] = "gte"
	}
	if in.PaymentDay != 0 && (in.PaymentDay < 1 || in.PaymentDay > 28) {
		v["payment_day"] = "range"
	}
	if in.DailyLateFeeRate != nil && in.DailyLateFeeRate.IsNegative() {
		v["daily_late_fee_rate"] = "gte"
	}
	if len(v) > 0 {
		return apperr.Validation(v, "invalid contract")
	}
	return nil
}

// Create opens a contract on an existing property and tenant and marks the
// property as rented.
func (s *ContractService) Create(ctx context.Context, in CreateContractInput) (*models.Contract, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := models.Contract{
		PropertyID:       in.PropertyID,
		TenantID:         in.TenantID,
		Number:           in.Number,
		StartDate:        Date(in.StartDate),
		EndDate:          Date(in.EndDate),
		MonthlyRent:      money.Round(in.MonthlyRent),
		Deposit:          money.Round(in.Deposit),
		AnnualIncrease:   in.AnnualIncrease,
		PaymentDay:       in.PaymentDay,
		DailyLateFeeRate: s.defaultRate,
		Status:           models.ContractActive,
		Notes:            in.Notes,
	}
	if c.PaymentDay == 0 {
		c.PaymentDay = 5
	}
	if in.DailyLateFeeRate != nil {
		c.DailyLateFeeRate = *in.DailyLateFeeRate
	}
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var p models.Property
		if err := findByID(tx.Clauses(forUpdate), &p, in.PropertyID, "property"); err != nil {
			return err
		}
		var t models.Tenant
		if err := findByID(tx, &t, in.TenantID, "tenant"); err != nil {
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("a contract numbered %s already exists", c.Number)
			}
			return fmt.Errorf("create contract: %w", err)
		}
		return tx.Model(&p).Update("status", models.PropertyRented).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"contract_id": c.ID, "number": c.Number, "property_id": c.PropertyID}).Info("contract created")
	return &c, nil
}

// List returns contracts matching f with their property and tenant.
func (s *ContractService) List(ctx context.Context, f ContractFilter) ([]models.Contract, error) {
	q := s.db.WithContext(ctx).Preload("Property").Preload("Tenant")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PropertyID != 0 {
		q = q.Where("property_id = ?", f.PropertyID)
	}
	if f.TenantID != 0 {
		q = q.Where("tenant_id = ?", f.TenantID)
	}
	var contracts []models.Contract
	if err := q.Order("id").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return contracts, nil
}

// Get returns a contract with its property and tenant.
func (s *ContractService) Get(ctx context.Context, id uint) (*models.Contract, error) {
	var c models.Contract
	if err := findByID(s.db.WithContext(ctx).Preload("Property").Preload("Tenant"), &c, id, "contract"); err != nil {
		return nil, err
	}
	return &c, nil
}

// Finish closes a contract that reached its end date.
func (s *ContractService) Finish(ctx context.Context, id uint) (*models.Contract, error) {
	return s.close(ctx, id, models.ContractFinished, "")
}

// Rescind terminates a contract early, appending reason to its notes.
func (s *ContractService) Rescind(ctx context.Context, id uint, reason string) (*models.Contract, error) {
	return s.close(ctx, id, models.ContractTerminated, reason)
}

func (s *ContractService) close(ctx context.Context, id uint, status models.ContractStatus, reason string) (*models.Contract, error) {
	var c models.Contract
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := findByID(tx.Clauses(forUpdate), &c, id, "contract"); err != nil {
			return err
		}
		if !c.IsActive() {
			return apperr.Wrap(apperr.KindConflict, ErrContractClosed, "contract %s is already %s", c.Number, c.Status)
		}
		c.Status = status
		if reason != "" {
			if c.Notes != "" {
				c.Notes += "\n"
			}
			c.Notes += reason
		}
		if err := tx.Save(&c).Error; err != nil {
			return fmt.Errorf("save contract: %w", err)
		}
		return tx.Model(&models.Property{}).Where("id = ?", c.PropertyID).Update("status", models.PropertyAvailable).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"contract_id": c.ID, "status": c.Status}).Info("contract closed")
	return &c, nil
}

// RentFor returns the rent due for a month, raised by the annual increase
// once per full year elapsed since the contract's first month.
func RentFor(c *models.Contract, year, month int) decimal.Decimal {
	start := time.Time(c.StartDate)
	elapsed := (year-start.Year())*12 + month - int(start.Month())
	years := elapsed / 12
	rent := c.MonthlyRent
	factor := decimal.NewFromInt(1).Add(c.AnnualIncrease.Div(hundred))
	for i := 0; i < years; i++ {
		rent = money.Round(rent.Mul(factor))
	}
	return rent
}

// GenerateSchedule creates one pending payment per month of the contract
// term. Periods that already have a payment are skipped.
func (s *ContractService) GenerateSchedule(ctx context.Context, id uint) (*ScheduleResult, error) {
	res := &ScheduleResult{ContractID: id, Payments: []models.Payment{}}
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var c models.Contract
		if err := findByID(tx.Clauses(forUpdate), &c, id, "contract"); err != nil {
			return err
		}
		if !c.IsActive() {
			return apperr.Wrap(apperr.KindConflict, ErrContractClosed, "contract %s is %s", c.Number, c.Status)
		}
		var existing []string
		if err := tx.Model(&models.Payment{}).Where("contract_id = ?", c.ID).Pluck("period", &existing).Error; err != nil {
			return fmt.Errorf("load periods: %w", err)
		}
		have := make(map[string]bool, len(existing))
		for _, p := range existing {
			have[p] = true
		}

		start, end := time.Time(c.StartDate), time.Time(c.EndDate)
		cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		for cur.Before(end) {
			year, month := cur.Year(), int(cur.Month())
			period := tax.Period(year, month)
			cur = cur.AddDate(0, 1, 0)
			if have[period] {
				res.Skipped++
				continue
			}
			res.Payments = append(res.Payments, models.Payment{
				ContractID:     c.ID,
				Period:         period,
				Year:           year,
				Month:          month,
				DueDate:        Date(DueDate(year, month, c.PaymentDay)),
				ExpectedAmount: RentFor(&c, year, month),
				PaidAmount:     decimal.Zero,
				LateFee:        decimal.Zero,
				Status:         models.PaymentPending,
			})
		}
		if len(res.Payments) == 0 {
			return nil
		}
		if err := tx.Create(&res.Payments).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("contract %s schedule changed concurrently", c.Number)
			}
			return fmt.Errorf("create payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Created = len(res.Payments)
	s.log.WithFields(logrus.Fields{"contract_id": id, "created": res.Created, "skipped": res.Skipped}).Info("payment schedule generated")
	return res, nil
}
