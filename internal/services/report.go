package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dashboard holds the headline figures of a year.
type Dashboard struct {
	Year    int `json:"year"`
	Summary struct {
		Properties      int64           `json:"properties"`
		ActiveContracts int64           `json:"active_contracts"`
		Income          decimal.Decimal `json:"income"`
		AccruedMora     decimal.Decimal `json:"accrued_mora"`
		PendingPayments int64           `json:"pending_payments"`
	} `json:"summary"`
	MonthlyIncome map[int]decimal.Decimal `json:"monthly_income"`
}

// DelinquentContract is one line of the delinquency report.
type DelinquentContract struct {
	ContractID   uint            `json:"contract_id"`
	Number       string          `json:"number"`
	Property     string          `json:"property"`
	Tenant       string          `json:"tenant"`
	TotalMora    decimal.Decimal `json:"total_mora"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	LatePayments int             `json:"late_payments"`
}

// Delinquency lists the contracts with late payments, highest mora first.
type Delinquency struct {
	Contracts int                  `json:"contracts"`
	TotalMora decimal.Decimal      `json:"total_mora"`
	Items     []DelinquentContract `json:"items"`
}

// PropertyYield is one line of the property performance report.
type PropertyYield struct {
	PropertyID     uint                `json:"property_id"`
	Address        string              `json:"address"`
	Type           models.PropertyType `json:"type"`
	BaseRent       decimal.Decimal     `json:"base_rent"`
	Income         decimal.Decimal     `json:"income"`
	PendingMora    decimal.Decimal     `json:"pending_mora"`
	OccupiedMonths int                 `json:"occupied_months"`
}

// PropertyPerformance ranks properties by income in a year.
type PropertyPerformance struct {
	Year       int             `json:"year"`
	Properties []PropertyYield `json:"properties"`
}

// ReportService aggregates payments for dashboards.
type ReportService struct {
	db  *gorm.DB
	log *logrus.Logger
	now Clock
}

// NewReportService returns a report service. Year 0 means the current year of now.
func NewReportService(db *gorm.DB, log *logrus.Logger, now Clock) *ReportService {
	return &ReportService{db: db, log: newLogger(log), now: now}
}

func (s *ReportService) year(y int) int {
	if y == 0 {
		return s.now().Year()
	}
	return y
}

var (
	incomeStatuses = []models.PaymentStatus{models.PaymentPaid, models.PaymentPartial}
	moraStatuses   = []models.PaymentStatus{models.PaymentOverdue, models.PaymentPartial}
)

// Dashboard returns totals for year: income from paid and partial payments,
// mora still accruing on overdue and partial payments, and pending counts.
func (s *ReportService) Dashboard(ctx context.Context, year int) (*Dashboard, error) {
	year = s.year(year)
	conn := s.db.WithContext(ctx)
	d := &Dashboard{Year: year, MonthlyIncome: make(map[int]decimal.Decimal, 12)}
	for m := 1; m <= 12; m++ {
		d.MonthlyIncome[m] = decimal.Zero
	}

	if err := conn.Model(&models.Property{}).Count(&d.Summary.Properties).Error; err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}
	if err := conn.Model(&models.Contract{}).Where("status = ?", models.ContractActive).Count(&d.Summary.ActiveContracts).Error; err != nil {
		return nil, fmt.Errorf("count contracts: %w", err)
	}
	pending := []models.PaymentStatus{models.PaymentPending, models.PaymentOverdue}
	if err := conn.Model(&models.Payment{}).Where("status IN ?", pending).Count(&d.Summary.PendingPayments).Error; err != nil {
		return nil, fmt.Errorf("count pending payments: %w", err)
	}

	var paid []models.Payment
	if err := conn.Select("month", "paid_amount").Where("year = ? AND status IN ?", year, incomeStatuses).Find(&paid).Error; err != nil {
		return nil, fmt.Errorf("load income: %w", err)
	}
	income := decimal.Zero
	for _, p := range paid {
		income = income.Add(p.PaidAmount)
		d.MonthlyIncome[p.Month] = d.MonthlyIncome[p.Month].Add(p.PaidAmount)
	}
	for m, v := range d.MonthlyIncome {
		d.MonthlyIncome[m] = money.Round(v)
	}
	d.Summary.Income = money.Round(income)

	var late []models.Payment
	if err := conn.Select("late_fee").Where("status IN ?", moraStatuses).Find(&late).Error; err != nil {
		return nil, fmt.Errorf("load mora: %w", err)
	}
	mora := decimal.Zero
	for _, p := range late {
		mora = mora.Add(p.LateFee)
	}
	d.Summary.AccruedMora = money.Round(mora)
	return d, nil
}

// Delinquency groups open payments with days late by contract.
func (s *ReportService) Delinquency(ctx context.Context) (*Delinquency, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Preload("Contract.Property").
		Preload("Contract.Tenant").
		Where("status IN ? AND days_late > 0", models.OpenPaymentStatuses).
		Order("contract_id, due_date").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("load late payments: %w", err)
	}

	byContract := map[uint]*DelinquentContract{}
	var order []uint
	for i := range payments {
		p := &payments[i]
		line, ok := byContract[p.ContractID]
		if !ok {
			line = &DelinquentContract{ContractID: p.ContractID, TotalMora: decimal.Zero, Outstanding: decimal.Zero}
			if c := p.Contract; c != nil {
				line.Number = c.Number
				if c.Property != nil {
					line.Property = c.Property.Address
				}
				if c.Tenant != nil {
					line.Tenant = c.Tenant.FullName
				}
			}
			byContract[p.ContractID] = line
			order = append(order, p.ContractID)
		}
		line.TotalMora = line.TotalMora.Add(p.LateFee)
		line.Outstanding = line.Outstanding.Add(p.Outstanding())
		line.LatePayments++
	}

	out := &Delinquency{TotalMora: decimal.Zero, Items: make([]DelinquentContract, 0, len(order))}
	for _, id := range order {
		line := byContract[id]
		line.TotalMora = money.Round(line.TotalMora)
		line.Outstanding = money.Round(line.Outstanding)
		out.TotalMora = out.TotalMora.Add(line.TotalMora)
		out.Items = append(out.Items, *line)
	}
	sort.SliceStable(out.Items, func(i, j int) bool {
		return out.Items[i].TotalMora.GreaterThan(out.Items[j].TotalMora)
	})
	out.Contracts = len(out.Items)
	out.TotalMora = money.Round(out.TotalMora)
	return out, nil
}

// PropertyPerformance returns, for every property, the income of year, the
// mora still pending and the number of months with a billed payment.
func (s *ReportService) PropertyPerformance(ctx context.Context, year int) (*PropertyPerformance, error) {
	year = s.year(year)
	conn := s.db.WithContext(ctx)
	var props []models.Property
	if err := conn.Order("id").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	var contracts []models.Contract
	if err := conn.Select("id", "property_id").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	propertyOf := make(map[uint]uint, len(contracts))
	for _, c := range contracts {
		propertyOf[c.ID] = c.PropertyID
	}
	var payments []models.Payment
	if err := conn.Select("contract_id", "year", "period", "status", "paid_amount", "late_fee").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	type acc struct {
		income, mora decimal.Decimal
		periods      map[string]bool
	}
	stats := map[uint]*acc{}
	for _, p := range payments {
		propertyID, ok := propertyOf[p.ContractID]
		if !ok {
			continue
		}
		a, ok := stats[propertyID]
		if !ok {
			a = &acc{income: decimal.Zero, mora: decimal.Zero, periods: map[string]bool{}}
			stats[propertyID] = a
		}
		if p.Year == year {
			a.periods[p.Period] = true
			if p.Status == models.PaymentPaid || p.Status == models.PaymentPartial {
				a.income = a.income.Add(p.PaidAmount)
			}
		}
		if p.Status == models.PaymentOverdue || p.Status == models.PaymentPartial {
			a.mora = a.mora.Add(p.LateFee)
		}
	}

	out := &PropertyPerformance{Year: year, Properties: make([]PropertyYield, 0, len(props))}
	for _, p := range props {
		y := PropertyYield{
			PropertyID:  p.ID,
			Address:     p.Address,
			Type:        p.Type,
			BaseRent:    p.BaseRent,
			Income:      decimal.Zero,
			PendingMora: decimal.Zero,
		}
		if a, ok := stats[p.ID]; ok {
			y.Income = money.Round(a.income)
			y.PendingMora = money.Round(a.mora)
			y.OccupiedMonths = len(a.periods)
		}
		out.Properties = append(out.Properties, y)
	}
	sort.SliceStable(out.Properties, func(i, j int) bool {
		return out.Properties[i].Income.GreaterThan(out.Properties[j].Income)
	})
	return out, nil
}
