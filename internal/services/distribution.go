package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DistributionType tells whether a payment was split.
type DistributionType string

const (
	DistributionNone   DistributionType = "propiedad_propia"
	DistributionShared DistributionType = "copropiedad"
)

// DistributionLine is one co-owner's share of a payment.
type DistributionLine struct {
	DistributionID uint            `json:"distribution_id,omitempty"`
	CoOwnerID      uint            `json:"co_owner_id"`
	Name           string          `json:"name"`
	Percentage     decimal.Decimal `json:"percentage"`
	Amount         decimal.Decimal `json:"amount"`
	BankAccount    string          `json:"bank_account"`
	Bank           string          `json:"bank"`
}

// DistributionResult summarizes how a payment was split.
type DistributionResult struct {
	PaymentID     uint               `json:"payment_id"`
	Period        string             `json:"period"`
	Type          DistributionType   `json:"type"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Count         int                `json:"count"`
	Message       string             `json:"message"`
	Distributions []DistributionLine `json:"distributions"`
}

// MonthlyShare aggregates one month of a co-owner report.
type MonthlyShare struct {
	Amount   decimal.Decimal             `json:"amount"`
	Statuses []models.DistributionStatus `json:"statuses"`
}

// CoOwnerReport is a co-owner's income for one year.
type CoOwnerReport struct {
	CoOwner struct {
		ID          uint            `json:"id"`
		Name        string          `json:"name"`
		Percentage  decimal.Decimal `json:"percentage"`
		BankAccount string          `json:"bank_account"`
		Bank        string          `json:"bank"`
	} `json:"co_owner"`
	Property struct {
		ID      uint   `json:"id"`
		Address string `json:"address"`
	} `json:"property"`
	Year          int                   `json:"year"`
	TotalReceived decimal.Decimal       `json:"total_received"`
	TotalPending  decimal.Decimal       `json:"total_pending"`
	TotalYear     decimal.Decimal       `json:"total_year"`
	Count         int                   `json:"count"`
	Monthly       map[int]*MonthlyShare `json:"monthly"`
}

// DistributionService splits payments of shared properties among co-owners.
type DistributionService struct {
	db  *gorm.DB
	log *logrus.Logger
	now Clock
}

// NewDistributionService returns a service using db and now for "today".
func NewDistributionService(db *gorm.DB, log *logrus.Logger, now Clock) *DistributionService {
	return &DistributionService{db: db, log: newLogger(log), now: now}
}

// Split divides total among owners by percentage. Every owner but the last
// gets round(total*pct/100); the last takes the remainder, so the parts
// always add up to total exactly.
func Split(total decimal.Decimal, owners []models.CoOwner) []decimal.Decimal {
	parts := make([]decimal.Decimal, len(owners))
	running := decimal.Zero
	for i, o := range owners {
		if i == len(owners)-1 {
			parts[i] = total.Sub(running)
			break
		}
		parts[i] = money.Percent(total, o.Percentage)
		running = running.Add(parts[i])
	}
	return parts
}

// activeCoOwners returns the live co-owners of a property in id order.
func activeCoOwners(tx *gorm.DB, propertyID uint) ([]models.CoOwner, error) {
	var owners []models.CoOwner
	if err := tx.Where("property_id = ?", propertyID).Order("id").Find(&owners).Error; err != nil {
		return nil, fmt.Errorf("load co-owners: %w", err)
	}
	return owners, nil
}

// ValidatePercentages reports whether the co-owners of a property sum to 100.
func (s *DistributionService) ValidatePercentages(ctx context.Context, propertyID uint) (bool, error) {
	var prop models.Property
	if err := findByID(s.db.WithContext(ctx), &prop, propertyID, "property"); err != nil {
		return false, err
	}
	owners, err := activeCoOwners(s.db.WithContext(ctx), propertyID)
	if err != nil {
		return false, err
	}
	return models.SharesSumTo100(owners), nil
}

// Distribute splits the paid amount of a payment among the co-owners of its
// property. A sole-ownership property yields an empty result. The payment row
// is locked for the whole transaction and the (payment, co-owner) unique index
// rejects a racing second distribution.
func (s *DistributionService) Distribute(ctx context.Context, paymentID uint) (*DistributionResult, error) {
	var result *DistributionResult
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var payment models.Payment
		if err := findByID(tx.Clauses(forUpdate), &payment, paymentID, "payment"); err != nil {
			return err
		}
		var contract models.Contract
		if err := findByID(tx, &contract, payment.ContractID, "contract"); err != nil {
			return err
		}
		var prop models.Property
		if err := findByID(tx, &prop, contract.PropertyID, "property"); err != nil {
			return err
		}

		if !prop.IsShared() {
			result = &DistributionResult{
				PaymentID:     payment.ID,
				Period:        payment.Period,
				Type:          DistributionNone,
				TotalAmount:   payment.PaidAmount,
				Message:       "No requiere distribución (propiedad propia)",
				Distributions: []DistributionLine{},
			}
			return nil
		}

		var existing int64
		if err := tx.Model(&models.Distribution{}).Where("payment_id = ?", payment.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("count distributions: %w", err)
		}
		if existing > 0 {
			return apperr.Wrap(apperr.KindConflict, ErrAlreadyDistributed, "payment %d already has distributions", payment.ID)
		}

		owners, err := activeCoOwners(tx, prop.ID)
		if err != nil {
			return err
		}
		if len(owners) == 0 {
			return apperr.Wrap(apperr.KindConflict, ErrNoCoOwners, "property %d has no active co-owners", prop.ID)
		}
		if !models.SharesSumTo100(owners) {
			return apperr.Wrap(apperr.KindConflict, ErrPercentageMismatch, "co-owner percentages of property %d do not sum to 100", prop.ID)
		}

		today := Date(s.now())
		parts := Split(payment.PaidAmount, owners)
		rows := make([]models.Distribution, len(owners))
		for i, o := range owners {
			rows[i] = models.Distribution{
				PaymentID:     payment.ID,
				CoOwnerID:     o.ID,
				Amount:        parts[i],
				Percentage:    o.Percentage,
				DistributedOn: today,
				Status:        models.DistributionPending,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Wrap(apperr.KindConflict, ErrAlreadyDistributed, "payment %d already has distributions", payment.ID)
			}
			return fmt.Errorf("create distributions: %w", err)
		}

		lines := make([]DistributionLine, len(rows))
		for i, o := range owners {
			lines[i] = DistributionLine{
				DistributionID: rows[i].ID,
				CoOwnerID:      o.ID,
				Name:           o.Name,
				Percentage:     o.Percentage,
				Amount:         rows[i].Amount,
				BankAccount:    o.BankAccount,
				Bank:           o.Bank,
			}
		}
		result = &DistributionResult{
			PaymentID:     payment.ID,
			Period:        payment.Period,
			Type:          DistributionShared,
			TotalAmount:   payment.PaidAmount,
			Count:         len(lines),
			Message:       "Distribución creada exitosamente",
			Distributions: lines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Type == DistributionShared {
		s.log.WithFields(logrus.Fields{
			"payment_id": paymentID, "count": result.Count, "total": result.TotalAmount.String(),
		}).Info("payment distributed")
	}
	return result, nil
}

// ListByPayment returns the distributions of a payment with their co-owners.
func (s *DistributionService) ListByPayment(ctx context.Context, paymentID uint) ([]models.Distribution, error) {
	conn := s.db.WithContext(ctx)
	var payment models.Payment
	if err := findByID(conn, &payment, paymentID, "payment"); err != nil {
		return nil, err
	}
	var rows []models.Distribution
	if err := conn.Preload("CoOwner").Where("payment_id = ?", paymentID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	return rows, nil
}

// CoOwnerReport aggregates the distributions of a co-owner for payments of year.
func (s *DistributionService) CoOwnerReport(ctx context.Context, coOwnerID uint, year int) (*CoOwnerReport, error) {
	conn := s.db.WithContext(ctx)
	if year == 0 {
		year = s.now().Year()
	}
	var owner models.CoOwner
	if err := findByID(conn.Preload("Property"), &owner, coOwnerID, "co-owner"); err != nil {
		return nil, err
	}

	var rows []models.Distribution
	yearPayments := conn.Model(&models.Payment{}).Select("id").Where("year = ?", year)
	err := conn.Preload("Payment").
		Where("co_owner_id = ? AND payment_id IN (?)", coOwnerID, yearPayments).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load distributions: %w", err)
	}

	rep := &CoOwnerReport{Year: year, Monthly: map[int]*MonthlyShare{}}
	rep.CoOwner.ID = owner.ID
	rep.CoOwner.Name = owner.Name
	rep.CoOwner.Percentage = owner.Percentage
	rep.CoOwner.BankAccount = owner.BankAccount
	rep.CoOwner.Bank = owner.Bank
	if owner.Property != nil {
		rep.Property.ID = owner.Property.ID
		rep.Property.Address = owner.Property.Address
	}

	received, pending, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, d := range rows {
		total = total.Add(d.Amount)
		switch d.Status {
		case models.DistributionPaid:
			received = received.Add(d.Amount)
		case models.DistributionPending:
			pending = pending.Add(d.Amount)
		}
		month := 0
		if d.Payment != nil {
			month = d.Payment.Month
		}
		share, ok := rep.Monthly[month]
		if !ok {
			share = &MonthlyShare{Amount: decimal.Zero}
			rep.Monthly[month] = share
		}
		share.Amount = share.Amount.Add(d.Amount)
		share.Statuses = append(share.Statuses, d.Status)
	}
	rep.TotalReceived = money.Round(received)
	rep.TotalPending = money.Round(pending)
	rep.TotalYear = money.Round(total)
	rep.Count = len(rows)
	return rep, nil
}

// Months returns the report months in ascending order.
func (r *CoOwnerReport) Months() []int {
	months := make([]int, 0, len(r.Monthly))
	for m := range r.Monthly {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}

// MarkPaid records the transfer of a distribution to its co-owner.
// paidOn defaults to today.
func (s *DistributionService) MarkPaid(ctx context.Context, distributionID uint, reference string, paidOn *time.Time) (*models.Distribution, error) {
	var dist models.Distribution
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := findByID(tx.Clauses(forUpdate), &dist, distributionID, "distribution"); err != nil {
			return err
		}
		when := s.now()
		if paidOn != nil {
			when = *paidOn
		}
		date := Date(when)
		dist.Status = models.DistributionPaid
		dist.TransferReference = reference
		dist.PaidOn = &date
		return tx.Save(&dist).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"distribution_id": dist.ID, "reference": reference}).Info("distribution marked paid")
	return &dist, nil
}
