package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TenantService manages tenants.
type TenantService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewTenantService returns a tenant service.
func NewTenantService(db *gorm.DB, log *logrus.Logger) *TenantService {
	return &TenantService{db: db, log: newLogger(log)}
}

func duplicateTenant(err error, nationalID string) error {
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("a tenant with national id %s already exists", nationalID)
	}
	return fmt.Errorf("save tenant: %w", err)
}

// Create stores a tenant. The national id is unique.
func (s *TenantService) Create(ctx context.Context, t *models.Tenant) error {
	if t.Status == "" {
		t.Status = models.TenantActive
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return duplicateTenant(err, t.NationalID)
	}
	s.log.WithField("tenant_id", t.ID).Info("tenant created")
	return nil
}

// List returns tenants, optionally filtered by status.
func (s *TenantService) List(ctx context.Context, status models.TenantStatus) ([]models.Tenant, error) {
	q := s.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tenants []models.Tenant
	if err := q.Order("full_name").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// Get returns a tenant by id.
func (s *TenantService) Get(ctx context.Context, id uint) (*models.Tenant, error) {
	var t models.Tenant
	if err := findByID(s.db.WithContext(ctx), &t, id, "tenant"); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update overwrites the editable fields of a tenant.
func (s *TenantService) Update(ctx context.Context, id uint, in *models.Tenant) (*models.Tenant, error) {
	var t models.Tenant
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := findByID(tx, &t, id, "tenant"); err != nil {
			return err
		}
		t.FullName = in.FullName
		t.NationalID = in.NationalID
		t.Phone = in.Phone
		t.AltPhone = in.AltPhone
		t.Email = in.Email
		t.CurrentAddress = in.CurrentAddress
		t.HomeCity = in.HomeCity
		t.Occupation = in.Occupation
		t.Workplace = in.Workplace
		t.WorkPhone = in.WorkPhone
		t.ReferenceName = in.ReferenceName
		t.ReferencePhone = in.ReferencePhone
		if in.Status != "" {
			t.Status = in.Status
		}
		if err := tx.Omit("Contracts").Save(&t).Error; err != nil {
			return duplicateTenant(err, t.NationalID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete soft-deletes a tenant without an active contract.
func (s *TenantService) Delete(ctx context.Context, id uint) error {
	return withTx(ctx, s.db, func(tx *gorm.DB) error {
		var t models.Tenant
		if err := findByID(tx, &t, id, "tenant"); err != nil {
			return err
		}
		var active int64
		if err := tx.Model(&models.Contract{}).Where("tenant_id = ? AND status = ?", id, models.ContractActive).Count(&active).Error; err != nil {
			return fmt.Errorf("count contracts: %w", err)
		}
		if active > 0 {
			return apperr.Conflict("tenant %d has an active contract", id)
		}
		return tx.Delete(&t).Error
	})
}
