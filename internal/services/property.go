package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PropertyFilter narrows List.
type PropertyFilter struct {
	Status models.PropertyStatus
	Type   models.PropertyType
	City   string
}

// PropertyService manages properties and their co-owners.
type PropertyService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewPropertyService returns a property service.
func NewPropertyService(db *gorm.DB, log *logrus.Logger) *PropertyService {
	return &PropertyService{db: db, log: newLogger(log)}
}

// checkCoOwners validates the co-owners a property of type t may hold.
func checkCoOwners(t models.PropertyType, owners []models.CoOwner) error {
	switch t {
	case models.PropertySole:
		if len(owners) > 0 {
			return apperr.Validation(map[string]string{"co_owners": "not_allowed"}, "a sole-ownership property has no co-owners")
		}
		return nil
	case models.PropertyShared:
	default:
		return apperr.Validation(map[string]string{"type": "oneof"}, "unknown property type %q", t)
	}
	if len(owners) == 0 {
		return apperr.Validation(map[string]string{"co_owners": "required"}, "a shared property needs co-owners")
	}
	for i, o := range owners {
		if o.Name == "" {
			return apperr.Validation(map[string]string{fmt.Sprintf("co_owners[%d].name", i): "required"}, "co-owner name is required")
		}
		if !o.Percentage.IsPositive() || o.Percentage.GreaterThan(hundred) {
			return apperr.Validation(map[string]string{fmt.Sprintf("co_owners[%d].percentage", i): "range"}, "co-owner percentage must be in (0, 100]")
		}
	}
	if !models.SharesSumTo100(owners) {
		return apperr.Wrap(apperr.KindValidation, ErrPercentageMismatch, "co-owner percentages must sum to 100")
	}
	return nil
}

// Create stores a property together with its co-owners.
func (s *PropertyService) Create(ctx context.Context, p *models.Property) error {
	if err := checkCoOwners(p.Type, p.CoOwners); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = models.PropertyAvailable
	}
	if err := withTx(ctx, s.db, func(tx *gorm.DB) error { return tx.Create(p).Error }); err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	s.log.WithFields(logrus.Fields{"property_id": p.ID, "type": p.Type, "co_owners": len(p.CoOwners)}).Info("property created")
	return nil
}

// List returns the properties matching f.
func (s *PropertyService) List(ctx context.Context, f PropertyFilter) ([]models.Property, error) {
	q := s.db.WithContext(ctx).Preload("CoOwners", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	var props []models.Property
	if err := q.Order("id").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return props, nil
}

// Get returns a property with its co-owners.
func (s *PropertyService) Get(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	q := s.db.WithContext(ctx).Preload("CoOwners", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	if err := findByID(q, &p, id, "property"); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update overwrites the editable fields of a property. The ownership type is fixed.
func (s *PropertyService) Update(ctx context.Context, id uint, in *models.Property) (*models.Property, error) {
	var p models.Property
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := findByID(tx, &p, id, "property"); err != nil {
			return err
		}
		if in.Type != "" && in.Type != p.Type {
			return apperr.Validation(map[string]string{"type": "immutable"}, "property type cannot change")
		}
		p.Address = in.Address
		p.City = in.City
		p.Department = in.Department
		p.Zone = in.Zone
		p.Kind = in.Kind
		p.Area = in.Area
		p.Bedrooms = in.Bedrooms
		p.Bathrooms = in.Bathrooms
		p.Description = in.Description
		p.BaseRent = in.BaseRent
		if in.Currency != "" {
			p.Currency = in.Currency
		}
		if in.Status != "" {
			p.Status = in.Status
		}
		return tx.Omit("CoOwners", "Contracts").Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete soft-deletes a property and its co-owners. Properties under an
// active contract cannot be deleted.
func (s *PropertyService) Delete(ctx context.Context, id uint) error {
	return withTx(ctx, s.db, func(tx *gorm.DB) error {
		var p models.Property
		if err := findByID(tx, &p, id, "property"); err != nil {
			return err
		}
		var active int64
		if err := tx.Model(&models.Contract{}).Where("property_id = ? AND status = ?", id, models.ContractActive).Count(&active).Error; err != nil {
			return fmt.Errorf("count contracts: %w", err)
		}
		if active > 0 {
			return apperr.Conflict("property %d has an active contract", id)
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.CoOwner{}).Error; err != nil {
			return fmt.Errorf("delete co-owners: %w", err)
		}
		return tx.Delete(&p).Error
	})
}

// ListCoOwners returns the live co-owners of a property.
func (s *PropertyService) ListCoOwners(ctx context.Context, propertyID uint) ([]models.CoOwner, error) {
	conn := s.db.WithContext(ctx)
	var p models.Property
	if err := findByID(conn, &p, propertyID, "property"); err != nil {
		return nil, err
	}
	return activeCoOwners(conn, propertyID)
}

// AddCoOwner appends a co-owner to a shared property. The resulting shares
// must not exceed 100.
func (s *PropertyService) AddCoOwner(ctx context.Context, propertyID uint, o *models.CoOwner) error {
	return withTx(ctx, s.db, func(tx *gorm.DB) error {
		var p models.Property
		if err := findByID(tx.Clauses(forUpdate), &p, propertyID, "property"); err != nil {
			return err
		}
		if !p.IsShared() {
			return apperr.Validation(map[string]string{"co_owners": "not_allowed"}, "a sole-ownership property has no co-owners")
		}
		if !o.Percentage.IsPositive() || o.Percentage.GreaterThan(hundred) {
			return apperr.Validation(map[string]string{"percentage": "range"}, "co-owner percentage must be in (0, 100]")
		}
		owners, err := activeCoOwners(tx, propertyID)
		if err != nil {
			return err
		}
		total := o.Percentage
		for _, existing := range owners {
			total = total.Add(existing.Percentage)
		}
		if total.Sub(hundred).GreaterThan(models.PercentageTolerance) {
			return apperr.Wrap(apperr.KindValidation, ErrPercentageMismatch, "co-owner percentages would sum to %s", total.String())
		}
		o.ID = 0
		o.PropertyID = propertyID
		return tx.Create(o).Error
	})
}

// ReplaceCoOwners swaps the co-owners of a shared property for owners.
// The previous rows are soft-deleted so past distributions keep their references.
func (s *PropertyService) ReplaceCoOwners(ctx context.Context, propertyID uint, owners []models.CoOwner) ([]models.CoOwner, error) {
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var p models.Property
		if err := findByID(tx.Clauses(forUpdate), &p, propertyID, "property"); err != nil {
			return err
		}
		if err := checkCoOwners(p.Type, owners); err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", propertyID).Delete(&models.CoOwner{}).Error; err != nil {
			return fmt.Errorf("delete co-owners: %w", err)
		}
		if len(owners) == 0 {
			return nil
		}
		for i := range owners {
			owners[i].ID = 0
			owners[i].PropertyID = propertyID
		}
		return tx.Create(&owners).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"property_id": propertyID, "co_owners": len(owners)}).Info("co-owners replaced")
	return owners, nil
}
