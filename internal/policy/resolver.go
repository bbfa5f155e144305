package policy

import (
	"context"
	"errors"

	"github.com/diewo77/go-rentals/gate"
	"github.com/diewo77/go-rentals/internal/models"
	"gorm.io/gorm"
)

// RoleResolver reads the current role of a user from the database, so a
// role change applies to tokens already issued.
type RoleResolver struct {
	DB *gorm.DB
}

// NewRoleResolver creates a database-backed resolver.
func NewRoleResolver(db *gorm.DB) *RoleResolver {
	return &RoleResolver{DB: db}
}

// Resolve returns the profile of an active user. Missing or disabled users
// have no profile.
func (r *RoleResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Select("id", "role", "active").First(&u, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !u.Active {
		return nil, nil
	}
	return ProfileFor(u.Role), nil
}
