package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-rentals/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrNoAdminPassword is returned when seeding without a bootstrap password.
var ErrNoAdminPassword = errors.New("admin password not configured")

// SeedAdmin makes sure an active administrator with email exists.
// It is idempotent: an existing user is left untouched.
func SeedAdmin(conn *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var existing models.User
	err := conn.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !IsNotFound(err) {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if password == "" {
		return nil, ErrNoAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Email:    email,
		Name:     "Administrador",
		Password: string(hash),
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &admin, nil
}
