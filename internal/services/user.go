package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// CreateUserInput registers an operator account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     models.Role
}

// UserService authenticates users and manages accounts.
type UserService struct {
	db     *gorm.DB
	log    *logrus.Logger
	issuer *auth.Issuer
}

// NewUserService returns a service issuing tokens with issuer.
func NewUserService(db *gorm.DB, log *logrus.Logger, issuer *auth.Issuer) *UserService {
	return &UserService{db: db, log: newLogger(log), issuer: issuer}
}

// Login checks the credentials of an active user and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.Wrap(apperr.KindUnauthorized, ErrInvalidCredentials, "invalid credentials")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil || !u.Active {
		s.log.WithField("email", email).Warn("login rejected")
		return nil, apperr.Wrap(apperr.KindUnauthorized, ErrInvalidCredentials, "invalid credentials")
	}
	tok, exp, err := s.issuer.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	s.log.WithField("user_id", u.ID).Info("user logged in")
	return &LoginResult{AccessToken: tok, TokenType: "bearer", ExpiresAt: exp, User: &u}, nil
}

// Create registers a user with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	v := map[string]string{}
	if email == "" {
		v["email"] = "required"
	}
	if len(in.Password) < 8 {
		v["password"] = "min"
	}
	switch in.Role {
	case models.RoleAdmin, models.RoleOperator, models.RoleReader:
	case "":
		in.Role = models.RoleReader
	default:
		v["role"] = "oneof"
	}
	if len(v) > 0 {
		return nil, apperr.Validation(v, "invalid user")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{Email: email, Name: in.Name, Password: string(hash), Role: in.Role, Active: true}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict("a user with email %s already exists", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created")
	return &u, nil
}

// Active reports whether uid is an existing, enabled user.
func (s *UserService) Active(ctx context.Context, uid uint) bool {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ? AND active = ?", uid, true).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
