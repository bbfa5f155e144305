package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/gate"
	"github.com/diewo77/go-rentals/httpx"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthGate checks the permissions of the authenticated user.
type AuthGate struct {
	Gate *gate.Gate[uint]
	log  *logrus.Logger
}

// NewAuthGate creates a gate resolving roles from db.
func NewAuthGate(db *gorm.DB, log *logrus.Logger) *AuthGate {
	return NewAuthGateWith(NewRoleResolver(db), log)
}

// NewAuthGateWith creates a gate over any resolver.
func NewAuthGateWith(resolver gate.ProfileResolver[uint], log *logrus.Logger) *AuthGate {
	return &AuthGate{Gate: gate.New[uint](resolver), log: log}
}

// Authorize checks the user of ctx against resourceType:action.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string) error {
	userID, _ := auth.UserIDFromContext(ctx)
	return ag.Gate.Authorize(ctx, userID, action, resourceType)
}

func (ag *AuthGate) deny(w http.ResponseWriter, r *http.Request, err error, perm gate.Permission) {
	switch {
	case errors.Is(err, gate.ErrUnauthenticated):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{"permission": string(perm)})
	default:
		if ag.log != nil {
			ag.log.WithError(err).WithField("path", r.URL.Path).Error("resolve profile")
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// RequirePermission returns middleware that checks resourceType:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	perm := gate.NewPermission(resourceType, action)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resourceType); err != nil {
				ag.deny(w, r, err, perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only lets administrators through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := auth.UserIDFromContext(r.Context())
			profile, err := ag.Gate.Profile(r.Context(), userID)
			if err == nil && !profile.HasPermission(gate.PermissionSuperAdmin) {
				err = gate.ErrForbidden
			}
			if err != nil {
				ag.deny(w, r, err, gate.PermissionSuperAdmin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
