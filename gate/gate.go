// Package gate is a small permission gate: a user resolves to a Profile and
// the profile must hold "resource:action" for the request to go through.
//
// The user type is generic:
//   - Gate[uint] for user-ID based auth
//   - Gate[string] for role-name based auth
package gate

import "context"

// Gate is the central authorization checkpoint.
// U is the user/subject type; its zero value means "no user".
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

// New creates a gate resolving profiles through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// Profile returns the profile of user, or ErrForbidden when it has none.
func (g *Gate[U]) Profile(ctx context.Context, user U) (Profile, error) {
	var zero U
	if user == zero {
		return nil, ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrForbidden
	}
	return profile, nil
}

// Authorize returns nil when user may perform action on resourceType.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string) error {
	profile, err := g.Profile(ctx, user)
	if err != nil {
		return err
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.Authorize(ctx, user, action, resourceType) == nil
}

// IsAdmin reports whether user holds the super-admin permission.
func (g *Gate[U]) IsAdmin(ctx context.Context, user U) bool {
	profile, err := g.Profile(ctx, user)
	return err == nil && profile.HasPermission(PermissionSuperAdmin)
}
