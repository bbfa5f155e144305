package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-rentals/gate"
)

func newTestGate() *gate.Gate[uint] {
	profiles := map[uint]gate.Profile{
		1: gate.NewStaticProfile("admin", gate.PermissionSuperAdmin),
		2: gate.NewStaticProfile("lector", gate.Grant(gate.WildcardAll, gate.ReadActions...)...),
	}
	return gate.New[uint](gate.ResolverFunc[uint](func(_ context.Context, id uint) (gate.Profile, error) {
		if id == 99 {
			return nil, errors.New("db down")
		}
		return profiles[id], nil
	}))
}

func TestGate_Authorize(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if err := g.Authorize(ctx, 0, gate.ActionView, "property"); err != gate.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if err := g.Authorize(ctx, 1, gate.ActionDelete, "tenant"); err != nil {
		t.Errorf("admin should be allowed, got %v", err)
	}
	if err := g.Authorize(ctx, 2, gate.ActionList, "payment"); err != nil {
		t.Errorf("reader should list, got %v", err)
	}
	if err := g.Authorize(ctx, 2, gate.ActionCreate, "payment"); err != gate.ErrForbidden {
		t.Errorf("reader should not create, got %v", err)
	}
	if err := g.Authorize(ctx, 3, gate.ActionView, "payment"); err != gate.ErrForbidden {
		t.Errorf("user without profile should be forbidden, got %v", err)
	}
	if err := g.Authorize(ctx, 99, gate.ActionView, "payment"); err == nil {
		t.Error("resolver failure should deny")
	}
}

func TestGate_IsAdmin(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()
	if !g.IsAdmin(ctx, 1) {
		t.Error("user 1 is admin")
	}
	if g.IsAdmin(ctx, 2) || g.IsAdmin(ctx, 0) || g.IsAdmin(ctx, 3) {
		t.Error("only user 1 is admin")
	}
	if !g.Can(ctx, 1, gate.ActionUpdate, "tax") {
		t.Error("Can should mirror Authorize")
	}
}
