package gate_test

import (
	"testing"

	"github.com/diewo77/go-rentals/gate"
)

func TestStaticProfile_HasPermission(t *testing.T) {
	profile := gate.NewStaticProfile("operador",
		gate.NewPermission("payment", gate.ActionCreate),
		gate.NewPermission("payment", gate.ActionUpdate),
	)

	if !profile.HasPermission(gate.NewPermission("payment", gate.ActionCreate)) {
		t.Error("should have payment:create permission")
	}
	if profile.HasPermission(gate.NewPermission("payment", gate.ActionDelete)) {
		t.Error("should not have payment:delete permission")
	}
}

func TestStaticProfile_HasPermission_Wildcard(t *testing.T) {
	profile := gate.NewStaticProfile("admin", gate.PermissionSuperAdmin)

	if !profile.HasPermission(gate.NewPermission("property", gate.ActionCreate)) {
		t.Error("superadmin should have any permission")
	}
	if !profile.HasPermission(gate.PermissionSuperAdmin) {
		t.Error("superadmin should hold itself")
	}
}

func TestStaticProfile_Permissions(t *testing.T) {
	profile := gate.NewStaticProfile("lector", "tax:view", "property:list", "tax:view")
	perms := profile.Permissions()
	if len(perms) != 2 || perms[0] != "property:list" || perms[1] != "tax:view" {
		t.Errorf("unexpected permissions %v", perms)
	}
	if profile.Name() != "lector" {
		t.Errorf("expected 'lector', got '%s'", profile.Name())
	}
}
