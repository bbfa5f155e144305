// Package policy binds the rental roles to gate permissions and guards routes.
package policy

import (
	"github.com/diewo77/go-rentals/gate"
	"github.com/diewo77/go-rentals/internal/models"
)

// Resource types guarded by the gate.
const (
	ResourceProperty = "property"
	ResourceTenant   = "tenant"
	ResourceContract = "contract"
	ResourcePayment  = "payment"
	ResourceTax      = "tax"
	ResourceReport   = "report"
	ResourceUser     = "user"
)

// operatorWrites are the resources an operator may change. Distributions
// belong to payments.
var operatorWrites = []string{ResourceProperty, ResourceTenant, ResourceContract, ResourcePayment, ResourceTax}

func operatorPermissions() []gate.Permission {
	perms := gate.Grant(gate.WildcardAll, gate.ReadActions...)
	for _, res := range operatorWrites {
		perms = append(perms, gate.Grant(res, gate.WriteActions...)...)
	}
	return perms
}

var profiles = map[models.Role]gate.Profile{
	models.RoleAdmin:    gate.NewStaticProfile(string(models.RoleAdmin), gate.PermissionSuperAdmin),
	models.RoleOperator: gate.NewStaticProfile(string(models.RoleOperator), operatorPermissions()...),
	models.RoleReader:   gate.NewStaticProfile(string(models.RoleReader), gate.Grant(gate.WildcardAll, gate.ReadActions...)...),
}

// ProfileFor returns the profile of role, or nil for an unknown role.
func ProfileFor(role models.Role) gate.Profile {
	return profiles[role]
}
