// Package models holds the gorm entities of the rental domain.
//
// Every entity embeds its own DeletedAt; gorm filters tombstoned rows from
// every query, so deletes are soft unless Unscoped is used.
package models

// All returns every entity in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Property{},
		&CoOwner{},
		&Tenant{},
		&Contract{},
		&Payment{},
		&Distribution{},
		&TaxRecord{},
		&CompensationInvoice{},
	}
}
