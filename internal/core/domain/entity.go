package domain

import (
	"fmt"
	"strings"
)

// EntityType identifies one of the fixed record categories exported
// by the ERP. The value doubles as the search collection (alias) name.
type EntityType string

const (
	// EntityInvoices holds sales invoices.
	EntityInvoices EntityType = "invoices"

	// EntityPurchases holds purchase invoices (costs).
	EntityPurchases EntityType = "purchases"

	// EntityItems holds items/products.
	EntityItems EntityType = "items"

	// EntityProjects holds projects.
	EntityProjects EntityType = "projects"

	// EntityCustomers holds customer master data.
	EntityCustomers EntityType = "customers"

	// EntityObjects holds objects (organisational structure).
	EntityObjects EntityType = "objects"

	// EntityAccounts holds ledger accounts.
	EntityAccounts EntityType = "accounts"

	// EntitySuppliers holds supplier master data.
	EntitySuppliers EntityType = "suppliers"
)

// AllEntityTypes returns every entity type in ETL order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityInvoices,
		EntityPurchases,
		EntityItems,
		EntityProjects,
		EntityCustomers,
		EntityObjects,
		EntityAccounts,
		EntitySuppliers,
	}
}

// APIName returns the singular identifier used by the upstream export
// API ("what" parameter), e.g. "invoices" -> "invoice".
func (e EntityType) APIName() string {
	return strings.TrimSuffix(string(e), "s")
}

// Valid reports whether e is one of the known entity types.
func (e EntityType) Valid() bool {
	for _, known := range AllEntityTypes() {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEntityType converts a user-supplied name into an EntityType.
// Both plural ("invoices") and singular ("invoice") forms are accepted.
func ParseEntityType(s string) (EntityType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, known := range AllEntityTypes() {
		if s == string(known) || s == known.APIName() {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, s)
}
