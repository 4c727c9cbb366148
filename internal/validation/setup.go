package validation

import (
	"fmt"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
)

// moduleStore is the store instance shared by this module's handlers.
var moduleStore Store

// PrimeDB migrates the validations table and installs the module's store.
func PrimeDB() (Store, error) {
	if err := database.DB.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate contact_validations table: %w", err)
	}
	moduleStore = NewGormStore(database.DB)
	return moduleStore, nil
}
