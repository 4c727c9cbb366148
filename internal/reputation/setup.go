package reputation

import (
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

var moduleService *Service

// Setup wires the reputation module to the validation store and returns the
// service for use by the submission orchestrator.
func Setup(store validation.Store) *Service {
	moduleService = NewService(store)
	return moduleService
}
