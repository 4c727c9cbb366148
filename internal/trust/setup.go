package trust

import (
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

// moduleService is the service instance shared by handlers and the worker.
var moduleService *Service

// Setup wires the trust module to the validation store and returns the
// service for use by the submission orchestrator.
func Setup(store validation.Store) *Service {
	moduleService = NewService(store)
	return moduleService
}
