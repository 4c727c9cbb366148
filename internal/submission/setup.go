package submission

import (
	"github.com/vialocal/contact-trust-backend/internal/reputation"
	"github.com/vialocal/contact-trust-backend/internal/trust"
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

var moduleService *Service

// Setup wires the orchestrator to its collaborators.
func Setup(store validation.Store, ledger validation.Ledger, trustSvc *trust.Service, repSvc *reputation.Service) {
	moduleService = NewService(store, ledger, trustSvc, repSvc)
}
