package engines

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/bandit"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/checkov"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/conftest"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/gate"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/generic"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/gitleaks"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/gosec"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/grype"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/hadolint"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/kics"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/npmaudit"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/sarif"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/semgrep"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/tfsec"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/trivy"
)

// NewDefaultRegistry creates a registry with every built-in adapter
// registered, minus the ones listed in disabled. The generic fallback and
// the gate adapter cannot be disabled.
func NewDefaultRegistry(disabled ...ports.AdapterID) *Registry {
	skip := make(map[ports.AdapterID]bool, len(disabled))
	for _, id := range disabled {
		skip[id] = true
	}

	r := NewRegistry()
	for _, adapter := range []ports.Adapter{
		bandit.NewAdapter(),
		checkov.NewAdapter(),
		trivy.NewAdapter(),
		tfsec.NewAdapter(),
		kics.NewAdapter(),
		semgrep.NewAdapter(),
		gitleaks.NewAdapter(),
		gosec.NewAdapter(),
		conftest.NewAdapter(),
		hadolint.NewAdapter(),
		npmaudit.NewAdapter(),
		grype.NewAdapter(),
		sarif.NewAdapter(),
	} {
		if !skip[adapter.ID()] {
			r.Register(adapter)
		}
	}
	r.Register(generic.NewAdapter())
	r.Register(gate.NewAdapter())

	return r
}
