package gateway

import (
	"fmt"

	"github.com/rios0rios0/groupdate/domain"
)

// Config carries the provider-independent settings a gateway needs.
type Config struct {
	Token        string
	Owner        string
	Repository   string
	TargetBranch string
}

// Factory is a constructor function that creates a ServiceGateway.
type Factory func(cfg Config) domain.ServiceGateway

// Registry manages all registered service gateway implementations.
type Registry struct {
	gateways map[string]Factory
}

// NewRegistry creates an empty gateway registry.
func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[string]Factory),
	}
}

// Register adds a gateway factory under the given name (e.g. "github").
func (r *Registry) Register(name string, factory Factory) {
	r.gateways[name] = factory
}

// Get returns a configured gateway instance for the given name.
func (r *Registry) Get(name string, cfg Config) (domain.ServiceGateway, error) {
	factory, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("unknown gateway type: %q", name)
	}
	return factory(cfg), nil
}

// Names returns the list of registered gateway names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	return names
}
