// Package ecosystem groups the per-ecosystem dependency parser and file
// updater implementations behind a common registry.
package ecosystem

import (
	"github.com/rios0rios0/groupdate/domain"
)

// Ecosystem bundles the parser and updater of one package ecosystem.
type Ecosystem interface {
	// Name returns the ecosystem identifier (e.g. "gomod", "terraform").
	Name() string

	// Parser returns the ecosystem's dependency parser.
	Parser() domain.DependencyParser

	// Updater returns the ecosystem's file updater.
	Updater() domain.FileUpdater
}

// Registry manages all registered ecosystem implementations.
type Registry struct {
	ecosystems map[string]Ecosystem
}

// NewRegistry creates an empty ecosystem registry.
func NewRegistry() *Registry {
	return &Registry{
		ecosystems: make(map[string]Ecosystem),
	}
}

// Register adds an ecosystem under its name.
func (r *Registry) Register(e Ecosystem) {
	r.ecosystems[e.Name()] = e
}

// Get returns the ecosystem with the given name, or nil if not registered.
func (r *Registry) Get(name string) Ecosystem {
	return r.ecosystems[name]
}

// Names returns the list of registered ecosystem names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ecosystems))
	for name := range r.ecosystems {
		names = append(names, name)
	}
	return names
}
