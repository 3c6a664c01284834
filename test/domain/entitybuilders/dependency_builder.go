package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/groupdate/domain"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name        string
	version     string
	previousVer string
	requirement string
	topLevel    bool
	ecosystem   string
	source      string
	directory   string
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "test-dependency",
		version:     "1.0.0",
		requirement: "^1.0.0",
		topLevel:    true,
		ecosystem:   "gomod",
		source:      "github.com/test/dep",
		directory:   "/",
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithVersion sets the resolved version.
func (b *DependencyBuilder) WithVersion(version string) *DependencyBuilder {
	b.version = version
	return b
}

// WithPreviousVersion sets the version before the update.
func (b *DependencyBuilder) WithPreviousVersion(version string) *DependencyBuilder {
	b.previousVer = version
	return b
}

// WithRequirement sets the declared requirement.
func (b *DependencyBuilder) WithRequirement(requirement string) *DependencyBuilder {
	b.requirement = requirement
	return b
}

// WithTopLevel marks whether the dependency is directly declared.
func (b *DependencyBuilder) WithTopLevel(topLevel bool) *DependencyBuilder {
	b.topLevel = topLevel
	return b
}

// WithEcosystem sets the package ecosystem.
func (b *DependencyBuilder) WithEcosystem(ecosystem string) *DependencyBuilder {
	b.ecosystem = ecosystem
	return b
}

// WithSource sets the source URL/path.
func (b *DependencyBuilder) WithSource(source string) *DependencyBuilder {
	b.source = source
	return b
}

// WithDirectory sets the project directory the dependency belongs to.
func (b *DependencyBuilder) WithDirectory(directory string) *DependencyBuilder {
	b.directory = directory
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() domain.Dependency {
	return domain.Dependency{
		Name:            b.name,
		Version:         b.version,
		PreviousVersion: b.previousVer,
		Requirement:     b.requirement,
		TopLevel:        b.topLevel,
		Ecosystem:       b.ecosystem,
		Source:          b.source,
		Directory:       b.directory,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-dependency"
	b.version = "1.0.0"
	b.previousVer = ""
	b.requirement = "^1.0.0"
	b.topLevel = true
	b.ecosystem = "gomod"
	b.source = "github.com/test/dep"
	b.directory = "/"
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	return &DependencyBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		version:     b.version,
		previousVer: b.previousVer,
		requirement: b.requirement,
		topLevel:    b.topLevel,
		ecosystem:   b.ecosystem,
		source:      b.source,
		directory:   b.directory,
	}
}
