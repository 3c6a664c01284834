package domain

// Dependency represents a versioned dependency found in a project directory.
type Dependency struct {
	Name            string // Dependency name or module path
	Version         string // Target (or currently pinned) version
	PreviousVersion string // Version before the update, set by checkers
	Requirement     string // Declared version constraint; empty when lockfile-only
	TopLevel        bool   // Declared directly in a manifest file
	Ecosystem       string // Ecosystem identifier (e.g. "gomod", "terraform")
	Source          string // Source URL/path (without version ref)
	Directory       string // Directory the dependency was found in
}

// DependencyFile is a directory-scoped project file. Identity for merge
// purposes is the (Directory, Path) pair.
type DependencyFile struct {
	Directory string
	Path      string
	Content   string
	Operation string // "add", "edit", "delete"
}

// Key returns the (directory, path) identity of the file.
func (f DependencyFile) Key() string {
	return f.Directory + ":" + f.Path
}

// Change is the computed set of dependency upgrades and resulting file edits
// for one group, optionally merged across directories. A Change with no
// updated dependencies represents "nothing updatable" and is only ever a
// signal to close the group's pull request, never content to submit.
type Change struct {
	UpdatedDependencies []Dependency
	UpdatedFiles        []DependencyFile
	Grouped             bool
}

// Empty reports whether the change carries no dependency updates.
func (c Change) Empty() bool {
	return len(c.UpdatedDependencies) == 0
}

// DependencyNames returns the updated dependency names in order.
func (c Change) DependencyNames() []string {
	names := make([]string, 0, len(c.UpdatedDependencies))
	for _, dep := range c.UpdatedDependencies {
		names = append(names, dep.Name)
	}
	return names
}

// VersionOf returns the target version recorded for the named dependency.
func (c Change) VersionOf(name string) (string, bool) {
	for _, dep := range c.UpdatedDependencies {
		if dep.Name == name {
			return dep.Version, true
		}
	}
	return "", false
}

// PRDependency is one (name, target version) claim of an open pull request.
type PRDependency struct {
	Name    string
	Version string
}

// PullRequestRecord is the read-only view of the pull request currently open
// for a group, as reported by the service gateway.
type PullRequestRecord struct {
	GroupName    string
	Directory    string
	Dependencies []PRDependency
	Number       int
	SourceBranch string
	URL          string
}

// Names returns the claimed dependency names in order.
func (r PullRequestRecord) Names() []string {
	names := make([]string, 0, len(r.Dependencies))
	for _, dep := range r.Dependencies {
		names = append(names, dep.Name)
	}
	return names
}

// VersionOf returns the version the pull request claims for the named
// dependency.
func (r PullRequestRecord) VersionOf(name string) (string, bool) {
	for _, dep := range r.Dependencies {
		if dep.Name == name {
			return dep.Version, true
		}
	}
	return "", false
}

// CloseReason explains why a group's pull request is being closed.
type CloseReason string

const (
	// CloseReasonGroupEmpty signals the group has no eligible members left.
	CloseReasonGroupEmpty CloseReason = "dependency-group-empty"

	// CloseReasonUpdateNoLongerPossible signals the group has members but
	// none of them can currently be updated.
	CloseReasonUpdateNoLongerPossible CloseReason = "update-no-longer-possible"

	// CloseReasonDependenciesChanged signals the set of dependencies the
	// group updates has changed and the pull request is being replaced.
	CloseReasonDependenciesChanged CloseReason = "dependencies-changed"
)
