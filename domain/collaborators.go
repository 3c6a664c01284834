package domain

import "context"

// EscalationLevel is the amount of requirement loosening needed to make a
// dependency update satisfiable. Levels are ordered from least to most
// invasive; the compiler always picks the least invasive level that works.
type EscalationLevel int

const (
	// EscalationNone updates without touching any declared requirement.
	EscalationNone EscalationLevel = iota

	// EscalationOwn loosens only the dependency's own declared requirement.
	EscalationOwn

	// EscalationAll loosens transitively related requirements as well.
	EscalationAll

	// EscalationUpdateNotPossible means no update is achievable at all.
	EscalationUpdateNotPossible
)

// String returns the level identifier used in logs.
func (l EscalationLevel) String() string {
	switch l {
	case EscalationNone:
		return "none"
	case EscalationOwn:
		return "own"
	case EscalationAll:
		return "all"
	case EscalationUpdateNotPossible:
		return "update-not-possible"
	default:
		return "unknown"
	}
}

// UpdateChecker answers, for one dependency, whether it is current and what
// it would take to update it. Ecosystem-specific resolution semantics live
// entirely behind this interface.
type UpdateChecker interface {
	// IsUpToDate reports whether the dependency is already at its latest
	// reachable version.
	IsUpToDate(ctx context.Context) (bool, error)

	// RequirementsUnlockable reports whether the dependency's declared
	// requirement can (or needs to) be loosened at all.
	RequirementsUnlockable(ctx context.Context) (bool, error)

	// CanUpdate reports whether an update is achievable at the given
	// escalation level.
	CanUpdate(ctx context.Context, level EscalationLevel) (bool, error)

	// UpdatedDependencies returns the dependency (and any transitively
	// updated dependencies) at their target versions for the given level.
	UpdatedDependencies(ctx context.Context, level EscalationLevel) ([]Dependency, error)
}

// CheckerFactory builds an UpdateChecker for one dependency.
type CheckerFactory func(ctx context.Context, dep Dependency) (UpdateChecker, error)

// FileFetcher retrieves the raw project files of one directory, together
// with the commit SHA they were fetched at.
type FileFetcher interface {
	Fetch(ctx context.Context, directory string) ([]DependencyFile, string, error)
}

// DependencyParser turns fetched files into an ordered dependency sequence.
type DependencyParser interface {
	Parse(files []DependencyFile) ([]Dependency, error)
}

// FileUpdater edits manifest and lock files to reflect updated dependencies.
// It returns only the files it touched.
type FileUpdater interface {
	UpdateFiles(ctx context.Context, deps []Dependency, files []DependencyFile) ([]DependencyFile, error)
}

// ServiceGateway executes pull-request actions against the hosting provider
// and is the source of existing pull request metadata. It is the only place
// durable effects happen; the core holds no persisted state of its own.
type ServiceGateway interface {
	// ExistingPullRequest returns the open pull request record for a group,
	// or nil when the group has none.
	ExistingPullRequest(ctx context.Context, groupName string) (*PullRequestRecord, error)

	// CreatePullRequest opens a new pull request carrying the change.
	CreatePullRequest(ctx context.Context, groupName string, change Change, baseSHA string) (*PullRequestRecord, error)

	// UpdatePullRequest rewrites the group's existing pull request content
	// in place.
	UpdatePullRequest(ctx context.Context, groupName string, change Change, baseSHA string) error

	// ClosePullRequest closes the group's pull request, stating which
	// dependencies it covered and why it is being closed.
	ClosePullRequest(ctx context.Context, groupName string, dependencyNames []string, reason CloseReason) error
}

// Reporter is the observability collaborator. It is injected explicitly into
// the orchestrator and its sub-components rather than reached through a
// process-wide singleton.
type Reporter interface {
	// RecordError captures a collaborator failure that aborted a group
	// refresh.
	RecordError(ctx context.Context, groupName string, err error)

	// RecordAnomaly captures a recovered configuration anomaly.
	RecordAnomaly(ctx context.Context, kind, message string)
}
