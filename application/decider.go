package application

import (
	"github.com/rios0rios0/groupdate/domain"
)

// Action is the pull-request lifecycle action selected for a group refresh.
type Action int

const (
	// ActionCreate opens a new pull request; no open one exists.
	ActionCreate Action = iota

	// ActionUpdateInPlace rewrites the existing pull request's content.
	ActionUpdateInPlace

	// ActionReplace closes the existing pull request (dependencies changed)
	// and creates a new one.
	ActionReplace

	// ActionSupersede creates a new pull request while deliberately leaving
	// the old one open; marking it superseded is a hosting-side mechanism,
	// which avoids a window where neither pull request exists.
	ActionSupersede

	// ActionClose closes the existing pull request, if any.
	ActionClose
)

// String returns the action identifier used in logs.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdateInPlace:
		return "update-in-place"
	case ActionReplace:
		return "replace"
	case ActionSupersede:
		return "supersede"
	case ActionClose:
		return "close"
	default:
		return "unknown"
	}
}

// Decision is the outcome of comparing a merged change against the group's
// existing pull request record.
type Decision struct {
	Action      Action
	CloseReason domain.CloseReason // set only for ActionClose and ActionReplace
}

// Decide compares the merged change against the existing pull request record
// (nil when the group has no open pull request) and the group's current
// eligible member count, and selects the lifecycle action. It is a pure
// function and performs no I/O.
func Decide(change domain.Change, existing *domain.PullRequestRecord, eligibleMembers int) Decision {
	if change.Empty() {
		if eligibleMembers == 0 {
			return Decision{Action: ActionClose, CloseReason: domain.CloseReasonGroupEmpty}
		}
		return Decision{Action: ActionClose, CloseReason: domain.CloseReasonUpdateNoLongerPossible}
	}

	if existing == nil {
		return Decision{Action: ActionCreate}
	}

	if !sameNameSet(change, *existing) {
		return Decision{Action: ActionReplace, CloseReason: domain.CloseReasonDependenciesChanged}
	}

	if sameVersions(change, *existing) {
		return Decision{Action: ActionUpdateInPlace}
	}

	return Decision{Action: ActionSupersede}
}

// sameNameSet compares dependency name sets, ignoring order and target
// versions. Any addition or removal makes the sets differ.
func sameNameSet(change domain.Change, existing domain.PullRequestRecord) bool {
	changeNames := make(map[string]struct{}, len(change.UpdatedDependencies))
	for _, dep := range change.UpdatedDependencies {
		changeNames[dep.Name] = struct{}{}
	}

	existingNames := make(map[string]struct{}, len(existing.Dependencies))
	for _, dep := range existing.Dependencies {
		existingNames[dep.Name] = struct{}{}
	}

	if len(changeNames) != len(existingNames) {
		return false
	}
	for name := range changeNames {
		if _, ok := existingNames[name]; !ok {
			return false
		}
	}
	return true
}

// sameVersions reports whether every dependency in the change targets exactly
// the version the existing pull request claims for it. Callers must have
// established that the name sets match.
func sameVersions(change domain.Change, existing domain.PullRequestRecord) bool {
	for _, dep := range change.UpdatedDependencies {
		recorded, ok := existing.VersionOf(dep.Name)
		if !ok || recorded != dep.Version {
			return false
		}
	}
	return true
}
