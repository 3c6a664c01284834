// Package checker provides the built-in semver update checker and the
// version sources feeding it. Ecosystem resolution semantics beyond semver
// ordering belong to the collaborator behind the VersionSource.
package checker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/groupdate/domain"
)

// VersionSource lists the candidate versions available for a dependency.
type VersionSource interface {
	Versions(ctx context.Context, dep domain.Dependency) ([]string, error)
}

// SemverChecker implements domain.UpdateChecker on top of a version source.
// The candidate list is fetched once and cached for the remainder of the
// refresh; a checker is scoped to a single refresh invocation and must not
// outlive it.
type SemverChecker struct {
	dep      domain.Dependency
	source   VersionSource
	fetched  bool
	versions []string // sorted descending
}

// NewSemverChecker creates a checker for one dependency.
func NewSemverChecker(dep domain.Dependency, source VersionSource) *SemverChecker {
	return &SemverChecker{dep: dep, source: source}
}

// Factory returns a domain.CheckerFactory producing semver checkers backed
// by the given source.
func Factory(source VersionSource) domain.CheckerFactory {
	return func(_ context.Context, dep domain.Dependency) (domain.UpdateChecker, error) {
		return NewSemverChecker(dep, source), nil
	}
}

// IsUpToDate reports whether no candidate is newer than the current version.
func (c *SemverChecker) IsUpToDate(ctx context.Context) (bool, error) {
	latest, err := c.latest(ctx)
	if err != nil {
		return false, err
	}
	if latest == "" {
		return true, nil
	}
	return !isNewerVersion(c.dep.Version, latest), nil
}

// RequirementsUnlockable reports whether the dependency's declared
// requirement can be loosened at all. Only requirements declared directly in
// a manifest can be rewritten; lockfile-only dependencies have none to touch.
func (c *SemverChecker) RequirementsUnlockable(_ context.Context) (bool, error) {
	return c.dep.TopLevel, nil
}

// CanUpdate reports whether an update is achievable at the given level.
func (c *SemverChecker) CanUpdate(
	ctx context.Context,
	level domain.EscalationLevel,
) (bool, error) {
	target, err := c.target(ctx, level)
	if err != nil {
		return false, err
	}
	return target != "", nil
}

// UpdatedDependencies returns the dependency at its target version for the
// given level.
func (c *SemverChecker) UpdatedDependencies(
	ctx context.Context,
	level domain.EscalationLevel,
) ([]domain.Dependency, error) {
	target, err := c.target(ctx, level)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, fmt.Errorf("no update target for %q at level %s", c.dep.Name, level)
	}

	updated := c.dep
	updated.PreviousVersion = c.dep.Version
	updated.Version = target
	if level != domain.EscalationNone && updated.Requirement != "" {
		updated.Requirement = target
	}
	return []domain.Dependency{updated}, nil
}

// target picks the update target for a level, or "" when none is achievable.
// For EscalationNone only candidates satisfying the declared requirement
// qualify; own and all may move to the latest candidate, own only when the
// dependency's own requirement is rewritable.
func (c *SemverChecker) target(
	ctx context.Context,
	level domain.EscalationLevel,
) (string, error) {
	candidates, err := c.candidates(ctx)
	if err != nil {
		return "", err
	}

	switch level {
	case domain.EscalationNone:
		for _, v := range candidates {
			if isNewerVersion(c.dep.Version, v) && satisfiesRequirement(c.dep.Requirement, v) {
				return v, nil
			}
		}
		return "", nil

	case domain.EscalationOwn:
		if !c.dep.TopLevel {
			return "", nil
		}
		return c.newestCandidate(candidates), nil

	case domain.EscalationAll:
		return c.newestCandidate(candidates), nil

	case domain.EscalationUpdateNotPossible:
		return "", nil

	default:
		return "", fmt.Errorf("unknown escalation level %d", level)
	}
}

func (c *SemverChecker) newestCandidate(candidates []string) string {
	if len(candidates) > 0 && isNewerVersion(c.dep.Version, candidates[0]) {
		return candidates[0]
	}
	return ""
}

// candidates fetches the version list once and caches it sorted descending.
func (c *SemverChecker) candidates(ctx context.Context) ([]string, error) {
	if c.fetched {
		return c.versions, nil
	}

	versions, err := c.source.Versions(ctx, c.dep)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %q: %w", c.dep.Name, err)
	}

	sortVersionsDescending(versions)
	c.versions = versions
	c.fetched = true
	return c.versions, nil
}

func (c *SemverChecker) latest(ctx context.Context) (string, error) {
	candidates, err := c.candidates(ctx)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", nil
	}
	return candidates[0], nil
}

// --- requirement matching ---

// satisfiesRequirement checks a candidate against a declared requirement.
// Supported forms: "" (anything goes), "^x.y.z" and "~> x.y.z" (same major,
// at least the base), anything else is an exact pin.
func satisfiesRequirement(requirement, version string) bool {
	switch {
	case requirement == "":
		return true

	case strings.HasPrefix(requirement, "^"):
		base := strings.TrimPrefix(requirement, "^")
		return sameMajorAtLeast(base, version)

	case strings.HasPrefix(requirement, "~>"):
		base := strings.TrimSpace(strings.TrimPrefix(requirement, "~>"))
		return sameMajorAtLeast(base, version)

	default:
		return semver.Compare(normalizeVersion(requirement), normalizeVersion(version)) == 0
	}
}

func sameMajorAtLeast(base, version string) bool {
	nb := normalizeVersion(base)
	nv := normalizeVersion(version)
	if !semver.IsValid(nb) || !semver.IsValid(nv) {
		return false
	}
	return semver.Major(nb) == semver.Major(nv) && semver.Compare(nv, nb) >= 0
}

// --- version helpers ---

func isNewerVersion(current, candidate string) bool {
	cur := normalizeVersion(current)
	cand := normalizeVersion(candidate)
	if semver.IsValid(cur) && semver.IsValid(cand) {
		return semver.Compare(cand, cur) > 0
	}
	return candidate > current
}

func sortVersionsDescending(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		v1 := normalizeVersion(versions[i])
		v2 := normalizeVersion(versions[j])
		if semver.IsValid(v1) && semver.IsValid(v2) {
			return semver.Compare(v1, v2) > 0
		}
		return versions[i] > versions[j]
	})
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
