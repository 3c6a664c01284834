package domain

import (
	"regexp"
	"strings"
)

// GroupAppliesTo tags which kind of update run a group participates in.
type GroupAppliesTo string

const (
	// AppliesToVersionUpdates marks groups for regular version update runs.
	AppliesToVersionUpdates GroupAppliesTo = "version-updates"

	// AppliesToSecurityUpdates marks groups for security-only update runs.
	AppliesToSecurityUpdates GroupAppliesTo = "security-updates"
)

// GroupRules is the membership predicate of a dependency group. Patterns use
// "*" as a wildcard spanning any run of characters (including separators).
// An empty pattern list matches every dependency.
type GroupRules struct {
	Patterns        []string
	ExcludePatterns []string
}

// DependencyGroup is a named, predicate-defined subset of a project's
// dependencies updated together as one unit. Groups are configured externally
// and immutable for the duration of a job; their predicates may overlap.
type DependencyGroup struct {
	Name      string
	AppliesTo GroupAppliesTo
	Rules     GroupRules
}

// Matches reports whether the dependency is a member of this group.
func (g DependencyGroup) Matches(dep Dependency) bool {
	for _, pattern := range g.Rules.ExcludePatterns {
		if matchesPattern(pattern, dep.Name) {
			return false
		}
	}

	if len(g.Rules.Patterns) == 0 {
		return true
	}
	for _, pattern := range g.Rules.Patterns {
		if matchesPattern(pattern, dep.Name) {
			return true
		}
	}
	return false
}

// matchesPattern matches a dependency name against a wildcard pattern,
// case-insensitively.
func matchesPattern(pattern, name string) bool {
	re, err := compilePattern(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(strings.ToLower(name))
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(strings.ToLower(pattern))
	expr := "^" + strings.ReplaceAll(escaped, `\*`, ".*") + "$"
	return regexp.Compile(expr)
}
