// Package gateway holds the service gateway registry and the pull-request
// metadata codec shared by the provider implementations.
package gateway

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/groupdate/domain"
)

const (
	metadataOpen  = "<!--groupdate-metadata"
	metadataClose = "-->"
	branchPrefix  = "groupdate"
)

// Metadata is the machine-readable record a gateway embeds in the pull
// request body. It is the source of the existing-PR record the core compares
// changes against.
type Metadata struct {
	Group        string               `yaml:"group"`
	Directory    string               `yaml:"directory,omitempty"`
	Dependencies []MetadataDependency `yaml:"dependencies"`
}

// MetadataDependency is one (name, target version) claim.
type MetadataDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// NewMetadata builds the metadata block for a group's change.
func NewMetadata(groupName string, change domain.Change) Metadata {
	meta := Metadata{Group: groupName}
	for _, dep := range change.UpdatedDependencies {
		if meta.Directory == "" {
			meta.Directory = dep.Directory
		}
		meta.Dependencies = append(meta.Dependencies, MetadataDependency{
			Name:    dep.Name,
			Version: dep.Version,
		})
	}
	return meta
}

// Encode renders the metadata as a YAML block inside an HTML comment, ready
// to append to a pull request body.
func (m Metadata) Encode() (string, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode PR metadata: %w", err)
	}
	return metadataOpen + "\n" + string(out) + metadataClose, nil
}

// Record converts the metadata into the core's read-only PR record shape.
func (m Metadata) Record() domain.PullRequestRecord {
	record := domain.PullRequestRecord{
		GroupName: m.Group,
		Directory: m.Directory,
	}
	for _, dep := range m.Dependencies {
		record.Dependencies = append(record.Dependencies, domain.PRDependency{
			Name:    dep.Name,
			Version: dep.Version,
		})
	}
	return record
}

// ParseMetadata extracts the metadata block from a pull request body.
// The second return is false when the body carries no parseable block.
func ParseMetadata(body string) (Metadata, bool) {
	start := strings.Index(body, metadataOpen)
	if start < 0 {
		return Metadata{}, false
	}
	rest := body[start+len(metadataOpen):]

	end := strings.Index(rest, metadataClose)
	if end < 0 {
		return Metadata{}, false
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return Metadata{}, false
	}
	if meta.Group == "" {
		return Metadata{}, false
	}
	return meta, true
}

// BranchName derives the deterministic source branch for a group's change.
// The digest covers the sorted (name, version) pairs, so an identical change
// set maps to the same branch across runs while any version bump maps to a
// fresh branch, leaving the superseded pull request's branch untouched.
func BranchName(groupName string, change domain.Change) string {
	pairs := make([]string, 0, len(change.UpdatedDependencies))
	for _, dep := range change.UpdatedDependencies {
		pairs = append(pairs, dep.Name+"@"+dep.Version)
	}
	sort.Strings(pairs)

	h := fnv.New64a()
	for _, pair := range pairs {
		_, _ = h.Write([]byte(pair))
		_, _ = h.Write([]byte{'\n'})
	}

	slug := strings.ReplaceAll(strings.ToLower(groupName), " ", "-")
	return fmt.Sprintf("%s/%s/%x", branchPrefix, slug, h.Sum64())
}

// CommitMessage renders the commit message for a group's change.
func CommitMessage(groupName string, change domain.Change) string {
	deps := change.UpdatedDependencies
	if len(deps) == 1 {
		return fmt.Sprintf(
			"chore(deps): upgrade %s from %s to %s",
			deps[0].Name, deps[0].PreviousVersion, deps[0].Version,
		)
	}
	return fmt.Sprintf(
		"chore(deps): upgrade %d dependencies in the %s group",
		len(deps), groupName,
	)
}

// PullRequestTitle renders the pull request title for a group's change.
func PullRequestTitle(groupName string, change domain.Change) string {
	deps := change.UpdatedDependencies
	if len(deps) == 1 {
		return fmt.Sprintf(
			"chore(deps): upgrade %s to %s (%s group)",
			deps[0].Name, deps[0].Version, groupName,
		)
	}
	return fmt.Sprintf(
		"chore(deps): upgrade %d dependencies (%s group)",
		len(deps), groupName,
	)
}

// PullRequestDescription renders the pull request body: a summary table for
// humans followed by the metadata block for the engine.
func PullRequestDescription(groupName string, change domain.Change) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb,
		"This PR upgrades the following dependencies of the **%s** group:\n\n",
		groupName,
	)
	sb.WriteString("| Dependency | Current Version | New Version | Directory |\n")
	sb.WriteString("|------------|-----------------|-------------|-----------|\n")
	for _, dep := range change.UpdatedDependencies {
		fmt.Fprintf(&sb,
			"| %s | %s | %s | %s |\n",
			dep.Name, dep.PreviousVersion, dep.Version, dep.Directory,
		)
	}
	sb.WriteString("\n---\n")
	sb.WriteString("*This PR was automatically created by [groupdate](https://github.com/rios0rios0/groupdate)*\n\n")

	meta, err := NewMetadata(groupName, change).Encode()
	if err != nil {
		return "", err
	}
	sb.WriteString(meta)
	sb.WriteString("\n")

	return sb.String(), nil
}

// CloseComment renders the explanatory comment left when a pull request is
// closed by the engine.
func CloseComment(reason domain.CloseReason, dependencyNames []string) string {
	switch reason {
	case domain.CloseReasonGroupEmpty:
		return "Closing this PR: its dependency group no longer has any eligible members."
	case domain.CloseReasonUpdateNoLongerPossible:
		return "Closing this PR: none of its dependencies can currently be updated."
	case domain.CloseReasonDependenciesChanged:
		return fmt.Sprintf(
			"Closing this PR: the set of dependencies in this group changed (was: %s). A replacement PR follows.",
			strings.Join(dependencyNames, ", "),
		)
	default:
		return fmt.Sprintf("Closing this PR (%s).", reason)
	}
}
