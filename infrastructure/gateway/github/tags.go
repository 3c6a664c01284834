package github

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/groupdate/domain"
)

// TagSource lists a git-sourced dependency's repository tags as candidate
// versions, sorted by semantic version descending. It serves as the version
// source for ecosystems pinned to git refs.
type TagSource struct {
	client *gh.Client
	owner  string
}

// NewTagSource creates a tag-based version source for repositories of the
// given owner.
func NewTagSource(token, owner string) *TagSource {
	return &TagSource{
		client: gh.NewClient(nil).WithAuthToken(token),
		owner:  owner,
	}
}

// Versions lists the tags of the repository named by the dependency source.
func (s *TagSource) Versions(
	ctx context.Context,
	dep domain.Dependency,
) ([]string, error) {
	repoName := sourceRepoName(dep.Source)
	if repoName == "" {
		return nil, fmt.Errorf("cannot derive repository from source %q", dep.Source)
	}

	var versions []string
	opts := &gh.ListOptions{PerPage: perPage}

	for {
		tags, resp, err := s.client.Repositories.ListTags(ctx, s.owner, repoName, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list tags of %q: %w", repoName, err)
		}

		for _, tag := range tags {
			versions = append(versions, tag.GetName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	sortVersionsDescending(versions)
	return versions, nil
}

func sourceRepoName(source string) string {
	trimmed := strings.TrimSuffix(source, ".git")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// --- version sorting ---

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
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
