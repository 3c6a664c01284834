package gitlab

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/groupdate/domain"
)

// TagSource lists a git-sourced dependency's project tags as candidate
// versions, sorted by semantic version descending.
type TagSource struct {
	client *gl.Client
	owner  string
}

// NewTagSource creates a tag-based version source for projects of the given
// group or namespace.
func NewTagSource(token, owner string) *TagSource {
	client, err := gl.NewClient(token)
	if err != nil {
		client = nil
	}
	return &TagSource{client: client, owner: owner}
}

// Versions lists the tags of the project named by the dependency source.
func (s *TagSource) Versions(
	ctx context.Context,
	dep domain.Dependency,
) ([]string, error) {
	if s.client == nil {
		return nil, errClientNotInitialized
	}

	repoName := sourceRepoName(dep.Source)
	if repoName == "" {
		return nil, fmt.Errorf("cannot derive project from source %q", dep.Source)
	}
	pid := s.owner + "/" + repoName

	var versions []string
	opts := &gl.ListTagsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}

	for {
		tags, resp, err := s.client.Tags.ListTags(pid, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list tags of %q: %w", pid, err)
		}

		for _, tag := range tags {
			versions = append(versions, tag.Name)
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
