package gitlab //nolint:testpackage // tests unexported functions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/groupdate/domain"
)

func TestRepoPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     domain.DependencyFile
		expected string
	}{
		{
			name:     "should keep root files at the repository root",
			file:     domain.DependencyFile{Directory: "/", Path: "go.mod"},
			expected: "go.mod",
		},
		{
			name:     "should prefix nested directories",
			file:     domain.DependencyFile{Directory: "/infra/network", Path: "main.tf"},
			expected: "infra/network/main.tf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			result := repoPath(tt.file)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSourceRepoName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "should strip the git suffix",
			source:   "git@gitlab.com:acme/terraform-storage.git",
			expected: "terraform-storage",
		},
		{
			name:     "should take the last path segment",
			source:   "https://gitlab.com/acme/infra/terraform-dns",
			expected: "terraform-dns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			result := sourceRepoName(tt.source)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestVersionSorting(t *testing.T) {
	t.Parallel()

	t.Run("should sort semver tags descending", func(t *testing.T) {
		t.Parallel()

		// given
		tags := []string{"1.0.0", "2.1.0", "v1.5.0"}

		// when
		sortVersionsDescending(tags)

		// then
		assert.Equal(t, []string{"2.1.0", "v1.5.0", "1.0.0"}, tags)
	})
}
