package github //nolint:testpackage // tests unexported functions

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
			file:     domain.DependencyFile{Directory: "/services/api", Path: "go.mod"},
			expected: "services/api/go.mod",
		},
		{
			name:     "should handle an empty directory",
			file:     domain.DependencyFile{Directory: "", Path: "main.tf"},
			expected: "main.tf",
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
			source:   "git::https://github.com/acme/terraform-networking.git",
			expected: "terraform-networking",
		},
		{
			name:     "should handle sources without a suffix",
			source:   "https://github.com/acme/terraform-storage",
			expected: "terraform-storage",
		},
		{
			name:     "should take the last segment of ssh-style sources",
			source:   "git@github.com:acme/terraform-dns.git",
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

func TestTagVersionSorting(t *testing.T) {
	t.Parallel()

	t.Run("should sort semver tags descending", func(t *testing.T) {
		t.Parallel()

		// given
		tags := []string{"v1.0.0", "v2.1.0", "v1.5.0", "v2.0.0"}

		// when
		sortVersionsDescending(tags)

		// then
		assert.Equal(t, []string{"v2.1.0", "v2.0.0", "v1.5.0", "v1.0.0"}, tags)
	})

	t.Run("should handle tags without v prefix", func(t *testing.T) {
		t.Parallel()

		// given
		tags := []string{"1.0.0", "2.0.0", "1.5.0"}

		// when
		sortVersionsDescending(tags)

		// then
		assert.Equal(t, []string{"2.0.0", "1.5.0", "1.0.0"}, tags)
	})
}
