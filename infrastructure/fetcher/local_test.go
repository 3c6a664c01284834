package fetcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/groupdate/infrastructure/fetcher"
)

// --- helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// --- tests ---

func TestLocalFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("should fetch manifest files from the repository root", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, root, "go.mod", "module github.com/acme/platform")
		writeFile(t, root, "main.tf", `module "x" {}`)
		writeFile(t, root, "main.go", "package main")
		writeFile(t, root, "README.md", "docs")

		// when
		files, sha, err := fetcher.NewLocalFetcher(root).Fetch(context.Background(), "/")

		// then
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Empty(t, sha, "a plain directory has no HEAD to report")

		paths := []string{files[0].Path, files[1].Path}
		assert.ElementsMatch(t, []string{"go.mod", "main.tf"}, paths)
		for _, file := range files {
			assert.Equal(t, "/", file.Directory)
			assert.NotEmpty(t, file.Content)
		}
	})

	t.Run("should fetch from a nested project directory", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		sub := filepath.Join(root, "services", "api")
		require.NoError(t, os.MkdirAll(sub, 0o750))
		writeFile(t, sub, "go.mod", "module github.com/acme/platform/services/api")

		// when
		files, _, err := fetcher.NewLocalFetcher(root).Fetch(
			context.Background(), "/services/api",
		)

		// then
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "/services/api", files[0].Directory)
		assert.Equal(t, "go.mod", files[0].Path)
	})

	t.Run("should fail for a directory that does not exist", func(t *testing.T) {
		t.Parallel()

		// when
		_, _, err := fetcher.NewLocalFetcher(t.TempDir()).Fetch(
			context.Background(), "/missing",
		)

		// then
		require.Error(t, err)
	})

	t.Run("should honor context cancellation", func(t *testing.T) {
		t.Parallel()

		// given
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		_, _, err := fetcher.NewLocalFetcher(t.TempDir()).Fetch(ctx, "/")

		// then
		require.Error(t, err)
	})
}
