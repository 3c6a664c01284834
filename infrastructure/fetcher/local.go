// Package fetcher provides file fetchers feeding the job snapshot.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/groupdate/domain"
)

// LocalFetcher reads manifest files from a checked-out repository on disk.
// The base commit SHA is taken from the checkout's HEAD via go-git.
type LocalFetcher struct {
	root string
}

// NewLocalFetcher creates a fetcher rooted at a local checkout.
func NewLocalFetcher(root string) *LocalFetcher {
	return &LocalFetcher{root: root}
}

// Fetch reads the manifest files of one project directory. The directory is
// job-relative ("/" for the repository root).
func (f *LocalFetcher) Fetch(
	ctx context.Context,
	directory string,
) ([]domain.DependencyFile, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	dirPath := filepath.Join(f.root, strings.TrimPrefix(directory, "/"))
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read directory %q: %w", dirPath, err)
	}

	var files []domain.DependencyFile
	for _, entry := range entries {
		if entry.IsDir() || !isManifest(entry.Name()) {
			continue
		}

		content, readErr := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if readErr != nil {
			return nil, "", fmt.Errorf("failed to read %q: %w", entry.Name(), readErr)
		}

		files = append(files, domain.DependencyFile{
			Directory: directory,
			Path:      entry.Name(),
			Content:   string(content),
			Operation: "edit",
		})
	}

	return files, f.headSHA(), nil
}

// headSHA resolves the checkout's HEAD commit. A missing or broken git
// repository degrades to an empty SHA rather than failing the fetch.
func (f *LocalFetcher) headSHA() string {
	repo, err := git.PlainOpen(f.root)
	if err != nil {
		logger.Warnf("not a git repository at %q: %v", f.root, err)
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		logger.Warnf("failed to resolve HEAD at %q: %v", f.root, err)
		return ""
	}

	return head.Hash().String()
}

func isManifest(name string) bool {
	return name == "go.mod" || strings.HasSuffix(name, ".tf")
}
