package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/groupdate/domain"
)

// BuildSnapshot fetches and parses every configured directory into a fresh
// job snapshot. Directories keep their configured order; a single implicit
// root directory is assumed when none is configured. The base commit SHA is
// taken from the first directory that reports one.
func BuildSnapshot(
	ctx context.Context,
	directories []string,
	groups []domain.DependencyGroup,
	fetcher domain.FileFetcher,
	parser domain.DependencyParser,
) (*domain.Snapshot, error) {
	if len(directories) == 0 {
		directories = []string{"/"}
	}

	snapshot := domain.NewSnapshot(groups)

	for _, dir := range directories {
		files, baseSHA, err := fetcher.Fetch(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch files for %q: %w", dir, err)
		}

		deps, err := parser.Parse(files)
		if err != nil {
			return nil, fmt.Errorf("failed to parse dependencies in %q: %w", dir, err)
		}

		logger.Debugf("snapshot: %q has %d dependencies in %d files", dir, len(deps), len(files))

		snapshot.AddDirectory(dir, deps, files)
		if snapshot.BaseSHA() == "" && baseSHA != "" {
			snapshot.SetBaseSHA(baseSHA)
		}
	}

	snapshot.SetCurrentDirectory(directories[0])
	return snapshot, nil
}
