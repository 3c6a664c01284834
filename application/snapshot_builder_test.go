package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/groupdate/application"
	"github.com/rios0rios0/groupdate/domain"
	testdoubles "github.com/rios0rios0/groupdate/test"
	"github.com/rios0rios0/groupdate/test/domain/entitybuilders"
)

func TestBuildSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("should fetch and parse every configured directory in order", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		builder := entitybuilders.NewDependencyBuilder()

		fetcher := &testdoubles.StubFetcher{
			FilesByDir: map[string][]domain.DependencyFile{
				"/api":    {{Directory: "/api", Path: "go.mod", Content: "api"}},
				"/worker": {{Directory: "/worker", Path: "go.mod", Content: "worker"}},
			},
			SHA: "abc123",
		}
		parser := &testdoubles.StubParser{
			DepsByDir: map[string][]domain.Dependency{
				"/api": {builder.Clone().(*entitybuilders.DependencyBuilder).
					WithName("a").WithDirectory("/api").BuildDependency()},
				"/worker": {builder.Clone().(*entitybuilders.DependencyBuilder).
					WithName("b").WithDirectory("/worker").BuildDependency()},
			},
		}

		// when
		snapshot, err := application.BuildSnapshot(
			ctx, []string{"/api", "/worker"}, nil, fetcher, parser,
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"/api", "/worker"}, fetcher.FetchedDirs)
		assert.Equal(t, []string{"/api", "/worker"}, snapshot.Directories())
		assert.Equal(t, "abc123", snapshot.BaseSHA())
		assert.Equal(t, "/api", snapshot.CurrentDirectory())
		require.Len(t, snapshot.CurrentDependencies(), 1)
		assert.Equal(t, "a", snapshot.CurrentDependencies()[0].Name)
	})

	t.Run("should default to the repository root when no directory is configured", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		fetcher := &testdoubles.StubFetcher{SHA: "abc123"}
		parser := &testdoubles.StubParser{}

		// when
		snapshot, err := application.BuildSnapshot(ctx, nil, nil, fetcher, parser)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"/"}, fetcher.FetchedDirs)
		assert.Equal(t, "/", snapshot.CurrentDirectory())
	})

	t.Run("should fail when fetching a directory fails", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		fetcher := &testdoubles.StubFetcher{Err: errors.New("checkout missing")}

		// when
		snapshot, err := application.BuildSnapshot(
			ctx, []string{"/"}, nil, fetcher, &testdoubles.StubParser{},
		)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checkout missing")
		assert.Nil(t, snapshot)
	})

	t.Run("should fail when parsing fails", func(t *testing.T) {
		t.Parallel()

		// given
		ctx := context.Background()
		fetcher := &testdoubles.StubFetcher{
			FilesByDir: map[string][]domain.DependencyFile{
				"/": {{Directory: "/", Path: "go.mod", Content: "broken"}},
			},
		}
		parser := &testdoubles.StubParser{Err: errors.New("syntax error")}

		// when
		snapshot, err := application.BuildSnapshot(
			ctx, []string{"/"}, nil, fetcher, parser,
		)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "syntax error")
		assert.Nil(t, snapshot)
	})
}
