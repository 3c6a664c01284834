package gomod_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/groupdate/domain"
	"github.com/rios0rios0/groupdate/infrastructure/ecosystem/gomod"
	"github.com/rios0rios0/groupdate/test/domain/entitybuilders"
)

const sampleGoMod = `module github.com/acme/platform

go 1.22

require (
	github.com/sirupsen/logrus v1.9.0
	github.com/spf13/cobra v1.8.0
)

require golang.org/x/sys v0.15.0 // indirect
`

func modFile(content string) domain.DependencyFile {
	return domain.DependencyFile{Directory: "/", Path: "go.mod", Content: content}
}

func TestGoModParser(t *testing.T) {
	t.Parallel()

	t.Run("should parse direct and indirect requires", func(t *testing.T) {
		t.Parallel()

		// given
		parser := gomod.New().Parser()

		// when
		deps, err := parser.Parse([]domain.DependencyFile{modFile(sampleGoMod)})

		// then
		require.NoError(t, err)
		require.Len(t, deps, 3)

		assert.Equal(t, "github.com/sirupsen/logrus", deps[0].Name)
		assert.Equal(t, "v1.9.0", deps[0].Version)
		assert.Equal(t, "v1.9.0", deps[0].Requirement)
		assert.True(t, deps[0].TopLevel)
		assert.Equal(t, "gomod", deps[0].Ecosystem)
		assert.Equal(t, "/", deps[0].Directory)

		assert.Equal(t, "golang.org/x/sys", deps[2].Name)
		assert.False(t, deps[2].TopLevel)
		assert.Empty(t, deps[2].Requirement)
	})

	t.Run("should skip files that are not go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		parser := gomod.New().Parser()
		files := []domain.DependencyFile{
			{Directory: "/", Path: "go.sum", Content: "checksums"},
			{Directory: "/", Path: "main.tf", Content: "terraform"},
		}

		// when
		deps, err := parser.Parse(files)

		// then
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("should fail on an unparseable go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		parser := gomod.New().Parser()

		// when
		_, err := parser.Parse([]domain.DependencyFile{modFile("require {{{")})

		// then
		require.Error(t, err)
	})
}

func TestGoModUpdater(t *testing.T) {
	t.Parallel()

	t.Run("should bump a require to the target version", func(t *testing.T) {
		t.Parallel()

		// given
		updater := gomod.New().Updater()
		dep := entitybuilders.NewDependencyBuilder().
			WithName("github.com/spf13/cobra").
			WithPreviousVersion("v1.8.0").WithVersion("v1.9.0").
			BuildDependency()

		// when
		changed, err := updater.UpdateFiles(
			context.Background(),
			[]domain.Dependency{dep},
			[]domain.DependencyFile{modFile(sampleGoMod)},
		)

		// then
		require.NoError(t, err)
		require.Len(t, changed, 1)
		assert.Equal(t, "go.mod", changed[0].Path)
		assert.Equal(t, "edit", changed[0].Operation)
		assert.Contains(t, changed[0].Content, "github.com/spf13/cobra v1.9.0")
		assert.NotContains(t, changed[0].Content, "github.com/spf13/cobra v1.8.0")
		assert.Contains(t, changed[0].Content, "github.com/sirupsen/logrus v1.9.0",
			"unrelated requires must stay untouched")
	})

	t.Run("should return nothing when no dependency is declared in the file", func(t *testing.T) {
		t.Parallel()

		// given
		updater := gomod.New().Updater()
		dep := entitybuilders.NewDependencyBuilder().
			WithName("github.com/absent/module").WithVersion("v2.0.0").
			BuildDependency()

		// when
		changed, err := updater.UpdateFiles(
			context.Background(),
			[]domain.Dependency{dep},
			[]domain.DependencyFile{modFile(sampleGoMod)},
		)

		// then
		require.NoError(t, err)
		assert.Empty(t, changed)
	})

	t.Run("should update every go.mod declaring the dependency", func(t *testing.T) {
		t.Parallel()

		// given
		updater := gomod.New().Updater()
		dep := entitybuilders.NewDependencyBuilder().
			WithName("github.com/sirupsen/logrus").WithVersion("v1.9.3").
			BuildDependency()

		api := domain.DependencyFile{Directory: "/api", Path: "go.mod", Content: sampleGoMod}
		worker := domain.DependencyFile{Directory: "/worker", Path: "go.mod", Content: sampleGoMod}

		// when
		changed, err := updater.UpdateFiles(
			context.Background(),
			[]domain.Dependency{dep},
			[]domain.DependencyFile{api, worker},
		)

		// then
		require.NoError(t, err)
		require.Len(t, changed, 2)
		assert.Equal(t, "/api", changed[0].Directory)
		assert.Equal(t, "/worker", changed[1].Directory)
		for _, file := range changed {
			assert.Contains(t, file.Content, "github.com/sirupsen/logrus v1.9.3")
		}
	})
}
