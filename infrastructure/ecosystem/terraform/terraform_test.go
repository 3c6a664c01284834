package terraform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/groupdate/domain"
	"github.com/rios0rios0/groupdate/infrastructure/ecosystem/terraform"
	"github.com/rios0rios0/groupdate/test/domain/entitybuilders"
)

const sampleTf = `
module "networking" {
  source = "git::https://github.com/acme/terraform-networking.git?ref=v1.0.0"

  vpc_cidr = "10.0.0.0/16"
}

module "local_helpers" {
  source = "./modules/helpers"
}

module "storage" {
  source = "git@gitlab.com:acme/terraform-storage.git?ref=2.3.0"
}
`

func tfFile(content string) domain.DependencyFile {
	return domain.DependencyFile{Directory: "/infra", Path: "main.tf", Content: content}
}

func TestTerraformParser(t *testing.T) {
	t.Parallel()

	t.Run("should parse git-sourced modules with a ref pin", func(t *testing.T) {
		t.Parallel()

		// given
		parser := terraform.New().Parser()

		// when
		deps, err := parser.Parse([]domain.DependencyFile{tfFile(sampleTf)})

		// then
		require.NoError(t, err)
		require.Len(t, deps, 2, "local modules without refs are not dependencies")

		assert.Equal(t, "networking", deps[0].Name)
		assert.Equal(t, "v1.0.0", deps[0].Version)
		assert.Equal(t, "v1.0.0", deps[0].Requirement)
		assert.True(t, deps[0].TopLevel)
		assert.Equal(t, "terraform", deps[0].Ecosystem)
		assert.Equal(t,
			"git::https://github.com/acme/terraform-networking.git", deps[0].Source)
		assert.Equal(t, "/infra", deps[0].Directory)

		assert.Equal(t, "storage", deps[1].Name)
		assert.Equal(t, "2.3.0", deps[1].Version)
	})

	t.Run("should skip non-terraform files", func(t *testing.T) {
		t.Parallel()

		// given
		parser := terraform.New().Parser()
		files := []domain.DependencyFile{
			{Directory: "/", Path: "go.mod", Content: "module x"},
			{Directory: "/", Path: "README.md", Content: sampleTf},
		}

		// when
		deps, err := parser.Parse(files)

		// then
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("should fall back to scanning when the file is not clean HCL", func(t *testing.T) {
		t.Parallel()

		// given
		broken := sampleTf + "\nthis is not valid hcl {{{"
		parser := terraform.New().Parser()

		// when
		deps, err := parser.Parse([]domain.DependencyFile{tfFile(broken)})

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, deps)
		assert.Equal(t, "networking", deps[0].Name)
	})

	t.Run("should ignore git modules without a version ref", func(t *testing.T) {
		t.Parallel()

		// given
		unpinned := `
module "floating" {
  source = "git::https://github.com/acme/terraform-floating.git"
}
`
		parser := terraform.New().Parser()

		// when
		deps, err := parser.Parse([]domain.DependencyFile{tfFile(unpinned)})

		// then
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}

func TestTerraformUpdater(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite the ref pin to the target version", func(t *testing.T) {
		t.Parallel()

		// given
		updater := terraform.New().Updater()
		dep := entitybuilders.NewDependencyBuilder().
			WithName("networking").WithEcosystem("terraform").
			WithSource("git::https://github.com/acme/terraform-networking.git").
			WithPreviousVersion("v1.0.0").WithVersion("v2.0.0").
			BuildDependency()

		// when
		changed, err := updater.UpdateFiles(
			context.Background(),
			[]domain.Dependency{dep},
			[]domain.DependencyFile{tfFile(sampleTf)},
		)

		// then
		require.NoError(t, err)
		require.Len(t, changed, 1)
		assert.Equal(t, "edit", changed[0].Operation)
		assert.Contains(t, changed[0].Content, "terraform-networking.git?ref=v2.0.0")
		assert.NotContains(t, changed[0].Content, "terraform-networking.git?ref=v1.0.0")
		assert.Contains(t, changed[0].Content, "terraform-storage.git?ref=2.3.0",
			"other modules must stay untouched")
	})

	t.Run("should leave files alone when the dependency is not referenced", func(t *testing.T) {
		t.Parallel()

		// given
		updater := terraform.New().Updater()
		dep := entitybuilders.NewDependencyBuilder().
			WithName("absent").WithEcosystem("terraform").
			WithSource("git::https://github.com/acme/terraform-absent.git").
			WithPreviousVersion("v1.0.0").WithVersion("v2.0.0").
			BuildDependency()

		// when
		changed, err := updater.UpdateFiles(
			context.Background(),
			[]domain.Dependency{dep},
			[]domain.DependencyFile{tfFile(sampleTf)},
		)

		// then
		require.NoError(t, err)
		assert.Empty(t, changed)
	})

	t.Run("should skip dependencies without a previous version", func(t *testing.T) {
		t.Parallel()

		// given
		updater := terraform.New().Updater()
		dep := entitybuilders.NewDependencyBuilder().
			WithName("networking").WithEcosystem("terraform").
			WithSource("git::https://github.com/acme/terraform-networking.git").
			WithVersion("v2.0.0").
			BuildDependency()

		// when
		changed, err := updater.UpdateFiles(
			context.Background(),
			[]domain.Dependency{dep},
			[]domain.DependencyFile{tfFile(sampleTf)},
		)

		// then
		require.NoError(t, err)
		assert.Empty(t, changed)
	})
}
