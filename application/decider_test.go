package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/groupdate/application"
	"github.com/rios0rios0/groupdate/domain"
	"github.com/rios0rios0/groupdate/test/domain/entitybuilders"
)

// --- helpers ---

func changeOf(deps ...domain.Dependency) domain.Change {
	return domain.Change{
		UpdatedDependencies: deps,
		UpdatedFiles: []domain.DependencyFile{
			{Directory: "/", Path: "go.mod", Content: "module test", Operation: "edit"},
		},
		Grouped: true,
	}
}

func recordOf(pairs ...domain.PRDependency) *domain.PullRequestRecord {
	return &domain.PullRequestRecord{
		GroupName:    "backend",
		Number:       7,
		SourceBranch: "groupdate/backend/abc123",
		Dependencies: pairs,
	}
}

// --- tests ---

func TestDecide(t *testing.T) {
	t.Parallel()

	t.Run("should close with group-empty when change is empty and no members remain", func(t *testing.T) {
		t.Parallel()

		// given
		change := domain.Change{}

		// when
		decision := application.Decide(change, recordOf(domain.PRDependency{Name: "a", Version: "1.1.0"}), 0)

		// then
		assert.Equal(t, application.ActionClose, decision.Action)
		assert.Equal(t, domain.CloseReasonGroupEmpty, decision.CloseReason)
	})

	t.Run("should close with update-no-longer-possible when members remain but nothing is updatable", func(t *testing.T) {
		t.Parallel()

		// given
		change := domain.Change{}

		// when
		decision := application.Decide(change, recordOf(domain.PRDependency{Name: "a", Version: "1.1.0"}), 3)

		// then
		assert.Equal(t, application.ActionClose, decision.Action)
		assert.Equal(t, domain.CloseReasonUpdateNoLongerPossible, decision.CloseReason)
	})

	t.Run("should close even without an existing pull request when the change is empty", func(t *testing.T) {
		t.Parallel()

		// when
		decision := application.Decide(domain.Change{}, nil, 0)

		// then
		assert.Equal(t, application.ActionClose, decision.Action)
		assert.Equal(t, domain.CloseReasonGroupEmpty, decision.CloseReason)
	})

	t.Run("should create when there is a change and no open pull request", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entitybuilders.NewDependencyBuilder().
			WithName("a").WithVersion("1.1.0").
			BuildDependency()

		// when
		decision := application.Decide(changeOf(dep), nil, 1)

		// then
		assert.Equal(t, application.ActionCreate, decision.Action)
		assert.Empty(t, decision.CloseReason)
	})

	t.Run("should update in place when names and versions both match", func(t *testing.T) {
		t.Parallel()

		// given
		builder := entitybuilders.NewDependencyBuilder()
		change := changeOf(
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("a").WithVersion("1.1.0").BuildDependency(),
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("b").WithVersion("2.0.0").BuildDependency(),
		)
		existing := recordOf(
			domain.PRDependency{Name: "b", Version: "2.0.0"},
			domain.PRDependency{Name: "a", Version: "1.1.0"},
		)

		// when
		decision := application.Decide(change, existing, 2)

		// then
		assert.Equal(t, application.ActionUpdateInPlace, decision.Action)
	})

	t.Run("should supersede when names match but a version moved on", func(t *testing.T) {
		t.Parallel()

		// given
		builder := entitybuilders.NewDependencyBuilder()
		change := changeOf(
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("a").WithVersion("1.1.0").BuildDependency(),
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("b").WithVersion("2.1.0").BuildDependency(),
		)
		existing := recordOf(
			domain.PRDependency{Name: "a", Version: "1.1.0"},
			domain.PRDependency{Name: "b", Version: "2.0.0"},
		)

		// when
		decision := application.Decide(change, existing, 2)

		// then
		assert.Equal(t, application.ActionSupersede, decision.Action)
		assert.Empty(t, decision.CloseReason)
	})

	t.Run("should replace when the dependency name set changed", func(t *testing.T) {
		t.Parallel()

		// given
		builder := entitybuilders.NewDependencyBuilder()
		change := changeOf(
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("a").WithVersion("1.1.0").BuildDependency(),
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("c").WithVersion("3.0.0").BuildDependency(),
		)
		existing := recordOf(
			domain.PRDependency{Name: "a", Version: "1.1.0"},
			domain.PRDependency{Name: "b", Version: "2.0.0"},
		)

		// when
		decision := application.Decide(change, existing, 2)

		// then
		assert.Equal(t, application.ActionReplace, decision.Action)
		assert.Equal(t, domain.CloseReasonDependenciesChanged, decision.CloseReason)
	})

	t.Run("should replace when a dependency was dropped from the change", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entitybuilders.NewDependencyBuilder().
			WithName("a").WithVersion("1.1.0").
			BuildDependency()
		existing := recordOf(
			domain.PRDependency{Name: "a", Version: "1.1.0"},
			domain.PRDependency{Name: "b", Version: "2.0.0"},
		)

		// when
		decision := application.Decide(changeOf(dep), existing, 2)

		// then
		assert.Equal(t, application.ActionReplace, decision.Action)
	})

	t.Run("should prefer replace over supersede when both names and versions differ", func(t *testing.T) {
		t.Parallel()

		// given
		builder := entitybuilders.NewDependencyBuilder()
		change := changeOf(
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("a").WithVersion("1.2.0").BuildDependency(),
			builder.Clone().(*entitybuilders.DependencyBuilder).
				WithName("c").WithVersion("3.0.0").BuildDependency(),
		)
		existing := recordOf(
			domain.PRDependency{Name: "a", Version: "1.1.0"},
			domain.PRDependency{Name: "b", Version: "2.0.0"},
		)

		// when
		decision := application.Decide(change, existing, 2)

		// then
		assert.Equal(t, application.ActionReplace, decision.Action)
	})
}

func TestActionString(t *testing.T) {
	t.Parallel()

	t.Run("should name every lifecycle action", func(t *testing.T) {
		t.Parallel()

		// given
		expected := map[application.Action]string{
			application.ActionCreate:        "create",
			application.ActionUpdateInPlace: "update-in-place",
			application.ActionReplace:       "replace",
			application.ActionSupersede:     "supersede",
			application.ActionClose:         "close",
		}

		// when / then
		for action, name := range expected {
			assert.Equal(t, name, action.String())
		}
	})
}
