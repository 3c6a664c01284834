package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/groupdate/domain"
)

// ChangeCompiler drives the update checker and file updater across every
// unhandled, group-member dependency in one directory, producing that
// directory's change.
type ChangeCompiler struct {
	snapshot *domain.Snapshot
	checkers domain.CheckerFactory
	updater  domain.FileUpdater
}

// NewChangeCompiler creates a compiler bound to one job snapshot.
func NewChangeCompiler(
	snapshot *domain.Snapshot,
	checkers domain.CheckerFactory,
	updater domain.FileUpdater,
) *ChangeCompiler {
	return &ChangeCompiler{
		snapshot: snapshot,
		checkers: checkers,
		updater:  updater,
	}
}

// CompileDirectory computes the group's change for the snapshot's current
// directory. File updates are applied cumulatively: each dependency's update
// runs against the files as updated so far, so the resulting change carries
// one consistent set of file contents. Any collaborator failure aborts the
// compilation; partial per-directory state is never returned.
func (c *ChangeCompiler) CompileDirectory(
	ctx context.Context,
	group domain.DependencyGroup,
) (domain.Change, error) {
	dir := c.snapshot.CurrentDirectory()
	change := domain.Change{Grouped: true}

	// Working file set, updated as each dependency lands.
	working := make([]domain.DependencyFile, len(c.snapshot.CurrentFiles()))
	copy(working, c.snapshot.CurrentFiles())

	touched := make(map[string]int) // file key -> index in change.UpdatedFiles

	for _, dep := range c.snapshot.CurrentDependencies() {
		if !group.Matches(dep) || c.snapshot.IsHandled(dep.Name) {
			continue
		}

		updated, files, err := c.compileDependency(ctx, dep, working)
		if err != nil {
			return domain.Change{}, fmt.Errorf(
				"failed to compile %q in %q: %w", dep.Name, dir, err,
			)
		}
		if len(updated) == 0 {
			continue
		}

		for i := range updated {
			updated[i].Directory = dir
		}
		change.UpdatedDependencies = append(change.UpdatedDependencies, updated...)

		for _, file := range files {
			file.Directory = dir
			working = replaceFile(working, file)
			if idx, ok := touched[file.Key()]; ok {
				change.UpdatedFiles[idx] = file
				continue
			}
			touched[file.Key()] = len(change.UpdatedFiles)
			change.UpdatedFiles = append(change.UpdatedFiles, file)
		}
	}

	return change, nil
}

// compileDependency queries the checker for one dependency and, when an
// update is achievable, runs the file updater against the working file set.
// A nil dependency slice means "skip": up to date, or no update possible.
func (c *ChangeCompiler) compileDependency(
	ctx context.Context,
	dep domain.Dependency,
	working []domain.DependencyFile,
) ([]domain.Dependency, []domain.DependencyFile, error) {
	checker, err := c.checkers(ctx, dep)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build checker: %w", err)
	}

	upToDate, err := checker.IsUpToDate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("up-to-date check failed: %w", err)
	}
	if upToDate {
		logger.Debugf("[%s] %s is up to date", dep.Ecosystem, dep.Name)
		return nil, nil, nil
	}

	level, err := requirementsToUnlock(ctx, checker)
	if err != nil {
		return nil, nil, err
	}
	if level == domain.EscalationUpdateNotPossible {
		logger.Infof("[%s] no update possible for %s", dep.Ecosystem, dep.Name)
		return nil, nil, nil
	}

	logger.Debugf(
		"[%s] updating %s (requirements to unlock: %s)",
		dep.Ecosystem, dep.Name, level,
	)

	updated, err := checker.UpdatedDependencies(ctx, level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve updated dependencies: %w", err)
	}
	if len(updated) == 0 {
		return nil, nil, nil
	}

	files, err := c.updater.UpdateFiles(ctx, updated, working)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update files: %w", err)
	}

	return updated, files, nil
}

// requirementsToUnlock picks the least invasive escalation strategy,
// evaluated in strict order, first match wins: touching only the dependency
// itself is always preferred over touching its whole requirement graph.
func requirementsToUnlock(
	ctx context.Context,
	checker domain.UpdateChecker,
) (domain.EscalationLevel, error) {
	unlockable, err := checker.RequirementsUnlockable(ctx)
	if err != nil {
		return domain.EscalationUpdateNotPossible,
			fmt.Errorf("requirements check failed: %w", err)
	}

	if !unlockable {
		ok, canErr := checker.CanUpdate(ctx, domain.EscalationNone)
		if canErr != nil {
			return domain.EscalationUpdateNotPossible,
				fmt.Errorf("update check failed: %w", canErr)
		}
		if ok {
			return domain.EscalationNone, nil
		}
		return domain.EscalationUpdateNotPossible, nil
	}

	for _, level := range []domain.EscalationLevel{
		domain.EscalationOwn,
		domain.EscalationAll,
	} {
		ok, canErr := checker.CanUpdate(ctx, level)
		if canErr != nil {
			return domain.EscalationUpdateNotPossible,
				fmt.Errorf("update check failed: %w", canErr)
		}
		if ok {
			return level, nil
		}
	}

	return domain.EscalationUpdateNotPossible, nil
}

// replaceFile swaps the matching (directory, path) entry of the working set,
// appending when the file is new.
func replaceFile(
	files []domain.DependencyFile,
	file domain.DependencyFile,
) []domain.DependencyFile {
	for i := range files {
		if files[i].Key() == file.Key() {
			files[i] = file
			return files
		}
	}
	return append(files, file)
}
