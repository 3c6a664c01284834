package application

import (
	"github.com/rios0rios0/groupdate/domain"
)

// MergeChanges combines one change per directory (in directory iteration
// order) into a single aggregate change.
//
// Dependencies are concatenated across directories and de-duplicated by name;
// the first occurrence's target version wins, so the first directory to touch
// a dependency determines what the pull request reports for it. Files are
// keyed by (directory, path) and never collapsed across directories; if the
// same key is produced more than once the last-produced content wins, while
// the file keeps its first-occurrence position.
func MergeChanges(changes []domain.Change) domain.Change {
	if len(changes) == 1 {
		return changes[0]
	}

	var merged domain.Change

	seenDeps := make(map[string]struct{})
	fileIndex := make(map[string]int)

	for _, change := range changes {
		merged.Grouped = merged.Grouped || change.Grouped

		for _, dep := range change.UpdatedDependencies {
			if _, ok := seenDeps[dep.Name]; ok {
				continue
			}
			seenDeps[dep.Name] = struct{}{}
			merged.UpdatedDependencies = append(merged.UpdatedDependencies, dep)
		}

		for _, file := range change.UpdatedFiles {
			if idx, ok := fileIndex[file.Key()]; ok {
				merged.UpdatedFiles[idx] = file
				continue
			}
			fileIndex[file.Key()] = len(merged.UpdatedFiles)
			merged.UpdatedFiles = append(merged.UpdatedFiles, file)
		}
	}

	return merged
}
