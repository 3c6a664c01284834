package domain

// Snapshot holds the job-scoped view of all dependencies across one or more
// directories, the configured dependency groups, and the set of dependency
// names already claimed in this run. It is built once from fetched and parsed
// files at job start, mutated only through the handled set and the directory
// cursor, and discarded at job end, never persisted. A Snapshot is not safe
// for concurrent use and must not be shared across concurrent refreshes.
type Snapshot struct {
	baseSHA     string
	groups      []DependencyGroup
	directories []string
	depsByDir   map[string][]Dependency
	filesByDir  map[string][]DependencyFile
	currentDir  string
	handled     map[string]struct{}
}

// NewSnapshot creates an empty snapshot with the configured groups in their
// declared order.
func NewSnapshot(groups []DependencyGroup) *Snapshot {
	return &Snapshot{
		groups:     groups,
		depsByDir:  make(map[string][]Dependency),
		filesByDir: make(map[string][]DependencyFile),
		handled:    make(map[string]struct{}),
	}
}

// AddDirectory records the parsed dependencies and fetched files of one
// directory. Directories keep their insertion order; adding the same
// directory twice replaces its contents.
func (s *Snapshot) AddDirectory(dir string, deps []Dependency, files []DependencyFile) {
	if _, ok := s.depsByDir[dir]; !ok {
		s.directories = append(s.directories, dir)
	}
	s.depsByDir[dir] = deps
	s.filesByDir[dir] = files
	if s.currentDir == "" {
		s.currentDir = dir
	}
}

// SetBaseSHA records the base commit the job's files were fetched at.
func (s *Snapshot) SetBaseSHA(sha string) { s.baseSHA = sha }

// BaseSHA returns the base commit the job's files were fetched at.
func (s *Snapshot) BaseSHA() string { return s.baseSHA }

// Groups returns the configured groups in stable declared order.
func (s *Snapshot) Groups() []DependencyGroup {
	groups := make([]DependencyGroup, len(s.groups))
	copy(groups, s.groups)
	return groups
}

// GroupByName looks up a configured group by exact name.
func (s *Snapshot) GroupByName(name string) (DependencyGroup, bool) {
	for _, g := range s.groups {
		if g.Name == name {
			return g, true
		}
	}
	return DependencyGroup{}, false
}

// Directories returns the job's directories in declared order.
func (s *Snapshot) Directories() []string {
	dirs := make([]string, len(s.directories))
	copy(dirs, s.directories)
	return dirs
}

// SetCurrentDirectory moves the directory cursor used while iterating
// multi-directory projects.
func (s *Snapshot) SetCurrentDirectory(dir string) { s.currentDir = dir }

// CurrentDirectory returns the directory cursor.
func (s *Snapshot) CurrentDirectory() string { return s.currentDir }

// CurrentDependencies returns the dependencies of the current directory.
func (s *Snapshot) CurrentDependencies() []Dependency {
	return s.depsByDir[s.currentDir]
}

// CurrentFiles returns the fetched files of the current directory.
func (s *Snapshot) CurrentFiles() []DependencyFile {
	return s.filesByDir[s.currentDir]
}

// MarkHandled adds dependency names to the handled set. Adding an
// already-present name is a no-op; the set only grows during a run.
func (s *Snapshot) MarkHandled(names ...string) {
	for _, name := range names {
		s.handled[name] = struct{}{}
	}
}

// IsHandled reports whether a dependency name has been claimed this run.
// Membership is checked by exact name equality.
func (s *Snapshot) IsHandled(name string) bool {
	_, ok := s.handled[name]
	return ok
}

// EligibleMembers counts, across all directories, the dependencies that match
// the group's predicate and have not been claimed this run.
func (s *Snapshot) EligibleMembers(group DependencyGroup) int {
	count := 0
	for _, dir := range s.directories {
		for _, dep := range s.depsByDir[dir] {
			if group.Matches(dep) && !s.IsHandled(dep.Name) {
				count++
			}
		}
	}
	return count
}
