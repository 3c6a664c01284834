// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations, no mock frameworks.
package testdoubles

import (
	"context"
	"fmt"

	"github.com/rios0rios0/groupdate/domain"
)

// ---------------------------------------------------------------------------
// SpyChecker
// ---------------------------------------------------------------------------

// SpyChecker implements domain.UpdateChecker as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyChecker struct {
	// --- IsUpToDate ---
	UpToDate    bool
	UpToDateErr error

	// --- RequirementsUnlockable ---
	Unlockable    bool
	UnlockableErr error

	// --- CanUpdate ---
	CanUpdateLevels map[domain.EscalationLevel]bool
	CanUpdateErr    error
	// spy: levels queried, in order
	QueriedLevels []domain.EscalationLevel

	// --- UpdatedDependencies ---
	Updated    []domain.Dependency
	UpdatedErr error
	// spy: level the update was resolved at
	ResolvedLevels []domain.EscalationLevel
}

var _ domain.UpdateChecker = (*SpyChecker)(nil)

func (c *SpyChecker) IsUpToDate(_ context.Context) (bool, error) {
	return c.UpToDate, c.UpToDateErr
}

func (c *SpyChecker) RequirementsUnlockable(_ context.Context) (bool, error) {
	return c.Unlockable, c.UnlockableErr
}

func (c *SpyChecker) CanUpdate(
	_ context.Context,
	level domain.EscalationLevel,
) (bool, error) {
	c.QueriedLevels = append(c.QueriedLevels, level)
	if c.CanUpdateErr != nil {
		return false, c.CanUpdateErr
	}
	return c.CanUpdateLevels[level], nil
}

func (c *SpyChecker) UpdatedDependencies(
	_ context.Context,
	level domain.EscalationLevel,
) ([]domain.Dependency, error) {
	c.ResolvedLevels = append(c.ResolvedLevels, level)
	return c.Updated, c.UpdatedErr
}

// CheckerFactory returns a domain.CheckerFactory serving the configured
// checkers by dependency name. Unknown names yield an error.
func CheckerFactory(checkers map[string]*SpyChecker) domain.CheckerFactory {
	return func(_ context.Context, dep domain.Dependency) (domain.UpdateChecker, error) {
		checker, ok := checkers[dep.Name]
		if !ok {
			return nil, fmt.Errorf("no checker configured for %q", dep.Name)
		}
		return checker, nil
	}
}

// ---------------------------------------------------------------------------
// SpyFileUpdater
// ---------------------------------------------------------------------------

// UpdateFilesCall records one FileUpdater invocation.
type UpdateFilesCall struct {
	Deps  []domain.Dependency
	Files []domain.DependencyFile
}

// SpyFileUpdater implements domain.FileUpdater as a configurable spy.
type SpyFileUpdater struct {
	// Files returned per call; when FilesFunc is set it wins.
	Files     []domain.DependencyFile
	FilesFunc func(deps []domain.Dependency, files []domain.DependencyFile) []domain.DependencyFile
	Err       error

	// spy: inputs received
	Calls []UpdateFilesCall
}

var _ domain.FileUpdater = (*SpyFileUpdater)(nil)

func (u *SpyFileUpdater) UpdateFiles(
	_ context.Context,
	deps []domain.Dependency,
	files []domain.DependencyFile,
) ([]domain.DependencyFile, error) {
	// Record copies: callers may mutate these slices after the call returns.
	u.Calls = append(u.Calls, UpdateFilesCall{
		Deps:  append([]domain.Dependency(nil), deps...),
		Files: append([]domain.DependencyFile(nil), files...),
	})
	if u.Err != nil {
		return nil, u.Err
	}
	if u.FilesFunc != nil {
		return u.FilesFunc(deps, files), nil
	}
	return u.Files, nil
}

// ---------------------------------------------------------------------------
// SpyGateway
// ---------------------------------------------------------------------------

// CloseCall records one ClosePullRequest invocation.
type CloseCall struct {
	GroupName       string
	DependencyNames []string
	Reason          domain.CloseReason
}

// SubmitCall records one Create/UpdatePullRequest invocation.
type SubmitCall struct {
	GroupName string
	Change    domain.Change
	BaseSHA   string
}

// SpyGateway implements domain.ServiceGateway as a configurable spy backed
// by an in-memory map of open pull request records per group.
type SpyGateway struct {
	// Records holds the open PR record per group name.
	Records map[string]*domain.PullRequestRecord

	ExistingErr error
	CreateErr   error
	UpdateErr   error
	CloseErr    error

	// spy: calls received
	ExistingLookups []string
	Creates         []SubmitCall
	Updates         []SubmitCall
	Closes          []CloseCall
}

var _ domain.ServiceGateway = (*SpyGateway)(nil)

func (g *SpyGateway) ExistingPullRequest(
	_ context.Context,
	groupName string,
) (*domain.PullRequestRecord, error) {
	g.ExistingLookups = append(g.ExistingLookups, groupName)
	if g.ExistingErr != nil {
		return nil, g.ExistingErr
	}
	if g.Records == nil {
		return nil, nil
	}
	return g.Records[groupName], nil
}

func (g *SpyGateway) CreatePullRequest(
	_ context.Context,
	groupName string,
	change domain.Change,
	baseSHA string,
) (*domain.PullRequestRecord, error) {
	g.Creates = append(g.Creates, SubmitCall{
		GroupName: groupName, Change: change, BaseSHA: baseSHA,
	})
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}

	record := &domain.PullRequestRecord{
		GroupName: groupName,
		Number:    len(g.Creates),
		URL:       fmt.Sprintf("https://example.com/pr/%d", len(g.Creates)),
	}
	for _, dep := range change.UpdatedDependencies {
		record.Dependencies = append(record.Dependencies, domain.PRDependency{
			Name:    dep.Name,
			Version: dep.Version,
		})
	}
	return record, nil
}

func (g *SpyGateway) UpdatePullRequest(
	_ context.Context,
	groupName string,
	change domain.Change,
	baseSHA string,
) error {
	g.Updates = append(g.Updates, SubmitCall{
		GroupName: groupName, Change: change, BaseSHA: baseSHA,
	})
	return g.UpdateErr
}

func (g *SpyGateway) ClosePullRequest(
	_ context.Context,
	groupName string,
	dependencyNames []string,
	reason domain.CloseReason,
) error {
	g.Closes = append(g.Closes, CloseCall{
		GroupName:       groupName,
		DependencyNames: dependencyNames,
		Reason:          reason,
	})
	return g.CloseErr
}

// ---------------------------------------------------------------------------
// SpyReporter
// ---------------------------------------------------------------------------

// ReportedError records one RecordError invocation.
type ReportedError struct {
	GroupName string
	Err       error
}

// ReportedAnomaly records one RecordAnomaly invocation.
type ReportedAnomaly struct {
	Kind    string
	Message string
}

// SpyReporter implements domain.Reporter, recording every report.
type SpyReporter struct {
	Errors    []ReportedError
	Anomalies []ReportedAnomaly
}

var _ domain.Reporter = (*SpyReporter)(nil)

func (r *SpyReporter) RecordError(_ context.Context, groupName string, err error) {
	r.Errors = append(r.Errors, ReportedError{GroupName: groupName, Err: err})
}

func (r *SpyReporter) RecordAnomaly(_ context.Context, kind, message string) {
	r.Anomalies = append(r.Anomalies, ReportedAnomaly{Kind: kind, Message: message})
}

// ---------------------------------------------------------------------------
// StubFetcher / StubParser
// ---------------------------------------------------------------------------

// StubFetcher implements domain.FileFetcher from in-memory files per
// directory.
type StubFetcher struct {
	FilesByDir map[string][]domain.DependencyFile
	SHA        string
	Err        error

	// spy: directories fetched, in order
	FetchedDirs []string
}

var _ domain.FileFetcher = (*StubFetcher)(nil)

func (f *StubFetcher) Fetch(
	_ context.Context,
	directory string,
) ([]domain.DependencyFile, string, error) {
	f.FetchedDirs = append(f.FetchedDirs, directory)
	if f.Err != nil {
		return nil, "", f.Err
	}
	return f.FilesByDir[directory], f.SHA, nil
}

// StubParser implements domain.DependencyParser from in-memory dependencies
// per directory (keyed by the first file's directory).
type StubParser struct {
	DepsByDir map[string][]domain.Dependency
	Err       error
}

var _ domain.DependencyParser = (*StubParser)(nil)

func (p *StubParser) Parse(files []domain.DependencyFile) ([]domain.Dependency, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return p.DepsByDir[files[0].Directory], nil
}
