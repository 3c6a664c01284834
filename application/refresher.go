package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/groupdate/domain"
)

// RefreshOptions holds runtime options for a single group refresh.
type RefreshOptions struct {
	DryRun bool // Log the decision without executing gateway actions
}

// GroupRefresher reconciles one dependency group against its live pull
// request: claim scan, per-directory compilation, merge, lifecycle decision,
// gateway execution. One refresh is one sequential control flow; it holds no
// lock, performs no retries, and treats gateway calls as the only externally
// visible commit points.
type GroupRefresher struct {
	snapshot *domain.Snapshot
	compiler *ChangeCompiler
	gateway  domain.ServiceGateway
	reporter domain.Reporter
}

// NewGroupRefresher creates a refresher bound to one job snapshot.
func NewGroupRefresher(
	snapshot *domain.Snapshot,
	compiler *ChangeCompiler,
	gateway domain.ServiceGateway,
	reporter domain.Reporter,
) *GroupRefresher {
	return &GroupRefresher{
		snapshot: snapshot,
		compiler: compiler,
		gateway:  gateway,
		reporter: reporter,
	}
}

// Refresh reconciles the named group and returns the decision it executed.
// A collaborator failure aborts this group's refresh only; a caller driving
// several groups can continue with the next one.
func (r *GroupRefresher) Refresh(
	ctx context.Context,
	groupName string,
	opts RefreshOptions,
) (Decision, error) {
	group, ok := r.snapshot.GroupByName(groupName)
	if !ok {
		return r.closeMissingGroup(ctx, groupName, opts)
	}

	if err := r.claimSiblingDependencies(ctx, group); err != nil {
		r.reporter.RecordError(ctx, groupName, err)
		return Decision{}, err
	}

	merged, err := r.compileGroup(ctx, group)
	if err != nil {
		r.reporter.RecordError(ctx, groupName, err)
		return Decision{}, err
	}

	existing, err := r.gateway.ExistingPullRequest(ctx, groupName)
	if err != nil {
		r.reporter.RecordError(ctx, groupName, err)
		return Decision{}, fmt.Errorf("failed to look up existing pull request: %w", err)
	}

	decision := Decide(merged, existing, r.snapshot.EligibleMembers(group))
	logger.Infof(
		"[%s] decision: %s (dependencies: %d, existing PR: %v)",
		groupName, decision.Action, len(merged.UpdatedDependencies), existing != nil,
	)

	if execErr := r.execute(ctx, groupName, decision, merged, existing, opts); execErr != nil {
		r.reporter.RecordError(ctx, groupName, execErr)
		return Decision{}, execErr
	}

	r.snapshot.MarkHandled(merged.DependencyNames()...)
	return decision, nil
}

// closeMissingGroup handles a job naming a group that no longer exists in
// configuration: the run does not fail, the anomaly is reported, and any pull
// request still associated with the name is closed as group-empty.
func (r *GroupRefresher) closeMissingGroup(
	ctx context.Context,
	groupName string,
	opts RefreshOptions,
) (Decision, error) {
	logger.Warnf("group %q is not defined in the current configuration", groupName)
	r.reporter.RecordAnomaly(ctx, "missing-group",
		fmt.Sprintf("job refers to unconfigured group %q", groupName))

	decision := Decision{Action: ActionClose, CloseReason: domain.CloseReasonGroupEmpty}

	existing, err := r.gateway.ExistingPullRequest(ctx, groupName)
	if err != nil {
		r.reporter.RecordError(ctx, groupName, err)
		return Decision{}, fmt.Errorf("failed to look up existing pull request: %w", err)
	}
	if existing == nil || opts.DryRun {
		return decision, nil
	}

	if closeErr := r.gateway.ClosePullRequest(
		ctx, groupName, existing.Names(), domain.CloseReasonGroupEmpty,
	); closeErr != nil {
		r.reporter.RecordError(ctx, groupName, closeErr)
		return Decision{}, fmt.Errorf("failed to close pull request: %w", closeErr)
	}
	return decision, nil
}

// claimSiblingDependencies marks every dependency claimed by another group's
// open pull request as handled, so two groups never fight over the same
// dependency in a single run. Only live open-PR state is consulted; a
// dependency becomes eligible again as soon as its current group's pull
// request is merged or closed.
func (r *GroupRefresher) claimSiblingDependencies(
	ctx context.Context,
	group domain.DependencyGroup,
) error {
	for _, sibling := range r.snapshot.Groups() {
		if sibling.Name == group.Name {
			continue
		}

		record, err := r.gateway.ExistingPullRequest(ctx, sibling.Name)
		if err != nil {
			return fmt.Errorf(
				"failed to scan open pull request of group %q: %w", sibling.Name, err,
			)
		}
		if record == nil {
			continue
		}

		names := record.Names()
		logger.Debugf(
			"[%s] claiming %d dependencies held by group %q",
			group.Name, len(names), sibling.Name,
		)
		r.snapshot.MarkHandled(names...)
	}
	return nil
}

// compileGroup compiles one change per directory, sequentially in configured
// order, and merges them. Sequential processing is load-bearing: the merge
// de-duplication rule depends on deterministic first-occurrence order.
func (r *GroupRefresher) compileGroup(
	ctx context.Context,
	group domain.DependencyGroup,
) (domain.Change, error) {
	var changes []domain.Change
	for _, dir := range r.snapshot.Directories() {
		r.snapshot.SetCurrentDirectory(dir)

		change, err := r.compiler.CompileDirectory(ctx, group)
		if err != nil {
			return domain.Change{}, err
		}
		changes = append(changes, change)
	}
	return MergeChanges(changes), nil
}

// execute performs the decided action through the gateway.
func (r *GroupRefresher) execute(
	ctx context.Context,
	groupName string,
	decision Decision,
	change domain.Change,
	existing *domain.PullRequestRecord,
	opts RefreshOptions,
) error {
	if opts.DryRun {
		logger.Infof("[%s] [DRY RUN] would perform %s", groupName, decision.Action)
		return nil
	}

	baseSHA := r.snapshot.BaseSHA()

	switch decision.Action {
	case ActionCreate, ActionSupersede:
		return r.create(ctx, groupName, change, baseSHA)

	case ActionUpdateInPlace:
		if err := r.gateway.UpdatePullRequest(ctx, groupName, change, baseSHA); err != nil {
			return fmt.Errorf("failed to update pull request: %w", err)
		}
		return nil

	case ActionReplace:
		if err := r.gateway.ClosePullRequest(
			ctx, groupName, existing.Names(), domain.CloseReasonDependenciesChanged,
		); err != nil {
			return fmt.Errorf("failed to close replaced pull request: %w", err)
		}
		return r.create(ctx, groupName, change, baseSHA)

	case ActionClose:
		if existing == nil {
			logger.Infof("[%s] nothing to close (%s)", groupName, decision.CloseReason)
			return nil
		}
		if err := r.gateway.ClosePullRequest(
			ctx, groupName, existing.Names(), decision.CloseReason,
		); err != nil {
			return fmt.Errorf("failed to close pull request: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown action %d", decision.Action)
	}
}

func (r *GroupRefresher) create(
	ctx context.Context,
	groupName string,
	change domain.Change,
	baseSHA string,
) error {
	record, err := r.gateway.CreatePullRequest(ctx, groupName, change, baseSHA)
	if err != nil {
		return fmt.Errorf("failed to create pull request: %w", err)
	}
	if record != nil {
		logger.Infof("[%s] created PR #%d: %s", groupName, record.Number, record.URL)
	}
	return nil
}
