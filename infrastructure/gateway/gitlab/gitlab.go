// Package gitlab implements the service gateway on the GitLab API.
package gitlab

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/groupdate/domain"
	"github.com/rios0rios0/groupdate/infrastructure/gateway"
)

const (
	gatewayName = "gitlab"
	perPage     = 100
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// Gateway implements domain.ServiceGateway for GitLab. Merge request state is
// carried in the MR description's metadata block.
type Gateway struct {
	token        string
	client       *gl.Client
	pid          string
	targetBranch string
}

// New creates a new GitLab gateway.
func New(cfg gateway.Config) domain.ServiceGateway {
	targetBranch := cfg.TargetBranch
	if targetBranch == "" {
		targetBranch = "main"
	}

	client, err := gl.NewClient(cfg.Token)
	if err != nil {
		// Return a gateway that will fail on use rather than panicking at construction
		client = nil
	}
	return &Gateway{
		token:        cfg.Token,
		client:       client,
		pid:          cfg.Owner + "/" + cfg.Repository,
		targetBranch: targetBranch,
	}
}

// ExistingPullRequest returns the open merge request carrying the group's
// metadata block, or nil when the group has none.
func (g *Gateway) ExistingPullRequest(
	ctx context.Context,
	groupName string,
) (*domain.PullRequestRecord, error) {
	if g.client == nil {
		return nil, errClientNotInitialized
	}

	opts := &gl.ListProjectMergeRequestsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		State:       gl.Ptr("opened"),
	}

	for {
		mrs, resp, err := g.client.MergeRequests.ListProjectMergeRequests(
			g.pid, opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list merge requests: %w", err)
		}

		for _, mr := range mrs {
			meta, ok := gateway.ParseMetadata(mr.Description)
			if !ok || meta.Group != groupName {
				continue
			}

			record := meta.Record()
			record.Number = int(mr.IID)
			record.SourceBranch = mr.SourceBranch
			record.URL = mr.WebURL
			return &record, nil
		}

		if resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreatePullRequest commits the change to a fresh branch and opens a merge
// request against the target branch.
func (g *Gateway) CreatePullRequest(
	ctx context.Context,
	groupName string,
	change domain.Change,
	baseSHA string,
) (*domain.PullRequestRecord, error) {
	if g.client == nil {
		return nil, errClientNotInitialized
	}

	branch := gateway.BranchName(groupName, change)
	if err := g.commitChange(ctx, groupName, change, branch, false); err != nil {
		return nil, err
	}

	title := gateway.PullRequestTitle(groupName, change)
	description, err := gateway.PullRequestDescription(groupName, change)
	if err != nil {
		return nil, err
	}

	mr, _, err := g.client.MergeRequests.CreateMergeRequest(
		g.pid,
		&gl.CreateMergeRequestOptions{
			Title:              gl.Ptr(title),
			Description:        gl.Ptr(description),
			SourceBranch:       gl.Ptr(branch),
			TargetBranch:       gl.Ptr(g.targetBranch),
			RemoveSourceBranch: gl.Ptr(true),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create merge request: %w", err)
	}

	record := gateway.NewMetadata(groupName, change).Record()
	record.Number = int(mr.IID)
	record.SourceBranch = branch
	record.URL = mr.WebURL
	return &record, nil
}

// UpdatePullRequest rewrites the group's existing merge request in place:
// its source branch is rebuilt from the target branch with the new change
// and the MR text is regenerated.
func (g *Gateway) UpdatePullRequest(
	ctx context.Context,
	groupName string,
	change domain.Change,
	_ string,
) error {
	if g.client == nil {
		return errClientNotInitialized
	}

	record, err := g.ExistingPullRequest(ctx, groupName)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no open merge request for group %q", groupName)
	}

	if commitErr := g.commitChange(
		ctx, groupName, change, record.SourceBranch, true,
	); commitErr != nil {
		return commitErr
	}

	title := gateway.PullRequestTitle(groupName, change)
	description, err := gateway.PullRequestDescription(groupName, change)
	if err != nil {
		return err
	}

	_, _, err = g.client.MergeRequests.UpdateMergeRequest(
		g.pid, int64(record.Number),
		&gl.UpdateMergeRequestOptions{
			Title:       gl.Ptr(title),
			Description: gl.Ptr(description),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to update merge request !%d: %w", record.Number, err)
	}

	return nil
}

// ClosePullRequest closes the group's merge request with an explanatory note
// and deletes its source branch.
func (g *Gateway) ClosePullRequest(
	ctx context.Context,
	groupName string,
	dependencyNames []string,
	reason domain.CloseReason,
) error {
	if g.client == nil {
		return errClientNotInitialized
	}

	record, err := g.ExistingPullRequest(ctx, groupName)
	if err != nil {
		return err
	}
	if record == nil {
		logger.Warnf("[%s] no open merge request to close for group %q", gatewayName, groupName)
		return nil
	}

	note := gateway.CloseComment(reason, dependencyNames)
	_, _, err = g.client.Notes.CreateMergeRequestNote(
		g.pid, int64(record.Number),
		&gl.CreateMergeRequestNoteOptions{Body: gl.Ptr(note)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to comment on merge request !%d: %w", record.Number, err)
	}

	_, _, err = g.client.MergeRequests.UpdateMergeRequest(
		g.pid, int64(record.Number),
		&gl.UpdateMergeRequestOptions{StateEvent: gl.Ptr("close")},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to close merge request !%d: %w", record.Number, err)
	}

	if record.SourceBranch != "" {
		if _, delErr := g.client.Branches.DeleteBranch(
			g.pid, record.SourceBranch, gl.WithContext(ctx),
		); delErr != nil {
			logger.Warnf(
				"[%s] failed to delete branch %q: %v", gatewayName, record.SourceBranch, delErr,
			)
		}
	}

	return nil
}

// commitChange writes the change's files as a single commit on the given
// branch, started from (or force-rebuilt on top of) the target branch.
func (g *Gateway) commitChange(
	ctx context.Context,
	groupName string,
	change domain.Change,
	branch string,
	force bool,
) error {
	var actions []*gl.CommitActionOptions
	for _, file := range change.UpdatedFiles {
		actions = append(actions, &gl.CommitActionOptions{
			Action:   gl.Ptr(gl.FileUpdate),
			FilePath: gl.Ptr(repoPath(file)),
			Content:  gl.Ptr(file.Content),
		})
	}

	opts := &gl.CreateCommitOptions{
		Branch:        gl.Ptr(branch),
		StartBranch:   gl.Ptr(g.targetBranch),
		CommitMessage: gl.Ptr(gateway.CommitMessage(groupName, change)),
		Actions:       actions,
	}
	if force {
		opts.Force = gl.Ptr(true)
	}

	_, _, err := g.client.Commits.CreateCommit(g.pid, opts, gl.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create commit on %q: %w", branch, err)
	}
	return nil
}

// repoPath joins a file's directory scope and path into a repository-root
// relative path.
func repoPath(file domain.DependencyFile) string {
	dir := strings.TrimPrefix(file.Directory, "/")
	return strings.TrimPrefix(path.Join(dir, file.Path), "/")
}
