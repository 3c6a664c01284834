// Package github implements the service gateway on the GitHub API.
package github

import (
	"context"
	"fmt"
	"path"
	"strings"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/groupdate/domain"
	"github.com/rios0rios0/groupdate/infrastructure/gateway"
)

const (
	gatewayName = "github"
	perPage     = 100
	blobMode    = "100644"
	blobType    = "blob"
)

// Gateway implements domain.ServiceGateway for GitHub. Pull request state is
// carried in the PR body's metadata block; branches are derived
// deterministically from the change content.
type Gateway struct {
	token        string
	client       *gh.Client
	owner        string
	repo         string
	targetBranch string
}

// New creates a new GitHub gateway.
func New(cfg gateway.Config) domain.ServiceGateway {
	targetBranch := cfg.TargetBranch
	if targetBranch == "" {
		targetBranch = "main"
	}
	return &Gateway{
		token:        cfg.Token,
		client:       gh.NewClient(nil).WithAuthToken(cfg.Token),
		owner:        cfg.Owner,
		repo:         cfg.Repository,
		targetBranch: targetBranch,
	}
}

// ExistingPullRequest returns the open pull request carrying the group's
// metadata block, or nil when the group has none.
func (g *Gateway) ExistingPullRequest(
	ctx context.Context,
	groupName string,
) (*domain.PullRequestRecord, error) {
	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		prs, resp, err := g.client.PullRequests.List(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			meta, ok := gateway.ParseMetadata(pr.GetBody())
			if !ok || meta.Group != groupName {
				continue
			}

			record := meta.Record()
			record.Number = pr.GetNumber()
			record.SourceBranch = pr.GetHead().GetRef()
			record.URL = pr.GetHTMLURL()
			return &record, nil
		}

		if resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreatePullRequest pushes the change to a fresh branch and opens a pull
// request against the target branch.
func (g *Gateway) CreatePullRequest(
	ctx context.Context,
	groupName string,
	change domain.Change,
	baseSHA string,
) (*domain.PullRequestRecord, error) {
	branch := gateway.BranchName(groupName, change)

	commitSHA, err := g.commitChange(ctx, groupName, change, baseSHA)
	if err != nil {
		return nil, err
	}

	branchRef := "refs/heads/" + branch
	_, _, err = g.client.Git.CreateRef(
		ctx, g.owner, g.repo,
		&gh.Reference{
			Ref:    gh.String(branchRef),
			Object: &gh.GitObject{SHA: gh.String(commitSHA)},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	title := gateway.PullRequestTitle(groupName, change)
	body, err := gateway.PullRequestDescription(groupName, change)
	if err != nil {
		return nil, err
	}

	pr, _, err := g.client.PullRequests.Create(
		ctx, g.owner, g.repo,
		&gh.NewPullRequest{
			Title:               gh.String(title),
			Head:                gh.String(branch),
			Base:                gh.String(g.targetBranch),
			Body:                gh.String(body),
			MaintainerCanModify: gh.Bool(true),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	record := gateway.NewMetadata(groupName, change).Record()
	record.Number = pr.GetNumber()
	record.SourceBranch = branch
	record.URL = pr.GetHTMLURL()
	return &record, nil
}

// UpdatePullRequest rewrites the group's existing pull request in place:
// its source branch is force-moved to a fresh commit of the change and the
// PR text is regenerated.
func (g *Gateway) UpdatePullRequest(
	ctx context.Context,
	groupName string,
	change domain.Change,
	baseSHA string,
) error {
	record, err := g.ExistingPullRequest(ctx, groupName)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no open pull request for group %q", groupName)
	}

	commitSHA, err := g.commitChange(ctx, groupName, change, baseSHA)
	if err != nil {
		return err
	}

	branchRef := "refs/heads/" + record.SourceBranch
	_, _, err = g.client.Git.UpdateRef(
		ctx, g.owner, g.repo,
		&gh.Reference{
			Ref:    gh.String(branchRef),
			Object: &gh.GitObject{SHA: gh.String(commitSHA)},
		},
		true,
	)
	if err != nil {
		return fmt.Errorf("failed to move branch %q: %w", record.SourceBranch, err)
	}

	title := gateway.PullRequestTitle(groupName, change)
	body, err := gateway.PullRequestDescription(groupName, change)
	if err != nil {
		return err
	}

	_, _, err = g.client.PullRequests.Edit(
		ctx, g.owner, g.repo, record.Number,
		&gh.PullRequest{
			Title: gh.String(title),
			Body:  gh.String(body),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to edit pull request #%d: %w", record.Number, err)
	}

	return nil
}

// ClosePullRequest closes the group's pull request with an explanatory
// comment and deletes its source branch.
func (g *Gateway) ClosePullRequest(
	ctx context.Context,
	groupName string,
	dependencyNames []string,
	reason domain.CloseReason,
) error {
	record, err := g.ExistingPullRequest(ctx, groupName)
	if err != nil {
		return err
	}
	if record == nil {
		logger.Warnf("[%s] no open pull request to close for group %q", gatewayName, groupName)
		return nil
	}

	comment := gateway.CloseComment(reason, dependencyNames)
	_, _, err = g.client.Issues.CreateComment(
		ctx, g.owner, g.repo, record.Number,
		&gh.IssueComment{Body: gh.String(comment)},
	)
	if err != nil {
		return fmt.Errorf("failed to comment on pull request #%d: %w", record.Number, err)
	}

	_, _, err = g.client.PullRequests.Edit(
		ctx, g.owner, g.repo, record.Number,
		&gh.PullRequest{State: gh.String("closed")},
	)
	if err != nil {
		return fmt.Errorf("failed to close pull request #%d: %w", record.Number, err)
	}

	if record.SourceBranch != "" {
		if _, delErr := g.client.Git.DeleteRef(
			ctx, g.owner, g.repo, "refs/heads/"+record.SourceBranch,
		); delErr != nil {
			logger.Warnf(
				"[%s] failed to delete branch %q: %v", gatewayName, record.SourceBranch, delErr,
			)
		}
	}

	return nil
}

// commitChange writes the change's files as a single commit on top of the
// base SHA and returns the new commit SHA.
func (g *Gateway) commitChange(
	ctx context.Context,
	groupName string,
	change domain.Change,
	baseSHA string,
) (string, error) {
	baseCommit, _, err := g.client.Git.GetCommit(ctx, g.owner, g.repo, baseSHA)
	if err != nil {
		return "", fmt.Errorf("failed to get base commit: %w", err)
	}

	var entries []*gh.TreeEntry
	for _, file := range change.UpdatedFiles {
		entries = append(entries, &gh.TreeEntry{
			Path:    gh.String(repoPath(file)),
			Mode:    gh.String(blobMode),
			Type:    gh.String(blobType),
			Content: gh.String(file.Content),
		})
	}

	newTree, _, err := g.client.Git.CreateTree(
		ctx, g.owner, g.repo, baseCommit.GetTree().GetSHA(), entries,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}

	message := gateway.CommitMessage(groupName, change)
	newCommit, _, err := g.client.Git.CreateCommit(
		ctx, g.owner, g.repo,
		&gh.Commit{
			Message: gh.String(message),
			Tree:    newTree,
			Parents: []*gh.Commit{{SHA: gh.String(baseSHA)}},
		},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	return newCommit.GetSHA(), nil
}

// repoPath joins a file's directory scope and path into a repository-root
// relative path.
func repoPath(file domain.DependencyFile) string {
	dir := strings.TrimPrefix(file.Directory, "/")
	return strings.TrimPrefix(path.Join(dir, file.Path), "/")
}
