// Package devops reads pull requests, threads, commits and branches from
// Azure DevOps.
package devops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/spiffcs/nudge/internal/constants"
	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
	"github.com/spiffcs/nudge/internal/urlutil"
)

// ErrNoToken is returned when no personal access token is configured.
var ErrNoToken = errors.New("no Azure DevOps personal access token configured (set AZURE_DEVOPS_PERSONAL_ACCESS_TOKEN)")

// Client wraps the Azure DevOps git API.
type Client struct {
	git    git.Client
	orgURL string
}

// NewClient connects to an organization with a personal access token.
// org may be a bare organization name or a full collection URL.
func NewClient(ctx context.Context, org, token string) (*Client, error) {
	if org == "" {
		return nil, errors.New("no Azure DevOps organization configured")
	}
	if token == "" {
		return nil, ErrNoToken
	}
	orgURL := urlutil.OrganizationURL(org)
	conn := azuredevops.NewPatConnection(orgURL, token)

	gitClient, err := git.NewClient(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", orgURL, err)
	}
	return NewClientWithGit(gitClient, orgURL), nil
}

// NewClientWithGit wraps an existing git client. Useful for tests.
func NewClientWithGit(gitClient git.Client, orgURL string) *Client {
	return &Client{git: gitClient, orgURL: strings.TrimRight(orgURL, "/")}
}

// OrganizationURL returns the organization base URL.
func (c *Client) OrganizationURL() string { return c.orgURL }

// PullRequests returns the active pull requests of a project, newest first.
func (c *Client) PullRequests(ctx context.Context, project string) ([]model.RawPullRequest, error) {
	status := git.PullRequestStatusValues.Active
	top := constants.AzurePageSize

	var out []model.RawPullRequest
	for skip := 0; ; skip += top {
		page, err := c.git.GetPullRequestsByProject(ctx, git.GetPullRequestsByProjectArgs{
			Project:        &project,
			SearchCriteria: &git.GitPullRequestSearchCriteria{Status: &status},
			Top:            &top,
			Skip:           &skip,
		})
		if err != nil {
			return nil, fmt.Errorf("listing pull requests of %s: %w", project, err)
		}
		if page == nil {
			break
		}
		for _, pr := range *page {
			out = append(out, c.toRawPullRequest(project, pr))
		}
		log.Trace("fetched pull request page", "project", project, "skip", skip, "count", len(*page))
		if len(*page) < top {
			break
		}
	}
	return out, nil
}

// Threads returns the comment threads of a pull request.
func (c *Client) Threads(ctx context.Context, repositoryID string, pullRequestID int) ([]model.Thread, error) {
	threads, err := c.git.GetThreads(ctx, git.GetThreadsArgs{
		RepositoryId:  &repositoryID,
		PullRequestId: &pullRequestID,
	})
	if err != nil {
		return nil, err
	}
	if threads == nil {
		return nil, nil
	}

	out := make([]model.Thread, 0, len(*threads))
	for _, t := range *threads {
		th := model.Thread{Status: model.ThreadStatusUnknown, Deleted: deref(t.IsDeleted)}
		if t.Status != nil {
			th.Status = model.ThreadStatus(*t.Status)
		}
		out = append(out, th)
	}
	return out, nil
}

// LastCommit looks up a commit and its author date.
func (c *Client) LastCommit(ctx context.Context, repositoryID, commitID string) (model.Commit, error) {
	commit, err := c.git.GetCommit(ctx, git.GetCommitArgs{
		CommitId:     &commitID,
		RepositoryId: &repositoryID,
	})
	if err != nil {
		return model.Commit{}, err
	}
	out := model.Commit{ID: commitID}
	if commit != nil && commit.Author != nil && commit.Author.Date != nil {
		out.AuthoredAt = commit.Author.Date.Time
	}
	return out, nil
}

// Repositories lists the repositories of a project.
func (c *Client) Repositories(ctx context.Context, project string) ([]model.Repository, error) {
	repos, err := c.git.GetRepositories(ctx, git.GetRepositoriesArgs{Project: &project})
	if err != nil {
		return nil, err
	}
	if repos == nil {
		return nil, nil
	}

	out := make([]model.Repository, 0, len(*repos))
	for _, r := range *repos {
		if deref(r.IsDisabled) {
			log.Debug("skipping disabled repository", "project", project, "repository", deref(r.Name))
			continue
		}
		repo := model.Repository{Name: deref(r.Name)}
		if r.Id != nil {
			repo.ID = r.Id.String()
		}
		out = append(out, repo)
	}
	return out, nil
}

// Branches lists the branches of a repository with their last commit dates.
func (c *Client) Branches(ctx context.Context, repositoryID string) ([]model.Branch, error) {
	stats, err := c.git.GetBranches(ctx, git.GetBranchesArgs{RepositoryId: &repositoryID})
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, nil
	}

	out := make([]model.Branch, 0, len(*stats))
	for _, s := range *stats {
		b := model.Branch{Name: strings.TrimPrefix(deref(s.Name), "refs/heads/")}
		if s.Commit != nil && s.Commit.Author != nil && s.Commit.Author.Date != nil {
			b.LastCommitAt = s.Commit.Author.Date.Time
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Client) toRawPullRequest(project string, pr git.GitPullRequest) model.RawPullRequest {
	out := model.RawPullRequest{
		ID:        deref(pr.PullRequestId),
		Title:     deref(pr.Title),
		Project:   project,
		SourceRef: deref(pr.SourceRefName),
		TargetRef: deref(pr.TargetRefName),
		IsDraft:   deref(pr.IsDraft),
	}
	if pr.CreationDate != nil {
		out.CreatedAt = pr.CreationDate.Time
	}
	if pr.CreatedBy != nil {
		out.Author = deref(pr.CreatedBy.DisplayName)
	}
	if pr.LastMergeSourceCommit != nil {
		out.LastCommitID = deref(pr.LastMergeSourceCommit.CommitId)
	}
	if repo := pr.Repository; repo != nil {
		out.RepositoryName = deref(repo.Name)
		if repo.Id != nil {
			out.RepositoryID = repo.Id.String()
		}
		if repo.Project != nil && repo.Project.Name != nil {
			out.Project = *repo.Project.Name
		}
	}
	if pr.Reviewers != nil {
		for _, r := range *pr.Reviewers {
			out.Reviewers = append(out.Reviewers, model.RawReviewer{
				UniqueName: deref(r.UniqueName),
				Vote:       model.Vote(deref(r.Vote)),
			})
		}
	}
	out.URL = urlutil.PullRequestURL(c.orgURL, out.Project, out.RepositoryName, out.ID)
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
