package ghclient

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/nudge/internal/constants"
	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
)

const branchesQuery = `query($owner: String!, $repo: String!, $first: Int!, $after: String) {
	repository(owner: $owner, name: $repo) {
		refs(refPrefix: "refs/heads/", first: $first, after: $after) {
			pageInfo { hasNextPage endCursor }
			nodes {
				name
				target { ... on Commit { authoredDate } }
			}
		}
	}
}`

// Repositories lists the active repositories of an organization. Archived
// and disabled repositories are skipped.
func (c *Client) Repositories(ctx context.Context, org string) ([]model.Repository, error) {
	opts := &gh.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: gh.ListOptions{PerPage: constants.GitHubPageSize},
	}

	var out []model.Repository
	for {
		repos, resp, err := c.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories of %s (page %d): %w", org, opts.Page, err)
		}
		for _, r := range repos {
			if r.GetArchived() || r.GetDisabled() {
				log.Trace("skipping inactive repository", "repository", r.GetFullName())
				continue
			}
			out = append(out, model.Repository{ID: r.GetFullName(), Name: r.GetName()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// LastCommit looks up a commit and its author date.
func (c *Client) LastCommit(ctx context.Context, repositoryID, sha string) (model.Commit, error) {
	owner, repo, err := splitRepo(repositoryID)
	if err != nil {
		return model.Commit{}, err
	}
	commit, _, err := c.client.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return model.Commit{}, fmt.Errorf("getting commit %s: %w", sha, err)
	}
	return model.Commit{
		ID:         sha,
		AuthoredAt: commit.GetCommit().GetAuthor().GetDate().Time,
	}, nil
}

type branchesResponse struct {
	Repository *struct {
		Refs struct {
			PageInfo pageInfo `json:"pageInfo"`
			Nodes    []struct {
				Name   string `json:"name"`
				Target struct {
					AuthoredDate time.Time `json:"authoredDate"`
				} `json:"target"`
			} `json:"nodes"`
		} `json:"refs"`
	} `json:"repository"`
}

// Branches lists the branches of a repository with the author date of
// their head commit.
func (c *Client) Branches(ctx context.Context, repositoryID string) ([]model.Branch, error) {
	owner, repo, err := splitRepo(repositoryID)
	if err != nil {
		return nil, err
	}

	var out []model.Branch
	after := ""
	for {
		var resp branchesResponse
		err := c.graphql(ctx, branchesQuery, map[string]any{
			"owner": owner,
			"repo":  repo,
			"first": constants.GitHubPageSize,
			"after": cursor(after),
		}, &resp)
		if err != nil {
			return nil, err
		}
		if resp.Repository == nil {
			return nil, fmt.Errorf("repository %s not found", repositoryID)
		}

		refs := resp.Repository.Refs
		for _, n := range refs.Nodes {
			out = append(out, model.Branch{Name: n.Name, LastCommitAt: n.Target.AuthoredDate})
		}
		if !refs.PageInfo.HasNextPage {
			break
		}
		after = refs.PageInfo.EndCursor
	}
	return out, nil
}
