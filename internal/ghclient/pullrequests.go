package ghclient

import (
	"context"
	"fmt"
	"time"

	"github.com/spiffcs/nudge/internal/constants"
	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
)

const openPullRequestsQuery = `query($q: String!, $first: Int!, $after: String) {
	search(query: $q, type: ISSUE, first: $first, after: $after) {
		issueCount
		pageInfo { hasNextPage endCursor }
		nodes {
			... on PullRequest {
				number
				title
				url
				isDraft
				createdAt
				headRefName
				headRefOid
				baseRefName
				author { login }
				repository { name nameWithOwner }
				latestOpinionatedReviews(first: 100) {
					nodes { state author { login } }
				}
				reviewRequests(first: 100) {
					nodes {
						requestedReviewer {
							... on User { login }
							... on Team { slug }
						}
					}
				}
			}
		}
	}
}`

const reviewThreadsQuery = `query($owner: String!, $repo: String!, $number: Int!, $first: Int!, $after: String) {
	repository(owner: $owner, name: $repo) {
		pullRequest(number: $number) {
			reviewThreads(first: $first, after: $after) {
				pageInfo { hasNextPage endCursor }
				nodes { isResolved }
			}
		}
	}
}`

// searchLimit is the most results the search API will page through.
const searchLimit = 1000

type login struct {
	Login string `json:"login"`
	Slug  string `json:"slug"`
}

type pullRequestNode struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	IsDraft     bool      `json:"isDraft"`
	CreatedAt   time.Time `json:"createdAt"`
	HeadRefName string    `json:"headRefName"`
	HeadRefOid  string    `json:"headRefOid"`
	BaseRefName string    `json:"baseRefName"`
	Author      *login    `json:"author"`
	Repository  struct {
		Name          string `json:"name"`
		NameWithOwner string `json:"nameWithOwner"`
	} `json:"repository"`
	LatestOpinionatedReviews struct {
		Nodes []struct {
			State  string `json:"state"`
			Author *login `json:"author"`
		} `json:"nodes"`
	} `json:"latestOpinionatedReviews"`
	ReviewRequests struct {
		Nodes []struct {
			RequestedReviewer *login `json:"requestedReviewer"`
		} `json:"nodes"`
	} `json:"reviewRequests"`
}

type searchResponse struct {
	Search struct {
		IssueCount int               `json:"issueCount"`
		PageInfo   pageInfo          `json:"pageInfo"`
		Nodes      []pullRequestNode `json:"nodes"`
	} `json:"search"`
}

// PullRequests returns the open pull requests of an organization, newest
// first. Repository IDs are "owner/name".
func (c *Client) PullRequests(ctx context.Context, org string) ([]model.RawPullRequest, error) {
	q := fmt.Sprintf("org:%s is:pr is:open sort:created-desc", org)

	var out []model.RawPullRequest
	after := ""
	for {
		var resp searchResponse
		err := c.graphql(ctx, openPullRequestsQuery, map[string]any{
			"q":     q,
			"first": constants.GitHubPageSize,
			"after": cursor(after),
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("searching pull requests of %s: %w", org, err)
		}

		for _, n := range resp.Search.Nodes {
			if n.Number == 0 {
				continue
			}
			out = append(out, toRawPullRequest(org, n))
		}

		if resp.Search.IssueCount > searchLimit && after == "" {
			log.Warn("organization has more open pull requests than search returns",
				"org", org, "open", resp.Search.IssueCount, "limit", searchLimit)
		}
		if !resp.Search.PageInfo.HasNextPage {
			break
		}
		after = resp.Search.PageInfo.EndCursor
	}
	return out, nil
}

func toRawPullRequest(org string, n pullRequestNode) model.RawPullRequest {
	pr := model.RawPullRequest{
		ID:             n.Number,
		Title:          n.Title,
		RepositoryID:   n.Repository.NameWithOwner,
		RepositoryName: n.Repository.Name,
		Project:        org,
		SourceRef:      n.HeadRefName,
		TargetRef:      n.BaseRefName,
		CreatedAt:      n.CreatedAt,
		LastCommitID:   n.HeadRefOid,
		IsDraft:        n.IsDraft,
		URL:            n.URL,
	}
	if n.Author != nil {
		pr.Author = n.Author.Login
	}

	seen := make(map[string]bool)
	for _, r := range n.LatestOpinionatedReviews.Nodes {
		if r.Author == nil || seen[r.Author.Login] {
			continue
		}
		seen[r.Author.Login] = true
		pr.Reviewers = append(pr.Reviewers, model.RawReviewer{UniqueName: r.Author.Login, Vote: reviewVote(r.State)})
	}
	for _, r := range n.ReviewRequests.Nodes {
		if r.RequestedReviewer == nil {
			continue
		}
		name := r.RequestedReviewer.Login
		if name == "" {
			name = r.RequestedReviewer.Slug
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		pr.Reviewers = append(pr.Reviewers, model.RawReviewer{UniqueName: name, Vote: model.VoteNone})
	}
	return pr
}

// reviewVote maps a review state onto the vote scale.
func reviewVote(state string) model.Vote {
	switch state {
	case "APPROVED":
		return model.VoteApproved
	case "CHANGES_REQUESTED":
		return model.VoteWaitingForAuthor
	default:
		return model.VoteNone
	}
}

type reviewThreadsResponse struct {
	Repository *struct {
		PullRequest *struct {
			ReviewThreads struct {
				PageInfo pageInfo `json:"pageInfo"`
				Nodes    []struct {
					IsResolved bool `json:"isResolved"`
				} `json:"nodes"`
			} `json:"reviewThreads"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

// Threads returns the review threads of a pull request. Resolved threads
// are reported as fixed.
func (c *Client) Threads(ctx context.Context, repositoryID string, number int) ([]model.Thread, error) {
	owner, repo, err := splitRepo(repositoryID)
	if err != nil {
		return nil, err
	}

	var out []model.Thread
	after := ""
	for {
		var resp reviewThreadsResponse
		err := c.graphql(ctx, reviewThreadsQuery, map[string]any{
			"owner":  owner,
			"repo":   repo,
			"number": number,
			"first":  constants.GitHubPageSize,
			"after":  cursor(after),
		}, &resp)
		if err != nil {
			return nil, err
		}
		if resp.Repository == nil || resp.Repository.PullRequest == nil {
			return nil, fmt.Errorf("pull request %s#%d not found", repositoryID, number)
		}

		threads := resp.Repository.PullRequest.ReviewThreads
		for _, t := range threads.Nodes {
			status := model.ThreadStatusActive
			if t.IsResolved {
				status = model.ThreadStatusFixed
			}
			out = append(out, model.Thread{Status: status})
		}
		if !threads.PageInfo.HasNextPage {
			break
		}
		after = threads.PageInfo.EndCursor
	}
	return out, nil
}
