package nudge

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
)

// PullRequests returns the open pull requests of a project, oldest first,
// with review status, unresolved thread counts and activity dates. Any
// failed thread or commit lookup fails the whole call.
func (e *Engine) PullRequests(ctx context.Context, project string) ([]model.PullRequest, error) {
	raw, err := e.source.PullRequests(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests: %w", err)
	}
	log.Debug("fetched pull requests", "project", project, "count", len(raw))

	raw = slices.Clone(raw)
	slices.Reverse(raw)
	if !e.settings.IncludeDrafts {
		raw = slices.DeleteFunc(raw, func(pr model.RawPullRequest) bool { return pr.IsDraft })
	}

	comments := make([]int, len(raw))
	dates := make([]model.Commit, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	for i, pr := range raw {
		g.Go(func() error {
			threads, err := e.source.Threads(gctx, pr.RepositoryID, pr.ID)
			if err != nil {
				return fmt.Errorf("threads of pull request %d in %s: %w", pr.ID, pr.RepositoryName, err)
			}
			comments[i] = model.CountUnresolved(threads)
			return nil
		})

		if e.settings.AgeSince != AgeSinceCommit {
			continue
		}
		if pr.LastCommitID == "" {
			log.Debug("pull request has no source commit, using creation date",
				"repository", pr.RepositoryName, "id", pr.ID)
			continue
		}
		g.Go(func() error {
			commit, err := e.source.LastCommit(gctx, pr.RepositoryID, pr.LastCommitID)
			if err != nil {
				return fmt.Errorf("last commit of pull request %d in %s: %w", pr.ID, pr.RepositoryName, err)
			}
			dates[i] = commit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prs := make([]model.PullRequest, 0, len(raw))
	for i, r := range raw {
		date := r.CreatedAt
		if !dates[i].AuthoredAt.IsZero() {
			date = dates[i].AuthoredAt
		}
		prs = append(prs, enrich(r, comments[i], date))
	}
	return prs, nil
}

func enrich(r model.RawPullRequest, activeComments int, date time.Time) model.PullRequest {
	votes := make([]model.Vote, 0, len(r.Reviewers))
	reviewers := make([]model.Reviewer, 0, len(r.Reviewers))
	for _, rv := range r.Reviewers {
		votes = append(votes, rv.Vote)
		reviewers = append(reviewers, model.Reviewer{Name: NormalizeReviewer(rv.UniqueName), Vote: rv.Vote})
	}

	return model.PullRequest{
		ID:             r.ID,
		Title:          r.Title,
		RepositoryID:   r.RepositoryID,
		Repository:     r.RepositoryName,
		Project:        r.Project,
		Author:         r.Author,
		Reviewers:      reviewers,
		Source:         BranchName(r.SourceRef),
		Target:         BranchName(r.TargetRef),
		CreatedAt:      r.CreatedAt,
		Date:           date,
		Status:         ClassifyVotes(votes),
		ActiveComments: activeComments,
		URL:            r.URL,
	}
}
