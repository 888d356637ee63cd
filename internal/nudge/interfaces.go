// Package nudge turns the open pull requests and branches of a project into
// classified, age-banded notifications.
package nudge

import (
	"context"

	"github.com/spiffcs/nudge/internal/model"
)

// Source is the remote platform nudge reads from.
type Source interface {
	// PullRequests returns the open pull requests of a project, newest first.
	PullRequests(ctx context.Context, project string) ([]model.RawPullRequest, error)

	// Threads returns the discussion threads of a pull request.
	Threads(ctx context.Context, repositoryID string, pullRequestID int) ([]model.Thread, error)

	// LastCommit looks up a commit of a repository.
	LastCommit(ctx context.Context, repositoryID, commitID string) (model.Commit, error)

	// Repositories lists the repositories of a project.
	Repositories(ctx context.Context, project string) ([]model.Repository, error)

	// Branches lists the branches of a repository.
	Branches(ctx context.Context, repositoryID string) ([]model.Branch, error)
}
