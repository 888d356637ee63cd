package nudge_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spiffcs/nudge/internal/model"
)

// fakeSource serves canned data keyed by project and repository.
type fakeSource struct {
	mu sync.Mutex

	pullRequests map[string][]model.RawPullRequest
	threads      map[int][]model.Thread
	commits      map[string]model.Commit
	repositories map[string][]model.Repository
	branches     map[string][]model.Branch

	pullRequestsErr error
	threadErr       map[int]error
	commitErr       error
	repositoriesErr error
	branchErr       map[string]error

	threadCalls []int
	commitCalls []string
}

var errNotFound = errors.New("not found")

func (f *fakeSource) PullRequests(_ context.Context, project string) ([]model.RawPullRequest, error) {
	if f.pullRequestsErr != nil {
		return nil, f.pullRequestsErr
	}
	return f.pullRequests[project], nil
}

func (f *fakeSource) Threads(_ context.Context, _ string, id int) ([]model.Thread, error) {
	f.mu.Lock()
	f.threadCalls = append(f.threadCalls, id)
	f.mu.Unlock()
	if err := f.threadErr[id]; err != nil {
		return nil, err
	}
	return f.threads[id], nil
}

func (f *fakeSource) LastCommit(_ context.Context, repositoryID, commitID string) (model.Commit, error) {
	f.mu.Lock()
	f.commitCalls = append(f.commitCalls, commitID)
	f.mu.Unlock()
	if f.commitErr != nil {
		return model.Commit{}, f.commitErr
	}
	c, ok := f.commits[commitID]
	if !ok {
		return model.Commit{}, fmt.Errorf("commit %s in %s: %w", commitID, repositoryID, errNotFound)
	}
	return c, nil
}

func (f *fakeSource) Repositories(_ context.Context, project string) ([]model.Repository, error) {
	if f.repositoriesErr != nil {
		return nil, f.repositoriesErr
	}
	return f.repositories[project], nil
}

func (f *fakeSource) Branches(_ context.Context, repositoryID string) ([]model.Branch, error) {
	if err := f.branchErr[repositoryID]; err != nil {
		return nil, err
	}
	return f.branches[repositoryID], nil
}
