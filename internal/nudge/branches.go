package nudge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
)

// Branches classifies the branches of every repository in a project as
// forbidden or inactive. Listing the repositories must succeed; a
// repository whose branches cannot be listed contributes nothing.
func (e *Engine) Branches(ctx context.Context, project string, prs []model.PullRequest, now time.Time) (model.BranchReport, error) {
	repos, err := e.source.Repositories(ctx, project)
	if err != nil {
		return model.BranchReport{}, fmt.Errorf("listing repositories: %w", err)
	}
	log.Debug("fetched repositories", "project", project, "count", len(repos))

	branches := make([][]model.Branch, len(repos))
	var wg sync.WaitGroup
	for i, repo := range repos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := e.source.Branches(ctx, repo.ID)
			if err != nil {
				log.Debug("skipping repository, branch listing failed",
					"project", project, "repository", repo.Name, "error", err)
				return
			}
			branches[i] = list
		}()
	}
	wg.Wait()

	covered := coveredBranches(prs)
	policy := e.settings.Policy

	var report model.BranchReport
	for i, repo := range repos {
		for _, b := range branches[i] {
			if policy.Forbidden(b.Name) {
				report.Forbidden = append(report.Forbidden, model.ForbiddenBranch{Repository: repo.Name, Branch: b.Name})
			}
			if !policy.Watched(b.Name) {
				continue
			}
			if b.LastCommitAt.IsZero() {
				log.Debug("skipping branch without a commit date",
					"project", project, "repository", repo.Name, "branch", b.Name)
				continue
			}
			age := e.settings.Calendar.Age(b.LastCommitAt, now)
			if age <= e.settings.Thresholds.BranchWarning {
				continue
			}
			if covered[branchKey{repo.Name, b.Name}] {
				continue
			}
			report.Inactive = append(report.Inactive, model.InactiveBranch{Repository: repo.Name, Branch: b.Name, Age: age})
		}
	}
	return report, nil
}

type branchKey struct {
	repository string
	branch     string
}

// coveredBranches indexes the source branches of open pull requests.
func coveredBranches(prs []model.PullRequest) map[branchKey]bool {
	covered := make(map[branchKey]bool, len(prs))
	for _, pr := range prs {
		covered[branchKey{pr.Repository, pr.Source}] = true
	}
	return covered
}
