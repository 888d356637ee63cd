package nudge

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"
	"time"

	"github.com/spiffcs/nudge/internal/dispatch"
	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
	"github.com/spiffcs/nudge/internal/notify"
)

// Notifier delivers batches. *dispatch.Dispatcher satisfies it.
type Notifier interface {
	Dispatch(ctx context.Context, batch notify.Batch) dispatch.Outcome
}

var _ Notifier = (*dispatch.Dispatcher)(nil)

// ErrNoProjects is returned when a run is started without projects.
var ErrNoProjects = errors.New("no projects configured")

// Step identifies a stage of processing a project.
type Step int

const (
	StepPullRequests Step = iota
	StepBranches
	StepNotify
)

func (s Step) String() string {
	switch s {
	case StepBranches:
		return "branches"
	case StepNotify:
		return "notify"
	default:
		return "pull requests"
	}
}

// Progress describes a step transition, for progress displays.
type Progress struct {
	Project string
	Index   int // zero-based position of Project in the run
	Total   int
	Step    Step
	Done    bool
	Count   int // items found, or batches delivered for StepNotify
	Err     error
}

// CategoryResult is the dispatch result of one category.
type CategoryResult struct {
	Category string
	Count    int
	Outcome  dispatch.Outcome
}

// ProjectReport is what happened to one project.
type ProjectReport struct {
	Project      string
	PullRequests []model.PullRequest
	Branches     model.BranchReport
	Categories   []CategoryResult
	Err          error
}

// Report is the outcome of a run.
type Report struct {
	Projects []ProjectReport
}

// Failed returns the number of projects that could not be processed.
func (r Report) Failed() int {
	n := 0
	for _, p := range r.Projects {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Runner processes projects one after another.
type Runner struct {
	engine     *Engine
	formatter  *notify.Formatter
	notifier   Notifier
	now        func() time.Time
	onProgress func(Progress)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock overrides the time source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithProgress registers a callback for step transitions.
func WithProgress(fn func(Progress)) RunnerOption {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// NewRunner creates a Runner.
func NewRunner(engine *Engine, formatter *notify.Formatter, notifier Notifier, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:    engine,
		formatter: formatter,
		notifier:  notifier,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) report(p Progress) {
	if r.onProgress != nil {
		r.onProgress(p)
	}
}

// Run processes each project in order. A project that fails is logged and
// skipped; the failures are joined into the returned error.
func (r *Runner) Run(ctx context.Context, projects []string) (Report, error) {
	if len(projects) == 0 {
		return Report{}, ErrNoProjects
	}

	var report Report
	var errs []error
	for i, project := range projects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		pr := r.runProject(ctx, project, i, len(projects))
		report.Projects = append(report.Projects, pr)
		if pr.Err != nil {
			log.Error("failed to process project", "project", project, "error", pr.Err)
			errs = append(errs, fmt.Errorf("project %s: %w", project, pr.Err))
		}
	}
	return report, errors.Join(errs...)
}

func (r *Runner) runProject(ctx context.Context, project string, index, total int) ProjectReport {
	ctx, task := trace.NewTask(ctx, "project")
	defer task.End()
	trace.Log(ctx, "project", project)

	out := ProjectReport{Project: project}
	var region *trace.Region
	step := func(s Step, done bool, count int, err error) {
		if done {
			region.End()
		} else {
			region = trace.StartRegion(ctx, s.String())
		}
		r.report(Progress{Project: project, Index: index, Total: total, Step: s, Done: done, Count: count, Err: err})
	}
	now := r.now()

	step(StepPullRequests, false, 0, nil)
	prs, err := r.engine.PullRequests(ctx, project)
	step(StepPullRequests, true, len(prs), err)
	if err != nil {
		out.Err = err
		return out
	}
	out.PullRequests = prs

	step(StepBranches, false, 0, nil)
	branches, err := r.engine.Branches(ctx, project, prs, now)
	step(StepBranches, true, len(branches.Forbidden)+len(branches.Inactive), err)
	if err != nil {
		out.Err = err
		return out
	}
	out.Branches = branches

	step(StepNotify, false, 0, nil)
	delivered := 0
	for _, batch := range []notify.Batch{
		r.formatter.PullRequests(project, prs, now),
		r.formatter.ForbiddenBranches(project, branches.Forbidden),
		r.formatter.InactiveBranches(project, branches.Inactive),
	} {
		outcome := r.notifier.Dispatch(ctx, batch)
		if outcome == dispatch.OutcomeDelivered {
			delivered++
		}
		out.Categories = append(out.Categories, CategoryResult{
			Category: batch.Category,
			Count:    len(batch.Messages),
			Outcome:  outcome,
		})
	}
	step(StepNotify, true, delivered, nil)
	return out
}
