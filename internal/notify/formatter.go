package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/nudge/internal/calendar"
	"github.com/spiffcs/nudge/internal/constants"
	"github.com/spiffcs/nudge/internal/format"
	"github.com/spiffcs/nudge/internal/model"
)

// Formatter turns domain records into messages.
type Formatter struct {
	mode       Mode
	thresholds model.Thresholds
	calendar   *calendar.Calendar
}

// NewFormatter creates a Formatter. A nil calendar measures wall-clock ages.
func NewFormatter(mode Mode, thresholds model.Thresholds, cal *calendar.Calendar) *Formatter {
	return &Formatter{mode: mode, thresholds: thresholds, calendar: cal}
}

// StatusText appends the unresolved comment count to a status, if any.
func StatusText(status model.Status, activeComments int) string {
	if activeComments <= 0 {
		return status.String()
	}
	return fmt.Sprintf("%s (%s)", status, format.Plural(activeComments, "unresolved comment", "unresolved comments"))
}

// PullRequests formats the open pull requests of a project.
func (f *Formatter) PullRequests(project string, prs []model.PullRequest, now time.Time) Batch {
	msgs := make([]Message, 0, len(prs))
	for _, pr := range prs {
		msgs = append(msgs, f.PullRequest(pr, now))
	}
	return NewBatch(project, constants.CategoryPullRequests, msgs)
}

// PullRequest formats a single pull request. Both modes carry the same
// facts; only long mode stamps the creation time.
func (f *Formatter) PullRequest(pr model.PullRequest, now time.Time) Message {
	age := f.calendar.Age(pr.Date, now)
	status := StatusText(pr.Status, pr.ActiveComments)
	branch := fmt.Sprintf("`%s` into `%s`", pr.Source, pr.Target)
	reviewers := reviewerNames(pr.Reviewers)

	msg := Message{
		Title:     pr.Title,
		TitleLink: pr.URL,
		Fallback:  fmt.Sprintf("%s by %s", pr.Title, pr.Author),
		Severity:  f.thresholds.PullRequestSeverity(age),
	}

	if f.mode == ModeShort {
		msg.Text = fmt.Sprintf("%s in `%s`: %s, %s", pr.Author, pr.Repository, branch, status)
		if reviewers != "" {
			msg.Text += ", reviewers: " + reviewers
		}
		msg.MarkdownIn = []string{"text"}
		return msg
	}

	msg.Timestamp = pr.CreatedAt
	msg.Fields = []Field{
		{Title: "Author", Value: pr.Author, Short: true},
		{Title: "Repository", Value: pr.Repository, Short: true},
		{Title: "Branch", Value: branch},
		{Title: "Status", Value: status},
	}
	if reviewers != "" {
		msg.Fields = append(msg.Fields, Field{Title: "Reviewers", Value: reviewers})
	}
	msg.MarkdownIn = []string{"fields"}
	return msg
}

func reviewerNames(reviewers []model.Reviewer) string {
	names := make([]string, 0, len(reviewers))
	for _, r := range reviewers {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

// ForbiddenBranches formats branches that violate the naming policy. They
// carry no age and are always reported as danger.
func (f *Formatter) ForbiddenBranches(project string, branches []model.ForbiddenBranch) Batch {
	msgs := make([]Message, 0, len(branches))
	for _, b := range branches {
		msg := Message{
			Title:    b.Branch,
			Fallback: fmt.Sprintf("%s in %s", b.Branch, b.Repository),
			Severity: model.SeverityDanger,
		}
		if f.mode == ModeShort {
			msg.Text = fmt.Sprintf("in `%s`", b.Repository)
			msg.MarkdownIn = []string{"text"}
		} else {
			msg.Fields = []Field{
				{Title: "Repository", Value: b.Repository, Short: true},
				{Title: "Branch", Value: fmt.Sprintf("`%s`", b.Branch), Short: true},
			}
			msg.MarkdownIn = []string{"fields"}
		}
		msgs = append(msgs, msg)
	}
	return NewBatch(project, constants.CategoryForbiddenBranches, msgs)
}

// InactiveBranches formats stale branches, banded by the branch thresholds.
func (f *Formatter) InactiveBranches(project string, branches []model.InactiveBranch) Batch {
	msgs := make([]Message, 0, len(branches))
	for _, b := range branches {
		age := format.FormatHours(b.Age)
		msg := Message{
			Title:    b.Branch,
			Fallback: fmt.Sprintf("%s in %s, inactive for %s", b.Branch, b.Repository, age),
			Severity: f.thresholds.BranchSeverity(b.Age),
		}
		if f.mode == ModeShort {
			msg.Text = fmt.Sprintf("in `%s`, inactive for %s", b.Repository, age)
			msg.MarkdownIn = []string{"text"}
		} else {
			msg.Fields = []Field{
				{Title: "Repository", Value: b.Repository, Short: true},
				{Title: "Inactive for", Value: age, Short: true},
			}
			msg.MarkdownIn = []string{"fields"}
		}
		msgs = append(msgs, msg)
	}
	return NewBatch(project, constants.CategoryInactiveBranches, msgs)
}
