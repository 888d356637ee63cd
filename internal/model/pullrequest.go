package model

import "time"

// RawReviewer is a reviewer as reported by the remote platform.
type RawReviewer struct {
	UniqueName string
	Vote       Vote
}

// RawPullRequest is an open pull request as reported by the remote
// platform, before enrichment.
type RawPullRequest struct {
	ID             int
	Title          string
	RepositoryID   string
	RepositoryName string
	Project        string
	Author         string
	Reviewers      []RawReviewer
	SourceRef      string
	TargetRef      string
	CreatedAt      time.Time
	LastCommitID   string
	IsDraft        bool
	URL            string
}

// Reviewer is a reviewer with a normalized handle.
type Reviewer struct {
	Name string
	Vote Vote
}

// PullRequest is an enriched review request.
type PullRequest struct {
	ID             int
	Title          string
	RepositoryID   string
	Repository     string
	Project        string
	Author         string
	Reviewers      []Reviewer
	Source         string
	Target         string
	CreatedAt      time.Time
	Date           time.Time // start of the current activity bucket
	Status         Status
	ActiveComments int
	URL            string
}

// Commit is the subset of commit metadata nudge needs.
type Commit struct {
	ID         string
	AuthoredAt time.Time
}
