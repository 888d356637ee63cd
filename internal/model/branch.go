package model

import "time"

// Repository is a source repository within a project.
type Repository struct {
	ID   string
	Name string
}

// Branch is a branch head with the author date of its last commit.
type Branch struct {
	Name         string
	LastCommitAt time.Time
}

// ForbiddenBranch violates the naming policy.
type ForbiddenBranch struct {
	Repository string
	Branch     string
}

// InactiveBranch is allowed but stale and not the source of any open
// pull request. Age is in hours.
type InactiveBranch struct {
	Repository string
	Branch     string
	Age        int
}

// BranchReport is the outcome of a branch policy run.
type BranchReport struct {
	Forbidden []ForbiddenBranch
	Inactive  []InactiveBranch
}
