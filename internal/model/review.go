// Package model holds the domain types shared by the sources, the engine
// and the notification layers.
package model

// Vote is a reviewer's verdict on a pull request.
type Vote int

const (
	VoteRejected                Vote = -10
	VoteWaitingForAuthor        Vote = -5
	VoteNone                    Vote = 0
	VoteApprovedWithSuggestions Vote = 5
	VoteApproved                Vote = 10
)

// Status is the aggregate review status of a pull request.
type Status int

const (
	StatusNoVote Status = iota
	StatusApproved
	StatusApprovedWithSuggestions
	StatusWaitingForAuthor
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusApprovedWithSuggestions:
		return "Approved with suggestions"
	case StatusWaitingForAuthor:
		return "Waiting for author"
	case StatusRejected:
		return "Rejected"
	default:
		return "No vote"
	}
}

// ThreadStatus is the state of a discussion thread on a pull request.
type ThreadStatus string

const (
	ThreadStatusActive   ThreadStatus = "active"
	ThreadStatusFixed    ThreadStatus = "fixed"
	ThreadStatusWontFix  ThreadStatus = "wontFix"
	ThreadStatusClosed   ThreadStatus = "closed"
	ThreadStatusByDesign ThreadStatus = "byDesign"
	ThreadStatusPending  ThreadStatus = "pending"
	ThreadStatusUnknown  ThreadStatus = "unknown"
)

// Thread is a discussion thread on a pull request.
type Thread struct {
	Status  ThreadStatus
	Deleted bool
}

// Unresolved reports whether the thread still needs attention.
func (t Thread) Unresolved() bool {
	return t.Status == ThreadStatusActive && !t.Deleted
}

// CountUnresolved returns the number of unresolved threads.
func CountUnresolved(threads []Thread) int {
	n := 0
	for _, t := range threads {
		if t.Unresolved() {
			n++
		}
	}
	return n
}
