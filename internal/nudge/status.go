package nudge

import (
	"strings"

	"github.com/spiffcs/nudge/internal/model"
)

// ClassifyVotes derives the review status from reviewer votes. The most
// negative recognized vote wins.
func ClassifyVotes(votes []model.Vote) model.Status {
	has := func(v model.Vote) bool {
		for _, vote := range votes {
			if vote == v {
				return true
			}
		}
		return false
	}

	switch {
	case has(model.VoteRejected):
		return model.StatusRejected
	case has(model.VoteWaitingForAuthor):
		return model.StatusWaitingForAuthor
	case has(model.VoteApprovedWithSuggestions):
		return model.StatusApprovedWithSuggestions
	case has(model.VoteApproved):
		return model.StatusApproved
	default:
		return model.StatusNoVote
	}
}

// NormalizeReviewer reduces "user@example.com" to "user" and
// "DOMAIN\user" to "user".
func NormalizeReviewer(uniqueName string) string {
	if local, _, ok := strings.Cut(uniqueName, "@"); ok {
		return local
	}
	if i := strings.LastIndex(uniqueName, `\`); i >= 0 {
		return uniqueName[i+1:]
	}
	return uniqueName
}

// BranchName strips the refs/heads/ prefix from a ref name.
func BranchName(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}
