package nudge

import (
	"fmt"

	"github.com/spiffcs/nudge/internal/calendar"
	"github.com/spiffcs/nudge/internal/constants"
	"github.com/spiffcs/nudge/internal/model"
)

// AgeSource selects the instant a pull request's age is measured from.
type AgeSource int

const (
	// AgeSinceCreation measures from when review was requested.
	AgeSinceCreation AgeSource = iota
	// AgeSinceCommit measures from the author date of the last source commit.
	AgeSinceCommit
)

func (a AgeSource) String() string {
	if a == AgeSinceCommit {
		return "commit"
	}
	return "creation"
}

// ParseAgeSource parses "creation" or "commit". Empty means creation.
func ParseAgeSource(s string) (AgeSource, error) {
	switch s {
	case "", "creation":
		return AgeSinceCreation, nil
	case "commit":
		return AgeSinceCommit, nil
	default:
		return AgeSinceCreation, fmt.Errorf("unknown age source %q (use creation or commit)", s)
	}
}

// Settings is the immutable engine configuration for one run.
type Settings struct {
	IncludeDrafts bool
	AgeSince      AgeSource
	Thresholds    model.Thresholds
	Policy        *BranchPolicy
	Calendar      *calendar.Calendar // nil counts wall-clock hours
}

// DefaultThresholds returns the stock age bands.
func DefaultThresholds() model.Thresholds {
	return model.Thresholds{
		PullRequestWarning: constants.PullRequestAgeWarning,
		PullRequestDanger:  constants.PullRequestAgeDanger,
		BranchWarning:      constants.BranchAgeWarning,
		BranchDanger:       constants.BranchAgeDanger,
	}
}

// DefaultSettings returns settings with stock thresholds, the permissive
// branch policy and no business calendar.
func DefaultSettings() Settings {
	return Settings{
		Thresholds: DefaultThresholds(),
		Policy:     DefaultBranchPolicy(),
	}
}
