package model

// Severity is the urgency band of a notification.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityWarning
	SeverityDanger
)

// Color returns the channel attachment color for the severity.
func (s Severity) Color() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return "good"
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return "neutral"
	}
}

// Thresholds are the age bands, in hours, for pull requests and branches.
type Thresholds struct {
	PullRequestWarning int
	PullRequestDanger  int
	BranchWarning      int
	BranchDanger       int
}

// PullRequestSeverity bands a pull request age.
func (t Thresholds) PullRequestSeverity(age int) Severity {
	return band(age, t.PullRequestWarning, t.PullRequestDanger)
}

// BranchSeverity bands an inactive branch age.
func (t Thresholds) BranchSeverity(age int) Severity {
	return band(age, t.BranchWarning, t.BranchDanger)
}

func band(age, warning, danger int) Severity {
	switch {
	case age <= warning:
		return SeverityNeutral
	case age <= danger:
		return SeverityWarning
	default:
		return SeverityDanger
	}
}
