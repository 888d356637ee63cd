// Package constants provides a centralized location for the defaults and
// magic numbers used throughout nudge.
package constants

import "time"

// Age thresholds, in hours.
const (
	// PullRequestAgeWarning is the age after which a pull request is
	// colored as a warning.
	PullRequestAgeWarning = 24

	// PullRequestAgeDanger is the age after which a pull request is
	// colored as danger.
	PullRequestAgeDanger = 168

	// BranchAgeWarning is the age after which a branch without an open
	// pull request is reported as inactive.
	BranchAgeWarning = 168

	// BranchAgeDanger splits inactive branches between warning and danger.
	BranchAgeDanger = 720
)

// CalendarWalkLimit bounds the hour-by-hour business calendar walk. Older
// spans are measured in wall-clock hours.
const CalendarWalkLimit = 30 * 24 * time.Hour

// Remote API constants
const (
	// AzurePageSize is the number of pull requests requested per page.
	AzurePageSize = 100

	// AzureDefaultHost is prefixed to a bare organization name.
	AzureDefaultHost = "https://dev.azure.com"

	// GitHubPageSize is the page size for REST and GraphQL listings.
	GitHubPageSize = 100

	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Notification categories, used in channel text and log lines.
const (
	CategoryPullRequests      = "pull requests"
	CategoryForbiddenBranches = "forbidden branches"
	CategoryInactiveBranches  = "inactive branches"
)

// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
const TruncationSuffixWidth = 3
