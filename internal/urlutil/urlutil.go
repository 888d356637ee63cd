// Package urlutil builds web links to remote resources.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spiffcs/nudge/internal/constants"
)

// OrganizationURL turns an organization name into its Azure DevOps URL.
// Values that already look like URLs are returned without a trailing slash.
func OrganizationURL(org string) string {
	org = strings.TrimRight(strings.TrimSpace(org), "/")
	if strings.HasPrefix(org, "https://") || strings.HasPrefix(org, "http://") {
		return org
	}
	return constants.AzureDefaultHost + "/" + org
}

// PullRequestURL returns the browser link for an Azure DevOps pull request:
// {org}/{project}/_git/{repository}/pullrequest/{id}.
func PullRequestURL(orgURL, project, repository string, id int) string {
	return fmt.Sprintf("%s/%s/_git/%s/pullrequest/%d",
		strings.TrimRight(orgURL, "/"), url.PathEscape(project), url.PathEscape(repository), id)
}
