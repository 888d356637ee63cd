package nudge

import (
	"fmt"
	"regexp"
)

// BranchPolicy decides which branch names are allowed and which are exempt.
// Both patterns are anchored at both ends.
type BranchPolicy struct {
	allow  *regexp.Regexp
	ignore *regexp.Regexp
}

// NewBranchPolicy compiles the allow and ignore patterns. An empty allow
// pattern matches every name and an empty ignore pattern matches only the
// empty name.
func NewBranchPolicy(allow, ignore string) (*BranchPolicy, error) {
	if allow == "" {
		allow = ".*"
	}
	a, err := regexp.Compile(anchor(allow))
	if err != nil {
		return nil, fmt.Errorf("invalid allow pattern %q: %w", allow, err)
	}
	i, err := regexp.Compile(anchor(ignore))
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern %q: %w", ignore, err)
	}
	return &BranchPolicy{allow: a, ignore: i}, nil
}

// DefaultBranchPolicy allows every branch and ignores none.
func DefaultBranchPolicy() *BranchPolicy {
	p, _ := NewBranchPolicy("", "")
	return p
}

func anchor(pattern string) string {
	return "^(?:" + pattern + ")$"
}

// Allowed reports whether name matches the allow pattern.
func (p *BranchPolicy) Allowed(name string) bool { return p.allow.MatchString(name) }

// Ignored reports whether name matches the ignore pattern.
func (p *BranchPolicy) Ignored(name string) bool { return p.ignore.MatchString(name) }

// Forbidden reports whether name violates the policy. Ignored names are
// never forbidden.
func (p *BranchPolicy) Forbidden(name string) bool {
	return !(p.Allowed(name) || p.Ignored(name))
}

// Watched reports whether name is subject to inactivity checks.
func (p *BranchPolicy) Watched(name string) bool {
	return p.Allowed(name) && !p.Ignored(name)
}

// Patterns returns the anchored allow and ignore expressions.
func (p *BranchPolicy) Patterns() (allow, ignore string) {
	return p.allow.String(), p.ignore.String()
}
