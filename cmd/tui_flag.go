package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spiffcs/nudge/internal/tui"
)

// tuiFlag is the --tui value. Unset means auto-detect.
type tuiFlag struct {
	target **bool
}

func newTUIFlag(opts *Options) *tuiFlag {
	return &tuiFlag{target: &opts.TUI}
}

func (f *tuiFlag) String() string {
	if *f.target == nil {
		return "auto"
	}
	return strconv.FormatBool(**f.target)
}

func (f *tuiFlag) Set(s string) error {
	if strings.EqualFold(s, "auto") {
		*f.target = nil
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid value %q: use true, false or auto", s)
	}
	*f.target = &v
	return nil
}

func (f *tuiFlag) Type() string { return "bool" }

func (f *tuiFlag) IsBoolFlag() bool { return true }

// shouldUseTUI decides whether the progress display replaces log output.
// Verbose runs always log.
func shouldUseTUI(opts *Options) bool {
	switch {
	case opts.Verbosity > 0:
		return false
	case opts.TUI != nil:
		return *opts.TUI
	default:
		return tui.ShouldUseTUI()
	}
}
