package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/nudge/config"
	"github.com/spiffcs/nudge/internal/calendar"
	"github.com/spiffcs/nudge/internal/format"
	"github.com/spiffcs/nudge/internal/model"
)

// NewCmdAge creates the age command.
func NewCmdAge() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "age <timestamp>",
		Short: "Show how old a timestamp is under the configured calendar",
		Long: `Show the wall clock age and the counted age of an RFC 3339 timestamp,
and the severity a pull request or branch of that age would get.

The counted age only includes business days and hours when both are
configured; otherwise it equals the wall clock age.`,
		Example: `  nudge age 2024-03-01T09:00:00Z
  BUSINESS_DAYS=1-5 BUSINESS_HOURS=9-17 nudge age 2024-03-01T09:00:00+01:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := time.Parse(time.RFC3339, args[0])
			if err != nil {
				return fmt.Errorf("invalid timestamp %q: %w", args[0], err)
			}
			now := time.Now()
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --now %q: %w", at, err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cal, err := cfg.Calendar()
			if err != nil {
				return err
			}
			printAge(cmd.OutOrStdout(), ref, now, cal, cfg.GetThresholds())
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "now", "", "Measure up to this RFC 3339 instant instead of the current time")
	return cmd
}

func printAge(w io.Writer, ref, now time.Time, cal *calendar.Calendar, t model.Thresholds) {
	wall := (*calendar.Calendar)(nil).Age(ref, now)
	counted := cal.Age(ref, now)

	fmt.Fprintf(w, "Wall clock: %d hours (%s)\n", wall, format.FormatHours(wall))
	if cal != nil {
		fmt.Fprintf(w, "Counted:    %d hours (%s)\n", counted, format.FormatHours(counted))
	}
	fmt.Fprintf(w, "Pull request severity: %s\n", t.PullRequestSeverity(counted))
	fmt.Fprintf(w, "Branch severity:       %s\n", t.BranchSeverity(counted))
}
