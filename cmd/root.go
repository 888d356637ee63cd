package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "nudge",
		Short: "Remind teams about waiting pull requests and stray branches",
		Long: `A CLI tool that reads the open pull requests and branches of your
projects and posts reminders to a Slack channel: pull requests waiting for
review, branches that break the naming policy, and branches nobody has
touched in a while.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNudge(cmd, opts)
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add run flags to root command so `nudge` and `nudge run` work identically
	addRunFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdRun(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdAge())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
