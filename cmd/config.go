package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spiffcs/nudge/config"
	"github.com/spiffcs/nudge/internal/format"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

When run without arguments, shows the current merged configuration.

Subcommands:
  init      Create a minimal config file
  path      Show config file locations
  defaults  Show all default values
  show      Show current merged config (same as bare 'nudge config')
  validate  Check the configuration and print the effective settings`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigInit())
	cmd.AddCommand(NewCmdConfigPath())
	cmd.AddCommand(NewCmdConfigDefaults())
	cmd.AddCommand(NewCmdConfigShow())
	cmd.AddCommand(NewCmdConfigValidate())

	return cmd
}

// NewCmdConfigInit creates the config init subcommand.
func NewCmdConfigInit() *cobra.Command {
	var global, local bool
	var organization string
	var projects []string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config file",
		Long: `Create a starter config file for an organization and its projects.

Use --global to create in ~/.config/nudge/config.yaml (applies everywhere)
Use --local to create in ./.nudge.yaml (applies only in this directory)
Without either, you'll be prompted to choose.`,
		Example: `  nudge config init --local --organization contoso -p Web -p Api`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := initTarget(cmd.InOrStdin(), cmd.OutOrStdout(), global, local)
			if err != nil {
				return err
			}
			return runConfigInit(cmd.OutOrStdout(), target, organization, projects)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Create global config file (~/.config/nudge/config.yaml)")
	cmd.Flags().BoolVar(&local, "local", false, "Create local config file (./.nudge.yaml)")
	cmd.Flags().StringVar(&organization, "organization", "", "Organization to write into the file")
	cmd.Flags().StringSliceVarP(&projects, "project", "p", nil, "Project to write into the file (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("global", "local")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  `Show the paths to global and local config files and indicate which exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigPath(cmd.OutOrStdout())
		},
	}
}

// NewCmdConfigDefaults creates the config defaults subcommand.
func NewCmdConfigDefaults() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Show all default configuration values",
		Long: `Show a complete configuration with all default values.

This can be redirected to create a config file with all defaults:
  nudge config defaults > ~/.config/nudge/config.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeConfig(cmd.OutOrStdout(), config.DefaultConfig(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current merged configuration",
		Long:  `Show the current configuration after merging global and local configs and the environment.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigValidate creates the config validate subcommand.
func NewCmdConfigValidate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and print the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), cfg)
		},
	}
}

// configTarget is where config init writes.
type configTarget struct {
	path     string
	location string
}

// initTarget resolves --global/--local, asking on in when neither is set.
func initTarget(in io.Reader, out io.Writer, global, local bool) (configTarget, error) {
	paths := config.GetConfigPaths()
	globalTarget := configTarget{path: paths.GlobalPath, location: "global"}
	localTarget := configTarget{path: paths.LocalPath, location: "local"}

	switch {
	case global && local:
		return configTarget{}, fmt.Errorf("cannot specify both --global and --local")
	case global:
		return globalTarget, nil
	case local:
		return localTarget, nil
	}

	fmt.Fprintln(out, "Where would you like to create the config file?")
	fmt.Fprintf(out, "  [1] Global (%s) - applies everywhere\n", paths.GlobalPath)
	fmt.Fprintf(out, "  [2] Local (%s) - applies only in this directory\n", paths.LocalPath)
	fmt.Fprint(out, "Choose [1/2]: ")

	choice, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && choice == "" {
		return configTarget{}, fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out)

	switch choice = strings.TrimSpace(choice); choice {
	case "1":
		return globalTarget, nil
	case "2":
		return localTarget, nil
	default:
		return configTarget{}, fmt.Errorf("invalid choice: %s (must be 1 or 2)", choice)
	}
}

func runConfigInit(out io.Writer, target configTarget, organization string, projects []string) error {
	if _, err := os.Stat(target.path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'nudge config show' to view current config", target.path)
	}

	if err := config.SaveTo(target.path, config.MinimalConfig(organization, projects)); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s config file: %s\n\n", target.location, target.path)
	if organization == "" || len(projects) == 0 {
		fmt.Fprintln(out, "Edit this file to set your organization and projects.")
	}
	fmt.Fprintln(out, "Run 'nudge config validate' to check the effective settings.")

	return nil
}

func runConfigPath(out io.Writer) error {
	paths := config.GetConfigPaths()

	fmt.Fprintln(out, "Configuration file locations:")
	fmt.Fprintln(out)

	globalStatus := "not found"
	if paths.GlobalExists {
		globalStatus = "exists"
	}
	fmt.Fprintf(out, "  Global: %s (%s)\n", paths.GlobalPath, globalStatus)

	localStatus := "not found"
	if paths.LocalExists {
		localStatus = "exists"
	}
	fmt.Fprintf(out, "  Local:  %s (%s)\n", paths.LocalPath, localStatus)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Load order: defaults -> global -> local -> environment -> flags")

	return nil
}

func runConfigShow(out io.Writer, outputFormat string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return writeConfig(out, cfg, outputFormat)
}

func writeConfig(out io.Writer, cfg *config.Config, outputFormat string) error {
	switch outputFormat {
	case "yaml":
		yamlStr, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Fprint(out, yamlStr)
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", outputFormat)
	}

	return nil
}

// printSettings resolves the configuration the way a run would and prints
// the result.
func printSettings(out io.Writer, cfg *config.Config) error {
	platform, err := cfg.GetPlatform()
	if err != nil {
		return err
	}
	mode, err := cfg.GetMessageMode()
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	allow, ignore := settings.Policy.Patterns()
	t := settings.Thresholds

	fmt.Fprintf(out, "Platform:        %s\n", platform)
	fmt.Fprintf(out, "Organization:    %s\n", cfg.Organization)
	fmt.Fprintf(out, "Projects:        %s\n", strings.Join(cfg.Projects, ", "))
	fmt.Fprintf(out, "Include drafts:  %t\n", settings.IncludeDrafts)
	fmt.Fprintf(out, "Age since:       %s\n", settings.AgeSince)
	fmt.Fprintf(out, "Message format:  %s\n", mode)
	fmt.Fprintf(out, "Pull requests:   warning after %s, danger after %s\n",
		format.FormatHours(t.PullRequestWarning), format.FormatHours(t.PullRequestDanger))
	fmt.Fprintf(out, "Branches:        warning after %s, danger after %s\n",
		format.FormatHours(t.BranchWarning), format.FormatHours(t.BranchDanger))
	fmt.Fprintf(out, "Allow branches:  %s\n", allow)
	fmt.Fprintf(out, "Ignore branches: %s\n", ignore)

	if cal := settings.Calendar; cal != nil {
		fmt.Fprintf(out, "Business time:   days %v, hours %v (%s)\n", cal.Weekdays(), cal.Hours(), cal.Location())
	} else {
		fmt.Fprintln(out, "Business time:   off (wall clock hours)")
	}
	fmt.Fprintf(out, "Dry run:         %t\n", cfg.DryRun)
	return nil
}
