package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spiffcs/nudge/config"
	"github.com/spiffcs/nudge/internal/devops"
	"github.com/spiffcs/nudge/internal/dispatch"
	"github.com/spiffcs/nudge/internal/format"
	"github.com/spiffcs/nudge/internal/ghclient"
	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/notify"
	"github.com/spiffcs/nudge/internal/nudge"
	"github.com/spiffcs/nudge/internal/output"
	"github.com/spiffcs/nudge/internal/tui"
)

// runRuntime bundles TUI-related state that's threaded through a run.
type runRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *runRuntime) startTUI() {
	if !rt.useTUI {
		return
	}
	log.Discard()
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events)
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *runRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	if err := <-rt.tuiDone; err != nil {
		fmt.Fprintf(os.Stderr, "progress display failed: %v\n", err)
	}
	rt.events = nil
}

// onProgress forwards runner progress to the active display.
func (rt *runRuntime) onProgress(p nudge.Progress) {
	if rt.events != nil {
		tui.ProgressHandler(rt.events)(p)
		return
	}
	logProgress(p)
}

// logProgress prints one progress line per project when the TUI is off.
func logProgress(p nudge.Progress) {
	switch {
	case p.Step == nudge.StepPullRequests && !p.Done:
		log.Progress("Processing %s (%d/%d)...", p.Project, p.Index+1, p.Total)
	case p.Step == nudge.StepNotify && p.Done:
		log.ProgressDone()
	}
}

// NewCmdRun creates the run command.
func NewCmdRun(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check projects and send reminders (same as root nudge)",
		Long: `Reads open pull requests and branches of every configured project,
classifies them, and posts three batches per project to the Slack channel:
pull requests, forbidden branches and inactive branches.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNudge(cmd, opts)
		},
	}

	addRunFlags(cmd, opts)
	return cmd
}

// addRunFlags adds the run-specific flags to a command.
func addRunFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringSliceVarP(&opts.Projects, "project", "p", nil, "Project to check (repeatable; overrides config)")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "Platform (azure, github)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Build notifications without sending them")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Preview notifications (table, json, markdown)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Message format (short, long)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
	cmd.Flags().Lookup("tui").NoOptDefVal = "true"

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

// applyOptions layers command-line flags over the loaded configuration.
func applyOptions(cfg *config.Config, opts *Options) {
	if len(opts.Projects) > 0 {
		cfg.Projects = opts.Projects
	}
	if opts.Platform != "" {
		cfg.Platform = opts.Platform
	}
	if opts.Format != "" {
		cfg.MessageFormat = opts.Format
	}
	if opts.DryRun {
		cfg.DryRun = true
	}
}

// previewFormat decides whether batches are rendered locally. Dry runs
// always preview so there is something to look at.
func previewFormat(cfg *config.Config, opts *Options) (output.Format, bool, error) {
	name := opts.Output
	if name == "" && cfg.DryRun {
		name = cfg.DefaultOutput
		if name == "" {
			name = string(output.FormatTable)
		}
	}
	if name == "" {
		return "", false, nil
	}
	f, err := output.ParseFormat(name)
	if err != nil {
		return "", false, err
	}
	return f, true, nil
}

func runNudge(cmd *cobra.Command, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Initialize(log.Level(opts.Verbosity), os.Stderr)

	prof, err := startProfiling(opts)
	if err != nil {
		return err
	}
	defer prof.stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOptions(cfg, opts)

	rt := &runRuntime{useTUI: shouldUseTUI(opts)}
	runner, ghClient, preview, err := buildRunner(ctx, cfg, opts, nudge.WithProgress(rt.onProgress))
	if err != nil {
		return err
	}
	rt.startTUI()

	report, runErr := runner.Run(ctx, cfg.Projects)

	if ghClient != nil {
		if _, _, resetAt, limited := ghClient.RateLimitState().Status(); limited {
			tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: true, ResetAt: resetAt})
		}
	}
	rt.close()

	if preview != nil {
		_, _ = io.Copy(cmd.OutOrStdout(), preview)
	}
	printSummary(os.Stderr, report, cfg.DryRun)
	return runErr
}

// buildRunner wires the source, formatter and dispatcher for one run.
// Previews are buffered so they do not interleave with the progress display.
func buildRunner(ctx context.Context, cfg *config.Config, opts *Options, runnerOpts ...nudge.RunnerOption) (*nudge.Runner, *ghclient.Client, *bytes.Buffer, error) {
	platform, err := cfg.GetPlatform()
	if err != nil {
		return nil, nil, nil, err
	}
	mode, err := cfg.GetMessageMode()
	if err != nil {
		return nil, nil, nil, err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(cfg.Projects) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: set projects in the config file, %s, or --project", nudge.ErrNoProjects, config.EnvProject)
	}

	var source nudge.Source
	var ghClient *ghclient.Client
	switch platform {
	case config.PlatformGitHub:
		ghClient, err = ghclient.NewClient(ctx, cfg.GetGitHubToken())
		source = ghClient
	default:
		source, err = devops.NewClient(ctx, cfg.Organization, cfg.GetAzureToken())
	}
	if err != nil {
		return nil, nil, nil, err
	}

	var sender dispatch.Sender
	if !cfg.DryRun {
		webhook, err := dispatch.NewSlackWebhook(cfg.GetWebhook(), nil)
		if err != nil {
			return nil, nil, nil, err
		}
		sender = webhook
	}

	dispatchOpts := []dispatch.Option{dispatch.WithDryRun(cfg.DryRun)}
	var preview *bytes.Buffer
	f, ok, err := previewFormat(cfg, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	if ok {
		preview = &bytes.Buffer{}
		dispatchOpts = append(dispatchOpts, dispatch.WithPreview(output.NewFormatter(f), preview))
	}

	log.Debug("configuration resolved",
		"platform", platform,
		"projects", strings.Join(cfg.Projects, ","),
		"mode", mode,
		"age_since", settings.AgeSince,
		"calendar", settings.Calendar != nil,
		"dry_run", cfg.DryRun)

	engine := nudge.NewEngine(source, settings)
	formatter := notify.NewFormatter(mode, settings.Thresholds, settings.Calendar)
	return nudge.NewRunner(engine, formatter, dispatch.New(sender, dispatchOpts...), runnerOpts...), ghClient, preview, nil
}

// printSummary writes one line per project.
func printSummary(w io.Writer, report nudge.Report, dryRun bool) {
	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, p := range report.Projects {
		if p.Err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", fail("✗"), p.Project, p.Err)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", ok("✓"), p.Project)
		for _, c := range p.Categories {
			fmt.Fprintf(w, "  %s\n", categoryLine(p.Project, c, fail, dim))
		}
	}

	if dryRun {
		fmt.Fprintln(w, dim("Dry run: nothing was sent."))
	}
	if failed := report.Failed(); failed > 0 {
		fmt.Fprintln(w, fail(format.Plural(failed, "project", "projects")+" failed"))
	}
}

// categoryLine describes what happened to one category of a project.
func categoryLine(project string, c nudge.CategoryResult, fail, dim func(...any) string) string {
	switch c.Outcome {
	case dispatch.OutcomeEmpty:
		return dim(fmt.Sprintf("No %s in %s", c.Category, project))
	case dispatch.OutcomeFailed:
		return fail(fmt.Sprintf("Could not remind about %d %s in %s.", c.Count, c.Category, project))
	default:
		return fmt.Sprintf("Reminded about %d %s in %s.", c.Count, c.Category, project)
	}
}
