package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/nudge/config"
	"github.com/spiffcs/nudge/internal/calendar"
	"github.com/spiffcs/nudge/internal/constants"
	"github.com/spiffcs/nudge/internal/dispatch"
	"github.com/spiffcs/nudge/internal/nudge"
	"github.com/spiffcs/nudge/internal/output"
)

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "nudge" {
		t.Errorf("expected Use to be 'nudge', got %q", cmd.Use)
	}

	want := []string{"run", "config", "age <timestamp>", "version", "ratelimit"}
	for _, use := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Use == use {
				found = true
			}
		}
		if !found {
			t.Errorf("expected subcommand %q", use)
		}
	}

	for _, name := range []string{"project", "dry-run", "output", "format", "verbose", "tui", "platform"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected root flag --%s", name)
		}
	}
}

func TestRunFlagsParse(t *testing.T) {
	opts := NewOptions()
	cmd := NewCmdRun(opts)
	err := cmd.ParseFlags([]string{"-p", "Web", "--project", "Api,Docs", "--dry-run", "-o", "json", "--format", "long", "-vv", "--tui=false"})
	if err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	if strings.Join(opts.Projects, ",") != "Web,Api,Docs" {
		t.Errorf("Projects = %v", opts.Projects)
	}
	if !opts.DryRun || opts.Output != "json" || opts.Format != "long" || opts.Verbosity != 2 {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.TUI == nil || *opts.TUI {
		t.Error("expected TUI to be disabled")
	}
}

func TestTUIFlag(t *testing.T) {
	opts := NewOptions()
	f := newTUIFlag(opts)
	if f.String() != "auto" {
		t.Errorf("expected auto, got %q", f.String())
	}
	if err := f.Set("1"); err != nil || !*opts.TUI || f.String() != "true" {
		t.Errorf("Set(1) = %v, TUI = %v", err, opts.TUI)
	}
	if err := f.Set("auto"); err != nil || opts.TUI != nil {
		t.Errorf("Set(auto) = %v, TUI = %v", err, opts.TUI)
	}
	if err := f.Set("sometimes"); err == nil {
		t.Error("expected error for invalid value")
	}

	// Verbose logging always wins over the progress display
	on := true
	if shouldUseTUI(NewOptions(WithTUI(&on), WithVerbosity(1))) {
		t.Error("expected TUI off when verbose")
	}
	if !shouldUseTUI(NewOptions(WithTUI(&on))) {
		t.Error("expected forced TUI")
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := &config.Config{Projects: []string{"Web"}, MessageFormat: "short"}
	applyOptions(cfg, NewOptions(WithProjects("Api"), WithFormat("long"), WithDryRun(true), WithPlatform("github")))

	if len(cfg.Projects) != 1 || cfg.Projects[0] != "Api" {
		t.Errorf("Projects = %v", cfg.Projects)
	}
	if cfg.MessageFormat != "long" || !cfg.DryRun || cfg.Platform != "github" {
		t.Errorf("unexpected config %+v", cfg)
	}

	// Unset flags keep configured values
	cfg = &config.Config{Projects: []string{"Web"}, DryRun: true}
	applyOptions(cfg, NewOptions())
	if cfg.Projects[0] != "Web" || !cfg.DryRun {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestPreviewFormat(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		output  string
		want    output.Format
		enabled bool
		wantErr bool
	}{
		{name: "live run without flag", cfg: config.Config{}},
		{name: "explicit", output: "markdown", want: output.FormatMarkdown, enabled: true},
		{name: "dry run defaults to table", cfg: config.Config{DryRun: true}, want: output.FormatTable, enabled: true},
		{name: "dry run uses configured output", cfg: config.Config{DryRun: true, DefaultOutput: "json"}, want: output.FormatJSON, enabled: true},
		{name: "invalid", output: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enabled, err := previewFormat(&tt.cfg, NewOptions(WithOutput(tt.output)))
			if (err != nil) != tt.wantErr {
				t.Fatalf("previewFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || enabled != tt.enabled {
				t.Errorf("previewFormat() = %q, %v; want %q, %v", got, enabled, tt.want, tt.enabled)
			}
		})
	}
}

func TestBuildRunner_RequiresProjects(t *testing.T) {
	_, _, _, err := buildRunner(t.Context(), &config.Config{}, NewOptions())
	if !errors.Is(err, nudge.ErrNoProjects) {
		t.Errorf("expected ErrNoProjects, got %v", err)
	}
}

func TestBuildRunner_RejectsBadPlatform(t *testing.T) {
	_, _, _, err := buildRunner(t.Context(), &config.Config{Platform: "gitlab", Projects: []string{"Web"}}, NewOptions())
	if err == nil {
		t.Error("expected error for unknown platform")
	}
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	report := nudge.Report{Projects: []nudge.ProjectReport{
		{Project: "Web", Categories: []nudge.CategoryResult{
			{Category: constants.CategoryPullRequests, Count: 2, Outcome: dispatch.OutcomeDryRun},
			{Category: constants.CategoryForbiddenBranches, Count: 0, Outcome: dispatch.OutcomeEmpty},
			{Category: constants.CategoryInactiveBranches, Count: 1, Outcome: dispatch.OutcomeFailed},
		}},
		{Project: "Api", Err: errors.New("unauthorized")},
	}}

	var buf bytes.Buffer
	printSummary(&buf, report, true)
	out := buf.String()

	for _, want := range []string{
		"✓ Web\n",
		"  Reminded about 2 pull requests in Web.\n",
		"  No forbidden branches in Web\n",
		"  Could not remind about 1 inactive branches in Web.\n",
		"Api: unauthorized",
		"Dry run: nothing was sent.",
		"1 project failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestPrintAge(t *testing.T) {
	// Monday 2024-03-04 09:00 UTC to Tuesday 09:00: 24 wall hours, 8 business hours
	ref := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	now := ref.Add(24 * time.Hour)
	cal, err := calendar.New([]int{1, 2, 3, 4, 5}, []int{9, 10, 11, 12, 13, 14, 15, 16}, time.UTC)
	if err != nil {
		t.Fatalf("calendar.New() error = %v", err)
	}

	var buf bytes.Buffer
	printAge(&buf, ref, now, cal, nudge.DefaultThresholds())
	out := buf.String()

	for _, want := range []string{"Wall clock: 24 hours", "Counted:    8 hours", "Pull request severity: neutral"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestPrintRateLimits(t *testing.T) {
	var buf bytes.Buffer
	printRateLimits(&buf, &gh.RateLimits{
		Core:    &gh.Rate{Limit: 5000, Remaining: 4999},
		GraphQL: &gh.Rate{Limit: 5000, Remaining: 10},
	})
	out := buf.String()
	if !strings.Contains(out, "Core API:   4999/5000 remaining") || !strings.Contains(out, "GraphQL:    10/5000") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Search") {
		t.Error("missing rate should be skipped")
	}
}

func TestNewCmdVersion(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2024-01-01")
	cmd := NewCmdVersion()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)
	if !strings.Contains(buf.String(), "nudge 1.0.0") || !strings.Contains(buf.String(), "abc123") {
		t.Errorf("unexpected version output %q", buf.String())
	}
}

func TestProfiling(t *testing.T) {
	dir := t.TempDir()
	opts := NewOptions()
	opts.CPUProfile = filepath.Join(dir, "cpu.pprof")
	opts.MemProfile = filepath.Join(dir, "mem.pprof")

	prof, err := startProfiling(opts)
	if err != nil {
		t.Fatalf("startProfiling() error = %v", err)
	}
	prof.stop()

	for _, path := range []string{opts.CPUProfile, opts.MemProfile} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected profile %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("profile %s is empty", path)
		}
	}

	opts = NewOptions()
	opts.CPUProfile = filepath.Join(dir, "missing", "cpu.pprof")
	if _, err := startProfiling(opts); err == nil {
		t.Error("expected error for unwritable profile path")
	}
}

func TestPrintSettings(t *testing.T) {
	allow := "feature/.+"
	cfg := &config.Config{
		Organization: "contoso",
		Projects:     []string{"Web"},
		Branches:     &config.BranchOverrides{Allow: &allow},
	}
	var buf bytes.Buffer
	if err := printSettings(&buf, cfg); err != nil {
		t.Fatalf("printSettings() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Platform:        azure", "Allow branches:  ^(?:feature/.+)$", "off (wall clock hours)", "warning after 1d, danger after 1w"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	cfg.MessageFormat = "huge"
	if err := printSettings(&buf, cfg); err == nil {
		t.Error("expected error for invalid message format")
	}
}

func TestInitTarget(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		global, local bool
		want          string
		wantErr       bool
	}{
		{name: "global flag", global: true, want: "global"},
		{name: "local flag", local: true, want: "local"},
		{name: "both flags", global: true, local: true, wantErr: true},
		{name: "prompt global", input: "1\n", want: "global"},
		{name: "prompt local without newline", input: "2", want: "local"},
		{name: "prompt invalid", input: "3\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := initTarget(strings.NewReader(tt.input), &out, tt.global, tt.local)
			if (err != nil) != tt.wantErr {
				t.Fatalf("initTarget() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.location != tt.want {
				t.Errorf("initTarget() location = %q, want %q", got.location, tt.want)
			}
		})
	}
}

func TestRunConfigInit(t *testing.T) {
	target := configTarget{path: filepath.Join(t.TempDir(), ".nudge.yaml"), location: "local"}

	var out bytes.Buffer
	if err := runConfigInit(&out, target, "contoso", []string{"Web"}); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}
	data, err := os.ReadFile(target.path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "organization: contoso") || !strings.Contains(string(data), "  - Web") {
		t.Errorf("unexpected config file:\n%s", data)
	}
	if strings.Contains(out.String(), "Edit this file") {
		t.Error("no edit hint expected when organization and projects are given")
	}

	if err := runConfigInit(&out, target, "contoso", nil); err == nil {
		t.Error("expected error when the file already exists")
	}
}
