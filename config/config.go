package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/nudge/internal/calendar"
	"github.com/spiffcs/nudge/internal/constants"
	"github.com/spiffcs/nudge/internal/duration"
	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
	"github.com/spiffcs/nudge/internal/notify"
	"github.com/spiffcs/nudge/internal/nudge"
)

// Platform names the hosting service pull requests are read from.
type Platform string

// Supported platforms
const (
	PlatformAzure  Platform = "azure"
	PlatformGitHub Platform = "github"
)

// Environment variables
const (
	EnvPlatform         = "NUDGE_PLATFORM"
	EnvOrganization     = "AZURE_DEVOPS_ORGANIZATION"
	EnvProject          = "AZURE_DEVOPS_PROJECT"
	EnvIncludeDrafts    = "INCLUDE_DRAFT_PULL_REQUESTS"
	EnvAgeSince         = "PULL_REQUEST_AGE_SINCE"
	EnvMessageFormat    = "MESSAGE_FORMAT"
	EnvPRWarning        = "PULL_REQUEST_AGE_WARNING"
	EnvPRDanger         = "PULL_REQUEST_AGE_DANGER"
	EnvBranchWarning    = "BRANCH_AGE_WARNING"
	EnvBranchDanger     = "BRANCH_AGE_DANGER"
	EnvAllowBranches    = "ALLOW_BRANCHES"
	EnvIgnoreBranches   = "IGNORE_BRANCHES"
	EnvBusinessDays     = "BUSINESS_DAYS"
	EnvBusinessHours    = "BUSINESS_HOURS"
	EnvBusinessTimezone = "BUSINESS_TIMEZONE"
	EnvDryRun           = "DRY_RUN"

	EnvAzureToken  = "AZURE_DEVOPS_PERSONAL_ACCESS_TOKEN"
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvWebhook     = "SLACK_INCOMING_WEBHOOK"
)

// Config represents the application configuration
type Config struct {
	Platform      string   `yaml:"platform,omitempty"`
	Organization  string   `yaml:"organization,omitempty"`
	Projects      []string `yaml:"projects,omitempty"`
	IncludeDrafts *bool    `yaml:"include_drafts,omitempty"`
	AgeSince      string   `yaml:"age_since,omitempty"`
	MessageFormat string   `yaml:"message_format,omitempty"`
	DefaultOutput string   `yaml:"default_output,omitempty"`

	Thresholds       *ThresholdOverrides `yaml:"thresholds,omitempty"`
	Branches         *BranchOverrides    `yaml:"branches,omitempty"`
	BusinessCalendar *CalendarOverrides  `yaml:"business_calendar,omitempty"`

	// DryRun is only ever set from the environment or the command line.
	DryRun bool `yaml:"-"`
}

// ThresholdOverrides - age bands in hours
type ThresholdOverrides struct {
	PullRequestWarning *Hours `yaml:"pull_request_warning,omitempty"`
	PullRequestDanger  *Hours `yaml:"pull_request_danger,omitempty"`
	BranchWarning      *Hours `yaml:"branch_warning,omitempty"`
	BranchDanger       *Hours `yaml:"branch_danger,omitempty"`
}

// BranchOverrides - branch naming policy
type BranchOverrides struct {
	Allow  *string `yaml:"allow,omitempty"`
	Ignore *string `yaml:"ignore,omitempty"`
}

// CalendarOverrides - working time used for ages. Days are 0 (Sunday)
// to 6, hours 0 to 23, both as lists or ranges like "1-5".
type CalendarOverrides struct {
	Days     string `yaml:"days,omitempty"`
	Hours    string `yaml:"hours,omitempty"`
	Timezone string `yaml:"timezone,omitempty"`
}

// Hours is a threshold written either as a number of hours or as a
// duration such as "3d" or "1w".
type Hours int

// UnmarshalYAML accepts integers and duration strings.
func (h *Hours) UnmarshalYAML(value *yaml.Node) error {
	n, err := duration.ParseHours(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*h = Hours(n)
	return nil
}

func hours(n int) *Hours {
	h := Hours(n)
	return &h
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".nudge"
	}
	return filepath.Join(configDir, "nudge")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".nudge.yaml"
}

// Load loads the configuration from disk and the environment.
// The global config is read first, then any local .nudge.yaml is merged on
// top, then environment variables override both.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath(), os.Getenv)
}

// LoadFrom is Load with explicit file locations and environment lookup.
// Missing files are skipped.
func LoadFrom(globalPath, localPath string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	global, err := readFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := readFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("local config: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.Platform != "" {
		result.Platform = local.Platform
	}
	if local.Organization != "" {
		result.Organization = local.Organization
	}
	if len(local.Projects) > 0 {
		result.Projects = local.Projects
	}
	if local.IncludeDrafts != nil {
		result.IncludeDrafts = local.IncludeDrafts
	}
	if local.AgeSince != "" {
		result.AgeSince = local.AgeSince
	}
	if local.MessageFormat != "" {
		result.MessageFormat = local.MessageFormat
	}
	if local.DefaultOutput != "" {
		result.DefaultOutput = local.DefaultOutput
	}

	result.Thresholds = mergeThresholds(global.Thresholds, local.Thresholds)
	result.Branches = mergeBranches(global.Branches, local.Branches)
	result.BusinessCalendar = mergeCalendar(global.BusinessCalendar, local.BusinessCalendar)

	return &result
}

func mergeThresholds(global, local *ThresholdOverrides) *ThresholdOverrides {
	if local == nil {
		return global
	}
	if global == nil {
		return local
	}
	result := *global
	if local.PullRequestWarning != nil {
		result.PullRequestWarning = local.PullRequestWarning
	}
	if local.PullRequestDanger != nil {
		result.PullRequestDanger = local.PullRequestDanger
	}
	if local.BranchWarning != nil {
		result.BranchWarning = local.BranchWarning
	}
	if local.BranchDanger != nil {
		result.BranchDanger = local.BranchDanger
	}
	return &result
}

func mergeBranches(global, local *BranchOverrides) *BranchOverrides {
	if local == nil {
		return global
	}
	if global == nil {
		return local
	}
	result := *global
	if local.Allow != nil {
		result.Allow = local.Allow
	}
	if local.Ignore != nil {
		result.Ignore = local.Ignore
	}
	return &result
}

// mergeCalendar treats the calendar as one value: days and hours only make
// sense together.
func mergeCalendar(global, local *CalendarOverrides) *CalendarOverrides {
	if local == nil {
		return global
	}
	if global == nil || local.Days != "" || local.Hours != "" {
		return local
	}
	result := *global
	if local.Timezone != "" {
		result.Timezone = local.Timezone
	}
	return &result
}

// envFlag reads a switch variable. Any set value turns the switch on
// except an explicit false, no or off.
func envFlag(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch v {
	case "no", "n", "off":
		return false
	default:
		return true
	}
}

// applyEnv overlays environment variables. Empty variables are ignored.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvPlatform); v != "" {
		c.Platform = v
	}
	if v := getenv(EnvOrganization); v != "" {
		c.Organization = v
	}
	if v := getenv(EnvProject); v != "" {
		c.Projects = SplitList(v)
	}
	if v := getenv(EnvIncludeDrafts); v != "" {
		b := envFlag(v)
		c.IncludeDrafts = &b
	}
	if v := getenv(EnvAgeSince); v != "" {
		c.AgeSince = v
	}
	if v := getenv(EnvMessageFormat); v != "" {
		c.MessageFormat = v
	}
	if v := getenv(EnvDryRun); v != "" {
		c.DryRun = envFlag(v)
	}

	thresholds := []struct {
		env string
		dst func(t *ThresholdOverrides) **Hours
	}{
		{EnvPRWarning, func(t *ThresholdOverrides) **Hours { return &t.PullRequestWarning }},
		{EnvPRDanger, func(t *ThresholdOverrides) **Hours { return &t.PullRequestDanger }},
		{EnvBranchWarning, func(t *ThresholdOverrides) **Hours { return &t.BranchWarning }},
		{EnvBranchDanger, func(t *ThresholdOverrides) **Hours { return &t.BranchDanger }},
	}
	for _, th := range thresholds {
		v := getenv(th.env)
		if v == "" {
			continue
		}
		n, err := duration.ParseHours(v)
		if err != nil {
			return fmt.Errorf("%s: %w", th.env, err)
		}
		if c.Thresholds == nil {
			c.Thresholds = &ThresholdOverrides{}
		}
		*th.dst(c.Thresholds) = hours(n)
	}

	if v := getenv(EnvAllowBranches); v != "" {
		if c.Branches == nil {
			c.Branches = &BranchOverrides{}
		}
		c.Branches.Allow = &v
	}
	if v := getenv(EnvIgnoreBranches); v != "" {
		if c.Branches == nil {
			c.Branches = &BranchOverrides{}
		}
		c.Branches.Ignore = &v
	}

	days, hrs, tz := getenv(EnvBusinessDays), getenv(EnvBusinessHours), getenv(EnvBusinessTimezone)
	if days != "" || hrs != "" || tz != "" {
		env := &CalendarOverrides{Days: days, Hours: hrs, Timezone: tz}
		c.BusinessCalendar = mergeCalendar(c.BusinessCalendar, env)
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetPlatform returns the configured platform, Azure DevOps by default.
func (c *Config) GetPlatform() (Platform, error) {
	switch p := Platform(strings.ToLower(c.Platform)); p {
	case "", PlatformAzure:
		return PlatformAzure, nil
	case PlatformGitHub:
		return PlatformGitHub, nil
	default:
		return "", fmt.Errorf("unknown platform %q (use azure or github)", c.Platform)
	}
}

// GetMessageMode returns the notification layout.
func (c *Config) GetMessageMode() (notify.Mode, error) {
	return notify.ParseMode(c.MessageFormat)
}

// GetThresholds returns thresholds with user overrides merged with defaults
func (c *Config) GetThresholds() model.Thresholds {
	t := nudge.DefaultThresholds()
	if c.Thresholds == nil {
		return t
	}
	if o := c.Thresholds.PullRequestWarning; o != nil {
		t.PullRequestWarning = int(*o)
	}
	if o := c.Thresholds.PullRequestDanger; o != nil {
		t.PullRequestDanger = int(*o)
	}
	if o := c.Thresholds.BranchWarning; o != nil {
		t.BranchWarning = int(*o)
	}
	if o := c.Thresholds.BranchDanger; o != nil {
		t.BranchDanger = int(*o)
	}
	return t
}

// Settings validates the configuration and converts it into engine
// settings.
func (c *Config) Settings() (nudge.Settings, error) {
	ageSince, err := nudge.ParseAgeSource(c.AgeSince)
	if err != nil {
		return nudge.Settings{}, err
	}

	thresholds := c.GetThresholds()
	if err := checkThresholds(thresholds); err != nil {
		return nudge.Settings{}, err
	}

	var allow, ignore string
	if c.Branches != nil {
		if c.Branches.Allow != nil {
			allow = *c.Branches.Allow
		}
		if c.Branches.Ignore != nil {
			ignore = *c.Branches.Ignore
		}
	}
	policy, err := nudge.NewBranchPolicy(allow, ignore)
	if err != nil {
		return nudge.Settings{}, err
	}

	cal, err := c.Calendar()
	if err != nil {
		return nudge.Settings{}, err
	}

	return nudge.Settings{
		IncludeDrafts: c.IncludeDrafts != nil && *c.IncludeDrafts,
		AgeSince:      ageSince,
		Thresholds:    thresholds,
		Policy:        policy,
		Calendar:      cal,
	}, nil
}

func checkThresholds(t model.Thresholds) error {
	bands := []struct {
		name            string
		warning, danger int
	}{
		{"pull request", t.PullRequestWarning, t.PullRequestDanger},
		{"branch", t.BranchWarning, t.BranchDanger},
	}
	for _, b := range bands {
		if b.warning < 0 || b.danger < 0 {
			return fmt.Errorf("%s age thresholds must not be negative", b.name)
		}
		if b.warning > b.danger {
			log.Warn("warning threshold above danger threshold", "kind", b.name,
				"warning", b.warning, "danger", b.danger)
		}
	}
	return nil
}

// Calendar builds the business calendar. It returns nil, meaning wall
// clock hours, unless both days and hours are configured.
func (c *Config) Calendar() (*calendar.Calendar, error) {
	bc := c.BusinessCalendar
	if bc == nil || (bc.Days == "" && bc.Hours == "") {
		return nil, nil
	}
	if bc.Days == "" || bc.Hours == "" {
		log.Warn("business calendar needs both days and hours; counting wall clock hours",
			"days", bc.Days, "hours", bc.Hours)
		return nil, nil
	}

	days, err := calendar.ParseSet(bc.Days, 0, 6)
	if err != nil {
		return nil, fmt.Errorf("business days: %w", err)
	}
	hrs, err := calendar.ParseSet(bc.Hours, 0, 23)
	if err != nil {
		return nil, fmt.Errorf("business hours: %w", err)
	}

	loc := time.Local
	if bc.Timezone != "" {
		if loc, err = time.LoadLocation(bc.Timezone); err != nil {
			return nil, fmt.Errorf("business timezone: %w", err)
		}
	}
	return calendar.New(days, hrs, loc)
}

// GetAzureToken returns the Azure DevOps personal access token.
// Tokens are only read from the environment.
func (c *Config) GetAzureToken() string {
	return os.Getenv(EnvAzureToken)
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
func (c *Config) GetGitHubToken() string {
	return os.Getenv(EnvGitHubToken)
}

// GetWebhook returns the Slack incoming webhook URL.
func (c *Config) GetWebhook() string {
	return os.Getenv(EnvWebhook)
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	t := nudge.DefaultThresholds()
	drafts := false
	allow, ignore := "", ""

	return &Config{
		Platform:      string(PlatformAzure),
		Organization:  "",
		Projects:      []string{},
		IncludeDrafts: &drafts,
		AgeSince:      nudge.AgeSinceCreation.String(),
		MessageFormat: notify.ModeShort.String(),
		DefaultOutput: "table",
		Thresholds: &ThresholdOverrides{
			PullRequestWarning: hours(t.PullRequestWarning),
			PullRequestDanger:  hours(t.PullRequestDanger),
			BranchWarning:      hours(t.BranchWarning),
			BranchDanger:       hours(t.BranchDanger),
		},
		Branches: &BranchOverrides{
			Allow:  &allow,
			Ignore: &ignore,
		},
		BusinessCalendar: &CalendarOverrides{},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a commented starter config for an organization and
// its projects. Empty values get placeholders.
func MinimalConfig(organization string, projects []string) string {
	if organization == "" {
		organization = "my-org"
	}
	if len(projects) == 0 {
		projects = []string{"my-project"}
	}
	var projectLines strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&projectLines, "  - %s\n", p)
	}

	return fmt.Sprintf(`# nudge configuration file
# See: nudge config defaults  (for all available options)
# Credentials are read from the environment only:
#   %s, %s, %s

# Azure DevOps organization and the projects to report on
organization: %s
projects:
%s
# Age thresholds in hours, or durations like 3d or 1w (optional)
# thresholds:
#   pull_request_warning: %d
#   pull_request_danger: %d
#   branch_warning: %d
#   branch_danger: %d

# Branch naming policy as regular expressions (optional)
# branches:
#   allow: (feature|bugfix|hotfix)/.+
#   ignore: main|develop

# Count only working time (optional, both days and hours required)
# business_calendar:
#   days: 1-5
#   hours: 9-17
#   timezone: Europe/Amsterdam
`, EnvAzureToken, EnvGitHubToken, EnvWebhook,
		organization, projectLines.String(),
		constants.PullRequestAgeWarning, constants.PullRequestAgeDanger,
		constants.BranchAgeWarning, constants.BranchAgeDanger)
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
