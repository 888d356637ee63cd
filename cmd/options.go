package cmd

// Options holds the shared command-line options for the nudge CLI.
type Options struct {
	Projects  []string // Overrides the configured projects when set
	Platform  string   // azure or github
	Output    string   // Preview format (table, json, markdown); empty = no preview
	Format    string   // Message format (short, long)
	DryRun    bool
	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithProjects sets the projects (or GitHub organizations) to process.
func WithProjects(projects ...string) Option {
	return func(o *Options) {
		o.Projects = projects
	}
}

// WithPlatform sets the hosting platform.
func WithPlatform(platform string) Option {
	return func(o *Options) {
		o.Platform = platform
	}
}

// WithOutput sets the preview format (table, json, markdown).
func WithOutput(output string) Option {
	return func(o *Options) {
		o.Output = output
	}
}

// WithFormat sets the message format (short, long).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithDryRun suppresses delivery.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithCPUProfile sets the CPU profile output file.
func WithCPUProfile(path string) Option {
	return func(o *Options) {
		o.CPUProfile = path
	}
}

// WithMemProfile sets the memory profile output file.
func WithMemProfile(path string) Option {
	return func(o *Options) {
		o.MemProfile = path
	}
}

// WithTrace sets the execution trace output file.
func WithTrace(path string) Option {
	return func(o *Options) {
		o.Trace = path
	}
}
