package nudge

import (
	"github.com/spiffcs/nudge/internal/calendar"
	"github.com/spiffcs/nudge/internal/model"
)

// Engine aggregates pull requests and classifies branches for a project.
type Engine struct {
	source   Source
	settings Settings
}

// NewEngine creates an Engine. A nil settings.Policy falls back to the
// permissive default.
func NewEngine(source Source, settings Settings) *Engine {
	if settings.Policy == nil {
		settings.Policy = DefaultBranchPolicy()
	}
	return &Engine{source: source, settings: settings}
}

// Settings returns the engine configuration.
func (e *Engine) Settings() Settings { return e.settings }

// Thresholds returns the configured age bands.
func (e *Engine) Thresholds() model.Thresholds { return e.settings.Thresholds }

// Calendar returns the business calendar, nil when ages are wall-clock.
func (e *Engine) Calendar() *calendar.Calendar { return e.settings.Calendar }
