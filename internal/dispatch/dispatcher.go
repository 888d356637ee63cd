// Package dispatch delivers notification batches to the team channel.
package dispatch

import (
	"context"
	"fmt"
	"io"

	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/notify"
	"github.com/spiffcs/nudge/internal/output"
)

// Sender delivers a batch to a channel.
type Sender interface {
	Send(ctx context.Context, batch notify.Batch) error
}

// Outcome is the result of dispatching one batch.
type Outcome int

const (
	// OutcomeEmpty means there was nothing to report and nothing was sent.
	OutcomeEmpty Outcome = iota
	// OutcomeDelivered means the channel accepted the batch.
	OutcomeDelivered
	// OutcomeDryRun means delivery was suppressed.
	OutcomeDryRun
	// OutcomeFailed means delivery was attempted and failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDryRun:
		return "dry run"
	case OutcomeFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Dispatcher sends non-empty batches and logs what happened.
type Dispatcher struct {
	sender  Sender
	dryRun  bool
	preview output.Formatter
	out     io.Writer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDryRun suppresses delivery while keeping logging and previews.
func WithDryRun(dryRun bool) Option {
	return func(d *Dispatcher) {
		d.dryRun = dryRun
	}
}

// WithPreview renders every non-empty batch to w before delivery.
func WithPreview(f output.Formatter, w io.Writer) Option {
	return func(d *Dispatcher) {
		d.preview = f
		d.out = w
	}
}

// New creates a Dispatcher. sender may be nil only in dry-run mode.
func New(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{sender: sender}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DryRun reports whether delivery is suppressed.
func (d *Dispatcher) DryRun() bool { return d.dryRun }

// Dispatch delivers one batch. Delivery failures are logged and reported
// through the outcome, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, batch notify.Batch) Outcome {
	if batch.Empty() {
		log.Info(fmt.Sprintf("No %s in %s", batch.Category, batch.Project))
		return OutcomeEmpty
	}

	if d.preview != nil {
		if err := d.preview.Format(batch, d.out); err != nil {
			log.Warn("failed to render preview", "category", batch.Category, "error", err)
		}
	}

	outcome := OutcomeDryRun
	if !d.dryRun {
		if d.sender == nil {
			log.Error("no channel configured", "category", batch.Category, "project", batch.Project)
			return OutcomeFailed
		}
		if err := d.sender.Send(ctx, batch); err != nil {
			log.Error("failed to deliver notification",
				"category", batch.Category, "project", batch.Project, "error", err)
			return OutcomeFailed
		}
		outcome = OutcomeDelivered
	}

	log.Info(fmt.Sprintf("Reminded about %d %s in %s.", len(batch.Messages), batch.Category, batch.Project),
		"dry_run", d.dryRun)
	return outcome
}
