package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spiffcs/nudge/internal/dispatch"
	"github.com/spiffcs/nudge/internal/log"
	"github.com/spiffcs/nudge/internal/model"
	"github.com/spiffcs/nudge/internal/notify"
	"github.com/spiffcs/nudge/internal/output"
)

type recordingSender struct {
	batches []notify.Batch
	err     error
}

func (s *recordingSender) Send(_ context.Context, batch notify.Batch) error {
	s.batches = append(s.batches, batch)
	return s.err
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.Initialize(log.LevelInfo, &buf)
	t.Cleanup(func() { log.Discard() })
	return &buf
}

func batchOf(n int) notify.Batch {
	msgs := make([]notify.Message, n)
	for i := range msgs {
		msgs[i] = notify.Message{Title: "item", Severity: model.SeverityWarning}
	}
	return notify.NewBatch("Web", "pull requests", msgs)
}

func TestDispatch_EmptySendsNothing(t *testing.T) {
	logs := captureLogs(t)
	sender := &recordingSender{}
	d := dispatch.New(sender, dispatch.WithDryRun(false))

	outcome := d.Dispatch(context.Background(), batchOf(0))

	assert.Equal(t, dispatch.OutcomeEmpty, outcome)
	assert.Empty(t, sender.batches)
	assert.Contains(t, logs.String(), "No pull requests in Web")
}

func TestDispatch_Delivers(t *testing.T) {
	logs := captureLogs(t)
	sender := &recordingSender{}
	d := dispatch.New(sender)

	outcome := d.Dispatch(context.Background(), batchOf(3))

	assert.Equal(t, dispatch.OutcomeDelivered, outcome)
	assert.Len(t, sender.batches, 1)
	assert.Contains(t, logs.String(), "Reminded about 3 pull requests in Web.")
}

func TestDispatch_DryRun(t *testing.T) {
	logs := captureLogs(t)
	sender := &recordingSender{}
	d := dispatch.New(sender, dispatch.WithDryRun(true))

	outcome := d.Dispatch(context.Background(), batchOf(2))

	assert.Equal(t, dispatch.OutcomeDryRun, outcome)
	assert.Empty(t, sender.batches)
	assert.Contains(t, logs.String(), "Reminded about 2 pull requests in Web.")
	assert.True(t, d.DryRun())
}

func TestDispatch_FailureIsLoggedNotReturned(t *testing.T) {
	logs := captureLogs(t)
	sender := &recordingSender{err: errors.New("channel_not_found")}
	d := dispatch.New(sender)

	outcome := d.Dispatch(context.Background(), batchOf(1))

	assert.Equal(t, dispatch.OutcomeFailed, outcome)
	assert.Contains(t, logs.String(), "channel_not_found")
	assert.NotContains(t, logs.String(), "Reminded about")

	// the next category still goes out
	sender.err = nil
	assert.Equal(t, dispatch.OutcomeDelivered, d.Dispatch(context.Background(), batchOf(1)))
}

func TestDispatch_NilSenderFails(t *testing.T) {
	captureLogs(t)
	d := dispatch.New(nil)
	assert.Equal(t, dispatch.OutcomeFailed, d.Dispatch(context.Background(), batchOf(1)))
}

func TestDispatch_Preview(t *testing.T) {
	captureLogs(t)
	var preview bytes.Buffer
	d := dispatch.New(nil, dispatch.WithDryRun(true), dispatch.WithPreview(output.NewFormatter(output.FormatMarkdown), &preview))

	d.Dispatch(context.Background(), batchOf(0))
	assert.Empty(t, preview.String(), "empty batches are not previewed")

	d.Dispatch(context.Background(), batchOf(2))
	assert.Contains(t, preview.String(), "## Pull requests in Web (2)")
}
