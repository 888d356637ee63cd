package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/spiffcs/nudge/internal/format"
	"github.com/spiffcs/nudge/internal/nudge"
)

func TestTaskID(t *testing.T) {
	// Verify task IDs are distinct
	ids := []TaskID{TaskPullRequests, TaskBranches, TaskNotify}
	seen := make(map[TaskID]bool)

	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate task ID: %d", id)
		}
		seen[id] = true
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskBranches, "Checking branches")

	if task.ID != TaskBranches {
		t.Errorf("expected ID %d, got %d", TaskBranches, task.ID)
	}
	if task.Status != StatusPending {
		t.Errorf("expected status %d, got %d", StatusPending, task.Status)
	}
}

func TestSendEventNilChannel(t *testing.T) {
	// Should not panic with nil channel
	SendEvent(nil, TaskEvent{})
}

func TestSendEventDropsWhenFull(t *testing.T) {
	ch := make(chan Event, 1)
	SendEvent(ch, DoneEvent{})
	SendEvent(ch, DoneEvent{})
	if len(ch) != 1 {
		t.Errorf("expected 1 buffered event, got %d", len(ch))
	}
}

func TestSendTaskEvent(t *testing.T) {
	ch := make(chan Event, 1)
	testErr := errors.New("boom")

	SendTaskEvent(ch, TaskNotify, StatusError,
		WithMessage("sending"),
		WithCount(42),
		WithError(testErr),
	)

	te, ok := (<-ch).(TaskEvent)
	if !ok {
		t.Fatal("expected TaskEvent type")
	}
	if te.Task != TaskNotify || te.Message != "sending" || te.Count != 42 || te.Error != testErr {
		t.Errorf("unexpected event %+v", te)
	}
}

func drain(ch chan Event) []Event {
	var out []Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestProgressHandler_ProjectLifecycle(t *testing.T) {
	ch := make(chan Event, 16)
	handle := ProgressHandler(ch)

	handle(nudge.Progress{Project: "Web", Index: 1, Total: 3, Step: nudge.StepPullRequests})
	handle(nudge.Progress{Project: "Web", Index: 1, Total: 3, Step: nudge.StepPullRequests, Done: true, Count: 4})
	handle(nudge.Progress{Project: "Web", Index: 1, Total: 3, Step: nudge.StepNotify, Done: true, Count: 2})

	events := drain(ch)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(events), events)
	}
	if pe, ok := events[0].(ProjectEvent); !ok || pe.Name != "Web" || pe.Index != 1 || pe.Total != 3 {
		t.Errorf("expected project event first, got %+v", events[0])
	}
	if te := events[1].(TaskEvent); te.Task != TaskPullRequests || te.Status != StatusRunning {
		t.Errorf("unexpected running event %+v", te)
	}
	if te := events[2].(TaskEvent); te.Status != StatusComplete || te.Count != 4 {
		t.Errorf("unexpected completion event %+v", te)
	}
	if te := events[3].(TaskEvent); te.Task != TaskNotify || te.Message != "2 delivered" {
		t.Errorf("unexpected notify event %+v", te)
	}
}

func TestProgressHandler_FailureSkipsRemainingTasks(t *testing.T) {
	ch := make(chan Event, 16)
	boom := errors.New("repositories unavailable")

	ProgressHandler(ch)(nudge.Progress{Project: "Web", Step: nudge.StepBranches, Done: true, Err: boom})

	events := drain(ch)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if te := events[0].(TaskEvent); te.Task != TaskBranches || te.Status != StatusError || te.Error != boom {
		t.Errorf("unexpected error event %+v", te)
	}
	if te := events[1].(TaskEvent); te.Task != TaskNotify || te.Status != StatusSkipped {
		t.Errorf("unexpected skip event %+v", te)
	}
}

func TestModel_SummarizesFinishedProjects(t *testing.T) {
	m := NewModel(nil)

	steps := []any{
		ProjectEvent{Name: "Web", Index: 0, Total: 2},
		TaskEvent{Task: TaskPullRequests, Status: StatusComplete, Count: 1},
		TaskEvent{Task: TaskBranches, Status: StatusComplete, Count: 3},
		TaskEvent{Task: TaskNotify, Status: StatusComplete, Count: 2, Message: "2 delivered"},
		ProjectEvent{Name: "Api", Index: 1, Total: 2},
		TaskEvent{Task: TaskPullRequests, Status: StatusError, Error: errors.New("unauthorized")},
		DoneEvent{},
	}
	for _, msg := range steps {
		next, _ := m.Update(msg)
		m = next.(Model)
	}

	if !m.done {
		t.Error("expected model to be done")
	}
	if len(m.finished) != 2 {
		t.Fatalf("expected 2 summary lines, got %d", len(m.finished))
	}

	web := format.StripAnsi(m.finished[0])
	for _, want := range []string{"✓", "Web", "1 pull request", "3 branch findings", "2 delivered"} {
		if !strings.Contains(web, want) {
			t.Errorf("expected %q in %q", want, web)
		}
	}
	api := format.StripAnsi(m.finished[1])
	if !strings.Contains(api, "✗") || !strings.Contains(api, "unauthorized") {
		t.Errorf("expected failed summary, got %q", api)
	}

	view := format.StripAnsi(m.View())
	if strings.Contains(view, "Ctrl+C") {
		t.Error("cancel hint should disappear once done")
	}
}

func TestStatusIcon(t *testing.T) {
	// Test that StatusIcon returns non-empty strings for all statuses
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}

	for _, status := range statuses {
		icon := StatusIcon(status, ">")
		if icon == "" {
			t.Errorf("StatusIcon returned empty string for status %d", status)
		}
	}
}
