package tui

import "fmt"

// Task represents a single step of processing a project.
type Task struct {
	ID      TaskID
	Name    string
	Status  TaskStatus
	Message string
	Count   int
	Error   error
}

// NewTask creates a new task with the given ID and name.
func NewTask(id TaskID, name string) Task {
	return Task{
		ID:     id,
		Name:   name,
		Status: StatusPending,
	}
}

// reset returns the task to its pending state.
func (t Task) reset() Task {
	return NewTask(t.ID, t.Name)
}

// View renders the task as a string.
func (t Task) View(spinnerFrame string) string {
	icon := StatusIcon(t.Status, spinnerFrame)

	name := taskNameStyle.Render(t.Name)
	if t.Status == StatusPending || t.Status == StatusSkipped {
		name = taskDimStyle.Render(t.Name)
	}

	line := fmt.Sprintf("    %s %s", icon, name)

	switch {
	case t.Message != "":
		line += " " + messageStyle.Render(t.Message)
	case t.Status == StatusComplete:
		line += " " + messageStyle.Render(fmt.Sprintf("(%d)", t.Count))
	}

	if t.Error != nil {
		line += " " + errorStyle.Render(t.Error.Error())
	}

	return line
}
