// Package notify formats pull requests and branch findings into channel
// messages.
package notify

import (
	"fmt"
	"time"

	"github.com/spiffcs/nudge/internal/format"
	"github.com/spiffcs/nudge/internal/model"
)

// Mode selects the message layout.
type Mode int

const (
	// ModeShort renders each item as a single line of text.
	ModeShort Mode = iota
	// ModeLong renders each item as structured fields.
	ModeLong
)

func (m Mode) String() string {
	if m == ModeLong {
		return "long"
	}
	return "short"
}

// ParseMode parses "short" or "long". Empty means short.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "short":
		return ModeShort, nil
	case "long":
		return ModeLong, nil
	default:
		return ModeShort, fmt.Errorf("unknown message format %q (use short or long)", s)
	}
}

// Field is a labelled value in a long-format message.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short,omitempty"`
}

// Message is one notification item.
type Message struct {
	Title      string         `json:"title"`
	TitleLink  string         `json:"title_link,omitempty"`
	Fallback   string         `json:"fallback"`
	Text       string         `json:"text,omitempty"`
	Severity   model.Severity `json:"-"`
	Fields     []Field        `json:"fields,omitempty"`
	MarkdownIn []string       `json:"mrkdwn_in,omitempty"`
	Timestamp  time.Time      `json:"-"`
}

// Batch is the set of messages of one category for one project.
type Batch struct {
	Project  string    `json:"project"`
	Category string    `json:"category"`
	Text     string    `json:"text"`
	Messages []Message `json:"messages"`
}

// Empty reports whether the batch has nothing to deliver.
func (b Batch) Empty() bool { return len(b.Messages) == 0 }

// NewBatch builds a batch with its summary text, e.g. "Pull requests in Web".
func NewBatch(project, category string, messages []Message) Batch {
	return Batch{
		Project:  project,
		Category: category,
		Text:     format.Capitalize(category) + " in " + project,
		Messages: messages,
	}
}
