package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spiffcs/nudge/internal/notify"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

type jsonMessage struct {
	notify.Message
	Color     string     `json:"color"`
	Timestamp *time.Time `json:"ts,omitempty"`
}

type jsonBatch struct {
	Project  string        `json:"project"`
	Category string        `json:"category"`
	Text     string        `json:"text"`
	Messages []jsonMessage `json:"messages"`
}

// Format outputs a batch as one JSON document.
func (f *JSONFormatter) Format(batch notify.Batch, w io.Writer) error {
	out := jsonBatch{
		Project:  batch.Project,
		Category: batch.Category,
		Text:     batch.Text,
		Messages: make([]jsonMessage, 0, len(batch.Messages)),
	}
	for _, m := range batch.Messages {
		jm := jsonMessage{Message: m, Color: m.Severity.Color()}
		if !m.Timestamp.IsZero() {
			ts := m.Timestamp
			jm.Timestamp = &ts
		}
		out.Messages = append(out.Messages, jm)
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
