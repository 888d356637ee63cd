// Package output renders notification batches to a terminal or file, for
// previewing what would be delivered to the channel.
package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/nudge/internal/notify"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use table, json or markdown)", s)
	}
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(batch notify.Batch, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// details flattens a message body into one line.
func details(m notify.Message) string {
	if m.Text != "" {
		return m.Text
	}
	s := ""
	for i, f := range m.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Title + ": " + f.Value
	}
	return s
}
