package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/nudge/internal/model"
	"github.com/spiffcs/nudge/internal/notify"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct{}

// Format outputs a batch as a Markdown section.
func (f *MarkdownFormatter) Format(batch notify.Batch, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "## %s (%d)\n\n", batch.Text, len(batch.Messages)); err != nil {
		return err
	}
	if batch.Empty() {
		_, err := fmt.Fprintf(w, "No %s.\n\n", batch.Category)
		return err
	}

	for _, m := range batch.Messages {
		title := m.Title
		if m.TitleLink != "" {
			title = fmt.Sprintf("[%s](%s)", m.Title, m.TitleLink)
		}
		fmt.Fprintf(w, "- %s %s\n", severityEmoji(m.Severity), title)
		if m.Text != "" {
			fmt.Fprintf(w, "  - %s\n", m.Text)
		}
		for _, field := range m.Fields {
			fmt.Fprintf(w, "  - **%s:** %s\n", field.Title, field.Value)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func severityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityDanger:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	default:
		return "🟢"
	}
}
