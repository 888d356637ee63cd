package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/nudge/internal/format"
	"github.com/spiffcs/nudge/internal/model"
	"github.com/spiffcs/nudge/internal/notify"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct{}

// Column widths
const (
	colSeverity = 8
	colTitle    = 40
	colDetails  = 70
)

// hyperlink creates a clickable terminal hyperlink using OSC 8.
func hyperlink(text, url string) string {
	if url == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Format outputs a batch as a table.
func (f *TableFormatter) Format(batch notify.Batch, w io.Writer) error {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s\n", batch.Text)

	if batch.Empty() {
		fmt.Fprintf(w, "No %s.\n\n", batch.Category)
		return nil
	}

	fmt.Fprintf(w, "%-*s  %-*s  %s\n", colSeverity, "Severity", colTitle, "Title", "Details")
	fmt.Fprintln(w, strings.Repeat("-", colSeverity+colTitle+colDetails+4))

	for _, m := range batch.Messages {
		sev := m.Severity.String()
		sevStr := format.PadRight(colorSeverity(m.Severity, sev), len(sev), colSeverity)

		title, titleWidth := format.TruncateToWidth(m.Title, colTitle)
		linked := format.PadRight(hyperlink(title, m.TitleLink), titleWidth, colTitle)

		body, _ := format.TruncateToWidth(strings.ReplaceAll(details(m), "`", ""), colDetails)

		fmt.Fprintf(w, "%s  %s  %s\n", sevStr, linked, body)
	}

	printFooter(batch, w)
	return nil
}

func colorSeverity(s model.Severity, text string) string {
	switch s {
	case model.SeverityDanger:
		return color.RedString(text)
	case model.SeverityWarning:
		return color.YellowString(text)
	default:
		return color.GreenString(text)
	}
}

// printFooter prints per-severity counts below the table.
func printFooter(batch notify.Batch, w io.Writer) {
	counts := make(map[model.Severity]int)
	for _, m := range batch.Messages {
		counts[m.Severity]++
	}

	var parts []string
	for _, s := range []model.Severity{model.SeverityDanger, model.SeverityWarning, model.SeverityNeutral} {
		if counts[s] > 0 {
			parts = append(parts, colorSeverity(s, fmt.Sprintf("%d %s", counts[s], s)))
		}
	}
	fmt.Fprintf(w, "\nTotal: %d (%s)\n\n", len(batch.Messages), strings.Join(parts, ", "))
}
