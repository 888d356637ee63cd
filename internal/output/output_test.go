package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/spiffcs/nudge/internal/model"
	"github.com/spiffcs/nudge/internal/notify"
)

func sampleBatch() notify.Batch {
	return notify.NewBatch("Web", "pull requests", []notify.Message{
		{
			Title:     "Add retry to uploader",
			TitleLink: "https://dev.azure.com/contoso/Web/_git/web/pullrequest/7",
			Fallback:  "Add retry to uploader by Ada",
			Text:      "Ada in `web`: `feature/retry` into `main`, No vote",
			Severity:  model.SeverityDanger,
			Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Title:    "Bump deps",
			Fallback: "Bump deps by Grace",
			Fields:   []notify.Field{{Title: "Author", Value: "Grace", Short: true}, {Title: "Status", Value: "Approved"}},
			Severity: model.SeverityNeutral,
		},
	})
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "markdown"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestTableFormatter(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(sampleBatch(), &buf); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Pull requests in Web",
		"danger",
		"Add retry to uploader",
		"Ada in web: feature/retry into main, No vote",
		"Author: Grace, Status: Approved",
		"Total: 2 (1 danger, 1 neutral)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	batch := notify.NewBatch("Web", "inactive branches", nil)
	if err := (&TableFormatter{}).Format(batch, &buf); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "No inactive branches.") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(sampleBatch(), &buf); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	var decoded struct {
		Text     string `json:"text"`
		Messages []struct {
			Title string `json:"title"`
			Color string `json:"color"`
			TS    string `json:"ts"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Text != "Pull requests in Web" || len(decoded.Messages) != 2 {
		t.Fatalf("unexpected document: %+v", decoded)
	}
	if decoded.Messages[0].Color != "danger" || decoded.Messages[1].Color != "good" {
		t.Errorf("unexpected colors: %+v", decoded.Messages)
	}
	if decoded.Messages[0].TS == "" || decoded.Messages[1].TS != "" {
		t.Errorf("expected ts only on the first message: %+v", decoded.Messages)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatMarkdown).Format(sampleBatch(), &buf); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"## Pull requests in Web (2)",
		"- 🔴 [Add retry to uploader](https://dev.azure.com/contoso/Web/_git/web/pullrequest/7)",
		"  - **Status:** Approved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
