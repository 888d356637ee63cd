package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"github.com/spiffcs/nudge/internal/notify"
)

// ErrNoWebhook is returned when delivery is requested without a webhook URL.
var ErrNoWebhook = errors.New("no incoming webhook configured")

// SlackWebhook posts batches to a Slack incoming webhook, one attachment
// per message.
type SlackWebhook struct {
	url        string
	httpClient *http.Client
}

// NewSlackWebhook creates a SlackWebhook. A nil client uses a client with
// a 30 second timeout.
func NewSlackWebhook(url string, httpClient *http.Client) (*SlackWebhook, error) {
	if url == "" {
		return nil, ErrNoWebhook
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &SlackWebhook{url: url, httpClient: httpClient}, nil
}

// Send posts the batch.
func (s *SlackWebhook) Send(ctx context.Context, batch notify.Batch) error {
	msg := WebhookMessage(batch)
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.url, s.httpClient, msg); err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	return nil
}

// WebhookMessage converts a batch into a Slack webhook payload.
func WebhookMessage(batch notify.Batch) *slack.WebhookMessage {
	attachments := make([]slack.Attachment, 0, len(batch.Messages))
	for _, m := range batch.Messages {
		a := slack.Attachment{
			Color:      m.Severity.Color(),
			Fallback:   m.Fallback,
			Title:      m.Title,
			TitleLink:  m.TitleLink,
			Text:       m.Text,
			MarkdownIn: m.MarkdownIn,
		}
		for _, f := range m.Fields {
			a.Fields = append(a.Fields, slack.AttachmentField{Title: f.Title, Value: f.Value, Short: f.Short})
		}
		if !m.Timestamp.IsZero() {
			a.Ts = json.Number(strconv.FormatInt(m.Timestamp.Unix(), 10))
		}
		attachments = append(attachments, a)
	}
	return &slack.WebhookMessage{Text: batch.Text, Attachments: attachments}
}
