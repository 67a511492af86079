package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"github.com/ipwatch/internal/config"
	errs "github.com/ipwatch/internal/errors"
)

// SlackNotifier posts events to an incoming webhook. It does nothing when
// no webhook URL is configured.
type SlackNotifier struct {
	client *http.Client
}

// DefaultWebhookTimeout bounds a webhook call when no client is given.
const DefaultWebhookTimeout = 10 * time.Second

// NewSlackNotifier uses client for the webhook calls, or a client with
// DefaultWebhookTimeout when nil.
func NewSlackNotifier(client *http.Client) *SlackNotifier {
	if client == nil {
		client = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	return &SlackNotifier{client: client}
}

func (s *SlackNotifier) Notify(cfg config.Configuration, event Event) error {
	if cfg.SlackWebhookURL == "" {
		return nil
	}

	msg := &slack.WebhookMessage{
		Username:    "ipwatch",
		IconEmoji:   getEventEmoji(event.Kind),
		Attachments: []slack.Attachment{buildAttachment(event)},
	}
	if err := slack.PostWebhookCustomHTTP(cfg.SlackWebhookURL, s.client, msg); err != nil {
		return errs.Network("post slack webhook", "slack", err)
	}
	return nil
}

func buildAttachment(event Event) slack.Attachment {
	var fields []slack.AttachmentField
	switch event.Kind {
	case EventIPChanged:
		fields = []slack.AttachmentField{
			{Title: "Previous IP", Value: orUnknown(event.OldIP), Short: true},
			{Title: "Current IP", Value: event.NewIP, Short: true},
		}
	case EventLookupFailing:
		fields = []slack.AttachmentField{
			{Title: "Failures", Value: fmt.Sprintf("%d", event.Failures), Short: true},
		}
		if event.Err != nil {
			fields = append(fields, slack.AttachmentField{Title: "Last Error", Value: event.Err.Error()})
		}
	default:
		fields = []slack.AttachmentField{
			{Title: "Last Known IP", Value: orUnknown(event.NewIP), Short: true},
		}
	}

	return slack.Attachment{
		Color:  getEventColor(event.Kind),
		Title:  subject(event),
		Fields: fields,
		Footer: "ipwatch",
		Ts:     json.Number(strconv.FormatInt(eventTime(event).Unix(), 10)),
	}
}

func getEventColor(kind EventKind) string {
	switch kind {
	case EventIPChanged:
		return "#FFA500"
	case EventLookupFailing:
		return "#FF0000"
	default:
		return "#0000FF"
	}
}

func getEventEmoji(kind EventKind) string {
	switch kind {
	case EventIPChanged:
		return ":warning:"
	case EventLookupFailing:
		return ":red_circle:"
	default:
		return ":information_source:"
	}
}
