package notify

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"gobevtrend_api/pkg/logger"
)

// WebhookNotifier posts events to a chat webhook. Delivery is
// fire-and-forget: failures are logged and never propagate to the caller.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    logger.Logger
}

func NewWebhookNotifier(url string, writer io.Writer) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logger.NewLogger(writer, "[Notify]"),
	}
}

type event struct {
	Event   string      `json:"event"`
	SentAt  time.Time   `json:"sent_at"`
	Payload interface{} `json:"payload,omitempty"`
}

func (n *WebhookNotifier) Notify(name string, payload interface{}) {
	if n.url == "" {
		return
	}

	body, err := json.Marshal(event{Event: name, SentAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		n.log.Log("failed to marshal event %q: %v", name, err)
		return
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		n.log.Log("failed to deliver event %q: %v", name, err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		n.log.Log("webhook returned %d for event %q", resp.StatusCode, name)
	}
}

// NopNotifier discards every event. Used when no webhook is configured and
// in tests.
type NopNotifier struct{}

func (NopNotifier) Notify(string, interface{}) {}
