// Package notification delivers fire-and-forget order event webhooks.
//
// Publishing never blocks and never fails the calling state transition: events
// are queued on a buffered channel and delivered by a background worker with
// bounded backoff. Delivery failures are logged and swallowed.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// EventKind identifies the type of order event being delivered.
type EventKind string

const (
	EventOrderCreated       EventKind = "order.created"
	EventOrderStatusChanged EventKind = "order.status_changed"
	EventOrderCancelled     EventKind = "order.cancelled"
)

// Event is the payload posted to the webhook.
type Event struct {
	Kind       EventKind          `json:"kind"`
	Order      *model.Order       `json:"order"`
	User       *model.Progression `json:"user,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Notifier publishes order events.
type Notifier interface {
	Publish(kind EventKind, order *model.Order, user *model.Progression)
}

// NopNotifier discards all events. Used when no webhook URL is configured.
type NopNotifier struct{}

// Publish implements Notifier.
func (NopNotifier) Publish(EventKind, *model.Order, *model.Progression) {}

// WebhookNotifier posts events as JSON to a single webhook URL.
type WebhookNotifier struct {
	url        string
	client     *http.Client
	events     chan Event
	maxRetries uint64
}

// NewWebhookNotifier creates a notifier with the given buffer size. Run must
// be started for events to be delivered.
func NewWebhookNotifier(url string, timeout time.Duration, bufferSize, maxRetries int) *WebhookNotifier {
	if bufferSize < 1 {
		bufferSize = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &WebhookNotifier{
		url:        url,
		client:     &http.Client{Timeout: timeout},
		events:     make(chan Event, bufferSize),
		maxRetries: uint64(maxRetries),
	}
}

// Publish enqueues an event for delivery. When the buffer is full the event is
// dropped with a warning; callers are never blocked or failed.
func (n *WebhookNotifier) Publish(kind EventKind, order *model.Order, user *model.Progression) {
	ev := Event{
		Kind:       kind,
		Order:      order,
		User:       user,
		OccurredAt: time.Now().UTC(),
	}
	select {
	case n.events <- ev:
	default:
		log.Warn().
			Str("event_kind", string(kind)).
			Str("order_id", order.ID).
			Msg("notification buffer full, event dropped")
	}
}

// Run consumes the event queue until ctx is cancelled, delivering each event
// with exponential backoff.
func (n *WebhookNotifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.events:
			n.deliver(ctx, ev)
		}
	}
}

func (n *WebhookNotifier) deliver(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_kind", string(ev.Kind)).Msg("failed to encode notification")
		return
	}

	backoff := retry.WithMaxRetries(n.maxRetries, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(n.post(ctx, body))
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("event_kind", string(ev.Kind)).
			Str("order_id", ev.Order.ID).
			Msg("notification delivery failed, giving up")
		return
	}

	log.Debug().
		Str("event_kind", string(ev.Kind)).
		Str("order_id", ev.Order.ID).
		Msg("notification delivered")
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
