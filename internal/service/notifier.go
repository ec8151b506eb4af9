package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// StageEvent is the payload broadcast on every lifecycle transition. The
// WhatsApp gateway formats it into the group message; the monitoring
// dashboard uses it as a refresh nudge.
type StageEvent struct {
	Event        string    `json:"event"` // REQUEST_CREATED, STAGE_CHANGED
	RequestID    string    `json:"request_id"`
	RequestCode  string    `json:"request_code"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	PicName      string    `json:"pic_name"`
	SubBidang    string    `json:"sub_bidang"`
	ApprovalLink string    `json:"approval_link,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Notifier dispatches stage events. Delivery is best-effort: a failed
// notification never rolls back or delays the transition that produced it.
type Notifier interface {
	Notify(event StageEvent)
}

// Broadcaster is the subset of the websocket hub the notifier needs.
type Broadcaster interface {
	GetBroadcast() chan []byte
}

type notifier struct {
	hub        Broadcaster
	webhookURL string
	client     *http.Client
}

// NewNotifier builds the default notifier. hub may be nil (tests), and an
// empty webhookURL disables the outbound gateway call.
func NewNotifier(hub Broadcaster, webhookURL string) Notifier {
	return &notifier{
		hub:        hub,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *notifier) Notify(event StageEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Println("notify: failed to marshal event:", err)
		return
	}

	if n.hub != nil {
		select {
		case n.hub.GetBroadcast() <- payload:
		default:
			// Hub busy or not running; the dashboard polls anyway.
		}
	}

	if n.webhookURL == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
		if err != nil {
			log.Println("notify: failed to build webhook request:", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			log.Println("notify: webhook dispatch failed:", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Println("notify: webhook responded with status", resp.StatusCode)
		}
	}()
}
