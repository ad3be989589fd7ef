// Package notify carries fired-timer notifications over NATS so the gateway
// can deliver them to whichever connection currently serves the conversation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Notification is the wire payload published per fired timer.
type Notification struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// SubjectFor returns the per-conversation subject notifications travel on.
func SubjectFor(chatID string) string {
	return fmt.Sprintf("timers.%s", chatID)
}

type NatsNotifier struct {
	nc  *nats.Conn
	log *slog.Logger
}

func NewNatsNotifier(nc *nats.Conn, log *slog.Logger) *NatsNotifier {
	return &NatsNotifier{nc: nc, log: log}
}

// Notify publishes the notification. Delivery is fire-and-forget: timers are
// not persisted, so an unreachable conversation simply misses the message.
func (n *NatsNotifier) Notify(_ context.Context, chatID, text string) error {
	payload, err := json.Marshal(Notification{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := n.nc.Publish(SubjectFor(chatID), payload); err != nil {
		return fmt.Errorf("failed to publish notification for %s: %w", chatID, err)
	}
	n.log.Debug("Timer notification published", "chat", chatID)
	return nil
}
