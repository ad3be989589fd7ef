// Package domain contains core concepts of the echo bot.
// Events are immutable snapshots of what a user sent; the domain
// never knows which transport decoded them.
package domain

// EventKind discriminates the three inbound shapes the bot understands.
type EventKind string

const (
	EventCommand  EventKind = "command"
	EventText     EventKind = "text"
	EventCallback EventKind = "callback"
)

// InboundEvent is an already-decoded user interaction.
// Exactly one of the kind-specific fields is meaningful:
// Command/Args for EventCommand, Text for EventText, Token for EventCallback.
type InboundEvent struct {
	ChatID  string
	Kind    EventKind
	Command string
	Args    []string
	Text    string
	Token   string
}
