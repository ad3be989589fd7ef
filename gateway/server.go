// Package gateway exposes the bot over a websocket endpoint. It owns the
// thin JSON frames of the wire, decodes them into domain events for the
// dispatcher, and pushes timer notifications arriving over NATS back onto
// the live connection.
package gateway

import (
	"context"
	"echobot/domain"
	"echobot/notify"
	"echobot/services"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/samber/lo"
)

const malformedEventText = "I could not read that event"

// inboundFrame is one decoded websocket message from the client.
type inboundFrame struct {
	Kind  string   `json:"kind" validate:"required,oneof=command text callback"`
	Name  string   `json:"name" validate:"required_if=Kind command"`
	Args  []string `json:"args"`
	Text  string   `json:"text"`
	Token string   `json:"token" validate:"required_if=Kind callback"`
}

type choiceFrame struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

type replyFrame struct {
	Text string        `json:"text"`
	Menu []choiceFrame `json:"menu,omitempty"`
}

// session serializes writes to one websocket connection: the read loop and
// the NATS notification callback both write, and the underlying conn is not
// safe for concurrent writers.
type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *session) write(frame replyFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(frame)
}

type Server struct {
	app        *fiber.App
	log        *slog.Logger
	dispatcher services.IDispatcher
	nc         *nats.Conn
	validate   *validator.Validate
}

func New(log *slog.Logger, dispatcher services.IDispatcher, nc *nats.Conn) *Server {
	s := &Server{
		app:        fiber.New(fiber.Config{DisableStartupMessage: true}),
		log:        log,
		dispatcher: dispatcher,
		nc:         nc,
		validate:   validator.New(),
	}

	s.app.Use(logger.New())
	s.app.Use("/chat", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/chat/:chatID", websocket.New(s.handleConn))
	return s
}

func (s *Server) Listen(address string) error {
	return s.app.Listen(address)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleConn serves one conversation. Events are processed one at a time in
// arrival order, which keeps per-user append order intact. The connection
// also subscribes to the conversation's timer subject so a fired timer
// reaches the user between request/reply exchanges.
func (s *Server) handleConn(conn *websocket.Conn) {
	chatID := conn.Params("chatID")
	log := s.log.With("chat", chatID, "session", uuid.NewString()[:8])
	sess := &session{conn: conn}

	sub, err := s.nc.Subscribe(notify.SubjectFor(chatID), func(m *nats.Msg) {
		var n notify.Notification
		if err := json.Unmarshal(m.Data, &n); err != nil {
			log.Error("Malformed timer notification", "error", err)
			return
		}
		if err := sess.write(replyFrame{Text: n.Text}); err != nil {
			log.Error("Failed to push timer notification", "error", err)
		}
	})
	if err != nil {
		log.Error("Timer subscription failed", "error", err)
		_ = conn.Close()
		return
	}
	defer func() { _ = sub.Unsubscribe() }()

	log.Info("Client connected")
	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			log.Info("Client disconnected", "reason", err)
			return
		}

		reply := s.process(chatID, frame)
		if err := sess.write(toReplyFrame(reply)); err != nil {
			log.Error("Reply write failed", "error", err)
			return
		}
	}
}

// process answers every frame, malformed ones included: a broken frame gets
// an error reply instead of tearing the connection down.
func (s *Server) process(chatID string, frame inboundFrame) domain.Reply {
	if err := s.validate.Struct(frame); err != nil {
		s.log.Warn("Invalid inbound frame", "chat", chatID, "error", err)
		return domain.Reply{ChatID: chatID, Text: malformedEventText}
	}
	return s.dispatcher.Dispatch(context.Background(), toEvent(chatID, frame))
}

// toEvent turns a validated frame into a domain event. Command names are
// normalized: transports differ on whether they strip the leading slash.
func toEvent(chatID string, frame inboundFrame) domain.InboundEvent {
	return domain.InboundEvent{
		ChatID:  chatID,
		Kind:    domain.EventKind(frame.Kind),
		Command: strings.ToLower(strings.TrimPrefix(frame.Name, "/")),
		Args:    frame.Args,
		Text:    frame.Text,
		Token:   frame.Token,
	}
}

func toReplyFrame(reply domain.Reply) replyFrame {
	return replyFrame{
		Text: reply.Text,
		Menu: lo.Map(reply.Menu, func(c domain.Choice, _ int) choiceFrame {
			return choiceFrame{Label: c.Label, Token: c.Token}
		}),
	}
}
