// Package services holds the dispatch logic tying inbound events to the
// message store and the timer scheduler. One inbound event always produces
// exactly one reply; side effects (persisting text, arming timers) happen on
// the way.
package services

import (
	"context"
	"echobot/domain"
	"echobot/repositories"
	"echobot/scheduler"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Commands understood by the dispatcher.
const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandSet   = "set"
	CommandUnset = "unset"
)

const (
	greetingText = "Hi! Use /set <seconds> to set a timer"
	helpText     = "Echo bot that stores messages, with a timer feature.\n\n" +
		"Available commands are listed in the menu.\n\n" +
		"I also reply to any message."
	setUsageText       = "Usage: /set <seconds>"
	pastDelayText      = "Sorry, we can't go back to the past!"
	timerSetText       = "Timer successfully set!"
	timerReplacedText  = " Old one was removed."
	timerCancelledText = "Timer successfully cancelled!"
	noActiveTimerText  = "You have no active timers."
	unknownCommandText = "Unknown command, try /help"
	storeDownText      = "Your message history is unavailable right now, try again later."
	genericErrorText   = "Something went wrong"
)

type IDispatcher interface {
	Dispatch(ctx context.Context, event domain.InboundEvent) domain.Reply
}

type Dispatcher struct {
	log         *slog.Logger
	messages    repositories.IMessageRepository
	timers      scheduler.ITimerScheduler
	recentLimit int
}

func NewDispatcher(log *slog.Logger, messages repositories.IMessageRepository,
	timers scheduler.ITimerScheduler, recentLimit int) *Dispatcher {
	return &Dispatcher{log: log, messages: messages, timers: timers, recentLimit: recentLimit}
}

// Dispatch classifies the event and produces the single outbound reply.
// No event may abort the dispatch loop: a panic anywhere below degrades to a
// generic error reply.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.InboundEvent) (reply domain.Reply) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Dispatch panic recovered", "kind", event.Kind, "chat", event.ChatID, "panic", r)
			reply = domain.Reply{ChatID: event.ChatID, Text: genericErrorText}
		}
	}()

	switch event.Kind {
	case domain.EventCommand:
		return d.handleCommand(event)
	case domain.EventText:
		return d.handleText(ctx, event)
	case domain.EventCallback:
		return d.handleCallback(event)
	default:
		d.log.Warn("Unclassifiable inbound event", "kind", event.Kind, "chat", event.ChatID)
		return domain.Reply{ChatID: event.ChatID, Text: genericErrorText}
	}
}

func (d *Dispatcher) handleCommand(event domain.InboundEvent) domain.Reply {
	switch event.Command {
	case CommandStart:
		return domain.Reply{ChatID: event.ChatID, Text: greetingText}
	case CommandHelp:
		return domain.Reply{ChatID: event.ChatID, Text: helpText}
	case CommandSet:
		return d.handleSet(event)
	case CommandUnset:
		return d.handleUnset(event)
	default:
		return domain.Reply{ChatID: event.ChatID, Text: unknownCommandText}
	}
}

// handleSet parses the delay argument itself so the scheduler is only called
// with a well-formed request: a missing or non-numeric argument is a usage
// error, a negative delay a domain error, and neither touches timer state.
func (d *Dispatcher) handleSet(event domain.InboundEvent) domain.Reply {
	if len(event.Args) == 0 {
		return domain.Reply{ChatID: event.ChatID, Text: setUsageText}
	}
	delay, err := strconv.Atoi(event.Args[0])
	if err != nil {
		return domain.Reply{ChatID: event.ChatID, Text: setUsageText}
	}
	if delay < 0 {
		return domain.Reply{ChatID: event.ChatID, Text: pastDelayText}
	}

	replaced, err := d.timers.Schedule(event.ChatID, delay)
	if err != nil {
		d.log.Error("Schedule failed", "chat", event.ChatID, "delay", delay, "error", err)
		return domain.Reply{ChatID: event.ChatID, Text: genericErrorText}
	}

	text := timerSetText
	if replaced {
		text += timerReplacedText
	}
	return domain.Reply{ChatID: event.ChatID, Text: text}
}

func (d *Dispatcher) handleUnset(event domain.InboundEvent) domain.Reply {
	if d.timers.Cancel(event.ChatID) {
		return domain.Reply{ChatID: event.ChatID, Text: timerCancelledText}
	}
	return domain.Reply{ChatID: event.ChatID, Text: noActiveTimerText}
}

// handleText always echoes, menu attached. Non-empty text is persisted as a
// side effect; a store failure is logged but the user still gets the echo.
// Blank text is intentionally not persisted so non-text transport events
// never pollute the history.
func (d *Dispatcher) handleText(_ context.Context, event domain.InboundEvent) domain.Reply {
	if strings.TrimSpace(event.Text) != "" {
		if _, err := d.messages.Append(event.ChatID, event.Text); err != nil {
			d.log.Error("Failed to persist message", "chat", event.ChatID, "error", err)
		}
	}
	return domain.Reply{
		ChatID: event.ChatID,
		Text:   fmt.Sprintf("Your ID = %s\n\n%s", event.ChatID, event.Text),
		Menu:   domain.EchoMenu(),
	}
}

func (d *Dispatcher) handleCallback(event domain.InboundEvent) domain.Reply {
	switch event.Token {
	case domain.CallbackCount:
		count, err := d.messages.Count(event.ChatID)
		if err != nil {
			d.log.Error("Count read failed", "chat", event.ChatID, "error", err)
			return domain.Reply{ChatID: event.ChatID, Text: storeDownText}
		}
		return domain.Reply{ChatID: event.ChatID, Text: fmt.Sprintf("You have %d messages!", count)}
	case domain.CallbackList:
		messages, err := d.messages.Recent(event.ChatID, d.recentLimit)
		if err != nil {
			d.log.Error("Recent read failed", "chat", event.ChatID, "error", err)
			return domain.Reply{ChatID: event.ChatID, Text: storeDownText}
		}
		blocks := lo.Map(messages, func(m domain.StoredMessage, _ int) string {
			return fmt.Sprintf("#%d - %s", m.ID, m.Text)
		})
		return domain.Reply{ChatID: event.ChatID, Text: strings.Join(blocks, "\n\n")}
	default:
		d.log.Warn("Unknown callback token", "chat", event.ChatID, "token", event.Token)
		return domain.Reply{ChatID: event.ChatID, Text: genericErrorText}
	}
}
