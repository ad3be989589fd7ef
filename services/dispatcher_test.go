package services

import (
	"context"
	"echobot/domain"
	apperr "echobot/errors"
	"echobot/mocks"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *mocks.MockIMessageRepository, *mocks.MockITimerScheduler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	timers := mocks.NewMockITimerScheduler(ctrl)
	return NewDispatcher(slog.Default(), messages, timers, 5), messages, timers
}

func command(chatID, name string, args ...string) domain.InboundEvent {
	return domain.InboundEvent{ChatID: chatID, Kind: domain.EventCommand, Command: name, Args: args}
}

func TestDispatcher_StaticCommands(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	t.Run("start greets without side effects", func(t *testing.T) {
		req := require.New(t)
		reply := d.Dispatch(context.Background(), command("chat-1", CommandStart))
		req.Equal("chat-1", reply.ChatID)
		req.Contains(reply.Text, "/set <seconds>")
		req.Empty(reply.Menu)
	})

	t.Run("help describes the bot without side effects", func(t *testing.T) {
		req := require.New(t)
		reply := d.Dispatch(context.Background(), command("chat-1", CommandHelp))
		req.Contains(reply.Text, "Echo bot")
		req.Empty(reply.Menu)
	})

	t.Run("unknown command points at help", func(t *testing.T) {
		req := require.New(t)
		reply := d.Dispatch(context.Background(), command("chat-1", "frobnicate"))
		req.Equal(unknownCommandText, reply.Text)
	})
}

func TestDispatcher_SetCommand(t *testing.T) {
	t.Run("valid delay arms a timer", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Schedule("chat-1", 5).Return(false, nil).Times(1)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandSet, "5"))
		req.Equal(timerSetText, reply.Text)
	})

	t.Run("replacement is reported", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Schedule("chat-1", 3).Return(true, nil).Times(1)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandSet, "3"))
		req.Equal(timerSetText+timerReplacedText, reply.Text)
	})

	t.Run("missing argument is a usage error, scheduler untouched", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Schedule(gomock.Any(), gomock.Any()).Times(0)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandSet))
		req.Equal(setUsageText, reply.Text)
	})

	t.Run("non-numeric argument is a usage error, scheduler untouched", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Schedule(gomock.Any(), gomock.Any()).Times(0)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandSet, "soon"))
		req.Equal(setUsageText, reply.Text)
	})

	t.Run("negative delay is a domain error, scheduler untouched", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Schedule(gomock.Any(), gomock.Any()).Times(0)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandSet, "-1"))
		req.Equal(pastDelayText, reply.Text)
	})

	t.Run("scheduler failure degrades to a generic error", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Schedule("chat-1", 5).Return(false, apperr.ErrInvalidDelay).Times(1)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandSet, "5"))
		req.Equal(genericErrorText, reply.Text)
	})
}

func TestDispatcher_UnsetCommand(t *testing.T) {
	t.Run("active timer is cancelled", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Cancel("chat-1").Return(true).Times(1)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandUnset))
		req.Equal(timerCancelledText, reply.Text)
	})

	t.Run("no timer to cancel", func(t *testing.T) {
		req := require.New(t)
		d, _, timers := newTestDispatcher(t)
		timers.EXPECT().Cancel("chat-1").Return(false).Times(1)

		reply := d.Dispatch(context.Background(), command("chat-1", CommandUnset))
		req.Equal(noActiveTimerText, reply.Text)
	})
}

func TestDispatcher_FreeText(t *testing.T) {
	textEvent := func(chatID, text string) domain.InboundEvent {
		return domain.InboundEvent{ChatID: chatID, Kind: domain.EventText, Text: text}
	}

	t.Run("echoes with menu and persists", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Append("chat-1", "hello").Return(uint64(1), nil).Times(1)

		reply := d.Dispatch(context.Background(), textEvent("chat-1", "hello"))
		req.Contains(reply.Text, "Your ID = chat-1")
		req.Contains(reply.Text, "hello")
		req.Equal(domain.EchoMenu(), reply.Menu)
	})

	t.Run("blank text still echoes but is never persisted", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

		reply := d.Dispatch(context.Background(), textEvent("chat-1", "   "))
		req.Contains(reply.Text, "Your ID = chat-1")
		req.Equal(domain.EchoMenu(), reply.Menu)
	})

	t.Run("store failure does not swallow the echo", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Append("chat-1", "hello").
			Return(uint64(0), apperr.ErrStoreUnavailable).Times(1)

		reply := d.Dispatch(context.Background(), textEvent("chat-1", "hello"))
		req.Contains(reply.Text, "hello")
		req.Equal(domain.EchoMenu(), reply.Menu)
	})
}

func TestDispatcher_Callbacks(t *testing.T) {
	callback := func(chatID, token string) domain.InboundEvent {
		return domain.InboundEvent{ChatID: chatID, Kind: domain.EventCallback, Token: token}
	}

	t.Run("count reports the total", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Count("chat-1").Return(7, nil).Times(1)

		reply := d.Dispatch(context.Background(), callback("chat-1", domain.CallbackCount))
		req.Equal("You have 7 messages!", reply.Text)
	})

	t.Run("list formats the five most recent, newest first", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Recent("chat-1", 5).Return([]domain.StoredMessage{
			{ID: 9, UserID: "chat-1", Text: "latest"},
			{ID: 8, UserID: "chat-1", Text: "older"},
		}, nil).Times(1)

		reply := d.Dispatch(context.Background(), callback("chat-1", domain.CallbackList))
		req.Equal("#9 - latest\n\n#8 - older", reply.Text)
	})

	t.Run("empty history renders an empty body", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Recent("chat-1", 5).Return(nil, nil).Times(1)

		reply := d.Dispatch(context.Background(), callback("chat-1", domain.CallbackList))
		req.Empty(reply.Text)
	})

	t.Run("count read failure degrades gracefully", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Count("chat-1").Return(0, apperr.ErrStoreUnavailable).Times(1)

		reply := d.Dispatch(context.Background(), callback("chat-1", domain.CallbackCount))
		req.Equal(storeDownText, reply.Text)
	})

	t.Run("list read failure degrades gracefully", func(t *testing.T) {
		req := require.New(t)
		d, messages, _ := newTestDispatcher(t)
		messages.EXPECT().Recent("chat-1", 5).Return(nil, apperr.ErrStoreUnavailable).Times(1)

		reply := d.Dispatch(context.Background(), callback("chat-1", domain.CallbackList))
		req.Equal(storeDownText, reply.Text)
	})

	t.Run("unknown token is a generic error", func(t *testing.T) {
		req := require.New(t)
		d, _, _ := newTestDispatcher(t)

		reply := d.Dispatch(context.Background(), callback("chat-1", "mystery"))
		req.Equal(genericErrorText, reply.Text)
	})
}

func TestDispatcher_UnknownKind(t *testing.T) {
	req := require.New(t)
	d, _, _ := newTestDispatcher(t)

	reply := d.Dispatch(context.Background(), domain.InboundEvent{ChatID: "chat-1", Kind: "carrier-pigeon"})
	req.Equal(genericErrorText, reply.Text)
}
