//go:generate go run go.uber.org/mock/mockgen -source=scheduler.go -destination=../mocks/mock_scheduler.go -package=mocks

// Package scheduler owns the per-conversation deferred notifications.
// Each conversation identity holds at most one pending timer; scheduling
// over an existing timer displaces it, cancelling makes the slot free again.
// Timer state lives in memory only and does not survive a restart.
package scheduler

import (
	"context"
	"echobot/contract"
	"echobot/domain"
	apperr "echobot/errors"
	"log/slog"
	"math"
	"sync"
	"time"
)

// maxDelaySeconds is the largest delay representable as a time.Duration.
// Anything above it saturates instead of wrapping into the past.
const maxDelaySeconds = math.MaxInt64 / int64(time.Second)

type ITimerScheduler interface {
	Schedule(identity string, delaySeconds int) (bool, error)
	Cancel(identity string) bool
}

// TimerScheduler keeps one deadline per conversation identity and runs a
// driver loop that fires due timers. Schedule, Cancel and the due-collection
// of the driver share a single critical section, so a timer cancelled or
// replaced before its deadline is never observed by the driver, and a timer
// already collected for firing can no longer be cancelled.
type TimerScheduler struct {
	mu        sync.Mutex
	log       *slog.Logger
	notifier  contract.Notifier
	tick      time.Duration
	now       func() time.Time
	deadlines map[string]time.Time
}

func NewTimerScheduler(log *slog.Logger, notifier contract.Notifier, tick time.Duration) *TimerScheduler {
	return &TimerScheduler{
		log:       log,
		notifier:  notifier,
		tick:      tick,
		now:       time.Now,
		deadlines: make(map[string]time.Time),
	}
}

// Schedule arms a timer firing delaySeconds from now. A pending timer for
// the same identity is displaced first; the returned bool reports whether
// that happened. Negative delays are rejected with ErrInvalidDelay and leave
// the pending set untouched. A delay of 0 fires on the driver's next tick;
// a delay beyond the Duration range saturates to the farthest representable
// deadline.
func (s *TimerScheduler) Schedule(identity string, delaySeconds int) (bool, error) {
	if delaySeconds < 0 {
		return false, apperr.ErrInvalidDelay
	}
	delay := time.Duration(delaySeconds) * time.Second
	if int64(delaySeconds) > maxDelaySeconds {
		delay = math.MaxInt64
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.deadlines[identity]
	s.deadlines[identity] = s.now().Add(delay)
	s.log.Debug("Timer scheduled", "identity", identity, "delay_seconds", delaySeconds, "replaced", replaced)
	return replaced, nil
}

// Cancel removes the pending timer for the identity, reporting whether one
// existed. A timer whose notification is already underway reports false.
func (s *TimerScheduler) Cancel(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.deadlines[identity]
	if existed {
		delete(s.deadlines, identity)
		s.log.Debug("Timer cancelled", "identity", identity)
	}
	return existed
}

// Run drives the firing loop until the context is cancelled. Due timers are
// removed from the pending set under the lock, then notified outside it so a
// slow sink never blocks Schedule or Cancel.
func (s *TimerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, identity := range s.collectDue() {
				if err := s.notifier.Notify(ctx, identity, domain.TimeUpText); err != nil {
					s.log.Error("Failed to deliver timer notification", "identity", identity, "error", err)
				}
			}
		}
	}
}

// collectDue removes and returns every identity whose deadline has elapsed.
// Removal and collection are atomic: once an identity is returned here, its
// slot is free and a concurrent Cancel finds nothing.
func (s *TimerScheduler) collectDue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var due []string
	for identity, deadline := range s.deadlines {
		if !deadline.After(now) {
			due = append(due, identity)
			delete(s.deadlines, identity)
		}
	}
	return due
}
