package main

import (
	"context"
	"echobot/gateway"
	"echobot/notify"
	"echobot/repositories"
	"echobot/runtime/workers"
	"echobot/scheduler"
	"echobot/services"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/nats-io/nats.go"
	"github.com/samber/lo"
)

const defaultRecentLimit = 5

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close, NATS drain)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load() // .env is optional, the environment wins
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messageRepository, err := repositories.NewMessageRepository(db, log)
	if err != nil {
		return fmt.Errorf("message repository failed to start: %w", err)
	}
	defer func() { _ = messageRepository.Close() }()

	// 3. NATS (timer notification fanout)
	nc, err := nats.Connect(config.NatsURL)
	if err != nil {
		return fmt.Errorf("NATS connection failed: %w", err)
	}
	defer nc.Close()

	// 4. Scheduler, Dispatcher & Supervision
	notifier := notify.NewNatsNotifier(nc, log)
	timers := scheduler.NewTimerScheduler(log, notifier, config.DriverTickInterval)
	dispatcher := services.NewDispatcher(
		log, messageRepository, timers,
		lo.FromPtrOr(config.RecentLimit, defaultRecentLimit),
	)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(timers)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 6. WebSocket Gateway
	server := gateway.New(log, dispatcher, nc)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket gateway", "address", address)
		if err := server.Listen(address); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	if err := server.Shutdown(); err != nil {
		log.Warn("Gateway shutdown failed", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
