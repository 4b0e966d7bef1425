package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/key-value/banktransfer/internal/adapter/eventstore/memory"
	"github.com/key-value/banktransfer/internal/adapter/eventstore/postgres"
	httpadapter "github.com/key-value/banktransfer/internal/adapter/http"
	"github.com/key-value/banktransfer/internal/bus"
	"github.com/key-value/banktransfer/internal/config"
	"github.com/key-value/banktransfer/internal/domain"
	"github.com/key-value/banktransfer/internal/usecase/bank"
	"github.com/key-value/banktransfer/internal/usecase/orchestrator"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := newLogger(cfg.Log)

	// 1. Event store
	store, closeStore, err := newEventStore(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up event store")
	}
	defer closeStore()

	// 2. Command/event bus with the three aggregate types
	b := bus.New(store, log)
	b.Register(domain.KindAccount, func(id uuid.UUID) domain.Aggregate {
		return domain.NewAccount(id)
	})
	b.Register(domain.KindDeposit, func(id uuid.UUID) domain.Aggregate {
		return domain.NewDepositTransaction(id)
	})
	b.Register(domain.KindTransfer, func(id uuid.UUID) domain.Aggregate {
		return domain.NewTransferTransaction(id)
	})

	// 3. Process managers and event log
	b.Subscribe("deposit-pm", orchestrator.NewDepositProcessManager(b, log))
	b.Subscribe("transfer-pm", orchestrator.NewTransferProcessManager(b, log))
	b.Subscribe("event-log", &eventLogger{log: log})

	// 4. Application service and HTTP API
	svc := bank.NewService(b, store)

	if cfg.Demo {
		runDemo(log, svc, b)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httpadapter.NewHandler(svc, log).Register(app)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
		if err := app.Listen(cfg.Server.Addr); err != nil {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	waitForShutdown(log, app, b)
}

// newLogger builds the service logger
func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Str("service", "banktransfer").Logger()
}

// newEventStore opens the configured event store
func newEventStore(cfg config.DatabaseConfig) (domain.EventStore, func(), error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.NewDB(cfg.ConnString)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewEventStore(db), func() { db.Close() }, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}

// runDemo plays the classic scenario: two accounts, 1000 deposited into each,
// a 300 transfer one way and a 500 transfer back.
func runDemo(log zerolog.Logger, svc *bank.Service, b *bus.Bus) {
	ctx := context.Background()

	accountA, err := svc.OpenAccount(ctx, "alice")
	if err != nil {
		log.Fatal().Err(err).Msg("demo: failed to open account")
	}
	accountB, err := svc.OpenAccount(ctx, "bob")
	if err != nil {
		log.Fatal().Err(err).Msg("demo: failed to open account")
	}

	if _, err := svc.StartDeposit(ctx, accountA, decimal.NewFromInt(1000)); err != nil {
		log.Fatal().Err(err).Msg("demo: failed to start deposit")
	}
	if _, err := svc.StartDeposit(ctx, accountB, decimal.NewFromInt(1000)); err != nil {
		log.Fatal().Err(err).Msg("demo: failed to start deposit")
	}
	waitSettled(log, b)

	if _, err := svc.StartTransfer(ctx, accountA, accountB, decimal.NewFromInt(300)); err != nil {
		log.Fatal().Err(err).Msg("demo: failed to start transfer")
	}
	waitSettled(log, b)

	if _, err := svc.StartTransfer(ctx, accountB, accountA, decimal.NewFromInt(500)); err != nil {
		log.Fatal().Err(err).Msg("demo: failed to start transfer")
	}
	waitSettled(log, b)

	for _, id := range []uuid.UUID{accountA, accountB} {
		view, err := svc.GetAccount(ctx, id)
		if err != nil {
			log.Fatal().Err(err).Msg("demo: failed to load account")
		}
		log.Info().
			Str("account_id", view.ID.String()).
			Str("owner", view.Owner).
			Str("balance", view.Balance.String()).
			Msg("demo: final balance")
	}
}

func waitSettled(log zerolog.Logger, b *bus.Bus) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.Drain(ctx); err != nil {
		log.Fatal().Err(err).Msg("demo: bus did not settle")
	}
}

// waitForShutdown blocks until SIGTERM or SIGINT, then shuts everything down
func waitForShutdown(log zerolog.Logger, app *fiber.App, b *bus.Bus) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.Close(ctx); err != nil {
		log.Error().Err(err).Msg("bus shutdown failed")
	}
	log.Info().Msg("stopped")
}

// eventLogger mirrors every published event into the service log
type eventLogger struct {
	log zerolog.Logger
}

func (l *eventLogger) HandleEvent(_ context.Context, evt domain.Event) {
	switch e := evt.(type) {
	case domain.AccountOpened:
		l.log.Info().Str("account_id", e.AccountID.String()).Str("owner", e.Owner).Msg("account opened")
	case domain.ReservationCommitted:
		l.log.Info().
			Str("account_id", e.Reservation.AccountID.String()).
			Str("transaction_id", e.Reservation.TransactionID.String()).
			Str("kind", string(e.Reservation.Kind)).
			Str("amount", e.Reservation.Amount.String()).
			Str("balance", e.NewBalance.String()).
			Msg("reservation committed")
	case domain.InsufficientBalance:
		l.log.Warn().
			Str("account_id", e.AccountID.String()).
			Str("amount", e.Amount.String()).
			Str("available", e.AvailableBalance.String()).
			Msg("insufficient balance")
	case domain.TransferCompleted:
		l.log.Info().Str("transaction_id", e.Info.TransactionID.String()).Msg("transfer completed")
	case domain.TransferCanceled:
		l.log.Info().Str("transaction_id", e.Info.TransactionID.String()).Msg("transfer canceled")
	case domain.DepositCompleted:
		l.log.Info().Str("transaction_id", e.TransactionID.String()).Msg("deposit completed")
	default:
		l.log.Debug().Str("event", evt.EventType()).Msg("event published")
	}
}
