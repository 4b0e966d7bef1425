package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/key-value/banktransfer/internal/adapter/eventstore/memory"
	"github.com/key-value/banktransfer/internal/bus"
	"github.com/key-value/banktransfer/internal/domain"
	"github.com/key-value/banktransfer/internal/usecase/bank"
	"github.com/key-value/banktransfer/internal/usecase/orchestrator"
)

type system struct {
	bus     *bus.Bus
	store   *memory.Store
	service *bank.Service
}

// newTestSystem wires the full in-process pipeline: event store, bus, both
// process managers, and the banking service on top.
func newTestSystem(t *testing.T) *system {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()

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
	b.Subscribe("deposit-pm", orchestrator.NewDepositProcessManager(b, log))
	b.Subscribe("transfer-pm", orchestrator.NewTransferProcessManager(b, log))

	return &system{
		bus:     b,
		store:   store,
		service: bank.NewService(b, store),
	}
}

// settle waits until every in-flight event, including saga follow-ups, is handled
func (s *system) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.bus.Drain(ctx))
}

func (s *system) openAccount(t *testing.T, owner string, balance int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id, err := s.service.OpenAccount(ctx, owner)
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, s.service.Deposit(ctx, id, decimal.NewFromInt(balance)))
	}
	return id
}

func (s *system) accountBalance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	view, err := s.service.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return view.Balance
}

func TestTransferSaga_Completes(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	alice := sys.openAccount(t, "alice", 1000)
	bob := sys.openAccount(t, "bob", 1000)

	txID, err := sys.service.StartTransfer(ctx, alice, bob, decimal.NewFromInt(300))
	require.NoError(t, err)
	sys.settle(t)

	transfer, err := sys.service.GetTransfer(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), transfer.Status)
	assert.True(t, transfer.OutConfirmed)
	assert.True(t, transfer.InConfirmed)

	assert.True(t, sys.accountBalance(t, alice).Equal(decimal.NewFromInt(700)))
	assert.True(t, sys.accountBalance(t, bob).Equal(decimal.NewFromInt(1300)))

	// All holds are released once the saga finishes.
	aliceView, err := sys.service.GetAccount(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, aliceView.Reservations)
	bobView, err := sys.service.GetAccount(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobView.Reservations)
}

func TestTransferSaga_InsufficientBalanceCancels(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	alice := sys.openAccount(t, "alice", 100)
	bob := sys.openAccount(t, "bob", 1000)

	txID, err := sys.service.StartTransfer(ctx, alice, bob, decimal.NewFromInt(300))
	require.NoError(t, err)
	sys.settle(t)

	transfer, err := sys.service.GetTransfer(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), transfer.Status)
	assert.True(t, transfer.CancelOutConfirmed)
	assert.True(t, transfer.CancelInConfirmed)

	// Neither balance moved and no hold is left behind.
	assert.True(t, sys.accountBalance(t, alice).Equal(decimal.NewFromInt(100)))
	assert.True(t, sys.accountBalance(t, bob).Equal(decimal.NewFromInt(1000)))
	aliceView, err := sys.service.GetAccount(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, aliceView.Reservations)
	bobView, err := sys.service.GetAccount(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobView.Reservations)
}

func TestDepositSaga_Completes(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	alice := sys.openAccount(t, "alice", 0)

	txID, err := sys.service.StartDeposit(ctx, alice, decimal.NewFromInt(1000))
	require.NoError(t, err)
	sys.settle(t)

	deposit, err := sys.service.GetDeposit(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), deposit.Status)
	assert.True(t, deposit.PreparationConfirmed)

	assert.True(t, sys.accountBalance(t, alice).Equal(decimal.NewFromInt(1000)))
	view, err := sys.service.GetAccount(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, view.Reservations)
}

func TestConcurrentTransfers_BothDirections(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	alice := sys.openAccount(t, "alice", 1000)
	bob := sys.openAccount(t, "bob", 1000)

	outID, err := sys.service.StartTransfer(ctx, alice, bob, decimal.NewFromInt(300))
	require.NoError(t, err)
	backID, err := sys.service.StartTransfer(ctx, bob, alice, decimal.NewFromInt(500))
	require.NoError(t, err)
	sys.settle(t)

	for _, txID := range []uuid.UUID{outID, backID} {
		transfer, err := sys.service.GetTransfer(ctx, txID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCompleted), transfer.Status)
	}

	assert.True(t, sys.accountBalance(t, alice).Equal(decimal.NewFromInt(1200)))
	assert.True(t, sys.accountBalance(t, bob).Equal(decimal.NewFromInt(800)))
}

func TestReplay_IsDeterministic(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	alice := sys.openAccount(t, "alice", 1000)
	bob := sys.openAccount(t, "bob", 0)
	_, err := sys.service.StartTransfer(ctx, alice, bob, decimal.NewFromInt(400))
	require.NoError(t, err)
	sys.settle(t)

	streamID := domain.StreamID(domain.KindAccount, alice)
	history, _, err := sys.store.Load(ctx, streamID)
	require.NoError(t, err)

	// Replaying the same history twice must land on identical state.
	replay := func() *domain.Account {
		account := domain.NewAccount(alice)
		for _, evt := range history {
			account.Evolve(evt)
		}
		return account
	}
	first, second := replay(), replay()

	assert.True(t, first.Balance.Equal(second.Balance))
	assert.True(t, first.Balance.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, first.Reservations(), second.Reservations())
}
