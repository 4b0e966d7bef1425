package bank

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/key-value/banktransfer/internal/adapter/eventstore/memory"
	"github.com/key-value/banktransfer/internal/domain"
)

// recordingSender captures every command instead of dispatching it
type recordingSender struct {
	commands []domain.Command
}

func (r *recordingSender) Send(_ context.Context, cmd domain.Command) error {
	r.commands = append(r.commands, cmd)
	return nil
}

func newTestService() (*Service, *recordingSender, *memory.Store) {
	sender := &recordingSender{}
	store := memory.NewStore()
	return NewService(sender, store), sender, store
}

func TestService_OpenAccount(t *testing.T) {
	svc, sender, _ := newTestService()

	id, err := svc.OpenAccount(context.Background(), "alice")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	require.Len(t, sender.commands, 1)
	cmd, ok := sender.commands[0].(domain.OpenAccount)
	require.True(t, ok)
	assert.Equal(t, id, cmd.AccountID)
	assert.Equal(t, "alice", cmd.Owner)
}

func TestService_OpenAccount_EmptyOwner(t *testing.T) {
	svc, sender, _ := newTestService()

	_, err := svc.OpenAccount(context.Background(), "")

	assert.Error(t, err)
	assert.Empty(t, sender.commands)
}

func TestService_AmountValidation(t *testing.T) {
	svc, sender, _ := newTestService()
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name string
		call func(amount decimal.Decimal) error
	}{
		{
			name: "Deposit",
			call: func(amount decimal.Decimal) error { return svc.Deposit(ctx, id, amount) },
		},
		{
			name: "Withdraw",
			call: func(amount decimal.Decimal) error { return svc.Withdraw(ctx, id, amount) },
		},
		{
			name: "StartDeposit",
			call: func(amount decimal.Decimal) error {
				_, err := svc.StartDeposit(ctx, id, amount)
				return err
			},
		},
		{
			name: "StartTransfer",
			call: func(amount decimal.Decimal) error {
				_, err := svc.StartTransfer(ctx, id, uuid.New(), amount)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.call(decimal.Zero))
			assert.Error(t, tt.call(decimal.NewFromInt(-10)))
		})
	}
	assert.Empty(t, sender.commands)
}

func TestService_StartTransfer_SameAccount(t *testing.T) {
	svc, sender, _ := newTestService()
	id := uuid.New()

	_, err := svc.StartTransfer(context.Background(), id, id, decimal.NewFromInt(100))

	assert.Error(t, err)
	assert.Empty(t, sender.commands)
}

func TestService_StartTransfer_IssuesStartCommand(t *testing.T) {
	svc, sender, _ := newTestService()
	source, target := uuid.New(), uuid.New()

	txID, err := svc.StartTransfer(context.Background(), source, target, decimal.NewFromInt(100))

	require.NoError(t, err)
	require.Len(t, sender.commands, 1)
	cmd, ok := sender.commands[0].(domain.StartTransfer)
	require.True(t, ok)
	assert.Equal(t, txID, cmd.Info.TransactionID)
	assert.Equal(t, source, cmd.Info.SourceAccountID)
	assert.Equal(t, target, cmd.Info.TargetAccountID)
}

func TestService_GetAccount(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.GetAccount(ctx, id)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.NoError(t, store.Append(ctx, domain.StreamID(domain.KindAccount, id), 0, []domain.Event{
		domain.AccountOpened{AccountID: id, Owner: "alice"},
		domain.AccountCredited{AccountID: id, Amount: decimal.NewFromInt(500), NewBalance: decimal.NewFromInt(500)},
	}))

	view, err := svc.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Owner)
	assert.True(t, view.Balance.Equal(decimal.NewFromInt(500)))
	assert.True(t, view.AvailableBalance.Equal(decimal.NewFromInt(500)))
	assert.Empty(t, view.Reservations)
}

func TestService_GetTransfer_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetTransfer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = svc.GetDeposit(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
