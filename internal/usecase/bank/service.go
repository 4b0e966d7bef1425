// Package bank is the application service in front of the command bus:
// it validates input, issues the initial commands, and serves read models
// rebuilt by replaying aggregate event history.
package bank

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/key-value/banktransfer/internal/domain"
)

// CommandSender issues a command to its aggregate
type CommandSender interface {
	Send(ctx context.Context, cmd domain.Command) error
}

// Service exposes the banking operations
type Service struct {
	sender CommandSender
	store  domain.EventStore
}

// NewService creates a new banking service
func NewService(sender CommandSender, store domain.EventStore) *Service {
	return &Service{sender: sender, store: store}
}

// OpenAccount creates a new account and returns its id
func (s *Service) OpenAccount(ctx context.Context, owner string) (uuid.UUID, error) {
	if owner == "" {
		return uuid.Nil, errors.New("account owner cannot be empty")
	}
	id := uuid.New()
	if err := s.sender.Send(ctx, domain.OpenAccount{AccountID: id, Owner: owner}); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Deposit credits an account directly, outside any saga flow
func (s *Service) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("deposit amount must be positive")
	}
	return s.sender.Send(ctx, domain.Deposit{AccountID: accountID, Amount: amount})
}

// Withdraw debits an account directly if the available balance allows it.
// An insufficient balance is not an error; the refusal is published as an
// event and visible on the account view.
func (s *Service) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("withdrawal amount must be positive")
	}
	return s.sender.Send(ctx, domain.Withdraw{AccountID: accountID, Amount: amount})
}

// StartDeposit begins a deposit transaction saga and returns the transaction id
func (s *Service) StartDeposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (uuid.UUID, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return uuid.Nil, errors.New("deposit amount must be positive")
	}
	txID := uuid.New()
	err := s.sender.Send(ctx, domain.StartDeposit{
		TransactionID: txID,
		AccountID:     accountID,
		Amount:        amount,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return txID, nil
}

// StartTransfer begins a transfer transaction saga and returns the transaction id
func (s *Service) StartTransfer(ctx context.Context, sourceID, targetID uuid.UUID, amount decimal.Decimal) (uuid.UUID, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return uuid.Nil, errors.New("transfer amount must be positive")
	}
	if sourceID == targetID {
		return uuid.Nil, errors.New("source and target account must differ")
	}
	txID := uuid.New()
	err := s.sender.Send(ctx, domain.StartTransfer{Info: domain.TransferInfo{
		TransactionID:   txID,
		SourceAccountID: sourceID,
		TargetAccountID: targetID,
		Amount:          amount,
	}})
	if err != nil {
		return uuid.Nil, err
	}
	return txID, nil
}

// GetAccount rebuilds an account's state from its event history
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*AccountView, error) {
	history, _, err := s.store.Load(ctx, domain.StreamID(domain.KindAccount, id))
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	account := domain.NewAccount(id)
	for _, evt := range history {
		account.Evolve(evt)
	}
	return newAccountView(account), nil
}

// GetDeposit rebuilds a deposit transaction's state from its event history
func (s *Service) GetDeposit(ctx context.Context, id uuid.UUID) (*DepositView, error) {
	history, _, err := s.store.Load(ctx, domain.StreamID(domain.KindDeposit, id))
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrTransactionNotFound
	}
	tx := domain.NewDepositTransaction(id)
	for _, evt := range history {
		tx.Evolve(evt)
	}
	return newDepositView(tx), nil
}

// GetTransfer rebuilds a transfer transaction's state from its event history
func (s *Service) GetTransfer(ctx context.Context, id uuid.UUID) (*TransferView, error) {
	history, _, err := s.store.Load(ctx, domain.StreamID(domain.KindTransfer, id))
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrTransactionNotFound
	}
	tx := domain.NewTransferTransaction(id)
	for _, evt := range history {
		tx.Evolve(evt)
	}
	return newTransferView(tx), nil
}
