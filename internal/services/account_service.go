package services

import (
	"context"
	"fmt"

	"budgetd/internal/amqp"
	"budgetd/internal/core"
	"budgetd/internal/storage"
)

// initialBalancePayee names the opening transaction created with every
// account.
const initialBalancePayee = "Initial balance"

// AccountService manages accounts. The on-budget flag is fixed at creation;
// balances are derived from transactions, never stored.
type AccountService struct {
	repo   *storage.Repository
	events *amqp.Client
}

func NewAccountService(repo *storage.Repository, events *amqp.Client) *AccountService {
	return &AccountService{
		repo:   repo,
		events: events,
	}
}

func (s *AccountService) List(ctx context.Context) ([]core.AccountBalance, error) {
	return s.repo.Queries().ListAccounts(ctx)
}

func (s *AccountService) Get(ctx context.Context, id int64) (core.AccountBalance, error) {
	return s.repo.Queries().GetAccountBalance(ctx, id)
}

// Create inserts the account and, atomically with it, an opening external
// transaction carrying the requested starting balance as current-month
// income.
func (s *AccountService) Create(ctx context.Context, cmd core.AccountCommand) (core.Account, error) {
	if err := validateEntityName(cmd.Name); err != nil {
		return core.Account{}, err
	}

	var account core.Account
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		var err error
		account, err = q.InsertAccount(ctx, cmd.Name, cmd.OnBudget)
		if err != nil {
			return err
		}

		payee := initialBalancePayee
		opening := core.Transaction{
			Kind:       core.External,
			Cleared:    true,
			AccountID:  account.ID,
			Date:       core.Today(),
			Payee:      &payee,
			IncomeType: core.IncomeCurrentMonth,
			Amount:     cmd.Balance,
		}
		if _, err := q.InsertTransaction(ctx, opening); err != nil {
			return fmt.Errorf("insert opening balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	publishEvent(ctx, s.events, amqp.EntityAccount, amqp.ActionCreated, account.ID)
	return account, nil
}

// Rename changes the account name. The on-budget flag is immutable.
func (s *AccountService) Rename(ctx context.Context, id int64, name string) error {
	if err := validateEntityName(name); err != nil {
		return err
	}
	if err := s.repo.Queries().UpdateAccountName(ctx, id, name); err != nil {
		return err
	}
	publishEvent(ctx, s.events, amqp.EntityAccount, amqp.ActionUpdated, id)
	return nil
}

// Delete removes the account; the store cascades deletion of all its
// transactions (and, through the pair cascade, their mirror legs).
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Queries().DeleteAccount(ctx, id); err != nil {
		return err
	}
	publishEvent(ctx, s.events, amqp.EntityAccount, amqp.ActionDeleted, id)
	return nil
}
