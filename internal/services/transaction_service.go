// Package services contains the ledger's write path and read models: the
// transfer consistency engine, the envelope budget aggregator, and the
// account/category services. Every multi-row mutation runs inside a single
// storage transaction; successful mutations emit fire-and-forget ledger
// events over AMQP.
package services

import (
	"context"
	"errors"
	"fmt"

	"budgetd/internal/amqp"
	"budgetd/internal/core"
	"budgetd/internal/storage"
)

// TransactionService processes transaction commands while maintaining the
// paired-transfer invariant: an internal transaction always has exactly one
// mirror row with swapped accounts, negated amount and mutual references.
type TransactionService struct {
	repo   *storage.Repository
	events *amqp.Client
}

func NewTransactionService(repo *storage.Repository, events *amqp.Client) *TransactionService {
	return &TransactionService{
		repo:   repo,
		events: events,
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.repo.Queries().ListTransactions(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.Queries().GetTransaction(ctx, id)
}

// Create inserts an external transaction as a single row, or an internal
// transfer as a mirrored pair inside one storage transaction. No partial
// pair is ever visible to readers.
func (s *TransactionService) Create(ctx context.Context, cmd core.TransactionCommand) (core.Transaction, error) {
	if err := validateTransactionCommand(ctx, s.repo.Queries(), cmd); err != nil {
		return core.Transaction{}, err
	}

	var created core.Transaction
	var err error
	if cmd.Kind == core.External {
		created, err = s.createExternal(ctx, cmd)
	} else {
		created, err = s.createInternal(ctx, cmd)
	}
	if err != nil {
		return core.Transaction{}, err
	}

	publishEvent(ctx, s.events, amqp.EntityTransaction, amqp.ActionCreated, created.ID)
	return created, nil
}

func (s *TransactionService) createExternal(ctx context.Context, cmd core.TransactionCommand) (core.Transaction, error) {
	t := core.Transaction{
		Kind:       core.External,
		Cleared:    cmd.Cleared,
		AccountID:  cmd.AccountID,
		CategoryID: cmd.CategoryID,
		Date:       cmd.Date,
		Payee:      cmd.Payee,
		IncomeType: cmd.IncomeType,
		Amount:     cmd.Amount,
	}

	id, err := s.repo.Queries().InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create external transaction: %w", err)
	}
	t.ID = id
	return t, nil
}

func (s *TransactionService) createInternal(ctx context.Context, cmd core.TransactionCommand) (core.Transaction, error) {
	var source core.Transaction
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		onBudget, err := q.AccountOnBudget(ctx, cmd.AccountID)
		if err != nil {
			return fmt.Errorf("source account %d: %w", cmd.AccountID, err)
		}

		// The source leg keeps the category only when its own account is
		// on budget; otherwise the category moves to the destination leg.
		sourceCategory, mirrorCategory := splitCategory(onBudget, cmd.CategoryID)

		source = core.Transaction{
			Kind:              core.Internal,
			IncomeType:        core.IncomeNone,
			Cleared:           cmd.Cleared,
			AccountID:         cmd.AccountID,
			CategoryID:        sourceCategory,
			TransferAccountID: cmd.TransferAccountID,
			Date:              cmd.Date,
			Amount:            cmd.Amount,
			// TransferTransactionID patched in below
		}
		sourceID, err := q.InsertTransaction(ctx, source)
		if err != nil {
			return fmt.Errorf("insert transfer source leg: %w", err)
		}
		source.ID = sourceID

		mirror := core.Transaction{
			Kind:                  core.Internal,
			IncomeType:            core.IncomeNone,
			Cleared:               false, // mirror always starts uncleared
			AccountID:             *cmd.TransferAccountID,
			CategoryID:            mirrorCategory,
			TransferAccountID:     &cmd.AccountID,
			TransferTransactionID: &sourceID,
			Date:                  cmd.Date,
			Amount:                cmd.Amount.Neg(),
		}
		mirrorID, err := q.InsertTransaction(ctx, mirror)
		if err != nil {
			return fmt.Errorf("insert transfer mirror leg: %w", err)
		}

		if err := q.SetTransferTransactionID(ctx, sourceID, &mirrorID); err != nil {
			return fmt.Errorf("link transfer source to mirror: %w", err)
		}
		source.TransferTransactionID = &mirrorID
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create internal transaction: %w", err)
	}
	return source, nil
}

// Update rewrites a transaction. The pairing work depends on the existing
// and the requested kind; all four transitions run inside one storage
// transaction.
func (s *TransactionService) Update(ctx context.Context, id int64, cmd core.TransactionCommand) error {
	existing, err := s.repo.Queries().GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := validateTransactionCommand(ctx, s.repo.Queries(), cmd); err != nil {
		return err
	}

	err = s.repo.InTx(ctx, func(q *storage.Queries) error {
		if existing.Kind == core.Internal {
			mirror, err := s.fetchMirror(ctx, q, existing)
			if err != nil {
				return err
			}
			if cmd.Kind == core.Internal {
				return s.updateInternalToInternal(ctx, q, existing, mirror, cmd)
			}
			return s.updateInternalToExternal(ctx, q, existing, mirror, cmd)
		}
		if cmd.Kind == core.Internal {
			return s.updateExternalToInternal(ctx, q, existing, cmd)
		}
		return s.updateExternalToExternal(ctx, q, existing, cmd)
	})
	if err != nil {
		return err
	}

	publishEvent(ctx, s.events, amqp.EntityTransaction, amqp.ActionUpdated, id)
	return nil
}

// fetchMirror resolves the mirror leg of an internal transaction. A missing
// reference or row means the ledger is corrupt; the operation aborts rather
// than repairing anything.
func (s *TransactionService) fetchMirror(ctx context.Context, q *storage.Queries, t core.Transaction) (core.Transaction, error) {
	if t.TransferTransactionID == nil {
		return core.Transaction{}, fmt.Errorf(
			"transaction %d is internal but carries no mirror reference: %w",
			t.ID, core.ErrIntegrity)
	}
	mirror, err := q.GetTransaction(ctx, *t.TransferTransactionID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Transaction{}, fmt.Errorf(
			"transaction %d references mirror %d which does not exist: %w",
			t.ID, *t.TransferTransactionID, core.ErrIntegrity)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("fetch mirror of transaction %d: %w", t.ID, err)
	}
	return mirror, nil
}

func (s *TransactionService) updateInternalToInternal(ctx context.Context, q *storage.Queries, txn, mirror core.Transaction, cmd core.TransactionCommand) error {
	onBudget, err := q.AccountOnBudget(ctx, cmd.AccountID)
	if err != nil {
		return fmt.Errorf("source account %d: %w", cmd.AccountID, err)
	}
	sourceCategory, mirrorCategory := splitCategory(onBudget, cmd.CategoryID)

	// Kind, mutual references, income type and payee stay as they are;
	// only the mirror's cleared flag is never writable from the request.
	txn.AccountID = cmd.AccountID
	txn.CategoryID = sourceCategory
	txn.TransferAccountID = cmd.TransferAccountID
	txn.Date = cmd.Date
	txn.Amount = cmd.Amount
	txn.Cleared = cmd.Cleared

	mirror.AccountID = *cmd.TransferAccountID
	mirror.CategoryID = mirrorCategory
	mirror.TransferAccountID = &cmd.AccountID
	mirror.Date = cmd.Date
	mirror.Amount = cmd.Amount.Neg()

	if err := q.UpdateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("rewrite transfer source leg %d: %w", txn.ID, err)
	}
	if err := q.UpdateTransaction(ctx, mirror); err != nil {
		return fmt.Errorf("rewrite transfer mirror leg %d: %w", mirror.ID, err)
	}
	return nil
}

func (s *TransactionService) updateInternalToExternal(ctx context.Context, q *storage.Queries, txn, mirror core.Transaction, cmd core.TransactionCommand) error {
	txn.Kind = core.External
	txn.TransferTransactionID = nil
	txn.TransferAccountID = nil
	txn.IncomeType = cmd.IncomeType
	txn.AccountID = cmd.AccountID
	txn.CategoryID = cmd.CategoryID
	txn.Amount = cmd.Amount
	txn.Date = cmd.Date
	txn.Cleared = cmd.Cleared
	txn.Payee = cmd.Payee

	// The rewrite must land before the mirror delete: once the reference
	// is cleared, the store's cascade cannot reach this row.
	if err := q.UpdateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("rewrite transaction %d as external: %w", txn.ID, err)
	}
	if err := q.DeleteTransaction(ctx, mirror.ID); err != nil {
		return fmt.Errorf("delete transfer mirror leg %d: %w", mirror.ID, err)
	}
	return nil
}

func (s *TransactionService) updateExternalToInternal(ctx context.Context, q *storage.Queries, txn core.Transaction, cmd core.TransactionCommand) error {
	onBudget, err := q.AccountOnBudget(ctx, cmd.AccountID)
	if err != nil {
		return fmt.Errorf("source account %d: %w", cmd.AccountID, err)
	}
	sourceCategory, mirrorCategory := splitCategory(onBudget, cmd.CategoryID)

	txn.Kind = core.Internal
	txn.IncomeType = core.IncomeNone
	txn.Payee = nil
	txn.AccountID = cmd.AccountID
	txn.CategoryID = sourceCategory
	txn.TransferAccountID = cmd.TransferAccountID
	txn.TransferTransactionID = nil
	txn.Date = cmd.Date
	txn.Amount = cmd.Amount
	txn.Cleared = cmd.Cleared

	if err := q.UpdateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("rewrite transaction %d as internal: %w", txn.ID, err)
	}

	mirror := core.Transaction{
		Kind:                  core.Internal,
		IncomeType:            core.IncomeNone,
		Cleared:               false,
		AccountID:             *cmd.TransferAccountID,
		CategoryID:            mirrorCategory,
		TransferAccountID:     &cmd.AccountID,
		TransferTransactionID: &txn.ID,
		Date:                  cmd.Date,
		Amount:                cmd.Amount.Neg(),
	}
	mirrorID, err := q.InsertTransaction(ctx, mirror)
	if err != nil {
		return fmt.Errorf("insert transfer mirror leg: %w", err)
	}

	if err := q.SetTransferTransactionID(ctx, txn.ID, &mirrorID); err != nil {
		return fmt.Errorf("link transaction %d to mirror %d: %w", txn.ID, mirrorID, err)
	}
	return nil
}

func (s *TransactionService) updateExternalToExternal(ctx context.Context, q *storage.Queries, txn core.Transaction, cmd core.TransactionCommand) error {
	txn.Kind = core.External
	txn.TransferTransactionID = nil
	txn.TransferAccountID = nil
	txn.IncomeType = cmd.IncomeType
	txn.AccountID = cmd.AccountID
	txn.CategoryID = cmd.CategoryID
	txn.Amount = cmd.Amount
	txn.Date = cmd.Date
	txn.Cleared = cmd.Cleared
	txn.Payee = cmd.Payee

	if err := q.UpdateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("rewrite external transaction %d: %w", txn.ID, err)
	}
	return nil
}

// Delete removes a transaction. The store's cascade removes the mirror leg
// of an internal pair in the same statement.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Queries().DeleteTransaction(ctx, id); err != nil {
		return err
	}
	publishEvent(ctx, s.events, amqp.EntityTransaction, amqp.ActionDeleted, id)
	return nil
}

// splitCategory applies the transfer category rule: the requested category
// lands on the source leg when the source account is on budget, otherwise
// on the destination leg. The destination account's own flag is never
// consulted.
func splitCategory(sourceOnBudget bool, categoryID *int64) (source, mirror *int64) {
	if sourceOnBudget {
		return categoryID, nil
	}
	return nil, categoryID
}
