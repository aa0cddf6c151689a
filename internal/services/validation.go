package services

import (
	"context"
	"errors"
	"fmt"

	"budgetd/internal/core"
	"budgetd/internal/storage"
)

// validateTransactionCommand checks the structural and business rules a
// transaction command must satisfy before it reaches the pairing engine.
// The engine assumes these preconditions hold.
func validateTransactionCommand(ctx context.Context, q *storage.Queries, cmd core.TransactionCommand) error {
	var ve core.ValidationErrors

	if !cmd.Kind.Valid() {
		ve.Add("kind", "invalid transaction kind")
	}
	if !cmd.IncomeType.Valid() {
		ve.Add("incomeType", "invalid income type")
	} else if cmd.Kind == core.Internal && cmd.IncomeType != core.IncomeNone {
		ve.Add("incomeType", "income type must be %s for internal transfers", core.IncomeNone)
	}
	if cmd.Date.IsZero() {
		ve.Add("date", "transaction date must be set")
	}

	var account core.Account
	accountKnown := false
	if cmd.AccountID == 0 {
		ve.Add("accountId", "account ID must be set")
	} else {
		var err error
		account, err = q.GetAccount(ctx, cmd.AccountID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			ve.Add("accountId", "account ID is invalid")
		case err != nil:
			return fmt.Errorf("validate account %d: %w", cmd.AccountID, err)
		default:
			accountKnown = true
		}
	}

	switch cmd.Kind {
	case core.External:
		if cmd.TransferAccountID != nil {
			ve.Add("transferAccountId", "non-transfer transactions must not have a transfer account")
		}
		if cmd.Payee == nil || !core.ValidName(*cmd.Payee) {
			ve.Add("payee", "transaction payee must be set and at most %d characters", core.NameMaxLen)
		}
		if accountKnown {
			if err := validateExternalCategory(ctx, q, account, cmd, &ve); err != nil {
				return err
			}
		}

	case core.Internal:
		if cmd.Payee != nil {
			ve.Add("payee", "transfer transactions must not have a payee")
		}
		switch {
		case cmd.TransferAccountID == nil:
			ve.Add("transferAccountId", "transfer account ID must be set for transfer transactions")
		case *cmd.TransferAccountID == cmd.AccountID:
			ve.Add("transferAccountId", "account ID and transfer account ID must not be identical")
		default:
			transferAccount, err := q.GetAccount(ctx, *cmd.TransferAccountID)
			switch {
			case errors.Is(err, core.ErrNotFound):
				ve.Add("transferAccountId", "transfer account ID is invalid")
			case err != nil:
				return fmt.Errorf("validate transfer account %d: %w", *cmd.TransferAccountID, err)
			case accountKnown:
				if err := validateTransferCategory(ctx, q, account, transferAccount, cmd, &ve); err != nil {
					return err
				}
			}
		}
	}

	return ve.OrNil()
}

// validateExternalCategory: off-budget accounts never carry a category;
// on-budget accounts require one unless the transaction is income.
func validateExternalCategory(ctx context.Context, q *storage.Queries, account core.Account, cmd core.TransactionCommand, ve *core.ValidationErrors) error {
	if !account.OnBudget {
		if cmd.CategoryID != nil {
			ve.Add("categoryId", "category must not be set for off-budget transactions")
		}
		return nil
	}
	if cmd.IncomeType != core.IncomeNone {
		if cmd.CategoryID != nil {
			ve.Add("categoryId", "category must not be set for income transactions")
		}
		return nil
	}
	if cmd.CategoryID == nil {
		ve.Add("categoryId", "category must be set for non-income transactions")
		return nil
	}
	return requireCategory(ctx, q, *cmd.CategoryID, ve)
}

// validateTransferCategory: a transfer carries a category exactly when one
// endpoint is on budget and the other is not.
func validateTransferCategory(ctx context.Context, q *storage.Queries, account, transferAccount core.Account, cmd core.TransactionCommand, ve *core.ValidationErrors) error {
	if account.OnBudget == transferAccount.OnBudget {
		if cmd.CategoryID != nil {
			if account.OnBudget {
				ve.Add("categoryId", "category must not be set for transfers between on-budget accounts")
			} else {
				ve.Add("categoryId", "category must not be set for transfers between off-budget accounts")
			}
		}
		return nil
	}
	if cmd.CategoryID == nil {
		ve.Add("categoryId", "category must be set for transfers between on-budget and off-budget accounts")
		return nil
	}
	return requireCategory(ctx, q, *cmd.CategoryID, ve)
}

func requireCategory(ctx context.Context, q *storage.Queries, id int64, ve *core.ValidationErrors) error {
	exists, err := q.CategoryExists(ctx, id)
	if err != nil {
		return fmt.Errorf("validate category %d: %w", id, err)
	}
	if !exists {
		ve.Add("categoryId", "category ID is invalid")
	}
	return nil
}

// validateEntityName covers account and category names.
func validateEntityName(name string) error {
	var ve core.ValidationErrors
	if !core.ValidName(name) {
		ve.Add("name", "name must be set and at most %d characters", core.NameMaxLen)
	}
	return ve.OrNil()
}

// validateAllocationCommand checks the month bounds and the category
// reference of a budget allocation upsert.
func validateAllocationCommand(ctx context.Context, q *storage.Queries, cmd core.AllocationCommand) error {
	var ve core.ValidationErrors
	if cmd.Month < 1 || cmd.Month > 12 {
		ve.Add("month", "month must be between 1 and 12")
	}
	if cmd.Year < core.YearMin || cmd.Year > core.YearMax {
		ve.Add("year", "year must be between %d and %d", core.YearMin, core.YearMax)
	}
	exists, err := q.CategoryExists(ctx, cmd.CategoryID)
	if err != nil {
		return fmt.Errorf("validate category %d: %w", cmd.CategoryID, err)
	}
	if !exists {
		ve.Add("categoryId", "category ID is invalid")
	}
	return ve.OrNil()
}
