package core

import (
	"strings"
)

const (
	External TransactionKind = "external"
	Internal TransactionKind = "internal"
)

const (
	IncomeNone         IncomeType = "none"
	IncomeCurrentMonth IncomeType = "current_month"
	IncomeNextMonth    IncomeType = "next_month"
)

// NameMaxLen caps account names, category names and payees.
const NameMaxLen = 200

type (
	// TransactionKind distinguishes ordinary single-leg entries (External)
	// from two-leg transfers between accounts (Internal).
	TransactionKind string

	// IncomeType marks a transaction as income for the budget month it is
	// dated in (current_month) or for the following month (next_month).
	IncomeType string

	Account struct {
		ID       int64
		Name     string
		OnBudget bool
	}

	// AccountBalance is an Account with its derived balance: the sum of
	// amounts of all transactions carrying the account as primary leg.
	AccountBalance struct {
		Account
		Balance Money
	}

	Category struct {
		ID   int64
		Name string
	}

	// Transaction is one ledger row. An Internal transaction always has a
	// mirror row: TransferTransactionID points at it, the mirror points
	// back, accounts are swapped and the amount is negated.
	Transaction struct {
		ID                    int64
		Kind                  TransactionKind
		Cleared               bool
		AccountID             int64
		TransferAccountID     *int64
		TransferTransactionID *int64
		CategoryID            *int64
		Date                  Date
		Payee                 *string
		IncomeType            IncomeType
		Amount                Money
	}

	// BudgetAllocation assigns an amount to a category envelope for one
	// month. Month is always a first-of-month date.
	BudgetAllocation struct {
		CategoryID int64
		Month      Date
		Amount     Money
	}

	// BudgetMonthItem is the per-category rollup for a requested month.
	BudgetMonthItem struct {
		CategoryID      int64
		Category        string
		PreviousBalance Money
		CurrentBudget   Money
		CurrentOutflow  Money
		RemainingBudget Money
	}

	// BudgetMonth is the envelope report for a requested month. Every
	// category in the system appears exactly once in Items.
	BudgetMonth struct {
		Income         Money
		LeftoverBudget Money
		ToBeBudgeted   Money
		Items          []BudgetMonthItem
	}
)

func (k TransactionKind) Valid() bool {
	return k == External || k == Internal
}

func (it IncomeType) Valid() bool {
	return it == IncomeNone || it == IncomeCurrentMonth || it == IncomeNextMonth
}

// ValidName reports whether s is usable as an account, category or payee
// name: non-blank after trimming and at most NameMaxLen characters.
func ValidName(s string) bool {
	return strings.TrimSpace(s) != "" && len(s) <= NameMaxLen
}
