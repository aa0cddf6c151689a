package core

// Year and month bounds accepted by budget report and allocation commands.
const (
	YearMin = 1900
	YearMax = 2100
)

type (
	// TransactionCommand carries the caller-supplied fields for creating or
	// updating a transaction. The same shape serves both operations; on
	// update the requested Kind drives the pairing state machine.
	TransactionCommand struct {
		Kind              TransactionKind `json:"kind"`
		AccountID         int64           `json:"accountId"`
		TransferAccountID *int64          `json:"transferAccountId,omitempty"`
		CategoryID        *int64          `json:"categoryId,omitempty"`
		Date              Date            `json:"date"`
		Payee             *string         `json:"payee,omitempty"`
		IncomeType        IncomeType      `json:"incomeType"`
		Amount            Money           `json:"amount"`
		Cleared           bool            `json:"cleared"`
	}

	// AccountCommand creates an account. Balance becomes an opening
	// "Initial balance" transaction; OnBudget is immutable afterwards.
	AccountCommand struct {
		Name     string `json:"name"`
		OnBudget bool   `json:"onBudget"`
		Balance  Money  `json:"balance"`
	}

	// AllocationCommand upserts the budget allocation for one category and
	// month.
	AllocationCommand struct {
		Year       int   `json:"year"`
		Month      int   `json:"month"`
		CategoryID int64 `json:"categoryId"`
		Amount     Money `json:"amount"`
	}
)
