package http

import "budgetd/internal/core"

// Response payloads. Domain types stay JSON-agnostic; the API shapes
// live here.
type (
	accountResponse struct {
		ID       int64      `json:"id"`
		Name     string     `json:"name"`
		OnBudget bool       `json:"onBudget"`
		Balance  core.Money `json:"balance"`
	}

	categoryResponse struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	transactionResponse struct {
		ID                    int64                `json:"id"`
		Kind                  core.TransactionKind `json:"kind"`
		Cleared               bool                 `json:"cleared"`
		AccountID             int64                `json:"accountId"`
		TransferAccountID     *int64               `json:"transferAccountId,omitempty"`
		TransferTransactionID *int64               `json:"transferTransactionId,omitempty"`
		CategoryID            *int64               `json:"categoryId,omitempty"`
		Date                  core.Date            `json:"date"`
		Payee                 *string              `json:"payee,omitempty"`
		IncomeType            core.IncomeType      `json:"incomeType"`
		Amount                core.Money           `json:"amount"`
	}

	allocationResponse struct {
		CategoryID int64      `json:"categoryId"`
		Month      core.Date  `json:"month"`
		Amount     core.Money `json:"amount"`
	}

	budgetItemResponse struct {
		CategoryID      int64      `json:"categoryId"`
		Category        string     `json:"category"`
		PreviousBalance core.Money `json:"previousBalance"`
		CurrentBudget   core.Money `json:"currentBudget"`
		CurrentOutflow  core.Money `json:"currentOutflow"`
		RemainingBudget core.Money `json:"remainingBudget"`
	}

	budgetMonthResponse struct {
		Income         core.Money           `json:"income"`
		LeftoverBudget core.Money           `json:"leftoverBudget"`
		ToBeBudgeted   core.Money           `json:"toBeBudgeted"`
		Items          []budgetItemResponse `json:"items"`
	}
)

func toAccountResponse(a core.AccountBalance) accountResponse {
	return accountResponse{
		ID:       a.ID,
		Name:     a.Name,
		OnBudget: a.OnBudget,
		Balance:  a.Balance,
	}
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                    t.ID,
		Kind:                  t.Kind,
		Cleared:               t.Cleared,
		AccountID:             t.AccountID,
		TransferAccountID:     t.TransferAccountID,
		TransferTransactionID: t.TransferTransactionID,
		CategoryID:            t.CategoryID,
		Date:                  t.Date,
		Payee:                 t.Payee,
		IncomeType:            t.IncomeType,
		Amount:                t.Amount,
	}
}

func toAllocationResponse(a core.BudgetAllocation) allocationResponse {
	return allocationResponse{
		CategoryID: a.CategoryID,
		Month:      a.Month,
		Amount:     a.Amount,
	}
}

func toBudgetMonthResponse(m core.BudgetMonth) budgetMonthResponse {
	items := make([]budgetItemResponse, len(m.Items))
	for i, it := range m.Items {
		items[i] = budgetItemResponse{
			CategoryID:      it.CategoryID,
			Category:        it.Category,
			PreviousBalance: it.PreviousBalance,
			CurrentBudget:   it.CurrentBudget,
			CurrentOutflow:  it.CurrentOutflow,
			RemainingBudget: it.RemainingBudget,
		}
	}
	return budgetMonthResponse{
		Income:         m.Income,
		LeftoverBudget: m.LeftoverBudget,
		ToBeBudgeted:   m.ToBeBudgeted,
		Items:          items,
	}
}
