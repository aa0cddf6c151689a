package services

import (
	"context"
	"errors"
	"testing"

	"budgetd/internal/core"
	"budgetd/internal/storage"
)

func mustExternal(t *testing.T, repo *storage.Repository, accountID int64, categoryID *int64, date core.Date, it core.IncomeType, cents int64) {
	t.Helper()
	payee := "payee"
	if _, err := repo.Queries().InsertTransaction(context.Background(), core.Transaction{
		Kind:       core.External,
		AccountID:  accountID,
		CategoryID: categoryID,
		Date:       date,
		Payee:      &payee,
		IncomeType: it,
		Amount:     core.Money{Cents: cents},
	}); err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
}

func TestGetMonthEnvelopeReport(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	budget := NewBudgetService(repo, nil)

	checking := mustAccount(t, repo, "Checking", true)
	groceries := mustCategory(t, repo, "Groceries")
	rent := mustCategory(t, repo, "Rent")
	mustCategory(t, repo, "Vacation")

	q := repo.Queries()
	// January: 50.00 allocated to groceries, 20.00 spent
	if err := q.UpsertAllocation(ctx, groceries.ID, core.FirstOfMonth(2026, 1), 5000); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	mustExternal(t, repo, checking.ID, &groceries.ID, core.NewDate(2026, 1, 12), core.IncomeNone, -2000)

	// February: 100.00 groceries, 500.00 rent, 40.00 grocery outflow
	if err := q.UpsertAllocation(ctx, groceries.ID, core.FirstOfMonth(2026, 2), 10000); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := q.UpsertAllocation(ctx, rent.ID, core.FirstOfMonth(2026, 2), 50000); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	mustExternal(t, repo, checking.ID, &groceries.ID, core.NewDate(2026, 2, 5), core.IncomeNone, -4000)

	// Income: December salary, a late-January payment deferred to February,
	// and the February salary itself
	mustExternal(t, repo, checking.ID, nil, core.NewDate(2025, 12, 10), core.IncomeCurrentMonth, 70000)
	mustExternal(t, repo, checking.ID, nil, core.NewDate(2026, 1, 28), core.IncomeNextMonth, 100000)
	mustExternal(t, repo, checking.ID, nil, core.NewDate(2026, 2, 1), core.IncomeCurrentMonth, 200000)

	report, err := budget.GetMonth(ctx, 2026, 2)
	if err != nil {
		t.Fatalf("get month: %v", err)
	}

	if report.Income.Cents != 300000 {
		t.Fatalf("expected income 300000, got %d", report.Income.Cents)
	}
	// 700.00 earned before February minus 50.00 already allocated
	if report.LeftoverBudget.Cents != 65000 {
		t.Fatalf("expected leftover 65000, got %d", report.LeftoverBudget.Cents)
	}
	// leftover + income - budgeted this month
	if report.ToBeBudgeted.Cents != 65000+300000-60000 {
		t.Fatalf("expected to-be-budgeted 305000, got %d", report.ToBeBudgeted.Cents)
	}

	if len(report.Items) != 3 {
		t.Fatalf("every category appears once, got %d items", len(report.Items))
	}
	byName := make(map[string]core.BudgetMonthItem)
	for _, item := range report.Items {
		byName[item.Category] = item
	}

	g := byName["Groceries"]
	if g.PreviousBalance.Cents != 3000 {
		t.Fatalf("groceries previous balance: expected 3000, got %d", g.PreviousBalance.Cents)
	}
	if g.CurrentBudget.Cents != 10000 || g.CurrentOutflow.Cents != -4000 {
		t.Fatalf("groceries month figures: %+v", g)
	}
	if g.RemainingBudget.Cents != 9000 {
		t.Fatalf("groceries remaining: expected 9000, got %d", g.RemainingBudget.Cents)
	}

	r := byName["Rent"]
	if r.PreviousBalance.Cents != 0 || r.CurrentBudget.Cents != 50000 || r.RemainingBudget.Cents != 50000 {
		t.Fatalf("rent figures: %+v", r)
	}

	v := byName["Vacation"]
	if v.PreviousBalance.Cents != 0 || v.CurrentBudget.Cents != 0 || v.CurrentOutflow.Cents != 0 || v.RemainingBudget.Cents != 0 {
		t.Fatalf("untouched category must report zeros: %+v", v)
	}
}

func TestGetMonthExcludesNextMonthIncomeOfRequestedMonth(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	budget := NewBudgetService(repo, nil)

	checking := mustAccount(t, repo, "Checking", true)
	mustExternal(t, repo, checking.ID, nil, core.NewDate(2026, 2, 27), core.IncomeNextMonth, 50000)

	feb, err := budget.GetMonth(ctx, 2026, 2)
	if err != nil {
		t.Fatalf("get february: %v", err)
	}
	if feb.Income.Cents != 0 {
		t.Fatalf("deferred income must not count in its own month, got %d", feb.Income.Cents)
	}

	mar, err := budget.GetMonth(ctx, 2026, 3)
	if err != nil {
		t.Fatalf("get march: %v", err)
	}
	if mar.Income.Cents != 50000 {
		t.Fatalf("deferred income should land in march, got %d", mar.Income.Cents)
	}
}

func TestGetMonthValidatesBounds(t *testing.T) {
	ctx := context.Background()
	budget := NewBudgetService(newTestRepo(t), nil)

	for _, tc := range []struct{ year, month int }{
		{2026, 0}, {2026, 13}, {1899, 5}, {2101, 5},
	} {
		_, err := budget.GetMonth(ctx, tc.year, tc.month)
		var ve core.ValidationErrors
		if !errors.As(err, &ve) {
			t.Fatalf("%d-%d expected validation errors, got %v", tc.year, tc.month, err)
		}
	}
}

func TestSetAllocation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	budget := NewBudgetService(repo, nil)

	cat := mustCategory(t, repo, "Groceries")

	alloc, err := budget.SetAllocation(ctx, core.AllocationCommand{
		Year: 2026, Month: 2, CategoryID: cat.ID, Amount: core.Money{Cents: 10000},
	})
	if err != nil {
		t.Fatalf("set allocation: %v", err)
	}
	if alloc.Month.String() != "2026-02-01" || alloc.Amount.Cents != 10000 {
		t.Fatalf("unexpected allocation %+v", alloc)
	}

	// Same pair again replaces the amount
	if _, err := budget.SetAllocation(ctx, core.AllocationCommand{
		Year: 2026, Month: 2, CategoryID: cat.ID, Amount: core.Money{Cents: 12000},
	}); err != nil {
		t.Fatalf("replace allocation: %v", err)
	}
	report, err := budget.GetMonth(ctx, 2026, 2)
	if err != nil {
		t.Fatalf("get month: %v", err)
	}
	if report.Items[0].CurrentBudget.Cents != 12000 {
		t.Fatalf("expected replaced amount, got %d", report.Items[0].CurrentBudget.Cents)
	}

	// Unknown category and out-of-range month are rejected
	var ve core.ValidationErrors
	_, err = budget.SetAllocation(ctx, core.AllocationCommand{
		Year: 2026, Month: 14, CategoryID: 999, Amount: core.Money{Cents: 100},
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	fields := ve.ByField()
	if _, ok := fields["month"]; !ok {
		t.Fatalf("expected month failure: %v", ve)
	}
	if _, ok := fields["categoryId"]; !ok {
		t.Fatalf("expected categoryId failure: %v", ve)
	}
}
