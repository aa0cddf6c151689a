package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetd/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestAccountCRUD(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	acc, err := q.InsertAccount(ctx, "Checking", true)
	if err != nil {
		t.Fatalf("insert account: %v", err)
	}
	if acc.ID == 0 || acc.Name != "Checking" || !acc.OnBudget {
		t.Fatalf("unexpected account %+v", acc)
	}

	got, err := q.GetAccount(ctx, acc.ID)
	if err != nil || got != acc {
		t.Fatalf("get account: %+v, %v", got, err)
	}

	if err := q.UpdateAccountName(ctx, acc.ID, "Main"); err != nil {
		t.Fatalf("rename account: %v", err)
	}
	got, _ = q.GetAccount(ctx, acc.ID)
	if got.Name != "Main" {
		t.Fatalf("rename not persisted: %+v", got)
	}

	// Balance is the sum over the account's transactions
	for _, cents := range []int64{10000, -4000} {
		_, err := q.InsertTransaction(ctx, core.Transaction{
			Kind:       core.External,
			AccountID:  acc.ID,
			Date:       core.NewDate(2026, 1, 10),
			Payee:      strPtr("x"),
			IncomeType: core.IncomeCurrentMonth,
			Amount:     core.Money{Cents: cents},
		})
		if err != nil {
			t.Fatalf("insert transaction: %v", err)
		}
	}
	ab, err := q.GetAccountBalance(ctx, acc.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if ab.Balance.Cents != 6000 {
		t.Fatalf("expected balance 6000, got %d", ab.Balance.Cents)
	}

	if err := q.DeleteAccount(ctx, acc.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := q.GetAccount(ctx, acc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Account deletion cascades its transactions
	txns, err := q.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected cascaded transactions, found %d", len(txns))
	}

	if err := q.DeleteAccount(ctx, acc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("double delete expected ErrNotFound, got %v", err)
	}
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	cat, err := q.InsertCategory(ctx, "Groceries")
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	exists, err := q.CategoryExists(ctx, cat.ID)
	if err != nil || !exists {
		t.Fatalf("category exists: %v, %v", exists, err)
	}

	if err := q.UpdateCategoryName(ctx, cat.ID, "Food"); err != nil {
		t.Fatalf("rename category: %v", err)
	}
	got, err := q.GetCategory(ctx, cat.ID)
	if err != nil || got.Name != "Food" {
		t.Fatalf("get category: %+v, %v", got, err)
	}

	if err := q.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := q.GetCategory(ctx, cat.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransferPairCascade(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	from, _ := q.InsertAccount(ctx, "Checking", true)
	to, _ := q.InsertAccount(ctx, "Savings", true)

	insertPair := func() (int64, int64) {
		t.Helper()
		sourceID, err := q.InsertTransaction(ctx, core.Transaction{
			Kind:              core.Internal,
			AccountID:         from.ID,
			TransferAccountID: &to.ID,
			Date:              core.NewDate(2026, 1, 15),
			IncomeType:        core.IncomeNone,
			Amount:            core.Money{Cents: -5000},
		})
		if err != nil {
			t.Fatalf("insert source leg: %v", err)
		}
		mirrorID, err := q.InsertTransaction(ctx, core.Transaction{
			Kind:                  core.Internal,
			AccountID:             to.ID,
			TransferAccountID:     &from.ID,
			TransferTransactionID: &sourceID,
			Date:                  core.NewDate(2026, 1, 15),
			IncomeType:            core.IncomeNone,
			Amount:                core.Money{Cents: 5000},
		})
		if err != nil {
			t.Fatalf("insert mirror leg: %v", err)
		}
		if err := q.SetTransferTransactionID(ctx, sourceID, &mirrorID); err != nil {
			t.Fatalf("link pair: %v", err)
		}
		return sourceID, mirrorID
	}

	// Deleting the source leg cascades the mirror
	sourceID, mirrorID := insertPair()
	if err := q.DeleteTransaction(ctx, sourceID); err != nil {
		t.Fatalf("delete source: %v", err)
	}
	if _, err := q.GetTransaction(ctx, mirrorID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("mirror should cascade, got %v", err)
	}

	// And the other way round
	sourceID, mirrorID = insertPair()
	if err := q.DeleteTransaction(ctx, mirrorID); err != nil {
		t.Fatalf("delete mirror: %v", err)
	}
	if _, err := q.GetTransaction(ctx, sourceID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("source should cascade, got %v", err)
	}
}

func TestListTransactionsOrder(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	acc, _ := q.InsertAccount(ctx, "Checking", true)
	dates := []core.Date{
		core.NewDate(2026, 1, 10),
		core.NewDate(2026, 1, 20),
		core.NewDate(2026, 1, 10),
	}
	for _, d := range dates {
		if _, err := q.InsertTransaction(ctx, core.Transaction{
			Kind:       core.External,
			AccountID:  acc.ID,
			Date:       d,
			Payee:      strPtr("x"),
			IncomeType: core.IncomeNone,
			Amount:     core.Money{Cents: -100},
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	txns, err := q.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txns))
	}
	// Newest date first; same-date rows in insertion order
	if txns[0].Date.String() != "2026-01-20" {
		t.Fatalf("expected newest first, got %s", txns[0].Date)
	}
	if txns[1].ID > txns[2].ID {
		t.Fatalf("same-date rows out of insertion order: %d, %d", txns[1].ID, txns[2].ID)
	}
}

func TestAllocationUpsert(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	cat, _ := q.InsertCategory(ctx, "Groceries")
	month := core.FirstOfMonth(2026, 3)

	if err := q.UpsertAllocation(ctx, cat.ID, month, 10000); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := q.UpsertAllocation(ctx, cat.ID, month, 12000); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := q.AllocationsForMonth(ctx, month)
	if err != nil {
		t.Fatalf("allocations for month: %v", err)
	}
	if got[cat.ID] != 12000 {
		t.Fatalf("expected replaced amount 12000, got %d", got[cat.ID])
	}

	// Earlier months count toward the prior sums
	if err := q.UpsertAllocation(ctx, cat.ID, month.AddMonths(-1), 5000); err != nil {
		t.Fatalf("prior upsert: %v", err)
	}
	before, err := q.AllocationsBefore(ctx, month)
	if err != nil {
		t.Fatalf("allocations before: %v", err)
	}
	if before[cat.ID] != 5000 {
		t.Fatalf("expected prior 5000, got %d", before[cat.ID])
	}
	total, err := q.SumAllocationsBefore(ctx, month)
	if err != nil || total != 5000 {
		t.Fatalf("sum before: %d, %v", total, err)
	}
}

func TestOutflowSumsSkipOffBudgetAccounts(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	onBudget, _ := q.InsertAccount(ctx, "Checking", true)
	offBudget, _ := q.InsertAccount(ctx, "Brokerage", false)
	cat, _ := q.InsertCategory(ctx, "Groceries")

	insert := func(accountID int64, date core.Date, cents int64) {
		t.Helper()
		if _, err := q.InsertTransaction(ctx, core.Transaction{
			Kind:       core.External,
			AccountID:  accountID,
			CategoryID: &cat.ID,
			Date:       date,
			Payee:      strPtr("shop"),
			IncomeType: core.IncomeNone,
			Amount:     core.Money{Cents: cents},
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	insert(onBudget.ID, core.NewDate(2026, 2, 5), -4000)
	insert(onBudget.ID, core.NewDate(2026, 1, 5), -1000)
	insert(offBudget.ID, core.NewDate(2026, 2, 5), -9999)

	start := core.FirstOfMonth(2026, 2)
	inRange, err := q.OutflowsInRange(ctx, start, start.AddMonths(1))
	if err != nil {
		t.Fatalf("outflows in range: %v", err)
	}
	if inRange[cat.ID] != -4000 {
		t.Fatalf("expected -4000, got %d", inRange[cat.ID])
	}
	before, err := q.OutflowsBefore(ctx, start)
	if err != nil {
		t.Fatalf("outflows before: %v", err)
	}
	if before[cat.ID] != -1000 {
		t.Fatalf("expected -1000, got %d", before[cat.ID])
	}
}

func TestIncomeSums(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	acc, _ := q.InsertAccount(ctx, "Checking", true)
	insert := func(date core.Date, it core.IncomeType, cents int64) {
		t.Helper()
		if _, err := q.InsertTransaction(ctx, core.Transaction{
			Kind:       core.External,
			AccountID:  acc.ID,
			Date:       date,
			Payee:      strPtr("employer"),
			IncomeType: it,
			Amount:     core.Money{Cents: cents},
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	// Salary for February plus a late-January payment deferred to February
	insert(core.NewDate(2026, 2, 1), core.IncomeCurrentMonth, 200000)
	insert(core.NewDate(2026, 1, 28), core.IncomeNextMonth, 100000)
	// February next-month income belongs to March, not February
	insert(core.NewDate(2026, 2, 27), core.IncomeNextMonth, 50000)
	// Old income counts toward the prior pool
	insert(core.NewDate(2025, 12, 10), core.IncomeCurrentMonth, 70000)

	start := core.FirstOfMonth(2026, 2)
	prev := start.AddMonths(-1)
	end := start.AddMonths(1)

	income, err := q.SumIncomeForMonth(ctx, prev, start, end)
	if err != nil {
		t.Fatalf("sum income for month: %v", err)
	}
	if income != 300000 {
		t.Fatalf("expected 300000, got %d", income)
	}

	before, err := q.SumIncomeBefore(ctx, prev, start)
	if err != nil {
		t.Fatalf("sum income before: %v", err)
	}
	if before != 70000 {
		t.Fatalf("expected 70000, got %d", before)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.InTx(ctx, func(q *Queries) error {
		if _, err := q.InsertAccount(ctx, "Checking", true); err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error from InTx")
	}

	accounts, err := repo.Queries().ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected rollback, found %d accounts", len(accounts))
	}
}

func strPtr(s string) *string { return &s }
