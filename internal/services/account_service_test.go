package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"budgetd/internal/core"
)

func TestAccountCreateWithOpeningBalance(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewAccountService(repo, nil)

	acc, err := svc.Create(ctx, core.AccountCommand{
		Name:     "Checking",
		OnBudget: true,
		Balance:  core.Money{Cents: 150000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, acc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Balance.Cents != 150000 {
		t.Fatalf("expected opening balance 150000, got %d", got.Balance.Cents)
	}

	txns, err := repo.Queries().ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected one opening transaction, got %d", len(txns))
	}
	opening := txns[0]
	if opening.Payee == nil || *opening.Payee != "Initial balance" {
		t.Fatalf("unexpected opening payee %+v", opening.Payee)
	}
	if opening.IncomeType != core.IncomeCurrentMonth || !opening.Cleared {
		t.Fatalf("unexpected opening transaction %+v", opening)
	}
}

func TestAccountRenameKeepsOnBudgetFlag(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewAccountService(repo, nil)

	acc, err := svc.Create(ctx, core.AccountCommand{Name: "Checking", OnBudget: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Rename(ctx, acc.ID, "Main"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, _ := svc.Get(ctx, acc.ID)
	if got.Name != "Main" || !got.OnBudget {
		t.Fatalf("rename must only change the name: %+v", got)
	}

	if err := svc.Rename(ctx, acc.ID, strings.Repeat("x", core.NameMaxLen+1)); err == nil {
		t.Fatal("overlong name must be rejected")
	}
	if err := svc.Rename(ctx, 999, "Nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountDeleteCascadesTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewAccountService(repo, nil)

	acc, err := svc.Create(ctx, core.AccountCommand{Name: "Checking", OnBudget: true, Balance: core.Money{Cents: 1000}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, acc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, acc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	txns, err := repo.Queries().ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected cascaded opening transaction, found %d", len(txns))
	}
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewCategoryService(repo, nil)

	cat, err := svc.Create(ctx, "Groceries")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, ""); err == nil {
		t.Fatal("blank name must be rejected")
	}

	if err := svc.Rename(ctx, cat.ID, "Food"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := svc.Get(ctx, cat.ID)
	if err != nil || got.Name != "Food" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	if err := svc.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, cat.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
