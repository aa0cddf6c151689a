package services

import (
	"context"
	"path/filepath"
	"testing"

	"budgetd/internal/core"
	"budgetd/internal/storage"
)

// newTestRepo opens a fresh migrated database in a temp directory. Services
// under test run without an AMQP client; event publishing is skipped.
func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func mustAccount(t *testing.T, repo *storage.Repository, name string, onBudget bool) core.Account {
	t.Helper()
	acc, err := repo.Queries().InsertAccount(context.Background(), name, onBudget)
	if err != nil {
		t.Fatalf("insert account %q: %v", name, err)
	}
	return acc
}

func mustCategory(t *testing.T, repo *storage.Repository, name string) core.Category {
	t.Helper()
	cat, err := repo.Queries().InsertCategory(context.Background(), name)
	if err != nil {
		t.Fatalf("insert category %q: %v", name, err)
	}
	return cat
}

func strPtr(s string) *string { return &s }

func idPtr(id int64) *int64 { return &id }
