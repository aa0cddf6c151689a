package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetd/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same query set runs
// standalone or inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns the query set bound to an open transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ---- accounts ----

func (q *Queries) InsertAccount(ctx context.Context, name string, onBudget bool) (core.Account, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (name, on_budget) VALUES (?, ?)`,
		name, boolToInt(onBudget))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	return core.Account{ID: id, Name: name, OnBudget: onBudget}, nil
}

func (q *Queries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var (
		a        core.Account
		onBudget int64
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, on_budget FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &onBudget)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	a.OnBudget = onBudget != 0
	return a, nil
}

func (q *Queries) GetAccountBalance(ctx context.Context, id int64) (core.AccountBalance, error) {
	var (
		ab       core.AccountBalance
		onBudget int64
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT a.id, a.name, a.on_budget, COALESCE(SUM(t.amount_cents), 0)
		 FROM accounts a
		 LEFT JOIN transactions t ON t.account_id = a.id
		 WHERE a.id = ?
		 GROUP BY a.id, a.name, a.on_budget`, id).
		Scan(&ab.ID, &ab.Name, &onBudget, &ab.Balance.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AccountBalance{}, core.ErrNotFound
	}
	if err != nil {
		return core.AccountBalance{}, fmt.Errorf("get account balance %d: %w", id, err)
	}
	ab.OnBudget = onBudget != 0
	return ab, nil
}

func (q *Queries) ListAccounts(ctx context.Context) ([]core.AccountBalance, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.on_budget, COALESCE(SUM(t.amount_cents), 0)
		 FROM accounts a
		 LEFT JOIN transactions t ON t.account_id = a.id
		 GROUP BY a.id, a.name, a.on_budget
		 ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.AccountBalance
	for rows.Next() {
		var (
			ab       core.AccountBalance
			onBudget int64
		)
		if err := rows.Scan(&ab.ID, &ab.Name, &onBudget, &ab.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		ab.OnBudget = onBudget != 0
		accounts = append(accounts, ab)
	}
	return accounts, rows.Err()
}

func (q *Queries) UpdateAccountName(ctx context.Context, id int64, name string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update account %d: %w", id, err)
	}
	return requireRow(res)
}

func (q *Queries) DeleteAccount(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	return requireRow(res)
}

// AccountOnBudget returns the on-budget flag; core.ErrNotFound if the
// account does not exist.
func (q *Queries) AccountOnBudget(ctx context.Context, id int64) (bool, error) {
	var onBudget int64
	err := q.db.QueryRowContext(ctx,
		`SELECT on_budget FROM accounts WHERE id = ?`, id).Scan(&onBudget)
	if errors.Is(err, sql.ErrNoRows) {
		return false, core.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("account on-budget %d: %w", id, err)
	}
	return onBudget != 0, nil
}

func (q *Queries) AccountExists(ctx context.Context, id int64) (bool, error) {
	var one int64
	err := q.db.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("account exists %d: %w", id, err)
	}
	return true, nil
}

// ---- categories ----

func (q *Queries) InsertCategory(ctx context.Context, name string) (core.Category, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) UpdateCategoryName(ctx context.Context, id int64, name string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update category %d: %w", id, err)
	}
	return requireRow(res)
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return requireRow(res)
}

func (q *Queries) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var one int64
	err := q.db.QueryRowContext(ctx,
		`SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("category exists %d: %w", id, err)
	}
	return true, nil
}

// ---- transactions ----

const transactionColumns = `id, kind, is_cleared, account_id, transfer_account_id,
	transfer_transaction_id, category_id, date, payee, income_type, amount_cents`

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (kind, is_cleared, account_id, transfer_account_id, transfer_transaction_id,
		  category_id, date, payee, income_type, amount_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.Kind), boolToInt(t.Cleared), t.AccountID,
		nullID(t.TransferAccountID), nullID(t.TransferTransactionID),
		nullID(t.CategoryID), t.Date.String(), nullStr(t.Payee),
		string(t.IncomeType), t.Amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}
	return id, nil
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (q *Queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// UpdateTransaction rewrites every mutable column of the row identified by
// t.ID.
func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET
		 kind = ?, is_cleared = ?, account_id = ?, transfer_account_id = ?,
		 transfer_transaction_id = ?, category_id = ?, date = ?, payee = ?,
		 income_type = ?, amount_cents = ?
		 WHERE id = ?`,
		string(t.Kind), boolToInt(t.Cleared), t.AccountID,
		nullID(t.TransferAccountID), nullID(t.TransferTransactionID),
		nullID(t.CategoryID), t.Date.String(), nullStr(t.Payee),
		string(t.IncomeType), t.Amount.Cents, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return requireRow(res)
}

func (q *Queries) SetTransferTransactionID(ctx context.Context, id int64, ref *int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET transfer_transaction_id = ? WHERE id = ?`,
		nullID(ref), id)
	if err != nil {
		return fmt.Errorf("set transfer transaction id on %d: %w", id, err)
	}
	return requireRow(res)
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return requireRow(res)
}

// ---- budget allocations ----

func (q *Queries) UpsertAllocation(ctx context.Context, categoryID int64, month core.Date, cents int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budget_allocations (category_id, month, amount_cents)
		 VALUES (?, ?, ?)
		 ON CONFLICT (category_id, month) DO UPDATE SET amount_cents = excluded.amount_cents`,
		categoryID, month.String(), cents)
	if err != nil {
		return fmt.Errorf("upsert allocation (category=%d, month=%s): %w", categoryID, month, err)
	}
	return nil
}

// AllocationsForMonth returns amount per category allocated for exactly the
// given month.
func (q *Queries) AllocationsForMonth(ctx context.Context, month core.Date) (map[int64]int64, error) {
	return q.centsByCategory(ctx,
		`SELECT category_id, amount_cents FROM budget_allocations WHERE month = ?`,
		month.String())
}

// AllocationsBefore returns, per category, the sum of all allocations for
// months strictly before the given month.
func (q *Queries) AllocationsBefore(ctx context.Context, month core.Date) (map[int64]int64, error) {
	return q.centsByCategory(ctx,
		`SELECT category_id, SUM(amount_cents) FROM budget_allocations
		 WHERE month < ? GROUP BY category_id`,
		month.String())
}

func (q *Queries) SumAllocationsBefore(ctx context.Context, month core.Date) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM budget_allocations WHERE month < ?`,
		month.String()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum allocations before %s: %w", month, err)
	}
	return total, nil
}

// ---- aggregation over transactions ----

// OutflowsInRange returns, per category, the sum of transaction amounts in
// on-budget accounts dated within [start, end).
func (q *Queries) OutflowsInRange(ctx context.Context, start, end core.Date) (map[int64]int64, error) {
	return q.centsByCategory(ctx,
		`SELECT t.category_id, SUM(t.amount_cents)
		 FROM transactions t
		 JOIN accounts a ON a.id = t.account_id AND a.on_budget = 1
		 WHERE t.category_id IS NOT NULL AND t.date >= ? AND t.date < ?
		 GROUP BY t.category_id`,
		start.String(), end.String())
}

// OutflowsBefore returns, per category, the sum of transaction amounts in
// on-budget accounts dated strictly before end.
func (q *Queries) OutflowsBefore(ctx context.Context, end core.Date) (map[int64]int64, error) {
	return q.centsByCategory(ctx,
		`SELECT t.category_id, SUM(t.amount_cents)
		 FROM transactions t
		 JOIN accounts a ON a.id = t.account_id AND a.on_budget = 1
		 WHERE t.category_id IS NOT NULL AND t.date < ?
		 GROUP BY t.category_id`,
		end.String())
}

// SumIncomeForMonth totals the income pool for the month starting at start:
// current-month income dated within [start, end) plus next-month income
// dated within the previous calendar month [prev, start).
func (q *Queries) SumIncomeForMonth(ctx context.Context, prev, start, end core.Date) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE (income_type = 'current_month' AND date >= ? AND date < ?)
		    OR (income_type = 'next_month' AND date >= ? AND date < ?)`,
		start.String(), end.String(), prev.String(), start.String()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum income for month %s: %w", start, err)
	}
	return total, nil
}

// SumIncomeBefore totals all income earmarked for months before start:
// current-month income dated before start plus next-month income dated
// before start minus one month.
func (q *Queries) SumIncomeBefore(ctx context.Context, prev, start core.Date) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE (income_type = 'current_month' AND date < ?)
		    OR (income_type = 'next_month' AND date < ?)`,
		start.String(), prev.String()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum income before %s: %w", start, err)
	}
	return total, nil
}

func (q *Queries) centsByCategory(ctx context.Context, query string, args ...any) (map[int64]int64, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cents by category: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var categoryID, cents int64
		if err := rows.Scan(&categoryID, &cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		out[categoryID] = cents
	}
	return out, rows.Err()
}

// ---- scan helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t             core.Transaction
		kind, income  string
		cleared       int64
		transferAcct  sql.NullInt64
		transferTxn   sql.NullInt64
		categoryID    sql.NullInt64
		dateStr       string
		payee         sql.NullString
	)
	err := row.Scan(&t.ID, &kind, &cleared, &t.AccountID, &transferAcct,
		&transferTxn, &categoryID, &dateStr, &payee, &income, &t.Amount.Cents)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.TransactionKind(kind)
	t.IncomeType = core.IncomeType(income)
	t.Cleared = cleared != 0
	t.TransferAccountID = fromNullInt(transferAcct)
	t.TransferTransactionID = fromNullInt(transferTxn)
	t.CategoryID = fromNullInt(categoryID)
	if payee.Valid {
		t.Payee = &payee.String
	}
	t.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	return t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullID(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
