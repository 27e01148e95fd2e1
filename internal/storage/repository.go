// Package storage is the SQL-backed store. The same queries run against
// SQLite (modernc) for single-node installs and against Postgres (pgx) for
// the hosted deployment; only placeholders and error codes differ.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dompet/internal/core"
	"dompet/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

type Repository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ store.Store = (*Repository)(nil)

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(SQLite, dbPath)
}

func NewPostgresRepository(dsn string) (*Repository, error) {
	return open(Postgres, dsn)
}

func open(dialect Dialect, dsn string) (*Repository, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if dialect == SQLite {
		// One writer at a time avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}

	return &Repository{db: db, dialect: dialect, now: time.Now}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the pool for readiness checks.
func (r *Repository) DB() *sql.DB { return r.db }

// rebind rewrites ? placeholders to $n for Postgres.
func (r *Repository) rebind(q string) string {
	if r.dialect != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (r *Repository) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return r.db.ExecContext(ctx, r.rebind(q), args...)
}

func (r *Repository) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.rebind(q), args...)
}

func (r *Repository) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, r.rebind(q), args...)
}

// isUniqueViolation recognizes unique-constraint failures from either driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

func storageErr(op, entity string, err error) error {
	return &core.StorageError{Op: op, Entity: entity, Err: err}
}

// expectOne turns "no rows affected" into ErrNotFound.
func expectOne(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("rows affected", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, core.ErrNotFound)
	}
	return nil
}

const transactionColumns = `t.id, t.user_id, t.type, t.amount, t.date, t.category_id,
	COALESCE((SELECT c.name FROM categories c
		WHERE c.id = t.category_id AND c.user_id IN (t.user_id, '')
		ORDER BY c.user_id DESC LIMIT 1), ''),
	t.wallet_id, COALESCE(w.name, ''), t.note`

const transactionFrom = `FROM transactions t
	LEFT JOIN wallets w ON w.id = t.wallet_id AND w.user_id = t.user_id`

func scanTransaction(sc interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var typ string
	err := sc.Scan(&t.ID, &t.UserID, &typ, &t.Amount, &t.Date, &t.CategoryID,
		&t.CategoryName, &t.WalletID, &t.WalletName, &t.Note)
	t.Type = core.TransactionType(typ)
	return t, err
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.query(ctx, `SELECT `+transactionColumns+` `+transactionFrom+`
		WHERE t.user_id = ?
		ORDER BY t.date DESC, t.created_at DESC`, userID)
	if err != nil {
		return nil, storageErr("list", core.EntityTransaction, err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr("scan", core.EntityTransaction, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", core.EntityTransaction, err)
	}
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.queryRow(ctx, `SELECT `+transactionColumns+` `+transactionFrom+`
		WHERE t.user_id = ? AND t.id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, storageErr("get", core.EntityTransaction, err)
	}
	return t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, `INSERT INTO transactions
		(id, user_id, type, amount, date, category_id, wallet_id, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Amount, t.Date, t.CategoryID, t.WalletID, t.Note, r.now().UTC())
	if err != nil {
		return core.Transaction{}, storageErr("create", core.EntityTransaction, err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"date", t.Date.String(),
		"dialect", r.dialect)

	return r.GetTransaction(ctx, t.UserID, t.ID)
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	res, err := r.exec(ctx, `UPDATE transactions
		SET type = ?, amount = ?, date = ?, category_id = ?, wallet_id = ?, note = ?
		WHERE user_id = ? AND id = ?`,
		string(t.Type), t.Amount, t.Date, t.CategoryID, t.WalletID, t.Note, t.UserID, t.ID)
	if err != nil {
		return core.Transaction{}, storageErr("update", core.EntityTransaction, err)
	}
	if err := expectOne(res, core.EntityTransaction, t.ID); err != nil {
		return core.Transaction{}, err
	}
	return r.GetTransaction(ctx, t.UserID, t.ID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.exec(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return storageErr("delete", core.EntityTransaction, err)
	}
	return expectOne(res, core.EntityTransaction, id)
}

func (r *Repository) ListWallets(ctx context.Context, userID string) ([]core.Wallet, error) {
	rows, err := r.query(ctx, `SELECT id, user_id, name, icon, initial_balance
		FROM wallets WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, storageErr("list", core.EntityWallet, err)
	}
	defer rows.Close()

	out := make([]core.Wallet, 0)
	for rows.Next() {
		var w core.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Icon, &w.InitialBalance); err != nil {
			return nil, storageErr("scan", core.EntityWallet, err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", core.EntityWallet, err)
	}
	return out, nil
}

func (r *Repository) CreateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, `INSERT INTO wallets (id, user_id, name, icon, initial_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, w.ID, w.UserID, w.Name, w.Icon, w.InitialBalance, r.now().UTC())
	if err != nil {
		return core.Wallet{}, storageErr("create", core.EntityWallet, err)
	}
	return w, nil
}

func (r *Repository) DeleteWallet(ctx context.Context, userID, id string) error {
	res, err := r.exec(ctx, `DELETE FROM wallets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return storageErr("delete", core.EntityWallet, err)
	}
	return expectOne(res, core.EntityWallet, id)
}

func (r *Repository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.query(ctx, `SELECT id, user_id, name, type, icon
		FROM categories WHERE user_id IN (?, '') ORDER BY name, id`, userID)
	if err != nil {
		return nil, storageErr("list", core.EntityCategory, err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &typ, &c.Icon); err != nil {
			return nil, storageErr("scan", core.EntityCategory, err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", core.EntityCategory, err)
	}
	return out, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, `INSERT INTO categories (id, user_id, name, type, icon) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, string(c.Type), c.Icon)
	if err != nil {
		return core.Category{}, storageErr("create", core.EntityCategory, err)
	}
	return c, nil
}

const budgetSelect = `SELECT b.id, b.user_id, b.category_id,
	COALESCE((SELECT c.name FROM categories c
		WHERE c.id = b.category_id AND c.user_id IN (b.user_id, '')
		ORDER BY c.user_id DESC LIMIT 1), ''),
	b.limit_amount, b.cycle_start
	FROM budgets b`

func scanBudget(sc interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	err := sc.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.Limit, &b.CycleStart)
	return b, err
}

func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.query(ctx, budgetSelect+` WHERE b.user_id = ? ORDER BY b.created_at, b.id`, userID)
	if err != nil {
		return nil, storageErr("list", core.EntityBudget, err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, storageErr("scan", core.EntityBudget, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", core.EntityBudget, err)
	}
	return out, nil
}

func (r *Repository) getBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	b, err := scanBudget(r.queryRow(ctx, budgetSelect+` WHERE b.user_id = ? AND b.id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, storageErr("get", core.EntityBudget, err)
	}
	return b, nil
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := r.now().UTC()
	_, err := r.exec(ctx, `INSERT INTO budgets (id, user_id, category_id, limit_amount, cycle_start, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, b.ID, b.UserID, b.CategoryID, b.Limit, b.CycleStart, now, now)
	if isUniqueViolation(err) {
		return core.Budget{}, core.ErrDuplicateBudget
	}
	if err != nil {
		return core.Budget{}, storageErr("create", core.EntityBudget, err)
	}
	return r.getBudget(ctx, b.UserID, b.ID)
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	res, err := r.exec(ctx, `UPDATE budgets SET category_id = ?, limit_amount = ?, cycle_start = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`, b.CategoryID, b.Limit, b.CycleStart, r.now().UTC(), b.UserID, b.ID)
	if isUniqueViolation(err) {
		return core.Budget{}, core.ErrDuplicateBudget
	}
	if err != nil {
		return core.Budget{}, storageErr("update", core.EntityBudget, err)
	}
	if err := expectOne(res, core.EntityBudget, b.ID); err != nil {
		return core.Budget{}, err
	}
	return r.getBudget(ctx, b.UserID, b.ID)
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.exec(ctx, `DELETE FROM budgets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return storageErr("delete", core.EntityBudget, err)
	}
	return expectOne(res, core.EntityBudget, id)
}

func (r *Repository) ResetBudgetCycles(ctx context.Context, userID string, today core.Date) error {
	res, err := r.exec(ctx, `UPDATE budgets SET cycle_start = ?, updated_at = ? WHERE user_id = ?`,
		today, r.now().UTC(), userID)
	if err != nil {
		return storageErr("reset cycle", core.EntityBudget, err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Budget cycles reset", "user_id", userID, "cycle_start", today.String(), "budgets", n)
	return nil
}

const goalSelect = `SELECT id, user_id, name, target_amount, current_amount, deadline, status, icon FROM goals`

func scanGoal(sc interface{ Scan(...any) error }) (core.Goal, error) {
	var g core.Goal
	var status string
	err := sc.Scan(&g.ID, &g.UserID, &g.Name, &g.Target, &g.Current, &g.Deadline, &status, &g.Icon)
	g.Status = core.GoalStatus(status)
	return g, err
}

func (r *Repository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.query(ctx, goalSelect+` WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, storageErr("list", core.EntityGoal, err)
	}
	defer rows.Close()

	out := make([]core.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, storageErr("scan", core.EntityGoal, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", core.EntityGoal, err)
	}
	return out, nil
}

func (r *Repository) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	g, err := scanGoal(r.queryRow(ctx, goalSelect+` WHERE user_id = ? AND id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, storageErr("get", core.EntityGoal, err)
	}
	return g, nil
}

func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	_, err := r.exec(ctx, `INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, status, icon, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.Target, g.Current, g.Deadline, string(g.Status), g.Icon, r.now().UTC())
	if err != nil {
		return core.Goal{}, storageErr("create", core.EntityGoal, err)
	}
	return g, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	res, err := r.exec(ctx, `UPDATE goals
		SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, status = ?, icon = ?
		WHERE user_id = ? AND id = ?`,
		g.Name, g.Target, g.Current, g.Deadline, string(g.Status), g.Icon, g.UserID, g.ID)
	if err != nil {
		return core.Goal{}, storageErr("update", core.EntityGoal, err)
	}
	if err := expectOne(res, core.EntityGoal, g.ID); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.exec(ctx, `DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return storageErr("delete", core.EntityGoal, err)
	}
	return expectOne(res, core.EntityGoal, id)
}
