package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/store"
)

// Change operations carried by core.ChangeEvent.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpReset  = "reset"
)

// Ledger orchestrates mutations: validate, write to the store, then notify.
// Input is rejected before the store is touched, and a store failure is
// returned as is so nothing unconfirmed is announced.
type Ledger struct {
	store    store.Store
	notifier Notifier
	today    func() core.Date
}

type Option func(*Ledger)

// WithNotifier sets who hears about confirmed changes.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) {
		if n != nil {
			l.notifier = n
		}
	}
}

// WithClock overrides the source of "today".
func WithClock(today func() core.Date) Option {
	return func(l *Ledger) { l.today = today }
}

func NewLedger(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    s,
		notifier: nopNotifier{},
		today:    core.Today,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store exposes the underlying store for read paths.
func (l *Ledger) Store() store.Store { return l.store }

// Today is the ledger's notion of the current date.
func (l *Ledger) Today() core.Date { return l.today() }

func (l *Ledger) notify(ctx context.Context, userID, entity, op, id string) {
	ev := core.ChangeEvent{UserID: userID, Entity: entity, Op: op, ID: id}
	if err := l.notifier.Notify(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change",
			"user_id", userID, "entity", entity, "op", op, "error", err)
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrUnauthenticated
	}
	return nil
}

func (l *Ledger) CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return core.Transaction{}, err
	}
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	created, err := l.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	l.notify(ctx, userID, core.EntityTransaction, OpCreate, created.ID)
	return created, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		return core.Transaction{}, core.ErrNotFound
	}
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := l.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	l.notify(ctx, userID, core.EntityTransaction, OpUpdate, updated.ID)
	return updated, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := l.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	l.notify(ctx, userID, core.EntityTransaction, OpDelete, id)
	return nil
}

func (l *Ledger) CreateWallet(ctx context.Context, userID string, w core.Wallet) (core.Wallet, error) {
	if err := requireUser(userID); err != nil {
		return core.Wallet{}, err
	}
	w.UserID = userID
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	created, err := l.store.CreateWallet(ctx, w)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("create wallet: %w", err)
	}
	l.notify(ctx, userID, core.EntityWallet, OpCreate, created.ID)
	return created, nil
}

func (l *Ledger) DeleteWallet(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := l.store.DeleteWallet(ctx, userID, id); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	l.notify(ctx, userID, core.EntityWallet, OpDelete, id)
	return nil
}

// EnsureDefaultWallets gives a user with no wallets the default set. It
// returns the wallets it created, which is empty for an existing user.
func (l *Ledger) EnsureDefaultWallets(ctx context.Context, userID string) ([]core.Wallet, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	existing, err := l.store.ListWallets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	var created []core.Wallet
	for _, w := range store.DefaultWallets(userID) {
		c, err := l.store.CreateWallet(ctx, w)
		if err != nil {
			return created, fmt.Errorf("create default wallet %q: %w", w.ID, err)
		}
		created = append(created, c)
	}
	l.notify(ctx, userID, core.EntityWallet, OpCreate, "")
	return created, nil
}

// ImportResult reports an import. Rejected holds one error per skipped record.
type ImportResult struct {
	Imported []core.Transaction
	Rejected []error
}

// ImportTransactions normalizes raw records and stores the valid ones under
// fresh ids. Records that fail normalization or validation are skipped and
// reported; a storage failure stops the import with what was stored so far.
func (l *Ledger) ImportTransactions(ctx context.Context, userID string, raws []core.RawTransaction) (ImportResult, error) {
	if err := requireUser(userID); err != nil {
		return ImportResult{}, err
	}
	categories, err := l.store.ListCategories(ctx, userID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list categories: %w", err)
	}

	txs, rejected := core.NewNormalizer(categories).NormalizeAll(raws)
	res := ImportResult{Rejected: rejected}
	defer func() {
		if len(res.Imported) > 0 {
			l.notify(ctx, userID, core.EntityTransaction, OpCreate, "")
		}
	}()

	for _, t := range txs {
		t.UserID = userID
		if err := t.Validate(); err != nil {
			res.Rejected = append(res.Rejected, fmt.Errorf("transaction dated %s: %w", t.Date, err))
			continue
		}
		t.ID = uuid.NewString()
		created, err := l.store.CreateTransaction(ctx, t)
		if err != nil {
			return res, fmt.Errorf("import transaction: %w", err)
		}
		res.Imported = append(res.Imported, created)
	}
	return res, nil
}

// AdjustWalletBalance forces a wallet's derived balance to target by
// recording one reconciliation transaction dated today. It reports false and
// writes nothing when the balance already matches.
func (l *Ledger) AdjustWalletBalance(ctx context.Context, userID, walletID string, target decimal.Decimal) (core.Transaction, bool, error) {
	if err := requireUser(userID); err != nil {
		return core.Transaction{}, false, err
	}
	wallets, err := l.store.ListWallets(ctx, userID)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("list wallets: %w", err)
	}
	if !slices.ContainsFunc(wallets, func(w core.Wallet) bool { return w.ID == walletID }) {
		return core.Transaction{}, false, fmt.Errorf("wallet %q: %w", walletID, core.ErrNotFound)
	}
	txs, err := l.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("list transactions: %w", err)
	}

	current := ledger.WalletBalance(txs, wallets, walletID)
	adj, ok := ledger.Reconcile(walletID, current, target, l.today())
	if !ok {
		return core.Transaction{}, false, nil
	}
	created, err := l.CreateTransaction(ctx, userID, adj)
	if err != nil {
		return core.Transaction{}, false, err
	}
	return created, true, nil
}

func (l *Ledger) CreateCategory(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	if err := requireUser(userID); err != nil {
		return core.Category{}, err
	}
	c.UserID = userID
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	created, err := l.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	l.notify(ctx, userID, core.EntityCategory, OpCreate, created.ID)
	return created, nil
}

// CreateBudget adds a budget for a category that has none yet. Without an
// explicit cycle start the budget counts from the first of this month.
func (l *Ledger) CreateBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	if err := requireUser(userID); err != nil {
		return core.Budget{}, err
	}
	b.UserID = userID
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	existing, err := l.store.ListBudgets(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("list budgets: %w", err)
	}
	if ledger.HasBudget(existing, b.CategoryID) {
		return core.Budget{}, core.ErrDuplicateBudget
	}
	if b.CycleStart.IsZero() {
		b.CycleStart = l.today().FirstOfMonth()
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	created, err := l.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	l.notify(ctx, userID, core.EntityBudget, OpCreate, created.ID)
	return created, nil
}

func (l *Ledger) UpdateBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	if err := requireUser(userID); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" {
		return core.Budget{}, core.ErrNotFound
	}
	b.UserID = userID
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	existing, err := l.store.ListBudgets(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("list budgets: %w", err)
	}
	others := slices.DeleteFunc(existing, func(x core.Budget) bool { return x.ID == b.ID })
	if ledger.HasBudget(others, b.CategoryID) {
		return core.Budget{}, core.ErrDuplicateBudget
	}
	updated, err := l.store.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	l.notify(ctx, userID, core.EntityBudget, OpUpdate, updated.ID)
	return updated, nil
}

func (l *Ledger) DeleteBudget(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := l.store.DeleteBudget(ctx, userID, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	l.notify(ctx, userID, core.EntityBudget, OpDelete, id)
	return nil
}

// ResetBudgetCycles restarts every budget of the user from today. Unlike the
// month rollover applied when reading, this is persisted.
func (l *Ledger) ResetBudgetCycles(ctx context.Context, userID string) (core.Date, error) {
	if err := requireUser(userID); err != nil {
		return core.Date{}, err
	}
	today := l.today()
	if err := l.store.ResetBudgetCycles(ctx, userID, today); err != nil {
		return core.Date{}, fmt.Errorf("reset budget cycles: %w", err)
	}
	l.notify(ctx, userID, core.EntityBudget, OpReset, "")
	return today, nil
}

func (l *Ledger) CreateGoal(ctx context.Context, userID string, g core.Goal) (core.Goal, error) {
	if err := requireUser(userID); err != nil {
		return core.Goal{}, err
	}
	g.UserID = userID
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	created, err := l.store.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	l.notify(ctx, userID, core.EntityGoal, OpCreate, created.ID)
	return created, nil
}

// AddSavings records a contribution toward a goal.
func (l *Ledger) AddSavings(ctx context.Context, userID, goalID string, amount decimal.Decimal) (core.Goal, error) {
	if err := requireUser(userID); err != nil {
		return core.Goal{}, err
	}
	if !amount.IsPositive() {
		return core.Goal{}, core.ErrInvalidAmount
	}
	g, err := l.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	g, err = ledger.ApplySavings(g, amount)
	if err != nil {
		return core.Goal{}, err
	}
	updated, err := l.store.UpdateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	l.notify(ctx, userID, core.EntityGoal, OpUpdate, updated.ID)
	return updated, nil
}

func (l *Ledger) DeleteGoal(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := l.store.DeleteGoal(ctx, userID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	l.notify(ctx, userID, core.EntityGoal, OpDelete, id)
	return nil
}

// Close releases the store and, when it holds one, the notifier.
func (l *Ledger) Close() error {
	var errs []error
	if l.store != nil {
		if err := l.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := l.notifier.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger: %w", errors.Join(errs...))
	}
	return nil
}
