package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dompet/internal/core"
	"dompet/internal/store/memory"
)

const user = "u1"

var fixedToday = core.NewDate(2024, 5, 20)

type recorder struct {
	mu     sync.Mutex
	events []core.ChangeEvent
}

func (r *recorder) Notify(_ context.Context, ev core.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// failingStore rejects every create with a storage error.
type failingStore struct {
	*memory.Store
}

func (f failingStore) CreateTransaction(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, &core.StorageError{Op: "insert", Entity: "transaction", Err: errors.New("disk full")}
}

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	require.NoError(t, s.Load(memory.Seed{User: user}))
	return s
}

func newLedger(t *testing.T) (*Ledger, *recorder) {
	t.Helper()
	rec := &recorder{}
	return NewLedger(newStore(t), WithNotifier(rec), WithClock(func() core.Date { return fixedToday })), rec
}

func expense(amount int64) core.Transaction {
	return core.Transaction{
		Type:       core.Expense,
		Amount:     decimal.NewFromInt(amount),
		Date:       fixedToday,
		CategoryID: "makan",
		WalletID:   "cash",
	}
}

func TestCreateTransaction(t *testing.T) {
	l, rec := newLedger(t)
	ctx := context.Background()

	created, err := l.CreateTransaction(ctx, user, expense(25000))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, user, created.UserID)

	txs, err := l.Store().ListTransactions(ctx, user)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, created.ID, txs[0].ID)

	require.Len(t, rec.events, 1)
	assert.Equal(t, core.ChangeEvent{UserID: user, Entity: core.EntityTransaction, Op: OpCreate, ID: created.ID}, rec.events[0])
}

func TestCreateTransactionRejectsInvalidInputBeforeStorage(t *testing.T) {
	l, rec := newLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		mod  func(*core.Transaction)
		want error
	}{
		{"zero amount", func(tx *core.Transaction) { tx.Amount = decimal.Zero }, core.ErrInvalidAmount},
		{"missing category", func(tx *core.Transaction) { tx.CategoryID = "" }, core.ErrMissingCategory},
		{"missing wallet", func(tx *core.Transaction) { tx.WalletID = "" }, core.ErrMissingWallet},
		{"bad type", func(tx *core.Transaction) { tx.Type = "transfer" }, core.ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := expense(1000)
			tt.mod(&tx)
			_, err := l.CreateTransaction(ctx, user, tx)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	txs, err := l.Store().ListTransactions(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Empty(t, rec.events)
}

func TestCreateTransactionRequiresUser(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.CreateTransaction(context.Background(), " ", expense(1000))
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestFailedCreateLeavesNothingBehind(t *testing.T) {
	rec := &recorder{}
	s := failingStore{Store: newStore(t)}
	l := NewLedger(s, WithNotifier(rec))
	ctx := context.Background()

	_, err := l.CreateTransaction(ctx, user, expense(1000))
	require.Error(t, err)
	assert.True(t, core.IsStorageError(err))

	snap, err := NewSnapshotLoader(s).Load(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
	assert.Empty(t, rec.events)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	l, rec := newLedger(t)
	ctx := context.Background()

	created, err := l.CreateTransaction(ctx, user, expense(1000))
	require.NoError(t, err)

	created.Amount = decimal.NewFromInt(2000)
	updated, err := l.UpdateTransaction(ctx, user, created)
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(2000)))

	require.NoError(t, l.DeleteTransaction(ctx, user, created.ID))
	err = l.DeleteTransaction(ctx, user, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.Len(t, rec.events, 3)
	assert.Equal(t, OpUpdate, rec.events[1].Op)
	assert.Equal(t, OpDelete, rec.events[2].Op)
}

func TestAdjustWalletBalance(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		target  int64
		created bool
		typ     core.TransactionType
		amount  int64
	}{
		{"raise", 150000, true, core.Income, 50000},
		{"lower", 80000, true, core.Expense, 20000},
		{"unchanged", 100000, false, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLedger(t)
			income := expense(100000)
			income.Type = core.Income
			income.CategoryID = "gaji"
			_, err := l.CreateTransaction(ctx, user, income)
			require.NoError(t, err)

			adj, ok, err := l.AdjustWalletBalance(ctx, user, "cash", decimal.NewFromInt(tt.target))
			require.NoError(t, err)
			assert.Equal(t, tt.created, ok)

			txs, err := l.Store().ListTransactions(ctx, user)
			require.NoError(t, err)
			if !tt.created {
				assert.Len(t, txs, 1)
				return
			}
			assert.Len(t, txs, 2)
			for _, stored := range txs {
				if stored.ID == adj.ID {
					assert.Equal(t, core.AdjustmentLabel, stored.CategoryName)
				}
			}
			assert.Equal(t, tt.typ, adj.Type)
			assert.True(t, adj.Amount.Equal(decimal.NewFromInt(tt.amount)))
			assert.Equal(t, core.ReconciliationNote, adj.Note)
			assert.Equal(t, fixedToday, adj.Date)
		})
	}
}

func TestEnsureDefaultWallets(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l := NewLedger(memory.New(), WithNotifier(rec))

	created, err := l.EnsureDefaultWallets(ctx, "fresh")
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, core.DefaultWalletID, created[0].ID)
	require.Len(t, rec.events, 1)

	again, err := l.EnsureDefaultWallets(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, rec.events, 1)

	_, err = l.EnsureDefaultWallets(ctx, " ")
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestImportTransactions(t *testing.T) {
	l, rec := newLedger(t)
	ctx := context.Background()

	res, err := l.ImportTransactions(ctx, user, []core.RawTransaction{
		{ID: 7, Type: "Expense", Amount: "25000", Date: "2024-05-01", CategoryID: "makan", Wallet: "bank"},
		{Type: "transfer", Amount: 10, Date: "2024-05-02"},
		{Type: "income", Amount: "abc", Date: "2024-05-03", CategoryID: "gaji"},
	})
	require.NoError(t, err)
	require.Len(t, res.Imported, 1)
	assert.Len(t, res.Rejected, 2)
	assert.ErrorIs(t, res.Rejected[0], core.ErrInvalidType)
	assert.ErrorIs(t, res.Rejected[1], core.ErrInvalidAmount)

	got := res.Imported[0]
	assert.NotEqual(t, "7", got.ID)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, "bank", got.WalletID)
	assert.Len(t, rec.events, 1)

	_, err = l.ImportTransactions(ctx, "", nil)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestAdjustWalletBalanceUnknownWallet(t *testing.T) {
	l, _ := newLedger(t)
	_, _, err := l.AdjustWalletBalance(context.Background(), user, "vault", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateBudget(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	b, err := l.CreateBudget(ctx, user, core.Budget{CategoryID: "makan", Limit: decimal.NewFromInt(500000)})
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 5, 1), b.CycleStart)

	_, err = l.CreateBudget(ctx, user, core.Budget{CategoryID: "MAKAN", Limit: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, core.ErrDuplicateBudget)

	_, err = l.CreateBudget(ctx, user, core.Budget{CategoryID: "transport", Limit: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestUpdateBudgetKeepsCategoryUnique(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	food, err := l.CreateBudget(ctx, user, core.Budget{CategoryID: "makan", Limit: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = l.CreateBudget(ctx, user, core.Budget{CategoryID: "transport", Limit: decimal.NewFromInt(100)})
	require.NoError(t, err)

	food.Limit = decimal.NewFromInt(200)
	_, err = l.UpdateBudget(ctx, user, food)
	require.NoError(t, err)

	food.CategoryID = "transport"
	_, err = l.UpdateBudget(ctx, user, food)
	assert.ErrorIs(t, err, core.ErrDuplicateBudget)
}

func TestResetBudgetCyclesPersists(t *testing.T) {
	l, rec := newLedger(t)
	ctx := context.Background()

	_, err := l.CreateBudget(ctx, user, core.Budget{CategoryID: "makan", Limit: decimal.NewFromInt(100)})
	require.NoError(t, err)

	day, err := l.ResetBudgetCycles(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, fixedToday, day)

	budgets, err := l.Store().ListBudgets(ctx, user)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, fixedToday, budgets[0].CycleStart)
	assert.Equal(t, OpReset, rec.events[len(rec.events)-1].Op)
}

func TestGoalSavings(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	g, err := l.CreateGoal(ctx, user, core.Goal{Name: "Laptop", Target: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, g.Status)

	g, err = l.AddSavings(ctx, user, g.ID, decimal.NewFromInt(400))
	require.NoError(t, err)
	assert.True(t, g.Current.Equal(decimal.NewFromInt(400)))

	_, err = l.AddSavings(ctx, user, g.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	g, err = l.AddSavings(ctx, user, g.ID, decimal.NewFromInt(600))
	require.NoError(t, err)
	assert.Equal(t, core.GoalCompleted, g.Status)

	_, err = l.AddSavings(ctx, user, g.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, core.ErrGoalCompleted)

	require.NoError(t, l.DeleteGoal(ctx, user, g.ID))
	_, err = l.AddSavings(ctx, user, g.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestWalletLifecycle(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.CreateWallet(ctx, user, core.Wallet{Name: " "})
	assert.ErrorIs(t, err, core.ErrMissingName)

	w, err := l.CreateWallet(ctx, user, core.Wallet{Name: "Tabungan", InitialBalance: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	require.NoError(t, l.DeleteWallet(ctx, user, w.ID))
}

func TestNotifierFailureDoesNotFailMutation(t *testing.T) {
	failing := NotifierFunc(func(context.Context, core.ChangeEvent) error { return errors.New("broker down") })
	rec := &recorder{}
	l := NewLedger(newStore(t), WithNotifier(MultiNotifier{failing, rec}))

	_, err := l.CreateTransaction(context.Background(), user, expense(1000))
	require.NoError(t, err)
	assert.Len(t, rec.events, 1)
}

func TestMultiNotifierJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := MultiNotifier{
		NotifierFunc(func(context.Context, core.ChangeEvent) error { return boom }),
		nil,
		NotifierFunc(func(context.Context, core.ChangeEvent) error { return nil }),
	}
	assert.ErrorIs(t, m.Notify(context.Background(), core.ChangeEvent{}), boom)
}

func TestClose(t *testing.T) {
	l := NewLedger(memory.New())
	assert.NoError(t, l.Close())
}
