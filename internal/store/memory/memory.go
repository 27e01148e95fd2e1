// Package memory is an in-process store used for development, demos and
// tests. It can be seeded from a YAML file holding records in the flat shape.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/store"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Seed is the on-disk layout of a seed file. Records belong to User.
type Seed struct {
	User         string                `yaml:"user"`
	Wallets      []core.Wallet         `yaml:"wallets"`
	Categories   []core.Category       `yaml:"categories"`
	Budgets      []core.Budget         `yaml:"budgets"`
	Goals        []core.Goal           `yaml:"goals"`
	Transactions []core.RawTransaction `yaml:"transactions"`
}

type txEntry struct {
	tx  core.Transaction
	seq int64
}

type Store struct {
	mu           sync.Mutex
	seq          int64
	categories   []core.Category
	wallets      []core.Wallet
	transactions []txEntry
	budgets      []core.Budget
	goals        []core.Goal
}

var _ store.Store = (*Store)(nil)

// New returns an empty store holding only the shared default categories.
func New() *Store {
	return &Store{categories: store.DefaultCategories()}
}

// NewFromSeedFile loads a YAML seed file into a fresh store.
func NewFromSeedFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	s := New()
	if err := s.Load(seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Load adds the seed's records for seed.User. Wallets default to the standard
// set when the seed names none.
func (s *Store) Load(seed Seed) error {
	if strings.TrimSpace(seed.User) == "" {
		return fmt.Errorf("seed: %w", core.ErrUnauthenticated)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range seed.Categories {
		c.UserID = seed.User
		s.categories = append(s.categories, c)
	}
	wallets := seed.Wallets
	if len(wallets) == 0 {
		wallets = store.DefaultWallets(seed.User)
	}
	for _, w := range wallets {
		w.UserID = seed.User
		s.wallets = append(s.wallets, w)
	}
	for _, b := range seed.Budgets {
		b.UserID = seed.User
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		s.budgets = append(s.budgets, b)
	}
	for _, g := range seed.Goals {
		g.UserID = seed.User
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if g.Status == "" {
			g.Status = core.GoalActive
		}
		s.goals = append(s.goals, g)
	}

	txs, errs := core.NewNormalizer(s.visibleCategories(seed.User)).NormalizeAll(seed.Transactions)
	if len(errs) > 0 {
		return fmt.Errorf("seed transactions: %w", errs[0])
	}
	for _, t := range txs {
		t.UserID = seed.User
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.seq++
		s.transactions = append(s.transactions, txEntry{tx: t, seq: s.seq})
	}
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]txEntry, 0, len(s.transactions))
	for _, e := range s.transactions {
		if e.tx.UserID == userID {
			entries = append(entries, e)
		}
	}
	slices.SortStableFunc(entries, func(a, b txEntry) int {
		if c := b.tx.Date.Compare(a.tx.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	out := make([]core.Transaction, len(entries))
	for i, e := range entries {
		out[i] = s.resolveNames(e.tx)
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTx(userID, id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return s.resolveNames(s.transactions[i].tx), nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.seq++
	s.transactions = append(s.transactions, txEntry{tx: t, seq: s.seq})
	return s.resolveNames(t), nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTx(t.UserID, t.ID)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	s.transactions[i].tx = t
	return s.resolveNames(t), nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTx(userID, id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	s.transactions = slices.Delete(s.transactions, i, i+1)
	return nil
}

func (s *Store) ListWallets(_ context.Context, userID string) ([]core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterOwned(s.wallets, func(w core.Wallet) bool { return w.UserID == userID }), nil
}

func (s *Store) CreateWallet(_ context.Context, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	s.wallets = append(s.wallets, w)
	return w, nil
}

func (s *Store) DeleteWallet(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.wallets, func(w core.Wallet) bool { return w.UserID == userID && w.ID == id })
	if i < 0 {
		return fmt.Errorf("wallet %s: %w", id, core.ErrNotFound)
	}
	s.wallets = slices.Delete(s.wallets, i, i+1)
	return nil
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.visibleCategories(userID)
	slices.SortStableFunc(out, func(a, b core.Category) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := filterOwned(s.budgets, func(b core.Budget) bool { return b.UserID == userID })
	for i := range out {
		out[i].CategoryName = s.categoryName(userID, out[i].CategoryID)
	}
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := filterOwned(s.budgets, func(x core.Budget) bool { return x.UserID == b.UserID })
	if ledger.HasBudget(owned, b.CategoryID) {
		return core.Budget{}, core.ErrDuplicateBudget
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.budgets = append(s.budgets, b)
	b.CategoryName = s.categoryName(b.UserID, b.CategoryID)
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.budgets, func(x core.Budget) bool { return x.UserID == b.UserID && x.ID == b.ID })
	if i < 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", b.ID, core.ErrNotFound)
	}
	for j, x := range s.budgets {
		if j != i && x.UserID == b.UserID && strings.EqualFold(x.CategoryID, b.CategoryID) {
			return core.Budget{}, core.ErrDuplicateBudget
		}
	}
	s.budgets[i] = b
	b.CategoryName = s.categoryName(b.UserID, b.CategoryID)
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.budgets, func(b core.Budget) bool { return b.UserID == userID && b.ID == id })
	if i < 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	s.budgets = slices.Delete(s.budgets, i, i+1)
	return nil
}

func (s *Store) ResetBudgetCycles(_ context.Context, userID string, today core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].UserID == userID {
			s.budgets[i].CycleStart = today
		}
	}
	return nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterOwned(s.goals, func(g core.Goal) bool { return g.UserID == userID }), nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.goals, func(g core.Goal) bool { return g.UserID == userID && g.ID == id })
	if i < 0 {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	return s.goals[i], nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.goals, func(x core.Goal) bool { return x.UserID == g.UserID && x.ID == g.ID })
	if i < 0 {
		return core.Goal{}, fmt.Errorf("goal %s: %w", g.ID, core.ErrNotFound)
	}
	s.goals[i] = g
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.goals, func(g core.Goal) bool { return g.UserID == userID && g.ID == id })
	if i < 0 {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	s.goals = slices.Delete(s.goals, i, i+1)
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) findTx(userID, id string) int {
	return slices.IndexFunc(s.transactions, func(e txEntry) bool {
		return e.tx.UserID == userID && e.tx.ID == id
	})
}

// visibleCategories must be called with mu held.
func (s *Store) visibleCategories(userID string) []core.Category {
	return filterOwned(s.categories, func(c core.Category) bool {
		return c.UserID == "" || c.UserID == userID
	})
}

func (s *Store) categoryName(userID, id string) string {
	for _, c := range s.categories {
		if (c.UserID == "" || c.UserID == userID) && c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *Store) resolveNames(t core.Transaction) core.Transaction {
	if t.CategoryName == "" {
		t.CategoryName = s.categoryName(t.UserID, t.CategoryID)
	}
	if t.WalletName == "" {
		for _, w := range s.wallets {
			if w.UserID == t.UserID && w.ID == t.ResolvedWalletID() {
				t.WalletName = w.Name
				break
			}
		}
	}
	return t
}

func filterOwned[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
