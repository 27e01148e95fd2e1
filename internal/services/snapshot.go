package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dompet/internal/core"
	"dompet/internal/store"
)

// Snapshot is the full set of one user's collections at a point in time.
type Snapshot struct {
	UserID       string             `json:"-"`
	Transactions []core.Transaction `json:"transactions"`
	Wallets      []core.Wallet      `json:"wallets"`
	Categories   []core.Category    `json:"categories"`
	Budgets      []core.Budget      `json:"budgets"`
	Goals        []core.Goal        `json:"goals"`
}

// SnapshotLoader reads every collection of a user in parallel.
type SnapshotLoader struct {
	store store.Store
}

func NewSnapshotLoader(s store.Store) *SnapshotLoader {
	return &SnapshotLoader{store: s}
}

// Load returns a complete snapshot or an error; it never returns a partial
// one. An empty user id yields an empty snapshot without touching the store.
func (l *SnapshotLoader) Load(ctx context.Context, userID string) (Snapshot, error) {
	snap := Snapshot{
		UserID:       userID,
		Transactions: []core.Transaction{},
		Wallets:      []core.Wallet{},
		Categories:   []core.Category{},
		Budgets:      []core.Budget{},
		Goals:        []core.Goal{},
	}
	if userID == "" {
		return snap, nil
	}

	var (
		txs        []core.Transaction
		wallets    []core.Wallet
		categories []core.Category
		budgets    []core.Budget
		goals      []core.Goal
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = l.store.ListTransactions(ctx, userID)
		return wrap("transactions", err)
	})
	g.Go(func() (err error) {
		wallets, err = l.store.ListWallets(ctx, userID)
		return wrap("wallets", err)
	})
	g.Go(func() (err error) {
		categories, err = l.store.ListCategories(ctx, userID)
		return wrap("categories", err)
	})
	g.Go(func() (err error) {
		budgets, err = l.store.ListBudgets(ctx, userID)
		return wrap("budgets", err)
	})
	g.Go(func() (err error) {
		goals, err = l.store.ListGoals(ctx, userID)
		return wrap("goals", err)
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	if txs != nil {
		snap.Transactions = txs
	}
	if wallets != nil {
		snap.Wallets = wallets
	}
	if categories != nil {
		snap.Categories = categories
	}
	if budgets != nil {
		snap.Budgets = budgets
	}
	if goals != nil {
		snap.Goals = goals
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}
