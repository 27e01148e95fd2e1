// Package store declares the storage collaborator the ledger talks to. Every
// call is scoped to one user; implementations never return another user's
// records.
package store

import (
	"context"

	"dompet/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionStore interface {
		// ListTransactions returns the user's transactions, newest first, with
		// category and wallet names resolved where known.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	WalletStore interface {
		ListWallets(ctx context.Context, userID string) ([]core.Wallet, error)
		CreateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error)
		DeleteWallet(ctx context.Context, userID, id string) error
	}

	// CategoryStore lists the shared default categories plus the user's own.
	CategoryStore interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, userID, id string) error
		// ResetBudgetCycles persists today as the cycle start of every budget
		// the user has.
		ResetBudgetCycles(ctx context.Context, userID string, today core.Date) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
		GetGoal(ctx context.Context, userID, id string) (core.Goal, error)
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	// Store is everything a backend provides.
	Store interface {
		TransactionStore
		WalletStore
		CategoryStore
		BudgetStore
		GoalStore
		Close() error
	}
)
