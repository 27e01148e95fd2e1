package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

const (
	// DefaultWalletID is the wallet older records without a wallet reference belong to.
	DefaultWalletID = "cash"
	// UncategorizedID and UncategorizedLabel stand in for a missing category.
	UncategorizedID    = "unknown"
	UncategorizedLabel = "Lainnya"
	// ReconciliationNote tags transactions synthesized by a balance adjustment.
	ReconciliationNote = "Penyesuaian Saldo Manual"
	// Shared categories of balance adjustments, one per direction.
	AdjustmentIncomeID  = "penyesuaian-masuk"
	AdjustmentExpenseID = "penyesuaian"
	AdjustmentLabel     = "Penyesuaian Saldo"
)

// IsAdjustmentCategory reports whether id is one of the balance adjustment
// categories, which never carry a budget.
func IsAdjustmentCategory(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return id == AdjustmentIncomeID || id == AdjustmentExpenseID
}

type (
	TransactionType string

	GoalStatus string

	Transaction struct {
		ID           string          `json:"id" yaml:"id"`
		UserID       string          `json:"-" yaml:"-"`
		Type         TransactionType `json:"type" yaml:"type"`
		Amount       decimal.Decimal `json:"amount" yaml:"amount"`
		Date         Date            `json:"date" yaml:"date"`
		CategoryID   string          `json:"category_id" yaml:"category_id"`
		CategoryName string          `json:"category_name,omitempty" yaml:"category_name,omitempty"`
		WalletID     string          `json:"wallet_id" yaml:"wallet_id"`
		WalletName   string          `json:"wallet_name,omitempty" yaml:"wallet_name,omitempty"`
		Note         string          `json:"note,omitempty" yaml:"note,omitempty"`
	}

	Wallet struct {
		ID             string          `json:"id" yaml:"id"`
		UserID         string          `json:"-" yaml:"-"`
		Name           string          `json:"name" yaml:"name"`
		Icon           string          `json:"icon,omitempty" yaml:"icon,omitempty"`
		InitialBalance decimal.Decimal `json:"initial_balance" yaml:"initial_balance"`
	}

	// Category is scoped to one transaction type. Categories with an empty
	// UserID are shared defaults visible to everyone.
	Category struct {
		ID     string          `json:"id" yaml:"id"`
		UserID string          `json:"-" yaml:"-"`
		Name   string          `json:"name" yaml:"name"`
		Type   TransactionType `json:"type" yaml:"type"`
		Icon   string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	}

	// Budget is a monthly ceiling for one expense category. Spent and friends are
	// derived on read and never stored.
	Budget struct {
		ID           string          `json:"id" yaml:"id"`
		UserID       string          `json:"-" yaml:"-"`
		CategoryID   string          `json:"category_id" yaml:"category_id"`
		CategoryName string          `json:"category_name,omitempty" yaml:"category_name,omitempty"`
		Limit        decimal.Decimal `json:"limit_amount" yaml:"limit_amount"`
		CycleStart   Date            `json:"cycle_start" yaml:"cycle_start"`
	}

	Goal struct {
		ID       string          `json:"id" yaml:"id"`
		UserID   string          `json:"-" yaml:"-"`
		Name     string          `json:"name" yaml:"name"`
		Target   decimal.Decimal `json:"target_amount" yaml:"target_amount"`
		Current  decimal.Decimal `json:"current_amount" yaml:"current_amount"`
		Deadline Date            `json:"deadline" yaml:"deadline"`
		Status   GoalStatus      `json:"status" yaml:"status"`
		Icon     string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrMissingCategory = errors.New("missing category")
	ErrMissingWallet   = errors.New("missing wallet")
	ErrMissingName     = errors.New("missing name")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateBudget = errors.New("category already has a budget")
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrGoalCompleted   = errors.New("goal already completed")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
	ErrInvalidStatus   = errors.New("invalid goal status")
)

// IsValidationError reports whether err is one of the input errors raised
// before storage is touched.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInvalidDate, ErrInvalidType, ErrMissingCategory,
		ErrMissingWallet, ErrMissingName, ErrNoteTooLong, ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StorageError marks a failure of the storage collaborator, as opposed to a
// validation failure raised before storage was touched.
type StorageError struct {
	Op     string
	Entity string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err originates from the storage layer.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Sign returns +1 for income and -1 for expense.
func (t TransactionType) Sign() int {
	if t == Expense {
		return -1
	}
	return 1
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// ResolvedWalletID returns the wallet the transaction counts against.
func (t Transaction) ResolvedWalletID() string {
	if strings.TrimSpace(t.WalletID) == "" {
		return DefaultWalletID
	}
	return t.WalletID
}

// DisplayCategory returns the category label, falling back to the id and then
// to the uncategorized label.
func (t Transaction) DisplayCategory() string {
	switch {
	case t.CategoryName != "":
		return t.CategoryName
	case t.CategoryID != "":
		return t.CategoryID
	default:
		return UncategorizedLabel
	}
}

// Signed returns the amount with the sign of its effect on a balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(t.WalletID) == "" {
		return ErrMissingWallet
	}
	if len(t.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrMissingName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, c.Type)
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrMissingCategory
	}
	if b.Limit.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrMissingName
	}
	if !g.Target.IsPositive() {
		return ErrInvalidAmount
	}
	if g.Current.IsNegative() {
		return ErrInvalidAmount
	}
	switch g.Status {
	case GoalActive, GoalCompleted, "":
	default:
		return fmt.Errorf("%w %q", ErrInvalidStatus, g.Status)
	}
	return nil
}
