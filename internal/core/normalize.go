package core

import (
	"fmt"
	"strconv"
	"strings"
)

// RawTransaction is a transaction as it arrives from outside: seed files,
// imports, or older clients. Category and wallet may be a bare string (an id
// or a label, as in the flat shape) or an object with id and name (the
// relational shape). Amount may be a number or a string.
type RawTransaction struct {
	ID         any    `json:"id" yaml:"id"`
	Type       string `json:"type" yaml:"type"`
	Amount     any    `json:"amount" yaml:"amount"`
	Date       string `json:"date" yaml:"date"`
	Category   any    `json:"category" yaml:"category"`
	CategoryID string `json:"category_id" yaml:"category_id"`
	Wallet     any    `json:"wallet" yaml:"wallet"`
	WalletID   string `json:"wallet_id" yaml:"wallet_id"`
	Note       string `json:"note" yaml:"note"`
}

// Normalizer converts raw records into canonical transactions, resolving
// category references against a known category set.
type Normalizer struct {
	categories []Category
}

func NewNormalizer(categories []Category) *Normalizer {
	return &Normalizer{categories: categories}
}

// Normalize maps one raw record to a Transaction. Only an unreadable type or
// date is an error; an unreadable amount becomes zero and a missing wallet
// becomes the default wallet.
func (n *Normalizer) Normalize(raw RawTransaction) (Transaction, error) {
	txType := TransactionType(strings.ToLower(strings.TrimSpace(raw.Type)))
	if !txType.Valid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidType, raw.Type)
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:     refString(raw.ID),
		Type:   txType,
		Amount: CoerceAmount(raw.Amount),
		Date:   date,
		Note:   strings.TrimSpace(raw.Note),
	}

	catID, catName := ref(raw.Category)
	if catID == "" {
		catID = raw.CategoryID
	}
	tx.CategoryID, tx.CategoryName = n.resolveCategory(txType, catID, catName)

	walletID, walletName := ref(raw.Wallet)
	if walletID == "" {
		walletID = raw.WalletID
	}
	if walletID == "" {
		walletID = DefaultWalletID
	}
	tx.WalletID, tx.WalletName = walletID, walletName

	return tx, nil
}

// NormalizeAll normalizes every record, collecting the ones that fail instead
// of stopping at the first.
func (n *Normalizer) NormalizeAll(raws []RawTransaction) ([]Transaction, []error) {
	out := make([]Transaction, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		tx, err := n.Normalize(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, tx)
	}
	return out, errs
}

func (n *Normalizer) resolveCategory(t TransactionType, id, name string) (string, string) {
	if id == "" {
		return "", name
	}
	for _, c := range n.categories {
		if c.Type != "" && c.Type != t {
			continue
		}
		if strings.EqualFold(c.ID, id) || strings.EqualFold(c.Name, id) {
			if name == "" {
				name = c.Name
			}
			return c.ID, name
		}
	}
	if name == "" {
		name = id
	}
	return id, name
}

// ref extracts (id, name) from either a bare string or an {id, name} object.
func ref(v any) (string, string) {
	switch x := v.(type) {
	case nil:
		return "", ""
	case string:
		return strings.TrimSpace(x), ""
	case map[string]any:
		name := refString(x["name"])
		if name == "" {
			name = refString(x["label"])
		}
		return refString(x["id"]), name
	default:
		return refString(x), ""
	}
}

func refString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
