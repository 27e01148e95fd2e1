package store

import "dompet/internal/core"

// DefaultCategories is the shared category set every user starts with.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "gaji", Name: "Gaji", Type: core.Income, Icon: "Wallet"},
		{ID: "freelance", Name: "Freelance", Type: core.Income, Icon: "Laptop"},
		{ID: "investasi", Name: "Investasi", Type: core.Income, Icon: "TrendingUp"},
		{ID: "bonus", Name: "Bonus", Type: core.Income, Icon: "Gift"},
		{ID: "lainnya-masuk", Name: "Lainnya", Type: core.Income, Icon: "MoreHorizontal"},
		{ID: "makan", Name: "Makan", Type: core.Expense, Icon: "Utensils"},
		{ID: "transport", Name: "Transport", Type: core.Expense, Icon: "Car"},
		{ID: "belanja", Name: "Belanja", Type: core.Expense, Icon: "ShoppingBag"},
		{ID: "hiburan", Name: "Hiburan", Type: core.Expense, Icon: "Film"},
		{ID: "tagihan", Name: "Tagihan", Type: core.Expense, Icon: "FileText"},
		{ID: "kesehatan", Name: "Kesehatan", Type: core.Expense, Icon: "Heart"},
		{ID: "pendidikan", Name: "Pendidikan", Type: core.Expense, Icon: "Book"},
		{ID: "lainnya", Name: "Lainnya", Type: core.Expense, Icon: "MoreHorizontal"},
		{ID: core.AdjustmentIncomeID, Name: core.AdjustmentLabel, Type: core.Income, Icon: "Scale"},
		{ID: core.AdjustmentExpenseID, Name: core.AdjustmentLabel, Type: core.Expense, Icon: "Scale"},
	}
}

// DefaultWallets is what a new user gets before creating their own.
func DefaultWallets(userID string) []core.Wallet {
	return []core.Wallet{
		{ID: core.DefaultWalletID, UserID: userID, Name: "Tunai", Icon: "Wallet"},
		{ID: "bank", UserID: userID, Name: "Bank", Icon: "CreditCard"},
		{ID: "ewallet", UserID: userID, Name: "E-Wallet", Icon: "Smartphone"},
	}
}
