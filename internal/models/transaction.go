package models

import "strings"

// Transaction represents a financial transaction as observed from the
// bank-data feed. Positive amounts are expenses, negative amounts are
// income, by convention. The engine never mutates a transaction.
type Transaction struct {
	ID           string  `json:"id"`
	AccountID    string  `json:"account_id"`
	Name         string  `json:"name"`
	MerchantName string  `json:"merchant_name"`
	DisplayName  string  `json:"display_name"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"` // Format: YYYY-MM-DD
	Category     string  `json:"category"`
	IsIncome     bool    `json:"is_income"`
	Pending      bool    `json:"pending"`
}

// IdentityKey normalizes the transaction's display identity for grouping:
// lowercased, trimmed display_name, falling back to merchant_name, then name.
func (t Transaction) IdentityKey() string {
	name := t.DisplayName
	if name == "" {
		name = t.MerchantName
	}
	if name == "" {
		name = t.Name
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return !t.IsIncome && t.Amount > 0
}

// IsIncomeFlow reports whether the transaction is an inflow, either by
// flag or by sign convention.
func (t Transaction) IsIncomeFlow() bool {
	return t.IsIncome || t.Amount < 0
}
