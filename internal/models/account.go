package models

// Account types that count toward the liquid starting balance.
const (
	AccountTypeDepository = "depository"
	AccountTypeChecking   = "checking"
	AccountTypeSavings    = "savings"
)

type Account struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	CurrentBalance float64 `json:"current_balance"`
}

// IsLiquid reports whether the account balance is spendable cash.
func (a Account) IsLiquid() bool {
	switch a.Type {
	case AccountTypeDepository, AccountTypeChecking, AccountTypeSavings:
		return true
	}
	return false
}

// LiquidBalance sums the current balances of liquid accounts.
func LiquidBalance(accounts []Account) float64 {
	var total float64
	for _, a := range accounts {
		if a.IsLiquid() {
			total += a.CurrentBalance
		}
	}
	return total
}
