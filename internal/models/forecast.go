package models

// ForecastTransactionType classifies a projected line item. Amounts on
// forecast transactions are balance deltas: positive adds to the
// projected balance, negative subtracts.
type ForecastTransactionType string

const (
	ForecastRecurringIncome   ForecastTransactionType = "recurring_income"
	ForecastRecurringExpense  ForecastTransactionType = "recurring_expense"
	ForecastProjectedSpending ForecastTransactionType = "projected_spending"
)

// ForecastTransaction is a single projected transaction on a forecast day.
type ForecastTransaction struct {
	Name       string                  `json:"name"`
	Amount     float64                 `json:"amount"`
	Type       ForecastTransactionType `json:"type"`
	Confidence Confidence              `json:"confidence"`
	Category   string                  `json:"category,omitempty"`
}

// DailyForecast is one day of a projected balance trajectory.
type DailyForecast struct {
	Date             string                `json:"date"` // Format: YYYY-MM-DD
	DayOfWeek        string                `json:"day_of_week"`
	ProjectedBalance float64               `json:"projected_balance"`
	Transactions     []ForecastTransaction `json:"transactions"`
	IsLowBalance     bool                  `json:"is_low_balance"`
	IsNegative       bool                  `json:"is_negative"`
}

// AlertType classifies a cash-flow alert.
type AlertType string

const (
	AlertLowBalance      AlertType = "low_balance"
	AlertNegativeBalance AlertType = "negative_balance"
	AlertLargeExpense    AlertType = "large_expense"
	AlertMissedIncome    AlertType = "missed_income"
)

// AlertSeverity grades an alert.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// CashFlowAlert flags a risk condition on a forecast date. At most one
// alert exists per (type, date) pair.
type CashFlowAlert struct {
	Type     AlertType     `json:"type"`
	Date     string        `json:"date"`
	Message  string        `json:"message"`
	Severity AlertSeverity `json:"severity"`
	Amount   float64       `json:"amount,omitempty"`
}

// CashFlowForecast is a full forward-looking balance projection.
type CashFlowForecast struct {
	StartDate           string          `json:"start_date"`
	EndDate             string          `json:"end_date"`
	CurrentBalance      float64         `json:"current_balance"`
	ProjectedEndBalance float64         `json:"projected_end_balance"`
	LowestBalance       float64         `json:"lowest_balance"`
	LowestBalanceDate   string          `json:"lowest_balance_date"`
	HighestBalance      float64         `json:"highest_balance"`
	HighestBalanceDate  string          `json:"highest_balance_date"`
	TotalIncome         float64         `json:"total_income"`
	TotalExpenses       float64         `json:"total_expenses"`
	NetCashFlow         float64         `json:"net_cash_flow"`
	DailyForecasts      []DailyForecast `json:"daily_forecasts"`
	Alerts              []CashFlowAlert `json:"alerts"` // capped at 10
	Confidence          Confidence      `json:"confidence"`
}
