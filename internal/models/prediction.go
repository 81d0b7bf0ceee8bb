package models

// PredictionRecord stores one day of a past forecast so it can later be
// compared against realized outcomes. Created at forecast time for the
// next 7 days only; back-filled with actuals once the date has elapsed.
type PredictionRecord struct {
	ID                 string   `json:"id"`
	UserID             string   `json:"user_id"`
	PredictionDate     string   `json:"prediction_date"` // Format: YYYY-MM-DD
	PredictedBalance   float64  `json:"predicted_balance"`
	PredictedIncome    float64  `json:"predicted_income"`
	PredictedExpenses  float64  `json:"predicted_expenses"`
	ConfidenceScore    float64  `json:"confidence_score"`
	ActualBalance      *float64 `json:"actual_balance,omitempty"`
	ActualIncome       *float64 `json:"actual_income,omitempty"`
	ActualExpenses     *float64 `json:"actual_expenses,omitempty"`
	VarianceAmount     *float64 `json:"variance_amount,omitempty"`
	VariancePercentage *float64 `json:"variance_percentage,omitempty"`
}

// Reconciled reports whether actuals have been recorded.
func (p PredictionRecord) Reconciled() bool {
	return p.ActualBalance != nil
}
